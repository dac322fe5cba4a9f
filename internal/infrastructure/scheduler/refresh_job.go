package scheduler

import (
	"time"

	"github.com/google/uuid"
	"github.com/sellerdesk/backend/internal/application/orders"
)

// ---------------------------------------------------------------------------
// Refresh Job Types
// ---------------------------------------------------------------------------

// RefreshJobStatus represents the status of a refresh job
type RefreshJobStatus string

const (
	RefreshJobStatusPending RefreshJobStatus = "PENDING"
	RefreshJobStatusRunning RefreshJobStatus = "RUNNING"
	RefreshJobStatusSuccess RefreshJobStatus = "SUCCESS"
	RefreshJobStatusPartial RefreshJobStatus = "PARTIAL"
	RefreshJobStatusFailed  RefreshJobStatus = "FAILED"
)

// Trigger names what started a refresh job
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
)

// RefreshJob records one re-aggregation of every stored store
type RefreshJob struct {
	ID          uuid.UUID
	Trigger     Trigger
	WindowDays  int
	Status      RefreshJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time

	// Results, set on completion
	RunID        string
	Stores       int
	Orders       int
	FailedStores int
}

// NewRefreshJob creates a pending refresh job
func NewRefreshJob(trigger Trigger, windowDays int) *RefreshJob {
	return &RefreshJob{
		ID:         uuid.New(),
		Trigger:    trigger,
		WindowDays: windowDays,
		Status:     RefreshJobStatusPending,
	}
}

// Start marks the job as running
func (j *RefreshJob) Start(now time.Time) {
	j.Status = RefreshJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the snapshot produced by the run. A run where every
// store failed is FAILED, one where only some failed is PARTIAL.
func (j *RefreshJob) Complete(snap *orders.Snapshot, now time.Time) {
	j.CompletedAt = &now
	j.RunID = snap.RunID
	j.Stores = snap.Stores
	j.Orders = len(snap.Orders)
	j.FailedStores = len(snap.Warnings)

	switch {
	case j.FailedStores == 0:
		j.Status = RefreshJobStatusSuccess
	case j.FailedStores < j.Stores:
		j.Status = RefreshJobStatusPartial
	default:
		j.Status = RefreshJobStatusFailed
		j.Error = "all stores failed"
	}
}

// Fail marks the job as failed
func (j *RefreshJob) Fail(err string, now time.Time) {
	j.Status = RefreshJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// Duration returns how long the job ran, zero while it is still running
func (j *RefreshJob) Duration() time.Duration {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(*j.StartedAt)
}
