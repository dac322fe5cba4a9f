package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sellerdesk/backend/internal/application/orders"
	"go.uber.org/zap"
)

// Refresher re-aggregates every stored store and replaces the snapshot
type Refresher interface {
	Refresh(ctx context.Context, windowDays int) (*orders.Snapshot, error)
}

var _ Refresher = (*orders.Service)(nil)

// ---------------------------------------------------------------------------
// RefreshSchedulerConfig
// ---------------------------------------------------------------------------

// RefreshSchedulerConfig holds configuration for the refresh scheduler
type RefreshSchedulerConfig struct {
	// Interval between scheduled refreshes
	Interval time.Duration
	// JobTimeout is the maximum time a refresh can run
	JobTimeout time.Duration
	// WindowDays is passed to every refresh; 0 uses the service default
	WindowDays int
	// RunOnStart refreshes once as soon as the scheduler starts
	RunOnStart bool
	// MaxHistory is how many finished jobs are kept for monitoring
	MaxHistory int
}

// DefaultRefreshSchedulerConfig returns default configuration
func DefaultRefreshSchedulerConfig() RefreshSchedulerConfig {
	return RefreshSchedulerConfig{
		Interval:   15 * time.Minute,
		JobTimeout: 5 * time.Minute,
		MaxHistory: 50,
	}
}

// Validate validates the configuration
func (c *RefreshSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.WindowDays < 0 {
		return ErrInvalidConfig
	}
	if c.MaxHistory <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// RefreshScheduler
// ---------------------------------------------------------------------------

// RefreshScheduler periodically re-aggregates all stores. Runs never
// overlap and failed runs are not retried: the next tick is the retry.
type RefreshScheduler struct {
	config    RefreshSchedulerConfig
	refresher Refresher
	logger    *zap.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  atomic.Bool

	// Job history for monitoring (in-memory, limited size)
	historyMu sync.RWMutex
	history   []RefreshJob
}

// NewRefreshScheduler creates a new refresh scheduler
func NewRefreshScheduler(config RefreshSchedulerConfig, refresher Refresher, logger *zap.Logger) (*RefreshScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RefreshScheduler{
		config:    config,
		refresher: refresher,
		logger:    logger,
		now:       time.Now,
		history:   make([]RefreshJob, 0, config.MaxHistory),
	}, nil
}

// Start starts the scheduler
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Refresh scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)

	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Refresh scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Refresh scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler loop is active
func (s *RefreshScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// runLoop refreshes on every tick until ctx is cancelled
func (s *RefreshScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runLogged(ctx, TriggerStartup)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runLogged(ctx, TriggerSchedule)
		}
	}
}

func (s *RefreshScheduler) runLogged(ctx context.Context, trigger Trigger) {
	if _, err := s.RunNow(ctx, trigger); err != nil {
		s.logger.Debug("Scheduled refresh skipped", zap.String("trigger", string(trigger)), zap.Error(err))
	}
}

// RunNow executes one refresh synchronously and records it in the history.
// It returns ErrRefreshInProgress without running when another refresh is
// still going. A refresh that fails is returned with its error.
func (s *RefreshScheduler) RunNow(ctx context.Context, trigger Trigger) (*RefreshJob, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrRefreshInProgress
	}
	defer s.inFlight.Store(false)

	job := NewRefreshJob(trigger, s.config.WindowDays)
	job.Start(s.now())

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	snap, err := s.refresher.Refresh(jobCtx, s.config.WindowDays)
	if err != nil {
		job.Fail(err.Error(), s.now())
		s.logger.Error("Refresh job failed",
			zap.String("job_id", job.ID.String()),
			zap.String("trigger", string(trigger)),
			zap.Error(err),
		)
		s.addToHistory(job)
		return job, err
	}

	job.Complete(snap, s.now())
	s.logger.Info("Refresh job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("trigger", string(trigger)),
		zap.String("run_id", job.RunID),
		zap.String("status", string(job.Status)),
		zap.Int("stores", job.Stores),
		zap.Int("orders", job.Orders),
		zap.Int("failed_stores", job.FailedStores),
		zap.Duration("duration", job.Duration()),
	)
	s.addToHistory(job)
	return job, nil
}

// addToHistory adds a finished job to the front of the history
func (s *RefreshScheduler) addToHistory(job *RefreshJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]RefreshJob{*job}, s.history...)
	if len(s.history) > s.config.MaxHistory {
		s.history = s.history[:s.config.MaxHistory]
	}
}

// History returns up to limit finished jobs, newest first. limit <= 0
// returns all of them.
func (s *RefreshScheduler) History(limit int) []RefreshJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	result := make([]RefreshJob, limit)
	copy(result, s.history[:limit])
	return result
}
