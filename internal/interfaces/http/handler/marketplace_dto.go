package handler

import (
	"time"

	"github.com/sellerdesk/backend/internal/application/aggregation"
	"github.com/sellerdesk/backend/internal/application/orders"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/infrastructure/scheduler"
	"github.com/sellerdesk/backend/internal/interfaces/http/dto"
)

// =============================================================================
// Stores
// =============================================================================

// StoreCredentialRequest is one store in a save request
type StoreCredentialRequest struct {
	StoreID string `json:"store_id" binding:"required,max=64" example:"123456"`
	Secret  string `json:"secret" binding:"required,max=256" example:"5f3e8b7c9d2aa1c2"`
}

// SaveStoresRequest replaces the stored credential list
type SaveStoresRequest struct {
	Stores []StoreCredentialRequest `json:"stores" binding:"max=50,dive"`
}

// StoreResponse is a stored credential with its secret masked
type StoreResponse struct {
	StoreID string `json:"store_id" example:"123456"`
	Secret  string `json:"secret" example:"************a1c2"`
}

func toStoreResponses(creds []marketplace.StoreCredential) []StoreResponse {
	out := make([]StoreResponse, len(creds))
	for i, c := range creds {
		masked := c.Masked()
		out[i] = StoreResponse{StoreID: masked.StoreID, Secret: masked.Secret}
	}
	return out
}

// =============================================================================
// Orders
// =============================================================================

// AggregateRequest starts an aggregation run. An empty body uses the
// configured window.
type AggregateRequest struct {
	WindowDays int `json:"window_days" binding:"gte=0,lte=90" example:"15"`
}

// SnapshotResponse is the result of the latest aggregation run
type SnapshotResponse struct {
	RunID      string                     `json:"run_id" example:"2b9c6c1e-7a0d-4d59-9d43-2fbd0b3b7c10"`
	FetchedAt  time.Time                  `json:"fetched_at"`
	WindowDays int                        `json:"window_days" example:"15"`
	Stores     int                        `json:"stores" example:"2"`
	Orders     []marketplace.Order        `json:"orders"`
	Warnings   []aggregation.StoreFailure `json:"warnings"`
}

func toSnapshotResponse(snap *orders.Snapshot) SnapshotResponse {
	warnings := snap.Warnings
	if warnings == nil {
		warnings = []aggregation.StoreFailure{}
	}
	ordersOut := snap.Orders
	if ordersOut == nil {
		ordersOut = []marketplace.Order{}
	}
	return SnapshotResponse{
		RunID:      snap.RunID,
		FetchedAt:  snap.FetchedAt,
		WindowDays: snap.WindowDays,
		Stores:     snap.Stores,
		Orders:     ordersOut,
		Warnings:   warnings,
	}
}

func snapshotMeta(snap *orders.Snapshot) dto.Meta {
	return dto.Meta{RunID: snap.RunID, Total: len(snap.Orders), Warnings: len(snap.Warnings)}
}

// PackedToggleRequest flips the packed mark of postings
type PackedToggleRequest struct {
	PostingIDs []string `json:"posting_ids" binding:"required,min=1,max=500,dive,required"`
}

// PackedSetRequest marks or unmarks postings
type PackedSetRequest struct {
	PostingIDs []string `json:"posting_ids" binding:"required,min=1,max=500,dive,required"`
	Packed     *bool    `json:"packed" binding:"required"`
}

// PackedResponse is the packed set after an update
type PackedResponse struct {
	PostingIDs []string `json:"posting_ids"`
}

// SummaryResponse is the narrative summary of the loaded orders
type SummaryResponse struct {
	Summary string `json:"summary" example:"Orders grew steadily this week..."`
	Orders  int    `json:"orders" example:"30"`
}

// =============================================================================
// Labels
// =============================================================================

// LabelRequest selects the postings to print labels for. StoreID scopes the
// postings to one store; it is required when a posting ID is shared by
// several stores.
type LabelRequest struct {
	StoreID    string   `json:"store_id,omitempty" binding:"omitempty,max=64" example:"12345"`
	PostingIDs []string `json:"posting_ids" binding:"required,min=1,max=500,dive,required"`
}

// OrderKeys returns the (store, posting) identities of the request
func (r LabelRequest) OrderKeys() []marketplace.OrderKey {
	keys := make([]marketplace.OrderKey, len(r.PostingIDs))
	for i, id := range r.PostingIDs {
		keys[i] = marketplace.OrderKey{StoreID: r.StoreID, PostingID: id}
	}
	return keys
}

// =============================================================================
// Background refresh
// =============================================================================

// RefreshListRequest pages the refresh history
type RefreshListRequest struct {
	Limit int `form:"limit" binding:"gte=0,lte=100"`
}

// RefreshJobResponse is one background refresh job
type RefreshJobResponse struct {
	ID           string     `json:"id"`
	Trigger      string     `json:"trigger" example:"schedule"`
	Status       string     `json:"status" example:"SUCCESS"`
	Error        string     `json:"error,omitempty"`
	WindowDays   int        `json:"window_days"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationMs   int64      `json:"duration_ms"`
	RunID        string     `json:"run_id,omitempty"`
	Stores       int        `json:"stores"`
	Orders       int        `json:"orders"`
	FailedStores int        `json:"failed_stores"`
}

func toRefreshJobResponse(job scheduler.RefreshJob) RefreshJobResponse {
	return RefreshJobResponse{
		ID:           job.ID.String(),
		Trigger:      string(job.Trigger),
		Status:       string(job.Status),
		Error:        job.Error,
		WindowDays:   job.WindowDays,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
		DurationMs:   job.Duration().Milliseconds(),
		RunID:        job.RunID,
		Stores:       job.Stores,
		Orders:       job.Orders,
		FailedStores: job.FailedStores,
	}
}
