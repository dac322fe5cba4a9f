package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sellerdesk/backend/internal/application/orders"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// ExportContentType is the media type of the pick-list export
const ExportContentType = "text/csv; charset=utf-8"

// OrderHandler handles aggregation, analytics and pick-list endpoints
type OrderHandler struct {
	BaseHandler
	orders *orders.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

// Aggregate godoc
// @ID           aggregateOrders
//
//	@Summary		Aggregate orders from every store
//	@Description	Fetches postings from all configured stores concurrently and merges them newest first. A failing store is reported in warnings and does not fail the run.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AggregateRequest	false	"Fetch window"
//	@Success		200		{object}	APIResponse[SnapshotResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/orders/aggregate [post]
func (h *OrderHandler) Aggregate(c *gin.Context) {
	var req AggregateRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	snap, err := h.orders.Refresh(c.Request.Context(), req.WindowDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Set(middleware.RunIDKey, snap.RunID)
	if len(snap.Warnings) > 0 {
		logger.GetGinLogger(c).Warn("Aggregation finished with store failures",
			zap.String("run_id", snap.RunID),
			zap.Int("failed_stores", len(snap.Warnings)),
		)
	}
	h.SuccessWithMeta(c, toSnapshotResponse(snap), snapshotMeta(snap))
}

// Snapshot godoc
// @ID           getOrderSnapshot
//
//	@Summary		Get the latest aggregated orders
//	@Tags			orders
//	@Produce		json
//	@Success		200	{object}	APIResponse[SnapshotResponse]
//	@Failure		409	{object}	ErrorResponse
//	@Router			/orders [get]
func (h *OrderHandler) Snapshot(c *gin.Context) {
	snap, err := h.orders.Snapshot()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toSnapshotResponse(snap), snapshotMeta(snap))
}

// Stats godoc
// @ID           getOrderStats
//
//	@Summary		Get revenue statistics
//	@Description	Per-currency revenue and order counts, the 15-day series of the dominant currency and average order value.
//	@Tags			orders
//	@Produce		json
//	@Success		200	{object}	APIResponse[analytics.Stats]
//	@Failure		409	{object}	ErrorResponse
//	@Router			/orders/stats [get]
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.orders.Stats()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Groups godoc
// @ID           listOrderGroups
//
//	@Summary		List pick-list groups
//	@Description	Single-item orders grouped by offer, largest group first, split into unpacked and packed postings.
//	@Tags			orders
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]orders.GroupView]
//	@Failure		409	{object}	ErrorResponse
//	@Router			/orders/groups [get]
func (h *OrderHandler) Groups(c *gin.Context) {
	groups, err := h.orders.Groups(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if groups == nil {
		groups = []orders.GroupView{}
	}
	h.Success(c, groups)
}

// Export godoc
// @ID           exportOrderGroups
//
//	@Summary		Download the pick list
//	@Description	Spreadsheet-compatible delimited text with a UTF-8 byte-order mark, one row per group.
//	@Tags			orders
//	@Produce		text/csv
//	@Success		200	{file}		file
//	@Failure		409	{object}	ErrorResponse
//	@Router			/orders/groups/export [get]
func (h *OrderHandler) Export(c *gin.Context) {
	// Render fully first so a failure can still answer with JSON.
	var buf bytes.Buffer
	if err := h.orders.Export(c.Request.Context(), &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	snap, err := h.orders.Snapshot()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filename := fmt.Sprintf("picklist-%s.csv", snap.FetchedAt.Format("20060102-1504"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, ExportContentType, buf.Bytes())
}

// TogglePacked godoc
// @ID           togglePackedOrders
//
//	@Summary		Toggle packed marks
//	@Description	Flips the packed mark of each posting and returns the resulting packed set.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PackedToggleRequest	true	"Postings"
//	@Success		200		{object}	APIResponse[PackedResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/orders/packed/toggle [post]
func (h *OrderHandler) TogglePacked(c *gin.Context) {
	var req PackedToggleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	packed, err := h.orders.TogglePacked(c.Request.Context(), req.PostingIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PackedResponse{PostingIDs: packed.IDs()})
}

// SetPacked godoc
// @ID           setPackedOrders
//
//	@Summary		Mark postings packed or unpacked
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PackedSetRequest	true	"Postings and target state"
//	@Success		200		{object}	APIResponse[PackedResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/orders/packed [put]
func (h *OrderHandler) SetPacked(c *gin.Context) {
	var req PackedSetRequest
	if !h.BindJSON(c, &req) {
		return
	}

	packed, err := h.orders.SetPacked(c.Request.Context(), *req.Packed, req.PostingIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PackedResponse{PostingIDs: packed.IDs()})
}
