package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sellerdesk/backend/internal/application/orders"
	"github.com/sellerdesk/backend/internal/application/summary"
)

// SummaryHandler serves the narrative summary of the loaded orders
type SummaryHandler struct {
	BaseHandler
	orders  *orders.Service
	summary *summary.Service
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(ordersSvc *orders.Service, summarySvc *summary.Service) *SummaryHandler {
	return &SummaryHandler{orders: ordersSvc, summary: summarySvc}
}

// Get godoc
// @ID           getOrderSummary
//
//	@Summary		Summarize recent orders
//	@Description	Narrative summary of the most recent orders. When the generator is not configured or fails, a fixed placeholder is returned instead of an error.
//	@Tags			orders
//	@Produce		json
//	@Success		200	{object}	APIResponse[SummaryResponse]
//	@Failure		409	{object}	ErrorResponse
//	@Router			/orders/summary [get]
func (h *SummaryHandler) Get(c *gin.Context) {
	list, err := h.orders.Orders()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	text := h.summary.Generate(c.Request.Context(), list)
	h.Success(c, SummaryResponse{Summary: text, Orders: min(len(list), h.summary.MaxOrders())})
}
