package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sellerdesk/backend/internal/infrastructure/scheduler"
	"github.com/sellerdesk/backend/internal/interfaces/http/dto"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
)

// RefreshHistory lists finished background refresh jobs, newest first
type RefreshHistory interface {
	History(limit int) []scheduler.RefreshJob
}

// RefreshHandler exposes the background refresh history
type RefreshHandler struct {
	BaseHandler
	history RefreshHistory
}

// NewRefreshHandler creates a new RefreshHandler
func NewRefreshHandler(history RefreshHistory) *RefreshHandler {
	return &RefreshHandler{history: history}
}

// List godoc
// @ID           listRefreshJobs
//
//	@Summary		List background refresh jobs
//	@Description	Recent scheduled re-aggregations, newest first
//	@Tags			orders
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum jobs to return"	minimum(0)	maximum(100)
//	@Success		200		{object}	APIResponse[[]RefreshJobResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/orders/refreshes [get]
func (h *RefreshHandler) List(c *gin.Context) {
	var req RefreshListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if isValidationError(err) {
			middleware.HandleValidationError(c, err)
			return
		}
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	jobs := h.history.History(req.Limit)
	out := make([]RefreshJobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toRefreshJobResponse(job))
	}
	h.SuccessWithMeta(c, out, dto.Meta{Total: len(out)})
}
