package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sellerdesk/backend/internal/application/labels"
	"github.com/sellerdesk/backend/internal/application/orders"
)

// Label response headers set when the document was archived
const (
	LabelContentType = "application/pdf"

	HeaderLabelArchiveURL     = "X-Label-Archive-URL"
	HeaderLabelArchiveExpires = "X-Label-Archive-Expires"
)

// LabelHandler serves shipping-label documents
type LabelHandler struct {
	BaseHandler
	credentials CredentialStore
	orders      *orders.Service
	labels      *labels.Service
}

// NewLabelHandler creates a new LabelHandler
func NewLabelHandler(credentials CredentialStore, ordersSvc *orders.Service, labelsSvc *labels.Service) *LabelHandler {
	return &LabelHandler{credentials: credentials, orders: ordersSvc, labels: labelsSvc}
}

// Print godoc
// @ID           printLabels
//
//	@Summary		Download shipping labels
//	@Description	Downloads one PDF with the labels of the selected postings, using the credential of store_id, or of the store the first posting came from.
//	@Tags			labels
//	@Accept			json
//	@Produce		application/pdf
//	@Param			request	body		LabelRequest	true	"Postings"
//	@Success		200		{file}		file
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/labels [post]
func (h *LabelHandler) Print(c *gin.Context) {
	var req LabelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	creds, err := h.credentials.Credentials(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	selected, err := h.orders.Resolve(req.OrderKeys())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.labels.Fetch(ctx, creds, selected)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Archived != nil {
		c.Header(HeaderLabelArchiveURL, result.Archived.URL)
		c.Header(HeaderLabelArchiveExpires, result.Archived.ExpiresAt.UTC().Format(time.RFC3339))
	}
	filename := fmt.Sprintf("labels-%s.pdf", result.StoreID)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, LabelContentType, result.Document)
}
