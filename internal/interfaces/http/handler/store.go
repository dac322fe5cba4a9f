package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CredentialStore reads and replaces the stored store credentials
type CredentialStore interface {
	Credentials(ctx context.Context) ([]marketplace.StoreCredential, error)
	SaveCredentials(ctx context.Context, creds []marketplace.StoreCredential) error
}

// StoreHandler handles store credential API endpoints
type StoreHandler struct {
	BaseHandler
	credentials CredentialStore
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(credentials CredentialStore) *StoreHandler {
	return &StoreHandler{credentials: credentials}
}

// List godoc
// @ID           listStores
//
//	@Summary		List configured stores
//	@Description	Returns every stored marketplace credential with its secret masked. A workspace saved by an older client with a single store is returned as a one-element list.
//	@Tags			stores
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]StoreResponse]
//	@Failure		500	{object}	ErrorResponse
//	@Router			/stores [get]
func (h *StoreHandler) List(c *gin.Context) {
	creds, err := h.credentials.Credentials(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStoreResponses(creds))
}

// Replace godoc
// @ID           replaceStores
//
//	@Summary		Replace configured stores
//	@Description	Replaces the whole credential list. Store IDs must be unique. A secret sent back in its masked form keeps the stored secret.
//	@Tags			stores
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SaveStoresRequest	true	"Store list"
//	@Success		200		{object}	APIResponse[[]StoreResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/stores [put]
func (h *StoreHandler) Replace(c *gin.Context) {
	var req SaveStoresRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	existing, err := h.credentials.Credentials(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	creds := make([]marketplace.StoreCredential, len(req.Stores))
	for i, s := range req.Stores {
		creds[i] = marketplace.StoreCredential{StoreID: s.StoreID, Secret: s.Secret}
		if prev, ok := marketplace.FindCredential(existing, s.StoreID); ok && prev.Masked().Secret == s.Secret {
			creds[i].Secret = prev.Secret
		}
	}

	if err := h.credentials.SaveCredentials(ctx, creds); err != nil {
		h.HandleError(c, err)
		return
	}

	logger.GetGinLogger(c).Info("Store credentials saved", zap.Int("store_count", len(creds)))
	h.Success(c, toStoreResponses(creds))
}
