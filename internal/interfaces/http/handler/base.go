package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sellerdesk/backend/internal/application/orders"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/infrastructure/state"
	"github.com/sellerdesk/backend/internal/interfaces/http/dto"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with run meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, meta dto.Meta) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, meta))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindJSON binds the request body, answering 400 on failure. Validation
// failures get per-field details.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		case isValidationError(err):
			middleware.HandleValidationError(c, err)
		default:
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
		}
		return false
	}
	return true
}

// HandleError maps application and marketplace errors to HTTP responses.
// Unknown errors are logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code, message := classifyError(err)
	if code == dto.ErrCodeInternal {
		logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	}
	h.ErrorWithCode(c, code, message)
}

// classifyError returns the response code and the client-facing message for err.
func classifyError(err error) (string, string) {
	switch {
	case errors.Is(err, orders.ErrNoSnapshot):
		return dto.ErrCodeNoSnapshot, "No orders loaded yet; run an aggregation first"
	case errors.Is(err, orders.ErrAmbiguousPosting):
		return dto.ErrCodeAmbiguousPosting, err.Error() + "; pass store_id"
	case errors.Is(err, state.ErrDuplicateStore):
		return dto.ErrCodeDuplicateStore, err.Error()
	case errors.Is(err, marketplace.ErrInvalidCredential):
		return dto.ErrCodeValidation, err.Error()
	case errors.Is(err, marketplace.ErrNoCredentials):
		return dto.ErrCodeNoCredentials, "No stores are configured"
	case errors.Is(err, marketplace.ErrNoOrders):
		return dto.ErrCodeNoOrders, "No orders were selected"
	case errors.Is(err, marketplace.ErrAuth):
		return dto.ErrCodeMarketplaceAuth, err.Error()
	case errors.Is(err, marketplace.ErrRemote):
		return dto.ErrCodeMarketplaceRemote, err.Error()
	case errors.Is(err, marketplace.ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return dto.ErrCodeMarketplaceUnavailable, "Marketplace is unreachable, try again later"
	case errors.Is(err, marketplace.ErrParse):
		return dto.ErrCodeMarketplaceResponse, "Marketplace returned an unexpected response"
	default:
		return dto.ErrCodeInternal, "An unexpected error occurred"
	}
}

func isValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}
