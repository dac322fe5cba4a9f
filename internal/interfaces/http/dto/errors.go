package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is used when request fields fail validation
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeDuplicateStore is used when a credential list repeats a store ID
	ErrCodeDuplicateStore = "ERR_DUPLICATE_STORE"
	// ErrCodeAmbiguousPosting is used when a posting ID needs a store to be resolved
	ErrCodeAmbiguousPosting = "ERR_AMBIGUOUS_POSTING"
)

// Workflow error codes
const (
	// ErrCodeNoCredentials is used when no store is configured
	ErrCodeNoCredentials = "ERR_NO_CREDENTIALS"
	// ErrCodeNoOrders is used when an operation got an empty selection
	ErrCodeNoOrders = "ERR_NO_ORDERS"
	// ErrCodeNoSnapshot is used before the first aggregation run
	ErrCodeNoSnapshot = "ERR_NO_SNAPSHOT"
)

// Marketplace error codes
const (
	// ErrCodeMarketplaceAuth is used when the marketplace rejects a store credential
	ErrCodeMarketplaceAuth = "ERR_MARKETPLACE_AUTH"
	// ErrCodeMarketplaceRemote is used for other marketplace error responses
	ErrCodeMarketplaceRemote = "ERR_MARKETPLACE_REMOTE"
	// ErrCodeMarketplaceUnavailable is used when the marketplace cannot be reached
	ErrCodeMarketplaceUnavailable = "ERR_MARKETPLACE_UNAVAILABLE"
	// ErrCodeMarketplaceResponse is used when the marketplace answer is malformed
	ErrCodeMarketplaceResponse = "ERR_MARKETPLACE_RESPONSE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeDuplicateStore:   http.StatusConflict,
	ErrCodeAmbiguousPosting: http.StatusConflict,

	ErrCodeNoCredentials: http.StatusUnprocessableEntity,
	ErrCodeNoOrders:      http.StatusUnprocessableEntity,
	ErrCodeNoSnapshot:    http.StatusConflict,

	// The store credential belongs to the caller, so a rejection is theirs to fix
	ErrCodeMarketplaceAuth:        http.StatusUnprocessableEntity,
	ErrCodeMarketplaceRemote:      http.StatusBadGateway,
	ErrCodeMarketplaceUnavailable: http.StatusServiceUnavailable,
	ErrCodeMarketplaceResponse:    http.StatusBadGateway,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
