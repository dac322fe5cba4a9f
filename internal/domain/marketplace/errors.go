package marketplace

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Marketplace Errors
// ---------------------------------------------------------------------------

var (
	// ErrAuth is matched by every AuthError
	ErrAuth = errors.New("marketplace: credential rejected")
	// ErrRemote is matched by every RemoteError
	ErrRemote = errors.New("marketplace: remote request failed")
	// ErrTransport is matched by every TransportError
	ErrTransport = errors.New("marketplace: transport failure")
	// ErrParse is matched by every ParseError
	ErrParse = errors.New("marketplace: malformed response")

	// ErrNoCredentials is returned when an operation needs at least one store
	ErrNoCredentials = errors.New("marketplace: no store credentials configured")
	// ErrNoOrders is returned when an operation needs at least one order
	ErrNoOrders = errors.New("marketplace: no orders selected")
	// ErrInvalidCredential is returned for a credential with an empty id or secret
	ErrInvalidCredential = errors.New("marketplace: invalid store credential")
)

// AuthError is returned when the marketplace rejects the store credential (401/403).
type AuthError struct {
	StoreID    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("marketplace: store %s: credential rejected (HTTP %d)", e.StoreID, e.StatusCode)
}

// Unwrap allows errors.Is(err, ErrAuth)
func (e *AuthError) Unwrap() error { return ErrAuth }

// RemoteError is returned for any other non-success response. Detail holds the
// message extracted from the response body, or the raw body.
type RemoteError struct {
	StoreID    string
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("marketplace: store %s: HTTP %d: %s", e.StoreID, e.StatusCode, e.Detail)
}

// Unwrap allows errors.Is(err, ErrRemote)
func (e *RemoteError) Unwrap() error { return ErrRemote }

// TransportError is returned when the request never produced a response.
type TransportError struct {
	StoreID string
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("marketplace: store %s: %v", e.StoreID, e.Cause)
}

// Unwrap exposes both the sentinel and the underlying network error
func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Cause} }

// ParseError is returned when a success response cannot be decoded.
type ParseError struct {
	StoreID string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("marketplace: store %s: malformed response: %v", e.StoreID, e.Cause)
}

// Unwrap exposes both the sentinel and the decoder error
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Cause} }
