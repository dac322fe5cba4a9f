// Package state persists small workspace values (store credentials, packed
// marks) as JSON documents under stable keys.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Stable keys
const (
	// KeyStores holds the list of store credentials
	KeyStores = "stores"
	// KeyLegacyStore holds the single credential written by older versions.
	// It is read only when KeyStores is absent.
	KeyLegacyStore = "store"
	// KeyPackedOrders holds the packed posting IDs
	KeyPackedOrders = "packed_orders"
)

// ErrNotFound is returned by Get for a missing key
var ErrNotFound = errors.New("state: key not found")

// Store is a key/value store of raw JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the value under key into a T. The boolean is false when
// the key does not exist.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes value and stores it under key
func SetJSON[T any](ctx context.Context, s Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
