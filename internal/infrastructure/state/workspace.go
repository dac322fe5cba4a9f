package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

// ErrDuplicateStore is returned when a credential list repeats a store id
var ErrDuplicateStore = errors.New("state: duplicate store id")

// Workspace reads and writes the typed workspace values on top of a Store.
// Read-modify-write operations on the packed set are serialized.
type Workspace struct {
	store    Store
	validate *validator.Validate
	mu       sync.Mutex
}

// NewWorkspace wraps store
func NewWorkspace(store Store) *Workspace {
	return &Workspace{store: store, validate: validator.New()}
}

// Credentials returns the stored credential list. When the list has never
// been written, the legacy single credential is returned as a one-element
// list. No stored value yields an empty list.
func (w *Workspace) Credentials(ctx context.Context) ([]marketplace.StoreCredential, error) {
	creds, ok, err := GetJSON[[]marketplace.StoreCredential](ctx, w.store, KeyStores)
	if err != nil {
		return nil, err
	}
	if ok {
		if creds == nil {
			creds = []marketplace.StoreCredential{}
		}
		return creds, nil
	}

	legacy, ok, err := GetJSON[marketplace.StoreCredential](ctx, w.store, KeyLegacyStore)
	if err != nil {
		return nil, err
	}
	if !ok || legacy.Validate() != nil {
		return []marketplace.StoreCredential{}, nil
	}
	return []marketplace.StoreCredential{legacy}, nil
}

// SaveCredentials validates and replaces the credential list
func (w *Workspace) SaveCredentials(ctx context.Context, creds []marketplace.StoreCredential) error {
	seen := make(map[string]struct{}, len(creds))
	for i, c := range creds {
		if err := w.validate.Struct(c); err != nil {
			return fmt.Errorf("%w: store %d: %v", marketplace.ErrInvalidCredential, i, err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("store %d: %w", i, err)
		}
		if _, dup := seen[c.StoreID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateStore, c.StoreID)
		}
		seen[c.StoreID] = struct{}{}
	}
	if creds == nil {
		creds = []marketplace.StoreCredential{}
	}
	return SetJSON(ctx, w.store, KeyStores, creds)
}

// Packed returns the stored packed set
func (w *Workspace) Packed(ctx context.Context) (marketplace.PackedSet, error) {
	set, _, err := GetJSON[marketplace.PackedSet](ctx, w.store, KeyPackedOrders)
	return set, err
}

// TogglePacked flips the packed mark of the given postings and persists the result
func (w *Workspace) TogglePacked(ctx context.Context, postingIDs ...string) (marketplace.PackedSet, error) {
	return w.updatePacked(ctx, func(s marketplace.PackedSet) marketplace.PackedSet {
		return s.Toggle(postingIDs...)
	})
}

// SetPacked marks or unmarks the given postings and persists the result
func (w *Workspace) SetPacked(ctx context.Context, packed bool, postingIDs ...string) (marketplace.PackedSet, error) {
	return w.updatePacked(ctx, func(s marketplace.PackedSet) marketplace.PackedSet {
		return s.SetPacked(packed, postingIDs...)
	})
}

func (w *Workspace) updatePacked(ctx context.Context, fn func(marketplace.PackedSet) marketplace.PackedSet) (marketplace.PackedSet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	current, err := w.Packed(ctx)
	if err != nil {
		return marketplace.PackedSet{}, err
	}
	next := fn(current)
	if err := SetJSON(ctx, w.store, KeyPackedOrders, next); err != nil {
		return marketplace.PackedSet{}, err
	}
	return next, nil
}
