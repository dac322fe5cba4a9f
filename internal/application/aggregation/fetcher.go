// Package aggregation fetches postings from every configured store and merges
// them into one timeline.
package aggregation

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

const (
	// DefaultWindowDays is the trailing window used when none is given
	DefaultWindowDays = 15
	// SafetyCap bounds pagination per store. Once the next offset would exceed
	// it the fetch is treated as complete.
	SafetyCap = 10000
)

// StoreFailure reports a store whose fetch was abandoned. Orders already
// pulled from that store in the same run are discarded.
type StoreFailure struct {
	StoreID string `json:"storeId"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (f *StoreFailure) Error() string {
	return fmt.Sprintf("store %s: %s", f.StoreID, f.Message)
}

// Unwrap exposes the pager error
func (f *StoreFailure) Unwrap() error { return f.Err }

// FailureMessage renders a pager error for display
func FailureMessage(err error) string {
	var authErr *marketplace.AuthError
	var remoteErr *marketplace.RemoteError
	switch {
	case errors.As(err, &authErr):
		return fmt.Sprintf("credential rejected (HTTP %d)", authErr.StatusCode)
	case errors.As(err, &remoteErr):
		return fmt.Sprintf("HTTP %d: %s", remoteErr.StatusCode, remoteErr.Detail)
	case errors.Is(err, marketplace.ErrTransport):
		return "marketplace unreachable"
	case errors.Is(err, marketplace.ErrParse):
		return "malformed marketplace response"
	default:
		return err.Error()
	}
}

// FetcherOption configures a StoreFetcher
type FetcherOption func(*StoreFetcher)

// WithSafetyCap overrides SafetyCap
func WithSafetyCap(limit int) FetcherOption {
	return func(f *StoreFetcher) {
		if limit > 0 {
			f.safetyCap = limit
		}
	}
}

// WithClock overrides the time source used for the fetch window
func WithClock(now func() time.Time) FetcherOption {
	return func(f *StoreFetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// StoreFetcher drives an OrderPager over every page of one store.
type StoreFetcher struct {
	pager     marketplace.OrderPager
	pageSize  int
	safetyCap int
	now       func() time.Time
}

// NewStoreFetcher creates a StoreFetcher
func NewStoreFetcher(pager marketplace.OrderPager, opts ...FetcherOption) *StoreFetcher {
	f := &StoreFetcher{
		pager:     pager,
		pageSize:  marketplace.PageSize,
		safetyCap: SafetyCap,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Pages returns the lazy page sequence for one store. Each range over the
// sequence starts again at offset 0. The sequence ends after a page without
// more results, after the first error, or once the next offset passes the
// safety cap.
func (f *StoreFetcher) Pages(ctx context.Context, cred marketplace.StoreCredential, window marketplace.DateWindow) iter.Seq2[*marketplace.Page, error] {
	return func(yield func(*marketplace.Page, error) bool) {
		for offset := 0; offset <= f.safetyCap; offset += f.pageSize {
			page, err := f.pager.FetchPage(ctx, cred, window, offset, f.pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			if page == nil {
				page = &marketplace.Page{}
			}
			if !yield(page, nil) || !page.HasMore {
				return
			}
		}
	}
}

// FetchAllForStore returns every order of the store created within the last
// windowDays days, each stamped with the store ID. The window is fixed when
// the call starts. Any page failure returns a *StoreFailure and no orders.
func (f *StoreFetcher) FetchAllForStore(ctx context.Context, cred marketplace.StoreCredential, windowDays int) ([]marketplace.Order, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	window := marketplace.TrailingWindow(f.now(), windowDays)

	var orders []marketplace.Order
	for page, err := range f.Pages(ctx, cred, window) {
		if err != nil {
			return nil, &StoreFailure{StoreID: cred.StoreID, Message: FailureMessage(err), Err: err}
		}
		orders = append(orders, page.Orders...)
	}

	for i := range orders {
		orders[i].SourceStoreID = cred.StoreID
	}
	return orders, nil
}
