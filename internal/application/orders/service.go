// Package orders coordinates an aggregation run with the stored workspace
// and serves analytics over the most recent merged order set.
package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sellerdesk/backend/internal/application/aggregation"
	"github.com/sellerdesk/backend/internal/application/analytics"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

// ErrNoSnapshot is returned by derivations before the first aggregation run
var ErrNoSnapshot = errors.New("orders: no aggregation has run yet")

// ErrAmbiguousPosting is returned when a posting ID without a store matches
// orders from more than one store
var ErrAmbiguousPosting = errors.New("orders: posting id is shared by several stores")

// Workspace is the persisted state the service reads and updates
type Workspace interface {
	Credentials(ctx context.Context) ([]marketplace.StoreCredential, error)
	Packed(ctx context.Context) (marketplace.PackedSet, error)
	TogglePacked(ctx context.Context, postingIDs ...string) (marketplace.PackedSet, error)
	SetPacked(ctx context.Context, packed bool, postingIDs ...string) (marketplace.PackedSet, error)
}

// Aggregator runs one aggregation over a credential set
type Aggregator interface {
	Aggregate(ctx context.Context, creds []marketplace.StoreCredential, windowDays int) (*aggregation.Result, error)
}

// Snapshot is the result of the most recent aggregation run. It lives in
// memory only.
type Snapshot struct {
	RunID      string                     `json:"runId"`
	FetchedAt  time.Time                  `json:"fetchedAt"`
	WindowDays int                        `json:"windowDays"`
	Stores     int                        `json:"stores"`
	Orders     []marketplace.Order        `json:"orders"`
	Warnings   []aggregation.StoreFailure `json:"warnings"`
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the clock used for FetchedAt and the stats series
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service owns the in-memory snapshot
type Service struct {
	workspace  Workspace
	aggregator Aggregator
	windowDays int
	now        func() time.Time

	// runs numbers each Refresh in start order; installed is the number of
	// the run behind snapshot
	runs      atomic.Uint64
	mu        sync.RWMutex
	snapshot  *Snapshot
	installed uint64
}

// NewService creates an orders service. windowDays is the default fetch window.
func NewService(workspace Workspace, aggregator Aggregator, windowDays int, opts ...Option) *Service {
	if windowDays <= 0 {
		windowDays = aggregation.DefaultWindowDays
	}
	s := &Service{
		workspace:  workspace,
		aggregator: aggregator,
		windowDays: windowDays,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh aggregates every stored store and replaces the snapshot.
// windowDays <= 0 uses the service default. When runs overlap, the one that
// started last wins: an older run finishing late is discarded and Refresh
// returns the installed snapshot instead.
func (s *Service) Refresh(ctx context.Context, windowDays int) (*Snapshot, error) {
	run := s.runs.Add(1)
	if windowDays <= 0 {
		windowDays = s.windowDays
	}
	creds, err := s.workspace.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.aggregator.Aggregate(ctx, creds, windowDays)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		RunID:      result.RunID,
		FetchedAt:  s.now(),
		WindowDays: windowDays,
		Stores:     len(creds),
		Orders:     result.Orders,
		Warnings:   result.Warnings,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if run < s.installed {
		return s.snapshot, nil
	}
	s.snapshot = snap
	s.installed = run
	return snap, nil
}

// Snapshot returns the current snapshot
func (s *Service) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return s.snapshot, nil
}

// Orders returns the orders of the current snapshot
func (s *Service) Orders() ([]marketplace.Order, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Orders, nil
}

// Stats computes revenue statistics over the snapshot
func (s *Service) Stats() (analytics.Stats, error) {
	orders, err := s.Orders()
	if err != nil {
		return analytics.Stats{}, err
	}
	return analytics.ComputeStats(orders, s.now()), nil
}

// GroupView is one pick-list group with its packed state resolved
type GroupView struct {
	ProductKey     string                `json:"productKey"`
	Representative marketplace.LineItem  `json:"representative"`
	Currency       string                `json:"currency"`
	TotalQuantity  int                   `json:"totalQuantity"`
	Unpacked       []marketplace.Order   `json:"unpacked"`
	Packed         []marketplace.Order   `json:"packed"`
	Counts         analytics.GroupCounts `json:"counts"`
}

// Groups builds the pick-list groups of the snapshot against the stored packed set
func (s *Service) Groups(ctx context.Context) ([]GroupView, error) {
	groups, packed, err := s.groups(ctx)
	if err != nil {
		return nil, err
	}

	counts := analytics.CountPacked(groups, packed)
	views := make([]GroupView, len(groups))
	for i, g := range groups {
		unpacked, packedOrders := g.Split(packed)
		views[i] = GroupView{
			ProductKey:     g.ProductKey,
			Representative: g.Representative,
			Currency:       g.Currency,
			TotalQuantity:  g.TotalQuantity(),
			Unpacked:       unpacked,
			Packed:         packedOrders,
			Counts:         counts[i],
		}
	}
	return views, nil
}

// Export writes the pick-list groups as delimited text
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	groups, packed, err := s.groups(ctx)
	if err != nil {
		return err
	}
	return analytics.WriteDelimited(w, groups, packed)
}

func (s *Service) groups(ctx context.Context) ([]marketplace.OrderGroup, marketplace.PackedSet, error) {
	orders, err := s.Orders()
	if err != nil {
		return nil, marketplace.PackedSet{}, err
	}
	packed, err := s.workspace.Packed(ctx)
	if err != nil {
		return nil, marketplace.PackedSet{}, err
	}
	return analytics.BuildGroups(orders), packed, nil
}

// TogglePacked flips the packed mark of postings
func (s *Service) TogglePacked(ctx context.Context, postingIDs []string) (marketplace.PackedSet, error) {
	return s.workspace.TogglePacked(ctx, postingIDs...)
}

// SetPacked marks or unmarks postings
func (s *Service) SetPacked(ctx context.Context, packed bool, postingIDs []string) (marketplace.PackedSet, error) {
	return s.workspace.SetPacked(ctx, packed, postingIDs...)
}

// Resolve maps order keys to snapshot orders so callers learn each posting's
// source store. A key with a StoreID matches that store only. A key without
// one matches by posting ID and fails with ErrAmbiguousPosting when several
// stores share it. Unknown postings come back as bare orders carrying the
// requested store.
func (s *Service) Resolve(keys []marketplace.OrderKey) ([]marketplace.Order, error) {
	byKey := make(map[marketplace.OrderKey]marketplace.Order)
	byPosting := make(map[string][]marketplace.Order)
	if orders, err := s.Orders(); err == nil {
		for _, o := range orders {
			if _, seen := byKey[o.Key()]; seen {
				continue
			}
			byKey[o.Key()] = o
			byPosting[o.PostingID] = append(byPosting[o.PostingID], o)
		}
	}

	out := make([]marketplace.Order, 0, len(keys))
	for _, k := range keys {
		if k.StoreID != "" {
			if o, ok := byKey[k]; ok {
				out = append(out, o)
			} else {
				out = append(out, marketplace.Order{PostingID: k.PostingID, SourceStoreID: k.StoreID})
			}
			continue
		}
		switch matches := byPosting[k.PostingID]; len(matches) {
		case 0:
			out = append(out, marketplace.Order{PostingID: k.PostingID})
		case 1:
			out = append(out, matches[0])
		default:
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousPosting, k.PostingID)
		}
	}
	return out, nil
}
