package aggregation

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
)

const tracerName = "github.com/sellerdesk/backend/internal/application/aggregation"

// Recorder receives per-store and per-run measurements
type Recorder interface {
	RecordStoreFetch(ctx context.Context, storeID string, orders int, failed bool, elapsed time.Duration)
	RecordRun(ctx context.Context, stores, orders, failures int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordStoreFetch(context.Context, string, int, bool, time.Duration) {}
func (nopRecorder) RecordRun(context.Context, int, int, int, time.Duration)            {}

// Result is the outcome of one aggregation run
type Result struct {
	RunID    string              `json:"runId"`
	Orders   []marketplace.Order `json:"orders"`
	Warnings []StoreFailure      `json:"warnings"`
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithTracer overrides the tracer taken from the global provider
func WithTracer(t trace.Tracer) Option {
	return func(a *Aggregator) {
		if t != nil {
			a.tracer = t
		}
	}
}

// Aggregator fans out one StoreFetcher call per credential and merges the results.
type Aggregator struct {
	fetcher  *StoreFetcher
	logger   *zap.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// NewAggregator creates an Aggregator
func NewAggregator(fetcher *StoreFetcher, log *zap.Logger, opts ...Option) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Aggregator{
		fetcher:  fetcher,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type storeOutcome struct {
	orders  []marketplace.Order
	failure *StoreFailure
}

// Aggregate fetches every store concurrently and waits for all of them.
// A failing store never cancels the others; it becomes a warning and
// contributes no orders. Orders are concatenated in credential order, then
// stably sorted newest first. Postings are not deduplicated across stores.
//
// The only error returned is ctx.Err() when ctx is already done on entry.
func (a *Aggregator) Aggregate(ctx context.Context, creds []marketplace.StoreCredential, windowDays int) (*Result, error) {
	runID := uuid.New().String()
	if len(creds) == 0 {
		return &Result{RunID: runID, Orders: []marketplace.Order{}, Warnings: []StoreFailure{}}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "aggregation.Aggregate", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("stores", len(creds)),
		attribute.Int("window_days", windowDays),
	))
	defer span.End()
	ctx, log := logger.WithRunID(ctx, a.logger, runID)

	outcomes := make([]storeOutcome, len(creds))
	var g errgroup.Group
	for i, cred := range creds {
		g.Go(func() error {
			outcomes[i] = a.fetchStore(ctx, cred, windowDays)
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{RunID: runID, Orders: []marketplace.Order{}, Warnings: []StoreFailure{}}
	for _, o := range outcomes {
		if o.failure != nil {
			result.Warnings = append(result.Warnings, *o.failure)
			continue
		}
		result.Orders = append(result.Orders, o.orders...)
	}
	slices.SortStableFunc(result.Orders, func(x, y marketplace.Order) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})

	elapsed := time.Since(start)
	a.recorder.RecordRun(ctx, len(creds), len(result.Orders), len(result.Warnings), elapsed)
	span.SetAttributes(
		attribute.Int("orders", len(result.Orders)),
		attribute.Int("failed_stores", len(result.Warnings)),
	)
	if len(result.Warnings) == len(creds) {
		span.SetStatus(codes.Error, "all stores failed")
	}

	logger.WithLogger(ctx, log).Info("Aggregation finished",
		zap.Int("stores", len(creds)),
		zap.Int("failed_stores", len(result.Warnings)),
		zap.Int("orders", len(result.Orders)),
		zap.Duration("duration", elapsed),
	)
	return result, nil
}

func (a *Aggregator) fetchStore(ctx context.Context, cred marketplace.StoreCredential, windowDays int) storeOutcome {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "aggregation.FetchStore", trace.WithAttributes(
		attribute.String("store_id", cred.StoreID),
	))
	defer span.End()

	orders, err := a.fetcher.FetchAllForStore(ctx, cred, windowDays)
	elapsed := time.Since(start)
	if err != nil {
		var failure *StoreFailure
		if !errors.As(err, &failure) {
			failure = &StoreFailure{StoreID: cred.StoreID, Message: FailureMessage(err), Err: err}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, failure.Message)
		a.recorder.RecordStoreFetch(ctx, cred.StoreID, 0, true, elapsed)

		logger.L(ctx).Warn("Store fetch failed, skipping store",
			zap.String("store_id", cred.StoreID),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return storeOutcome{failure: failure}
	}

	span.SetAttributes(attribute.Int("orders", len(orders)))
	a.recorder.RecordStoreFetch(ctx, cred.StoreID, len(orders), false, elapsed)
	logger.L(ctx).Debug("Store fetched",
		zap.String("store_id", cred.StoreID),
		zap.Int("orders", len(orders)),
		zap.Duration("duration", elapsed),
	)
	return storeOutcome{orders: orders}
}
