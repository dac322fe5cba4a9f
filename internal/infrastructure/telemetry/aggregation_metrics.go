package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sellerdesk/backend/internal/application/aggregation"
)

// AggregationMetrics records store fetches and aggregation runs.
type AggregationMetrics struct {
	storeFetchTotal    *Counter
	storeFetchDuration *Histogram
	storeFetchOrders   *Histogram

	runTotal         *Counter
	runDuration      *Histogram
	runStoreFailures *Counter
	lastRunOrders    *Gauge
}

var _ aggregation.Recorder = (*AggregationMetrics)(nil)

// NewAggregationMetrics registers the aggregation instruments on meter.
func NewAggregationMetrics(meter metric.Meter) (*AggregationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	am := &AggregationMetrics{}
	var err error

	if am.storeFetchTotal, err = NewCounter(meter,
		"sellerdesk_store_fetch_total",
		"Total number of per-store order fetches",
		"{fetch}",
	); err != nil {
		return nil, err
	}
	if am.storeFetchDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "sellerdesk_store_fetch_duration_seconds",
		Description: "Time to fetch every page of one store",
		Unit:        "s",
		Boundaries:  RemoteFetchBuckets,
	}); err != nil {
		return nil, err
	}
	if am.storeFetchOrders, err = NewHistogram(meter, HistogramOpts{
		Name:        "sellerdesk_store_fetch_orders",
		Description: "Orders returned by one successful store fetch",
		Unit:        "{order}",
		Boundaries:  OrderCountBuckets,
	}); err != nil {
		return nil, err
	}
	if am.runTotal, err = NewCounter(meter,
		"sellerdesk_aggregation_runs_total",
		"Total number of aggregation runs",
		"{run}",
	); err != nil {
		return nil, err
	}
	if am.runDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "sellerdesk_aggregation_duration_seconds",
		Description: "Wall time of one aggregation run",
		Unit:        "s",
		Boundaries:  RemoteFetchBuckets,
	}); err != nil {
		return nil, err
	}
	if am.runStoreFailures, err = NewCounter(meter,
		"sellerdesk_aggregation_store_failures_total",
		"Stores skipped because their fetch failed",
		"{store}",
	); err != nil {
		return nil, err
	}
	if am.lastRunOrders, err = NewGauge(meter,
		"sellerdesk_aggregation_orders",
		"Orders in the most recent merged result",
		"{order}",
	); err != nil {
		return nil, err
	}

	return am, nil
}

// RecordStoreFetch implements aggregation.Recorder
func (am *AggregationMetrics) RecordStoreFetch(ctx context.Context, storeID string, orders int, failed bool, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if failed {
		outcome = OutcomeFailure
	}
	am.storeFetchTotal.Inc(ctx, AttrStoreID.String(storeID), AttrOutcome.String(outcome))
	am.storeFetchDuration.RecordDuration(ctx, elapsed, AttrOutcome.String(outcome))
	if !failed {
		am.storeFetchOrders.Record(ctx, float64(orders), AttrStoreID.String(storeID))
	}
}

// RecordRun implements aggregation.Recorder. A run fails only when every store failed.
func (am *AggregationMetrics) RecordRun(ctx context.Context, stores, orders, failures int, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if stores > 0 && failures == stores {
		outcome = OutcomeFailure
	}
	attrs := []attribute.KeyValue{AttrOutcome.String(outcome)}

	am.runTotal.Inc(ctx, attrs...)
	am.runDuration.RecordDuration(ctx, elapsed, attrs...)
	if failures > 0 {
		am.runStoreFailures.Add(ctx, int64(failures))
	}
	am.lastRunOrders.Record(ctx, int64(orders))
}

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = &MetricsError{Op: "NewAggregationMetrics", Err: "meter cannot be nil"}

// MetricsError represents an error in metrics operations.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
