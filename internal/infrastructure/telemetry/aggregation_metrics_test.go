package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/sellerdesk/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewAggregationMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewAggregationMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Equal(t, "NewAggregationMetrics: meter cannot be nil", err.Error())
}

func TestAggregationMetrics_RecordStoreFetch(t *testing.T) {
	meter, reader := newTestMeter(t)
	ctx := context.Background()

	am, err := telemetry.NewAggregationMetrics(meter)
	require.NoError(t, err)

	am.RecordStoreFetch(ctx, "A", 120, false, 2*time.Second)
	am.RecordStoreFetch(ctx, "B", 0, true, 300*time.Millisecond)

	data := collect(t, reader)
	total, ok := data["sellerdesk_store_fetch_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 2)

	byStore := map[string]string{}
	for _, dp := range total.DataPoints {
		store, _ := dp.Attributes.Value(attribute.Key("store_id"))
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		byStore[store.AsString()] = outcome.AsString()
		assert.Equal(t, int64(1), dp.Value)
	}
	assert.Equal(t, map[string]string{"A": "success", "B": "failure"}, byStore)

	orders, ok := data["sellerdesk_store_fetch_orders"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, orders.DataPoints, 1)
	assert.Equal(t, 120.0, orders.DataPoints[0].Sum)
}

func TestAggregationMetrics_RecordRun(t *testing.T) {
	meter, reader := newTestMeter(t)
	ctx := context.Background()

	am, err := telemetry.NewAggregationMetrics(meter)
	require.NoError(t, err)

	am.RecordRun(ctx, 3, 250, 1, time.Second)
	am.RecordRun(ctx, 2, 0, 2, time.Second)
	am.RecordRun(ctx, 0, 0, 0, 0)

	data := collect(t, reader)

	runs, ok := data["sellerdesk_aggregation_runs_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	outcomes := map[string]int64{}
	for _, dp := range runs.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("outcome"))
		outcomes[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"success": 2, "failure": 1}, outcomes)

	assert.Equal(t, int64(3), sumInt(t, data["sellerdesk_aggregation_store_failures_total"]))

	gauge, ok := data["sellerdesk_aggregation_orders"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(0), gauge.DataPoints[0].Value)
}
