package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

var statsNow = time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)

func priced(currency string, createdAt time.Time, prices ...string) marketplace.Order {
	o := marketplace.Order{CreatedAt: createdAt}
	for _, p := range prices {
		o.LineItems = append(o.LineItems, marketplace.LineItem{UnitPrice: p, Currency: currency, Quantity: 1})
	}
	return o
}

func withPayouts(o marketplace.Order, payouts ...string) marketplace.Order {
	f := &marketplace.Financials{}
	for _, p := range payouts {
		f.LineItemPayouts = append(f.LineItemPayouts, decimal.RequireFromString(p))
	}
	o.Financials = f
	return o
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, statsNow)

	assert.Empty(t, stats.Buckets)
	assert.Equal(t, 0, stats.TotalOrders)
	assert.Empty(t, stats.DominantCurrency)
	assert.Empty(t, stats.AverageOrderValue)
	require.Len(t, stats.Series, SeriesDays)
	for _, p := range stats.Series {
		assert.True(t, p.Amount.IsZero(), p.DateLabel)
	}
}

func TestComputeStats_SeriesWindow(t *testing.T) {
	stats := ComputeStats(nil, statsNow)

	assert.Equal(t, "2024-01-01", stats.Series[0].DateLabel)
	assert.Equal(t, "2024-01-15", stats.Series[SeriesDays-1].DateLabel)
}

func TestComputeStats_AverageOrderValue(t *testing.T) {
	tests := []struct {
		name   string
		prices []string
		want   int64
	}{
		{name: "300 over 3", prices: []string{"100", "100", "100"}, want: 100},
		{name: "100 over 3", prices: []string{"33", "33", "34"}, want: 33},
		{name: "half rounds up", prices: []string{"2", "3"}, want: 3},
		{name: "below half rounds down", prices: []string{"1", "1", "2"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var orders []marketplace.Order
			for _, p := range tt.prices {
				orders = append(orders, priced("RUB", statsNow, p))
			}
			stats := ComputeStats(orders, statsNow)
			assert.Equal(t, tt.want, stats.AverageOrderValue["RUB"])
		})
	}

	assert.Equal(t, int64(0), AverageOrderValue(marketplace.RevenueBucket{Currency: "RUB"}))
}

func TestComputeStats_Revenue(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 9, 0, 0, 0, time.UTC) }
	orders := []marketplace.Order{
		priced("RUB", day(15), "100.50"),
		withPayouts(priced("RUB", day(15), "999"), "80", "20"),
		priced("USD", day(14), "10", "5"),
		// Quantity is not multiplied into the price fallback
		{CreatedAt: day(14), LineItems: []marketplace.LineItem{{UnitPrice: "7", Currency: "USD", Quantity: 4}}},
		// Counted, but no revenue
		{CreatedAt: day(13)},
		// Outside the series window
		priced("RUB", day(1).AddDate(0, 0, -1), "1000"),
	}

	stats := ComputeStats(orders, statsNow)

	assert.Equal(t, 6, stats.TotalOrders)
	require.Len(t, stats.Buckets, 2)
	assert.Equal(t, "RUB", stats.Buckets[0].Currency)
	assert.Equal(t, "1200.5", stats.Buckets[0].TotalAmount.String())
	assert.Equal(t, 3, stats.Buckets[0].OrderCount)
	assert.Equal(t, "USD", stats.Buckets[1].Currency)
	assert.Equal(t, "22", stats.Buckets[1].TotalAmount.String())
	assert.Equal(t, 2, stats.Buckets[1].OrderCount)

	assert.Equal(t, "RUB", stats.DominantCurrency)
	last := stats.Series[SeriesDays-1]
	assert.Equal(t, "2024-01-15", last.DateLabel)
	assert.Equal(t, "RUB", last.Currency)
	assert.Equal(t, "200.5", last.Amount.String())
	// USD revenue on the 14th is not part of a RUB series
	assert.True(t, stats.Series[SeriesDays-2].Amount.IsZero())
}

func TestComputeStats_DominantTieGoesToFirstSeen(t *testing.T) {
	orders := []marketplace.Order{
		priced("USD", statsNow, "50"),
		priced("EUR", statsNow, "50"),
	}
	assert.Equal(t, "USD", ComputeStats(orders, statsNow).DominantCurrency)

	orders[0], orders[1] = orders[1], orders[0]
	assert.Equal(t, "EUR", ComputeStats(orders, statsNow).DominantCurrency)
}

func TestComputeStats_DaysInNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, loc)
	// 22:30 UTC on the 14th is the 15th at UTC+3
	order := priced("RUB", time.Date(2024, 1, 14, 22, 30, 0, 0, time.UTC), "10")

	stats := ComputeStats([]marketplace.Order{order}, now)
	assert.Equal(t, "10", stats.Series[SeriesDays-1].Amount.String())
}
