// Package analytics derives revenue statistics, pick-list groups and the
// spreadsheet export from an aggregated order set. Everything here is a pure
// function of its inputs.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

const (
	// SeriesDays is the length of the daily revenue series
	SeriesDays = 15
	// DateLayout keys days in the series
	DateLayout = "2006-01-02"
)

// Stats summarizes revenue across an order set.
type Stats struct {
	// Buckets holds one entry per currency, in first-seen order
	Buckets          []marketplace.RevenueBucket `json:"buckets"`
	Series           []marketplace.DailyPoint    `json:"series"`
	DominantCurrency string                      `json:"dominantCurrency"`
	TotalOrders      int                         `json:"totalOrders"`
	// AverageOrderValue maps currency to the rounded mean order revenue
	AverageOrderValue map[string]int64 `json:"averageOrderValue"`
}

type dayKey struct {
	date     string
	currency string
}

// ComputeStats derives Stats from orders. Days are calendar days in now's
// location; the series covers the SeriesDays days ending on now's date.
//
// Orders without line items count toward TotalOrders only. The dominant
// currency is the one with the highest total; ties go to the currency seen
// first in orders.
func ComputeStats(orders []marketplace.Order, now time.Time) Stats {
	loc := now.Location()
	stats := Stats{
		Buckets:           []marketplace.RevenueBucket{},
		TotalOrders:       len(orders),
		AverageOrderValue: map[string]int64{},
	}

	bucketIndex := make(map[string]int)
	daily := make(map[dayKey]decimal.Decimal)

	for _, o := range orders {
		revenue, ok := o.Revenue()
		if !ok {
			continue
		}
		currency := o.Currency()

		idx, seen := bucketIndex[currency]
		if !seen {
			idx = len(stats.Buckets)
			bucketIndex[currency] = idx
			stats.Buckets = append(stats.Buckets, marketplace.RevenueBucket{
				Currency:    currency,
				TotalAmount: decimal.Zero,
			})
		}
		b := &stats.Buckets[idx]
		b.TotalAmount = b.TotalAmount.Add(revenue)
		b.OrderCount++

		key := dayKey{date: o.CreatedAt.In(loc).Format(DateLayout), currency: currency}
		daily[key] = daily[key].Add(revenue)
	}

	dominant := -1
	for i, b := range stats.Buckets {
		if dominant < 0 || b.TotalAmount.GreaterThan(stats.Buckets[dominant].TotalAmount) {
			dominant = i
		}
		stats.AverageOrderValue[b.Currency] = AverageOrderValue(b)
	}
	if dominant >= 0 {
		stats.DominantCurrency = stats.Buckets[dominant].Currency
	}

	stats.Series = buildSeries(daily, stats.DominantCurrency, now)
	return stats
}

// AverageOrderValue returns round(total / count), halves away from zero.
// An empty bucket yields 0.
func AverageOrderValue(b marketplace.RevenueBucket) int64 {
	if b.OrderCount == 0 {
		return 0
	}
	return b.TotalAmount.Div(decimal.NewFromInt(int64(b.OrderCount))).Round(0).IntPart()
}

func buildSeries(daily map[dayKey]decimal.Decimal, currency string, now time.Time) []marketplace.DailyPoint {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	series := make([]marketplace.DailyPoint, SeriesDays)
	for i := range series {
		d := today.AddDate(0, 0, i-(SeriesDays-1))
		label := d.Format(DateLayout)
		amount, ok := daily[dayKey{date: label, currency: currency}]
		if !ok {
			amount = decimal.Zero
		}
		series[i] = marketplace.DailyPoint{
			DateLabel: label,
			Amount:    amount,
			Currency:  currency,
		}
	}
	return series
}
