// Package summary produces a short narrative description of recent orders.
package summary

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MaxOrders is the default number of most recent orders sent to the generator
const MaxOrders = 30

// Placeholder is returned whenever no summary can be produced
const Placeholder = "Summary is unavailable right now."

// Digest is the part of an order the generator sees
type Digest struct {
	Date     string `json:"date"`
	Product  string `json:"product"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Region   string `json:"region,omitempty"`
}

// Generator turns order digests into free text
type Generator interface {
	Summarize(ctx context.Context, digests []Digest) (string, error)
}

// Service wraps a Generator so callers always get text back
type Service struct {
	generator Generator
	maxOrders int
	logger    *zap.Logger
}

// NewService creates a summary service. A nil generator means no API
// credential is configured and every call returns Placeholder.
func NewService(generator Generator, maxOrders int, log *zap.Logger) *Service {
	if maxOrders <= 0 {
		maxOrders = MaxOrders
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{generator: generator, maxOrders: maxOrders, logger: log}
}

// MaxOrders returns how many of the most recent orders a summary covers
func (s *Service) MaxOrders() int {
	return s.maxOrders
}

// Generate summarizes the most recent orders. It never fails: a missing
// generator, a generator error or an empty answer all yield Placeholder.
func (s *Service) Generate(ctx context.Context, orders []marketplace.Order) string {
	if s.generator == nil {
		return Placeholder
	}

	digests := Digests(orders, s.maxOrders)
	ctx, span := telemetry.StartServiceSpan(ctx, "summary", "generate",
		telemetry.WithAttribute(telemetry.SpanAttrOrderCount, len(digests)),
	)
	defer span.End()

	text, err := s.generator.Summarize(ctx, digests)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.WithLogger(ctx, s.logger).Warn("Summary generation failed", zap.Error(err))
		return Placeholder
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Placeholder
	}
	return text
}

// Digests returns digests of at most limit orders, most recent first
func Digests(orders []marketplace.Order, limit int) []Digest {
	recent := slices.Clone(orders)
	slices.SortStableFunc(recent, func(a, b marketplace.Order) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}

	digests := make([]Digest, 0, len(recent))
	for _, o := range recent {
		d := Digest{
			Date:   o.CreatedAt.Format("2006-01-02"),
			Status: o.Status,
			Region: o.Region(),
		}
		if len(o.LineItems) > 0 {
			item := o.LineItems[0]
			d.Product = item.Name
			d.Price = item.UnitPrice
			d.Currency = item.Currency
		}
		digests = append(digests, d)
	}
	return digests
}
