// Package labels downloads shipping-label documents for selected orders.
package labels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ArchivedLabel describes where a label document was stored
type ArchivedLabel struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Archive keeps a copy of every fetched label document
type Archive interface {
	Archive(ctx context.Context, storeID string, data []byte) (ArchivedLabel, error)
}

// Result is one fetched label document
type Result struct {
	StoreID  string
	Document []byte
	// Archived is nil when no archive is configured or archiving failed
	Archived *ArchivedLabel
}

// Service fetches label documents with the credential of the store the
// orders came from.
type Service struct {
	fetcher marketplace.LabelFetcher
	archive Archive
	logger  *zap.Logger
}

// NewService creates a label service. archive may be nil.
func NewService(fetcher marketplace.LabelFetcher, archive Archive, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{fetcher: fetcher, archive: archive, logger: log}
}

// Fetch downloads one label document for orders. The credential is the one
// whose StoreID matches the first order's SourceStoreID, or the first
// credential when none matches. Fetch errors are returned unchanged.
func (s *Service) Fetch(ctx context.Context, creds []marketplace.StoreCredential, orders []marketplace.Order) (*Result, error) {
	if len(creds) == 0 {
		return nil, marketplace.ErrNoCredentials
	}
	if len(orders) == 0 {
		return nil, marketplace.ErrNoOrders
	}

	cred := SelectCredential(creds, orders[0].SourceStoreID)
	ctx, span := telemetry.StartServiceSpan(ctx, "labels", "fetch",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, cred.StoreID),
		telemetry.WithAttribute(telemetry.SpanAttrPostingCount, len(orders)),
	)
	defer span.End()

	postingIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		postingIDs = append(postingIDs, o.PostingID)
	}

	doc, err := s.fetcher.FetchLabels(ctx, cred, postingIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("fetch labels for store %s: %w", cred.StoreID, err)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrBytes, len(doc))

	result := &Result{StoreID: cred.StoreID, Document: doc}
	if s.archive == nil {
		return result, nil
	}

	archived, err := s.archive.Archive(ctx, cred.StoreID, doc)
	if err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Label archive failed",
			zap.String("store_id", cred.StoreID),
			zap.Error(err),
		)
		return result, nil
	}
	result.Archived = &archived
	return result, nil
}

// SelectCredential returns the credential for storeID, falling back to the first one
func SelectCredential(creds []marketplace.StoreCredential, storeID string) marketplace.StoreCredential {
	if c, ok := marketplace.FindCredential(creds, storeID); ok {
		return c
	}
	return creds[0]
}

// IsUserError reports whether err came from the caller's selection rather
// than from the marketplace.
func IsUserError(err error) bool {
	return errors.Is(err, marketplace.ErrNoCredentials) || errors.Is(err, marketplace.ErrNoOrders)
}
