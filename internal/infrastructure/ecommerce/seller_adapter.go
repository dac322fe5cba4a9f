package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

const (
	// maxSellerResponseSize limits JSON response bodies to prevent memory exhaustion
	maxSellerResponseSize = 10 * 1024 * 1024 // 10MB
	// maxSellerLabelSize limits label documents, which are PDFs
	maxSellerLabelSize = 32 * 1024 * 1024 // 32MB
	// maxErrorDetailLen caps the raw body echoed into a RemoteError
	maxErrorDetailLen = 512
)

// SellerAPIAdapter talks to the marketplace seller API. It holds no
// credentials: every call is made on behalf of the store passed in.
type SellerAPIAdapter struct {
	config     *SellerAPIConfig
	httpClient *http.Client
}

// Ensure SellerAPIAdapter implements the marketplace ports
var (
	_ marketplace.OrderPager   = (*SellerAPIAdapter)(nil)
	_ marketplace.LabelFetcher = (*SellerAPIAdapter)(nil)
)

// NewSellerAPIAdapter creates a new seller API adapter
func NewSellerAPIAdapter(config *SellerAPIConfig) (*SellerAPIAdapter, error) {
	if config == nil {
		config = NewSellerAPIConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SellerAPIAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// FetchPage retrieves one page of postings created within window, newest first.
func (a *SellerAPIAdapter) FetchPage(ctx context.Context, cred marketplace.StoreCredential, window marketplace.DateWindow, offset, limit int) (*marketplace.Page, error) {
	reqBody := SellerPostingListRequest{
		Dir: "DESC",
		Filter: SellerPostingListFilter{
			Since: window.Since.UTC(),
			To:    window.To.UTC(),
		},
		Limit:  limit,
		Offset: offset,
		With: SellerPostingWith{
			AnalyticsData: true,
			FinancialData: true,
		},
	}

	body, err := a.doRequest(ctx, cred, postingListPath, reqBody, maxSellerResponseSize)
	if err != nil {
		return nil, err
	}

	var resp SellerPostingListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &marketplace.ParseError{StoreID: cred.StoreID, Cause: err}
	}
	if resp.Result == nil {
		return nil, &marketplace.ParseError{StoreID: cred.StoreID, Cause: errors.New("missing result")}
	}

	orders := make([]marketplace.Order, 0, len(resp.Result.Postings))
	for i := range resp.Result.Postings {
		orders = append(orders, a.convertPosting(&resp.Result.Postings[i]))
	}

	return &marketplace.Page{
		Orders:  orders,
		HasMore: resp.Result.HasNext,
	}, nil
}

// convertPosting maps the wire posting to the domain order.
// SourceStoreID is left empty; the store fetcher stamps it.
func (a *SellerAPIAdapter) convertPosting(p *SellerPosting) marketplace.Order {
	order := marketplace.Order{
		PostingID: p.PostingNumber,
		OrderID:   p.OrderNumber,
		Status:    p.Status,
		CreatedAt: p.InProcessAt,
		LineItems: make([]marketplace.LineItem, 0, len(p.Products)),
	}
	if order.OrderID == "" && p.OrderID != 0 {
		order.OrderID = strconv.FormatInt(p.OrderID, 10)
	}

	for _, prod := range p.Products {
		item := marketplace.LineItem{
			Name:      prod.Name,
			OfferID:   prod.OfferID,
			UnitPrice: prod.Price,
			Currency:  prod.CurrencyCode,
			Quantity:  prod.Quantity,
		}
		if prod.SKU != 0 {
			item.SkuID = strconv.FormatInt(prod.SKU, 10)
		}
		order.LineItems = append(order.LineItems, item)
	}

	if p.AnalyticsData != nil {
		order.Analytics = &marketplace.Analytics{Region: p.AnalyticsData.Region}
	}

	if p.FinancialData != nil {
		payouts := make([]decimal.Decimal, 0, len(p.FinancialData.Products))
		for _, fp := range p.FinancialData.Products {
			payouts = append(payouts, fp.Payout)
		}
		order.Financials = &marketplace.Financials{LineItemPayouts: payouts}
	}

	return order
}

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// FetchLabels downloads the package label document for the given postings.
// The postings must all belong to the store the credential is for.
func (a *SellerAPIAdapter) FetchLabels(ctx context.Context, cred marketplace.StoreCredential, postingIDs []string) ([]byte, error) {
	if len(postingIDs) == 0 {
		return nil, marketplace.ErrNoOrders
	}
	return a.doRequest(ctx, cred, packageLabelPath, SellerPackageLabelRequest{PostingNumber: postingIDs}, a.config.MaxLabelSize)
}

// ---------------------------------------------------------------------------
// HTTP
// ---------------------------------------------------------------------------

// doRequest posts a JSON body and returns the raw success body.
// Non-success responses are classified into the marketplace error types.
// A success body longer than limit is a ParseError, never a truncated result.
func (a *SellerAPIAdapter) doRequest(ctx context.Context, cred marketplace.StoreCredential, path string, payload any, limit int64) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("seller api: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.APIBaseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("seller api: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Client-Id", cred.StoreID)
	req.Header.Set("Api-Key", cred.Secret)
	if a.config.UserAgent != "" {
		req.Header.Set("User-Agent", a.config.UserAgent)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &marketplace.TransportError{StoreID: cred.StoreID, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &marketplace.TransportError{StoreID: cred.StoreID, Cause: err}
	}
	oversized := int64(len(body)) > limit
	if oversized {
		body = body[:limit]
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &marketplace.AuthError{StoreID: cred.StoreID, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &marketplace.RemoteError{
			StoreID:    cred.StoreID,
			StatusCode: resp.StatusCode,
			Detail:     extractErrorDetail(body),
		}
	case oversized:
		return nil, &marketplace.ParseError{
			StoreID: cred.StoreID,
			Cause:   fmt.Errorf("%w: response exceeds %d bytes", ErrSellerResponseTooLarge, limit),
		}
	}

	return body, nil
}

// extractErrorDetail pulls a human readable message out of an error body:
// top-level message, then error.message, then the raw body.
func extractErrorDetail(body []byte) string {
	var errResp SellerErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != nil && errResp.Error.Message != "" {
			return errResp.Error.Message
		}
	}
	raw := strings.TrimSpace(string(body))
	if len(raw) > maxErrorDetailLen {
		raw = raw[:maxErrorDetailLen]
	}
	return raw
}
