package ecommerce

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Posting list request
// ---------------------------------------------------------------------------

// SellerPostingListRequest is the body of the posting list call
type SellerPostingListRequest struct {
	Dir    string                  `json:"dir"`
	Filter SellerPostingListFilter `json:"filter"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	With   SellerPostingWith       `json:"with"`
}

// SellerPostingListFilter restricts postings by processing time
type SellerPostingListFilter struct {
	Since time.Time `json:"since"`
	To    time.Time `json:"to"`
}

// SellerPostingWith selects the optional blocks returned per posting
type SellerPostingWith struct {
	AnalyticsData bool `json:"analytics_data"`
	FinancialData bool `json:"financial_data"`
}

// ---------------------------------------------------------------------------
// Posting list response
// ---------------------------------------------------------------------------

// SellerPostingListResponse is the response of the posting list call
type SellerPostingListResponse struct {
	Result *SellerPostingListResult `json:"result"`
}

// SellerPostingListResult holds one page of postings
type SellerPostingListResult struct {
	Postings []SellerPosting `json:"postings"`
	HasNext  bool            `json:"has_next"`
}

// SellerPosting is a posting as sent by the marketplace
type SellerPosting struct {
	PostingNumber string               `json:"posting_number"`
	OrderID       int64                `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	Status        string               `json:"status"`
	InProcessAt   time.Time            `json:"in_process_at"`
	Products      []SellerProduct      `json:"products"`
	AnalyticsData *SellerAnalyticsData `json:"analytics_data,omitempty"`
	FinancialData *SellerFinancialData `json:"financial_data,omitempty"`
}

// SellerProduct is one product line of a posting
type SellerProduct struct {
	Name         string `json:"name"`
	OfferID      string `json:"offer_id"`
	Price        string `json:"price"`
	CurrencyCode string `json:"currency_code"`
	Quantity     int    `json:"quantity"`
	SKU          int64  `json:"sku"`
}

// SellerAnalyticsData is the optional analytics block
type SellerAnalyticsData struct {
	Region string `json:"region"`
	City   string `json:"city"`
}

// SellerFinancialData is the optional financial block
type SellerFinancialData struct {
	Products []SellerFinancialProduct `json:"products"`
}

// SellerFinancialProduct carries the seller payout for one product line
type SellerFinancialProduct struct {
	ProductID int64           `json:"product_id"`
	Payout    decimal.Decimal `json:"payout"`
}

// ---------------------------------------------------------------------------
// Labels and errors
// ---------------------------------------------------------------------------

// SellerPackageLabelRequest is the body of the package label call
type SellerPackageLabelRequest struct {
	PostingNumber []string `json:"posting_number"`
}

// SellerErrorResponse covers both error body shapes the API uses:
// a top-level message, or a nested error object.
type SellerErrorResponse struct {
	Code    any    `json:"code,omitempty"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
