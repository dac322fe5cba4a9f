package ecommerce

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	// SellerProductionAPIURL is the production seller API endpoint
	SellerProductionAPIURL = "https://api-seller.ozon.ru"

	// postingListPath lists FBS postings, newest first
	postingListPath = "/v3/posting/fbs/list"
	// packageLabelPath renders shipping labels for a set of postings
	packageLabelPath = "/v2/posting/fbs/package-label"

	defaultSellerTimeout = 30 * time.Second
)

// Errors for seller API configuration
var (
	ErrSellerConfigInvalidURL = errors.New("seller api: base URL must be an absolute http(s) URL")
	// ErrSellerResponseTooLarge is the cause of a ParseError for an oversized body
	ErrSellerResponseTooLarge = errors.New("seller api: response too large")
)

// SellerAPIConfig holds configuration for the marketplace seller API.
// Store credentials are not part of it: they travel with every call.
type SellerAPIConfig struct {
	// APIBaseURL is the base URL of the seller API
	APIBaseURL string
	// Timeout is the HTTP client timeout, the only bound on a single request
	Timeout time.Duration
	// UserAgent is sent with every request when set
	UserAgent string
	// MaxLabelSize caps a label document in bytes; larger documents are rejected
	MaxLabelSize int64
}

// NewSellerAPIConfig creates a configuration with production defaults
func NewSellerAPIConfig() *SellerAPIConfig {
	return &SellerAPIConfig{
		APIBaseURL:   SellerProductionAPIURL,
		Timeout:      defaultSellerTimeout,
		MaxLabelSize: maxSellerLabelSize,
	}
}

// Validate fills defaults and checks the base URL
func (c *SellerAPIConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = SellerProductionAPIURL
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrSellerConfigInvalidURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultSellerTimeout
	}
	if c.MaxLabelSize <= 0 {
		c.MaxLabelSize = maxSellerLabelSize
	}
	return nil
}
