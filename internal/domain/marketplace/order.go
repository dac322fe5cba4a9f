package marketplace

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product line of an order.
type LineItem struct {
	Name    string `json:"name"`
	OfferID string `json:"offerId"`
	// UnitPrice is kept as the decimal string the marketplace sent
	UnitPrice string `json:"unitPrice"`
	Currency  string `json:"currency"`
	Quantity  int    `json:"quantity"`
	SkuID     string `json:"skuId"`
}

// Price parses UnitPrice. Unparseable prices count as zero.
func (li LineItem) Price() decimal.Decimal {
	d, err := decimal.NewFromString(li.UnitPrice)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// EffectiveQuantity returns Quantity, or 1 when the marketplace omitted it
func (li LineItem) EffectiveQuantity() int {
	if li.Quantity <= 0 {
		return 1
	}
	return li.Quantity
}

// Analytics holds the optional analytics block of a posting
type Analytics struct {
	Region string `json:"region"`
}

// Financials holds the optional per-line payout amounts of a posting
type Financials struct {
	LineItemPayouts []decimal.Decimal `json:"lineItemPayouts"`
}

// Order is a posting as returned by the marketplace, tagged with the store it
// was fetched from. SourceStoreID is assigned by the store fetcher only.
type Order struct {
	PostingID     string      `json:"postingId"`
	OrderID       string      `json:"orderId"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	LineItems     []LineItem  `json:"lineItems"`
	Analytics     *Analytics  `json:"analytics,omitempty"`
	Financials    *Financials `json:"financials,omitempty"`
	SourceStoreID string      `json:"sourceStoreId"`
}

// OrderKey is the identity of an order across stores. PostingID alone is only
// unique within one store.
type OrderKey struct {
	StoreID   string
	PostingID string
}

// Key returns the composite (store, posting) identity
func (o Order) Key() OrderKey {
	return OrderKey{StoreID: o.SourceStoreID, PostingID: o.PostingID}
}

// Currency returns the currency of the first line item, or "" for an order
// without line items.
func (o Order) Currency() string {
	if len(o.LineItems) == 0 {
		return ""
	}
	return o.LineItems[0].Currency
}

// IsSingleItem reports whether the order has exactly one line item
func (o Order) IsSingleItem() bool {
	return len(o.LineItems) == 1
}

// Region returns the analytics region, if the marketplace sent one
func (o Order) Region() string {
	if o.Analytics == nil {
		return ""
	}
	return o.Analytics.Region
}

// Revenue returns the order revenue and whether the order takes part in
// revenue math at all (orders without line items do not).
//
// Payouts win when present. Otherwise unit prices are summed once per line:
// quantity is not multiplied in, which undercounts multi-quantity lines.
func (o Order) Revenue() (decimal.Decimal, bool) {
	if len(o.LineItems) == 0 {
		return decimal.Zero, false
	}
	if o.Financials != nil && len(o.Financials.LineItemPayouts) > 0 {
		return decimal.Sum(decimal.Zero, o.Financials.LineItemPayouts...), true
	}
	total := decimal.Zero
	for _, li := range o.LineItems {
		total = total.Add(li.Price())
	}
	return total, true
}

// DateWindow is the creation-time range used when listing orders
type DateWindow struct {
	Since time.Time
	To    time.Time
}

// TrailingWindow returns [now - days, now]
func TrailingWindow(now time.Time, days int) DateWindow {
	return DateWindow{Since: now.AddDate(0, 0, -days), To: now}
}
