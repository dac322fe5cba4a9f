package marketplace

import "github.com/shopspring/decimal"

// OrderGroup collects single-item orders that share an offer ID. The
// representative line item is the first member's; later members are not
// reconciled against it.
type OrderGroup struct {
	ProductKey     string   `json:"productKey"`
	Representative LineItem `json:"representative"`
	Currency       string   `json:"currency"`
	Members        []Order  `json:"members"`
}

// Split partitions the members by packed state, keeping member order.
func (g OrderGroup) Split(packed PackedSet) (unpacked, packedOrders []Order) {
	unpacked = make([]Order, 0, len(g.Members))
	packedOrders = make([]Order, 0)
	for _, o := range g.Members {
		if packed.Has(o.PostingID) {
			packedOrders = append(packedOrders, o)
		} else {
			unpacked = append(unpacked, o)
		}
	}
	return unpacked, packedOrders
}

// TotalQuantity sums each member's line item quantity, counting a missing
// quantity as 1.
func (g OrderGroup) TotalQuantity() int {
	total := 0
	for _, o := range g.Members {
		for _, li := range o.LineItems {
			total += li.EffectiveQuantity()
		}
	}
	return total
}

// PostingIDs returns the posting IDs of all members
func (g OrderGroup) PostingIDs() []string {
	ids := make([]string, len(g.Members))
	for i, o := range g.Members {
		ids[i] = o.PostingID
	}
	return ids
}

// RevenueBucket is the revenue and order count of one currency
type RevenueBucket struct {
	Currency    string          `json:"currency"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	OrderCount  int             `json:"orderCount"`
}

// DailyPoint is one day of the revenue series
type DailyPoint struct {
	DateLabel string          `json:"dateLabel"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}
