package analytics

import (
	"slices"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

// BuildGroups groups single-item orders by offer ID. Orders with zero or
// several line items are left out. Groups are ordered by member count,
// largest first; equal sizes keep the order in which their first member
// appeared.
func BuildGroups(orders []marketplace.Order) []marketplace.OrderGroup {
	groups := []marketplace.OrderGroup{}
	index := make(map[string]int)

	for _, o := range orders {
		if !o.IsSingleItem() {
			continue
		}
		item := o.LineItems[0]
		idx, ok := index[item.OfferID]
		if !ok {
			idx = len(groups)
			index[item.OfferID] = idx
			groups = append(groups, marketplace.OrderGroup{
				ProductKey:     item.OfferID,
				Representative: item,
				Currency:       item.Currency,
			})
		}
		groups[idx].Members = append(groups[idx].Members, o)
	}

	slices.SortStableFunc(groups, func(a, b marketplace.OrderGroup) int {
		return len(b.Members) - len(a.Members)
	})
	return groups
}

// GroupCounts is the packed/unpacked tally of one group
type GroupCounts struct {
	ProductKey string `json:"productKey"`
	Unpacked   int    `json:"unpacked"`
	Packed     int    `json:"packed"`
}

// CountPacked tallies packed and unpacked members per group
func CountPacked(groups []marketplace.OrderGroup, packed marketplace.PackedSet) []GroupCounts {
	counts := make([]GroupCounts, len(groups))
	for i, g := range groups {
		u, p := g.Split(packed)
		counts[i] = GroupCounts{ProductKey: g.ProductKey, Unpacked: len(u), Packed: len(p)}
	}
	return counts
}
