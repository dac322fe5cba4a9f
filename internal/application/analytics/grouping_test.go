package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

func singleItem(postingID, offerID string) marketplace.Order {
	return marketplace.Order{
		PostingID: postingID,
		LineItems: []marketplace.LineItem{{OfferID: offerID, Name: "name-" + postingID, UnitPrice: "10", Currency: "RUB"}},
	}
}

func TestBuildGroups_SkipsMultiItemOrders(t *testing.T) {
	multi := singleItem("p2", "MUG")
	multi.LineItems = append(multi.LineItems, marketplace.LineItem{OfferID: "CUP"})

	groups := BuildGroups([]marketplace.Order{
		singleItem("p1", "MUG"),
		multi,
		singleItem("p3", "MUG"),
		{PostingID: "p4"},
	})

	require.Len(t, groups, 1)
	assert.Equal(t, "MUG", groups[0].ProductKey)
	assert.Len(t, groups[0].Members, 2)
	assert.Equal(t, "name-p1", groups[0].Representative.Name)
	assert.Equal(t, "RUB", groups[0].Currency)
}

func TestBuildGroups_SortedBySize(t *testing.T) {
	var orders []marketplace.Order
	add := func(offer string, n int) {
		for i := 0; i < n; i++ {
			orders = append(orders, singleItem(fmt.Sprintf("%s-%d", offer, i), offer))
		}
	}
	add("ONE", 1)
	add("FIVE", 5)
	add("THREE", 3)

	groups := BuildGroups(orders)
	require.Len(t, groups, 3)
	assert.Equal(t, []int{5, 3, 1}, []int{len(groups[0].Members), len(groups[1].Members), len(groups[2].Members)})
}

func TestBuildGroups_TiesKeepFirstSeenOrder(t *testing.T) {
	groups := BuildGroups([]marketplace.Order{
		singleItem("p1", "B"),
		singleItem("p2", "A"),
		singleItem("p3", "C"),
		singleItem("p4", "A"),
	})

	require.Len(t, groups, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{groups[0].ProductKey, groups[1].ProductKey, groups[2].ProductKey})
}

func TestBuildGroups_Empty(t *testing.T) {
	groups := BuildGroups(nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestCountPacked(t *testing.T) {
	groups := BuildGroups([]marketplace.Order{
		singleItem("p1", "A"),
		singleItem("p2", "A"),
		singleItem("p3", "B"),
	})

	counts := CountPacked(groups, marketplace.NewPackedSet("p2", "p3"))
	assert.Equal(t, []GroupCounts{
		{ProductKey: "A", Unpacked: 1, Packed: 1},
		{ProductKey: "B", Unpacked: 0, Packed: 1},
	}, counts)
}
