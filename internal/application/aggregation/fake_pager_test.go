package aggregation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

type pageCall struct {
	storeID string
	offset  int
	limit   int
	window  marketplace.DateWindow
}

// fakePager serves canned orders per store, split into pages of the
// requested size. Stores listed in failAt fail when that offset is requested.
type fakePager struct {
	mu     sync.Mutex
	orders map[string][]marketplace.Order
	failAt map[string]int
	errs   map[string]error
	// endless makes every page report HasMore
	endless bool
	calls   []pageCall
}

func newFakePager() *fakePager {
	return &fakePager{
		orders: make(map[string][]marketplace.Order),
		failAt: make(map[string]int),
		errs:   make(map[string]error),
	}
}

func (p *fakePager) FetchPage(_ context.Context, cred marketplace.StoreCredential, window marketplace.DateWindow, offset, limit int) (*marketplace.Page, error) {
	p.mu.Lock()
	p.calls = append(p.calls, pageCall{storeID: cred.StoreID, offset: offset, limit: limit, window: window})
	p.mu.Unlock()

	if at, ok := p.failAt[cred.StoreID]; ok && at == offset {
		return nil, p.errs[cred.StoreID]
	}
	if p.endless {
		return &marketplace.Page{Orders: []marketplace.Order{{PostingID: fmt.Sprintf("%s-%d", cred.StoreID, offset)}}, HasMore: true}, nil
	}

	all := p.orders[cred.StoreID]
	if offset >= len(all) {
		return &marketplace.Page{}, nil
	}
	end := min(offset+limit, len(all))
	// Copy so stamping SourceStoreID never touches the fixture
	page := append([]marketplace.Order(nil), all[offset:end]...)
	return &marketplace.Page{Orders: page, HasMore: end < len(all)}, nil
}

func (p *fakePager) callsFor(storeID string) []pageCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pageCall
	for _, c := range p.calls {
		if c.storeID == storeID {
			out = append(out, c)
		}
	}
	return out
}

func (p *fakePager) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

var fixedNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// fakeOrders builds n orders with random but valid content.
func fakeOrders(faker *gofakeit.Faker, prefix string, n int) []marketplace.Order {
	orders := make([]marketplace.Order, n)
	for i := range orders {
		orders[i] = marketplace.Order{
			PostingID: fmt.Sprintf("%s-%05d", prefix, i),
			OrderID:   faker.UUID(),
			Status:    faker.RandomString([]string{"awaiting_packaging", "delivering", "delivered"}),
			CreatedAt: faker.DateRange(fixedNow.AddDate(0, 0, -15), fixedNow),
			LineItems: []marketplace.LineItem{{
				Name:      faker.ProductName(),
				OfferID:   faker.LetterN(6),
				UnitPrice: fmt.Sprintf("%.2f", faker.Price(10, 5000)),
				Currency:  faker.RandomString([]string{"RUB", "USD"}),
				Quantity:  faker.Number(1, 3),
			}},
		}
	}
	return orders
}
