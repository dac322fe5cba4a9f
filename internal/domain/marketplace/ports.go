package marketplace

import "context"

// PageSize is the number of postings requested per page. Larger pages were
// rejected by the marketplace with payload and timeout errors.
const PageSize = 100

// Page is one page of postings for one store
type Page struct {
	Orders  []Order
	HasMore bool
}

// OrderPager fetches one page of orders for one store credential.
// Implementations return *AuthError, *RemoteError, *TransportError or *ParseError.
type OrderPager interface {
	FetchPage(ctx context.Context, cred StoreCredential, window DateWindow, offset, limit int) (*Page, error)
}

// LabelFetcher downloads the shipping label document for postings of one store.
type LabelFetcher interface {
	FetchLabels(ctx context.Context, cred StoreCredential, postingIDs []string) ([]byte, error)
}
