// Package marketplace contains the order model shared by every store account.
//
// Key concepts:
//   - StoreCredential: one seller account (store id + API secret)
//   - Order / LineItem: a posting as returned by the marketplace order service
//   - PackedSet: caller-owned marks for orders that were physically packed
//   - OrderPager / LabelFetcher: ports implemented by the infrastructure layer
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in internal/infrastructure/ecommerce
package marketplace
