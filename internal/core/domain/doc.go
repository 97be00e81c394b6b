// Package domain defines the core business entities for stocksync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FeedRecord: One decoded row of the inventory feed
//   - Tenant: A shop and the access token used to call its catalog
//   - InventorySnapshot: The tracked inventory of one product variant
//   - QuantityChange: A signed adjustment for one item at one location
//   - RunResult: The outcome of one reconciliation run
//
// Delta computation lives here as pure functions over these types.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
