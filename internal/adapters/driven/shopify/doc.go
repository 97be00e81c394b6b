// Package shopify implements the catalog port against the Shopify Admin
// GraphQL API.
//
// # Authentication
//
// Each tenant is a shop with its own access token, sent in the
// X-Shopify-Access-Token header. Tokens are obtained through an
// oauth2.TokenSource so offline tokens can be swapped for refreshing
// sources without touching the request path.
//
// # Rate Limiting
//
// Shopify meters GraphQL calls with a cost-based leaky bucket per shop.
// The client throttles proactively with a token bucket and reactively
// from extensions.cost.throttleStatus: when the available cost drops
// below a buffer, the next request waits for the bucket to restore.
//
// # Retries
//
// Queries are retried on throttling, HTTP 429 and 5xx, and network
// failures. Mutations are retried only when throttled, since a
// throttled request is rejected before it executes; any other failure
// may have applied the mutation.
package shopify
