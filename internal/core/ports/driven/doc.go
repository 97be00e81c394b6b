// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - FeedFetcher: Downloads the feed file (FTP or a local drop file)
//   - FeedDecoder: Streams feed records from the downloaded file
//   - Catalog: Catalog API (variant lookup, locations, activation, adjustments)
//   - TenantStore: Shop credentials, listed once per run
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Run history. Without it, results are only logged.
//   - RunObserver: Run and record metrics.
//   - SchedulerStore: Scheduled task state. Without it, tasks start fresh.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
