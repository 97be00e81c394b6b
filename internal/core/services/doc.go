// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The reconciliation pipeline lives here: LocationResolver and
// AdjustmentApplier are composed into one record handler per run mode,
// and RunOrchestrator streams the feed through it for every tenant.
//
// Services are pure Go with no CGO.
package services
