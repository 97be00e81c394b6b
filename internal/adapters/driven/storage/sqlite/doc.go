// Package sqlite provides the persistent stores backed by a single
// SQLite database: tenant credentials, run history and scheduler state.
//
// The database lives at ~/.stocksync/data/stocksync.db unless a data
// directory is given. Schema changes are embedded SQL migrations applied
// in order on open. The driver is modernc.org/sqlite, so the binary
// stays CGO-free.
package sqlite
