// Package memory provides in-memory implementations of the driven store
// ports. They are used in tests, when a single tenant is configured
// through the environment instead of the SQLite credential store, and for
// settings when no config directory is available.
package memory
