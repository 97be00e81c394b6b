// Package file provides the TOML configuration store.
//
// Settings live in ~/.stocksync/config.toml as nested tables and are
// exposed to the services as dot-notation keys ("ftp.host").
package file
