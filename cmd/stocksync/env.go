package main

import (
	"strconv"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/services"
	"github.com/custodia-labs/stocksync/internal/logger"
)

// Environment variables that override stored settings.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	envFTPHost     = "FTP_HOST"
	envFTPPort     = "FTP_PORT"
	envFTPUser     = "FTP_USER"
	envFTPPassword = "FTP_PASSWORD"
	envAPIVersion  = "SHOPIFY_API_VERSION"
	envDataDir     = "STOCKSYNC_DATA_DIR"
	envShop        = "SHOPIFY_SHOP"
	envAccessToken = "SHOPIFY_ACCESS_TOKEN"
)

// envOverrides holds what the environment supplies beyond settings.
type envOverrides struct {
	// tenant is set when SHOPIFY_SHOP and SHOPIFY_ACCESS_TOKEN are both given.
	tenant *domain.Tenant
}

// applyEnv overlays environment variables onto settings.
func applyEnv(settings *domain.AppSettings, lookup func(string) (string, bool)) envOverrides {
	if v, ok := lookup(envFTPHost); ok && v != "" {
		settings.FTP.Host = v
	}
	if v, ok := lookup(envFTPPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			logger.Warn("ignoring %s=%q: not a port number", envFTPPort, v)
		} else {
			settings.FTP.Port = port
		}
	}
	if v, ok := lookup(envFTPUser); ok && v != "" {
		settings.FTP.User = v
	}
	if v, ok := lookup(envFTPPassword); ok && v != "" {
		settings.FTP.Password = v
	}
	if v, ok := lookup(envAPIVersion); ok && v != "" {
		settings.Catalog.APIVersion = v
	}
	if v, ok := lookup(envDataDir); ok && v != "" {
		settings.Store.DataDir = v
	}

	var out envOverrides
	shop, _ := lookup(envShop)
	token, _ := lookup(envAccessToken)
	if shop != "" && token != "" {
		out.tenant = &domain.Tenant{Shop: services.NormaliseShop(shop), AccessToken: token}
	}
	return out
}
