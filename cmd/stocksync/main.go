package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/stocksync/internal/adapters/driven/config/file"
	feedcsv "github.com/custodia-labs/stocksync/internal/adapters/driven/feed/csv"
	"github.com/custodia-labs/stocksync/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/stocksync/internal/adapters/driven/shopify"
	"github.com/custodia-labs/stocksync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stocksync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/stocksync/internal/adapters/driven/transfer/ftp"
	"github.com/custodia-labs/stocksync/internal/adapters/driven/transfer/local"
	"github.com/custodia-labs/stocksync/internal/adapters/driving/cli"
	httpapi "github.com/custodia-labs/stocksync/internal/adapters/driving/http"
	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
	"github.com/custodia-labs/stocksync/internal/core/services"
	"github.com/custodia-labs/stocksync/internal/logger"
)

var version = "dev"

func main() {
	store, err := wire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = cli.Execute(version)
	if cerr := store.Close(); cerr != nil {
		logger.Warn("closing store: %v", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// openConfigStore opens the TOML config file. Without a home directory,
// as in minimal containers, settings come from defaults and the
// environment only.
func openConfigStore(configDir func() (string, error)) (driven.ConfigStore, error) {
	dir, err := configDir()
	if err != nil {
		logger.Warn("no config directory (%v): using defaults and environment", err)
		return memory.NewConfigStore(), nil
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return store, nil
}

// wire builds the adapters and services and hands them to the CLI.
// The returned store must be closed on exit.
func wire() (*sqlite.Store, error) {
	configStore, err := openConfigStore(file.DefaultConfigDir)
	if err != nil {
		return nil, err
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	env := applyEnv(settings, os.LookupEnv)
	logger.SetVerbose(settings.Logging.Verbose)

	store, err := sqlite.NewStore(settings.Store.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	var tenants driven.TenantStore = store.TenantStore()
	if env.tenant != nil {
		logger.Debug("using tenant %s from environment", env.tenant.Shop)
		tenants = memory.NewTenantStore(*env.tenant)
	}

	catalog := shopify.NewClient(shopify.ConfigFromSettings(settings))
	logger.Info("catalog retry: max_attempts=%d initial=%s max=%s",
		settings.Retry.MaxAttempts, settings.Retry.InitialInterval, settings.Retry.MaxInterval)

	fetchers := map[domain.FeedSource]driven.FeedFetcher{
		domain.FeedSourceFTP:   ftp.NewFetcher(ftp.ConfigFromSettings(settings.FTP)),
		domain.FeedSourceLocal: local.NewFetcher(),
	}

	observer := prometheus.NewObserver()
	reconciler := services.NewRunOrchestrator(
		tenants,
		fetchers,
		feedcsv.NewDecoder(settings.Feed.Separator),
		catalog,
		store.RunStore(),
		observer,
		services.RunConfigFromSettings(settings),
	)
	history := services.NewRunHistoryService(store.RunStore())

	var scheduler driving.Scheduler
	if settings.Scheduler.Enabled {
		scheduler = services.NewScheduler(settings.Scheduler, store.SchedulerStore(), reconciler)
	}

	server := httpapi.NewServer(reconciler,
		httpapi.WithHistory(history),
		httpapi.WithMetrics(observer.Handler()),
	)

	cli.SetServices(cli.Services{
		Reconciler: reconciler,
		History:    history,
		Tenants:    services.NewTenantService(store.TenantStore()),
		Settings:   settingsService,
		Scheduler:  scheduler,
		Server:     server,
	})

	return store, nil
}
