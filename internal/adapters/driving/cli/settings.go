package cli

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the FTP feed, catalog API, location targets,
retry policy and scheduler.

Settings are stored in ~/.stocksync/config.toml. Environment variables
(FTP_HOST, FTP_PORT, FTP_USER, FTP_PASSWORD, SHOPIFY_API_VERSION) override
the stored values at startup.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single setting by its config key, for example:

  stocksync settings set ftp.host ftp.example.com
  stocksync settings set retry.max_attempts 5
  stocksync settings set scheduler.inventory_sync.interval 30m
  stocksync settings set locations.vaasa.name "Vaasa Warehouse"`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that settings are complete enough to run",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[FTP]")
	cmd.Printf("  Host: %s\n", orUnset(settings.FTP.Host))
	cmd.Printf("  Port: %d\n", settings.FTP.Port)
	cmd.Printf("  User: %s\n", orUnset(settings.FTP.User))
	if settings.FTP.Password != "" {
		cmd.Printf("  Password: %s\n", maskSecret(settings.FTP.Password))
	} else {
		cmd.Println("  Password: (not set)")
	}
	cmd.Printf("  Remote path: %s\n", settings.FTP.RemotePath)
	cmd.Printf("  Timeout: %s\n", settings.FTP.Timeout)
	cmd.Println()

	cmd.Println("[Feed]")
	cmd.Printf("  Local path: %s\n", settings.Feed.LocalPath)
	cmd.Printf("  Separator: %q\n", settings.Feed.Separator)
	cmd.Printf("  SKU column: %s\n", settings.Feed.SKUColumn)
	cmd.Println()

	cmd.Println("[Catalog]")
	cmd.Printf("  API version: %s\n", settings.Catalog.APIVersion)
	cmd.Printf("  Timeout: %s\n", settings.Catalog.Timeout)
	cmd.Printf("  Requests per second: %g\n", settings.Catalog.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Locations]")
	for _, t := range settings.Locations {
		cmd.Printf("  %s: %q <- column %s\n", t.Key, t.Name, t.Column)
	}
	cmd.Println()

	cmd.Println("[Retry]")
	cmd.Printf("  Max attempts: %d\n", settings.Retry.MaxAttempts)
	cmd.Printf("  Interval: %s to %s\n", settings.Retry.InitialInterval, settings.Retry.MaxInterval)
	cmd.Println()

	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %t\n", settings.Scheduler.Enabled)
	for _, id := range sortedTaskIDs(settings.Scheduler.TaskConfigs) {
		tc := settings.Scheduler.TaskConfigs[id]
		cmd.Printf("  %s: enabled=%t every %s\n", id, tc.Enabled, tc.Interval)
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	status := "ready"
	if err := settingsService.Validate(); err != nil {
		status = err.Error()
	}
	cmd.Printf("Status: %s\n", status)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("%s updated.\n", key)
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("settings incomplete: %w", err)
	}

	cmd.Println("Settings are complete.")
	return nil
}

func sortedTaskIDs(m map[string]domain.TaskConfig) []string {
	return slices.Sorted(maps.Keys(m))
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:2] + "..." + secret[len(secret)-2:]
}
