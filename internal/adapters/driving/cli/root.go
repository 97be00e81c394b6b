// Package cli provides the cobra command tree for stocksync.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
	"github.com/custodia-labs/stocksync/internal/logger"
)

// version is set by Execute from the build.
var version = "dev"

// verbose enables debug logging for every command.
var verbose bool

// Services wired by the composition root.
var (
	reconciler      driving.Reconciler
	runHistory      driving.RunHistory
	tenantService   driving.TenantService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	triggerServer   Server
)

// Server is the HTTP trigger surface started by the serve command.
type Server interface {
	Run(ctx context.Context, addr string) error
}

// Services groups the driving ports the commands call into.
type Services struct {
	Reconciler driving.Reconciler
	History    driving.RunHistory
	Tenants    driving.TenantService
	Settings   driving.SettingsService

	// Scheduler is optional; serve runs without it when nil.
	Scheduler driving.Scheduler

	// Server is the HTTP trigger surface for serve.
	Server Server
}

// SetServices wires the services used by the commands.
func SetServices(s Services) {
	reconciler = s.Reconciler
	runHistory = s.History
	tenantService = s.Tenants
	settingsService = s.Settings
	scheduler = s.Scheduler
	triggerServer = s.Server
}

var rootCmd = &cobra.Command{
	Use:   "stocksync",
	Short: "Reconcile a supplier inventory feed into Shopify stores",
	Long: `stocksync downloads the supplier inventory feed from FTP and reconciles
its quantities into the inventory of every registered shop.

Two run modes are available:
  sync      - set the named target locations to the feed quantities
  zero-out  - zero every other tracked location of the feed products`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute(v string) error {
	version = v

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}
