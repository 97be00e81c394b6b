package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stocksync/internal/logger"
)

const defaultServeAddr = ":3000"

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP triggers and run the scheduler",
	Long: `Starts the HTTP trigger surface:

  GET|POST /api/sync_ftp_csv_products          run sync
  GET|POST /api/remove_other_locations_quantity run zero-out
  GET      /api/status                          active or last run
  GET      /api/runs                            run history
  GET      /healthz, /metrics

When the scheduler is enabled, scheduled runs execute alongside.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if triggerServer == nil {
		return errors.New("http server not configured")
	}

	addr := resolveServeAddr()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	schedErr := make(chan error, 1)
	if scheduler != nil {
		go func() {
			schedErr <- scheduler.Start(ctx)
		}()
	} else {
		close(schedErr)
	}

	cmd.Printf("Listening on %s\n", addr)
	err := triggerServer.Run(ctx, addr)

	cancel()
	if scheduler != nil {
		if stopErr := scheduler.Stop(); stopErr != nil {
			logger.Warn("scheduler stop: %v", stopErr)
		}
	}
	if sErr := <-schedErr; sErr != nil && !errors.Is(sErr, context.Canceled) {
		logger.Warn("scheduler: %v", sErr)
	}

	if err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// resolveServeAddr prefers the flag, then the configured address.
func resolveServeAddr() string {
	if serveAddr != "" {
		return serveAddr
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.Server.Addr != "" {
			return s.Server.Addr
		}
	}
	return defaultServeAddr
}
