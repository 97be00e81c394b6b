package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
)

var runFeedFile string

var runCmd = &cobra.Command{
	Use:   "run [sync|zero-out]",
	Short: "Run one reconciliation",
	Long: `Fetches the inventory feed and reconciles it against every registered shop.
The mode defaults to sync. With --feed-file the feed is read from a local
file instead of the FTP server.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(domain.RunModeSync), string(domain.RunModeZeroOut)},
	RunE:      runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFeedFile, "feed-file", "", "read the feed from a local file")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if reconciler == nil {
		return errors.New("reconciler not configured")
	}

	mode := domain.RunModeSync
	if len(args) > 0 {
		mode = domain.RunMode(args[0])
	}
	if !mode.IsValid() {
		return fmt.Errorf("unknown run mode %q (want sync or zero-out)", mode)
	}

	req := domain.RunRequest{Mode: mode, Source: domain.FeedSourceFTP}
	if runFeedFile != "" {
		req.Source = domain.FeedSourceLocal
		req.SourcePath = runFeedFile
	}

	cmd.Printf("Running %s (%s)...\n", mode, mode.Description())

	result, err := runWithProgress(cmd.Context(), cmd, reconciler, req)
	if result != nil {
		printRunResult(cmd, result)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

// runWithProgress runs the reconciler while displaying progress updates.
func runWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	rec driving.Reconciler,
	req domain.RunRequest,
) (*domain.RunResult, error) {
	type outcome struct {
		result *domain.RunResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := rec.Run(ctx, req)
		done <- outcome{result, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case out := <-done:
			if lastCount > 0 {
				cmd.Println()
			}
			return out.result, out.err
		case <-ticker.C:
			// Best effort
			status, statusErr := rec.Status(ctx)
			if statusErr == nil && status != nil && status.RecordsProcessed > lastCount {
				cmd.Printf("\rProcessing %s... %d records", status.Shop, status.RecordsProcessed)
				lastCount = status.RecordsProcessed
			}
		}
	}
}

func printRunResult(cmd *cobra.Command, r *domain.RunResult) {
	totals := r.Totals()
	cmd.Printf("Run %s %s in %s\n", r.ID, r.State, r.Duration().Round(time.Millisecond))
	cmd.Printf("  Shops:       %d\n", len(r.Tenants))
	cmd.Printf("  Rows:        %d\n", totals.Rows)
	cmd.Printf("  Adjusted:    %d\n", totals.Adjusted)
	cmd.Printf("  Unchanged:   %d\n", totals.Unchanged)
	cmd.Printf("  Skipped:     %d\n", totals.Skipped)
	cmd.Printf("  Soft failed: %d\n", totals.SoftFailed)
	cmd.Printf("  Failed:      %d\n", totals.Failed)
	if r.Error != "" {
		cmd.Printf("  Error:       %s\n", r.Error)
	}
}
