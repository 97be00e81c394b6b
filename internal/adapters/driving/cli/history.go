package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stocksync/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past runs",
	Long: `Lists recent runs, most recent first. With a run ID, shows the
per-shop counters of that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistoryCmd,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output runs as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	if runHistory == nil {
		return errors.New("run history not configured")
	}

	if len(args) == 1 {
		run, err := runHistory.Get(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("run %s not found", args[0])
			}
			return fmt.Errorf("failed to get run: %w", err)
		}
		if historyJSON {
			return outputJSON(cmd, run)
		}
		printRunDetail(cmd, run)
		return nil
	}

	runs, err := runHistory.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if historyJSON {
		return outputJSON(cmd, runs)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	cmd.Printf("%-36s  %-8s  %-6s  %-20s  %8s  %8s  %6s\n",
		"ID", "MODE", "STATE", "STARTED", "ROWS", "ADJUSTED", "FAILED")
	for i := range runs {
		r := &runs[i]
		totals := r.Totals()
		cmd.Printf("%-36s  %-8s  %-6s  %-20s  %8d  %8d  %6d\n",
			r.ID, r.Mode, r.State, r.StartedAt.Local().Format(time.DateTime),
			totals.Rows, totals.Adjusted, totals.Failed+totals.SoftFailed)
	}
	return nil
}

func printRunDetail(cmd *cobra.Command, r *domain.RunResult) {
	printRunResult(cmd, r)
	cmd.Printf("  Mode:        %s\n", r.Mode)
	cmd.Printf("  Started:     %s\n", r.StartedAt.Local().Format(time.RFC3339))
	for _, t := range r.Tenants {
		cmd.Printf("  %s: rows=%d adjusted=%d unchanged=%d skipped=%d soft_failed=%d failed=%d\n",
			t.Shop, t.Rows, t.Adjusted, t.Unchanged, t.Skipped, t.SoftFailed, t.Failed)
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
