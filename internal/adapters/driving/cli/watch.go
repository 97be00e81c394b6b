package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/logger"
)

var (
	watchPattern string
	watchSettle  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Run sync whenever a feed file is dropped into a directory",
	Long: `Watches a directory and runs a sync from every feed file written to it.
A file is picked up once it has not changed for the settle period.
Hidden files are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "*.csv", "glob of feed file names")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 2*time.Second, "quiet period before a dropped file is read")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if reconciler == nil {
		return errors.New("reconciler not configured")
	}
	if _, err := filepath.Match(watchPattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", watchPattern, err)
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s for %s\n", dir, watchPattern)
	return watchLoop(cmd.Context(), cmd, watcher)
}

// watchLoop debounces feed file events and runs a sync per settled file.
func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher) error {
	pending := make(map[string]time.Time)
	tick := watchSettle / 4
	if tick < 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if path, ok := feedFileEvent(event, watchPattern); ok {
				logger.Debug("watch: %s %s", event.Op, path)
				pending[path] = time.Now()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", werr)
		case now := <-ticker.C:
			for path, seen := range pending {
				if now.Sub(seen) < watchSettle {
					continue
				}
				delete(pending, path)
				syncDroppedFile(ctx, cmd, path)
			}
		}
	}
}

// syncDroppedFile runs a sync from a local feed file. Failures are logged
// so the watch keeps running.
func syncDroppedFile(ctx context.Context, cmd *cobra.Command, path string) {
	cmd.Printf("Syncing from %s...\n", path)
	result, err := reconciler.Run(ctx, domain.RunRequest{
		Mode:       domain.RunModeSync,
		Source:     domain.FeedSourceLocal,
		SourcePath: path,
	})
	if result != nil {
		printRunResult(cmd, result)
	}
	if err != nil {
		logger.Error("sync from %s failed: %v", path, err)
	}
}

// feedFileEvent returns the path of a created or written feed file.
// Directories, hidden files, removals and chmods are ignored.
func feedFileEvent(event fsnotify.Event, pattern string) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	if matched, err := filepath.Match(pattern, name); err != nil || !matched {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}
