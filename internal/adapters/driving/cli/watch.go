package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/logger"
)

// watchSettle is how long a file must stay quiet before ingestion.
// Extractors write large text files in several bursts.
const watchSettle = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Watch a directory and ingest text files as they appear",
	Long: `Watches a directory and ingests .txt files when they are created or
modified. Existing files are ingested on startup; unchanged files are
skipped via the ingest manifest.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catch up on whatever is already there
	if err := ingestExisting(ctx, cmd, dir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	cmd.Printf("watching %s (ctrl-c to stop)\n", dir)

	// Pending files and when they last changed; ingested once quiet
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchSettle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isTextFile(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Not verbose-gated: a broken watcher must not fail silently.
			logger.Error("watcher error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < watchSettle {
					continue
				}
				delete(pending, path)
				ingestOne(ctx, cmd, path)
			}
		}
	}
}

// ingestExisting ingests the text files already present in the directory.
func ingestExisting(ctx context.Context, cmd *cobra.Command, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isTextFile(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		ingestOne(ctx, cmd, filepath.Join(dir, entry.Name()))
	}
	return nil
}

// ingestOne ingests a single file, reporting failure without stopping
// the watch loop.
func ingestOne(ctx context.Context, cmd *cobra.Command, path string) {
	doc, err := readPageFile(path)
	if err != nil {
		cmd.PrintErrf("skipping %s: %v\n", path, err)
		return
	}

	result, err := ingestService.Ingest(ctx, doc)
	if err != nil {
		cmd.PrintErrf("ingest %s: %v\n", path, err)
		return
	}

	if result.Skipped {
		cmd.Printf("unchanged  %s\n", doc.Source)
	} else {
		cmd.Printf("ingested   %s (%d chunks)\n", doc.Source, result.ChunksCreated)
	}
}

func isTextFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}
