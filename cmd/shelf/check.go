package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/backend"
	"github.com/nikbrunner/shelf/internal/culler"
)

func newCheckCmd(configFile *string) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check every bookmark URL and flag the broken ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := openEnv(ctx, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			writer, ok := e.backend.(backend.LinkStatusWriter)
			if !ok && !dryRun {
				return fmt.Errorf("%s backend cannot store link status, use --dry-run", e.cfg.Backend.Kind)
			}

			bookmarks, err := e.backend.ListBookmarks(ctx)
			if err != nil {
				return fmt.Errorf("loading bookmarks: %w", err)
			}

			checker := culler.New(e.cfg.Checker.Concurrency, e.cfg.Checker.Timeout, e.cfg.Checker.ExcludeDomains,
				culler.WithLogger(e.log))
			results := checker.Check(ctx, bookmarks, func(completed, total int) {
				fmt.Fprintf(os.Stderr, "\rChecking %d/%d", completed, total)
			})
			fmt.Fprintln(os.Stderr)

			broken := 0
			for _, r := range results {
				if !r.Broken() {
					continue
				}
				broken++
				reason := r.Error
				if reason == "" {
					reason = fmt.Sprintf("HTTP %d", r.StatusCode)
				}
				fmt.Printf("%-12s %s  %s (%s)\n", r.Status, r.Bookmark.Title, r.Bookmark.URL, reason)
			}

			if dryRun {
				fmt.Printf("Checked %d bookmarks, %d broken (dry run)\n", len(results), broken)
				return nil
			}

			summary, err := culler.Apply(ctx, writer, results, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("saving link status: %w", err)
			}
			fmt.Printf("Checked %d bookmarks, %d broken", summary.Checked, summary.Broken)
			if summary.Skipped > 0 {
				fmt.Printf(" (%d private skipped)", summary.Skipped)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without saving")
	return cmd
}
