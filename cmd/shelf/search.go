package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/browser"
	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/picker"
	"github.com/nikbrunner/shelf/internal/search"
)

func newSearchCmd(configFile *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search bookmarks and open the pick in the browser",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")

			e, err := openEnv(ctx, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			ctrl, err := e.controller(ctx)
			if err != nil {
				return err
			}

			results := search.Snapshot(ctrl.Snapshot(), query, limit)
			if len(results) == 0 {
				fmt.Printf("No bookmarks found for '%s'\n", query)
				return nil
			}

			var selected *model.Bookmark
			if len(results) == 1 {
				// Single result - select it directly
				selected = &results[0].Bookmark
				fmt.Printf("Opening: %s\n", selected.Title)
			} else {
				p := tea.NewProgram(picker.New(results, query), tea.WithContext(ctx))
				finalModel, err := p.Run()
				if err != nil {
					return fmt.Errorf("running picker: %w", err)
				}
				finalPicker := finalModel.(picker.Picker)
				if finalPicker.Cancelled() {
					return nil
				}
				selected = finalPicker.SelectedBookmark()
			}
			if selected == nil {
				return nil
			}

			if err := browser.Open(selected.URL); err != nil {
				return err
			}
			if err := ctrl.RecordVisit(ctx, selected.ID); err != nil {
				e.log.Warn("record visit failed", logger.String("id", selected.ID), logger.Error(err))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of results")
	return cmd
}
