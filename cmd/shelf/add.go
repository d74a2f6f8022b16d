package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/metadata"
	"github.com/nikbrunner/shelf/internal/model"
)

func newAddCmd(configFile *string) *cobra.Command {
	var (
		draft model.Draft
		tags  string
	)
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark; a blank title or description is read from the page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := openEnv(ctx, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			draft.URL = metadata.CleanURL(args[0])
			draft.Tags = model.ParseTags(tags)
			draft, err = metadata.NewClient(e.cfg.Checker.Timeout).Complete(ctx, draft)
			if err != nil {
				e.log.Warn("page metadata unavailable", logger.String("url", draft.URL), logger.Error(err))
			}

			ctrl, err := e.controller(ctx)
			if err != nil {
				return err
			}
			created, err := ctrl.AddBookmark(ctx, draft)
			if created == nil {
				return fmt.Errorf("adding bookmark: %w", err)
			}
			fmt.Printf("Added %s (%s)\n", created.Title, created.CreatedAt.Local().Format(time.DateTime))
			return nil
		},
	}
	cmd.Flags().StringVarP(&draft.Title, "title", "t", "", "bookmark title")
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "bookmark description")
	cmd.Flags().StringVar(&draft.Category, "category", "", "bookmark category")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	return cmd
}
