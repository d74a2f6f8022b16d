package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/backend"
)

func newSharedCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "shared <share-id>",
		Short: "List the bookmarks published under a share id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := openEnv(ctx, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			reader, ok := e.backend.(backend.SharedReader)
			if !ok {
				return fmt.Errorf("%s backend cannot read shares", e.cfg.Backend.Kind)
			}
			bookmarks, err := reader.SharedBookmarks(ctx, args[0])
			if err != nil {
				return fmt.Errorf("reading share: %w", err)
			}
			if len(bookmarks) == 0 {
				fmt.Printf("Nothing shared under '%s'\n", args[0])
				return nil
			}

			for _, b := range bookmarks {
				fmt.Printf("%s\n  %s\n", b.Title, b.URL)
				if len(b.Tags) > 0 {
					fmt.Printf("  #%s\n", strings.Join(b.Tags, " #"))
				}
			}
			return nil
		},
	}
}
