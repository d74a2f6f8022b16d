package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "shelf",
		Short: "Bookmarks and collections in the terminal",
		Long: `shelf - bookmark manager with collections, sharing and link checks.

Run without arguments to open the interactive TUI.

Data and config live in ~/.config/shelf (config.yaml, SHELF_* env vars).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), configFile)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ~/.config/shelf/config.yaml)")

	rootCmd.AddCommand(newAddCmd(&configFile))
	rootCmd.AddCommand(newSearchCmd(&configFile))
	rootCmd.AddCommand(newImportCmd(&configFile))
	rootCmd.AddCommand(newExportCmd(&configFile))
	rootCmd.AddCommand(newCheckCmd(&configFile))
	rootCmd.AddCommand(newSharedCmd(&configFile))
	rootCmd.AddCommand(newServeCmd(&configFile))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
