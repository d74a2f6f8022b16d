package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/backend"
	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/shareserver"
)

func newServeCmd(configFile *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve shared bookmarks over HTTP",
		Long: `Serve shared bookmarks over HTTP.

GET /shared/<share-id> returns the bookmarks published under a share id
as JSON. Point share.base_url at this server to make share links work.`,
		Args: cobra.NoArgs,
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
			if addr == "" {
				addr = e.cfg.Serve.Addr
			}

			srv := shareserver.New(shareserver.Params{
				Addr:           addr,
				Reader:         reader,
				Logger:         e.log,
				AllowedOrigins: e.cfg.Serve.AllowedOrigins,
			})

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()
			fmt.Printf("Serving shares on %s\n", addr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				e.log.Error("share server shutdown", logger.Error(err))
				return err
			}
			return <-errCh
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default serve.addr)")
	return cmd
}
