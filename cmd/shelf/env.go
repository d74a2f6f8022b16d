package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nikbrunner/shelf/internal/backend"
	"github.com/nikbrunner/shelf/internal/config"
	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/view"
)

// env is what every command needs: config, logger, an open backend and
// the session it authenticates with.
type env struct {
	cfg     *config.Config
	log     logger.Logger
	backend backend.Backend
	session view.StaticSession
	closer  io.Closer
}

func openEnv(ctx context.Context, configFile string) (*env, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("getting config dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}

	cfg, err := config.Load(dir, configFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	session := view.NewStaticSession(cfg.Backend.Token, cfg.Backend.User)
	b, closer, err := backend.Open(ctx, cfg, session)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Backend.Kind, err)
	}
	log.Info("backend opened", logger.String("kind", cfg.Backend.Kind))

	return &env{cfg: cfg, log: log, backend: b, session: session, closer: closer}, nil
}

// controller builds a view controller over the backend and loads the
// first snapshot.
func (e *env) controller(ctx context.Context) (*view.Controller, error) {
	theme, err := view.ParseTheme(e.cfg.UI.Theme)
	if err != nil {
		return nil, err
	}
	ctrl := view.New(view.Params{
		Backend:         e.backend,
		Session:         e.session,
		Theme:           theme,
		Locale:          e.cfg.Engine.Locale,
		ShareBaseURL:    e.cfg.Share.BaseURL,
		BulkConcurrency: e.cfg.Engine.BulkConcurrency,
		Logger:          e.log,
	})
	if err := ctrl.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("loading bookmarks: %w", err)
	}
	return ctrl, nil
}

func (e *env) Close() {
	if err := e.closer.Close(); err != nil {
		e.log.Warn("closing backend", logger.Error(err))
	}
	_ = e.log.Sync()
}
