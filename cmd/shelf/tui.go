package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/shelf/internal/metadata"
	"github.com/nikbrunner/shelf/internal/tui"
)

// runTUI runs the full interactive TUI.
func runTUI(ctx context.Context, configFile string) error {
	e, err := openEnv(ctx, configFile)
	if err != nil {
		return err
	}
	defer e.Close()

	ctrl, err := e.controller(ctx)
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.AppParams{
		Controller: ctrl,
		Completer:  metadata.NewClient(e.cfg.Checker.Timeout),
		Logger:     e.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
