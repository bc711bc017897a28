package cli

import (
	"context"
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fabriclab/fabric-pulse/internal/dashboard"
	"github.com/fabriclab/fabric-pulse/internal/errors"
	"github.com/fabriclab/fabric-pulse/internal/logger"
)

type watchOptions = sessionOptions

// watchCommand runs the live dashboard: pollers in the background, Bubble
// Tea owning the terminal. Quitting the dashboard (or an interrupt, which
// bubbletea delivers as ctrl+c) cancels the pollers and waits out the
// grace period before returning.
func watchCommand(opts watchOptions) error {
	cfg, err := loadSessionConfig(opts)
	if err != nil {
		return err
	}

	username, password, err := resolveCredentials(cfg)
	if err != nil {
		return err
	}

	// Pollers stay silent on stderr while the dashboard owns the terminal;
	// FABRIC_PULSE_DEBUG output would corrupt the alt screen.
	store, group := buildPollers(cfg, username, password, logger.Noop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group.Start(ctx)

	model := dashboard.NewModel(store, group, cfg.FrameInterval)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := program.Run()

	cancel()
	group.Stop(cfg.Grace)

	return dashboardRunError(runErr)
}

// dashboardRunError maps the bubbletea run outcome onto the command's error.
// An interrupt signal is a clean shutdown, not a failure.
func dashboardRunError(runErr error) error {
	if runErr == nil || stderrors.Is(runErr, tea.ErrInterrupted) {
		return nil
	}
	return errors.Wrap(runErr, "Dashboard terminated unexpectedly")
}
