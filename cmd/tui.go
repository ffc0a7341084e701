package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/postx/internal/repositories"
	"github.com/desertthunder/postx/internal/shared"
	"github.com/desertthunder/postx/internal/store"
	"github.com/desertthunder/postx/internal/ui"
	"github.com/urfave/cli/v3"
)

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Run the interactive wizard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "theme",
				Usage: "dark or light (default: last used, then ui.theme)",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory for downloaded post images",
				Value: ".",
			},
		},
		Action: r.TUI,
	}
}

// TUI launches the interactive terminal wizard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Logs go to a file so they do not interfere with rendering.
	fileLogger, err := shared.NewFileLogger(r.config.UI.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.UI.LogLevel))
	r.SetLogger(fileLogger)

	w, err := r.open(ctx)
	if err != nil {
		return err
	}

	last, err := r.prefs.GetTime(repositories.PrefLastUnload)
	if err != nil {
		r.logger.Warn("failed to read last unload time", "error", err)
	}
	if store.ShouldStartFresh(last, time.Now(), r.config.Wizard.RefreshGrace.Duration) {
		r.logger.Info("starting fresh project after reload", "last_unload", last)
		w.NewProject(ctx)
	}

	theme := r.config.UI.Theme
	if cmd.IsSet("theme") {
		theme = cmd.String("theme")
		if err := r.prefs.Set(repositories.PrefTheme, string(ui.ParseTheme(theme))); err != nil {
			r.logger.Warn("failed to save theme", "error", err)
		}
	}

	model, err := ui.NewModel(ctx, w, ui.Options{
		Theme:       ui.ParseTheme(theme),
		Prefs:       r.prefs,
		Language:    r.config.UI.Language,
		DownloadDir: cmd.String("dir"),
		Logger:      shared.WithLogger(r.logger, "component", "ui"),
	})
	if err != nil {
		return err
	}
	defer model.Close()

	defer func() {
		if err := r.prefs.SetTime(repositories.PrefLastUnload, time.Now()); err != nil {
			r.logger.Warn("failed to record unload time", "error", err)
		}
	}()

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
