// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/kivinge/kivinge/lib/clock"
	"github.com/kivinge/kivinge/lib/kivra"
)

// Options configures a TUI session.
type Options struct {
	// SessionPath is where a session obtained by an in-TUI login is
	// persisted. If empty, the session is not saved.
	SessionPath string

	// Clock paces the login poll loop. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives diagnostic messages. Defaults to slog.Default().
	Logger *slog.Logger
}

// Run starts the interactive interface: a login screen first when the
// client has no session, then the inbox browser. Returns once the user
// quits.
func Run(ctx context.Context, client kivra.Client, options Options) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tui: standard output is not a terminal")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if client.Session() == nil {
		login := NewLogin(ctx, client, options.Clock, logger)
		program := tea.NewProgram(login, tea.WithContext(ctx))
		final, err := program.Run()
		if err != nil {
			return fmt.Errorf("running login screen: %w", err)
		}
		result := final.(LoginModel)
		if result.Err != nil {
			return result.Err
		}
		if options.SessionPath != "" {
			if err := kivra.SaveSession(options.SessionPath, result.Session); err != nil {
				logger.Warn("persisting session failed", "error", err)
			}
		}
	}

	inbox := NewInbox(client)
	program := tea.NewProgram(inbox, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running inbox browser: %w", err)
	}
	return nil
}
