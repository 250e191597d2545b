// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/kivinge/kivinge/cmd/kivinge/cli"
	"github.com/kivinge/kivinge/internal/tui"
)

// TUICommand returns the "kivinge tui" command: the interactive inbox
// browser, with an in-terminal BankID login when no session exists.
func TUICommand() *cli.Command {
	var flags commonFlags
	return &cli.Command{
		Name:    "tui",
		Summary: "Browse the inbox interactively",
		Usage:   "kivinge tui [flags]",
		Examples: []cli.Example{
			{Description: "Try the interface with fixture data", Command: "kivinge tui --mock"},
		},
		Flags: flags.flagSet("tui"),
		Run: func(args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			return tui.Run(context.Background(), client, tui.Options{
				SessionPath: app.sessionPath,
				Logger:      app.logger,
			})
		},
	}
}
