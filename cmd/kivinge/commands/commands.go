// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the kivinge CLI command tree.
package commands

import (
	"fmt"

	"github.com/kivinge/kivinge/cmd/kivinge/cli"
	"github.com/kivinge/kivinge/lib/version"
)

// Root builds and returns the complete kivinge command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "kivinge",
		Description: `kivinge: your Kivra mailbox in the terminal.

Log in with BankID, browse and download your mail, or mount the whole
inbox as a read-only filesystem.`,
		Subcommands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			ListCommand(),
			ViewCommand(),
			DownloadCommand(),
			OpenCommand(),
			MountCommand(),
			TUICommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("kivinge %s\n", version.String())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Log in with BankID",
				Command:     "kivinge login",
			},
			{
				Description: "List the inbox",
				Command:     "kivinge list",
			},
			{
				Description: "Save the first attachment of message 3",
				Command:     "kivinge download 3 0",
			},
			{
				Description: "Mount the inbox as a filesystem",
				Command:     "kivinge mount /mnt/kivra",
			},
			{
				Description: "Explore with fixture data, no account needed",
				Command:     "kivinge tui --mock",
			},
		},
	}
}
