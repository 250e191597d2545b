// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/kivinge/kivinge/cmd/kivinge/cli"
	"github.com/kivinge/kivinge/lib/mailfs"
)

// MountCommand returns the "kivinge mount" command: expose the inbox
// as a read-only FUSE filesystem until interrupted.
func MountCommand() *cli.Command {
	var flags commonFlags
	var allowOther bool
	commonSet := flags.flagSet("mount")
	return &cli.Command{
		Name:    "mount",
		Summary: "Mount the inbox as a read-only filesystem",
		Description: `Mount the inbox as a read-only filesystem.

Each message becomes a directory named "<id>-<sender>-<subject>" and
each attachment a file inside it. The mount stays up until the process
receives SIGINT or SIGTERM, then unmounts cleanly.`,
		Usage: "kivinge mount <mountpoint> [flags]",
		Examples: []cli.Example{
			{Description: "Mount the inbox under /mnt/kivra", Command: "kivinge mount /mnt/kivra"},
			{Description: "Browse fixture data without an account", Command: "kivinge mount --mock /tmp/kivra"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := commonSet()
			flagSet.BoolVar(&allowOther, "allow-other", false, "permit other users to access the mount (needs user_allow_other in /etc/fuse.conf)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: kivinge mount <mountpoint>")
			}
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			client, err := app.authenticatedClient()
			if err != nil {
				return err
			}

			server, err := mailfs.Mount(mailfs.Options{
				Mountpoint: args[0],
				Client:     client,
				AllowOther: allowOther || app.config.AllowOther,
				Logger:     app.logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("mounted at %s (Ctrl-C to unmount)\n", args[0])
			<-ctx.Done()

			if err := server.Unmount(); err != nil {
				return fmt.Errorf("unmounting: %w", err)
			}
			server.Wait()
			return nil
		},
	}
}
