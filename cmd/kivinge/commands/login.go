// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/kivinge/kivinge/cmd/kivinge/cli"
	"github.com/kivinge/kivinge/lib/kivra"
)

// LoginCommand returns the "kivinge login" command: run the BankID
// flow in the terminal and persist the resulting session.
func LoginCommand() *cli.Command {
	var flags commonFlags
	return &cli.Command{
		Name:    "login",
		Summary: "Log in to Kivra with BankID",
		Description: `Log in to Kivra with BankID.

Prints a QR code that refreshes every few seconds; scan it with the
BankID app. The session is persisted so subsequent commands work
without logging in again. Ctrl-C aborts the pending authorization.`,
		Usage: "kivinge login [flags]",
		Flags: flags.flagSet("login"),
		Run: func(args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}
			if client.Session() != nil {
				fmt.Printf("already logged in as %s\n", client.Session().UserInfo.Name)
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Println("Scan the QR code with the BankID app. Ctrl-C aborts.")
			session, err := kivra.Login(ctx, client, kivra.LoginOptions{
				OnQRUpdate: printQR,
				Logger:     app.logger,
			})
			if errors.Is(err, kivra.ErrLoginAborted) {
				fmt.Println("login aborted")
				return &cli.ExitError{Code: 1}
			}
			if err != nil {
				return err
			}

			if err := kivra.SaveSession(app.sessionPath, session); err != nil {
				return err
			}
			fmt.Printf("logged in as %s\n", session.UserInfo.Name)
			return nil
		},
	}
}

// LogoutCommand returns the "kivinge logout" command: revoke the
// access token and delete the persisted session.
func LogoutCommand() *cli.Command {
	var flags commonFlags
	return &cli.Command{
		Name:    "logout",
		Summary: "Revoke the session and forget it",
		Usage:   "kivinge logout [flags]",
		Flags:   flags.flagSet("logout"),
		Run: func(args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			client, err := app.client()
			if err != nil {
				return err
			}

			if client.Session() != nil {
				// Best effort: a failed revocation still removes the
				// local session.
				if err := client.RevokeAuthToken(context.Background()); err != nil {
					app.logger.Warn("revoking access token failed", "error", err)
				}
			}
			if err := kivra.DeleteSession(app.sessionPath); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

// printQR redraws the QR code in place. Each payload supersedes the
// previous one within seconds, so the terminal is cleared between
// renders.
func printQR(payload string) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		fmt.Printf("QR payload: %s\n", payload)
		return
	}
	fmt.Print("\033[H\033[2J")
	fmt.Println("Scan the QR code with the BankID app. Ctrl-C aborts.")
	fmt.Println(code.ToSmallString(false))
}
