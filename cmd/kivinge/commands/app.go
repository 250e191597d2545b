// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/kivinge/kivinge/lib/config"
	"github.com/kivinge/kivinge/lib/kivra"
)

// commonFlags are the flags shared by every command that talks to the
// Kivra API.
type commonFlags struct {
	configPath string
	mock       bool
	verbose    bool
}

// flagSet returns a FlagSet factory wiring the common flags into f.
// Commands append their own flags to the returned set.
func (f *commonFlags) flagSet(name string) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
		flagSet.StringVar(&f.configPath, "config", "", "path to a kivinge.yaml config file (default: $KIVINGE_CONFIG)")
		flagSet.BoolVar(&f.mock, "mock", false, "serve canned fixture data instead of talking to Kivra")
		flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
		return flagSet
	}
}

// app bundles the loaded configuration and logger for one command
// invocation.
type app struct {
	config      *config.Config
	logger      *slog.Logger
	sessionPath string
	mock        bool
}

// newApp loads the configuration and sets up logging according to the
// parsed common flags.
func newApp(flags commonFlags) (*app, error) {
	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var cfg *config.Config
	var err error
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	sessionPath := cfg.SessionPath
	if sessionPath == "" {
		sessionPath, err = kivra.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
	}

	return &app{
		config:      cfg,
		logger:      logger,
		sessionPath: sessionPath,
		mock:        flags.mock,
	}, nil
}

// client builds the API client: the fixture-backed mock when --mock is
// set, otherwise an HTTP client with any persisted session loaded.
func (a *app) client() (kivra.Client, error) {
	if a.mock {
		// The mock comes pre-logged-in so every command works without
		// a BankID round trip.
		mock := kivra.NewMockClient()
		tokens, err := mock.GetAuthToken(context.Background(), kivra.RemoteConfig{}, "", "")
		if err != nil {
			return nil, err
		}
		session, err := kivra.NewSession(tokens.AccessToken, tokens.IDToken)
		if err != nil {
			return nil, err
		}
		mock.SetSession(session)
		return mock, nil
	}

	session, err := kivra.LoadSession(a.sessionPath)
	if err != nil {
		return nil, err
	}
	return kivra.NewHTTPClient(kivra.Config{
		APIBaseURL:      a.config.APIURL,
		AccountsBaseURL: a.config.AccountsURL,
		Logger:          a.logger,
		Session:         session,
	})
}

// authenticatedClient is client plus a session check with a friendly
// error for the common not-logged-in case.
func (a *app) authenticatedClient() (kivra.Client, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	if client.Session() == nil {
		return nil, fmt.Errorf("not logged in; run 'kivinge login' first")
	}
	return client, nil
}
