// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package kivra

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/kivinge/kivinge/lib/clock"
)

// codeVerifierBytes is the entropy of the PKCE code verifier before
// base64url encoding.
const codeVerifierBytes = 48

// defaultPollInterval is used when the server does not supply a
// retry_after hint.
const defaultPollInterval = time.Second

// newCodeVerifier generates a PKCE code verifier and its S256
// challenge.
func newCodeVerifier() (verifier, challenge string, err error) {
	raw := make([]byte, codeVerifierBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("kivra: generating code verifier: %w", err)
	}
	verifier = base64.RawURLEncoding.EncodeToString(raw)
	digest := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(digest[:])
	return verifier, challenge, nil
}

// LoginOptions configures a BankID login flow.
type LoginOptions struct {
	// OnQRUpdate is called with each fresh QR payload so the UI can
	// re-render the code. Optional.
	OnQRUpdate func(qrData string)

	// Clock paces the poll loop. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives progress messages. Defaults to slog.Default().
	Logger *slog.Logger
}

// Login runs the full BankID authorization flow against the client:
// fetch the OAuth config, start an authorization, poll until the user
// completes (or the context is cancelled), then exchange the code for
// tokens and build a session.
//
// Cancelling the context aborts the pending authorization server-side
// and returns ErrLoginAborted.
func Login(ctx context.Context, client Client, options LoginOptions) (*Session, error) {
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	config, err := client.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching OAuth config: %w", err)
	}

	verifier, response, err := client.StartAuth(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("starting authorization: %w", err)
	}

	pollURL := response.NextPollURL
	interval := defaultPollInterval
	if options.OnQRUpdate != nil {
		options.OnQRUpdate(response.QRCode)
	}

	for {
		select {
		case <-ctx.Done():
			// Abort server-side with a fresh context; ctx is already
			// cancelled.
			abortCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if abortErr := client.AbortAuth(abortCtx, pollURL); abortErr != nil {
				logger.Warn("aborting authorization failed", "error", abortErr)
			}
			return nil, ErrLoginAborted
		case <-clk.After(interval):
		}

		status, err := client.CheckAuth(ctx, pollURL)
		if err != nil {
			return nil, fmt.Errorf("polling authorization: %w", err)
		}

		if status.SSN == nil {
			logger.Debug("authorization pending",
				"status", status.Status,
				"progress", status.ProgressStatus,
			)
			if options.OnQRUpdate != nil && status.QRCode != "" {
				options.OnQRUpdate(status.QRCode)
			}
			if status.NextPollURL != nil {
				pollURL = *status.NextPollURL
			}
			if status.RetryAfter != nil {
				interval = time.Duration(*status.RetryAfter) * time.Second
			}
			continue
		}

		tokens, err := client.GetAuthToken(ctx, config, response.Code, verifier)
		if err != nil {
			return nil, fmt.Errorf("exchanging authorization code: %w", err)
		}

		session, err := NewSession(tokens.AccessToken, tokens.IDToken)
		if err != nil {
			return nil, err
		}
		client.SetSession(session)
		logger.Info("logged in", "user", session.UserInfo.Name)
		return session, nil
	}
}
