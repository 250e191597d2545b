// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package kivra

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UserInfo is the identity extracted from the id_token claims.
type UserInfo struct {
	KivraUserID string `json:"kivra_user_id"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	SSN         string `json:"ssn"`
	Email       string `json:"email"`
}

// Session is a logged-in identity: the bearer token for API calls plus
// the user info decoded from the id_token.
type Session struct {
	UserInfo    UserInfo
	AccessToken string
	IDToken     string
}

// storedSession is the on-disk shape. Only the tokens are persisted;
// UserInfo is re-derived from the id_token on load so the two can
// never disagree.
type storedSession struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
}

// NewSession builds a Session from freshly issued tokens, extracting
// the user info from the id_token claims.
func NewSession(accessToken, idToken string) (*Session, error) {
	userInfo, err := ParseIDToken(idToken)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserInfo:    userInfo,
		AccessToken: accessToken,
		IDToken:     idToken,
	}, nil
}

// ParseIDToken extracts the user info claims from a JWT id_token. The
// signature is not verified: the token was received directly from the
// issuer over TLS and is only used locally.
func ParseIDToken(idToken string) (UserInfo, error) {
	sections := strings.Split(idToken, ".")
	if len(sections) < 2 {
		return UserInfo{}, fmt.Errorf("kivra: malformed id_token: %d sections", len(sections))
	}
	claimsJSON, err := base64.RawURLEncoding.DecodeString(sections[1])
	if err != nil {
		return UserInfo{}, fmt.Errorf("kivra: decoding id_token claims: %w", err)
	}
	var userInfo UserInfo
	if err := json.Unmarshal(claimsJSON, &userInfo); err != nil {
		return UserInfo{}, fmt.Errorf("kivra: parsing id_token claims: %w", err)
	}
	return userInfo, nil
}

// DefaultSessionPath returns the per-user location of the persisted
// session file.
func DefaultSessionPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("kivra: resolving config dir: %w", err)
	}
	return filepath.Join(configDir, "kivinge", "session.json"), nil
}

// LoadSession reads a persisted session from path. Returns (nil, nil)
// when no session file exists.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kivra: reading session file: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("kivra: parsing session file: %w", err)
	}
	return NewSession(stored.AccessToken, stored.IDToken)
}

// SaveSession persists the session to path, creating parent
// directories as needed. The file is user-readable only; it holds a
// bearer credential.
func SaveSession(path string, session *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("kivra: creating session dir: %w", err)
	}
	data, err := json.Marshal(storedSession{
		AccessToken: session.AccessToken,
		IDToken:     session.IDToken,
	})
	if err != nil {
		return fmt.Errorf("kivra: encoding session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("kivra: writing session file: %w", err)
	}
	return nil
}

// DeleteSession removes the persisted session. Missing files are not
// an error; logout is idempotent.
func DeleteSession(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
