// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package kivra

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed testdata/config.json
var fixtureConfig []byte

//go:embed testdata/auth_response.json
var fixtureAuthResponse []byte

//go:embed testdata/auth_status.json
var fixtureAuthStatus []byte

//go:embed testdata/auth_token_response.json
var fixtureAuthToken []byte

//go:embed testdata/inbox.json
var fixtureInbox []byte

//go:embed testdata/details.json
var fixtureDetails []byte

// MockClient serves canned fixture data without any network access.
// It backs the --mock CLI flag and package tests. The login flow
// "completes" after three status polls.
type MockClient struct {
	mu             sync.Mutex
	checkAuthCalls int
	session        *Session
}

var _ Client = (*MockClient)(nil)

// NewMockClient returns a fixture-backed Client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GetConfig(ctx context.Context) (RemoteConfig, error) {
	var config RemoteConfig
	err := unmarshalFixture(fixtureConfig, &config)
	return config, err
}

func (m *MockClient) StartAuth(ctx context.Context, config RemoteConfig) (string, AuthResponse, error) {
	verifier, _, err := newCodeVerifier()
	if err != nil {
		return "", AuthResponse{}, err
	}
	var response AuthResponse
	if err := unmarshalFixture(fixtureAuthResponse, &response); err != nil {
		return "", AuthResponse{}, err
	}
	return verifier, response, nil
}

func (m *MockClient) CheckAuth(ctx context.Context, pollURL string) (AuthStatus, error) {
	var status AuthStatus
	if err := unmarshalFixture(fixtureAuthStatus, &status); err != nil {
		return AuthStatus{}, err
	}

	m.mu.Lock()
	m.checkAuthCalls++
	completed := m.checkAuthCalls > 3
	m.mu.Unlock()

	if completed {
		ssn := "195208152712"
		status.SSN = &ssn
		status.Status = "complete"
	}
	return status, nil
}

func (m *MockClient) AbortAuth(ctx context.Context, pollURL string) error { return nil }

func (m *MockClient) GetAuthToken(ctx context.Context, config RemoteConfig, authCode, verifier string) (AuthTokenResponse, error) {
	var response AuthTokenResponse
	err := unmarshalFixture(fixtureAuthToken, &response)
	return response, err
}

func (m *MockClient) RevokeAuthToken(ctx context.Context) error { return nil }

func (m *MockClient) ListInbox(ctx context.Context) (InboxListing, error) {
	var items []InboxItem
	if err := unmarshalFixture(fixtureInbox, &items); err != nil {
		return nil, err
	}
	return NewInboxListing(items), nil
}

func (m *MockClient) GetItemDetails(ctx context.Context, itemKey string) (ItemDetails, error) {
	var details ItemDetails
	err := unmarshalFixture(fixtureDetails, &details)
	return details, err
}

func (m *MockClient) MarkAsRead(ctx context.Context, itemKey string) error { return nil }

func (m *MockClient) DownloadAttachment(ctx context.Context, itemKey, attachmentKey string) ([]byte, error) {
	return []byte("tjena"), nil
}

func (m *MockClient) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *MockClient) SetSession(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
}

func unmarshalFixture(data []byte, result any) error {
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("kivra: decoding fixture: %w", err)
	}
	return nil
}
