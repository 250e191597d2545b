// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package kivra

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testSession returns a session whose user id routes requests in the
// fake server below.
func testSession(t *testing.T) *Session {
	t.Helper()
	session, err := NewSession("access-token-fixture", fixtureIDToken(t))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session
}

// newTestClient starts an httptest server with the given handler and
// returns a client pointed at it for both API and accounts traffic.
func newTestClient(t *testing.T, session *Session, handler http.Handler) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(Config{
		APIBaseURL:      server.URL,
		AccountsBaseURL: server.URL,
		HTTPClient:      server.Client(),
		Session:         session,
	})
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return client
}

func TestNewHTTPClientRejectsBadBaseURL(t *testing.T) {
	for _, baseURL := range []string{"ftp://example.com", "://nope", "not a url at all\x00"} {
		if _, err := NewHTTPClient(Config{APIBaseURL: baseURL}); err == nil {
			t.Errorf("NewHTTPClient(%q) succeeded, want error", baseURL)
		}
	}
}

func TestListInboxRequestShape(t *testing.T) {
	session := testSession(t)

	var gotPath, gotQuery, gotAuth string
	client := newTestClient(t, session, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write(fixtureInbox)
	}))

	listing, err := client.ListInbox(context.Background())
	if err != nil {
		t.Fatalf("ListInbox: %v", err)
	}

	if gotPath != "/v3/user/17eb9fd17c0a3f2e2f/content" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "listing=all" {
		t.Errorf("query = %q, want listing=all", gotQuery)
	}
	if gotAuth != "Bearer access-token-fixture" {
		t.Errorf("authorization = %q", gotAuth)
	}

	// The fixture's items span January to March; creation order
	// determines the numbering regardless of the remote's ordering.
	if len(listing) != 3 {
		t.Fatalf("listing has %d entries, want 3", len(listing))
	}
	wantSenders := []string{"Elbolaget AB", "Trygg Forsakring", "Skatteverket"}
	for i, entry := range listing {
		if entry.Item.SenderName != wantSenders[i] {
			t.Errorf("entry %d sender = %q, want %q", i, entry.Item.SenderName, wantSenders[i])
		}
	}
}

func TestAuthenticatedCallsRequireSession(t *testing.T) {
	client := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached the server without a session")
	}))
	ctx := context.Background()

	if _, err := client.ListInbox(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("ListInbox = %v, want ErrNoSession", err)
	}
	if _, err := client.GetItemDetails(ctx, "key"); !errors.Is(err, ErrNoSession) {
		t.Errorf("GetItemDetails = %v, want ErrNoSession", err)
	}
	if _, err := client.DownloadAttachment(ctx, "key", "akey"); !errors.Is(err, ErrNoSession) {
		t.Errorf("DownloadAttachment = %v, want ErrNoSession", err)
	}
	if err := client.MarkAsRead(ctx, "key"); !errors.Is(err, ErrNoSession) {
		t.Errorf("MarkAsRead = %v, want ErrNoSession", err)
	}
	if err := client.RevokeAuthToken(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("RevokeAuthToken = %v, want ErrNoSession", err)
	}
}

func TestAPIErrorCarriesStatusAndBody(t *testing.T) {
	client := newTestClient(t, testSession(t), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "item gone", http.StatusNotFound)
	}))

	_, err := client.GetItemDetails(context.Background(), "stale-key")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetItemDetails = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Body != "item gone" {
		t.Errorf("Body = %q, want %q", apiErr.Body, "item gone")
	}
}

func TestDownloadAttachmentPathAndBytes(t *testing.T) {
	var gotPath string
	client := newTestClient(t, testSession(t), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("%PDF-1.7 raw bytes"))
	}))

	data, err := client.DownloadAttachment(context.Background(), "item key", "file-0")
	if err != nil {
		t.Fatalf("DownloadAttachment: %v", err)
	}
	if string(data) != "%PDF-1.7 raw bytes" {
		t.Errorf("body = %q", data)
	}
	// Path segments are escaped; the item key contains a space.
	if gotPath != "/v1/user/17eb9fd17c0a3f2e2f/content/item key/file/file-0/raw" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestStartAuthSendsPKCEChallenge(t *testing.T) {
	var gotRequest AuthRequest
	client := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/oauth2/authorize" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decoding auth request: %v", err)
		}
		w.Write(fixtureAuthResponse)
	}))

	config := RemoteConfig{
		OAuthDefaultClientID:    "client-id",
		OAuthDefaultRedirectURI: "https://app.kivra.com/auth/callback",
	}
	verifier, response, err := client.StartAuth(context.Background(), config)
	if err != nil {
		t.Fatalf("StartAuth: %v", err)
	}

	if gotRequest.ResponseType != "bankid_all" {
		t.Errorf("response_type = %q", gotRequest.ResponseType)
	}
	if gotRequest.Scope != "openid profile" {
		t.Errorf("scope = %q", gotRequest.Scope)
	}
	if gotRequest.CodeChallengeMethod != "S256" {
		t.Errorf("code_challenge_method = %q", gotRequest.CodeChallengeMethod)
	}
	if gotRequest.ClientID != "client-id" {
		t.Errorf("client_id = %q", gotRequest.ClientID)
	}

	// The challenge must be the S256 digest of the returned verifier.
	digest := sha256.Sum256([]byte(verifier))
	wantChallenge := base64.RawURLEncoding.EncodeToString(digest[:])
	if gotRequest.CodeChallenge != wantChallenge {
		t.Errorf("code_challenge = %q, want %q", gotRequest.CodeChallenge, wantChallenge)
	}

	if response.NextPollURL == "" {
		t.Error("response missing next_poll_url")
	}
}

func TestAbortAuthUsesDelete(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
	}))

	if err := client.AbortAuth(context.Background(), "/v2/oauth2/authorize/poll-1"); err != nil {
		t.Fatalf("AbortAuth: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
	if gotPath != "/v2/oauth2/authorize/poll-1" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestRevokeAuthToken(t *testing.T) {
	var gotRequest revokeRequest
	client := newTestClient(t, testSession(t), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/oauth2/token/revoke" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decoding revoke request: %v", err)
		}
		w.Write([]byte("{}"))
	}))

	if err := client.RevokeAuthToken(context.Background()); err != nil {
		t.Fatalf("RevokeAuthToken: %v", err)
	}
	if gotRequest.Token != "access-token-fixture" {
		t.Errorf("token = %q", gotRequest.Token)
	}
	if gotRequest.TokenTypeHint != "access_token" {
		t.Errorf("token_type_hint = %q", gotRequest.TokenTypeHint)
	}
}

func TestGetConfigHitsAccountsHost(t *testing.T) {
	client := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/config.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write(fixtureConfig)
	}))

	config, err := client.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if config.OAuthDefaultClientID == "" {
		t.Error("config missing oauth_default_client_id")
	}
}

func TestMarkAsRead(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	client := newTestClient(t, testSession(t), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))

	if err := client.MarkAsRead(context.Background(), "item-1"); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/v3/user/17eb9fd17c0a3f2e2f/content/item-1/status" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["status"] != "read" {
		t.Errorf("body = %v, want status=read", gotBody)
	}
}
