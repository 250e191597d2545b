// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package kivra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/kivinge/kivinge/lib/clock"
)

// defaultAPIBaseURL is the Kivra application API.
const defaultAPIBaseURL = "https://app.api.kivra.com"

// defaultAccountsBaseURL serves the public OAuth configuration.
const defaultAccountsBaseURL = "https://accounts.kivra.com"

// maxResponseBytes caps how much of a response body is read. Attachment
// downloads are the largest payloads; 128 MiB is far beyond anything
// the mailbox serves.
const maxResponseBytes = 128 << 20

var (
	// ErrNoSession is returned by authenticated operations when no
	// session is loaded.
	ErrNoSession = errors.New("kivra: no session")

	// ErrLoginAborted is returned when the user cancels a login in
	// progress.
	ErrLoginAborted = errors.New("kivra: login aborted")
)

// APIError is a non-2xx response from the Kivra API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("kivra: API error %d", e.StatusCode)
	}
	return fmt.Sprintf("kivra: API error %d: %s", e.StatusCode, e.Body)
}

// Client is the capability interface over the remote mailbox. The
// filesystem driver, CLI, and TUI all consume this interface, so a
// fixture-backed double substitutes for the network in tests.
type Client interface {
	// GetConfig fetches the public OAuth configuration.
	GetConfig(ctx context.Context) (RemoteConfig, error)

	// StartAuth begins a BankID authorization and returns the PKCE
	// verifier that must be presented during the token exchange.
	StartAuth(ctx context.Context, config RemoteConfig) (verifier string, response AuthResponse, err error)

	// CheckAuth polls an in-progress authorization.
	CheckAuth(ctx context.Context, pollURL string) (AuthStatus, error)

	// AbortAuth cancels an in-progress authorization.
	AbortAuth(ctx context.Context, pollURL string) error

	// GetAuthToken exchanges a completed authorization for tokens.
	GetAuthToken(ctx context.Context, config RemoteConfig, authCode, verifier string) (AuthTokenResponse, error)

	// RevokeAuthToken invalidates the current session's access token.
	RevokeAuthToken(ctx context.Context) error

	// ListInbox fetches the full inbox listing, locally sorted and
	// numbered.
	ListInbox(ctx context.Context) (InboxListing, error)

	// GetItemDetails fetches one item by its remote content key.
	GetItemDetails(ctx context.Context, itemKey string) (ItemDetails, error)

	// MarkAsRead flags an item as read.
	MarkAsRead(ctx context.Context, itemKey string) error

	// DownloadAttachment fetches the raw bytes of one attachment.
	DownloadAttachment(ctx context.Context, itemKey, attachmentKey string) ([]byte, error)

	// Session returns the active session, or nil when logged out.
	Session() *Session

	// SetSession installs (or clears, with nil) the active session.
	SetSession(session *Session)
}

// Config holds configuration for creating an HTTPClient.
type Config struct {
	// APIBaseURL is the application API root. Defaults to the
	// production endpoint.
	APIBaseURL string

	// AccountsBaseURL serves config.json. Defaults to the production
	// endpoint.
	AccountsBaseURL string

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock provides time operations. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives diagnostic messages. Defaults to slog.Default().
	Logger *slog.Logger

	// Session is the initial session, if one was loaded from disk.
	Session *Session
}

// HTTPClient is the production implementation of Client.
type HTTPClient struct {
	apiBaseURL      string
	accountsBaseURL string
	httpClient      *http.Client
	clock           clock.Clock
	logger          *slog.Logger
	session         *Session
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a Kivra API client from the given
// configuration.
func NewHTTPClient(config Config) (*HTTPClient, error) {
	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	accountsBaseURL := config.AccountsBaseURL
	if accountsBaseURL == "" {
		accountsBaseURL = defaultAccountsBaseURL
	}
	for _, baseURL := range []string{apiBaseURL, accountsBaseURL} {
		parsed, err := url.Parse(baseURL)
		if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") {
			return nil, fmt.Errorf("kivra: invalid base URL %q", baseURL)
		}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPClient{
		apiBaseURL:      strings.TrimRight(apiBaseURL, "/"),
		accountsBaseURL: strings.TrimRight(accountsBaseURL, "/"),
		httpClient:      httpClient,
		clock:           clk,
		logger:          logger,
		session:         config.Session,
	}, nil
}

// Session returns the active session, or nil.
func (c *HTTPClient) Session() *Session { return c.session }

// SetSession installs the active session.
func (c *HTTPClient) SetSession(session *Session) { c.session = session }

func (c *HTTPClient) GetConfig(ctx context.Context) (RemoteConfig, error) {
	var config RemoteConfig
	err := c.getJSON(ctx, c.accountsBaseURL+"/config.json", false, &config)
	return config, err
}

func (c *HTTPClient) StartAuth(ctx context.Context, config RemoteConfig) (string, AuthResponse, error) {
	verifier, challenge, err := newCodeVerifier()
	if err != nil {
		return "", AuthResponse{}, err
	}

	request := AuthRequest{
		ResponseType:        "bankid_all",
		CodeChallenge:       challenge,
		CodeChallengeMethod: "S256",
		Scope:               "openid profile",
		ClientID:            config.OAuthDefaultClientID,
		RedirectURI:         config.OAuthDefaultRedirectURI,
	}

	var response AuthResponse
	err = c.postJSON(ctx, c.apiBaseURL+"/v2/oauth2/authorize", false, request, &response)
	if err != nil {
		return "", AuthResponse{}, err
	}
	return verifier, response, nil
}

func (c *HTTPClient) CheckAuth(ctx context.Context, pollURL string) (AuthStatus, error) {
	var status AuthStatus
	err := c.getJSON(ctx, c.apiBaseURL+pollURL, false, &status)
	return status, err
}

func (c *HTTPClient) AbortAuth(ctx context.Context, pollURL string) error {
	_, err := c.do(ctx, http.MethodDelete, c.apiBaseURL+pollURL, false, nil)
	return err
}

func (c *HTTPClient) GetAuthToken(ctx context.Context, config RemoteConfig, authCode, verifier string) (AuthTokenResponse, error) {
	request := AuthTokenRequest{
		ClientID:     config.OAuthDefaultClientID,
		Code:         authCode,
		CodeVerifier: verifier,
		GrantType:    "authorization_code",
		RedirectURI:  config.OAuthDefaultRedirectURI,
	}

	var response AuthTokenResponse
	err := c.postJSON(ctx, c.apiBaseURL+"/v2/oauth2/token", false, request, &response)
	return response, err
}

func (c *HTTPClient) RevokeAuthToken(ctx context.Context) error {
	if c.session == nil {
		return ErrNoSession
	}
	request := revokeRequest{
		Token:         c.session.AccessToken,
		TokenTypeHint: "access_token",
	}
	return c.postJSON(ctx, c.apiBaseURL+"/v2/oauth2/token/revoke", false, request, nil)
}

func (c *HTTPClient) ListInbox(ctx context.Context) (InboxListing, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}
	requestURL := fmt.Sprintf("%s/v3/user/%s/content?listing=all", c.apiBaseURL, url.PathEscape(userID))

	var items []InboxItem
	if err := c.getJSON(ctx, requestURL, true, &items); err != nil {
		return nil, err
	}
	return NewInboxListing(items), nil
}

func (c *HTTPClient) GetItemDetails(ctx context.Context, itemKey string) (ItemDetails, error) {
	userID, err := c.userID()
	if err != nil {
		return ItemDetails{}, err
	}
	requestURL := fmt.Sprintf("%s/v3/user/%s/content/%s",
		c.apiBaseURL, url.PathEscape(userID), url.PathEscape(itemKey))

	var details ItemDetails
	err = c.getJSON(ctx, requestURL, true, &details)
	return details, err
}

func (c *HTTPClient) MarkAsRead(ctx context.Context, itemKey string) error {
	userID, err := c.userID()
	if err != nil {
		return err
	}
	requestURL := fmt.Sprintf("%s/v3/user/%s/content/%s/status",
		c.apiBaseURL, url.PathEscape(userID), url.PathEscape(itemKey))
	return c.postJSON(ctx, requestURL, true, map[string]string{"status": "read"}, nil)
}

func (c *HTTPClient) DownloadAttachment(ctx context.Context, itemKey, attachmentKey string) ([]byte, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}
	requestURL := fmt.Sprintf("%s/v1/user/%s/content/%s/file/%s/raw",
		c.apiBaseURL, url.PathEscape(userID), url.PathEscape(itemKey), url.PathEscape(attachmentKey))
	return c.do(ctx, http.MethodGet, requestURL, true, nil)
}

func (c *HTTPClient) userID() (string, error) {
	if c.session == nil {
		return "", ErrNoSession
	}
	return c.session.UserInfo.KivraUserID, nil
}

// do executes one request. When authenticated is set, the active
// session's access token is attached as a bearer credential. Returns
// the response body on 2xx, an *APIError otherwise.
func (c *HTTPClient) do(ctx context.Context, method, requestURL string, authenticated bool, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("kivra: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("kivra: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		if c.session == nil {
			return nil, ErrNoSession
		}
		request.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("kivra: %s %s: %w", method, requestURL, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("kivra: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.logger.Debug("API request failed",
			"method", method,
			"url", requestURL,
			"status", response.StatusCode,
		)
		return nil, &APIError{StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, requestURL string, authenticated bool, result any) error {
	body, err := c.do(ctx, http.MethodGet, requestURL, authenticated, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("kivra: decoding response from %s: %w", requestURL, err)
	}
	return nil
}

func (c *HTTPClient) postJSON(ctx context.Context, requestURL string, authenticated bool, requestBody, result any) error {
	body, err := c.do(ctx, http.MethodPost, requestURL, authenticated, requestBody)
	if err != nil {
		return err
	}
	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("kivra: decoding response from %s: %w", requestURL, err)
		}
	}
	return nil
}
