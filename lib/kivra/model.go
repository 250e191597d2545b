// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package kivra

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Date is a calendar date serialized by the Kivra API as an ISO-8601
// string, sometimes with a trailing time component that we discard.
type Date struct {
	time.Time
}

// UnmarshalJSON truncates the value to its date part before parsing.
// The API is inconsistent about whether these fields carry a time.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) > 10 {
		raw = raw[:10]
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

// InboxItem is one message record as returned by the inbox listing
// endpoint. The key is the remote's opaque content identifier; all
// other identifiers used by this program (sequence numbers, inode
// numbers) are synthesized locally.
type InboxItem struct {
	Key        string          `json:"key"`
	Sender     string          `json:"sender"`
	SenderName string          `json:"sender_name"`
	CreatedAt  time.Time       `json:"created_at"`
	Subject    string          `json:"subject"`
	Status     string          `json:"status"`
	Labels     map[string]bool `json:"labels"`
	IndexedAt  time.Time       `json:"indexed_at"`

	// Commerce fields, present for payable items only.
	Payable         bool        `json:"payable"`
	Amount          json.Number `json:"amount,omitempty"`
	InputAmount     json.Number `json:"input_amount,omitempty"`
	Currency        string      `json:"currency,omitempty"`
	PaymentStatus   string      `json:"payment_status,omitempty"`
	PayDate         *Date       `json:"pay_date,omitempty"`
	DueDate         *Date       `json:"due_date,omitempty"`
	AgreementKey    string      `json:"agreement_key,omitempty"`
	AgreementStatus string      `json:"agreement_status,omitempty"`
	VariableAmount  *bool       `json:"variable_amount,omitempty"`

	ContentType        string `json:"type"`
	HasMultipleOptions bool   `json:"has_multiple_options"`
	SenderIconURL      string `json:"sender_icon_url"`
}

// InboxEntry pairs an InboxItem with its locally-assigned sequence
// number. Sequence numbers start at 1 and are assigned by creation
// time ascending, so they are stable across fetches as long as the
// remote's creation timestamps do not change.
type InboxEntry struct {
	ID   uint32
	Item InboxItem
}

// DirName returns the entry's synthesized directory name: the sequence
// number followed by sender and subject, with spaces and path
// separators replaced by underscores. The sequence prefix makes the
// name unique within a listing even when sender and subject repeat.
func (e InboxEntry) DirName() string {
	name := fmt.Sprintf("%d-%s-%s", e.ID, e.Item.SenderName, e.Item.Subject)
	return sanitizeName(name)
}

// InboxListing is the ordered set of inbox entries for one listing
// fetch, sorted by creation time ascending and numbered from 1.
type InboxListing []InboxEntry

// NewInboxListing sorts the fetched items by creation time ascending
// and assigns 1-based sequence numbers. The remote's own ordering is
// not trusted; re-sorting locally keeps the numbering deterministic
// for identical underlying data.
func NewInboxListing(items []InboxItem) InboxListing {
	sorted := make([]InboxItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	listing := make(InboxListing, len(sorted))
	for i, item := range sorted {
		listing[i] = InboxEntry{ID: uint32(i + 1), Item: item}
	}
	return listing
}

// ItemDetails is the full record for one inbox item, including its
// attachment descriptors.
type ItemDetails struct {
	Subject    string       `json:"subject"`
	SenderName string       `json:"sender_name"`
	CreatedAt  time.Time    `json:"created_at"`
	Parts      []Attachment `json:"parts"`
}

// AttachmentName synthesizes the file name for the attachment at the
// given position: "<created-at>-<sender>-<subject>-<index>.<ext>" with
// spaces replaced by underscores. The extension is derived from the
// attachment's content type. Returns false if the index is out of
// range.
func (d ItemDetails) AttachmentName(index int) (string, bool) {
	if index < 0 || index >= len(d.Parts) {
		return "", false
	}
	extension := "txt"
	switch d.Parts[index].ContentType {
	case "application/pdf":
		extension = "pdf"
	case "text/html":
		extension = "html"
	}
	name := fmt.Sprintf("%s-%s-%s-%d.%s",
		d.CreatedAt.Format(time.RFC3339),
		d.SenderName,
		d.Subject,
		index,
		extension,
	)
	return sanitizeName(name), true
}

// Attachment is one part of an item. The content is either inline in
// Body or fetched separately using Key; at least one must be present
// for the attachment to be readable. When both are present the inline
// body takes precedence.
type Attachment struct {
	ContentType string  `json:"content_type"`
	Size        int64   `json:"size"`
	Key         *string `json:"key"`
	Body        *string `json:"body"`
}

// sanitizeName makes a synthesized name filesystem-path-safe: spaces
// become underscores (matching the download file naming) and path
// separators are replaced so the name never escapes its directory.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	return name
}

// RemoteConfig is the OAuth configuration published by the accounts
// endpoint. Fetched before starting a login.
type RemoteConfig struct {
	CompanyOnboardCompleteOAuthClientID string `json:"company_onboard_complete_oauth_client_id"`
	OAuthEndpointURL                    string `json:"oauth_endpoint_url"`
	OAuthDefaultClientID                string `json:"oauth_default_client_id"`
	OAuthDefaultRedirectURI             string `json:"oauth_default_redirect_uri"`
	OAuthGrantType                      string `json:"oauth_grant_type"`
	OAuthResponseType                   string `json:"oauth_response_type"`
}

// AuthRequest starts a BankID authorization.
type AuthRequest struct {
	ResponseType        string `json:"response_type"`
	CodeChallenge       string `json:"code_challenge"`
	CodeChallengeMethod string `json:"code_challenge_method"`
	Scope               string `json:"scope"`
	ClientID            string `json:"client_id"`
	RedirectURI         string `json:"redirect_uri"`
}

// AuthResponse is the server's reply to an authorization start. The
// QR code payload changes on every poll; NextPollURL is where to ask.
type AuthResponse struct {
	AutoStartToken string   `json:"auto_start_token"`
	QRData         []string `json:"qr_data"`
	QRCode         string   `json:"qr_code"`
	Code           string   `json:"code"`
	NextPollURL    string   `json:"next_poll_url"`
}

// AuthStatus is one poll result. SSN is set once the user has
// completed the BankID flow; until then the caller re-renders QRCode
// and polls again after RetryAfter seconds.
type AuthStatus struct {
	Status         string  `json:"status"`
	ProgressStatus string  `json:"progress_status"`
	MessageCode    string  `json:"message_code"`
	QRCode         string  `json:"qr_code"`
	SSN            *string `json:"ssn"`
	RetryAfter     *uint32 `json:"retry_after"`
	NextPollURL    *string `json:"next_poll_url"`
}

// AuthTokenRequest exchanges an authorization code for tokens.
type AuthTokenRequest struct {
	ClientID     string `json:"client_id"`
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
	GrantType    string `json:"grant_type"`
	RedirectURI  string `json:"redirect_uri"`
}

// AuthTokenResponse carries the issued tokens. The id_token is a JWT
// whose claims identify the user; see ParseIDToken.
type AuthTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   uint32 `json:"expires_in"`
	IDToken     string `json:"id_token"`
	Scope       string `json:"scope"`
	TokenType   string `json:"token_type"`
}

// revokeRequest invalidates an access token on logout.
type revokeRequest struct {
	Token         string `json:"token"`
	TokenTypeHint string `json:"token_type_hint"`
}
