// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kivinge/kivinge/lib/kivra"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func strPtr(s string) *string { return &s }

// testDetails is a message with one downloadable PDF and one inline
// HTML part.
func testDetails() (kivra.InboxEntry, kivra.ItemDetails) {
	entry := kivra.InboxEntry{
		ID: 1,
		Item: kivra.InboxItem{
			Key:        "item-a",
			SenderName: "Elbolaget AB",
			Subject:    "Faktura januari",
			CreatedAt:  time.Date(2026, 1, 18, 7, 40, 0, 0, time.UTC),
		},
	}
	details := kivra.ItemDetails{
		Subject:    "Faktura januari",
		SenderName: "Elbolaget AB",
		CreatedAt:  entry.Item.CreatedAt,
		Parts: []kivra.Attachment{
			{ContentType: "application/pdf", Size: 5, Key: strPtr("file-0")},
			{ContentType: "text/html", Size: 23, Body: strPtr("<p>Tack for din el!</p>")},
		},
	}
	return entry, details
}

// update drives one message through the model and returns the typed
// result.
func update(t *testing.T, m InboxModel, msg tea.Msg) (InboxModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(InboxModel)
	if !ok {
		t.Fatalf("Update returned %T, want InboxModel", next)
	}
	return model, cmd
}

func newTestInbox(t *testing.T) InboxModel {
	t.Helper()
	m := NewInbox(kivra.NewMockClient())
	m.downloadDir = t.TempDir()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func loadedListing(t *testing.T) kivra.InboxListing {
	t.Helper()
	listing, err := kivra.NewMockClient().ListInbox(context.Background())
	if err != nil {
		t.Fatalf("ListInbox: %v", err)
	}
	return listing
}

func TestInboxListingPopulatesList(t *testing.T) {
	m := newTestInbox(t)

	listing := loadedListing(t)
	m, _ = update(t, m, listingLoadedMsg{listing: listing})

	if got := len(m.list.Items()); got != len(listing) {
		t.Errorf("list has %d items, want %d", got, len(listing))
	}
	if !strings.Contains(m.status, "messages") {
		t.Errorf("status = %q, want message count", m.status)
	}
}

func TestInboxListingErrorShowsStatus(t *testing.T) {
	m := newTestInbox(t)

	m, _ = update(t, m, listingLoadedMsg{err: contextCanceled()})

	if !m.statusIsErr {
		t.Error("listing error did not set error status")
	}
}

func contextCanceled() error {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx.Err()
}

func TestOpenMessageFocusesDetail(t *testing.T) {
	m := newTestInbox(t)
	entry, details := testDetails()

	m, _ = update(t, m, detailsLoadedMsg{entry: entry, details: details})

	if m.focus != focusDetail {
		t.Errorf("focus = %v, want focusDetail", m.focus)
	}
	content := m.detailContent()
	if !strings.Contains(content, "Faktura januari") {
		t.Errorf("detail content missing subject:\n%s", content)
	}
	if !strings.Contains(content, "2026-01-18T07:40:00Z-Elbolaget_AB-Faktura_januari-0.pdf") {
		t.Errorf("detail content missing attachment name:\n%s", content)
	}
	if !strings.Contains(content, "Tack for din el!") {
		t.Errorf("detail content missing inline body:\n%s", content)
	}
}

func TestEscReturnsFocusToList(t *testing.T) {
	m := newTestInbox(t)
	entry, details := testDetails()
	m, _ = update(t, m, detailsLoadedMsg{entry: entry, details: details})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.focus != focusList {
		t.Errorf("focus = %v, want focusList", m.focus)
	}
}

func TestAttachmentCursorMoves(t *testing.T) {
	m := newTestInbox(t)
	entry, details := testDetails()
	m, _ = update(t, m, detailsLoadedMsg{entry: entry, details: details})

	m, _ = update(t, m, keyRune('j'))
	if m.detailCursor != 1 {
		t.Errorf("cursor = %d after j, want 1", m.detailCursor)
	}
	// Clamped at the last attachment.
	m, _ = update(t, m, keyRune('j'))
	if m.detailCursor != 1 {
		t.Errorf("cursor = %d after second j, want 1", m.detailCursor)
	}
	m, _ = update(t, m, keyRune('k'))
	if m.detailCursor != 0 {
		t.Errorf("cursor = %d after k, want 0", m.detailCursor)
	}
}

func TestDownloadSavesSelectedAttachment(t *testing.T) {
	m := newTestInbox(t)
	entry, details := testDetails()
	m, _ = update(t, m, detailsLoadedMsg{entry: entry, details: details})

	// The first attachment downloads via the client (the mock serves
	// "tjena" for every attachment).
	m, cmd := update(t, m, keyRune('d'))
	if cmd == nil {
		t.Fatal("d produced no command")
	}
	msg, ok := cmd().(downloadDoneMsg)
	if !ok {
		t.Fatal("download command did not produce downloadDoneMsg")
	}
	if msg.err != nil {
		t.Fatalf("download: %v", msg.err)
	}

	data, err := os.ReadFile(msg.path)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "tjena" {
		t.Errorf("downloaded %q, want %q", data, "tjena")
	}
	if filepath.Ext(msg.path) != ".pdf" {
		t.Errorf("downloaded path = %q, want .pdf extension", msg.path)
	}
}

func TestDownloadInlineBodyWritesWithoutClient(t *testing.T) {
	m := newTestInbox(t)
	entry, details := testDetails()
	m, _ = update(t, m, detailsLoadedMsg{entry: entry, details: details})

	// Move to the inline HTML attachment.
	m, _ = update(t, m, keyRune('j'))
	m, cmd := update(t, m, keyRune('d'))
	if cmd == nil {
		t.Fatal("d produced no command")
	}
	msg := cmd().(downloadDoneMsg)
	if msg.err != nil {
		t.Fatalf("download: %v", msg.err)
	}

	data, err := os.ReadFile(msg.path)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "<p>Tack for din el!</p>" {
		t.Errorf("downloaded %q, want inline body", data)
	}
}

func TestMarkReadRefreshesListing(t *testing.T) {
	m := newTestInbox(t)
	listing := loadedListing(t)
	m, _ = update(t, m, listingLoadedMsg{listing: listing})

	m, cmd := update(t, m, markReadDoneMsg{itemKey: "item-a"})
	if cmd == nil {
		t.Fatal("mark-read completion did not refresh the listing")
	}
	if _, ok := cmd().(listingLoadedMsg); !ok {
		t.Error("refresh command did not produce listingLoadedMsg")
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestInbox(t)

	_, cmd := update(t, m, keyRune('q'))
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
