// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kivinge/kivinge/lib/kivra"
)

func TestRootTreeIsWellFormed(t *testing.T) {
	root := Root()

	seen := make(map[string]bool)
	for _, sub := range root.Subcommands {
		if sub.Name == "" {
			t.Error("subcommand with empty name")
		}
		if seen[sub.Name] {
			t.Errorf("duplicate subcommand %q", sub.Name)
		}
		seen[sub.Name] = true
		if sub.Run == nil && len(sub.Subcommands) == 0 {
			t.Errorf("subcommand %q has no Run and no subcommands", sub.Name)
		}
		if sub.Summary == "" {
			t.Errorf("subcommand %q has no summary", sub.Name)
		}
	}

	for _, want := range []string{"login", "logout", "list", "view", "download", "open", "mount", "tui", "version"} {
		if !seen[want] {
			t.Errorf("missing subcommand %q", want)
		}
	}
}

func TestResolveEntry(t *testing.T) {
	client := kivra.NewMockClient()
	ctx := context.Background()

	entry, err := resolveEntry(ctx, client, "1")
	if err != nil {
		t.Fatalf("resolveEntry: %v", err)
	}
	// The fixture's oldest message is the January invoice.
	if entry.Item.SenderName != "Elbolaget AB" {
		t.Errorf("entry 1 sender = %q, want %q", entry.Item.SenderName, "Elbolaget AB")
	}

	if _, err := resolveEntry(ctx, client, "99"); err == nil {
		t.Error("resolveEntry(99) succeeded, want error")
	}
	if _, err := resolveEntry(ctx, client, "abc"); err == nil {
		t.Error("resolveEntry(abc) succeeded, want error")
	}
}

func TestDownloadAttachment(t *testing.T) {
	client := kivra.NewMockClient()
	directory := t.TempDir()

	path, err := downloadAttachment(context.Background(), client, "1", "0", directory)
	if err != nil {
		t.Fatalf("downloadAttachment: %v", err)
	}
	if filepath.Dir(path) != directory {
		t.Errorf("path %q not under %q", path, directory)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(data) != "tjena" {
		t.Errorf("downloaded %q, want %q", data, "tjena")
	}
}

func TestDownloadAttachmentInlineBody(t *testing.T) {
	client := kivra.NewMockClient()
	directory := t.TempDir()

	// The fixture's second part carries an inline HTML body.
	path, err := downloadAttachment(context.Background(), client, "1", "1", directory)
	if err != nil {
		t.Fatalf("downloadAttachment: %v", err)
	}
	if !strings.HasSuffix(path, ".html") {
		t.Errorf("path = %q, want .html suffix", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if !strings.Contains(string(data), "Tack for din el!") {
		t.Errorf("downloaded %q, want inline body", data)
	}
}

func TestDownloadAttachmentOutOfRange(t *testing.T) {
	client := kivra.NewMockClient()

	if _, err := downloadAttachment(context.Background(), client, "1", "9", t.TempDir()); err == nil {
		t.Error("out-of-range download succeeded, want error")
	}
}
