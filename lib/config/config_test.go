// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithoutEnvReturnsDefaults(t *testing.T) {
	t.Setenv("KIVINGE_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "" {
		t.Errorf("APIURL = %q, want empty (client applies its own default)", cfg.APIURL)
	}
	if cfg.DownloadDir != "." {
		t.Errorf("DownloadDir = %q, want %q", cfg.DownloadDir, ".")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kivinge.yaml")
	content := `
api_url: https://api.example.test
accounts_url: https://accounts.example.test
session_path: ${HOME}/.kivinge/session.json
allow_other: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.APIURL != "https://api.example.test" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.AccountsURL != "https://accounts.example.test" {
		t.Errorf("AccountsURL = %q", cfg.AccountsURL)
	}
	if !cfg.AllowOther {
		t.Error("AllowOther not set")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	want := filepath.Join(home, ".kivinge", "session.json")
	if cfg.SessionPath != want {
		t.Errorf("SessionPath = %q, want %q", cfg.SessionPath, want)
	}

	// Unset fields keep their defaults.
	if cfg.DownloadDir != "." {
		t.Errorf("DownloadDir = %q, want default", cfg.DownloadDir)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFile of missing file succeeded, want error")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kivinge.yaml")
	if err := os.WriteFile(path, []byte("api_url: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile of malformed YAML succeeded, want error")
	}
}
