// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the kivinge settings.
type Config struct {
	// APIURL is the Kivra application API root.
	APIURL string `yaml:"api_url"`

	// AccountsURL serves the public OAuth configuration.
	AccountsURL string `yaml:"accounts_url"`

	// SessionPath is where the login session is persisted. Supports
	// ${HOME} expansion.
	SessionPath string `yaml:"session_path"`

	// DownloadDir receives saved attachments. Supports ${HOME}
	// expansion. Defaults to the working directory.
	DownloadDir string `yaml:"download_dir"`

	// AllowOther permits other users (including root) to access a
	// mounted filesystem. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool `yaml:"allow_other"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DownloadDir: ".",
	}
}

// Load loads configuration from the KIVINGE_CONFIG environment
// variable when set, falling back to defaults otherwise.
func Load() (*Config, error) {
	configPath := os.Getenv("KIVINGE_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging over
// the defaults. The only expansion performed is ${HOME} in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${HOME} in path fields for portability.
func (c *Config) expandVariables() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	c.SessionPath = strings.ReplaceAll(c.SessionPath, "${HOME}", home)
	c.DownloadDir = strings.ReplaceAll(c.DownloadDir, "${HOME}", home)
}
