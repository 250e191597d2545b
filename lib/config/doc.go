// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for kivinge.
//
// Configuration is loaded from a single YAML file specified by:
//   - the KIVINGE_CONFIG environment variable, or
//   - the --config flag passed to the command
//
// Every field has a working default, so running without a config file
// is the common case. Environment variables do not override config
// values; the file is the single source of truth when present.
package config
