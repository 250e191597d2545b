// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the kivinge CLI.
//
// The central type is [Command]: a group node dispatches on the first
// positional argument to its [Command.Subcommands], a leaf node parses
// its [pflag.FlagSet] and calls Run. The tree is assembled in
// cmd/kivinge/commands and driven via [Command.Execute], which also
// renders structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
package cli
