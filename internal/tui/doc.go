// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui implements the interactive terminal interface: a BankID
// login screen that renders the rolling QR code, and an inbox browser
// with a message list pane and an attachment detail pane.
//
// Both screens are bubbletea models. The login screen drives
// [kivra.Login] on a background goroutine and receives QR updates and
// the final result through channels bridged into the message loop.
// The inbox browser performs all remote calls (listing, details,
// downloads, mark-as-read) as asynchronous commands so the interface
// never blocks on the network.
package tui
