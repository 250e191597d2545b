// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

// Package kivra implements the remote collaborator for the Kivra
// digital mailbox: the data model, the Client capability interface,
// an HTTP implementation of it, BankID/PKCE login, and session
// persistence.
//
// Everything that talks to the network lives here. Consumers (the CLI,
// the TUI, and the mailfs filesystem driver) depend only on the Client
// interface, so tests substitute a fixture-backed double without any
// network access.
package kivra
