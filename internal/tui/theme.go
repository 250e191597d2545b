// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the kivinge terminal UI. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	FocusBorderColor lipgloss.Color
	HelpText         lipgloss.Color

	// Status bar.
	StatusInfo  lipgloss.Color
	StatusError lipgloss.Color

	// Unread message markers.
	UnreadAccent lipgloss.Color
}

// DefaultTheme is the built-in palette.
var DefaultTheme = Theme{
	NormalText:       lipgloss.Color("252"),
	FaintText:        lipgloss.Color("243"),
	HeaderForeground: lipgloss.Color("81"),
	BorderColor:      lipgloss.Color("238"),
	FocusBorderColor: lipgloss.Color("81"),
	HelpText:         lipgloss.Color("241"),
	StatusInfo:       lipgloss.Color("114"),
	StatusError:      lipgloss.Color("203"),
	UnreadAccent:     lipgloss.Color("214"),
}
