// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the inbox browser. List
// navigation (j/k, arrows, page up/down) is handled by the embedded
// bubbles list component.
type KeyMap struct {
	Open     key.Binding // Open the selected message's detail pane.
	Back     key.Binding // Return focus to the message list.
	Download key.Binding // Save the selected attachment to disk.
	MarkRead key.Binding // Flag the selected message as read.
	Quit     key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Download: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "download"),
	),
	MarkRead: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "mark read"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
