// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kivinge/kivinge/lib/kivra"
)

// focusRegion identifies which pane has keyboard focus.
type focusRegion int

const (
	// focusList means navigation keys move the message list cursor.
	focusList focusRegion = iota
	// focusDetail means navigation keys move the attachment cursor.
	focusDetail
)

// messageItem adapts an inbox entry to the bubbles list item
// interface.
type messageItem struct {
	entry kivra.InboxEntry
}

func (i messageItem) Title() string {
	marker := "  "
	if i.entry.Item.Status == "unread" {
		marker = "● "
	}
	return marker + i.entry.Item.Subject
}

func (i messageItem) Description() string {
	return fmt.Sprintf("%s · %s", i.entry.Item.SenderName, i.entry.Item.CreatedAt.Format("2006-01-02"))
}

func (i messageItem) FilterValue() string {
	return i.entry.Item.SenderName + " " + i.entry.Item.Subject
}

// Message types for asynchronous remote calls.

type listingLoadedMsg struct {
	listing kivra.InboxListing
	err     error
}

type detailsLoadedMsg struct {
	entry   kivra.InboxEntry
	details kivra.ItemDetails
	err     error
}

type downloadDoneMsg struct {
	path string
	err  error
}

type markReadDoneMsg struct {
	itemKey string
	err     error
}

// InboxModel is the inbox browser: a message list pane on the left and
// an attachment detail pane on the right.
type InboxModel struct {
	client kivra.Client
	theme  Theme
	keys   KeyMap

	list     list.Model
	viewport viewport.Model
	focus    focusRegion

	// Detail pane state, valid when hasDetails is set.
	hasDetails   bool
	detailEntry  kivra.InboxEntry
	details      kivra.ItemDetails
	detailCursor int

	// downloadDir receives saved attachments. Defaults to the working
	// directory.
	downloadDir string

	status      string
	statusIsErr bool

	width  int
	height int
}

// NewInbox creates the inbox browser. The listing is fetched
// asynchronously after the model starts.
func NewInbox(client kivra.Client) InboxModel {
	delegate := list.NewDefaultDelegate()
	messageList := list.New([]list.Item{}, delegate, 0, 0)
	messageList.Title = "Inbox"
	messageList.SetShowHelp(false)
	messageList.SetShowStatusBar(false)

	return InboxModel{
		client:      client,
		theme:       DefaultTheme,
		keys:        DefaultKeyMap,
		list:        messageList,
		viewport:    viewport.New(0, 0),
		downloadDir: ".",
	}
}

func (m InboxModel) Init() tea.Cmd {
	return m.loadListing()
}

// ---- Remote commands ----

func (m InboxModel) loadListing() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		listing, err := client.ListInbox(context.Background())
		return listingLoadedMsg{listing: listing, err: err}
	}
}

func (m InboxModel) loadDetails(entry kivra.InboxEntry) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		details, err := client.GetItemDetails(context.Background(), entry.Item.Key)
		return detailsLoadedMsg{entry: entry, details: details, err: err}
	}
}

func (m InboxModel) downloadAttachment(entry kivra.InboxEntry, details kivra.ItemDetails, index int) tea.Cmd {
	client := m.client
	downloadDir := m.downloadDir
	return func() tea.Msg {
		name, ok := details.AttachmentName(index)
		if !ok {
			return downloadDoneMsg{err: fmt.Errorf("no attachment %d", index)}
		}
		attachment := details.Parts[index]

		var data []byte
		switch {
		case attachment.Body != nil:
			data = []byte(*attachment.Body)
		case attachment.Key != nil:
			var err error
			data, err = client.DownloadAttachment(context.Background(), entry.Item.Key, *attachment.Key)
			if err != nil {
				return downloadDoneMsg{err: err}
			}
		default:
			return downloadDoneMsg{err: fmt.Errorf("attachment %d has no content", index)}
		}

		path := filepath.Join(downloadDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return downloadDoneMsg{err: err}
		}
		return downloadDoneMsg{path: path}
	}
}

func (m InboxModel) markAsRead(entry kivra.InboxEntry) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.MarkAsRead(context.Background(), entry.Item.Key)
		return markReadDoneMsg{itemKey: entry.Item.Key, err: err}
	}
}

// ---- Update ----

func (m InboxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case listingLoadedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("loading inbox: %v", msg.err), true)
			return m, nil
		}
		items := make([]list.Item, len(msg.listing))
		for i, entry := range msg.listing {
			items[i] = messageItem{entry: entry}
		}
		m.setStatus(fmt.Sprintf("%d messages", len(items)), false)
		return m, m.list.SetItems(items)

	case detailsLoadedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("loading message: %v", msg.err), true)
			return m, nil
		}
		m.hasDetails = true
		m.detailEntry = msg.entry
		m.details = msg.details
		m.detailCursor = 0
		m.focus = focusDetail
		m.viewport.SetContent(m.detailContent())
		m.viewport.GotoTop()
		return m, nil

	case downloadDoneMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("download failed: %v", msg.err), true)
		} else {
			m.setStatus(fmt.Sprintf("saved %s", msg.path), false)
		}
		return m, nil

	case markReadDoneMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("mark as read failed: %v", msg.err), true)
			return m, nil
		}
		m.setStatus("marked as read", false)
		// Refresh the listing so the unread marker clears.
		return m, m.loadListing()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m InboxModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit works from anywhere except an active list filter, where
	// keystrokes belong to the filter input.
	if m.list.FilterState() != list.Filtering && key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.focus == focusDetail {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.focus = focusList
			return m, nil
		case key.Matches(msg, m.keys.Download):
			if m.hasDetails && len(m.details.Parts) > 0 {
				return m, m.downloadAttachment(m.detailEntry, m.details, m.detailCursor)
			}
			return m, nil
		}
		switch msg.String() {
		case "j", "down":
			if m.hasDetails && m.detailCursor < len(m.details.Parts)-1 {
				m.detailCursor++
				m.viewport.SetContent(m.detailContent())
			}
			return m, nil
		case "k", "up":
			if m.detailCursor > 0 {
				m.detailCursor--
				m.viewport.SetContent(m.detailContent())
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// List focus.
	if m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Open):
			if item, ok := m.list.SelectedItem().(messageItem); ok {
				m.setStatus("loading message...", false)
				return m, m.loadDetails(item.entry)
			}
			return m, nil
		case key.Matches(msg, m.keys.MarkRead):
			if item, ok := m.list.SelectedItem().(messageItem); ok {
				return m, m.markAsRead(item.entry)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *InboxModel) setStatus(text string, isError bool) {
	m.status = text
	m.statusIsErr = isError
}

func (m *InboxModel) resize() {
	listWidth := m.width * 2 / 5
	detailWidth := m.width - listWidth - 4 // borders
	paneHeight := m.height - 3             // status + help lines

	if listWidth < 0 || detailWidth < 0 || paneHeight < 0 {
		return
	}
	m.list.SetSize(listWidth, paneHeight)
	m.viewport.Width = detailWidth
	m.viewport.Height = paneHeight
}

// ---- View ----

// detailContent renders the attachment list and inline text bodies for
// the open message.
func (m InboxModel) detailContent() string {
	header := lipgloss.NewStyle().
		Foreground(m.theme.HeaderForeground).
		Bold(true).
		Render(m.details.Subject)
	meta := lipgloss.NewStyle().
		Foreground(m.theme.FaintText).
		Render(fmt.Sprintf("%s · %s", m.details.SenderName, m.details.CreatedAt.Format("2006-01-02 15:04")))

	var sections []string
	sections = append(sections, header, meta, "")

	if len(m.details.Parts) == 0 {
		sections = append(sections, lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("No attachments."))
	}

	for index, attachment := range m.details.Parts {
		name, ok := m.details.AttachmentName(index)
		if !ok {
			continue
		}
		cursor := "  "
		if index == m.detailCursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s (%d bytes)", cursor, name, attachment.Size)
		if index == m.detailCursor {
			line = lipgloss.NewStyle().Foreground(m.theme.HeaderForeground).Render(line)
		}
		sections = append(sections, line)
	}

	// Show inline text content below the attachment list.
	for _, attachment := range m.details.Parts {
		if attachment.Body == nil || attachment.ContentType == "application/pdf" {
			continue
		}
		sections = append(sections, "", strings.TrimSpace(*attachment.Body))
	}

	return strings.Join(sections, "\n")
}

func (m InboxModel) View() string {
	borderFor := func(region focusRegion) lipgloss.Color {
		if m.focus == region {
			return m.theme.FocusBorderColor
		}
		return m.theme.BorderColor
	}

	listPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderFor(focusList)).
		Render(m.list.View())

	detailBody := m.viewport.View()
	if !m.hasDetails {
		detailBody = lipgloss.NewStyle().
			Foreground(m.theme.FaintText).
			Render("Select a message and press enter.")
	}
	detailPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderFor(focusDetail)).
		Width(m.viewport.Width).
		Render(detailBody)

	panes := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)

	statusColor := m.theme.StatusInfo
	if m.statusIsErr {
		statusColor = m.theme.StatusError
	}
	statusLine := lipgloss.NewStyle().Foreground(statusColor).Render(m.status)

	helpLine := lipgloss.NewStyle().
		Foreground(m.theme.HelpText).
		Render("enter open · d download · r mark read · esc back · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, panes, statusLine, helpLine)
}
