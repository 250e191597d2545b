// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/kivinge/kivinge/lib/clock"
	"github.com/kivinge/kivinge/lib/kivra"
)

// qrUpdateMsg carries a fresh QR payload from the login goroutine.
type qrUpdateMsg struct {
	payload string
}

// loginDoneMsg carries the final result of the login flow.
type loginDoneMsg struct {
	session *kivra.Session
	err     error
}

// LoginModel is the BankID login screen. It renders the rolling QR
// code and quits once the flow completes or the user cancels.
type LoginModel struct {
	theme Theme

	cancel   context.CancelFunc
	qrCh     chan string
	resultCh chan loginDoneMsg

	qrView  string
	waiting bool

	// Session and Err hold the outcome once the model has quit.
	Session *kivra.Session
	Err     error
}

// NewLogin starts the login flow against the client on a background
// goroutine and returns the model that displays its progress. The
// caller runs the model to completion and then inspects Session/Err.
func NewLogin(ctx context.Context, client kivra.Client, clk clock.Clock, logger *slog.Logger) LoginModel {
	loginCtx, cancel := context.WithCancel(ctx)
	qrCh := make(chan string, 8)
	resultCh := make(chan loginDoneMsg, 1)

	go func() {
		session, err := kivra.Login(loginCtx, client, kivra.LoginOptions{
			OnQRUpdate: func(payload string) {
				// Drop updates the UI has not consumed yet; only the
				// latest QR code is scannable anyway.
				select {
				case qrCh <- payload:
				default:
				}
			},
			Clock:  clk,
			Logger: logger,
		})
		resultCh <- loginDoneMsg{session: session, err: err}
	}()

	return LoginModel{
		theme:    DefaultTheme,
		cancel:   cancel,
		qrCh:     qrCh,
		resultCh: resultCh,
		waiting:  true,
	}
}

func (m LoginModel) Init() tea.Cmd {
	return tea.Batch(m.nextQR(), m.awaitResult())
}

// nextQR blocks on the QR channel and surfaces the payload as a
// message. Re-issued after every update.
func (m LoginModel) nextQR() tea.Cmd {
	return func() tea.Msg {
		payload, ok := <-m.qrCh
		if !ok {
			return nil
		}
		return qrUpdateMsg{payload: payload}
	}
}

func (m LoginModel) awaitResult() tea.Cmd {
	return func() tea.Msg {
		return <-m.resultCh
	}
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case qrUpdateMsg:
		m.qrView = renderQR(msg.payload)
		m.waiting = false
		return m, m.nextQR()

	case loginDoneMsg:
		m.Session = msg.session
		m.Err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			// Cancelling makes the login goroutine abort the pending
			// authorization and deliver ErrLoginAborted.
			m.cancel()
			return m, nil
		}
	}
	return m, nil
}

func (m LoginModel) View() string {
	title := lipgloss.NewStyle().
		Foreground(m.theme.HeaderForeground).
		Bold(true).
		Render("Log in with BankID")

	body := m.qrView
	if m.waiting {
		body = lipgloss.NewStyle().
			Foreground(m.theme.FaintText).
			Render("Contacting Kivra...")
	}

	help := lipgloss.NewStyle().
		Foreground(m.theme.HelpText).
		Render("Scan the QR code with the BankID app. Press q to cancel.")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help) + "\n"
}

// renderQR encodes the payload as a half-block terminal QR code. If
// encoding fails the raw payload is shown so the user can still type
// it into the BankID app.
func renderQR(payload string) string {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return payload
	}
	return code.ToSmallString(false)
}
