package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/finadmin/internal/session"
	"github.com/naveenspark/finadmin/pkg/client"
)

type loginResultMsg struct {
	err error
}

type loginModel struct {
	svc        *Services
	input      textinput.Model
	spin       spinner.Model
	submitting bool
	err        string
	notice     string
	width      int
}

func newLoginModel(svc *Services, notice string) loginModel {
	in := textinput.New()
	in.Placeholder = "admin password"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Prompt = inputPromptStyle.Render("> ")
	in.PlaceholderStyle = inputPlaceholderStyle
	in.CharLimit = 256
	in.Focus()
	return loginModel{svc: svc, input: in, spin: newSpinner(), notice: notice}
}

func (m loginModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	password := m.input.Value()
	if strings.TrimSpace(password) == "" {
		m.err = "enter the admin password"
		return m, nil
	}
	m.submitting = true
	m.err = ""
	svc := m.svc
	return m, func() tea.Msg {
		return loginResultMsg{err: svc.Gate.Login(context.Background(), svc.Client, password)}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = loginError(msg.err)
			m.input.Reset()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func loginError(err error) string {
	switch {
	case errors.Is(err, session.ErrEmptyPassword):
		return "enter the admin password"
	case client.IsStatus(err, http.StatusUnauthorized):
		return "wrong password"
	case client.IsNetwork(err):
		return "cannot reach the API: " + err.Error()
	default:
		return err.Error()
	}
}

func (m loginModel) View() string {
	cardWidth := min(56, max(m.width-4, 30))
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(1, 2).
		Width(cardWidth)

	var sb strings.Builder
	sb.WriteString(selectedStyle.Render("Admin login") + "\n")
	if m.svc != nil && m.svc.Client != nil {
		sb.WriteString(metaStyle.Render(m.svc.Client.BaseURL()) + "\n")
	}
	sb.WriteString("\n")
	if m.notice != "" {
		sb.WriteString(warnStyle.Render(m.notice) + "\n\n")
	}
	sb.WriteString(m.input.View() + "\n")
	switch {
	case m.submitting:
		sb.WriteString("\n" + m.spin.View() + " " + dimStyle.Render("signing in..."))
	case m.err != "":
		sb.WriteString("\n" + errorStyle.Render(m.err))
	}

	return "\n" + card.Render(sb.String())
}
