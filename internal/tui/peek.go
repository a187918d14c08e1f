package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/finadmin/internal/query"
	"github.com/naveenspark/finadmin/pkg/domain"
)

type peekLoadedMsg struct {
	id     string
	detail *domain.UserDetail
	err    error
}

// peekModel is the user detail overlay opened from the users tab.
type peekModel struct {
	svc    *Services
	spin   spinner.Model
	id     string
	detail *domain.UserDetail
	closed bool
	err    string
	width  int
}

func newPeekModel(svc *Services, id string) peekModel {
	return peekModel{svc: svc, spin: newSpinner(), id: id}
}

func (m peekModel) load() tea.Cmd {
	svc, id := m.svc, m.id
	fetch := func() tea.Msg {
		d, err := query.FetchAs(context.Background(), svc.Cache, userKey(id), svc.fetchUser(id))
		if err != nil {
			return peekLoadedMsg{id: id, err: fmt.Errorf("client.GetUser: %w", err)}
		}
		return peekLoadedMsg{id: id, detail: d}
	}
	return tea.Batch(fetch, m.spin.Tick)
}

func (m peekModel) Update(msg tea.Msg) (peekModel, tea.Cmd) {
	switch msg := msg.(type) {
	case peekLoadedMsg:
		if msg.id != m.id {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.detail = msg.detail
		}
		return m, nil

	case spinner.TickMsg:
		if m.detail != nil || m.err != "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			m.closed = true
		}
	}
	return m, nil
}

func (m peekModel) View() string {
	if m.err != "" {
		return "\n " + errorStyle.Render("user detail error: "+m.err) + "\n " + helpEntry("esc", "close")
	}
	if m.detail == nil {
		return "\n " + m.spin.View() + " " + dimStyle.Render("loading user...")
	}

	u := m.detail
	cardWidth := min(64, m.width-4)
	if cardWidth < 36 {
		cardWidth = 36
	}
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(1, 2).
		Width(cardWidth)

	var sb strings.Builder
	sb.WriteString(selectedStyle.Render(u.DisplayName()))
	if u.TelegramUsername != "" {
		sb.WriteString("  " + metaStyle.Render("@"+u.TelegramUsername))
	}
	sb.WriteString("\n")

	plan := "no plan"
	if u.HasPlan() {
		plan = u.Plan
		if plan == "" {
			plan = u.PlanSlug
		}
	}
	sb.WriteString(PlanStyle(u.PlanSlug).Render(plan) + metaStyle.Render(fmt.Sprintf(" · telegram %d", u.TelegramID)) + "\n")

	sb.WriteString(metaStyle.Render("---") + "\n")
	fmt.Fprintf(&sb, "%s %s\n", dimStyle.Render(padRight("entries", 12)), normalStyle.Render(formatCount(u.EntriesCount)))
	fmt.Fprintf(&sb, "%s %s\n", dimStyle.Render(padRight("joined", 12)), normalStyle.Render(formatDate(u.CreatedAt)))
	fmt.Fprintf(&sb, "%s %s\n", dimStyle.Render(padRight("last seen", 12)), normalStyle.Render(formatAgo(u.LastInteraction)))
	sb.WriteString(metaStyle.Render("---") + "\n")

	if len(u.RecentEntries) > 0 {
		sb.WriteString("\n" + sectionHeader("recent entries") + "\n")
		for _, e := range u.RecentEntries {
			fmt.Fprintf(&sb, "%s %s %s %s\n",
				metaStyle.Render(formatDate(e.CreatedAt)),
				EntryTypeStyle(e.Type).Render(padRight(e.Type.Label(), 12)),
				normalStyle.Render(padRight(e.Category, 14)),
				valueStyle.Render(formatBRL(e.Amount)))
		}
	}

	sb.WriteString("\n" + helpEntry("esc", "close"))
	return "\n" + border.Render(sb.String())
}
