package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/finadmin/pkg/domain"
)

type entriesModel struct {
	svc     *Services
	spin    spinner.Model
	entries binding
	width   int
}

func newEntriesModel(svc *Services) entriesModel {
	return entriesModel{svc: svc, spin: newSpinner()}
}

func (m *entriesModel) Init() tea.Cmd {
	m.entries.close()
	days := m.svc.days()
	var cmd tea.Cmd
	m.entries, cmd = bind(m.svc.Cache, entriesMetricsKey(days), m.svc.fetchEntriesMetrics(days), 0)
	return tea.Batch(cmd, m.spin.Tick)
}

func (m entriesModel) close() { m.entries.close() }

func (m entriesModel) Update(msg tea.Msg) (entriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case queryMsg:
		cmd, _ := m.entries.apply(msg)
		return m, cmd
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.entries.refresh()
		}
	}
	return m, nil
}

func (m entriesModel) View() string {
	body, ok := fallback(m.entries, m.spin, "entries")
	if !ok {
		return body
	}
	em, _ := dataOf[*domain.EntriesMetrics](m.entries)
	if em == nil {
		em = &domain.EntriesMetrics{}
	}

	var sb strings.Builder
	sb.WriteString(staleNotice(m.entries))

	totals := em.Totals()
	w := min(max((m.width-2)/4-2, 16), 26)
	cards := []string{
		statCard("Entries", formatCount(totals.Count), fmt.Sprintf("last %d days", m.svc.days()), w),
		statCard("Volume", formatBRL(totals.Value), "", w),
	}
	for _, t := range []domain.EntryType{domain.EntryExpense, domain.EntryIncome, domain.EntryInvestment} {
		n := em.CountByType(t)
		pct := domain.Percent(float64(n), float64(totals.Count))
		cards = append(cards, statCard(t.Label(), formatCount(n), formatPercent(pct)+" of total", w))
	}
	sb.WriteString(statRow(m.width, cards...) + "\n")

	sb.WriteString("\n " + sectionHeader(fmt.Sprintf("by day, last %d days", chartDays)) + "\n")
	days := em.LastDays(chartDays)
	if len(days) == 0 {
		sb.WriteString(" " + dimStyle.Render("no entries for this period") + "\n")
	} else {
		peak := 0
		for _, d := range days {
			peak = max(peak, d.Count)
		}
		for _, d := range days {
			fmt.Fprintf(&sb, "   %s %s %s  %s\n",
				metaStyle.Render(domain.ShortDate(d.Date)),
				valueStyle.Render(fmt.Sprintf("%5s", formatCount(d.Count))),
				dimStyle.Render(padRight(formatBRL(d.Total), 16)),
				bar(float64(d.Count), float64(peak), 24))
		}
	}

	if len(em.ByCategory) > 0 {
		sb.WriteString("\n " + sectionHeader("by category") + "\n")
		for _, c := range em.ByCategory {
			fmt.Fprintf(&sb, "   %s %s  %s\n",
				normalStyle.Render(padRight(c.Category, 20)),
				valueStyle.Render(fmt.Sprintf("%6s", formatCount(c.Count))),
				dimStyle.Render(formatBRL(c.Total)))
		}
	}
	return sb.String()
}

func (m entriesModel) helpKeys() string {
	return helpBar("1-6", "tabs", "r", "refresh", "h", "help", "q", "quit")
}
