package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/finadmin/pkg/domain"
)

type systemModel struct {
	svc    *Services
	spin   spinner.Model
	system binding
	width  int
}

func newSystemModel(svc *Services) systemModel {
	return systemModel{svc: svc, spin: newSpinner()}
}

func (m *systemModel) Init() tea.Cmd {
	m.system.close()
	var cmd tea.Cmd
	m.system, cmd = bind(m.svc.Cache, systemMetricsKey(), m.svc.fetchSystemMetrics, m.svc.refresh())
	return tea.Batch(cmd, m.spin.Tick)
}

func (m systemModel) close() { m.system.close() }

func (m systemModel) Update(msg tea.Msg) (systemModel, tea.Cmd) {
	switch msg := msg.(type) {
	case queryMsg:
		cmd, _ := m.system.apply(msg)
		return m, cmd
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.system.refresh()
		}
	}
	return m, nil
}

type namedCount struct {
	name  string
	count int
}

// sortedCounts orders a name→count map by count desc, then name.
func sortedCounts(in map[string]int) []namedCount {
	out := make([]namedCount, 0, len(in))
	for k, v := range in {
		out = append(out, namedCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func (m systemModel) View() string {
	body, ok := fallback(m.system, m.spin, "system metrics")
	if !ok {
		return body
	}
	sys, _ := dataOf[*domain.SystemMetrics](m.system)
	if sys == nil {
		sys = &domain.SystemMetrics{}
	}
	db, ai, errs := sys.DB(), sys.AIStats(), sys.ErrorSummary()

	var sb strings.Builder
	sb.WriteString(staleNotice(m.system))

	errValue := goodStyle.Bold(true).Render(formatCount(errs.Count7d))
	if sys.ErrorsHigh() {
		errValue = errorStyle.Bold(true).Render(formatCount(errs.Count7d))
	}
	w := min(max((m.width-2)/4-2, 16), 26)
	sb.WriteString(statRow(m.width,
		statCard("Database rows", formatCount(db.TotalRows), fmt.Sprintf("%d tables", len(db.Tables)), w),
		statCard("AI calls (30d)", formatCount(ai.Calls30d), formatCount(ai.Tokens30d)+" tokens", w),
		statCard("AI cost (30d)", formatUSD(ai.EstimatedCostUSD, 2), domain.ProviderLabel(ai.Provider), w),
		statCard("Errors (7d)", errValue, "", w),
	) + "\n")

	sb.WriteString("\n " + sectionHeader("tables") + "\n")
	if len(db.Tables) == 0 {
		sb.WriteString(" " + dimStyle.Render("no table stats") + "\n")
	}
	for _, t := range sortedCounts(db.Tables) {
		fmt.Fprintf(&sb, "   %s %s\n", normalStyle.Render(padRight(t.name, 24)), valueStyle.Render(fmt.Sprintf("%10s", formatCount(t.count))))
	}

	sb.WriteString("\n " + sectionHeader("ai usage") + "\n")
	fmt.Fprintf(&sb, "   %s %s\n", dimStyle.Render(padRight("provider", 24)), normalStyle.Render(domain.ProviderLabel(ai.Provider)))
	fmt.Fprintf(&sb, "   %s %s\n", dimStyle.Render(padRight("calls, last 30 days", 24)), normalStyle.Render(formatCount(ai.Calls30d)))
	fmt.Fprintf(&sb, "   %s %s\n", dimStyle.Render(padRight("tokens", 24)), normalStyle.Render(formatCount(ai.Tokens30d)))
	fmt.Fprintf(&sb, "   %s %s\n", dimStyle.Render(padRight("estimated cost", 24)), goldStyle.Render(formatUSD(ai.EstimatedCostUSD, 4)))

	sb.WriteString("\n " + sectionHeader("errors by type, last 7 days") + "\n")
	if len(errs.ByType) == 0 {
		sb.WriteString("   " + goodStyle.Render("no errors") + "\n")
	}
	for _, e := range sortedCounts(errs.ByType) {
		style := warnStyle
		if sys.ErrorsHigh() {
			style = errorStyle
		}
		fmt.Fprintf(&sb, "   %s %s\n", normalStyle.Render(padRight(e.name, 24)), style.Render(fmt.Sprintf("%6s", formatCount(e.count))))
	}
	return sb.String()
}

func (m systemModel) helpKeys() string {
	return helpBar("1-6", "tabs", "r", "refresh", "h", "help", "q", "quit")
}
