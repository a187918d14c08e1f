package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/finadmin/pkg/domain"
)

type aiModel struct {
	svc   *Services
	spin  spinner.Model
	ai    binding
	width int
}

func newAIModel(svc *Services) aiModel {
	return aiModel{svc: svc, spin: newSpinner()}
}

func (m *aiModel) Init() tea.Cmd {
	m.ai.close()
	days := m.svc.days()
	var cmd tea.Cmd
	m.ai, cmd = bind(m.svc.Cache, aiMetricsKey(days), m.svc.fetchAIMetrics(days), m.svc.refresh())
	return tea.Batch(cmd, m.spin.Tick)
}

func (m aiModel) close() { m.ai.close() }

func (m aiModel) Update(msg tea.Msg) (aiModel, tea.Cmd) {
	switch msg := msg.(type) {
	case queryMsg:
		cmd, _ := m.ai.apply(msg)
		return m, cmd
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.ai.refresh()
		}
	}
	return m, nil
}

func (m aiModel) View() string {
	body, ok := fallback(m.ai, m.spin, "AI metrics")
	if !ok {
		return body
	}
	ai, _ := dataOf[*domain.AIMetrics](m.ai)
	if ai == nil {
		ai = &domain.AIMetrics{}
	}

	var sb strings.Builder
	sb.WriteString(staleNotice(m.ai))
	if m.ai.state.InFlight {
		sb.WriteString(" " + m.spin.View() + " " + dimStyle.Render("refreshing") + "\n")
	}

	w := min(max((m.width-2)/4-2, 16), 26)
	accuracy := accuracyStyle(ai.Level()).Render(fmt.Sprintf("%.1f%%", ai.AccuracyRate))
	sb.WriteString(statRow(m.width,
		statCard("Accuracy", accuracy, fmt.Sprintf("%s confirmed as is", formatCount(ai.ConfirmedWithoutEdit)), w),
		statCard("Classifications", formatCount(ai.TotalClassifications), fmt.Sprintf("%s cancelled", formatCount(ai.Cancelled)), w),
		statCard("Edit rate", fmt.Sprintf("%.1f%%", ai.EditRate()), fmt.Sprintf("%s edited", formatCount(ai.EditedBeforeConfirm)), w),
		statCard("Patterns learned", formatCount(ai.PatternsLearned), fmt.Sprintf("%.0f%% fixed rules", ai.FixedRulesUsed), w),
	) + "\n")
	fmt.Fprintf(&sb, " %s %s  %s %s\n",
		dimStyle.Render("provider"), normalStyle.Render(domain.ProviderLabel(ai.Provider)),
		dimStyle.Render("AI calls"), normalStyle.Render(formatCount(ai.AICalls)))

	if ai.NeedsMoreRules() || ai.StillLearning() {
		sb.WriteString("\n " + sectionHeader("advice") + "\n")
		if ai.NeedsMoreRules() {
			sb.WriteString("   " + warnStyle.Render("Fixed rules cover under 70% of entries. Add rules for frequent merchants.") + "\n")
		}
		if ai.StillLearning() {
			sb.WriteString("   " + warnStyle.Render("Fewer than 50 patterns learned. Accuracy improves as users confirm entries.") + "\n")
		}
	}

	sb.WriteString("\n " + sectionHeader(fmt.Sprintf("accuracy by day, last %d days", chartDays)) + "\n")
	days := ai.LastDays(chartDays)
	if len(days) == 0 {
		sb.WriteString(" " + dimStyle.Render("no classifications for this period") + "\n")
	}
	for _, d := range days {
		level := domain.AIMetrics{AccuracyRate: d.AccuracyRate}.Level()
		fmt.Fprintf(&sb, "   %s %s %s  %s\n",
			metaStyle.Render(domain.ShortDate(d.Date)),
			accuracyStyle(level).Render(fmt.Sprintf("%5.1f%%", d.AccuracyRate)),
			dimStyle.Render(fmt.Sprintf("%5s total", formatCount(d.Total))),
			bar(d.AccuracyRate, 100, 24))
	}

	sb.WriteString("\n " + sectionHeader("most edited categories") + "\n")
	if len(ai.TopEdits) == 0 {
		sb.WriteString(" " + dimStyle.Render("no edits") + "\n")
	}
	for _, e := range ai.TopEdits {
		fmt.Fprintf(&sb, "   %s %s %s  %s %s\n",
			normalStyle.Render(padRight(e.OriginalCategory, 16)),
			metaStyle.Render("→"),
			normalStyle.Render(padRight(e.EditedCategory, 16)),
			valueStyle.Render(fmt.Sprintf("%5s", formatCount(e.Count))),
			dimStyle.Render(fmt.Sprintf("%.1f%%", ai.EditShare(e))))
	}
	return sb.String()
}

func (m aiModel) helpKeys() string {
	return helpBar("1-6", "tabs", "r", "refresh", "h", "help", "q", "quit")
}
