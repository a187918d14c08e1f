package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/finadmin/pkg/domain"
)

const (
	chartDays   = 14
	topCommands = 8
	topCategory = 8
)

// dashboardModel is the overview tab: headline numbers, plans, growth,
// commands and entry breakdowns.
type dashboardModel struct {
	svc      *Services
	spin     spinner.Model
	overview binding
	users    binding
	commands binding
	entries  binding
	width    int
	height   int
}

func newDashboardModel(svc *Services) dashboardModel {
	return dashboardModel{svc: svc, spin: newSpinner()}
}

// Init subscribes to the four dashboard queries. They resolve
// independently and in any order.
func (m *dashboardModel) Init() tea.Cmd {
	m.close()
	days := m.svc.days()
	var c1, c2, c3, c4 tea.Cmd
	m.overview, c1 = bind(m.svc.Cache, overviewKey(), m.svc.fetchOverview, m.svc.refresh())
	m.users, c2 = bind(m.svc.Cache, usersMetricsKey(days), m.svc.fetchUsersMetrics(days), 0)
	m.commands, c3 = bind(m.svc.Cache, commandsMetricsKey(days), m.svc.fetchCommandsMetrics(days), 0)
	m.entries, c4 = bind(m.svc.Cache, entriesMetricsKey(days), m.svc.fetchEntriesMetrics(days), 0)
	return tea.Batch(c1, c2, c3, c4, m.spin.Tick)
}

func (m dashboardModel) close() {
	m.overview.close()
	m.users.close()
	m.commands.close()
	m.entries.close()
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case queryMsg:
		for _, b := range []*binding{&m.overview, &m.users, &m.commands, &m.entries} {
			if cmd, ok := b.apply(msg); ok {
				return m, cmd
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, tea.Batch(m.overview.refresh(), m.users.refresh(), m.commands.refresh(), m.entries.refresh())
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var sb strings.Builder
	sb.WriteString(staleNotice(m.overview, m.users, m.commands, m.entries))

	if body, ok := fallback(m.overview, m.spin, "overview"); !ok {
		sb.WriteString(body + "\n")
	} else if o, ok := dataOf[*domain.Overview](m.overview); ok && o != nil {
		sb.WriteString(m.viewOverview(o))
	}

	sb.WriteString("\n")
	sb.WriteString(m.viewGrowth())
	sb.WriteString("\n")
	sb.WriteString(m.viewCommands())
	sb.WriteString("\n")
	sb.WriteString(m.viewEntries())
	return sb.String()
}

func (m dashboardModel) cardWidth() int {
	w := (m.width - 2) / 5
	return min(max(w-2, 16), 26)
}

func (m dashboardModel) viewOverview(o *domain.Overview) string {
	w := m.cardWidth()
	row := statRow(m.width,
		statCard("Total users", formatCount(o.TotalUsers), "", w),
		statCard("Active (7d)", formatCount(o.ActiveUsers7d), fmt.Sprintf("%d%% of total", o.ActivePercent()), w),
		statCard("Entries today", formatCount(o.EntriesToday), fmt.Sprintf("%s this month", formatCount(o.EntriesMonth)), w),
		statCard("Volume (month)", formatBRL(o.VolumeMonth), "", w),
	)

	var sb strings.Builder
	sb.WriteString(row + "\n")
	if plans := o.Plans(); len(plans) > 0 {
		sb.WriteString("\n " + sectionHeader("users by plan") + "\n ")
		parts := make([]string, 0, len(plans))
		for _, p := range plans {
			parts = append(parts, PlanStyle(p.Plan).Render(p.Plan)+" "+normalStyle.Render(formatCount(p.Count)))
		}
		sb.WriteString(strings.Join(parts, metaStyle.Render(" · ")) + "\n")
	}
	return sb.String()
}

func (m dashboardModel) viewGrowth() string {
	var sb strings.Builder
	sb.WriteString(" " + sectionHeader(fmt.Sprintf("user growth, last %d days", chartDays)) + "\n")
	body, ok := fallback(m.users, m.spin, "user growth")
	if !ok {
		return sb.String() + body + "\n"
	}
	um, _ := dataOf[*domain.UsersMetrics](m.users)
	if um == nil || len(um.Data) == 0 {
		return sb.String() + " " + dimStyle.Render("no data for this period") + "\n"
	}

	points := um.Last(chartDays)
	peak := 0
	for _, p := range points {
		peak = max(peak, p.NewUsers)
	}
	for _, p := range points {
		fmt.Fprintf(&sb, "   %s  %s %s  %s\n",
			metaStyle.Render(domain.ShortDate(p.Date)),
			dimStyle.Render("new"),
			normalStyle.Render(fmt.Sprintf("%4d", p.NewUsers)),
			bar(float64(p.NewUsers), float64(peak), 24)+dimStyle.Render(fmt.Sprintf(" active %d", p.ActiveUsers)))
	}
	return sb.String()
}

func (m dashboardModel) viewCommands() string {
	var sb strings.Builder
	sb.WriteString(" " + sectionHeader("top commands") + "\n")
	body, ok := fallback(m.commands, m.spin, "commands")
	if !ok {
		return sb.String() + body + "\n"
	}
	cm, _ := dataOf[*domain.CommandsMetrics](m.commands)
	if cm == nil || len(cm.Data) == 0 {
		return sb.String() + " " + dimStyle.Render("no commands yet") + "\n"
	}
	top := cm.Top(topCommands)
	peak := 0
	for _, c := range top {
		peak = max(peak, c.Count)
	}
	for _, c := range top {
		fmt.Fprintf(&sb, "   %s %s  %s\n",
			normalStyle.Render(padRight(c.Command, 18)),
			valueStyle.Render(fmt.Sprintf("%6s", formatCount(c.Count))),
			bar(float64(c.Count), float64(peak), 24))
	}
	return sb.String()
}

func (m dashboardModel) viewEntries() string {
	var sb strings.Builder
	sb.WriteString(" " + sectionHeader("entries by type") + "\n")
	body, ok := fallback(m.entries, m.spin, "entries")
	if !ok {
		return sb.String() + body + "\n"
	}
	em, _ := dataOf[*domain.EntriesMetrics](m.entries)
	if em == nil || len(em.ByType) == 0 {
		sb.WriteString(" " + dimStyle.Render("no entries for this period") + "\n")
	} else {
		for _, s := range em.TypeShares() {
			fmt.Fprintf(&sb, "   %s %s  %s\n",
				EntryTypeStyle(s.Type).Render(padRight(s.Type.Label(), 14)),
				valueStyle.Render(fmt.Sprintf("%6s", formatCount(s.Count))),
				dimStyle.Render(formatPercent(s.Percent)))
		}
	}

	if em != nil && len(em.ByCategory) > 0 {
		sb.WriteString("\n " + sectionHeader("top categories") + "\n")
		cats := em.ByCategory
		if len(cats) > topCategory {
			cats = cats[:topCategory]
		}
		for _, c := range cats {
			fmt.Fprintf(&sb, "   %s %s  %s\n",
				normalStyle.Render(padRight(c.Category, 18)),
				valueStyle.Render(fmt.Sprintf("%6s", formatCount(c.Count))),
				dimStyle.Render(formatBRL(c.Total)))
		}
	}
	return sb.String()
}

func (m dashboardModel) helpKeys() string {
	return helpBar("1-6", "tabs", "r", "refresh", "o", "web", "h", "help", "L", "logout", "q", "quit")
}
