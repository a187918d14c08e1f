package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/finadmin/pkg/domain"
)

// Shimmer animation for the header logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

const logoText = "FINADMIN"

// renderShimmerLogo renders the letter-spaced logo as a flowing wave of
// green light, deep forest (#1a3a24) to emerald (#4ade80).
func renderShimmerLogo(frame int) string {
	n := len(logoText)
	t := float64(frame)

	var out strings.Builder
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(26 + b*(74-26))
		g := clampByte(58 + b*(222-58))
		bl := clampByte(36 + b*(128-36))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(logoText[i])))

		if i < n-1 {
			out.WriteString("  ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	// Surface colors
	borderColor  = lipgloss.Color("#1e1e2a")
	surfaceColor = lipgloss.Color("#111118")


	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#34d474")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Entry type colors, matching the web charts.
	entryTypeColors = map[domain.EntryType]lipgloss.Color{
		domain.EntryExpense:    lipgloss.Color("#e06060"),
		domain.EntryIncome:     lipgloss.Color("#4ade80"),
		domain.EntryInvestment: lipgloss.Color("#60a0e0"),
	}

	// Plan badge colors.
	planColors = map[string]lipgloss.Color{
		"premium": lipgloss.Color("#c084e0"),
		"pro":     lipgloss.Color("#60a0e0"),
		"basic":   lipgloss.Color("#4ade80"),
	}
)

// EntryTypeStyle returns the style for an entry type.
func EntryTypeStyle(t domain.EntryType) lipgloss.Style {
	if c, ok := entryTypeColors[t]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return normalStyle
}

// PlanStyle returns a bold style colored for a plan slug.
func PlanStyle(slug string) lipgloss.Style {
	if c, ok := planColors[slug]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// accuracyStyle colours an accuracy level green, orange or red.
func accuracyStyle(l domain.AccuracyLevel) lipgloss.Style {
	switch l {
	case domain.AccuracyGood:
		return goodStyle.Bold(true)
	case domain.AccuracyFair:
		return warnStyle.Bold(true)
	default:
		return errorStyle.Bold(true)
	}
}

func newSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(accentStyle),
	)
}

// sectionHeader renders "── TITLE ──".
func sectionHeader(title string) string {
	return sectionHeaderStyle.Render("── " + strings.ToUpper(title) + " ──")
}

// statCard renders a bordered label/value box for the dashboard rows.
func statCard(label, value, subtitle string, width int) string {
	var sb strings.Builder
	sb.WriteString(dimStyle.Render(label) + "\n")
	sb.WriteString(valueStyle.Render(value))
	if subtitle != "" {
		sb.WriteString("\n" + metaStyle.Render(subtitle))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(width).
		Render(sb.String())
}

// statRow lays cards out side by side, wrapping onto a new row when the
// terminal is too narrow.
func statRow(width int, cards ...string) string {
	if len(cards) == 0 {
		return ""
	}
	var rows []string
	var current []string
	used := 0
	for _, c := range cards {
		w := lipgloss.Width(c)
		if used > 0 && used+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current, used = nil, 0
		}
		current = append(current, c)
		used += w
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
	return strings.Join(rows, "\n")
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs into a help line.
func helpBar(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

// helpItems returns the links shown in the help overlay for the web
// dashboard at webURL.
func helpItems(webURL string) []helpItem {
	if webURL == "" {
		return nil
	}
	base := strings.TrimRight(webURL, "/")
	return []helpItem{
		{"Web dashboard", base, base},
		{"Users", base + "/users", base + "/users"},
		{"Beta codes", base + "/beta-codes", base + "/beta-codes"},
		{"AI metrics", base + "/ai", base + "/ai"},
	}
}

// helpView renders the interactive help overlay with a cursor.
func helpView(items []helpItem, cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80")).
		Bold(true).
		Render("F I N A D M I N")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Metrics and beta access for the finance bot.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"finadmin", "Open the dashboard (interactive TUI)"},
		{"finadmin login", "Exchange the admin password for a token"},
		{"finadmin logout", "Clear the stored token"},
		{"finadmin verify", "Check the stored token"},
		{"finadmin report", "Print a metrics summary"},
		{"finadmin codes", "List or generate beta codes"},
		{"finadmin config init", "Write the default config file"},
		{"finadmin version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, tagline)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	keys := []struct{ key, desc string }{
		{"1-6", "switch tab"},
		{"r", "refresh the current view"},
		{"o", "open the web dashboard"},
		{"L", "log out"},
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", k.key)), descStyle.Render(k.desc))
	}

	if len(items) > 0 {
		fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
		for i, item := range items {
			label := cmdStyle.Render(fmt.Sprintf("%-22s", item.label))
			prefix := "    "
			if i == cursor {
				label = cursorStyle.Render(fmt.Sprintf("%-22s", item.label))
				prefix = "  > "
			}
			fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
		}
	}
	return b.String()
}
