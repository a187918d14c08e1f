package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/naveenspark/finadmin/pkg/domain"
)

// formatCount renders an integer with thousands separators.
func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

// formatBRL renders an amount the way the bot's users see it: R$ 1.234,56.
func formatBRL(v float64) string {
	return "R$ " + humanize.FormatFloat("#.###,##", v)
}

// formatUSD renders a dollar amount with exactly decimals digits.
func formatUSD(v float64, decimals int) string {
	return "$" + humanize.FormatFloat("#,###."+strings.Repeat("#", max(decimals, 0)), v)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}

// formatAgo renders a relative timestamp, or "never" for a missing one.
func formatAgo(ts domain.Timestamp) string {
	if !ts.Set() {
		return "never"
	}
	return humanize.Time(ts.Time)
}

// formatDate renders a timestamp as YYYY-MM-DD, or "-".
func formatDate(ts domain.Timestamp) string {
	if !ts.Set() {
		return "-"
	}
	return ts.Format("2006-01-02")
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces to width runes, truncating when longer.
func padRight(s string, width int) string {
	s = truncStr(s, width)
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// bar renders a horizontal bar of value relative to maxValue.
func bar(value, maxValue float64, width int) string {
	if width <= 0 || maxValue <= 0 || value <= 0 {
		return ""
	}
	n := int(value / maxValue * float64(width))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return barStyle.Render(strings.Repeat("▇", n))
}
