package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestEditRune(t *testing.T) {
	full := strings.Repeat("x", maxInputLen)
	wide := strings.Repeat("你", maxInputLen)

	tests := []struct {
		name string
		text string
		key  string
		want string
	}{
		{"first rune", "", "@", "@"},
		{"append to username", "@an", "a", "@ana"},
		{"space in name", "Ana", " ", "Ana "},
		{"backspace", "BETA-A", "backspace", "BETA-"},
		{"backspace on empty", "", "backspace", ""},
		{"backspace accented", "José", "backspace", "Jos"},
		{"backspace emoji", "ana\U0001f600", "backspace", "ana"},
		{"paste code", "", "BETA-7K2Q", "BETA-7K2Q"},
		{"paste appends", "BETA-", "7K2Q", "BETA-7K2Q"},
		{"paste clamped", full[:maxInputLen-2], "abcd", full[:maxInputLen-2] + "ab"},
		{"full rejects rune", full, "y", full},
		{"full rejects wide rune", wide, "好", wide},
		{"full still deletes", full, "backspace", full[:maxInputLen-1]},
		{"empty key", "ana", "", "ana"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editRune(tc.text, tc.key); got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.text, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneIgnoresNamedKeys(t *testing.T) {
	for _, key := range []string{
		"enter", "esc", "tab", "shift+tab", "up", "down", "left", "right",
		"home", "end", "pgup", "pgdown", "delete", "ctrl+c", "alt+enter", "shift+enter", "f1", "f12",
	} {
		t.Run(key, func(t *testing.T) {
			if got := editRune("bruno", key); got != "bruno" {
				t.Errorf("editRune(bruno, %q) = %q, want unchanged", key, got)
			}
		})
	}
}

func TestIsNamedKeyLeavesWordsAlone(t *testing.T) {
	// Pasted words that happen to start like key names are text.
	for _, key := range []string{"fa", "f1x", "endless", "upgrade"} {
		if isNamedKey(key) {
			t.Errorf("isNamedKey(%q) = true, want false", key)
		}
		if got := editRune("", key); got != key {
			t.Errorf("editRune(\"\", %q) = %q, want the text typed", key, got)
		}
	}
}

func TestKeyText(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want string
	}{
		{"rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, "q"},
		{"paste", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("BETA-1"), Paste: true}, "BETA-1"},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, "backspace"},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, "enter"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := keyText(tc.msg); got != tc.want {
				t.Errorf("keyText() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTruncStr(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"Mercado", 10, "Mercado"},
		{"Mercado", 7, "Mercado"},
		{"Alimentação fora", 6, "Alime…"},
		{"", 3, ""},
		{"ab", 1, "…"},
		{"\U0001f600\U0001f601\U0001f602", 2, "\U0001f600…"},
	}
	for _, tc := range tests {
		if got := truncStr(tc.s, tc.maxLen); got != tc.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tc.s, tc.maxLen, got, tc.want)
		}
	}
}

func TestTruncateToHeight(t *testing.T) {
	five := "a\nb\nc\nd\ne\n"
	tests := []struct {
		name     string
		in       string
		maxLines int
		want     string
	}{
		{"cuts", five, 3, "a\nb\nc\n"},
		{"exact", "a\nb\nc\n", 3, "a\nb\nc\n"},
		{"fits", "a\nb\n", 10, "a\nb\n"},
		{"no trailing newline", "a\nb\nc", 2, "a\nb\n"},
		{"zero keeps all", five, 0, five},
		{"negative keeps all", five, -1, five},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncateToHeight(tc.in, tc.maxLines); got != tc.want {
				t.Errorf("truncateToHeight(%q, %d) = %q, want %q", tc.in, tc.maxLines, got, tc.want)
			}
		})
	}
}
