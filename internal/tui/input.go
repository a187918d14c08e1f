package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in search inputs.
const maxInputLen = 200

var namedKeys = map[string]bool{
	"enter": true, "esc": true, "tab": true, "backspace": true, "delete": true,
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pgup": true, "pgdown": true, "insert": true,
}

func isNamedKey(key string) bool {
	if namedKeys[key] {
		return true
	}
	for _, mod := range []string{"ctrl+", "alt+", "shift+"} {
		if strings.HasPrefix(key, mod) {
			return true
		}
	}
	if len(key) > 1 && key[0] == 'f' && strings.Trim(key[1:], "0123456789") == "" {
		return true
	}
	return false
}

// keyText returns the text a key press types. Pasted runes arrive
// unbracketed.
func keyText(msg tea.KeyMsg) string {
	if msg.Type == tea.KeyRunes {
		return string(msg.Runes)
	}
	return msg.String()
}

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware), single printable characters and pastes.
// Returns the text unchanged for named keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch {
	case key == "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case key == "" || (utf8.RuneCountInString(key) > 1 && isNamedKey(key)):
		return text
	}
	room := maxInputLen - utf8.RuneCountInString(text)
	if room <= 0 {
		return text
	}
	if runes := []rune(key); len(runes) > room {
		key = string(runes[:room])
	}
	return text + key
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}
