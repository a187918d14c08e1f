package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/finadmin/internal/session"
)

func TestAppStartsLoading(t *testing.T) {
	h := newHarness(t, testToken)
	if h.app.view != viewLoading {
		t.Fatalf("expected viewLoading before the session check, got %d", h.app.view)
	}
	if !strings.Contains(h.app.View(), "checking session") {
		t.Errorf("loading screen missing banner:\n%s", h.app.View())
	}
}

func TestAppWithoutTokenShowsLogin(t *testing.T) {
	h := newHarness(t, "")
	h.start()
	if h.app.view != viewLogin {
		t.Fatalf("expected viewLogin without a stored token, got %d", h.app.view)
	}
	if !strings.Contains(h.app.View(), "Admin login") {
		t.Errorf("login screen missing title:\n%s", h.app.View())
	}
	if h.backend.callCount("/admin/verify") != 0 {
		t.Error("no verification request expected without a token")
	}
}

func TestAppRejectedTokenShowsLogin(t *testing.T) {
	h := newHarness(t, "stale")
	h.start()
	if h.app.view != viewLogin {
		t.Fatalf("expected viewLogin for a rejected token, got %d", h.app.view)
	}
	if got := h.svc.Gate.State(); got != session.StateUnauthenticated {
		t.Errorf("gate state = %v, want unauthenticated", got)
	}
}

func TestAppVerifiedTokenShowsDashboard(t *testing.T) {
	h := signedIn(t)
	h.untilScreen("1,234")
	screen := h.app.View()
	for _, want := range []string{"Total users", "R$ 12.345,67", "/resumo", "Mercado"} {
		if !strings.Contains(screen, want) {
			t.Errorf("dashboard missing %q:\n%s", want, screen)
		}
	}
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
	}{
		{"2", viewUsers},
		{"3", viewEntries},
		{"4", viewAI},
		{"5", viewSystem},
		{"6", viewCodes},
		{"1", viewDashboard},
	}

	h := signedIn(t)
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			h.key(tc.key)
			if h.app.view != tc.wantView {
				t.Errorf("after key %q: expected view=%d, got %d", tc.key, tc.wantView, h.app.view)
			}
		})
	}
}

func TestAppTabKeysIgnoredBeforeLogin(t *testing.T) {
	h := newHarness(t, "")
	h.start()
	h.key("2")
	if h.app.view != viewLogin {
		t.Errorf("expected tab keys to be ignored on the login screen, got view %d", h.app.view)
	}
	if !strings.Contains(h.app.login.input.Value(), "2") {
		t.Errorf("expected the key to reach the password input, got %q", h.app.login.input.Value())
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	h := signedIn(t)
	_, cmd := h.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg from 'q'")
	}
}

func TestAppQWhileSearchingIsTyped(t *testing.T) {
	h := signedIn(t)
	h.key("2")
	h.key("/")
	if !h.app.isEditing() {
		t.Fatal("expected isEditing=true while searching users")
	}
	_, cmd := h.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("q should be typed into the search, not quit")
		}
	}
}

func TestAppHelpOverlay(t *testing.T) {
	var opened []string
	orig := openURL
	openURL = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	h := signedIn(t)
	h.key("h")
	if !h.app.helpOpen {
		t.Fatal("expected helpOpen=true after 'h'")
	}
	if !strings.Contains(h.app.View(), "F I N A D M I N") {
		t.Errorf("help overlay missing title:\n%s", h.app.View())
	}

	h.key("j")
	h.key("enter")
	h.until(func(a App) bool { return a.notice != "" })
	if len(opened) != 1 || opened[0] != "http://web.test/users" {
		t.Errorf("opened = %v, want [http://web.test/users]", opened)
	}

	h.key("esc")
	if h.app.helpOpen {
		t.Error("expected helpOpen=false after esc")
	}
}

func TestAppOpenWebDashboard(t *testing.T) {
	var opened string
	orig := openURL
	openURL = func(url string) error {
		opened = url
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	h := signedIn(t)
	h.key("o")
	h.until(func(a App) bool { return a.notice != "" })
	if opened != "http://web.test" {
		t.Errorf("opened %q, want the web dashboard", opened)
	}
}

func TestAppLoginWrongPassword(t *testing.T) {
	h := newHarness(t, "")
	h.start()

	h.typeText("guess")
	h.key("enter")
	h.until(func(a App) bool { return !a.login.submitting && a.login.err != "" })

	if !strings.Contains(h.app.View(), "wrong password") {
		t.Errorf("expected wrong password message:\n%s", h.app.View())
	}
	if h.app.view != viewLogin {
		t.Errorf("expected to stay on login, got view %d", h.app.view)
	}
	if h.app.login.input.Value() != "" {
		t.Errorf("expected password input to be cleared, got %q", h.app.login.input.Value())
	}
}

func TestAppLoginEmptyPasswordMakesNoRequest(t *testing.T) {
	h := newHarness(t, "")
	h.start()
	h.key("enter")
	if h.app.login.err == "" {
		t.Error("expected an error for an empty password")
	}
	if h.backend.callCount("/admin/login") != 0 {
		t.Error("expected no login request for an empty password")
	}
}

func TestAppLoginSuccessOpensDashboard(t *testing.T) {
	h := newHarness(t, "")
	h.start()

	h.typeText(testPassword)
	h.key("enter")
	h.until(func(a App) bool { return a.view == viewDashboard })
	h.untilScreen("Total users")

	if h.svc.Gate.Token() != testToken {
		t.Errorf("gate token = %q, want %q", h.svc.Gate.Token(), testToken)
	}
}

func TestAppSessionExpiryReturnsToLogin(t *testing.T) {
	h := signedIn(t)
	h.untilScreen("1,234")

	h.backend.expire()
	h.key("r")
	h.until(func(a App) bool { return a.view == viewLogin })

	if !strings.Contains(h.app.View(), "session expired") {
		t.Errorf("expected expiry notice on login:\n%s", h.app.View())
	}
	if h.svc.Cache.Peek(overviewKey()).HasData() {
		t.Error("expected cache to be cleared when the session ends")
	}
	if h.svc.Gate.Token() != "" {
		t.Error("expected token to be cleared")
	}
	if !strings.Contains(h.logs.String(), `"message":"session expired"`) {
		t.Errorf("expected expiry to be logged, got %s", h.logs.String())
	}
}

func TestAppLogout(t *testing.T) {
	h := signedIn(t)
	h.key("L")
	h.until(func(a App) bool { return a.view == viewLogin })

	if strings.Contains(h.app.View(), "session expired") {
		t.Errorf("logout should not show the expiry notice:\n%s", h.app.View())
	}
	if h.svc.Gate.State() != session.StateUnauthenticated {
		t.Errorf("gate state = %v after logout", h.svc.Gate.State())
	}
	if strings.Contains(h.logs.String(), "session expired") {
		t.Errorf("logout should not log an expiry: %s", h.logs.String())
	}
}

func TestAppUserPeekOpenAndClose(t *testing.T) {
	h := signedIn(t)
	h.key("2")
	h.untilScreen("@ana")

	h.key("enter")
	h.until(func(a App) bool { return a.peekOpen })
	h.untilScreen("Padaria")
	if !strings.Contains(h.app.View(), "R$ 12,50") {
		t.Errorf("peek missing entry amount:\n%s", h.app.View())
	}

	h.key("esc")
	if h.app.peekOpen {
		t.Error("expected peekOpen=false after esc in peek")
	}
	if h.app.view != viewUsers {
		t.Errorf("expected to return to users, got view %d", h.app.view)
	}
}

func TestAppViewFitsHeight(t *testing.T) {
	h := signedIn(t)
	h.send(tea.WindowSizeMsg{Width: 100, Height: 12})
	h.untilScreen("Total users")
	lines := strings.Count(h.app.View(), "\n") + 1
	if lines > 12 {
		t.Errorf("view has %d lines, want <= 12", lines)
	}
}
