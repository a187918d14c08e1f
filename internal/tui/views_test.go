package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/naveenspark/finadmin/internal/query"
	"github.com/naveenspark/finadmin/pkg/domain"
)

func TestEntriesViewTotalsAndShares(t *testing.T) {
	h := signedIn(t)
	h.key("3")
	h.untilScreen("Volume")

	screen := h.app.View()
	for _, want := range []string{"40", "R$ 2.000,50", "75% of total", "25% of total", "Mercado"} {
		if !strings.Contains(screen, want) {
			t.Errorf("entries view missing %q:\n%s", want, screen)
		}
	}
}

func TestAIViewAdvisoriesAndProvider(t *testing.T) {
	h := signedIn(t)
	h.key("4")
	h.untilScreen("Accuracy")

	screen := h.app.View()
	for _, want := range []string{"65.0%", "GPT-4 (OpenAI)", "Fixed rules cover under 70%", "Fewer than 50 patterns", "Outros", "Mercado"} {
		if !strings.Contains(screen, want) {
			t.Errorf("ai view missing %q:\n%s", want, screen)
		}
	}
}

func TestSystemViewErrorsAndCost(t *testing.T) {
	h := signedIn(t)
	h.key("5")
	h.untilScreen("Database rows")

	screen := h.app.View()
	for _, want := range []string{"10,234", "$3.5000", "Claude (Anthropic)", "timeout", "entries"} {
		if !strings.Contains(screen, want) {
			t.Errorf("system view missing %q:\n%s", want, screen)
		}
	}
	if i, j := strings.Index(screen, "timeout"), strings.Index(screen, "parse"); i < 0 || j < 0 || i > j {
		t.Errorf("expected errors sorted by count, timeout before parse:\n%s", screen)
	}
}

func TestUsersViewSearchAndFilter(t *testing.T) {
	h := signedIn(t)
	h.key("2")
	h.untilScreen("@ana")
	if !strings.Contains(h.app.View(), "1 with plan") {
		t.Errorf("expected with-plan count:\n%s", h.app.View())
	}

	h.key("/")
	h.typeText("bru")
	h.key("enter")
	if got := h.app.users.visible(); len(got) != 1 || got[0].FirstName != "Bruno" {
		t.Fatalf("search 'bru' = %+v, want only Bruno", got)
	}
	if strings.Contains(h.app.View(), "@ana") {
		t.Errorf("search should hide non-matching users:\n%s", h.app.View())
	}

	h.key("f")
	if h.app.users.statusFilter() != domain.UserStatusActive {
		t.Errorf("filter after 'f' = %q, want active", h.app.users.statusFilter())
	}
	if h.app.users.page != 1 {
		t.Errorf("filter change should reset to page 1, got %d", h.app.users.page)
	}
}

func TestCodesViewGenerateClampsAndRefreshes(t *testing.T) {
	h := signedIn(t)
	h.key("6")
	h.untilScreen("BETA-AAAA")

	h.key("g")
	if !h.app.isEditing() {
		t.Fatal("expected isEditing=true while the count prompt is open")
	}
	if got := h.app.codes.countInput.Value(); got != "10" {
		t.Errorf("count prompt prefilled with %q, want 10", got)
	}

	h.key("backspace")
	h.key("backspace")
	h.typeText("500")
	h.key("enter")
	if !strings.Contains(h.app.codes.statusMsg, "above the maximum") {
		t.Errorf("expected clamp notice, got %q", h.app.codes.statusMsg)
	}

	h.until(func(a App) bool { return len(a.codes.generated) > 0 })
	if len(h.app.codes.generated) != domain.MaxGenerateCount {
		t.Errorf("generated %d codes, want %d", len(h.app.codes.generated), domain.MaxGenerateCount)
	}
	if want := fmt.Sprintf(`"count":%d`, domain.MaxGenerateCount); !strings.Contains(h.logs.String(), want) {
		t.Errorf("expected generated codes to be logged with %s, got %s", want, h.logs.String())
	}

	// The listing was invalidated and refetched by its subscription.
	h.until(func(a App) bool {
		p, ok := a.codes.current()
		return ok && p.Pagination.Total == 2+domain.MaxGenerateCount
	})
	if h.backend.callCount("/admin/beta-codes") < 2 {
		t.Errorf("expected the listing to be refetched, got %d calls", h.backend.callCount("/admin/beta-codes"))
	}
}

func TestCodesViewGenerateEscCancels(t *testing.T) {
	h := signedIn(t)
	h.key("6")
	h.untilScreen("BETA-AAAA")

	h.key("g")
	h.key("esc")
	if h.app.codes.generating {
		t.Error("expected esc to close the count prompt")
	}
	if h.backend.callCount("/admin/beta-codes/generate") != 0 {
		t.Error("expected no generate request after esc")
	}
}

func TestCodesViewFilterCycles(t *testing.T) {
	h := signedIn(t)
	h.key("6")
	h.untilScreen("BETA-AAAA")

	want := []domain.CodeStatus{domain.CodeStatusUsed, domain.CodeStatusAvailable, domain.CodeStatusAll}
	for _, status := range want {
		h.key("f")
		if got := h.app.codes.statusFilter(); got != status {
			t.Errorf("filter = %q, want %q", got, status)
		}
	}
}

func TestFallbackShowsErrorWithoutData(t *testing.T) {
	b := binding{}
	b.state.Status = query.StatusErrored
	b.state.Err = errors.New("boom")
	body, ok := fallback(b, newSpinner(), "users")
	if ok {
		t.Fatal("expected no data")
	}
	if !strings.Contains(body, "failed to load users: boom") {
		t.Errorf("fallback = %q", body)
	}
}
