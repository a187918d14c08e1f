package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/naveenspark/finadmin/internal/query"
	"github.com/naveenspark/finadmin/internal/session"
	"github.com/naveenspark/finadmin/pkg/client"
)

const (
	testToken    = "tok"
	testPassword = "s3cret"
	testUserID   = "7f9c2a4e-1b3d-4c5e-8f60-1a2b3c4d5e6f"
)

// fakeBackend serves the admin API from memory.
type fakeBackend struct {
	mu        sync.Mutex
	expired   bool
	codes     []string
	generated int
	calls     map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{codes: []string{"BETA-AAAA", "BETA-BBBB"}, calls: map[string]int{}}
}

func (b *fakeBackend) expire() {
	b.mu.Lock()
	b.expired = true
	b.mu.Unlock()
}

func (b *fakeBackend) callCount(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[r.URL.Path]++

	if r.URL.Path == "/admin/login" {
		var req struct {
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if req.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]string{"error": "invalid password"})
			return
		}
		b.expired = false
		writeJSON(w, map[string]string{"token": testToken})
		return
	}

	if b.expired || r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]string{"error": "invalid token"})
		return
	}

	switch r.URL.Path {
	case "/admin/verify":
		writeJSON(w, map[string]bool{"valid": true})
	case "/admin/metrics/overview":
		writeJSON(w, map[string]any{
			"total_users": 1234, "active_users_7d": 617, "entries_today": 42,
			"entries_month": 900, "volume_month": 12345.67,
			"users_by_plan": map[string]int{"free": 1000, "pro": 234},
		})
	case "/admin/metrics/users":
		writeJSON(w, map[string]any{"data": []map[string]any{
			{"date": "2026-10-12", "new_users": 3, "active_users": 40},
			{"date": "2026-10-13", "new_users": 7, "active_users": 44},
		}})
	case "/admin/metrics/commands":
		writeJSON(w, map[string]any{"data": []map[string]any{
			{"command": "/resumo", "count": 321}, {"command": "/start", "count": 12},
		}})
	case "/admin/metrics/entries":
		writeJSON(w, map[string]any{
			"by_day": []map[string]any{
				{"date": "2026-10-12", "count": 10, "total": 500.5},
				{"date": "2026-10-13", "count": 30, "total": 1500},
			},
			"by_type": []map[string]any{
				{"type": "expense", "count": 30, "total": 1200},
				{"type": "income", "count": 10, "total": 800.5},
			},
			"by_category": []map[string]any{{"category": "Mercado", "count": 12, "total": 640}},
		})
	case "/admin/metrics/system":
		writeJSON(w, map[string]any{
			"database": map[string]any{"tables": map[string]int{"users": 1234, "entries": 9000}, "total_rows": 10234},
			"ai":       map[string]any{"calls_30d": 5000, "tokens_30d": 1200000, "estimated_cost_usd": 3.5, "provider": "anthropic"},
			"errors":   map[string]any{"count_7d": 25, "by_type": map[string]int{"timeout": 20, "parse": 5}},
		})
	case "/admin/metrics/ai":
		writeJSON(w, map[string]any{
			"total_classifications": 200, "confirmed_without_edit": 130, "edited_before_confirm": 50,
			"cancelled": 20, "accuracy_rate": 65, "patterns_learned": 30, "fixed_rules_used": 55,
			"ai_calls": 90, "provider": "openai",
			"by_day":    []map[string]any{{"date": "2026-10-13", "total": 20, "accuracy_rate": 85}},
			"top_edits": []map[string]any{{"original_category": "Outros", "edited_category": "Mercado", "count": 10}},
		})
	case "/admin/users":
		writeJSON(w, map[string]any{
			"data": []map[string]any{
				{"id": testUserID, "telegram_id": 1001, "telegram_username": "ana", "first_name": "Ana",
					"plan": "Pro", "plan_slug": "pro", "entries_count": 77, "created_at": "2026-09-01T10:00:00Z"},
				{"id": "0b8c6f1e-2d3a-4b5c-9d7e-8f9a0b1c2d3e", "telegram_id": 1002, "first_name": "Bruno",
					"plan_slug": "none", "entries_count": 3, "created_at": "2026-09-02T10:00:00Z"},
			},
			"pagination": map[string]int{"page": 1, "limit": 20, "total": 2, "pages": 1},
		})
	case "/admin/users/" + testUserID:
		writeJSON(w, map[string]any{
			"id": testUserID, "telegram_id": 1001, "telegram_username": "ana", "first_name": "Ana",
			"plan": "Pro", "plan_slug": "pro", "entries_count": 77,
			"recent_entries": []map[string]any{
				{"type": "expense", "category": "Padaria", "amount": 12.5, "created_at": "2026-10-13T08:00:00Z"},
			},
		})
	case "/admin/beta-codes":
		rows := make([]map[string]any, 0, len(b.codes))
		for i, c := range b.codes {
			rows = append(rows, map[string]any{"id": fmt.Sprintf("00000000-0000-4000-8000-%012d", i), "code": c})
		}
		writeJSON(w, map[string]any{
			"data":       rows,
			"pagination": map[string]int{"page": 1, "limit": 50, "total": len(b.codes), "pages": 1},
		})
	case "/admin/beta-codes/generate":
		n, _ := strconv.Atoi(r.URL.Query().Get("count"))
		var fresh []string
		for i := 0; i < n; i++ {
			b.generated++
			fresh = append(fresh, fmt.Sprintf("NEW-%04d", b.generated))
		}
		b.codes = append(b.codes, fresh...)
		writeJSON(w, map[string]any{"codes": fresh, "count": len(fresh)})
	default:
		http.NotFound(w, r)
	}
}

// appHarness drives an App the way the Bubbletea runtime would, without a
// terminal. Commands run on goroutines and their messages feed Update.
type appHarness struct {
	t       *testing.T
	app     App
	backend *fakeBackend
	svc     *Services
	msgs    chan tea.Msg
	logs    *logBuffer
}

// logBuffer collects the app's log output.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newHarness builds an App against a fake backend. storedToken seeds the
// token store.
func newHarness(t *testing.T, storedToken string) *appHarness {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	gate := session.NewGate(session.NewMemoryStore(storedToken))
	logs := &logBuffer{}
	svc := &Services{
		Log:    zerolog.New(logs),
		Client: client.New(srv.URL, client.WithTokenSource(gate), client.WithUnauthorizedHandler(gate.Expire)),
		Gate:   gate,
		Cache:  query.New(),
		WebURL: "http://web.test",
		Days:   30,
	}
	t.Cleanup(svc.Cache.Reset)

	a := NewApp(svc)
	t.Cleanup(a.Shutdown)
	h := &appHarness{t: t, app: a, backend: backend, svc: svc, msgs: make(chan tea.Msg, 512), logs: logs}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 60})
	return h
}

// start runs the session check and waits for it to settle.
func (h *appHarness) start() {
	h.t.Helper()
	h.run(h.app.startSession())
	h.run(waitSession(h.app.sessionCh))
	h.until(func(a App) bool { return a.view != viewLoading })
}

// relevant filters out animation ticks, which would never stop.
func relevant(msg tea.Msg) bool {
	switch msg.(type) {
	case queryMsg, sessionMsg, loginResultMsg, logoutMsg, generatedMsg,
		copyResultMsg, showPeekMsg, peekLoadedMsg, openedMsg:
		return true
	}
	return false
}

func (h *appHarness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				h.run(c)
			}
			return
		}
		if msg != nil && relevant(msg) {
			h.msgs <- msg
		}
	}()
}

func (h *appHarness) send(msg tea.Msg) {
	model, cmd := h.app.Update(msg)
	h.app = model.(App)
	h.run(cmd)
}

// key sends a single key press. Named keys map to their key types; anything
// else is typed as runes.
func (h *appHarness) key(k string) {
	switch k {
	case "enter":
		h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "backspace":
		h.send(tea.KeyMsg{Type: tea.KeyBackspace})
	default:
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func (h *appHarness) typeText(s string) {
	for _, r := range s {
		h.key(string(r))
	}
}

// until applies incoming messages until cond holds.
func (h *appHarness) until(cond func(App) bool) {
	h.t.Helper()
	deadline := time.After(3 * time.Second)
	for !cond(h.app) {
		select {
		case msg := <-h.msgs:
			h.send(msg)
		case <-deadline:
			h.t.Fatalf("timed out; view is %d, screen:\n%s", h.app.view, h.app.View())
		}
	}
}

// untilScreen waits for the rendered screen to contain want.
func (h *appHarness) untilScreen(want string) {
	h.t.Helper()
	h.until(func(a App) bool { return strings.Contains(a.View(), want) })
}

// signedIn returns a harness whose session verified a stored token.
func signedIn(t *testing.T) *appHarness {
	t.Helper()
	h := newHarness(t, testToken)
	h.start()
	if h.app.view != viewDashboard {
		t.Fatalf("expected dashboard after verified token, got view %d", h.app.view)
	}
	return h
}
