package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/finadmin/internal/query"
	"github.com/naveenspark/finadmin/internal/session"
)

// queryMsg carries a state change of one subscribed cache entry.
type queryMsg struct {
	sub   *query.Subscription
	state query.State
}

// binding ties a view to one cache entry while the view is on screen.
type binding struct {
	cache *query.Cache
	key   query.Key
	sub   *query.Subscription
	state query.State
}

// bind subscribes to key and returns the command that waits for its first
// update. every > 0 refreshes the entry on that cadence.
func bind[T any](c *query.Cache, key query.Key, fn func(context.Context) (T, error), every time.Duration) (binding, tea.Cmd) {
	sub := query.SubscribeAs(c, key, fn, query.Options{RefetchInterval: every})
	b := binding{cache: c, key: key, sub: sub, state: c.Peek(key)}
	return b, b.next()
}

func (b binding) next() tea.Cmd {
	sub := b.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-sub.Updates()
		if !ok {
			return nil
		}
		return queryMsg{sub: sub, state: st}
	}
}

// apply records msg if it belongs to b and returns the command that waits
// for the following update.
func (b *binding) apply(msg queryMsg) (tea.Cmd, bool) {
	if b.sub == nil || msg.sub != b.sub {
		return nil, false
	}
	b.state = msg.state
	return b.next(), true
}

// refresh forces a refetch. The result arrives through the subscription.
func (b binding) refresh() tea.Cmd {
	if b.cache == nil {
		return nil
	}
	c, key := b.cache, b.key
	return func() tea.Msg {
		c.Refetch(context.Background(), key, nil) //nolint:errcheck // surfaced via the subscription
		return nil
	}
}

func (b binding) close() {
	if b.sub != nil {
		b.sub.Close()
	}
}

// dataOf returns the binding's data as a T.
func dataOf[T any](b binding) (T, bool) {
	return query.DataAs[T](b.state)
}

// fallback renders what a view shows instead of data: a spinner while the
// first fetch runs, or the error when it failed. ok is true when there is
// data to render.
func fallback(b binding, spin spinner.Model, what string) (string, bool) {
	if b.state.HasData() {
		return "", true
	}
	if b.state.Status == query.StatusErrored && b.state.Err != nil {
		return "\n " + errorStyle.Render("failed to load "+what+": "+b.state.Err.Error()) +
			"\n " + helpEntry("r", "retry"), false
	}
	return "\n " + spin.View() + " " + dimStyle.Render("loading "+what+"..."), false
}

// staleNotice is the banner shown above data kept after a failed refresh.
func staleNotice(bs ...binding) string {
	var errs []string
	for _, b := range bs {
		if b.state.HasData() && b.state.Err != nil {
			errs = append(errs, b.state.Err.Error())
		}
	}
	if len(errs) == 0 {
		return ""
	}
	return " " + warnStyle.Render("refresh failed, showing last data: "+truncStr(strings.Join(errs, "; "), 120)) + "\n"
}

// anyFetching reports whether any binding has a request running.
func anyFetching(bs ...binding) bool {
	for _, b := range bs {
		if b.state.InFlight {
			return true
		}
	}
	return false
}

// sessionMsg reports the session gate's state. watched is set when it came
// from the watch channel, which then has to be waited on again.
type sessionMsg struct {
	state   session.State
	watched bool
}

// watchSession forwards gate transitions into a channel holding only the
// latest state.
func watchSession(g *session.Gate) (<-chan session.State, func()) {
	ch := make(chan session.State, 1)
	unsubscribe := g.Subscribe(func(s session.State) {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	})
	return ch, unsubscribe
}

func waitSession(ch <-chan session.State) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return sessionMsg{state: s, watched: true}
	}
}
