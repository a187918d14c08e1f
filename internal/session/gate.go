// Package session gates the dashboard on a verified admin token.
//
// A Gate starts in StateLoading, verifies the persisted token once and
// settles in StateAuthenticated or StateUnauthenticated. It never returns
// to StateLoading. Any 401 from the backend resets it to
// StateUnauthenticated and clears the stored token.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// State is the gate's authentication state.
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrEmptyPassword is returned by Login before any request is made.
var ErrEmptyPassword = errors.New("password is empty")

// Verifier checks a token against the backend.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) error
}

// Authenticator exchanges a password for a token.
type Authenticator interface {
	Login(ctx context.Context, password string) (string, error)
}

// Gate owns the session. It is safe for concurrent use.
type Gate struct {
	store TokenStore
	log   zerolog.Logger

	// writeMu orders a store write with the transition that follows it.
	writeMu sync.Mutex

	mu        sync.RWMutex
	state     State
	token     string
	observers map[int]func(State)
	nextID    int
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the gate's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) { g.log = l }
}

// NewGate returns a gate in StateLoading backed by store.
func NewGate(store TokenStore, opts ...Option) *Gate {
	g := &Gate{
		store:     store,
		log:       zerolog.Nop(),
		state:     StateLoading,
		observers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start reads the stored token and verifies it once. Verification failures
// of any kind, including network errors, settle the gate in
// StateUnauthenticated and clear the store. Start never fails the process;
// calling it after the gate has settled is a no-op.
func (g *Gate) Start(ctx context.Context, v Verifier) State {
	if g.State() != StateLoading {
		return g.State()
	}

	token, err := g.store.Load(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("read stored token")
	}
	if token == "" {
		g.transition(StateUnauthenticated, "")
		return StateUnauthenticated
	}

	if err := v.VerifyToken(ctx, token); err != nil {
		g.log.Info().Err(err).Msg("stored token rejected")
		g.writeMu.Lock()
		g.clearStore(ctx)
		g.transition(StateUnauthenticated, "")
		g.writeMu.Unlock()
		return StateUnauthenticated
	}

	g.transition(StateAuthenticated, token)
	return StateAuthenticated
}

// Login exchanges password for a token, persists it and marks the session
// authenticated. On failure nothing is stored and the state is unchanged,
// except that a gate still loading settles as unauthenticated.
func (g *Gate) Login(ctx context.Context, a Authenticator, password string) error {
	if password == "" {
		return fmt.Errorf("session.Login: %w", ErrEmptyPassword)
	}
	token, err := a.Login(ctx, password)
	if err != nil {
		if g.State() == StateLoading {
			g.transition(StateUnauthenticated, "")
		}
		return fmt.Errorf("session.Login: %w", err)
	}
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if err := g.store.Save(ctx, token); err != nil {
		// The session still works for this process.
		g.log.Warn().Err(err).Msg("persist token")
	}
	g.transition(StateAuthenticated, token)
	return nil
}

// Logout clears the stored token and ends the session.
func (g *Gate) Logout(ctx context.Context) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	err := g.store.Clear(ctx)
	g.transition(StateUnauthenticated, "")
	if err != nil {
		return fmt.Errorf("session.Logout: %w", err)
	}
	return nil
}

// Reset ends the session unconditionally. It is idempotent.
func (g *Gate) Reset() {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	g.clearStore(context.Background())
	g.transition(StateUnauthenticated, "")
}

// Expire ends the session after the backend rejected token. A rejection
// of a token that is no longer current, such as a late 401 from a request
// sent before a new login, is ignored. Expire is the client's unauthorized
// handler.
func (g *Gate) Expire(token string) {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if current := g.Token(); token == "" || token != current {
		g.log.Debug().Bool("had_token", token != "").Msg("ignore rejection of a superseded token")
		return
	}
	g.clearStore(context.Background())
	g.transition(StateUnauthenticated, "")
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// IsAuthenticated reports whether the session is authenticated.
func (g *Gate) IsAuthenticated() bool {
	return g.State() == StateAuthenticated
}

// Token returns the session token, or "" when unauthenticated. Gate is a
// client.TokenSource.
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// Subscribe registers fn to be called after every state change. The
// returned func unregisters it.
func (g *Gate) Subscribe(fn func(State)) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.observers[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.observers, id)
		g.mu.Unlock()
	}
}

func (g *Gate) clearStore(ctx context.Context) {
	if err := g.store.Clear(ctx); err != nil {
		g.log.Warn().Err(err).Msg("clear stored token")
	}
}

// transition moves to next and notifies observers outside the lock. A
// no-op transition (same state, same token) notifies nobody.
func (g *Gate) transition(next State, token string) {
	g.mu.Lock()
	if g.state == next && g.token == token {
		g.mu.Unlock()
		return
	}
	prev := g.state
	g.state = next
	g.token = token
	observers := make([]func(State), 0, len(g.observers))
	for _, fn := range g.observers {
		observers = append(observers, fn)
	}
	g.mu.Unlock()

	g.log.Debug().Stringer("from", prev).Stringer("to", next).Msg("session transition")
	for _, fn := range observers {
		fn(next)
	}
}
