package query

import (
	"sync"
	"time"
)

// Options configures a subscription.
type Options struct {
	// RefetchInterval refreshes the entry in the background on this cadence
	// while the subscription is open. Zero disables interval refresh.
	RefetchInterval time.Duration
}

// Subscription delivers state changes of one entry. Updates holds at most
// one pending state; a newer state replaces an unread one.
type Subscription struct {
	cache    *Cache
	hash     string
	interval time.Duration

	mu     sync.Mutex
	ch     chan State
	closed bool
	once   sync.Once
}

func newSubscription(c *Cache, hash string, opts Options) *Subscription {
	return &Subscription{
		cache:    c,
		hash:     hash,
		interval: opts.RefetchInterval,
		ch:       make(chan State, 1),
	}
}

// Updates returns the channel of state changes. It is closed by Close and
// by Cache.Reset.
func (s *Subscription) Updates() <-chan State {
	return s.ch
}

// Close detaches the subscription. The entry's refresh ticker stops once
// no open subscription asks for it. Close is idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.cache.unsubscribe(s)
		s.shut()
	})
}

func (s *Subscription) push(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- st
}

func (s *Subscription) shut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
