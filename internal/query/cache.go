// Package query is the process-wide cache behind every dashboard view.
//
// Entries are keyed by Key. Concurrent reads of the same key share one
// in-flight request. Failed fetches keep the previous data and record the
// error. Fetches are detached from the caller's context: a caller that
// gives up stops waiting, but the request finishes and still updates the
// entry for everyone else. Subscriptions can ask for interval refresh,
// which runs only while at least one of them is open. Invalidation starts
// a new epoch for the entry: requests already running when it happens no
// longer count for it, and their results are discarded. Entries nobody has
// used for the gc time are dropped.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultStaleTime is how long fetched data is served without a request.
const DefaultStaleTime = 30 * time.Second

// DefaultGCTime is how long an entry without subscribers or requests is
// kept after its last use.
const DefaultGCTime = 5 * time.Minute

// Fetcher loads the data for one key.
type Fetcher func(ctx context.Context) (any, error)

// Status is the lifecycle position of an entry.
type Status int

const (
	StatusIdle Status = iota
	StatusFetching
	StatusSettled
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusSettled:
		return "settled"
	case StatusErrored:
		return "errored"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// State is a snapshot of one entry.
type State struct {
	Key       Key
	Data      any
	Err       error
	Status    Status
	FetchedAt time.Time
	InFlight  bool
	Stale     bool
}

// HasData reports whether the entry holds data from a successful fetch.
func (s State) HasData() bool { return !s.FetchedAt.IsZero() }

// Loading reports whether a request is running and there is nothing to
// show yet.
func (s State) Loading() bool { return s.InFlight && !s.HasData() }

type entry struct {
	key  Key
	hash string
	fn   Fetcher

	data        any
	err         error
	status      Status // outcome of the last stored request
	fetchedAt   time.Time
	invalidated bool
	touched     time.Time

	epoch   uint64
	running int  // requests in flight, any epoch
	current bool // a request of the current epoch is in flight

	subs       map[*Subscription]struct{}
	interval   time.Duration
	stopTicker chan struct{}
}

// Cache is safe for concurrent use.
type Cache struct {
	staleTime time.Duration
	gcTime    time.Duration
	now       func() time.Time
	log       zerolog.Logger

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime sets how long data stays fresh.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithGCTime sets how long unused entries are kept. Zero or less keeps
// them until Reset.
func WithGCTime(d time.Duration) Option {
	return func(c *Cache) { c.gcTime = d }
}

// WithLogger sets the cache logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		staleTime: DefaultStaleTime,
		gcTime:    DefaultGCTime,
		now:       time.Now,
		log:       zerolog.Nop(),
		entries:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the data for key. Fresh data is returned without a
// request. Data that has merely aged is returned immediately while a
// background request revalidates it. Missing, failed or invalidated data
// is fetched and waited for. On failure the previous data, if any, is
// returned together with the error.
func (c *Cache) Fetch(ctx context.Context, key Key, fn Fetcher) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	e := c.entryLocked(key, fn)
	switch {
	case c.freshLocked(e):
		data := e.data
		c.mu.Unlock()
		return data, nil
	case !e.fetchedAt.IsZero() && !e.invalidated && e.status != StatusErrored:
		data, running := e.data, e.current
		c.mu.Unlock()
		if !running {
			c.start(context.Background(), e.hash)
		}
		return data, nil
	}
	c.mu.Unlock()

	return c.wait(ctx, c.start(ctx, e.hash))
}

// Refetch fetches key regardless of staleness. Concurrent calls for the
// same key share one request.
func (c *Cache) Refetch(ctx context.Context, key Key, fn Fetcher) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	e := c.entryLocked(key, fn)
	c.mu.Unlock()

	return c.wait(ctx, c.start(ctx, e.hash))
}

// Peek returns the current state of key without fetching.
func (c *Cache) Peek(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return State{Key: key, Status: StatusIdle, Stale: true}
	}
	return c.stateLocked(e)
}

// Subscribe attaches to key. The current state is delivered at once and a
// background fetch starts when the entry is not fresh. fn replaces the
// entry's fetcher for background refreshes.
func (c *Cache) Subscribe(key Key, fn Fetcher, opts Options) *Subscription {
	c.mu.Lock()
	e := c.entryLocked(key, fn)
	sub := newSubscription(c, e.hash, opts)
	e.subs[sub] = struct{}{}
	c.rescheduleLocked(e)
	sub.push(c.stateLocked(e))
	needFetch := !c.freshLocked(e) && !e.current
	c.mu.Unlock()

	if needFetch {
		c.start(context.Background(), e.hash)
	}
	return sub
}

// Invalidate marks every entry whose key starts with prefix as stale, so
// the next Fetch waits for a new request. Requests already running for a
// matched entry are superseded: later calls do not join them and their
// results are not stored. Entries with open subscriptions are refetched in
// the background right away. It returns how many entries matched.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	var refetch []string
	matched := 0
	for hash, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		matched++
		e.invalidated = true
		e.epoch++
		e.current = false
		if len(e.subs) > 0 {
			refetch = append(refetch, hash)
		}
	}
	c.mu.Unlock()

	c.log.Debug().Stringer("prefix", prefix).Int("matched", matched).Msg("invalidate")
	for _, hash := range refetch {
		c.start(context.Background(), hash)
	}
	return matched
}

// Reset drops every entry, stops every refresh ticker and closes every
// subscription. Requests still running finish but are not stored.
func (c *Cache) Reset() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*entry)
	c.gen++
	var subs []*Subscription
	for _, e := range entries {
		if e.stopTicker != nil {
			close(e.stopTicker)
			e.stopTicker = nil
		}
		for s := range e.subs {
			subs = append(subs, s)
		}
	}
	c.mu.Unlock()

	for _, s := range subs {
		s.shut()
	}
	c.log.Debug().Int("entries", len(entries)).Msg("cache reset")
}

// entryLocked returns the entry for key, creating it when needed. A
// non-nil fn replaces the stored fetcher. Unused entries are swept first.
func (c *Cache) entryLocked(key Key, fn Fetcher) *entry {
	c.sweepLocked()
	hash := key.String()
	e, ok := c.entries[hash]
	if !ok {
		e = &entry{key: key, hash: hash, subs: make(map[*Subscription]struct{})}
		c.entries[hash] = e
	}
	if fn != nil {
		e.fn = fn
	}
	e.touched = c.now()
	return e
}

// sweepLocked drops entries with no subscribers and no running request
// whose last use is older than the gc time.
func (c *Cache) sweepLocked() {
	if c.gcTime <= 0 {
		return
	}
	now := c.now()
	for hash, e := range c.entries {
		if len(e.subs) == 0 && e.running == 0 && now.Sub(e.touched) >= c.gcTime {
			delete(c.entries, hash)
			c.log.Debug().Str("key", hash).Msg("drop unused entry")
		}
	}
}

func (c *Cache) freshLocked(e *entry) bool {
	return e.status == StatusSettled && !e.invalidated && c.now().Sub(e.fetchedAt) < c.staleTime
}

func (c *Cache) stateLocked(e *entry) State {
	status := e.status
	if e.current {
		status = StatusFetching
	}
	return State{
		Key:       e.key,
		Data:      e.data,
		Err:       e.err,
		Status:    status,
		FetchedAt: e.fetchedAt,
		InFlight:  e.running > 0,
		Stale:     !c.freshLocked(e),
	}
}

// start launches the request for hash, or joins the one of the entry's
// current epoch that is already running. The request runs on a context
// detached from ctx.
func (c *Cache) start(ctx context.Context, hash string) <-chan singleflight.Result {
	c.mu.Lock()
	gen := c.gen
	e, ok := c.entries[hash]
	var (
		fn    Fetcher
		epoch uint64
	)
	if ok {
		fn, epoch = e.fn, e.epoch
	}
	c.mu.Unlock()

	if fn == nil {
		ch := make(chan singleflight.Result, 1)
		ch <- singleflight.Result{Err: fmt.Errorf("query: no fetcher for %s", hash)}
		return ch
	}

	detached := context.WithoutCancel(ctx)
	flight := fmt.Sprintf("%d/%d/%s", gen, epoch, hash)
	return c.group.DoChan(flight, func() (any, error) {
		if !c.begin(gen, epoch, hash) {
			return fn(detached)
		}
		data, err := fn(detached)
		return c.settle(gen, epoch, hash, data, err)
	})
}

// begin registers a request with the entry. It reports false when the
// entry is gone, in which case the result is not stored.
func (c *Cache) begin(gen, epoch uint64, hash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[hash]
	if !ok || c.gen != gen {
		return false
	}
	e.running++
	if epoch == e.epoch {
		e.current = true
	}
	c.notifyLocked(e)
	return true
}

// settle stores the outcome and returns what callers should see: the new
// data on success, the previous data and the error on failure. Results of
// a superseded epoch are handed to their callers but not stored.
func (c *Cache) settle(gen, epoch uint64, hash string, data any, err error) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[hash]
	if !ok || c.gen != gen {
		return data, err
	}

	if e.running > 0 {
		e.running--
	}
	e.touched = c.now()
	if epoch != e.epoch {
		c.log.Debug().Str("key", hash).Msg("discard superseded result")
		c.notifyLocked(e)
		return data, err
	}

	e.current = false
	if err != nil {
		e.err = err
		e.status = StatusErrored
		c.log.Debug().Err(err).Str("key", hash).Msg("fetch failed")
		c.notifyLocked(e)
		return e.data, err
	}

	e.data = data
	e.err = nil
	e.status = StatusSettled
	e.fetchedAt = c.now()
	e.invalidated = false
	c.notifyLocked(e)
	return data, nil
}

func (c *Cache) wait(ctx context.Context, ch <-chan singleflight.Result) (any, error) {
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) notifyLocked(e *entry) {
	if len(e.subs) == 0 {
		return
	}
	st := c.stateLocked(e)
	for s := range e.subs {
		s.push(st)
	}
}

func (c *Cache) unsubscribe(s *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[s.hash]
	if !ok {
		return
	}
	if _, ok := e.subs[s]; !ok {
		return
	}
	delete(e.subs, s)
	e.touched = c.now()
	c.rescheduleLocked(e)
}

// rescheduleLocked runs the entry's refresh ticker at the shortest interval
// any open subscription asks for, or stops it when none does.
func (c *Cache) rescheduleLocked(e *entry) {
	var interval time.Duration
	for s := range e.subs {
		if s.interval > 0 && (interval == 0 || s.interval < interval) {
			interval = s.interval
		}
	}
	if interval == e.interval && (interval == 0) == (e.stopTicker == nil) {
		return
	}

	if e.stopTicker != nil {
		close(e.stopTicker)
		e.stopTicker = nil
	}
	e.interval = interval
	if interval == 0 {
		return
	}

	stop := make(chan struct{})
	e.stopTicker = stop
	go c.tick(e.hash, interval, stop)
}

func (c *Cache) tick(hash string, interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			c.start(context.Background(), hash)
		}
	}
}
