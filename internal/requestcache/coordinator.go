// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package requestcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apex/log"
)

// FetchFunc loads the value for a key from the backend. It must be
// idempotent from the coordinator's point of view: it may be invoked anew
// after a failed attempt.
type FetchFunc func(ctx context.Context) (any, error)

var ErrClosed = errors.New("requestcache: coordinator is closed")

// Coordinator sits between the domain services and the POS backend. All of
// its state lives behind one mutex; the check-then-create sequence for a key
// is a single critical section, so two near-simultaneous callers can never
// both miss the pending table and dispatch twice.
type Coordinator struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	pending map[string]*pendingFetch
	recent  map[string]*recentMark
	metrics map[string]*keyMetrics

	listeners listenerRegistry

	defaults    Options
	throttle    time.Duration
	sweepEvery  time.Duration
	backoffBase time.Duration
	backoffCap  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New constructs a Coordinator and starts its background sweep (if enabled).
func New(opts ...CoordinatorOption) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		entries: make(map[string]*cacheEntry),
		pending: make(map[string]*pendingFetch),
		recent:  make(map[string]*recentMark),
		metrics: make(map[string]*keyMetrics),
		defaults: Options{
			TTL:     DefaultTTL,
			Retries: DefaultRetries,
			Timeout: DefaultTimeout,
		},
		throttle:    DefaultThrottleWindow,
		sweepEvery:  DefaultSweepInterval,
		backoffBase: DefaultBackoffBase,
		backoffCap:  DefaultBackoffCap,
		ctx:         ctx,
		cancel:      cancel,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.sweepEvery > 0 {
		c.wg.Add(1)
		go c.sweepLoop()
	}

	return c
}

// Close stops the sweep, waits for outstanding prefetches, and rejects any
// further Execute calls. Safe to call more than once.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, mark := range c.recent {
		mark.timer.Stop()
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// claimState is the per-key outcome of the check-then-create sequence. A key
// is in exactly one state when claimed: served from cache, joined to an
// in-flight fetch, throttled, or owned by this caller.
type claimState int

const (
	claimHit claimState = iota
	claimJoin
	claimThrottled
	claimOwned
)

// claim runs steps 1-3 of the execute precedence under the mutex and, when
// the caller wins, registers the pending fetch in the same critical section.
func (c *Coordinator) claim(key string, force, recheck bool) (any, *pendingFetch, claimState, error) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, nil, 0, ErrClosed
	}

	m := c.metricFor(key)
	if !recheck {
		m.totalRequests++
		m.lastRequestTime = now
	}

	if !force {
		if ent, ok := c.entries[key]; ok {
			if ent.valid(now) {
				m.cacheHits++
				return ent.value, nil, claimHit, nil
			}
			// Expired. Drop it now rather than waiting for the sweep.
			delete(c.entries, key)
		}
	}

	if p, ok := c.pending[key]; ok {
		m.duplicatesBlocked++
		return nil, p, claimJoin, nil
	}

	if !recheck && c.throttle > 0 {
		if mark, ok := c.recent[key]; ok && now.Sub(mark.dispatchedAt) < c.throttle {
			return nil, nil, claimThrottled, nil
		}
	}

	p := newPendingFetch()
	c.pending[key] = p
	m.cacheMisses++
	c.markRecentLocked(key, now)

	return nil, p, claimOwned, nil
}

// Execute returns the value for key, fetching it at most once no matter how
// many callers ask concurrently.
//
// Precedence: a valid cache entry wins (unless forced); an in-flight fetch
// for the same key is joined, never duplicated; a recent dispatch inside the
// throttle window triggers one re-check of the first two steps; otherwise a
// fresh fetch is dispatched through the retry executor.
func (c *Coordinator) Execute(ctx context.Context, key string, fetch FetchFunc, opts ...Option) (any, error) {
	o := c.callOptions(opts)

	recheck := false
	for {
		val, p, state, err := c.claim(key, o.Force, recheck)
		if err != nil {
			return nil, err
		}

		switch state {
		case claimHit:
			log.Debugf("cache hit: %s", key)
			return val, nil

		case claimJoin:
			log.Debugf("duplicate blocked: %s", key)
			select {
			case <-p.done:
				return p.val, p.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}

		case claimThrottled:
			// A dispatch for this key just happened. Re-check the cache and
			// the pending table once; the result may have just landed, or
			// the fetch may have just registered.
			log.Debugf("throttled: %s", key)
			recheck = true
			continue
		}

		return c.dispatch(ctx, key, fetch, o, p)
	}
}

// dispatch runs the fetch for a claimed key and settles its promise. The
// cache write, metrics update and pending-table removal happen in one
// critical section, so no caller can observe a key with neither a pending
// fetch nor the completed entry mid-update.
func (c *Coordinator) dispatch(ctx context.Context, key string, fetch FetchFunc, o Options, p *pendingFetch) (any, error) {
	log.Debugf("dispatching fetch: %s", key)
	start := time.Now()

	val, err := c.fetchWithRetry(ctx, key, fetch, o)
	if err != nil {
		// Failures are never cached. Clearing the pending entry lets the
		// next caller retry from scratch.
		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()
		p.settle(nil, err)
		log.Warnf("fetch failed: %s: %v", key, err)
		return nil, err
	}

	elapsed := time.Since(start)
	now := time.Now()

	c.mu.Lock()
	c.entries[key] = &cacheEntry{
		key:      key,
		value:    val,
		storedAt: now,
		ttl:      o.TTL,
	}
	c.markRecentLocked(key, now)
	c.metricFor(key).observe(elapsed)
	delete(c.pending, key)
	c.mu.Unlock()

	p.settle(val, nil)
	c.listeners.notify(key, val)

	log.Debugf("fetch stored: %s in %s", key, elapsed)
	return val, nil
}

// Prefetch warms the cache for key without making the caller wait. It is a
// no-op when a valid entry or an in-flight fetch already exists; fetch
// errors are logged, not returned.
func (c *Coordinator) Prefetch(ctx context.Context, key string, fetch FetchFunc, opts ...Option) {
	o := c.callOptions(opts)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !o.Force {
		if ent, ok := c.entries[key]; ok && ent.valid(time.Now()) {
			c.mu.Unlock()
			return
		}
	}
	if _, ok := c.pending[key]; ok {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if _, err := c.Execute(ctx, key, fetch, opts...); err != nil {
			log.Debugf("prefetch failed: %s: %v", key, err)
		}
	}()
}

// Invalidate removes every cache entry whose key matches the pattern and
// returns the count removed. In-flight fetches for matching keys are NOT
// cancelled: one that started before the invalidation will still populate
// the cache with its result. Callers needing strict write/read ordering
// must coordinate with writers themselves.
func (c *Coordinator) Invalidate(pattern Pattern) int {
	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if pattern.Matches(key) {
			delete(c.entries, key)
			c.dropRecentLocked(key)
			removed++
		}
	}
	c.mu.Unlock()

	log.Debugf("invalidated %d entries matching %s", removed, pattern)
	return removed
}

// Clear drops the whole cache, the throttle marks and the per-key metrics.
// In-flight fetches are left to settle.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	for _, mark := range c.recent {
		mark.timer.Stop()
	}
	c.entries = make(map[string]*cacheEntry)
	c.recent = make(map[string]*recentMark)
	c.metrics = make(map[string]*keyMetrics)
	c.mu.Unlock()

	log.Debug("cache cleared")
}

// Subscribe registers fn to be called with (key, value) whenever a key
// matching the pattern receives a freshly fetched value. Cache hits do not
// notify. The returned function unsubscribes; it is idempotent.
func (c *Coordinator) Subscribe(pattern Pattern, fn ListenerFunc) func() {
	return c.listeners.subscribe(pattern, fn)
}

// markRecentLocked stamps the key's dispatch time and (re)arms the timer
// that removes the mark after double the throttle window. Caller holds mu.
func (c *Coordinator) markRecentLocked(key string, now time.Time) {
	if c.throttle <= 0 {
		return
	}

	if mark, ok := c.recent[key]; ok {
		mark.timer.Stop()
	}

	mark := &recentMark{dispatchedAt: now}
	mark.timer = time.AfterFunc(2*c.throttle, func() {
		c.mu.Lock()
		// Only remove our own mark; a newer dispatch may have replaced it.
		if cur, ok := c.recent[key]; ok && cur == mark {
			delete(c.recent, key)
		}
		c.mu.Unlock()
	})
	c.recent[key] = mark
}

func (c *Coordinator) dropRecentLocked(key string) {
	if mark, ok := c.recent[key]; ok {
		mark.timer.Stop()
		delete(c.recent, key)
	}
}

func (c *Coordinator) callOptions(opts []Option) Options {
	o := c.defaults
	for _, opt := range opts {
		opt(&o)
	}
	if o.Retries < 1 {
		o.Retries = 1
	}
	return o
}
