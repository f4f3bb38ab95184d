// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package requestcache

import "time"

// cacheEntry is a value that came out of a fully-completed fetch. Validity
// is re-checked on every read rather than kept as a flag, because TTLs can
// differ per call.
type cacheEntry struct {
	key      string
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e *cacheEntry) valid(now time.Time) bool {
	return now.Sub(e.storedAt) <= e.ttl
}

// pendingFetch is the in-flight promise for a key. Exactly one may exist per
// key at any instant. val and err are written once, before done is closed;
// waiters read them only after <-done.
type pendingFetch struct {
	done chan struct{}
	val  any
	err  error
}

func newPendingFetch() *pendingFetch {
	return &pendingFetch{done: make(chan struct{})}
}

func (p *pendingFetch) settle(val any, err error) {
	p.val = val
	p.err = err
	close(p.done)
}

// recentMark is a soft, time-boxed throttle independent of the result cache.
// The timer self-removes the mark at roughly double the throttle window.
type recentMark struct {
	dispatchedAt time.Time
	timer        *time.Timer
}
