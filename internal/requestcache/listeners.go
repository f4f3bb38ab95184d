// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package requestcache

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/apex/log"
)

// Pattern selects cache keys for invalidation and subscriptions. The
// matching rule is explicit in the constructor used, never inferred from
// the argument's runtime type: Substring matches keys containing the
// fragment, Regexp matches against a compiled expression.
type Pattern struct {
	substr string
	re     *regexp.Regexp
}

// Substring returns a Pattern matching any key that contains s.
func Substring(s string) Pattern {
	return Pattern{substr: s}
}

// Regexp returns a Pattern matching any key the expression matches.
func Regexp(re *regexp.Regexp) Pattern {
	return Pattern{re: re}
}

// Matches reports whether the key is selected by this pattern. The zero
// Pattern matches nothing.
func (p Pattern) Matches(key string) bool {
	if p.re != nil {
		return p.re.MatchString(key)
	}
	return p.substr != "" && strings.Contains(key, p.substr)
}

func (p Pattern) String() string {
	if p.re != nil {
		return fmt.Sprintf("regexp(%s)", p.re)
	}
	return fmt.Sprintf("substring(%s)", p.substr)
}

// ListenerFunc receives the key and the freshly fetched value.
type ListenerFunc func(key string, value any)

type listener struct {
	pattern Pattern
	fn      ListenerFunc
}

// listenerRegistry holds subscriptions behind its own lock so notification
// never contends with the coordinator's state mutex.
type listenerRegistry struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]listener
}

func (r *listenerRegistry) subscribe(pattern Pattern, fn ListenerFunc) func() {
	r.mu.Lock()
	if r.entries == nil {
		r.entries = make(map[int]listener)
	}
	id := r.nextID
	r.nextID++
	r.entries[id] = listener{pattern: pattern, fn: fn}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.entries, id)
		r.mu.Unlock()
	}
}

// notify invokes every matching listener with (key, value), synchronously on
// the goroutine that completed the fetch. A panicking listener is recovered
// so it cannot poison the fetch result for the callers awaiting it.
func (r *listenerRegistry) notify(key string, value any) {
	r.mu.Lock()
	var matched []ListenerFunc
	for _, l := range r.entries {
		if l.pattern.Matches(key) {
			matched = append(matched, l.fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range matched {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.Errorf("listener panicked for %s: %v", key, rec)
				}
			}()
			fn(key, value)
		}()
	}
}
