// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package requestcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
)

// ErrTimeout marks an attempt that was abandoned because it did not settle
// within the per-attempt timeout. It is retried like any other transient
// failure but stays distinguishable with errors.Is.
var ErrTimeout = errors.New("requestcache: fetch timed out")

// fetchWithRetry runs the fetch up to o.Retries times, sleeping an
// exponentially growing delay between attempts. The last error is
// propagated untouched beyond wrapping; nothing is swallowed.
func (c *Coordinator) fetchWithRetry(ctx context.Context, key string, fetch FetchFunc, o Options) (any, error) {
	var lastErr error

	for attempt := 1; attempt <= o.Retries; attempt++ {
		val, err := runAttempt(ctx, fetch, o.Timeout)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if attempt < o.Retries {
			delay := backoffDelay(c.backoffBase, c.backoffCap, attempt)
			log.Debugf("retrying %s (attempt %d/%d) in %s: %v", key, attempt, o.Retries, delay, err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, lastErr
}

// runAttempt races a single fetch invocation against the timeout. The
// timeout cancels the wait, not the fetch: an abandoned attempt keeps
// running and its late result is discarded into the buffered channel. The
// fetch does receive ctx, so callers can layer real cancellation on top.
func runAttempt(ctx context.Context, fetch FetchFunc, timeout time.Duration) (any, error) {
	type result struct {
		val any
		err error
	}

	// Buffered so the abandoned goroutine can settle and exit.
	ch := make(chan result, 1)
	go func() {
		val, err := fetch(ctx)
		ch <- result{val: val, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// backoffDelay is base * 2^(attempt-1), capped.
func backoffDelay(base, cap time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= cap {
			return cap
		}
	}
	if delay > cap {
		return cap
	}
	return delay
}
