// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package requestcache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCoordinator keeps timers small so tests stay fast. The sweep is off
// unless a test turns it on.
func newTestCoordinator(t *testing.T, opts ...CoordinatorOption) *Coordinator {
	t.Helper()

	base := []CoordinatorOption{
		WithSweepInterval(0),
		WithBackoff(time.Millisecond, 5*time.Millisecond),
	}
	c := New(append(base, opts...)...)
	t.Cleanup(c.Close)
	return c
}

// counter returns a fetcher that counts invocations and returns value.
func counter(value any, calls *atomic.Int64) FetchFunc {
	return func(ctx context.Context) (any, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestExecute_CacheHit(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	v1, err := c.Execute(context.Background(), "menu:categories", counter("a", &calls))
	require.NoError(t, err)
	assert.Equal(t, "a", v1)

	v2, err := c.Execute(context.Background(), "menu:categories", counter("b", &calls))
	require.NoError(t, err)
	assert.Equal(t, "a", v2, "second call must be served from cache")
	assert.Equal(t, int64(1), calls.Load())

	m := c.MetricsSnapshot()["menu:categories"]
	assert.Equal(t, int64(2), m.TotalRequests)
	assert.Equal(t, int64(1), m.CacheHits)
	assert.Equal(t, int64(1), m.CacheMisses)
}

func TestExecute_Dedup(t *testing.T) {
	c := newTestCoordinator(t)

	const n = 20
	var calls atomic.Int64
	release := make(chan struct{})

	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]any, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Execute(context.Background(), "stock:item:42", fetch)
		}(i)
	}

	// Give every caller time to reach the pending-request gate, then let the
	// single fetch finish.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "exactly one fetch for n concurrent callers")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i])
	}

	m := c.MetricsSnapshot()["stock:item:42"]
	assert.Equal(t, int64(n), m.TotalRequests)
	assert.Equal(t, int64(1), m.CacheMisses)
	assert.Equal(t, int64(n-1), m.DuplicatesBlocked)
}

func TestExecute_DedupSharesError(t *testing.T) {
	c := newTestCoordinator(t)

	boom := errors.New("backend down")
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		<-release
		return nil, boom
	}

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Execute(context.Background(), "k", fetch, WithRetries(1))
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.ErrorIs(t, errs[i], boom, "all awaiters receive the identical rejection")
	}
	assert.Equal(t, 0, c.Stats().TotalEntries, "failures are never cached")
}

func TestExecute_TTLExpiry(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	_, err := c.Execute(context.Background(), "k", counter("v", &calls), WithTTL(30*time.Millisecond))
	require.NoError(t, err)

	// Inside the window: served from cache.
	_, err = c.Execute(context.Background(), "k", counter("v", &calls), WithTTL(30*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())

	time.Sleep(60 * time.Millisecond)

	// Past the window: a fresh fetch.
	_, err = c.Execute(context.Background(), "k", counter("v", &calls), WithTTL(30*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestExecute_ForceBypass(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	fetch := func(ctx context.Context) (any, error) {
		return fmt.Sprintf("v%d", calls.Add(1)), nil
	}

	v, err := c.Execute(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	v, err = c.Execute(context.Background(), "k", fetch, WithForce())
	require.NoError(t, err)
	assert.Equal(t, "v2", v, "force dispatches even with a valid entry")

	// The forced result overwrote the old entry.
	v, err = c.Execute(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	assert.Equal(t, int64(2), calls.Load())
}

func TestExecute_ForceStillDeduplicates(t *testing.T) {
	c := newTestCoordinator(t)

	var calls atomic.Int64
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Execute(context.Background(), "k", fetch, WithForce())
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
}

func TestExecute_FailureThenRetryFromScratch(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	failing := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, errors.New("transient")
	}

	_, err := c.Execute(context.Background(), "k", failing, WithRetries(1))
	require.Error(t, err)
	assert.Equal(t, 0, c.Stats().TotalEntries)

	// The pending slot was cleared, so the next call dispatches again.
	_, err = c.Execute(context.Background(), "k", failing, WithRetries(1))
	require.Error(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestExecute_ThrottledRecheckDispatches(t *testing.T) {
	c := newTestCoordinator(t, WithThrottleWindow(time.Second))
	var calls atomic.Int64

	_, err := c.Execute(context.Background(), "k", counter("v", &calls), WithTTL(10*time.Millisecond))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	// Entry expired but the dispatch mark is still young: the caller
	// re-checks once and then fetches anyway.
	v, err := c.Execute(context.Background(), "k", counter("v2", &calls), WithTTL(10*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	assert.Equal(t, int64(2), calls.Load())
}

func TestExecute_JoinedCallerHonorsContext(t *testing.T) {
	c := newTestCoordinator(t)

	release := make(chan struct{})
	defer close(release)
	fetch := func(ctx context.Context) (any, error) {
		<-release
		return "v", nil
	}

	go func() {
		_, _ = c.Execute(context.Background(), "k", fetch)
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Execute(ctx, "k", fetch)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvalidate(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	for _, key := range []string{"menu:categories", "menu:items:1", "stock:item:1"} {
		_, err := c.Execute(context.Background(), key, counter("v", &calls))
		require.NoError(t, err)
	}

	removed := c.Invalidate(Substring("menu:"))
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Stats().TotalEntries)

	// Invalidated keys miss cache regardless of remaining TTL.
	_, err := c.Execute(context.Background(), "menu:categories", counter("v", &calls))
	require.NoError(t, err)
	assert.Equal(t, int64(4), calls.Load())
}

func TestInvalidate_Regexp(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	for _, key := range []string{"menu:items:1", "menu:items:12", "menu:item:1"} {
		_, err := c.Execute(context.Background(), key, counter("v", &calls))
		require.NoError(t, err)
	}

	removed := c.Invalidate(Regexp(regexp.MustCompile(`^menu:items:\d+$`)))
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Stats().TotalEntries)
}

func TestClear(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	_, err := c.Execute(context.Background(), "k", counter("v", &calls))
	require.NoError(t, err)
	require.Equal(t, 1, c.Stats().TotalEntries)

	c.Clear()
	assert.Equal(t, 0, c.Stats().TotalEntries)
	assert.Empty(t, c.MetricsSnapshot(), "clear resets metrics too")
}

func TestSubscribe(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	type event struct {
		key   string
		value any
	}
	var mu sync.Mutex
	var events []event

	unsubscribe := c.Subscribe(Substring("stock:"), func(key string, value any) {
		mu.Lock()
		events = append(events, event{key: key, value: value})
		mu.Unlock()
	})

	_, err := c.Execute(context.Background(), "stock:item-1", counter(7, &calls))
	require.NoError(t, err)

	// Non-matching key: no notification.
	_, err = c.Execute(context.Background(), "menu:item-1", counter(8, &calls))
	require.NoError(t, err)

	// Cache hit: no notification either.
	_, err = c.Execute(context.Background(), "stock:item-1", counter(7, &calls))
	require.NoError(t, err)

	mu.Lock()
	require.Len(t, events, 1)
	assert.Equal(t, "stock:item-1", events[0].key)
	assert.Equal(t, 7, events[0].value)
	mu.Unlock()

	unsubscribe()
	_, err = c.Execute(context.Background(), "stock:item-2", counter(9, &calls))
	require.NoError(t, err)

	mu.Lock()
	assert.Len(t, events, 1, "unsubscribed listener must not fire")
	mu.Unlock()
}

func TestSubscribe_PanickingListenerDoesNotPoisonResult(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	c.Subscribe(Substring("k"), func(string, any) {
		panic("bad listener")
	})

	v, err := c.Execute(context.Background(), "k", counter("v", &calls))
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestPrefetch(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	c.Prefetch(context.Background(), "menu:categories", counter("v", &calls))

	assert.Eventually(t, func() bool {
		return c.Stats().ValidEntries == 1
	}, time.Second, 5*time.Millisecond)

	// A second prefetch against a warm key is a no-op.
	c.Prefetch(context.Background(), "menu:categories", counter("v", &calls))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
}

func TestStats(t *testing.T) {
	c := newTestCoordinator(t)
	var calls atomic.Int64

	_, err := c.Execute(context.Background(), "short", counter("v", &calls), WithTTL(10*time.Millisecond))
	require.NoError(t, err)
	_, err = c.Execute(context.Background(), "long", counter("v", &calls), WithTTL(time.Hour))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	s := c.Stats()
	assert.Equal(t, 2, s.TotalEntries)
	assert.Equal(t, 1, s.ValidEntries)
	assert.Equal(t, 1, s.ExpiredEntries)
	assert.Equal(t, 0, s.PendingRequests)
}

func TestClose(t *testing.T) {
	c := New(WithSweepInterval(0))
	c.Close()
	c.Close() // idempotent

	_, err := c.Execute(context.Background(), "k", func(ctx context.Context) (any, error) {
		return "v", nil
	})
	assert.ErrorIs(t, err, ErrClosed)
}
