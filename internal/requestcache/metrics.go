// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package requestcache

import "time"

// keyMetrics accumulates per-key counters. Touched only under the
// coordinator mutex; reset only by Clear or process restart.
type keyMetrics struct {
	totalRequests     int64
	cacheHits         int64
	cacheMisses       int64
	duplicatesBlocked int64
	lastRequestTime   time.Time

	// Running mean over completed fetches.
	completedFetches int64
	avgResponseTime  time.Duration
}

func (m *keyMetrics) observe(elapsed time.Duration) {
	m.completedFetches++
	m.avgResponseTime += (elapsed - m.avgResponseTime) / time.Duration(m.completedFetches)
}

// KeyMetrics is the read-only snapshot of one key's counters.
type KeyMetrics struct {
	Key                 string
	TotalRequests       int64
	CacheHits           int64
	CacheMisses         int64
	DuplicatesBlocked   int64
	AverageResponseTime time.Duration
	LastRequestTime     time.Time
}

// Stats is the aggregate view of the cache, intended for health-check
// collaborators.
type Stats struct {
	TotalEntries    int
	ValidEntries    int
	ExpiredEntries  int
	PendingRequests int
}

func (c *Coordinator) metricFor(key string) *keyMetrics {
	m, ok := c.metrics[key]
	if !ok {
		m = &keyMetrics{}
		c.metrics[key] = m
	}
	return m
}

// MetricsSnapshot returns a copy of every key's counters.
func (c *Coordinator) MetricsSnapshot() map[string]KeyMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]KeyMetrics, len(c.metrics))
	for key, m := range c.metrics {
		out[key] = KeyMetrics{
			Key:                 key,
			TotalRequests:       m.totalRequests,
			CacheHits:           m.cacheHits,
			CacheMisses:         m.cacheMisses,
			DuplicatesBlocked:   m.duplicatesBlocked,
			AverageResponseTime: m.avgResponseTime,
			LastRequestTime:     m.lastRequestTime,
		}
	}
	return out
}

// Stats counts entries by validity at the moment of the call.
func (c *Coordinator) Stats() Stats {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		TotalEntries:    len(c.entries),
		PendingRequests: len(c.pending),
	}
	for _, ent := range c.entries {
		if ent.valid(now) {
			s.ValidEntries++
		} else {
			s.ExpiredEntries++
		}
	}
	return s
}
