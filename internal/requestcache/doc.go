// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

// Package requestcache coordinates reads against the POS backend. It keeps a
// TTL-bounded in-memory cache of query results, guarantees that at most one
// fetch per key is in flight process-wide, retries transient failures with
// exponential backoff, and lets writers invalidate affected entries and
// notify subscribers when fresh values land.
//
// The coordinator is the sole owner of its state; callers interact only
// through Execute, Prefetch, Invalidate, Clear, Subscribe and the stats
// accessors. Keys are opaque strings built by the domain services (menu,
// stock); colliding keys for different queries will cross-contaminate
// results, so key construction is a caller responsibility.
package requestcache
