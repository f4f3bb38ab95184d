// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package requestcache

import "time"

// Per-call defaults. Overridable per coordinator and again per call.
const (
	DefaultTTL     = 5 * time.Minute
	DefaultRetries = 3
	DefaultTimeout = 30 * time.Second
)

// Coordinator-level defaults.
const (
	DefaultThrottleWindow = 2 * time.Second
	DefaultSweepInterval  = 60 * time.Second
	DefaultBackoffBase    = 1 * time.Second
	DefaultBackoffCap     = 5 * time.Second
)

// Options carries the per-call knobs for Execute and Prefetch.
type Options struct {
	// TTL is how long a fetched value stays servable from cache.
	TTL time.Duration
	// Force bypasses the cache read and always dispatches a fresh fetch. It
	// still deduplicates against an existing in-flight fetch.
	Force bool
	// Retries is the total number of attempts. 1 means a single attempt.
	Retries int
	// Timeout bounds the wait for each attempt, not the attempt itself.
	Timeout time.Duration
}

// Option mutates the per-call Options.
type Option func(*Options)

func WithTTL(ttl time.Duration) Option {
	return func(o *Options) { o.TTL = ttl }
}

func WithForce() Option {
	return func(o *Options) { o.Force = true }
}

func WithRetries(n int) Option {
	return func(o *Options) { o.Retries = n }
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// CoordinatorOption configures a Coordinator at construction time.
type CoordinatorOption func(*Coordinator)

// WithDefaults replaces the coordinator's per-call defaults.
func WithDefaults(o Options) CoordinatorOption {
	return func(c *Coordinator) { c.defaults = o }
}

// WithThrottleWindow sets the recent-request throttle window. Zero disables
// throttling entirely.
func WithThrottleWindow(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.throttle = d }
}

// WithSweepInterval sets the cadence of the background expiry sweep. Zero
// disables the sweep; lazy expiry on read still applies.
func WithSweepInterval(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.sweepEvery = d }
}

// WithBackoff sets the retry backoff base delay and its upper bound.
func WithBackoff(base, cap time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.backoffBase = base
		c.backoffCap = cap
	}
}
