// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package requestcache

import (
	"time"

	"github.com/apex/log"
)

// sweepLoop periodically evicts expired entries. Expiry is already enforced
// lazily on every read; the sweep only bounds memory held by entries that
// are written once and never read again.
func (c *Coordinator) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.sweepOnce(time.Now()); n > 0 {
				log.Debugf("sweep evicted %d expired entries", n)
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Coordinator) sweepOnce(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, ent := range c.entries {
		if !ent.valid(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
