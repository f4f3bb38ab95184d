// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/output"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/registry"
)

// StatsCommandBuilder constructs the "stats" command: the aggregate cache
// view plus the per-key counters, sorted by request volume.
func StatsCommandBuilder(reg *registry.Registry) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "cache statistics",
		Flags:  NewGlobalFlags("stats"),
		Action: statsAction(reg),
	}
}

func statsAction(reg *registry.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		stats := reg.Coordinator.Stats()
		fmt.Printf("entries: %d total, %d valid, %d expired; %d pending\n",
			stats.TotalEntries, stats.ValidEntries, stats.ExpiredEntries, stats.PendingRequests)

		snapshot := reg.Coordinator.MetricsSnapshot()
		rows := make([]map[string]any, 0, len(snapshot))
		for _, m := range snapshot {
			last := "never"
			if !m.LastRequestTime.IsZero() {
				last = humanize.Time(m.LastRequestTime)
			}
			rows = append(rows, map[string]any{
				"key":      m.Key,
				"requests": humanize.Comma(m.TotalRequests),
				"hits":     humanize.Comma(m.CacheHits),
				"misses":   humanize.Comma(m.CacheMisses),
				"deduped":  humanize.Comma(m.DuplicatesBlocked),
				"avg":      m.AverageResponseTime.String(),
				"last":     last,
			})
		}

		sort.Slice(rows, func(i, j int) bool {
			return rows[i]["key"].(string) < rows[j]["key"].(string)
		})

		return output.Spit(cmd, []string{"key", "requests", "hits", "misses", "deduped", "avg", "last"}, rows, nil)
	}
}
