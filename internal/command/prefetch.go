// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/registry"
)

// PrefetchCommandBuilder constructs the "prefetch" command, which warms the
// hot menu keys (category list plus every category's items) before service.
func PrefetchCommandBuilder(reg *registry.Registry) *cli.Command {
	return &cli.Command{
		Name:   "prefetch",
		Usage:  "warm the menu cache",
		Action: prefetchAction(reg),
	}
}

func prefetchAction(reg *registry.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := reg.Menu.Warm(ctx); err != nil {
			return fmt.Errorf("warmup failed: %w", err)
		}

		stats := reg.Coordinator.Stats()
		fmt.Printf("cache warmed: %d entries\n", stats.TotalEntries)
		return nil
	}
}
