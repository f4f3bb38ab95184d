// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/registry"
)

// HealthCommandBuilder constructs the "health" command: backend
// reachability plus the coordinator's aggregate stats.
func HealthCommandBuilder(reg *registry.Registry) *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "check backend and cache health",
		Action: healthAction(reg),
	}
}

func healthAction(reg *registry.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		h := reg.HealthCheck(ctx)

		if h.BackendOK {
			fmt.Println("backend: ok")
		} else {
			fmt.Printf("backend: unreachable (%s)\n", h.BackendErr)
		}
		fmt.Printf("cache: %d entries (%d valid, %d expired), %d pending\n",
			h.Cache.TotalEntries, h.Cache.ValidEntries, h.Cache.ExpiredEntries, h.Cache.PendingRequests)

		if !h.BackendOK {
			return fmt.Errorf("backend health check failed")
		}
		return nil
	}
}
