// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/output"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/registry"
)

// StockCommandBuilder constructs the "stock" command. Reads go through the
// coordinator with a short TTL; writes go straight to the backend and
// invalidate the affected entry.
func StockCommandBuilder(reg *registry.Registry) *cli.Command {
	return &cli.Command{
		Name:  "stock",
		Usage: "stock level queries and updates",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "show an item's stock level",
				UsageText: "mr5 stock get <itemID> [options]",
				Flags:     NewGlobalFlags("stock"),
				Action:    stockGetAction(reg),
			},
			{
				Name:      "set",
				Usage:     "set an item's stock level",
				UsageText: "mr5 stock set <itemID> <quantity>",
				Flags:     NewGlobalFlags("stock"),
				Action:    stockSetAction(reg),
			},
		},
	}
}

func stockGetAction(reg *registry.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		itemID := cmd.Args().First()
		if itemID == "" {
			return fmt.Errorf("itemID is required")
		}

		level, err := reg.Stock.Level(ctx, itemID, callOptions(cmd)...)
		if err != nil {
			return err
		}

		rows := []map[string]any{{
			"item":     level.ItemID,
			"quantity": level.Quantity,
			"updated":  humanize.Time(level.UpdatedAt),
		}}
		return output.Spit(cmd, []string{"item", "quantity", "updated"}, rows, nil)
	}
}

func stockSetAction(reg *registry.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		itemID := cmd.Args().First()
		if itemID == "" {
			return fmt.Errorf("itemID is required")
		}

		quantity, err := strconv.ParseInt(cmd.Args().Get(1), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid quantity %q: %w", cmd.Args().Get(1), err)
		}

		level, err := reg.Stock.SetLevel(ctx, itemID, quantity)
		if err != nil {
			return err
		}

		fmt.Printf("stock for %s set to %d\n", level.ItemID, level.Quantity)
		return nil
	}
}
