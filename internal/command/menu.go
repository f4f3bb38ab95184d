// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/output"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/registry"
)

// MenuCommandBuilder constructs the "menu" command with its query
// subcommands. All lookups go through the coordinator, so repeated queries
// inside the TTL are served from memory.
func MenuCommandBuilder(reg *registry.Registry) *cli.Command {
	return &cli.Command{
		Name:  "menu",
		Usage: "menu queries",
		Commands: []*cli.Command{
			{
				Name:   "categories",
				Usage:  "list menu categories",
				Flags:  NewGlobalFlags("menu"),
				Action: menuCategoriesAction(reg),
			},
			{
				Name:      "items",
				Usage:     "list items of a category",
				UsageText: "mr5 menu items <categoryID> [options]",
				Flags:     NewGlobalFlags("menu"),
				Action:    menuItemsAction(reg),
			},
			{
				Name:      "item",
				Usage:     "show a single item",
				UsageText: "mr5 menu item <itemID> [options]",
				Flags:     NewGlobalFlags("menu"),
				Action:    menuItemAction(reg),
			},
			{
				Name:      "addons",
				Usage:     "list addons of an item",
				UsageText: "mr5 menu addons <itemID> [options]",
				Flags:     NewGlobalFlags("menu"),
				Action:    menuAddonsAction(reg),
			},
		},
	}
}

func menuCategoriesAction(reg *registry.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cats, err := reg.Menu.Categories(ctx, callOptions(cmd)...)
		if err != nil {
			return err
		}

		rows := make([]map[string]any, 0, len(cats))
		for _, c := range cats {
			rows = append(rows, map[string]any{
				"id":         c.ID,
				"name":       c.Name,
				"sort_order": c.SortOrder,
			})
		}
		return output.Spit(cmd, []string{"id", "name", "sort_order"}, rows, nil)
	}
}

func menuItemsAction(reg *registry.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		categoryID := cmd.Args().First()
		if categoryID == "" {
			return fmt.Errorf("categoryID is required")
		}

		items, err := reg.Menu.Items(ctx, categoryID, callOptions(cmd)...)
		if err != nil {
			return err
		}

		rows := make([]map[string]any, 0, len(items))
		for _, i := range items {
			rows = append(rows, map[string]any{
				"id":        i.ID,
				"name":      i.Name,
				"price":     i.Price,
				"available": i.Available,
			})
		}
		return output.Spit(cmd, []string{"id", "name", "price", "available"}, rows, nil)
	}
}

func menuItemAction(reg *registry.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		itemID := cmd.Args().First()
		if itemID == "" {
			return fmt.Errorf("itemID is required")
		}

		item, err := reg.Menu.Item(ctx, itemID, callOptions(cmd)...)
		if err != nil {
			return err
		}

		rows := []map[string]any{{
			"id":        item.ID,
			"name":      item.Name,
			"category":  item.CategoryID,
			"price":     item.Price,
			"available": item.Available,
		}}
		return output.Spit(cmd, []string{"id", "name", "category", "price", "available"}, rows, nil)
	}
}

func menuAddonsAction(reg *registry.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		itemID := cmd.Args().First()
		if itemID == "" {
			return fmt.Errorf("itemID is required")
		}

		addons, err := reg.Menu.Addons(ctx, itemID, callOptions(cmd)...)
		if err != nil {
			return err
		}

		rows := make([]map[string]any, 0, len(addons))
		for _, a := range addons {
			rows = append(rows, map[string]any{
				"id":           a.ID,
				"name":         a.Name,
				"price":        a.Price,
				"max_quantity": a.MaxQuantity,
			})
		}
		return output.Spit(cmd, []string{"id", "name", "price", "max_quantity"}, rows, nil)
	}
}
