// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/registry"
)

// InitApp builds the CLI and the registry the commands run against. The
// registry is the single place the coordinator is constructed; commands
// receive it explicitly through their builders.
func InitApp(ctx context.Context) (*cli.Command, *registry.Registry, error) {
	reg := registry.New()

	app := &cli.Command{
		Name:  "mr5",
		Usage: "MR5 POS data-access CLI",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "mr5 version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		MenuCommandBuilder(reg),
		StockCommandBuilder(reg),
		StatsCommandBuilder(reg),
		InvalidateCommandBuilder(reg),
		PrefetchCommandBuilder(reg),
		HealthCommandBuilder(reg),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, reg, nil
}
