// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"regexp"

	"github.com/urfave/cli/v3"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/registry"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/requestcache"
)

// InvalidateCommandBuilder constructs the "invalidate" command. The
// argument is a substring by default; --regex switches to regular
// expression matching. --all clears the whole cache.
func InvalidateCommandBuilder(reg *registry.Registry) *cli.Command {
	return &cli.Command{
		Name:      "invalidate",
		Usage:     "drop cache entries matching a pattern",
		UsageText: "mr5 invalidate <pattern> [--regex] | mr5 invalidate --all",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "regex",
				Usage:       "treat the pattern as a regular expression",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "clear the entire cache",
				HideDefault: true,
			},
		},
		Action: invalidateAction(reg),
	}
}

func invalidateAction(reg *registry.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Bool("all") {
			reg.Coordinator.Clear()
			fmt.Println("cache cleared")
			return nil
		}

		spec := cmd.Args().First()
		if spec == "" {
			return fmt.Errorf("pattern is required (or use --all)")
		}

		var pattern requestcache.Pattern
		if cmd.Bool("regex") {
			re, err := regexp.Compile(spec)
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", spec, err)
			}
			pattern = requestcache.Regexp(re)
		} else {
			pattern = requestcache.Substring(spec)
		}

		removed := reg.Coordinator.Invalidate(pattern)
		fmt.Printf("invalidated %d entries\n", removed)
		return nil
	}
}
