// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package command

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/config"
	"github.com/TheElitesSolutions/MR5-POS-sub009/internal/requestcache"
)

func init() {
	cfg, _ = config.Load("")
}

var cfg config.Type

// NewGlobalFlags builds the flags shared by the query commands. ns is the
// command name, used to let per-command config keys override globals.
func NewGlobalFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return OutputValidator(value)
			},
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.BoolFlag{
			Name:        "force",
			Usage:       "bypass the cache and fetch fresh",
			HideDefault: true,
		},
		&cli.IntFlag{
			Name:  "ttl",
			Usage: "freshness window in seconds for this query",
		},
	}
}

// callOptions maps the shared flags to per-call coordinator options.
func callOptions(cmd *cli.Command) []requestcache.Option {
	var opts []requestcache.Option
	if cmd.Bool("force") {
		opts = append(opts, requestcache.WithForce())
	}
	if ttl := cmd.Int("ttl"); ttl > 0 {
		opts = append(opts, requestcache.WithTTL(time.Duration(ttl)*time.Second))
	}
	return opts
}
