// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

// Package output renders command results as text tables, JSON or YAML
// according to the --output flag.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"
)

// Spit writes rows to w in the format selected by the command's --output
// flag. columns fixes the column order for text output; JSON and YAML emit
// the row maps directly.
func Spit(cmd *cli.Command, columns []string, rows []map[string]any, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	switch cmd.String("output") {
	case "json":
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		fmt.Fprintln(w, string(b))
		return nil

	case "yaml":
		b, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		fmt.Fprint(w, string(b))
		return nil
	}

	return spitText(cmd, columns, rows, w)
}

func spitText(cmd *cli.Command, columns []string, rows []map[string]any, w io.Writer) error {
	var tableRows [][]string
	for _, row := range rows {
		cells := make([]string, 0, len(columns))
		for _, col := range columns {
			cells = append(cells, fmt.Sprint(row[col]))
		}
		tableRows = append(tableRows, cells)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Rows(tableRows...)

	if cmd.Bool("titles") {
		t = t.Headers(columns...).BorderHeader(false)
	}

	fmt.Fprintln(w, t)
	return nil
}
