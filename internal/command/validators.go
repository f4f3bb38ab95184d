// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

package command

import "fmt"

var outputFormats = []string{"text", "json", "yaml"}

// OutputValidator rejects --output values we can't render.
func OutputValidator(value string) error {
	for _, f := range outputFormats {
		if value == f {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (valid: %v)", value, outputFormats)
}
