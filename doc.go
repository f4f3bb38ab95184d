// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

// mr5 is the data-access front end for the MR5 POS backend. It wires the
// CLI, delegates to internal packages, and serves as the entry point.
package main
