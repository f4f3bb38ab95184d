// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

// Package command defines the CLI surface: menu and stock queries, cache
// statistics, invalidation and prefetch. Each command is produced by a
// builder that wires flags and closes over the registry built at startup.
package command
