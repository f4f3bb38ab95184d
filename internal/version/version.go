// Copyright © 2025 TheElites Solutions.
// SPDX-License-Identifier: MIT

// Package version holds the build version stamp. It is overridden at release
// time with -ldflags "-X ...version.Version=vX.Y.Z".
package version

var Version = "v0.5.0-dev"
