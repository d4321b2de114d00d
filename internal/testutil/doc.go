// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by tests: environment overrides
// and a bundle project fixture written to an afero filesystem.
package testutil
