// SPDX-License-Identifier: MPL-2.0

// Package repository persists package records in a directory, one file per
// package named after the package, and walks the stored content.
package repository
