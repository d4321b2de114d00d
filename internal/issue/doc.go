// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for the pkgdep CLI: errors that
// carry the failed operation, the resource involved and suggestions, plus a
// catalog of documented problems rendered as terminal markdown.
package issue
