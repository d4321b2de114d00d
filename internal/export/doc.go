// SPDX-License-Identifier: MPL-2.0

// Package export records the packages a Maven bundle project exports into a
// package repository. It combines the project descriptor, the bundle
// manifests found in resource directories and the bundle plugin instructions.
package export
