// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform file name rules and OS names.
// Package records are stored one file per package name, so names must be
// valid file names on Linux, macOS and Windows alike.
package platform
