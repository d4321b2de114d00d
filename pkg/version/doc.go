// SPDX-License-Identifier: MPL-2.0

// Package version implements the four-field version number used to key the
// package repository: major, minor, increment and build, plus an optional
// qualifier ("1.2.3-SNAPSHOT").
//
// A Number remembers which fields were supplied. CanonicalString zero-fills
// minor and increment and is the basis for equality; String prints only what
// was supplied. Compare treats absent fields as zero.
package version
