// SPDX-License-Identifier: MPL-2.0

// Package exportdecl parses export declaration lists such as
//
//	com.example.api;version="1.5", com.example.*, !com.example.impl
//
// into registry packages, and reads those lists from bundle manifests and
// Maven project descriptors.
//
// Whitespace is removed before the list is split on ",". A leading "!" marks
// an exclusion, a trailing "*" a wildcard expanded against the immediate
// subdirectories of the source tree. Exclusions apply to the whole list after
// expansion.
package exportdecl
