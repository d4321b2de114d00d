// SPDX-License-Identifier: MPL-2.0

// Package registry models which artifacts provide a named code package at
// each of its versions, and encodes that model as a properties record.
package registry
