// SPDX-License-Identifier: MPL-2.0

// Package config loads the pkgdep configuration with Viper, using CUE as the
// file format.
//
// The file is looked up as config.cue in ConfigDir (XDG on Linux,
// ~/Library/Application Support on macOS, %APPDATA% on Windows), then in the
// working directory, unless a path is given explicitly. It is validated
// against the embedded #Config schema before being merged over the defaults.
// PKGDEP_* environment variables override both.
package config
