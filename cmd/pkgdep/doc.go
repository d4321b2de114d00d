// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the pkgdep command line interface: exporting a
// project's packages into the local repository, listing it, resolving a
// package to the artifacts that provide it, removing records, previewing
// export declarations and managing the configuration file.
package cmd
