// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/pkgdep/pkgdep/cmd/pkgdep"

func main() {
	cmd.Execute()
}
