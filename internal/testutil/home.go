// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"

	"github.com/pkgdep/pkgdep/pkg/platform"
)

// SetHomeDir points the platform's home directory variable at dir
// (USERPROFILE on Windows, HOME elsewhere) and returns a cleanup function.
// The default repository root is derived from it.
//
//	t.Cleanup(testutil.SetHomeDir(t, t.TempDir()))
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	if runtime.GOOS == platform.Windows {
		return MustSetenv(t, "USERPROFILE", dir)
	}
	return MustSetenv(t, "HOME", dir)
}
