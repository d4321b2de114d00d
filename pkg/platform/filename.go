// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

// windowsReservedNames are device names Windows reserves whatever the extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether name would open a device on Windows.
// Only the part before the first dot counts, so "nul.example" is reserved
// while "com.example.api" is not.
func IsWindowsReservedName(name string) bool {
	stem, _, _ := strings.Cut(name, ".")
	return windowsReservedNames[strings.ToUpper(stem)]
}

// IsPortableFileName reports whether name can be used as a file name directly
// inside a directory on every supported OS: it is not empty, "." or "..",
// holds no path separator, NUL or control character, none of <>:"|?*, does
// not end with a dot or space, and is not a Windows device name.
func IsPortableFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsFunc(name, func(r rune) bool {
		return r < 0x20 || strings.ContainsRune(`/\<>:"|?*`, r)
	}) {
		return false
	}
	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, " ") {
		return false
	}
	return !IsWindowsReservedName(name)
}
