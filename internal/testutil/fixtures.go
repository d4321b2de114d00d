// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// BundleArtifact is the coordinates of the project written by WriteBundleProject.
const BundleArtifact = "com.example:example-bundle:1.0.1"

// BundlePOM is a bundle project descriptor whose plugin exports
// com.example.api at 1.5 and every com.example package except impl.
const BundlePOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>example-bundle</artifactId>
  <version>1.0.1</version>
  <packaging>bundle</packaging>
  <build>
    <plugins>
      <plugin>
        <groupId>org.apache.felix</groupId>
        <artifactId>maven-bundle-plugin</artifactId>
        <configuration>
          <instructions>
            <Export-Package>com.example.api;version="1.5", com.example.*, !com.example.impl</Export-Package>
          </instructions>
        </configuration>
      </plugin>
    </plugins>
  </build>
</project>
`

// SourcePackages are the directories created under src/main/java/com/example.
var SourcePackages = []string{"api", "impl", "model", "util"}

// WriteBundleProject writes BundlePOM and a source tree with SourcePackages
// to dir on fsys. When manifest is not empty it is written to
// src/main/resources/MANIFEST.MF.
func WriteBundleProject(t testing.TB, fsys afero.Fs, dir, manifest string) {
	t.Helper()
	MustWriteFile(t, fsys, filepath.Join(dir, "pom.xml"), BundlePOM)
	for _, pkg := range SourcePackages {
		MustMkdirAll(t, fsys, filepath.Join(dir, "src", "main", "java", "com", "example", pkg))
	}
	MustMkdirAll(t, fsys, filepath.Join(dir, "src", "main", "resources"))
	if manifest != "" {
		MustWriteFile(t, fsys, filepath.Join(dir, "src", "main", "resources", "MANIFEST.MF"), manifest)
	}
}

// MustWriteFile writes content to path on fsys, creating parent directories.
func MustWriteFile(t testing.TB, fsys afero.Fs, path, content string) {
	t.Helper()
	MustMkdirAll(t, fsys, filepath.Dir(path))
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustMkdirAll creates a directory and its parents on fsys.
func MustMkdirAll(t testing.TB, fsys afero.Fs, path string) {
	t.Helper()
	if err := fsys.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}
