// SPDX-License-Identifier: MPL-2.0

package exportdecl

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const testPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>example-parent</artifactId>
    <version>1.0.1</version>
  </parent>
  <artifactId>example-bundle</artifactId>
  <packaging>bundle</packaging>
  <properties>
    <api.version>1.5</api.version>
  </properties>
  <build>
    <resources>
      <resource><directory>src/main/resources</directory></resource>
      <resource><directory>src/main/osgi</directory></resource>
    </resources>
    <plugins>
      <plugin>
        <artifactId>maven-compiler-plugin</artifactId>
        <configuration>
          <instructions><Export-Package>com.ignored</Export-Package></instructions>
        </configuration>
      </plugin>
      <plugin>
        <groupId>org.apache.felix</groupId>
        <artifactId>maven-bundle-plugin</artifactId>
        <extensions>true</extensions>
        <configuration>
          <instructions>
            <Bundle-SymbolicName>${project.artifactId}</Bundle-SymbolicName>
            <Export-Package>
              com.example.api;version=${api.version},
              com.example.*,
              !com.example.impl
            </Export-Package>
          </instructions>
        </configuration>
      </plugin>
    </plugins>
  </build>
</project>
`

func TestReadProject(t *testing.T) {
	t.Parallel()

	proj, err := ReadProject(strings.NewReader(testPOM))
	if err != nil {
		t.Fatalf("ReadProject() unexpected error: %v", err)
	}

	a, err := proj.Artifact()
	if err != nil {
		t.Fatalf("Artifact() unexpected error: %v", err)
	}
	if a.String() != "com.example:example-bundle:1.0.1" {
		t.Errorf("Artifact() = %s, want parent fallback coordinates", a)
	}

	if got := proj.SourceDirectory("/project"); got != filepath.Join("/project", "src", "main", "java") {
		t.Errorf("SourceDirectory() = %q", got)
	}
	wantRes := []string{
		filepath.Join("/project", "src", "main", "resources"),
		filepath.Join("/project", "src", "main", "osgi"),
	}
	if got := proj.ResourceDirectories("/project"); !slices.Equal(got, wantRes) {
		t.Errorf("ResourceDirectories() = %v, want %v", got, wantRes)
	}

	instr := proj.Instructions(DefaultBundlePluginGroup, DefaultBundlePluginArtifact, HeaderExportPackage)
	if len(instr) != 1 || !strings.Contains(instr[0], "com.example.api;version=1.5,") {
		t.Errorf("Instructions() = %q, want the interpolated bundle plugin exports", instr)
	}
	if got := proj.Instructions(defaultPluginGroup, "maven-compiler-plugin", HeaderExportPackage); len(got) != 1 {
		t.Errorf("plugins without groupId should default to %s, got %q", defaultPluginGroup, got)
	}
}

func TestReadProject_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := ReadProject(strings.NewReader("<project><unclosed>")); err == nil {
		t.Error("ReadProject() should fail on malformed XML")
	}

	proj, err := ReadProject(strings.NewReader("<project><artifactId>x</artifactId></project>"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := proj.Artifact(); err == nil {
		t.Error("Artifact() without a version should fail")
	}
}

func TestProject_Defaults(t *testing.T) {
	t.Parallel()

	proj, err := ReadProject(strings.NewReader(`<project>
  <groupId>g</groupId><artifactId>a</artifactId><version>${missing}</version>
  <build><sourceDirectory>/abs/src</sourceDirectory></build>
</project>`))
	if err != nil {
		t.Fatal(err)
	}
	if got := proj.SourceDirectory("/project"); got != filepath.FromSlash("/abs/src") {
		t.Errorf("absolute SourceDirectory() = %q", got)
	}
	if got := proj.ResourceDirectories("/project"); len(got) != 1 || !strings.HasSuffix(got[0], filepath.Join("src", "main", "resources")) {
		t.Errorf("default ResourceDirectories() = %v", got)
	}
	if _, _, v := proj.Coordinates(); v != "${missing}" {
		t.Errorf("unknown references should be kept, got %q", v)
	}
}

func TestParser_ParseProjectExports(t *testing.T) {
	t.Parallel()

	fsys := newSourceTree(t)
	if err := afero.WriteFile(fsys, "/project/pom.xml", []byte(testPOM), 0o644); err != nil {
		t.Fatal(err)
	}
	proj, err := LoadProject(fsys, "/project/pom.xml")
	if err != nil {
		t.Fatalf("LoadProject() unexpected error: %v", err)
	}
	def, err := proj.Artifact()
	if err != nil {
		t.Fatal(err)
	}

	pkgs, err := NewParser(WithFs(fsys)).ParseProjectExports(proj, "/project", DefaultBundlePluginGroup, DefaultBundlePluginArtifact, def)
	if err != nil {
		t.Fatalf("ParseProjectExports() unexpected error: %v", err)
	}
	want := []string{"com.example.api", "com.example.model", "com.example.util"}
	if got := packageNames(pkgs); !slices.Equal(got, want) {
		t.Errorf("ParseProjectExports() = %v, want %v", got, want)
	}
}
