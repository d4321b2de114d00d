// SPDX-License-Identifier: MPL-2.0

package exportdecl

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/version"

	"github.com/spf13/afero"
)

const srcRoot = "/project/src/main/java"

// newSourceTree creates com/example/{api,model,impl,util} and a stray file.
func newSourceTree(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, dir := range []string{"api", "model", "impl", "util"} {
		if err := fsys.MkdirAll(filepath.Join(srcRoot, "com", "example", dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := afero.WriteFile(fsys, filepath.Join(srcRoot, "com", "example", "notes"), []byte("not a package"), 0o644); err != nil {
		t.Fatal(err)
	}
	return fsys
}

func defaultArtifact(t *testing.T) registry.Artifact {
	t.Helper()
	a, err := registry.ParseArtifact("com.example:example-bundle:1.0.1")
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func packageNames(pkgs []*registry.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name()
	}
	return out
}

func onlyVersion(t *testing.T, p *registry.Package) version.Number {
	t.Helper()
	vs := p.Versions()
	if len(vs) != 1 {
		t.Fatalf("package %s has %d versions, want 1", p.Name(), len(vs))
	}
	return vs[0]
}

func TestParse_SinglePackage(t *testing.T) {
	t.Parallel()

	p := NewParser(WithFs(newSourceTree(t)))
	def := defaultArtifact(t)
	pkgs, err := p.Parse("com.example.api", srcRoot, def)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Name() != "com.example.api" {
		t.Fatalf("Parse() = %v, want [com.example.api]", packageNames(pkgs))
	}
	v := onlyVersion(t, pkgs[0])
	if v.String() != "1.0.1" {
		t.Errorf("version = %s, want 1.0.1", v)
	}
	artifacts := pkgs[0].Resolve(v)
	if len(artifacts) != 1 || !artifacts[0].Equal(def) {
		t.Errorf("artifacts = %v, want [%s]", artifacts, def)
	}
}

func TestParse_VersionAttribute(t *testing.T) {
	t.Parallel()

	p := NewParser(WithFs(newSourceTree(t)))
	pkgs, err := p.Parse("com.example.api; version=1.5, com.example.model", srcRoot, defaultArtifact(t))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if got := packageNames(pkgs); !slices.Equal(got, []string{"com.example.api", "com.example.model"}) {
		t.Fatalf("Parse() = %v", got)
	}
	if v := onlyVersion(t, pkgs[0]); v.String() != "1.5" {
		t.Errorf("first package version = %s, want 1.5", v)
	}
	if v := onlyVersion(t, pkgs[1]); v.String() != "1.0.1" {
		t.Errorf("second package version = %s, want the default 1.0.1", v)
	}
}

func TestParse_DefaultVersionIsCanonical(t *testing.T) {
	t.Parallel()

	def, err := registry.ParseArtifact("g:n:2")
	if err != nil {
		t.Fatal(err)
	}
	pkgs, err := NewParser(WithFs(afero.NewMemMapFs())).Parse("a.b", "/src", def)
	if err != nil {
		t.Fatal(err)
	}
	if v := onlyVersion(t, pkgs[0]); v.String() != "2.0.0" {
		t.Errorf("default version = %q, want canonical 2.0.0", v.String())
	}
}

func TestParse_QuotedVersionAndIgnoredAttributes(t *testing.T) {
	t.Parallel()

	p := NewParser(WithFs(afero.NewMemMapFs()))
	text := "com.example.api;uses:=x;version=\"2.1\";mandatory;split=true"
	pkgs, err := p.Parse(text, "/src", defaultArtifact(t))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("Parse() = %v", packageNames(pkgs))
	}
	if v := onlyVersion(t, pkgs[0]); v.String() != "2.1" {
		t.Errorf("version = %s, want 2.1", v)
	}
}

func TestParse_WhitespaceRemoved(t *testing.T) {
	t.Parallel()

	p := NewParser(WithFs(afero.NewMemMapFs()))
	text := "  com.example.api ;\n\tversion = \"3.0\" ,\r\n com.example . model  "
	pkgs, err := p.Parse(text, "/src", defaultArtifact(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := packageNames(pkgs); !slices.Equal(got, []string{"com.example.api", "com.example.model"}) {
		t.Errorf("Parse() = %v", got)
	}
	if v := onlyVersion(t, pkgs[0]); v.String() != "3.0" {
		t.Errorf("version = %s, want 3.0", v)
	}
}

func TestParse_Wildcard(t *testing.T) {
	t.Parallel()

	p := NewParser(WithFs(newSourceTree(t)))
	pkgs, err := p.Parse("com.example.*", srcRoot, defaultArtifact(t))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"com.example.api", "com.example.impl", "com.example.model", "com.example.util"}
	if got := packageNames(pkgs); !slices.Equal(got, want) {
		t.Errorf("Parse(wildcard) = %v, want %v", got, want)
	}
}

func TestParse_Exclusions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"exclusion_before_wildcard",
			"!com.example.impl, com.example.*",
			[]string{"com.example.api", "com.example.model", "com.example.util"},
		},
		{
			"exclusion_after_wildcard",
			"com.example.*, !com.example.impl",
			[]string{"com.example.api", "com.example.model", "com.example.util"},
		},
		{
			"exclusion_with_attributes",
			"!com.example.impl;version=9, com.example.*",
			[]string{"com.example.api", "com.example.model", "com.example.util"},
		},
		{
			"wildcard_exclusion",
			"com.example.*, com.other, !com.example.*",
			[]string{"com.other"},
		},
		{
			"exclusion_of_unknown_name",
			"com.example.api, !com.example.none",
			[]string{"com.example.api"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewParser(WithFs(newSourceTree(t)))
			pkgs, err := p.Parse(tt.text, srcRoot, defaultArtifact(t))
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.text, err)
			}
			if got := packageNames(pkgs); !slices.Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParse_WildcardMissingDirectory(t *testing.T) {
	t.Parallel()

	p := NewParser(WithFs(newSourceTree(t)))
	pkgs, err := p.Parse("org.absent.*, com.example.api.*", srcRoot, defaultArtifact(t))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if len(pkgs) != 0 {
		t.Errorf("missing or empty directories should expand to nothing, got %v", packageNames(pkgs))
	}

	pkgs, err = p.Parse("com.example.notes.*", srcRoot, defaultArtifact(t))
	if err != nil || len(pkgs) != 0 {
		t.Errorf("a file is not a directory to expand, got %v, %v", packageNames(pkgs), err)
	}
}

func TestParse_EmbeddedStarIsLiteral(t *testing.T) {
	t.Parallel()

	p := NewParser(WithFs(newSourceTree(t)))
	pkgs, err := p.Parse("com.*.api", srcRoot, defaultArtifact(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := packageNames(pkgs); !slices.Equal(got, []string{"com.*.api"}) {
		t.Errorf("Parse() = %v, want the literal name", got)
	}
}

func TestParse_BadVersionContinues(t *testing.T) {
	t.Parallel()

	p := NewParser(WithFs(afero.NewMemMapFs()))
	pkgs, err := p.Parse("a.b;version=oops, c.d, e.f;version=", "/src", defaultArtifact(t))
	if !errors.Is(err, version.ErrNotANumber) {
		t.Errorf("Parse() error = %v, want a wrapped ErrNotANumber", err)
	}
	if !errors.Is(err, version.ErrBadFieldCount) {
		t.Errorf("Parse() error = %v, want a wrapped ErrBadFieldCount for the empty version", err)
	}
	var de *DeclarationError
	if !errors.As(err, &de) || de.Declaration != "a.b;version=oops" {
		t.Errorf("Parse() error = %v, want DeclarationError for a.b", err)
	}
	if got := packageNames(pkgs); !slices.Equal(got, []string{"c.d"}) {
		t.Errorf("Parse() = %v, want [c.d]", got)
	}
}

func TestParse_DuplicateNamesMerge(t *testing.T) {
	t.Parallel()

	p := NewParser(WithFs(afero.NewMemMapFs()))
	pkgs, err := p.Parse("a.b;version=1, a.b;version=2, a.b", "/src", defaultArtifact(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("Parse() = %v, want one package", packageNames(pkgs))
	}
	if got := len(pkgs[0].Versions()); got != 3 {
		t.Errorf("merged package has %d versions, want 3", got)
	}
}

func TestParse_EmptyEntriesAndZeroArtifact(t *testing.T) {
	t.Parallel()

	p := NewParser(WithFs(afero.NewMemMapFs()))
	pkgs, err := p.Parse(",a.b,,;version=1,", "/src", defaultArtifact(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := packageNames(pkgs); !slices.Equal(got, []string{"a.b"}) {
		t.Errorf("Parse() = %v, want [a.b]", got)
	}

	if _, err := p.Parse("a.b", "/src", registry.Artifact{}); !errors.Is(err, registry.ErrInvalidArtifact) {
		t.Errorf("Parse() with zero artifact error = %v, want ErrInvalidArtifact", err)
	}
}

func TestParseDeclarations(t *testing.T) {
	t.Parallel()

	decls := ParseDeclarations(`!com.example.impl;version="1.0", com.example.*`)
	if len(decls) != 2 {
		t.Fatalf("ParseDeclarations() returned %d declarations, want 2", len(decls))
	}
	first := decls[0]
	if !first.Exclude || first.Name != "com.example.impl" || first.Version != "1.0" || !first.HasVersion || first.Wildcard {
		t.Errorf("first declaration = %+v", first)
	}
	second := decls[1]
	if second.Exclude || !second.Wildcard || second.Name != "com.example." || second.HasVersion {
		t.Errorf("second declaration = %+v", second)
	}
}
