// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pkgdep/pkgdep/internal/testutil"
	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/version"

	"github.com/spf13/afero"
)

const testRoot = "/repo"

func newTestRepository(t *testing.T) (*Repository, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	r, err := New(testRoot, WithFs(fsys))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return r, fsys
}

func newPackage(t *testing.T, name string, entries map[string][]string) *registry.Package {
	t.Helper()
	p, err := registry.NewPackage(name)
	if err != nil {
		t.Fatal(err)
	}
	for v, coords := range entries {
		for _, c := range coords {
			a, err := registry.ParseArtifact(c)
			if err != nil {
				t.Fatal(err)
			}
			if err := p.AddArtifact(version.MustParse(v), a); err != nil {
				t.Fatal(err)
			}
		}
	}
	return p
}

func TestNew_CreatesRoot(t *testing.T) {
	t.Parallel()

	_, fsys := newTestRepository(t)
	ok, err := afero.DirExists(fsys, testRoot)
	if err != nil || !ok {
		t.Errorf("repository root should exist, got %v, %v", ok, err)
	}
	if _, err := New(""); err == nil {
		t.Error("New(\"\") should fail")
	}
}

func TestRepository_WriteRead_RoundTrip(t *testing.T) {
	t.Parallel()

	r, fsys := newTestRepository(t)
	p := newPackage(t, "com.example.api", map[string][]string{
		"1.0.1": {"com.example:api:1.0.1", "com.example:api-all:1.0.1"},
		"1.5":   {"com.example:api:1.5"},
	})

	if err := r.WritePackage(p); err != nil {
		t.Fatalf("WritePackage() unexpected error: %v", err)
	}
	if ok, _ := afero.Exists(fsys, filepath.Join(testRoot, "com.example.api")); !ok {
		t.Fatal("record file should be named after the package")
	}

	back, err := r.ReadPackage("com.example.api")
	if err != nil {
		t.Fatalf("ReadPackage() unexpected error: %v", err)
	}
	if !back.Equal(p) {
		t.Error("ReadPackage() should return the written content")
	}
}

func TestRepository_WritePackage_Overwrites(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepository(t)
	if err := r.WritePackage(newPackage(t, "x", map[string][]string{"1": {"g:a:1"}})); err != nil {
		t.Fatal(err)
	}
	if err := r.WritePackage(newPackage(t, "x", map[string][]string{"2": {"g:a:2"}})); err != nil {
		t.Fatal(err)
	}
	back, err := r.ReadPackage("x")
	if err != nil {
		t.Fatal(err)
	}
	if back.HasVersion(version.MustParse("1")) {
		t.Error("a bare write should replace the previous record")
	}
	names, err := r.PackageNames()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"x"}) {
		t.Errorf("PackageNames() = %v, temp files should not remain", names)
	}
}

func TestRepository_Update_Merges(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepository(t)
	first := newPackage(t, "x", map[string][]string{"1": {"g:a:1"}})
	second := newPackage(t, "x", map[string][]string{"1": {"g:b:1"}, "2": {"g:a:2"}})

	if _, err := r.Update(first); err != nil {
		t.Fatalf("Update() on missing record unexpected error: %v", err)
	}
	merged, err := r.Update(second)
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if got := len(merged.Resolve(version.MustParse("1"))); got != 2 {
		t.Errorf("merged version 1 has %d artifacts, want 2", got)
	}

	// Repeating an update does not change the stored content.
	if _, err := r.Update(second); err != nil {
		t.Fatal(err)
	}
	back, err := r.ReadPackage("x")
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(merged) {
		t.Error("repeated Update() should be idempotent")
	}
}

func TestRepository_Update_CorruptRecordUntouched(t *testing.T) {
	t.Parallel()

	r, fsys := newTestRepository(t)
	path := filepath.Join(testRoot, "x")
	if err := afero.WriteFile(fsys, path, []byte("garbage = not-an-artifact\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := r.Update(newPackage(t, "x", map[string][]string{"1": {"g:a:1"}}))
	if !errors.Is(err, registry.ErrCorruptRecord) {
		t.Fatalf("Update() error = %v, want ErrCorruptRecord", err)
	}
	data, _ := afero.ReadFile(fsys, path)
	if !strings.HasPrefix(string(data), "garbage") {
		t.Error("a corrupt record must not be overwritten by Update()")
	}
}

func TestRepository_ReadPackage_NotFound(t *testing.T) {
	t.Parallel()

	r, fsys := newTestRepository(t)
	if _, err := r.ReadPackage("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadPackage(missing) error = %v, want ErrNotFound", err)
	}
	if err := fsys.MkdirAll(filepath.Join(testRoot, "adir"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadPackage("adir"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadPackage(directory) error = %v, want ErrNotFound", err)
	}
}

func TestRepository_PackageNames(t *testing.T) {
	t.Parallel()

	r, fsys := newTestRepository(t)
	for _, name := range []string{"b.pkg", "a.pkg"} {
		if err := r.WritePackage(newPackage(t, name, map[string][]string{"1": {"g:a:1"}})); err != nil {
			t.Fatal(err)
		}
	}
	if err := fsys.MkdirAll(filepath.Join(testRoot, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, filepath.Join(testRoot, tempPrefix+"c.pkg"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := r.PackageNames()
	if err != nil {
		t.Fatalf("PackageNames() unexpected error: %v", err)
	}
	if want := []string{"a.pkg", "b.pkg"}; !slices.Equal(names, want) {
		t.Errorf("PackageNames() = %v, want %v", names, want)
	}
}

func TestValidatePackageName(t *testing.T) {
	t.Parallel()

	bad := []string{"", ".", "..", "../escape", "a/b", `a\b`, ".hidden", "nul\x00", "con", "aux.impl", "a:b"}
	for _, name := range bad {
		if err := ValidatePackageName(name); !errors.Is(err, ErrInvalidPackageName) {
			t.Errorf("ValidatePackageName(%q) error = %v, want ErrInvalidPackageName", name, err)
		}
	}
	for _, name := range []string{"com.example.api", "a", "x.y_z-1"} {
		if err := ValidatePackageName(name); err != nil {
			t.Errorf("ValidatePackageName(%q) unexpected error: %v", name, err)
		}
	}

	r, _ := newTestRepository(t)
	if _, err := r.ReadPackage("../etc"); !errors.Is(err, ErrInvalidPackageName) {
		t.Errorf("ReadPackage(../etc) error = %v, want ErrInvalidPackageName", err)
	}
}

func TestRepository_WritePackage_IOError(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	if err := base.MkdirAll(testRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	r := &Repository{root: testRoot, fs: afero.NewReadOnlyFs(base)}

	err := r.WritePackage(newPackage(t, "x", map[string][]string{"1": {"g:a:1"}}))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("WritePackage() error = %v, want *IOError", err)
	}
	if ioErr.Op != "write" || !strings.HasPrefix(ioErr.Path, testRoot) {
		t.Errorf("IOError = %+v, want write op under %s", ioErr, testRoot)
	}
}

func TestRepository_Delete(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepository(t)
	if err := r.WritePackage(newPackage(t, "x", nil)); err != nil {
		t.Fatal(err)
	}
	if err := r.Delete("x"); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if err := r.Delete("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

// Not parallel: changes the home directory variable.
func TestDefaultRoot(t *testing.T) {
	home := t.TempDir()
	t.Cleanup(testutil.SetHomeDir(t, home))

	got, err := DefaultRoot()
	if err != nil {
		t.Fatalf("DefaultRoot() error = %v", err)
	}
	want := filepath.Join(home, DirName, RepositoryDirName)
	if got != want {
		t.Errorf("DefaultRoot() = %q, want %q", got, want)
	}
}

func TestRepository_WritePackage_Unencodable(t *testing.T) {
	t.Parallel()

	r, fsys := newTestRepository(t)
	base, err := registry.ParseArtifact("g:n:1.0")
	if err != nil {
		t.Fatal(err)
	}
	pkg, err := registry.NewPackage("com.example.odd")
	if err != nil {
		t.Fatal(err)
	}
	if err := pkg.AddArtifact(version.MustParse("2"), base.WithVersion(version.MustParse("1.0-a,b"))); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Update(pkg); !errors.Is(err, registry.ErrUnencodableRecord) {
		t.Fatalf("Update() error = %v, want ErrUnencodableRecord", err)
	}
	if exists, _ := afero.Exists(fsys, filepath.Join(testRoot, "com.example.odd")); exists {
		t.Error("no record should be written for a package that cannot be encoded")
	}
}
