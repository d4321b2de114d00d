// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkgdep/pkgdep/pkg/platform"
	"github.com/pkgdep/pkgdep/pkg/registry"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const (
	// DirName is the directory under the user's home that holds the default repository.
	DirName = ".pkgdep"
	// RepositoryDirName is the repository directory inside DirName.
	RepositoryDirName = "repository"

	tempPrefix = ".tmp-"
)

var (
	// ErrNotFound is returned when no record exists for a package.
	ErrNotFound = errors.New("package not found in repository")
	// ErrInvalidPackageName is returned for names that cannot be used as record file names.
	ErrInvalidPackageName = errors.New("invalid package name")
)

type (
	// Repository stores one record file per package under a root directory.
	// Writes replace a whole record, so callers adding to an existing package
	// must use Update (read, merge, write). Access from several processes is
	// not coordinated.
	Repository struct {
		root   string
		fs     afero.Fs
		logger *log.Logger
	}

	// Option configures a Repository.
	Option func(*Repository)

	// IOError reports a filesystem failure with the operation and path involved.
	IOError struct {
		Op   string
		Path string
		Err  error
	}
)

// WithFs sets the filesystem the repository reads and writes. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(r *Repository) { r.fs = fsys }
}

// WithLogger sets the logger used to report skipped records during walks.
func WithLogger(logger *log.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

// DefaultRoot returns ~/.pkgdep/repository.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DirName, RepositoryDirName), nil
}

// New opens the repository rooted at root, creating the directory if needed.
func New(root string, opts ...Option) (*Repository, error) {
	if root == "" {
		return nil, errors.New("repository root must not be empty")
	}
	r := &Repository{root: filepath.Clean(root)}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	if err := r.fs.MkdirAll(r.root, 0o755); err != nil {
		return nil, &IOError{Op: "create", Path: r.root, Err: err}
	}
	return r, nil
}

// Root returns the repository root directory.
func (r *Repository) Root() string { return r.root }

// PackageNames lists the packages that have a record, in sorted order.
// Directories and leftover temporary files are ignored.
func (r *Repository) PackageNames() ([]string, error) {
	entries, err := afero.ReadDir(r.fs, r.root)
	if err != nil {
		return nil, &IOError{Op: "list", Path: r.root, Err: err}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Mode().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// ReadPackage loads the record for name. It returns ErrNotFound when there is
// no record, a *registry.CorruptRecordError when the record cannot be decoded,
// and an *IOError for filesystem failures.
func (r *Repository) ReadPackage(name string) (*registry.Package, error) {
	if err := ValidatePackageName(name); err != nil {
		return nil, err
	}
	path := r.recordPath(name)

	info, err := r.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, path)
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return registry.UnmarshalRecord(name, data)
}

// WritePackage replaces the record for pkg with its full content.
// The record is written to a temporary file and renamed into place.
func (r *Repository) WritePackage(pkg *registry.Package) error {
	if pkg == nil {
		return errors.New("write package: nil package")
	}
	if err := ValidatePackageName(pkg.Name()); err != nil {
		return err
	}

	data, err := pkg.MarshalRecord()
	if err != nil {
		return err
	}

	path := r.recordPath(pkg.Name())
	tmpPath := filepath.Join(r.root, tempPrefix+pkg.Name())
	if err := afero.WriteFile(r.fs, tmpPath, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := r.fs.Rename(tmpPath, path); err != nil {
		_ = r.fs.Remove(tmpPath) // Best effort cleanup
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// Update merges pkg into the stored record for the same name and writes the
// result, creating the record when none exists. A corrupt stored record is
// reported and left untouched. The merged package is returned.
func (r *Repository) Update(pkg *registry.Package) (*registry.Package, error) {
	if pkg == nil {
		return nil, errors.New("update package: nil package")
	}

	merged, err := r.ReadPackage(pkg.Name())
	switch {
	case errors.Is(err, ErrNotFound):
		merged = pkg.Clone()
	case err != nil:
		return nil, err
	default:
		if err := merged.Merge(pkg); err != nil {
			return nil, err
		}
	}

	if err := r.WritePackage(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Delete removes the record for name. Deleting a missing record returns ErrNotFound.
func (r *Repository) Delete(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	path := r.recordPath(name)
	if err := r.fs.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return &IOError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

func (r *Repository) recordPath(name string) string {
	return filepath.Join(r.root, name)
}

// ValidatePackageName rejects names that do not map to a single portable file
// directly under the repository root: empty or hidden names, names with a path
// separator or a character Windows forbids, and Windows device names.
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name must not be empty", ErrInvalidPackageName)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q must not start with '.'", ErrInvalidPackageName, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidPackageName, name)
	case !platform.IsPortableFileName(name):
		return fmt.Errorf("%w: %q is not a portable file name", ErrInvalidPackageName, name)
	}
	return nil
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("repository %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *IOError) Unwrap() error { return e.Err }
