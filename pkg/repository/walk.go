// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"fmt"

	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/version"

	"go.uber.org/multierr"
)

// Walker receives the content of a repository as properly nested events:
// repository, then each package, then each version, then each artifact.
// Every Start call is matched by exactly one End call after all children.
type Walker interface {
	StartRepository(root string)
	EndRepository(root string)
	StartPackage(name string)
	EndPackage(name string)
	StartVersion(pkg string, v version.Number)
	EndVersion(pkg string, v version.Number)
	Artifact(pkg string, v version.Number, a registry.Artifact)
}

// Walk visits every readable package in name order, versions ascending.
// A package whose record cannot be read is logged and skipped without any
// events; the walk continues and the skipped failures are returned combined.
// Failing to list the root returns an error before any event is emitted.
func (r *Repository) Walk(w Walker) error {
	names, err := r.PackageNames()
	if err != nil {
		return err
	}

	var errs error
	w.StartRepository(r.root)
	for _, name := range names {
		pkg, err := r.ReadPackage(name)
		if err != nil {
			r.logger.Warn("skipping unreadable package record", "package", name, "err", err)
			errs = multierr.Append(errs, fmt.Errorf("walk %s: %w", name, err))
			continue
		}
		walkPackage(w, pkg)
	}
	w.EndRepository(r.root)
	return errs
}

func walkPackage(w Walker, pkg *registry.Package) {
	name := pkg.Name()
	w.StartPackage(name)
	for _, v := range pkg.Versions() {
		w.StartVersion(name, v)
		for _, a := range pkg.Resolve(v) {
			w.Artifact(name, v, a)
		}
		w.EndVersion(name, v)
	}
	w.EndPackage(name)
}

// WalkerFuncs adapts optional callbacks to the Walker interface.
// Nil callbacks are skipped.
type WalkerFuncs struct {
	OnStartRepository func(root string)
	OnEndRepository   func(root string)
	OnStartPackage    func(name string)
	OnEndPackage      func(name string)
	OnStartVersion    func(pkg string, v version.Number)
	OnEndVersion      func(pkg string, v version.Number)
	OnArtifact        func(pkg string, v version.Number, a registry.Artifact)
}

var _ Walker = WalkerFuncs{}

// StartRepository implements Walker.
func (f WalkerFuncs) StartRepository(root string) {
	if f.OnStartRepository != nil {
		f.OnStartRepository(root)
	}
}

// EndRepository implements Walker.
func (f WalkerFuncs) EndRepository(root string) {
	if f.OnEndRepository != nil {
		f.OnEndRepository(root)
	}
}

// StartPackage implements Walker.
func (f WalkerFuncs) StartPackage(name string) {
	if f.OnStartPackage != nil {
		f.OnStartPackage(name)
	}
}

// EndPackage implements Walker.
func (f WalkerFuncs) EndPackage(name string) {
	if f.OnEndPackage != nil {
		f.OnEndPackage(name)
	}
}

// StartVersion implements Walker.
func (f WalkerFuncs) StartVersion(pkg string, v version.Number) {
	if f.OnStartVersion != nil {
		f.OnStartVersion(pkg, v)
	}
}

// EndVersion implements Walker.
func (f WalkerFuncs) EndVersion(pkg string, v version.Number) {
	if f.OnEndVersion != nil {
		f.OnEndVersion(pkg, v)
	}
}

// Artifact implements Walker.
func (f WalkerFuncs) Artifact(pkg string, v version.Number, a registry.Artifact) {
	if f.OnArtifact != nil {
		f.OnArtifact(pkg, v, a)
	}
}
