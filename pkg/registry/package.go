// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pkgdep/pkgdep/pkg/version"
)

var (
	// ErrInvalidPackageName is returned when a package name is empty.
	ErrInvalidPackageName = errors.New("invalid package name")
	// ErrNameMismatch is the sentinel error wrapped by NameMismatchError.
	ErrNameMismatch = errors.New("package name mismatch")
)

type (
	//goplint:mutable
	//
	// Package maps the versions of one named code package to the artifacts
	// that provide them. Version keys are compared canonically and are never
	// removed; each key holds a duplicate-free artifact set.
	// A Package is not safe for concurrent mutation.
	Package struct {
		name    string
		entries map[string]*versionEntry
	}

	versionEntry struct {
		version   version.Number
		artifacts map[string]Artifact
	}

	// NameMismatchError is returned when merging packages with different names.
	// It wraps ErrNameMismatch for errors.Is() compatibility.
	NameMismatchError struct {
		Target string
		Source string
	}
)

// NewPackage creates an empty package.
func NewPackage(name string) (*Package, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidPackageName)
	}
	return &Package{name: name, entries: make(map[string]*versionEntry)}, nil
}

// Name returns the package name.
func (p *Package) Name() string { return p.name }

// Len returns the number of versions recorded.
func (p *Package) Len() int { return len(p.entries) }

// Versions returns the recorded versions in ascending order. The version kept
// for a key is the first one added, so its display form is preserved.
func (p *Package) Versions() []version.Number {
	out := make([]version.Number, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e.version)
	}
	version.Sort(out)
	return out
}

// HasVersion reports whether v is recorded, even with no artifacts.
func (p *Package) HasVersion(v version.Number) bool {
	_, ok := p.entries[v.CanonicalString()]
	return ok
}

// AddArtifact records that a provides this package at v. Adding an artifact
// already present at v is a no-op.
func (p *Package) AddArtifact(v version.Number, a Artifact) error {
	if v.IsZero() {
		return fmt.Errorf("add artifact to %s: missing version", p.name)
	}
	if a.IsZero() {
		return fmt.Errorf("add artifact to %s@%s: %w", p.name, v, ErrInvalidArtifact)
	}
	p.entry(v).add(a)
	return nil
}

// ensureVersion records v with an empty artifact set if it is not present yet.
func (p *Package) ensureVersion(v version.Number) {
	p.entry(v)
}

func (p *Package) entry(v version.Number) *versionEntry {
	key := v.CanonicalString()
	e, ok := p.entries[key]
	if !ok {
		e = &versionEntry{version: v, artifacts: make(map[string]Artifact)}
		p.entries[key] = e
	}
	return e
}

func (e *versionEntry) add(a Artifact) {
	key := a.Key()
	if _, ok := e.artifacts[key]; !ok {
		e.artifacts[key] = a
	}
}

// Resolve returns the artifacts recorded at exactly v (canonical equality).
// The result is empty when v is unknown.
func (p *Package) Resolve(v version.Number) []Artifact {
	e, ok := p.entries[v.CanonicalString()]
	if !ok {
		return []Artifact{}
	}
	return sortedArtifacts(e.artifacts)
}

// ResolveFrom returns the union of artifacts at every version after start,
// or at or after start when inclusive is set.
func (p *Package) ResolveFrom(start version.Number, inclusive bool) []Artifact {
	return p.collect(func(v version.Number) bool {
		return afterStart(v, start, inclusive)
	})
}

// ResolveRange returns the union of artifacts at every version between start
// and end, with each bound included only when its flag is set. A range whose
// start lies after its end yields nothing.
func (p *Package) ResolveRange(start version.Number, startInclusive bool, end version.Number, endInclusive bool) []Artifact {
	return p.collect(func(v version.Number) bool {
		return afterStart(v, start, startInclusive) && beforeEnd(v, end, endInclusive)
	})
}

func afterStart(v, start version.Number, inclusive bool) bool {
	c := version.Compare(v, start)
	return c > 0 || (inclusive && c == 0)
}

func beforeEnd(v, end version.Number, inclusive bool) bool {
	c := version.Compare(v, end)
	return c < 0 || (inclusive && c == 0)
}

func (p *Package) collect(match func(version.Number) bool) []Artifact {
	union := make(map[string]Artifact)
	for _, e := range p.entries {
		if !match(e.version) {
			continue
		}
		for k, a := range e.artifacts {
			if _, ok := union[k]; !ok {
				union[k] = a
			}
		}
	}
	return sortedArtifacts(union)
}

// Merge adds every version and artifact of other into p. Merging is a
// per-version set union, so it is idempotent and order-independent.
func (p *Package) Merge(other *Package) error {
	if other == nil {
		return nil
	}
	if p.name != other.name {
		return &NameMismatchError{Target: p.name, Source: other.name}
	}
	for _, key := range slices.Sorted(maps.Keys(other.entries)) {
		src := other.entries[key]
		dst := p.entry(src.version)
		for _, akey := range slices.Sorted(maps.Keys(src.artifacts)) {
			dst.add(src.artifacts[akey])
		}
	}
	return nil
}

// Clone returns an independent copy of p.
func (p *Package) Clone() *Package {
	c := &Package{name: p.name, entries: make(map[string]*versionEntry, len(p.entries))}
	for key, e := range p.entries {
		c.entries[key] = &versionEntry{version: e.version, artifacts: maps.Clone(e.artifacts)}
	}
	return c
}

// Equal reports whether both packages carry the same name, the same versions
// (canonically) and the same artifact set at each version.
func (p *Package) Equal(other *Package) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.name != other.name || len(p.entries) != len(other.entries) {
		return false
	}
	for key, e := range p.entries {
		o, ok := other.entries[key]
		if !ok || len(o.artifacts) != len(e.artifacts) {
			return false
		}
		for akey := range e.artifacts {
			if _, ok := o.artifacts[akey]; !ok {
				return false
			}
		}
	}
	return true
}

// String renders a short summary such as "com.example.api (2 versions)".
func (p *Package) String() string {
	return fmt.Sprintf("%s (%d versions)", p.name, len(p.entries))
}

func sortedArtifacts(set map[string]Artifact) []Artifact {
	out := make([]Artifact, 0, len(set))
	for _, key := range slices.Sorted(maps.Keys(set)) {
		out = append(out, set[key])
	}
	return out
}

// Error implements the error interface.
func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("cannot merge package %q into %q: names differ", e.Source, e.Target)
}

// Unwrap returns ErrNameMismatch for errors.Is() compatibility.
func (e *NameMismatchError) Unwrap() error { return ErrNameMismatch }

// joinArtifacts renders artifacts as "g:n:v, g:n:v".
func joinArtifacts(artifacts []Artifact) string {
	parts := make([]string, len(artifacts))
	for i, a := range artifacts {
		parts[i] = a.String()
	}
	return strings.Join(parts, artifactSeparator)
}
