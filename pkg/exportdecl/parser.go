// SPDX-License-Identifier: MPL-2.0

package exportdecl

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/version"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

const (
	declSeparator    = ","
	attrSeparator    = ";"
	attrAssign       = "="
	excludeMarker    = "!"
	wildcardMarker   = "*"
	versionAttribute = "version"
)

type (
	// Declaration is one entry of an export declaration list after
	// whitespace removal, e.g. "!com.example.impl" or "com.example.*;version=2".
	Declaration struct {
		// Raw is the declaration text without whitespace.
		Raw string
		// Name is the package name, without the exclusion and wildcard markers.
		// For a wildcard it is the prefix that expansions are appended to.
		Name string
		// Exclude is set for declarations starting with "!".
		Exclude bool
		// Wildcard is set when the package name ends with "*".
		Wildcard bool
		// Version is the unquoted value of the version attribute.
		Version string
		// HasVersion is set when a version attribute was given, even an empty one.
		HasVersion bool
	}

	// DeclarationError reports a declaration whose version could not be used.
	DeclarationError struct {
		Declaration string
		Err         error
	}

	// Parser turns export declaration lists into packages. Wildcards are
	// expanded against the directories of a source tree.
	Parser struct {
		fs afero.Fs
	}

	// Option configures a Parser.
	Option func(*Parser)
)

// WithFs sets the filesystem used for wildcard expansion. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(p *Parser) { p.fs = fsys }
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	return p
}

// Fs returns the filesystem the parser reads.
func (p *Parser) Fs() afero.Fs { return p.fs }

// ParseDeclarations splits an export declaration list into declarations
// without touching the filesystem. All whitespace is removed first. Empty
// entries and entries with an empty package name are dropped. Attributes
// other than "version", and attributes without "=", are ignored.
func ParseDeclarations(text string) []Declaration {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	var decls []Declaration
	for raw := range strings.SplitSeq(compact, declSeparator) {
		d, ok := parseDeclaration(raw)
		if ok {
			decls = append(decls, d)
		}
	}
	return decls
}

func parseDeclaration(raw string) (Declaration, bool) {
	d := Declaration{Raw: raw}
	body, exclude := strings.CutPrefix(raw, excludeMarker)
	d.Exclude = exclude

	name, attrs, _ := strings.Cut(body, attrSeparator)
	if prefix, ok := strings.CutSuffix(name, wildcardMarker); ok {
		d.Wildcard = true
		name = prefix
	}
	d.Name = name

	if attrs != "" {
		for attr := range strings.SplitSeq(attrs, attrSeparator) {
			key, value, ok := strings.Cut(attr, attrAssign)
			if !ok || strings.TrimSpace(key) != versionAttribute {
				continue
			}
			d.Version = unquote(strings.TrimSpace(value))
			d.HasVersion = true
		}
	}

	if d.Name == "" && !d.Wildcard {
		return Declaration{}, false
	}
	return d, true
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// Parse reads an export declaration list and returns one package per concrete
// package name, each carrying def at the declared version (or def's canonical
// version when no version attribute is given). Wildcards are expanded to the
// immediate subdirectories of sourceRoot/<prefix as path>; a missing directory
// expands to nothing. Exclusions are applied after every declaration has been
// expanded, whatever their position in the list.
//
// A declaration whose version does not parse is reported as a
// *DeclarationError and skipped; the packages from the remaining declarations
// are still returned alongside the combined errors.
func (p *Parser) Parse(text, sourceRoot string, def registry.Artifact) ([]*registry.Package, error) {
	if def.IsZero() {
		return nil, fmt.Errorf("parse export declarations: %w: missing default artifact", registry.ErrInvalidArtifact)
	}

	var (
		errs     error
		order    []string
		byName   = make(map[string]*registry.Package)
		excluded = make(map[string]bool)
	)

	for _, d := range ParseDeclarations(text) {
		names := p.expand(d, sourceRoot)
		if d.Exclude {
			for _, name := range names {
				excluded[name] = true
			}
			continue
		}

		v, err := resolveVersion(d, def)
		if err != nil {
			errs = multierr.Append(errs, &DeclarationError{Declaration: d.Raw, Err: err})
			continue
		}

		for _, name := range names {
			pkg, ok := byName[name]
			if !ok {
				pkg, err = registry.NewPackage(name)
				if err != nil {
					errs = multierr.Append(errs, &DeclarationError{Declaration: d.Raw, Err: err})
					continue
				}
				byName[name] = pkg
				order = append(order, name)
			}
			if err := pkg.AddArtifact(v, def); err != nil {
				errs = multierr.Append(errs, &DeclarationError{Declaration: d.Raw, Err: err})
			}
		}
	}

	packages := make([]*registry.Package, 0, len(order))
	for _, name := range order {
		if !excluded[name] {
			packages = append(packages, byName[name])
		}
	}
	return packages, errs
}

func resolveVersion(d Declaration, def registry.Artifact) (version.Number, error) {
	if !d.HasVersion {
		return version.Parse(def.Version().CanonicalString())
	}
	return version.Parse(d.Version)
}

// expand returns the concrete package names a declaration stands for.
// A wildcard whose directory is missing or unreadable expands to nothing.
func (p *Parser) expand(d Declaration, sourceRoot string) []string {
	if !d.Wildcard {
		return []string{d.Name}
	}

	dir := filepath.Join(sourceRoot, filepath.FromSlash(strings.ReplaceAll(d.Name, ".", "/")))
	if isDir, err := afero.IsDir(p.fs, dir); err != nil || !isDir {
		return nil
	}
	entries, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, d.Name+e.Name())
		}
	}
	slices.Sort(names)
	return names
}

// Error implements the error interface.
func (e *DeclarationError) Error() string {
	return fmt.Sprintf("export declaration %q: %v", e.Declaration, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeclarationError) Unwrap() error { return e.Err }
