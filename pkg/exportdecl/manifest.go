// SPDX-License-Identifier: MPL-2.0

package exportdecl

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/version"

	"github.com/spf13/afero"
)

// Manifest headers read by the parser.
const (
	HeaderExportPackage = "Export-Package"
	HeaderImportPackage = "Import-Package"
	HeaderBundleVersion = "Bundle-Version"

	// DefaultManifestName is the manifest file name looked for in resource directories.
	DefaultManifestName = "MANIFEST.MF"
)

// Manifest holds the main-section headers of a bundle manifest.
type Manifest struct {
	headers map[string]string
	keys    []string
}

// ReadManifest parses "Key: value" header lines. A line starting with a single
// space continues the previous header's value. Blank lines and lines without a
// ":" separator are ignored.
func ReadManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{headers: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	current := ""
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if cont, ok := strings.CutPrefix(line, " "); ok {
			if current != "" {
				m.headers[current] += cont
			}
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok || key == "" {
			current = ""
			continue
		}
		if _, seen := m.headers[key]; !seen {
			m.keys = append(m.keys, key)
		}
		m.headers[key] = strings.TrimPrefix(value, " ")
		current = key
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return m, nil
}

// LoadManifest reads the manifest at path from fsys.
func LoadManifest(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return ReadManifest(bytes.NewReader(data))
}

// Get returns the value of a header.
func (m *Manifest) Get(key string) (string, bool) {
	v, ok := m.headers[key]
	return v, ok
}

// Keys returns the header names in file order.
func (m *Manifest) Keys() []string {
	return append([]string(nil), m.keys...)
}

// DefaultArtifact returns def, with its version replaced by the manifest's
// Bundle-Version when that header is present.
func (m *Manifest) DefaultArtifact(def registry.Artifact) (registry.Artifact, error) {
	raw, ok := m.Get(HeaderBundleVersion)
	if !ok {
		return def, nil
	}
	v, err := version.Parse(strings.TrimSpace(raw))
	if err != nil {
		return registry.Artifact{}, fmt.Errorf("manifest %s: %w", HeaderBundleVersion, err)
	}
	return def.WithVersion(v), nil
}

// ParseManifestExports parses the Export-Package header of the manifest at
// path. The manifest's Bundle-Version, if any, replaces the version of def.
func (p *Parser) ParseManifestExports(path, sourceRoot string, def registry.Artifact) ([]*registry.Package, error) {
	return p.parseManifestHeader(path, HeaderExportPackage, sourceRoot, def)
}

// ParseManifestImports parses the Import-Package header with the same rules
// as ParseManifestExports.
func (p *Parser) ParseManifestImports(path, sourceRoot string, def registry.Artifact) ([]*registry.Package, error) {
	return p.parseManifestHeader(path, HeaderImportPackage, sourceRoot, def)
}

func (p *Parser) parseManifestHeader(path, header, sourceRoot string, def registry.Artifact) ([]*registry.Package, error) {
	m, err := LoadManifest(p.fs, path)
	if err != nil {
		return nil, err
	}
	artifact, err := m.DefaultArtifact(def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	decls, ok := m.Get(header)
	if !ok {
		return nil, nil
	}
	return p.Parse(decls, sourceRoot, artifact)
}
