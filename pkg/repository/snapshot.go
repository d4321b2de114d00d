// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/version"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Snapshot output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTOML = "toml"
)

// ErrUnknownFormat is returned by Snapshot.Encode for unsupported formats.
var ErrUnknownFormat = errors.New("unknown snapshot format")

type (
	// Snapshot is a serializable copy of a repository's content.
	Snapshot struct {
		Root     string            `json:"root" yaml:"root" toml:"root"`
		Packages []PackageSnapshot `json:"packages" yaml:"packages" toml:"packages"`
	}

	// PackageSnapshot holds one package and its versions.
	PackageSnapshot struct {
		Name     string            `json:"name" yaml:"name" toml:"name"`
		Versions []VersionSnapshot `json:"versions" yaml:"versions" toml:"versions"`
	}

	// VersionSnapshot holds the artifacts recorded at one version.
	VersionSnapshot struct {
		Version   string   `json:"version" yaml:"version" toml:"version"`
		Artifacts []string `json:"artifacts" yaml:"artifacts" toml:"artifacts"`
		// PackageURLs is filled only when requested.
		PackageURLs []string `json:"purls,omitempty" yaml:"purls,omitempty" toml:"purls,omitempty"`
	}

	// SnapshotWalker collects a Snapshot while walking a repository.
	SnapshotWalker struct {
		// IncludePackageURLs adds a package URL for each artifact.
		IncludePackageURLs bool

		snapshot Snapshot
	}
)

var _ Walker = (*SnapshotWalker)(nil)

// Snapshot returns the collected content.
func (s *SnapshotWalker) Snapshot() Snapshot { return s.snapshot }

// StartRepository implements Walker.
func (s *SnapshotWalker) StartRepository(root string) {
	s.snapshot = Snapshot{Root: root, Packages: []PackageSnapshot{}}
}

// EndRepository implements Walker.
func (s *SnapshotWalker) EndRepository(string) {}

// StartPackage implements Walker.
func (s *SnapshotWalker) StartPackage(name string) {
	s.snapshot.Packages = append(s.snapshot.Packages, PackageSnapshot{Name: name, Versions: []VersionSnapshot{}})
}

// EndPackage implements Walker.
func (s *SnapshotWalker) EndPackage(string) {}

// StartVersion implements Walker.
func (s *SnapshotWalker) StartVersion(_ string, v version.Number) {
	pkg := &s.snapshot.Packages[len(s.snapshot.Packages)-1]
	pkg.Versions = append(pkg.Versions, VersionSnapshot{Version: v.String(), Artifacts: []string{}})
}

// EndVersion implements Walker.
func (s *SnapshotWalker) EndVersion(string, version.Number) {}

// Artifact implements Walker.
func (s *SnapshotWalker) Artifact(_ string, _ version.Number, a registry.Artifact) {
	pkg := &s.snapshot.Packages[len(s.snapshot.Packages)-1]
	ver := &pkg.Versions[len(pkg.Versions)-1]
	ver.Artifacts = append(ver.Artifacts, a.String())
	if s.IncludePackageURLs {
		ver.PackageURLs = append(ver.PackageURLs, a.PackageURL())
	}
}

// CheckFormat reports ErrUnknownFormat unless format is yaml, json or toml
// (in any case).
func CheckFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatYAML, FormatJSON, FormatTOML:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Encode writes the snapshot to w in the given format (yaml, json or toml).
func (s Snapshot) Encode(w io.Writer, format string) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode snapshot as yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode snapshot as json: %w", err)
		}
		return nil
	default:
		if err := toml.NewEncoder(w).Encode(s); err != nil {
			return fmt.Errorf("encode snapshot as toml: %w", err)
		}
		return nil
	}
}
