// SPDX-License-Identifier: MPL-2.0

package exportdecl

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/version"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

const (
	// DefaultBundlePluginGroup and DefaultBundlePluginArtifact identify the
	// build plugin whose instructions carry Export-Package declarations.
	DefaultBundlePluginGroup    = "org.apache.felix"
	DefaultBundlePluginArtifact = "maven-bundle-plugin"

	// ProjectFileName is the project descriptor file name.
	ProjectFileName = "pom.xml"

	defaultPluginGroup     = "org.apache.maven.plugins"
	defaultSourceDirectory = "src/main/java"
	defaultResourceDir     = "src/main/resources"
)

var propertyRef = regexp.MustCompile(`\$\{([^}]+)\}`)

type (
	// Project is the subset of a Maven project descriptor needed to find
	// export declarations.
	Project struct {
		XMLName    xml.Name          `xml:"project"`
		GroupID    string            `xml:"groupId"`
		ArtifactID string            `xml:"artifactId"`
		Version    string            `xml:"version"`
		Parent     *ProjectParent    `xml:"parent"`
		Properties ProjectProperties `xml:"properties"`
		Build      ProjectBuild      `xml:"build"`
	}

	// ProjectParent holds the parent coordinates used as fallbacks.
	ProjectParent struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
		Version    string `xml:"version"`
	}

	// ProjectProperties holds user-defined <properties> entries.
	ProjectProperties struct {
		Entries []XMLEntry `xml:",any"`
	}

	// ProjectBuild holds build directories and plugins.
	ProjectBuild struct {
		SourceDirectory string            `xml:"sourceDirectory"`
		Resources       []ProjectResource `xml:"resources>resource"`
		Plugins         []ProjectPlugin   `xml:"plugins>plugin"`
	}

	// ProjectResource is a resource directory declaration.
	ProjectResource struct {
		Directory string `xml:"directory"`
	}

	// ProjectPlugin is a build plugin with its configuration.
	ProjectPlugin struct {
		GroupID       string              `xml:"groupId"`
		ArtifactID    string              `xml:"artifactId"`
		Configuration PluginConfiguration `xml:"configuration"`
	}

	// PluginConfiguration holds the bundle plugin <instructions> block.
	PluginConfiguration struct {
		Instructions struct {
			Entries []XMLEntry `xml:",any"`
		} `xml:"instructions"`
	}

	// XMLEntry is an element name with its text content.
	XMLEntry struct {
		XMLName xml.Name
		Value   string `xml:",chardata"`
	}
)

// ReadProject decodes a project descriptor.
func ReadProject(r io.Reader) (*Project, error) {
	var p Project
	if err := xml.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode project descriptor: %w", err)
	}
	return &p, nil
}

// LoadProject reads the project descriptor at path from fsys.
func LoadProject(fsys afero.Fs, path string) (*Project, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read project descriptor %s: %w", path, err)
	}
	p, err := ReadProject(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Coordinates returns group, artifact and version, falling back to the parent
// for group and version, with ${...} references expanded.
func (p *Project) Coordinates() (group, artifact, ver string) {
	group, ver = p.GroupID, p.Version
	if p.Parent != nil {
		if group == "" {
			group = p.Parent.GroupID
		}
		if ver == "" {
			ver = p.Parent.Version
		}
	}
	return p.interpolate(strings.TrimSpace(group)),
		p.interpolate(strings.TrimSpace(p.ArtifactID)),
		p.interpolate(strings.TrimSpace(ver))
}

// Artifact builds the project's own artifact from its coordinates.
func (p *Project) Artifact() (registry.Artifact, error) {
	group, name, raw := p.Coordinates()
	v, err := version.Parse(raw)
	if err != nil {
		return registry.Artifact{}, fmt.Errorf("project version: %w", err)
	}
	return registry.NewArtifact(group, name, v)
}

// SourceDirectory returns the source root, resolved against baseDir.
func (p *Project) SourceDirectory(baseDir string) string {
	dir := p.interpolate(strings.TrimSpace(p.Build.SourceDirectory))
	if dir == "" {
		dir = defaultSourceDirectory
	}
	return resolveDir(baseDir, dir)
}

// ResourceDirectories returns the resource directories resolved against
// baseDir, or the default resource directory when none are declared.
func (p *Project) ResourceDirectories(baseDir string) []string {
	if len(p.Build.Resources) == 0 {
		return []string{resolveDir(baseDir, defaultResourceDir)}
	}
	dirs := make([]string, 0, len(p.Build.Resources))
	for _, r := range p.Build.Resources {
		if dir := p.interpolate(strings.TrimSpace(r.Directory)); dir != "" {
			dirs = append(dirs, resolveDir(baseDir, dir))
		}
	}
	return dirs
}

// Instructions returns every value of the named instruction in the
// configuration of the plugin identified by group and artifact.
// A plugin without a groupId belongs to org.apache.maven.plugins.
func (p *Project) Instructions(group, artifact, name string) []string {
	var out []string
	for _, plugin := range p.Build.Plugins {
		pg := strings.TrimSpace(plugin.GroupID)
		if pg == "" {
			pg = defaultPluginGroup
		}
		if pg != group || strings.TrimSpace(plugin.ArtifactID) != artifact {
			continue
		}
		for _, e := range plugin.Configuration.Instructions.Entries {
			if e.XMLName.Local == name {
				out = append(out, p.interpolate(e.Value))
			}
		}
	}
	return out
}

// interpolate expands ${project.*} and user property references. Unknown
// references are left as they are.
func (p *Project) interpolate(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return propertyRef.ReplaceAllStringFunc(s, func(ref string) string {
		key := ref[2 : len(ref)-1]
		switch key {
		case "project.groupId", "pom.groupId":
			if p.GroupID != "" {
				return p.GroupID
			}
			if p.Parent != nil {
				return p.Parent.GroupID
			}
		case "project.artifactId", "pom.artifactId":
			return p.ArtifactID
		case "project.version", "pom.version":
			if p.Version != "" {
				return p.Version
			}
			if p.Parent != nil {
				return p.Parent.Version
			}
		}
		for _, e := range p.Properties.Entries {
			if e.XMLName.Local == key {
				return strings.TrimSpace(e.Value)
			}
		}
		return ref
	})
}

func resolveDir(baseDir, dir string) string {
	dir = filepath.FromSlash(dir)
	if filepath.IsAbs(dir) || baseDir == "" {
		return dir
	}
	return filepath.Join(baseDir, dir)
}

// ParseProjectExports parses every Export-Package instruction of the bundle
// plugin identified by pluginGroup and pluginArtifact, expanding wildcards
// against the project's source directory.
func (p *Parser) ParseProjectExports(proj *Project, baseDir, pluginGroup, pluginArtifact string, def registry.Artifact) ([]*registry.Package, error) {
	sourceRoot := proj.SourceDirectory(baseDir)
	var (
		packages []*registry.Package
		errs     []error
	)
	for _, decls := range proj.Instructions(pluginGroup, pluginArtifact, HeaderExportPackage) {
		found, err := p.Parse(decls, sourceRoot, def)
		packages = append(packages, found...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return packages, multierr.Combine(errs...)
}
