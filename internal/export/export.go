// SPDX-License-Identifier: MPL-2.0

package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/pkgdep/pkgdep/pkg/exportdecl"
	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/repository"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

type (
	// Options selects the project to export and how to find its declarations.
	Options struct {
		// ProjectDir is the directory holding pom.xml.
		ProjectDir string
		// ManifestName is the manifest file looked for at the top of each
		// resource directory. Defaults to MANIFEST.MF.
		ManifestName string
		// PluginGroup and PluginArtifact identify the bundle plugin.
		// Default to org.apache.felix:maven-bundle-plugin.
		PluginGroup    string
		PluginArtifact string
		// DryRun collects packages without writing the repository.
		DryRun bool
	}

	// Result describes one export run.
	Result struct {
		// Artifact is the project's own artifact.
		Artifact registry.Artifact
		// Manifests lists the manifest files that were read.
		Manifests []string
		// Packages holds the packages found, in discovery order.
		Packages []*registry.Package
		// Written holds the merged records stored in the repository.
		Written []*registry.Package
		// Failed counts packages that could not be stored.
		Failed int
	}

	// Exporter records the packages a project exports into a repository.
	Exporter struct {
		fs     afero.Fs
		repo   *repository.Repository
		parser *exportdecl.Parser
		logger *log.Logger
	}

	// Option configures an Exporter.
	Option func(*Exporter)
)

// WithFs sets the filesystem the project is read from. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(e *Exporter) { e.fs = fsys }
}

// WithLogger sets the progress logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Exporter) { e.logger = logger }
}

// New creates an Exporter writing to repo.
func New(repo *repository.Repository, opts ...Option) *Exporter {
	e := &Exporter{repo: repo}
	for _, opt := range opts {
		opt(e)
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	e.parser = exportdecl.NewParser(exportdecl.WithFs(e.fs))
	return e
}

func (o Options) withDefaults() Options {
	if o.ManifestName == "" {
		o.ManifestName = exportdecl.DefaultManifestName
	}
	if o.PluginGroup == "" {
		o.PluginGroup = exportdecl.DefaultBundlePluginGroup
	}
	if o.PluginArtifact == "" {
		o.PluginArtifact = exportdecl.DefaultBundlePluginArtifact
	}
	return o
}

// Export reads the project descriptor in opts.ProjectDir, parses the export
// declarations of every top-level manifest in its resource directories and of
// its bundle plugin configuration, then merges each package into the
// repository (read, merge, write).
//
// Failures tied to one manifest, declaration or package are logged and
// returned combined once every package has been handled; they do not stop
// the run. A missing or invalid project descriptor fails immediately.
// The context is checked between packages.
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	pomPath := filepath.Join(opts.ProjectDir, exportdecl.ProjectFileName)
	proj, err := exportdecl.LoadProject(e.fs, pomPath)
	if err != nil {
		return nil, err
	}
	def, err := proj.Artifact()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pomPath, err)
	}

	res := &Result{Artifact: def}
	sourceDir := proj.SourceDirectory(opts.ProjectDir)
	var errs error

	e.logger.Info("processing manifests", "name", opts.ManifestName)
	for _, dir := range proj.ResourceDirectories(opts.ProjectDir) {
		path := filepath.Join(dir, opts.ManifestName)
		if !e.isFile(path) {
			continue
		}
		e.logger.Info("reading manifest", "path", path)
		res.Manifests = append(res.Manifests, path)
		found, err := e.parser.ParseManifestExports(path, sourceDir, def)
		res.Packages = append(res.Packages, found...)
		errs = multierr.Append(errs, err)
	}

	e.logger.Info("processing bundle plugin", "plugin", opts.PluginGroup+":"+opts.PluginArtifact)
	found, err := e.parser.ParseProjectExports(proj, opts.ProjectDir, opts.PluginGroup, opts.PluginArtifact, def)
	res.Packages = append(res.Packages, found...)
	errs = multierr.Append(errs, err)

	for _, pkg := range res.Packages {
		if err := ctx.Err(); err != nil {
			return res, multierr.Append(errs, fmt.Errorf("export canceled: %w", err))
		}
		e.logger.Info("package", "name", pkg.Name(), "versions", versionList(pkg))
		if opts.DryRun {
			continue
		}
		merged, err := e.repo.Update(pkg)
		if err != nil {
			res.Failed++
			e.logger.Error("could not store package", "name", pkg.Name(), "err", err)
			errs = multierr.Append(errs, fmt.Errorf("store %s: %w", pkg.Name(), err))
			continue
		}
		res.Written = append(res.Written, merged)
	}

	return res, errs
}

func (e *Exporter) isFile(path string) bool {
	info, err := e.fs.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("cannot inspect manifest", "path", path, "err", err)
		}
		return false
	}
	return info.Mode().IsRegular()
}

func versionList(pkg *registry.Package) []string {
	vs := pkg.Versions()
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}
