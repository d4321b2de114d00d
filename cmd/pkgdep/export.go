// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkgdep/pkgdep/internal/config"
	"github.com/pkgdep/pkgdep/internal/export"
	"github.com/pkgdep/pkgdep/internal/issue"
	"github.com/pkgdep/pkgdep/pkg/exportdecl"

	"github.com/spf13/cobra"
)

type exportFlags struct {
	project  string
	manifest string
	plugin   string
	dryRun   bool
}

func newExportCommand(app *App) *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Record the packages a project exports",
		Long: `Record the packages a project exports in the local repository.

The project's pom.xml gives the artifact coordinates. Export-Package
declarations are read from the manifest at the top of each resource
directory and from the bundle plugin configuration; wildcards are expanded
against the source directory. Each package is merged into its record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, app, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.project, "project", "p", ".", "project directory holding pom.xml")
	cmd.Flags().StringVar(&flags.manifest, "manifest", "", "manifest file name (default from config, MANIFEST.MF)")
	cmd.Flags().StringVar(&flags.plugin, "plugin", "", "bundle plugin as groupId:artifactId (default from config)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the packages without writing the repository")
	return cmd
}

func runExport(cmd *cobra.Command, app *App, flags exportFlags) error {
	s, err := app.newSession(cmd.Context())
	if err != nil {
		return err
	}

	opts := export.Options{
		ProjectDir:   flags.project,
		ManifestName: s.cfg.Export.ManifestName,
		DryRun:       flags.dryRun,
	}
	if flags.manifest != "" {
		opts.ManifestName = flags.manifest
	}
	plugin := s.cfg.Export.BundlePlugin
	if flags.plugin != "" {
		plugin = config.BundlePlugin(flags.plugin)
	}
	if opts.PluginGroup, opts.PluginArtifact, err = plugin.Split(); err != nil {
		return err
	}

	repo, err := app.openRepository(s)
	if err != nil {
		return err
	}

	res, err := export.New(repo, export.WithFs(app.Fs), export.WithLogger(s.logger)).Export(cmd.Context(), opts)
	if res == nil {
		return projectError(err, flags.project)
	}

	printExportResult(app.stdout, res, flags.dryRun)
	if err != nil {
		return &ExitError{
			Code: exportExitCode(res, flags.dryRun),
			Err: issue.NewErrorContext().
				WithOperation("export every package").
				WithResource(flags.project).
				WithSuggestion("Run with --verbose to see each failure").
				Wrap(err).
				BuildError(),
		}
	}
	return nil
}

// exportExitCode is ExitPartial when some packages were exported (or, in a
// dry run, found) despite the errors, and ExitFailure when none were.
func exportExitCode(res *export.Result, dryRun bool) int {
	exported := len(res.Written)
	if dryRun {
		exported = len(res.Packages)
	}
	if exported == 0 {
		return ExitFailure
	}
	return ExitPartial
}

func projectError(err error, dir string) error {
	ctx := issue.NewErrorContext().
		WithOperation("read project").
		WithResource(filepath.Join(dir, exportdecl.ProjectFileName)).
		Wrap(err)
	if errors.Is(err, fs.ErrNotExist) {
		return ctx.WithIssue(issue.ProjectNotFoundId).
			WithSuggestion("Run from the project directory or pass --project").
			BuildError()
	}
	return ctx.WithIssue(issue.ProjectInvalidId).
		WithSuggestion("Check the project coordinates and version").
		BuildError()
}

func printExportResult(w io.Writer, res *export.Result, dryRun bool) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Exporting"), res.Artifact.String())
	for _, m := range res.Manifests {
		fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("manifest"), m)
	}
	for _, pkg := range res.Packages {
		versions := make([]string, 0, pkg.Len())
		for _, v := range pkg.Versions() {
			versions = append(versions, v.String())
		}
		fmt.Fprintf(w, "  %s %s\n", pkg.Name(), CmdStyle.Render(strings.Join(versions, ", ")))
	}

	switch {
	case dryRun:
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("dry run: %d package(s) not written", len(res.Packages))))
	case res.Failed > 0:
		fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("%d package(s) written, %d failed", len(res.Written), res.Failed)))
	default:
		fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("%d package(s) written", len(res.Written))))
	}
}
