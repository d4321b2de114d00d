// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/pkgdep/pkgdep/internal/issue"
	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/repository"
	"github.com/pkgdep/pkgdep/pkg/version"

	"github.com/spf13/cobra"
)

const formatTree = "tree"

type listFlags struct {
	format string
	purl   bool
}

func newListCommand(app *App) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the packages in the repository",
		Long: `List every package in the repository with its versions and the
artifacts exporting each version.

Formats: tree (default), yaml, json and toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, app, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatTree, "output format: tree, yaml, json or toml")
	cmd.Flags().BoolVar(&flags.purl, "purl", false, "show the package URL of each artifact")
	return cmd
}

func runList(cmd *cobra.Command, app *App, flags listFlags) error {
	if flags.format != formatTree {
		if err := repository.CheckFormat(flags.format); err != nil {
			return issue.NewErrorContext().
				WithOperation("print repository").
				WithSuggestion("Use --format tree, yaml, json or toml").
				Wrap(err).
				BuildError()
		}
	}

	s, err := app.newSession(cmd.Context())
	if err != nil {
		return err
	}
	repo, err := app.openRepository(s)
	if err != nil {
		return err
	}

	var walkErr error
	if flags.format == formatTree {
		if s.verbose {
			fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("Repository root:"), repo.Root())
		}
		walkErr = repo.Walk(newTreeWalker(app.stdout, flags.purl))
	} else {
		sw := &repository.SnapshotWalker{IncludePackageURLs: flags.purl}
		walkErr = repo.Walk(sw)
		if err := sw.Snapshot().Encode(app.stdout, flags.format); err != nil {
			return issue.WrapWithContext(err, "print repository", flags.format)
		}
	}

	if walkErr != nil {
		return &ExitError{
			Code: ExitPartial,
			Err: issue.NewErrorContext().
				WithOperation("read every package record").
				WithResource(repo.Root()).
				WithSuggestion("Fix or remove the records listed above").
				Wrap(walkErr).
				BuildError(),
		}
	}
	return nil
}

// newTreeWalker prints packages, versions and artifacts indented by level.
func newTreeWalker(w io.Writer, purl bool) repository.Walker {
	return repository.WalkerFuncs{
		OnStartPackage: func(name string) {
			fmt.Fprintln(w, packageStyle.Render(name))
		},
		OnStartVersion: func(_ string, v version.Number) {
			fmt.Fprintln(w, versionStyle.Render(v.String()))
		},
		OnArtifact: func(_ string, _ version.Number, a registry.Artifact) {
			line := a.String()
			if purl {
				line += " " + purlStyle.Render(a.PackageURL())
			}
			fmt.Fprintln(w, artifactStyle.Render(line))
		},
	}
}
