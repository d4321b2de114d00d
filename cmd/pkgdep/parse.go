// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/pkgdep/pkgdep/internal/issue"
	"github.com/pkgdep/pkgdep/pkg/exportdecl"
	"github.com/pkgdep/pkgdep/pkg/registry"

	"github.com/spf13/cobra"
)

type parseFlags struct {
	sourceRoot string
	artifact   string
	manifest   string
	imports    bool
}

func newParseCommand(app *App) *cobra.Command {
	var flags parseFlags
	cmd := &cobra.Command{
		Use:   "parse [declaration]",
		Short: "Show the packages an export declaration stands for",
		Long: `Show the packages an export declaration stands for, without touching
the repository.

The declaration is given as an argument, or read from the Export-Package
header of a manifest (Import-Package with --imports). Wildcards are
expanded against --source-root.`,
		Example: `  pkgdep parse 'com.example.*;version="1.5", !com.example.impl' --source-root src/main/java --artifact com.example:bundle:1.0
  pkgdep parse --manifest META-INF/MANIFEST.MF --imports --artifact com.example:bundle:1.0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(app, args, flags)
		},
	}
	cmd.Flags().StringVar(&flags.sourceRoot, "source-root", ".", "directory wildcards are expanded against")
	cmd.Flags().StringVar(&flags.artifact, "artifact", "", "default artifact as groupId:artifactId:version (required)")
	cmd.Flags().StringVar(&flags.manifest, "manifest", "", "read the declaration from this manifest file")
	cmd.Flags().BoolVar(&flags.imports, "imports", false, "read Import-Package instead of Export-Package")
	_ = cmd.MarkFlagRequired("artifact")
	return cmd
}

func runParse(app *App, args []string, flags parseFlags) error {
	def, err := registry.ParseArtifact(flags.artifact)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("parse default artifact").
			WithResource(flags.artifact).
			WithSuggestion("Use groupId:artifactId:version, e.g. com.example:bundle:1.0").
			Wrap(err).
			BuildError()
	}

	parser := exportdecl.NewParser(exportdecl.WithFs(app.Fs))
	var packages []*registry.Package
	switch {
	case len(args) == 1 && flags.manifest != "":
		return errors.New("give either a declaration or --manifest, not both")
	case len(args) == 1:
		packages, err = parser.Parse(args[0], flags.sourceRoot, def)
	case flags.manifest != "" && flags.imports:
		packages, err = parser.ParseManifestImports(flags.manifest, flags.sourceRoot, def)
	case flags.manifest != "":
		packages, err = parser.ParseManifestExports(flags.manifest, flags.sourceRoot, def)
	default:
		return errors.New("a declaration or --manifest is required")
	}

	printPackages(app.stdout, packages)
	if err != nil {
		return &ExitError{
			Code: ExitPartial,
			Err: issue.NewErrorContext().
				WithOperation("parse every declaration").
				WithIssue(issue.InvalidDeclarationId).
				Wrap(err).
				BuildError(),
		}
	}
	return nil
}

func printPackages(w io.Writer, packages []*registry.Package) {
	for _, pkg := range packages {
		fmt.Fprintln(w, packageStyle.Render(pkg.Name()))
		for _, v := range pkg.Versions() {
			fmt.Fprintln(w, versionStyle.Render(v.String()))
			for _, a := range pkg.Resolve(v) {
				fmt.Fprintln(w, artifactStyle.Render(a.String()))
			}
		}
	}
}
