// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/pkgdep/pkgdep/internal/issue"
	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/repository"
	"github.com/pkgdep/pkgdep/pkg/version"

	"github.com/spf13/cobra"
)

// lowestVersion sorts before every other version number.
var lowestVersion = version.MustParse("0")

type resolveFlags struct {
	from          string
	to            string
	exclusiveFrom bool
	inclusiveTo   bool
	purl          bool
}

func newResolveCommand(app *App) *cobra.Command {
	var flags resolveFlags
	cmd := &cobra.Command{
		Use:   "resolve <package> [version]",
		Short: "Find the artifacts exporting a package",
		Long: `Find the artifacts exporting a package.

With a version, only that exact version is resolved. With --from, every
version from that one upwards is resolved (inclusive unless
--exclusive-from), bounded by --to (exclusive unless --inclusive-to).
Without either, every recorded version is resolved.`,
		Example: `  pkgdep resolve com.example.api 1.5
  pkgdep resolve com.example.api --from 1.0 --to 2.0
  pkgdep resolve com.example.api --from 1.0 --exclusive-from`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, app, args, flags)
		},
	}
	cmd.Flags().StringVar(&flags.from, "from", "", "lowest version to resolve")
	cmd.Flags().StringVar(&flags.to, "to", "", "upper version bound (requires --from)")
	cmd.Flags().BoolVar(&flags.exclusiveFrom, "exclusive-from", false, "exclude the --from version itself")
	cmd.Flags().BoolVar(&flags.inclusiveTo, "inclusive-to", false, "include the --to version itself")
	cmd.Flags().BoolVar(&flags.purl, "purl", false, "print package URLs instead of coordinates")
	return cmd
}

// resolveQuery is a parsed resolve request.
type resolveQuery struct {
	exact    version.Number
	from, to version.Number
}

func parseResolveQuery(args []string, flags resolveFlags) (resolveQuery, error) {
	var (
		q   resolveQuery
		err error
	)
	switch {
	case flags.exclusiveFrom && flags.from == "":
		return q, errors.New("--exclusive-from requires --from")
	case flags.inclusiveTo && flags.to == "":
		return q, errors.New("--inclusive-to requires --to")
	}
	if len(args) == 2 {
		if flags.from != "" || flags.to != "" {
			return q, errors.New("a version argument cannot be combined with --from or --to")
		}
		q.exact, err = version.Parse(args[1])
		return q, err
	}
	if flags.to != "" && flags.from == "" {
		return q, errors.New("--to requires --from")
	}
	if flags.from != "" {
		if q.from, err = version.Parse(flags.from); err != nil {
			return q, err
		}
	}
	if flags.to != "" {
		if q.to, err = version.Parse(flags.to); err != nil {
			return q, err
		}
	}
	return q, nil
}

func (q resolveQuery) apply(pkg *registry.Package, flags resolveFlags) []registry.Artifact {
	switch {
	case !q.exact.IsZero():
		return pkg.Resolve(q.exact)
	case !q.to.IsZero():
		return pkg.ResolveRange(q.from, !flags.exclusiveFrom, q.to, flags.inclusiveTo)
	case !q.from.IsZero():
		return pkg.ResolveFrom(q.from, !flags.exclusiveFrom)
	default:
		return pkg.ResolveFrom(lowestVersion, true)
	}
}

func runResolve(cmd *cobra.Command, app *App, args []string, flags resolveFlags) error {
	q, err := parseResolveQuery(args, flags)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("parse version range").
			WithIssue(issue.InvalidVersionId).
			Wrap(err).
			BuildError()
	}

	s, err := app.newSession(cmd.Context())
	if err != nil {
		return err
	}
	repo, err := app.openRepository(s)
	if err != nil {
		return err
	}

	name := args[0]
	pkg, err := repo.ReadPackage(name)
	if err != nil {
		ctx := issue.NewErrorContext().WithOperation("read package").WithResource(name).Wrap(err)
		if errors.Is(err, repository.ErrNotFound) {
			ctx.WithIssue(issue.PackageNotFoundId).WithSuggestion("Run 'pkgdep list' to see the recorded packages")
		}
		return ctx.BuildError()
	}

	artifacts := q.apply(pkg, flags)
	if len(artifacts) == 0 {
		fmt.Fprintln(app.stderr, WarningStyle.Render("no artifact exports "+name+" in the requested versions"))
		return nil
	}
	for _, a := range artifacts {
		if flags.purl {
			fmt.Fprintln(app.stdout, a.PackageURL())
		} else {
			fmt.Fprintln(app.stdout, a.String())
		}
	}
	return nil
}
