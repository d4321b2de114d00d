// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/pkgdep/pkgdep/internal/issue"
	"github.com/pkgdep/pkgdep/pkg/repository"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <package>...",
		Short: "Remove package records from the repository",
		Long: `Remove package records from the repository.

A corrupt record cannot be updated by export; remove it and export the
providing projects again.`,
		Example: `  pkgdep remove com.example.api`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, app, args)
		},
	}
}

func runRemove(cmd *cobra.Command, app *App, names []string) error {
	s, err := app.newSession(cmd.Context())
	if err != nil {
		return err
	}
	repo, err := app.openRepository(s)
	if err != nil {
		return err
	}

	var errs []error
	for _, name := range names {
		if err := repo.Delete(name); err != nil {
			ctx := issue.NewErrorContext().WithOperation("remove package").WithResource(name).Wrap(err)
			if errors.Is(err, repository.ErrNotFound) {
				ctx.WithIssue(issue.PackageNotFoundId)
			}
			errs = append(errs, ctx.BuildError())
			continue
		}
		s.logger.Debug("removed package record", "name", name)
		fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Removed"), name)
	}

	if len(errs) == 0 {
		return nil
	}
	if len(errs) < len(names) {
		return &ExitError{Code: ExitPartial, Err: multierr.Combine(errs...)}
	}
	return multierr.Combine(errs...)
}
