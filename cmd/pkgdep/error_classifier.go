// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"io/fs"

	"github.com/pkgdep/pkgdep/internal/issue"
	"github.com/pkgdep/pkgdep/pkg/exportdecl"
	"github.com/pkgdep/pkgdep/pkg/registry"
	"github.com/pkgdep/pkgdep/pkg/repository"
	"github.com/pkgdep/pkgdep/pkg/version"
)

// classifyError maps a failure to the catalog entry explaining it, or 0.
// An issue attached to an ActionableError wins over the cause's type.
func classifyError(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		if iss := ae.Issue(); iss != nil {
			return iss.Id()
		}
	}

	var (
		ioErr   *repository.IOError
		declErr *exportdecl.DeclarationError
		verErr  *version.ParseError
	)
	switch {
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId
	case errors.Is(err, registry.ErrCorruptRecord):
		return issue.CorruptRecordId
	case errors.Is(err, repository.ErrNotFound):
		return issue.PackageNotFoundId
	case errors.As(err, &ioErr):
		return issue.RepositoryUnavailableId
	case errors.As(err, &declErr):
		return issue.InvalidDeclarationId
	case errors.As(err, &verErr):
		return issue.InvalidVersionId
	default:
		return 0
	}
}
