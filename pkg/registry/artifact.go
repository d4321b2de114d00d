// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkgdep/pkgdep/pkg/version"

	"github.com/package-url/packageurl-go"
)

const (
	coordinateSeparator = ":"
	listSeparator       = ","
)

// ErrInvalidArtifact is the sentinel error wrapped by InvalidArtifactError.
var ErrInvalidArtifact = errors.New("invalid artifact")

type (
	// Artifact identifies a published build output by group, name and version.
	// Two artifacts are equal when group and name match and their versions have
	// the same canonical form.
	Artifact struct {
		group   string
		name    string
		version version.Number
	}

	// InvalidArtifactError is returned when artifact coordinates are malformed.
	// It wraps ErrInvalidArtifact for errors.Is() compatibility.
	InvalidArtifactError struct {
		Value  string
		Reason string
		Cause  error
	}
)

// NewArtifact creates an artifact. Group and name must be non-empty and must
// not contain ":", "," or whitespace; the version must not be the zero value
// and its qualifier must not contain ",". Artifacts are stored as a comma
// separated list, so these characters cannot be recorded.
func NewArtifact(group, name string, v version.Number) (Artifact, error) {
	coords := group + coordinateSeparator + name + coordinateSeparator + v.String()
	switch {
	case !validCoordinate(group):
		return Artifact{}, &InvalidArtifactError{Value: coords, Reason: "bad group"}
	case !validCoordinate(name):
		return Artifact{}, &InvalidArtifactError{Value: coords, Reason: "bad name"}
	case v.IsZero():
		return Artifact{}, &InvalidArtifactError{Value: coords, Reason: "missing version"}
	}
	if q, ok := v.Qualifier(); ok && strings.Contains(q, listSeparator) {
		return Artifact{}, &InvalidArtifactError{Value: coords, Reason: "version qualifier contains " + strconv.Quote(listSeparator)}
	}
	return Artifact{group: group, name: name, version: v}, nil
}

func validCoordinate(s string) bool {
	return s != "" && !strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(coordinateSeparator+listSeparator, r)
	})
}

// ParseArtifact reads "group:name:version" coordinates. Everything after the
// second ":" is the version text.
func ParseArtifact(s string) (Artifact, error) {
	parts := strings.SplitN(s, coordinateSeparator, 3)
	if len(parts) != 3 {
		return Artifact{}, &InvalidArtifactError{Value: s, Reason: "expected group:name:version"}
	}
	v, err := version.Parse(parts[2])
	if err != nil {
		return Artifact{}, &InvalidArtifactError{Value: s, Reason: "bad version", Cause: err}
	}
	return NewArtifact(parts[0], parts[1], v)
}

// Group returns the artifact group.
func (a Artifact) Group() string { return a.group }

// Name returns the artifact name.
func (a Artifact) Name() string { return a.name }

// Version returns the artifact version.
func (a Artifact) Version() version.Number { return a.version }

// IsZero reports whether a is the zero value.
func (a Artifact) IsZero() bool { return a.group == "" && a.name == "" && a.version.IsZero() }

// String renders "group:name:version" using the display form of the version.
func (a Artifact) String() string {
	return a.group + coordinateSeparator + a.name + coordinateSeparator + a.version.String()
}

// Key renders the coordinates with the canonical version. Equal artifacts
// have equal keys.
func (a Artifact) Key() string {
	return a.group + coordinateSeparator + a.name + coordinateSeparator + a.version.CanonicalString()
}

// Equal reports whether both artifacts name the same coordinates.
func (a Artifact) Equal(other Artifact) bool { return a.Key() == other.Key() }

// WithVersion returns a copy of a carrying v.
func (a Artifact) WithVersion(v version.Number) Artifact {
	a.version = v
	return a
}

// PackageURL renders the artifact as a maven package URL,
// e.g. "pkg:maven/org.example/widgets@1.2".
func (a Artifact) PackageURL() string {
	return packageurl.NewPackageURL(packageurl.TypeMaven, a.group, a.name, a.version.String(), nil, "").ToString()
}

// MarshalText implements encoding.TextMarshaler.
func (a Artifact) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Error implements the error interface.
func (e *InvalidArtifactError) Error() string {
	msg := fmt.Sprintf("invalid artifact %q: %s", e.Value, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrInvalidArtifact and the underlying cause, if any.
func (e *InvalidArtifactError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidArtifact, e.Cause}
	}
	return []error{ErrInvalidArtifact}
}
