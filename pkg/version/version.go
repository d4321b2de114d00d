// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	// MaxFields is the number of numeric fields a version number can carry:
	// major, minor, increment and build.
	MaxFields = 4

	qualifierSeparator = "-"
	fieldSeparator     = "."
	forbiddenQualifier = " \t\r\n"
)

var (
	// ErrBadQualifier is returned when a qualifier is empty or contains whitespace.
	ErrBadQualifier = errors.New("bad version qualifier")
	// ErrBadFieldCount is returned when the numeric part has zero or more than four fields.
	ErrBadFieldCount = errors.New("bad version field count")
	// ErrNotANumber is returned when a numeric field is not a non-negative integer.
	ErrNotANumber = errors.New("version field is not a number")
	// ErrBuildWithQualifier is returned when a four-field version also carries
	// a qualifier. It matches ErrBadQualifier under errors.Is.
	ErrBuildWithQualifier = fmt.Errorf("%w: a build field cannot be combined with a qualifier", ErrBadQualifier)
)

type (
	// Number is an immutable version number made of up to four numeric fields
	// (major, minor, increment, build) and an optional textual qualifier.
	// Fields beyond the supplied count are absent and compare as zero.
	// The zero value is not a valid Number; use Parse or one of the constructors.
	Number struct {
		fields    [MaxFields]int
		count     int
		qualifier string
	}

	// ParseError describes a version string that could not be parsed.
	// It wraps one of ErrBadQualifier, ErrBadFieldCount or ErrNotANumber.
	ParseError struct {
		Value string
		Err   error
	}
)

// Parse reads a version string of the form "1", "1.2", "1.2.3", "1.2.3.4" or
// "1.2.3-qualifier". The text is split on the first "-": everything after it
// is the qualifier. Surrounding whitespace is not trimmed.
func Parse(text string) (Number, error) {
	numeric, qualifier, hasQualifier := strings.Cut(text, qualifierSeparator)
	if hasQualifier {
		if err := validateQualifier(qualifier); err != nil {
			return Number{}, &ParseError{Value: text, Err: err}
		}
	}

	if numeric == "" {
		return Number{}, &ParseError{Value: text, Err: ErrBadFieldCount}
	}

	parts := strings.Split(numeric, fieldSeparator)
	if len(parts) > MaxFields {
		return Number{}, &ParseError{Value: text, Err: ErrBadFieldCount}
	}

	if hasQualifier && len(parts) == MaxFields {
		return Number{}, &ParseError{Value: text, Err: ErrBuildWithQualifier}
	}

	n := Number{count: len(parts), qualifier: qualifier}
	for i, part := range parts {
		value, err := parseField(part)
		if err != nil {
			return Number{}, &ParseError{Value: text, Err: err}
		}
		n.fields[i] = value
	}

	return n, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(text string) Number {
	n, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return n
}

// FromFields builds a version from a major field and up to three further
// numeric fields (minor, increment, build). Negative fields are rejected.
func FromFields(major int, rest ...int) (Number, error) {
	if len(rest) > MaxFields-1 {
		return Number{}, &ParseError{Value: fmt.Sprint(append([]int{major}, rest...)), Err: ErrBadFieldCount}
	}

	n := Number{count: 1 + len(rest)}
	n.fields[0] = major
	copy(n.fields[1:], rest)
	for i := range n.count {
		if n.fields[i] < 0 {
			return Number{}, &ParseError{Value: strconv.Itoa(n.fields[i]), Err: ErrNotANumber}
		}
	}
	return n, nil
}

// FromFieldsWithQualifier builds a three-field version with a qualifier.
// A qualified version never carries a build field.
func FromFieldsWithQualifier(major, minor, increment int, qualifier string) (Number, error) {
	n, err := FromFields(major, minor, increment)
	if err != nil {
		return Number{}, err
	}
	if err := validateQualifier(qualifier); err != nil {
		return Number{}, &ParseError{Value: qualifier, Err: err}
	}
	n.qualifier = qualifier
	return n, nil
}

func validateQualifier(q string) error {
	if q == "" || strings.ContainsAny(q, forbiddenQualifier) {
		return ErrBadQualifier
	}
	return nil
}

func parseField(s string) (int, error) {
	if s == "" {
		return 0, ErrNotANumber
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrNotANumber
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrNotANumber
	}
	return v, nil
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Value, e.Err)
}

// Unwrap returns the sentinel describing the failure.
func (e *ParseError) Unwrap() error { return e.Err }

// IsZero reports whether n is the zero value (never produced by Parse).
func (n Number) IsZero() bool { return n.count == 0 }

// Major returns the major field.
func (n Number) Major() int { return n.fields[0] }

// Minor returns the minor field and whether it was supplied.
func (n Number) Minor() (int, bool) { return n.fields[1], n.count > 1 }

// Increment returns the increment field and whether it was supplied.
func (n Number) Increment() (int, bool) { return n.fields[2], n.count > 2 }

// Build returns the build field and whether it was supplied.
func (n Number) Build() (int, bool) { return n.fields[3], n.count > 3 }

// Qualifier returns the qualifier and whether one was supplied.
func (n Number) Qualifier() (string, bool) { return n.qualifier, n.qualifier != "" }

// FieldCount returns how many numeric fields were supplied.
func (n Number) FieldCount() int { return n.count }

// CanonicalString renders the version with major, minor and increment always
// present (absent ones as 0), then ".build" and "-qualifier" when supplied.
func (n Number) CanonicalString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", n.fields[0], n.fields[1], n.fields[2])
	if n.count > 3 {
		fmt.Fprintf(&sb, ".%d", n.fields[3])
	}
	if n.qualifier != "" {
		sb.WriteString(qualifierSeparator)
		sb.WriteString(n.qualifier)
	}
	return sb.String()
}

// String renders only the supplied fields, e.g. "1.2" stays "1.2".
func (n Number) String() string {
	if n.count == 0 {
		return ""
	}
	parts := make([]string, n.count)
	for i := range n.count {
		parts[i] = strconv.Itoa(n.fields[i])
	}
	s := strings.Join(parts, fieldSeparator)
	if n.qualifier != "" {
		s += qualifierSeparator + n.qualifier
	}
	return s
}

// Equal reports whether two versions have the same canonical string,
// so "1.2" equals "1.2.0".
func (n Number) Equal(other Number) bool {
	return n.CanonicalString() == other.CanonicalString()
}

// Compare orders a against b: negative when a < b, zero when equal, positive
// when a > b. Numeric fields are compared in order with absent fields as 0.
// When all are equal the qualifiers are compared as strings with an absent
// qualifier as "", so "1.0" sorts before "1.0-SNAPSHOT".
func Compare(a, b Number) int {
	for i := range MaxFields {
		if a.fields[i] != b.fields[i] {
			if a.fields[i] < b.fields[i] {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a.qualifier, b.qualifier)
}

// Compare orders n against other. See the package-level Compare.
func (n Number) Compare(other Number) int { return Compare(n, other) }

// Less reports whether n sorts before other.
func (n Number) Less(other Number) bool { return Compare(n, other) < 0 }

// Sort orders versions ascending in place.
func Sort(versions []Number) {
	slices.SortStableFunc(versions, Compare)
}

// MarshalText implements encoding.TextMarshaler using the display form.
func (n Number) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Number) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
