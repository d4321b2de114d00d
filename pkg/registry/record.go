// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/pkgdep/pkgdep/pkg/version"

	"github.com/magiconair/properties"
)

const (
	// RecordComment is written as the first line of every package record.
	RecordComment = "# pkgdep package record, do not edit"

	artifactSeparator = ", "
)

var (
	// ErrCorruptRecord is the sentinel error wrapped by CorruptRecordError.
	ErrCorruptRecord = errors.New("corrupt package record")
	// ErrUnencodableRecord is returned by MarshalRecord for a package whose
	// record would not decode to the same package.
	ErrUnencodableRecord = errors.New("package cannot be stored as a record")
)

// CorruptRecordError is returned when a stored package record cannot be decoded.
// It wraps ErrCorruptRecord and the underlying cause.
type CorruptRecordError struct {
	Package string
	Key     string
	Cause   error
}

// Error implements the error interface.
func (e *CorruptRecordError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("corrupt record for package %q at key %q: %v", e.Package, e.Key, e.Cause)
	}
	return fmt.Sprintf("corrupt record for package %q: %v", e.Package, e.Cause)
}

// Unwrap returns ErrCorruptRecord and the underlying cause.
func (e *CorruptRecordError) Unwrap() []error {
	return []error{ErrCorruptRecord, e.Cause}
}

// recordKeyEscaper escapes the characters that end a properties key.
// magiconair/properties escapes ' ' and ':' in keys but not '=', which a
// version qualifier may contain.
var recordKeyEscaper = strings.NewReplacer(
	`\`, `\\`,
	"=", `\=`,
	":", `\:`,
	" ", `\ `,
	"\t", `\t`,
	"\f", `\f`,
	"\r", `\r`,
	"\n", `\n`,
)

var recordValueEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\t", `\t`,
	"\f", `\f`,
	"\r", `\r`,
	"\n", `\n`,
)

// MarshalRecord encodes p as a properties document, one line per version:
//
//	1.2 = org.example:widgets:1.2, org.example:widgets-extra:1.2.0
//
// Versions are written in ascending order and artifacts sorted by coordinates.
// A version without artifacts is written with an empty value. The encoded
// record is decoded again before it is returned; a package that would not
// read back identically is rejected with ErrUnencodableRecord.
func (p *Package) MarshalRecord() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(RecordComment)
	buf.WriteByte('\n')
	for _, v := range p.Versions() {
		buf.WriteString(recordKeyEscaper.Replace(v.String()))
		buf.WriteString(" = ")
		buf.WriteString(recordValueEscaper.Replace(joinArtifacts(p.Resolve(v))))
		buf.WriteByte('\n')
	}

	back, err := UnmarshalRecord(p.name, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnencodableRecord, p.name, err)
	}
	if !back.Equal(p) {
		return nil, fmt.Errorf("%w: %s does not read back unchanged", ErrUnencodableRecord, p.name)
	}
	return buf.Bytes(), nil
}

// UnmarshalRecord decodes a record produced by MarshalRecord into a package
// named name. Comment lines are ignored. Every artifact listed for a version
// is kept; an empty value yields a version with no artifacts.
func UnmarshalRecord(name string, data []byte) (*Package, error) {
	pkg, err := NewPackage(name)
	if err != nil {
		return nil, err
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(data)
	if err != nil {
		return nil, &CorruptRecordError{Package: name, Cause: err}
	}

	for _, key := range props.Keys() {
		v, err := version.Parse(key)
		if err != nil {
			return nil, &CorruptRecordError{Package: name, Key: key, Cause: err}
		}
		value, _ := props.Get(key)
		artifacts, err := splitArtifacts(value)
		if err != nil {
			return nil, &CorruptRecordError{Package: name, Key: key, Cause: err}
		}
		pkg.ensureVersion(v)
		for _, a := range artifacts {
			if err := pkg.AddArtifact(v, a); err != nil {
				return nil, &CorruptRecordError{Package: name, Key: key, Cause: err}
			}
		}
	}
	return pkg, nil
}

func splitArtifacts(value string) ([]Artifact, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var out []Artifact
	for field := range strings.SplitSeq(value, listSeparator) {
		a, err := ParseArtifact(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
