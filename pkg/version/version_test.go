// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"slices"
	"testing"
)

func TestParse_CanonicalAndDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input     string
		canonical string
		display   string
	}{
		{"1", "1.0.0", "1"},
		{"1.2", "1.2.0", "1.2"},
		{"1.2.3", "1.2.3", "1.2.3"},
		{"1.2.3.99", "1.2.3.99", "1.2.3.99"},
		{"1.2.3-TEST", "1.2.3-TEST", "1.2.3-TEST"},
		{"1-alpha", "1.0.0-alpha", "1-alpha"},
		{"2.0-rc-1", "2.0.0-rc-1", "2.0-rc-1"},
		{"007.1", "7.1.0", "7.1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			n, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got := n.CanonicalString(); got != tt.canonical {
				t.Errorf("Parse(%q).CanonicalString() = %q, want %q", tt.input, got, tt.canonical)
			}
			if got := n.String(); got != tt.display {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got, tt.display)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  error
	}{
		{"BAD", ErrNotANumber},
		{"A.1.1.99", ErrNotANumber},
		{"1.1.1.AA", ErrNotANumber},
		{"1..1", ErrNotANumber},
		{"+1", ErrNotANumber},
		{"1.1.1-", ErrBadQualifier},
		{"1.1.1-SOME QUALIFIER", ErrBadQualifier},
		{"1.1.1-TAB\tQ", ErrBadQualifier},
		{"1.1.1-NL\nQ", ErrBadQualifier},
		{"1.1.1-CR\rQ", ErrBadQualifier},
		{"1.1.1.1-Q", ErrBadQualifier},
		{"", ErrBadFieldCount},
		{"-Q", ErrBadFieldCount},
		{"1.2.3.4.5", ErrBadFieldCount},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got nil", tt.input)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.input, err, tt.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse(%q) error is %T, want *ParseError", tt.input, err)
			}
			if pe.Value != tt.input {
				t.Errorf("ParseError.Value = %q, want %q", pe.Value, tt.input)
			}
		})
	}
}

func TestFromFields(t *testing.T) {
	t.Parallel()

	n, err := FromFields(1, 2)
	if err != nil {
		t.Fatalf("FromFields(1, 2) unexpected error: %v", err)
	}
	if n.String() != "1.2" || n.CanonicalString() != "1.2.0" {
		t.Errorf("FromFields(1, 2) = %q/%q, want 1.2/1.2.0", n.String(), n.CanonicalString())
	}
	if _, ok := n.Increment(); ok {
		t.Error("FromFields(1, 2) should not report an increment field")
	}

	n, err = FromFields(1, 2, 3, 4)
	if err != nil {
		t.Fatalf("FromFields(1, 2, 3, 4) unexpected error: %v", err)
	}
	if b, ok := n.Build(); !ok || b != 4 {
		t.Errorf("Build() = %d, %v, want 4, true", b, ok)
	}

	if _, err := FromFields(1, 2, 3, 4, 5); !errors.Is(err, ErrBadFieldCount) {
		t.Errorf("FromFields with five fields error = %v, want ErrBadFieldCount", err)
	}
	if _, err := FromFields(1, -2); !errors.Is(err, ErrNotANumber) {
		t.Errorf("FromFields with negative field error = %v, want ErrNotANumber", err)
	}
}

func TestFromFieldsWithQualifier(t *testing.T) {
	t.Parallel()

	n, err := FromFieldsWithQualifier(1, 0, 0, "SNAPSHOT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.CanonicalString() != "1.0.0-SNAPSHOT" {
		t.Errorf("CanonicalString() = %q, want %q", n.CanonicalString(), "1.0.0-SNAPSHOT")
	}
	if _, ok := n.Build(); ok {
		t.Error("qualified version must not carry a build field")
	}
	if !n.Equal(MustParse("1.0.0-SNAPSHOT")) {
		t.Error("FromFieldsWithQualifier should equal the parsed form")
	}

	for _, q := range []string{"", "A B", "A\tB"} {
		if _, err := FromFieldsWithQualifier(1, 0, 0, q); !errors.Is(err, ErrBadQualifier) {
			t.Errorf("FromFieldsWithQualifier(%q) error = %v, want ErrBadQualifier", q, err)
		}
	}
}

func TestEqual_UsesCanonicalForm(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"1", "1.0.0"},
		{"1.2", "1.2.0"},
		{"1.0", "1"},
		{"3-beta", "3.0.0-beta"},
	}
	for _, p := range pairs {
		a, b := MustParse(p[0]), MustParse(p[1])
		if !a.Equal(b) || !b.Equal(a) {
			t.Errorf("%q and %q should be equal", p[0], p[1])
		}
	}

	if MustParse("1").Equal(MustParse("1.0.0.0")) {
		t.Error("1 must not equal 1.0.0.0")
	}
	if MustParse("1").Equal(MustParse("1.0.0-TEST")) {
		t.Error("1 must not equal 1.0.0-TEST")
	}
	if MustParse("1.2.3").Equal(MustParse("1.2.3-X")) {
		t.Error("qualified and unqualified versions must not be equal")
	}
	if MustParse("1.2.3").Equal(MustParse("1.2.4")) {
		t.Error("1.2.3 must not equal 1.2.4")
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"1", "1.0.0", 0},
		{"1", "2", -1},
		{"1", "1.1", -1},
		{"1.0.0.98", "1.0.0.99", -1},
		{"1.0", "1.1", -1},
		{"2", "1.9.9.9", 1},
		{"1.2.3", "1.2.3.1", -1},
		{"1.2.3.4", "1.2.3.3", 1},
		{"1.0-A", "1.0-B", -1},
		// An unqualified version sorts before a qualified one.
		{"1.0", "1.0-SNAPSHOT", -1},
		{"1.0-SNAPSHOT", "1.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			t.Parallel()
			a, b := MustParse(tt.a), MustParse(tt.b)
			if got := Compare(a, b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(b, a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	t.Parallel()

	in := []Number{MustParse("2.0"), MustParse("1.0-beta"), MustParse("1.0"), MustParse("0.9.9.1")}
	Sort(in)

	got := make([]string, len(in))
	for i, n := range in {
		got[i] = n.String()
	}
	want := []string{"0.9.9.1", "1.0", "1.0-beta", "2.0"}
	if !slices.Equal(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}
}

func TestNumber_TextMarshaling(t *testing.T) {
	t.Parallel()

	var n Number
	if err := n.UnmarshalText([]byte("4.5")); err != nil {
		t.Fatalf("UnmarshalText() unexpected error: %v", err)
	}
	text, err := n.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() unexpected error: %v", err)
	}
	if string(text) != "4.5" {
		t.Errorf("MarshalText() = %q, want %q", text, "4.5")
	}
	if err := n.UnmarshalText([]byte("x")); !errors.Is(err, ErrNotANumber) {
		t.Errorf("UnmarshalText(x) error = %v, want ErrNotANumber", err)
	}
}

func TestMustParse_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("MustParse(bad) should panic")
		}
	}()
	MustParse("bad")
}

func TestNumber_IsZero(t *testing.T) {
	t.Parallel()

	var zero Number
	if !zero.IsZero() {
		t.Error("zero Number should report IsZero")
	}
	if MustParse("0").IsZero() {
		t.Error("parsed 0 should not report IsZero")
	}
}
