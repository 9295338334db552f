package pcre

import (
	"testing"
)

func TestParseDelimited(t *testing.T) {
	tests := []struct {
		literal string
		pattern string
		flags   string
	}{
		{`/ab+c/`, `ab+c`, ""},
		{`/ab+c/i`, `ab+c`, "i"},
		{`#a/b#gm`, `a/b`, "gm"},
		{`{a}`, `a`, ""},
		{`(x(y))s`, `x(y)`, "s"},
		{`/a b/x`, `a b`, "x"},
		{`/a/ixg`, `a`, "igx"},
		{`/(?<n>\k<n>)/`, `(?<n>\k<n>)`, ""},
		{`/a/b/`, `a/b`, ""},
	}
	for _, tt := range tests {
		pattern, flags, err := ParseDelimited(tt.literal)
		if err != nil {
			t.Errorf("ParseDelimited(%q) error: %v", tt.literal, err)
			continue
		}
		if pattern != tt.pattern || flags != tt.flags {
			t.Errorf("ParseDelimited(%q) = %q, %q, want %q, %q", tt.literal, pattern, flags, tt.pattern, tt.flags)
		}
	}
}

func TestParseDelimitedErrors(t *testing.T) {
	for _, literal := range []string{``, `abc`, `/abc`, `\abc\`, ` a `} {
		if _, _, err := ParseDelimited(literal); err == nil {
			t.Errorf("ParseDelimited(%q) succeeded, want error", literal)
		}
	}
}

func TestCompileDelimited(t *testing.T) {
	re, err := CompileDelimited(`/HELLO (?<who>\w+)/ig`)
	if err != nil {
		t.Fatal(err)
	}
	defer re.Release()

	if !re.Flags().Has(FlagCaseless | FlagGlobal) {
		t.Errorf("Flags() = %v", re.Flags())
	}
	out, err := re.Replace("hello bob, Hello amy", "hi $who")
	if err != nil {
		t.Fatal(err)
	}
	if out != "hi bob, hi amy" {
		t.Errorf("Replace = %q", out)
	}

	if _, err := CompileDelimited(`/a/q`); err == nil {
		t.Error("unknown modifier accepted")
	}
}
