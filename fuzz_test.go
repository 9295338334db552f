// Fuzz tests for the matching and substitution invariants.
//
// Run with:
//
//	go test -fuzz=FuzzMatchAll -fuzztime=30s
//	go test -fuzz=FuzzSubstituteAll -fuzztime=30s
//	go test -fuzz=FuzzCompile -fuzztime=30s
package pcre

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

var seedPatterns = []string{
	`hello`,
	`\d+`,
	`\w+`,
	`[a-z]+`,
	`[^0-9]`,
	`^hello`,
	`world$`,
	`\bhello\b`,
	`a*`,
	`a+?`,
	`a??`,
	`a{2,5}`,
	`foo|bar|baz`,
	`(a)(b)?`,
	`(?<name>\w+)\s(\d+)`,
	`a++b`,
	`[[:alpha:][:^digit:]]+`,
	`\h+\R`,
	`\Q.*\E+`,
	`(?=b)`,
	`(?<=a)b`,
	``,
	`.`,
	`é+`,
}

var seedInputs = []string{
	"",
	"hello world",
	"baaab",
	"foo bar baz",
	"abc 123 def",
	"café",
	"aé世",
	"ab\xffcd",
}

func addSeeds(f *testing.F) {
	for _, p := range seedPatterns {
		for _, in := range seedInputs {
			f.Add(p, in)
		}
	}
}

// FuzzMatchAll checks that global matching terminates and yields ordered,
// in-bounds, non-overlapping matches.
func FuzzMatchAll(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, pattern, input string) {
		re, err := Compile(pattern, "")
		if err != nil {
			return
		}
		defer re.Release()

		all, err := re.MatchAll(input)
		if err != nil {
			return
		}
		if len(all) > utf8.RuneCountInString(input)+1 {
			t.Fatalf("%d matches for %d characters", len(all), utf8.RuneCountInString(input))
		}
		prevEnd := 0
		for i, m := range all {
			if m.Start() < prevEnd || m.End() < m.Start() || m.End() > len(input) {
				t.Fatalf("match %d = [%d,%d) after end %d", i, m.Start(), m.End(), prevEnd)
			}
			if m.String() != input[m.Start():m.End()] {
				t.Fatalf("match %d text %q != subject slice", i, m.String())
			}
			for _, g := range m.Groups()[1:] {
				if g.Matched() && (g.Start < 0 || g.End > len(input) || g.Start > g.End) {
					t.Fatalf("group %d = [%d,%d) out of range", g.Index, g.Start, g.End)
				}
			}
			prevEnd = m.End()
		}
	})
}

// FuzzSubstituteAll checks that a literal global substitution equals
// splicing the replacement over every MatchAll span.
func FuzzSubstituteAll(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, pattern, input string) {
		re, err := Compile(pattern, "")
		if err != nil {
			return
		}
		defer re.Release()

		all, err := re.MatchAll(input)
		if err != nil {
			return
		}
		out, ok, err := re.SubstituteAt(input, "<$>", 0, SubstituteGlobal|SubstituteLiteral)
		if err != nil {
			return
		}
		if input == "" {
			if ok {
				t.Fatalf("empty subject produced %q", out)
			}
			return
		}
		var want strings.Builder
		last := 0
		for _, m := range all {
			want.WriteString(input[last:m.Start()])
			want.WriteString("<$>")
			last = m.End()
		}
		want.WriteString(input[last:])
		if !ok || out != want.String() {
			t.Fatalf("SubstituteAt = %q, %v, want %q", out, ok, want.String())
		}
	})
}

// FuzzCompile checks that compilation never panics and that errors carry an
// offset inside the pattern.
func FuzzCompile(f *testing.F) {
	for _, p := range seedPatterns {
		f.Add(p, "")
	}
	f.Add(`(abc`, "i")
	f.Add(`[a`, "x")
	f.Add(`a{2,1}`, "")
	f.Add(`(?<n>a)\k<m>`, "n")
	f.Fuzz(func(t *testing.T, pattern, flags string) {
		re, err := Compile(pattern, flags)
		if err == nil {
			re.Release()
			return
		}
		var cerr *CompileError
		var ferr *FlagError
		switch {
		case errors.As(err, &ferr):
		case errors.As(err, &cerr):
			if cerr.Offset < 0 || cerr.Offset > len(pattern) {
				t.Fatalf("offset %d outside pattern %q", cerr.Offset, pattern)
			}
		default:
			t.Fatalf("unexpected error type %T: %v", err, err)
		}
	})
}
