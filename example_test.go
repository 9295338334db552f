package pcre_test

import (
	"errors"
	"fmt"

	"github.com/coregx/pcre"
)

// ExampleCompile demonstrates basic pattern compilation and matching.
func ExampleCompile() {
	re, err := pcre.Compile(`\d+`, "")
	if err != nil {
		panic(err)
	}
	defer re.Release()

	m, _ := re.Match("hello 123")
	fmt.Println(m.String(), m.Start(), m.End())
	// Output: 123 6 9
}

// ExampleCompile_error shows the offset carried by a compile failure.
func ExampleCompile_error() {
	_, err := pcre.Compile(`(abc`, "")

	var cerr *pcre.CompileError
	fmt.Println(errors.As(err, &cerr), cerr.Pattern)
	// Output: true (abc
}

// ExamplePattern_Match demonstrates named groups addressed by name and index.
func ExamplePattern_Match() {
	re := pcre.MustCompile(`(?<word>\w+)`, "")
	defer re.Release()

	m, _ := re.Match("hello world")
	byName, _ := m.Named("word")
	byIndex := m.Group(1)
	fmt.Println(byName.Text, byName.Start, byName.End, byName == byIndex)
	// Output: hello 0 5 true
}

// ExamplePattern_MatchAll demonstrates global iteration over zero-width matches.
func ExamplePattern_MatchAll() {
	re := pcre.MustCompile(`a*`, "")
	defer re.Release()

	all, _ := re.MatchAll("baaab")
	for _, m := range all {
		fmt.Printf("[%d,%d)%q ", m.Start(), m.End(), m.String())
	}
	fmt.Println()
	// Output: [0,0)"" [1,4)"aaa" [4,4)"" [5,5)""
}

// ExamplePattern_All demonstrates lazy iteration with early termination.
func ExamplePattern_All() {
	re := pcre.MustCompile(`\w+`, "")
	defer re.Release()

	for m, err := range re.All("one two three four") {
		if err != nil {
			panic(err)
		}
		fmt.Println(m.String())
		if m.String() == "two" {
			break
		}
	}
	// Output:
	// one
	// two
}

// ExamplePattern_SubstituteAll demonstrates group references in a replacement.
func ExamplePattern_SubstituteAll() {
	re := pcre.MustCompile(`(\d+)`, "")
	defer re.Release()

	out, ok, _ := re.SubstituteAll("a1b22c", "[$1]")
	fmt.Println(out, ok)
	// Output: a[1]b[22]c true
}

// ExamplePattern_SubstituteAt demonstrates the extended replacement syntax.
func ExamplePattern_SubstituteAt() {
	re := pcre.MustCompile(`(?<first>\w+) (?<last>\w+)`, "")
	defer re.Release()

	out, _, _ := re.SubstituteAt("ada lovelace", `\U${last}\E, \u$first`, 0, pcre.SubstituteExtended)
	fmt.Println(out)
	// Output: LOVELACE, Ada
}

// ExamplePattern_Replace shows how the g flag selects global substitution.
func ExamplePattern_Replace() {
	once := pcre.MustCompile(`o`, "")
	defer once.Release()
	every := pcre.MustCompile(`o`, "g")
	defer every.Release()

	a, _ := once.Replace("foo", "0")
	b, _ := every.Replace("foo", "0")
	fmt.Println(a, b)
	// Output: f0o f00
}

// ExamplePattern_SubexpNames demonstrates named capture groups.
func ExamplePattern_SubexpNames() {
	re := pcre.MustCompile(`(?P<year>\d{4})-(?<month>\d{2})-(\d{2})`, "")
	defer re.Release()

	names := re.SubexpNames()
	fmt.Printf("Capture groups: %d\n", re.NumSubexp())
	fmt.Printf("Group 1 (year): %q\n", names[1])
	fmt.Printf("Group 2 (month): %q\n", names[2])
	fmt.Printf("Group 3 (day, unnamed): %q\n", names[3])

	// Output:
	// Capture groups: 3
	// Group 1 (year): "year"
	// Group 2 (month): "month"
	// Group 3 (day, unnamed): ""
}

// ExamplePattern_Release shows the fail-fast release policy.
func ExamplePattern_Release() {
	re := pcre.MustCompile(`x`, "")
	fmt.Println(re.Release())

	err := re.Release()
	fmt.Println(errors.Is(err, pcre.ErrReleased))
	// Output:
	// <nil>
	// true
}

// ExampleMatchResult_Get demonstrates the unified index-or-name accessor.
func ExampleMatchResult_Get() {
	re := pcre.MustCompile(`(?<key>\w+)=(?<value>\w+)`, "")
	defer re.Release()

	m, _ := re.Match("mode=fast")
	for _, key := range []string{"1", "key", "2", "value"} {
		g, _ := m.Get(key)
		fmt.Printf("%s=%s ", key, g.Text)
	}
	fmt.Println()
	// Output: 1=mode key=mode 2=fast value=fast
}

// ExampleQuoteMeta demonstrates escaping literal text.
func ExampleQuoteMeta() {
	fmt.Println(pcre.QuoteMeta("1.5+2"))
	// Output: 1\.5\+2
}

// ExampleCache demonstrates sharing compiled patterns.
func ExampleCache() {
	cache, err := pcre.NewCache(16, pcre.DefaultConfig())
	if err != nil {
		panic(err)
	}
	defer cache.Close()

	for _, line := range []string{"GET /a", "POST /b"} {
		_ = cache.Do(`^(?<method>[A-Z]+) `, "", func(re *pcre.Pattern) error {
			m, err := re.Match(line)
			if err != nil || m == nil {
				return err
			}
			g, _ := m.Named("method")
			fmt.Println(g.Text)
			return nil
		})
	}
	// Output:
	// GET
	// POST
}
