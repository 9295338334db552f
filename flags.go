package pcre

import (
	"strings"

	"github.com/coregx/pcre/internal/engine"
)

// Flags is a set of pattern flags.
type Flags uint8

const (
	FlagCaseless      Flags = 1 << iota // i: case-insensitive matching
	FlagMultiline                       // m: ^ and $ match at line boundaries
	FlagDotAll                          // s: . matches newline
	FlagExtended                        // x: ignore whitespace and # comments
	FlagUTF                             // u: reject subjects that are not valid UTF-8
	FlagNoAutoCapture                   // n: plain (...) does not capture
	FlagGlobal                          // g: Replace substitutes every match
)

// flagChars lists the flag characters in canonical order.
const flagChars = "imsxung"

// ParseFlags parses a flag string such as "gi". Repeated characters are
// allowed; any character outside "imsxung" is rejected with a *FlagError.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for pos, c := range s {
		i := strings.IndexRune(flagChars, c)
		if i < 0 {
			return 0, &FlagError{Flags: s, Char: c, Pos: pos}
		}
		f |= 1 << i
	}
	return f, nil
}

// Has reports whether every flag in g is set in f.
func (f Flags) Has(g Flags) bool {
	return f&g == g
}

// String returns the flags in canonical order: ParseFlags("gi") prints "ig".
func (f Flags) String() string {
	var b strings.Builder
	for i := 0; i < len(flagChars); i++ {
		if f&(1<<i) != 0 {
			b.WriteByte(flagChars[i])
		}
	}
	return b.String()
}

// options maps the flags to engine compile options. FlagGlobal has no
// engine counterpart.
func (f Flags) options() engine.Options {
	var o engine.Options
	if f&FlagCaseless != 0 {
		o |= engine.Caseless
	}
	if f&FlagMultiline != 0 {
		o |= engine.Multiline
	}
	if f&FlagDotAll != 0 {
		o |= engine.DotAll
	}
	if f&FlagExtended != 0 {
		o |= engine.Extended
	}
	if f&FlagUTF != 0 {
		o |= engine.UTF
	}
	if f&FlagNoAutoCapture != 0 {
		o |= engine.NoAutoCapture
	}
	return o
}
