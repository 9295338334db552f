package pcre

import (
	"github.com/coregx/pcre/internal/engine"
)

// SubstituteOptions is the option word for SubstituteAt. Values follow the
// PCRE2 ABI and are passed to the engine unmodified; bits the engine does
// not implement are ignored.
type SubstituteOptions uint32

const (
	// SubstituteGlobal replaces every match instead of the first.
	SubstituteGlobal = SubstituteOptions(engine.SubstituteGlobal)

	// SubstituteExtended enables backslash escapes, case forcing
	// (\U \L \E \u \l) and the ${n:-default} / ${n:+set:unset} forms.
	SubstituteExtended = SubstituteOptions(engine.SubstituteExtended)

	// SubstituteUnsetEmpty is accepted for compatibility. Unset groups
	// always expand to "".
	SubstituteUnsetEmpty = SubstituteOptions(engine.SubstituteUnsetEmpty)

	// SubstituteUnknownUnset expands references to nonexistent groups to ""
	// instead of failing with ErrUnknownGroup.
	SubstituteUnknownUnset = SubstituteOptions(engine.SubstituteUnknownUnset)

	// SubstituteOverflowLength is accepted for compatibility; output is
	// never truncated.
	SubstituteOverflowLength = SubstituteOptions(engine.SubstituteOverflowLength)

	// SubstituteLiteral inserts the replacement verbatim.
	SubstituteLiteral = SubstituteOptions(engine.SubstituteLiteral)

	// SubstituteReplacementOnly returns only the expanded replacements,
	// without the unmatched parts of the subject.
	SubstituteReplacementOnly = SubstituteOptions(engine.SubstituteReplacementOnly)
)

// Substitute replaces the first match in subject with the expansion of
// replacement. It is SubstituteAt(subject, replacement, 0, 0).
//
// Example:
//
//	re := pcre.MustCompile(`(\w+) (\w+)`, "")
//	out, _, _ := re.Substitute("hello world", "$2 $1")
//	// out == "world hello"
func (p *Pattern) Substitute(subject, replacement string) (string, bool, error) {
	return p.SubstituteAt(subject, replacement, 0, 0)
}

// SubstituteAt replaces the first match at or after byte offset offset (every
// match with SubstituteGlobal) and returns the whole rebuilt subject. The
// text before offset is kept unchanged.
//
// ok is false, and the engine is not called, when offset >= len(subject).
// When nothing matches the subject is returned unchanged with ok true.
//
// Replacement syntax: $$ is a dollar sign; $n and ${n} insert group n; $name
// and ${name} insert a named group. Groups that did not participate insert
// "". A reference to a group the pattern does not have fails with an
// EngineError wrapping ErrUnknownGroup unless SubstituteUnknownUnset is set.
func (p *Pattern) SubstituteAt(subject, replacement string, offset int, opts SubstituteOptions) (string, bool, error) {
	code, err := p.acquire("substitute")
	if err != nil {
		return "", false, err
	}
	if offset >= len(subject) {
		return "", false, nil
	}
	out, _, err := code.Substitute(engine.NewSubject(subject), offset, replacement, engine.SubstituteOptions(opts))
	if err != nil {
		return "", false, wrapEngine("substitute", err)
	}
	return out, true, nil
}

// SubstituteAll replaces every non-overlapping match in subject, left to
// right, in a single pass: replaced text is never matched again. Empty
// matches are handled as in MatchAll. ok is false for the empty subject.
//
// Example:
//
//	re := pcre.MustCompile(`(\d+)`, "")
//	out, _, _ := re.SubstituteAll("a1b22c", "[$1]")
//	// out == "a[1]b[22]c"
func (p *Pattern) SubstituteAll(subject, replacement string) (string, bool, error) {
	code, err := p.acquire("substitute all")
	if err != nil {
		return "", false, err
	}
	if subject == "" {
		return "", false, nil
	}
	out, _, err := code.Substitute(engine.NewSubject(subject), 0, replacement, engine.SubstituteGlobal)
	if err != nil {
		return "", false, wrapEngine("substitute all", err)
	}
	return out, true, nil
}

// Replace substitutes every match when the pattern was compiled with the g
// flag and the first match otherwise. Where Substitute or SubstituteAll
// would report no result (an empty subject), Replace returns subject as is.
//
// Example:
//
//	re := pcre.MustCompile(`o`, "g")
//	out, _ := re.Replace("foo", "0")
//	// out == "f00"
func (p *Pattern) Replace(subject, replacement string) (string, error) {
	var (
		out string
		ok  bool
		err error
	)
	if p.flags.Has(FlagGlobal) {
		out, ok, err = p.SubstituteAll(subject, replacement)
	} else {
		out, ok, err = p.Substitute(subject, replacement)
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return subject, nil
	}
	return out, nil
}
