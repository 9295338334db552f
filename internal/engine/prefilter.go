package engine

import (
	"errors"
	"math"
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/quasilyte/regex/syntax"
)

// prefilter rejects subjects that cannot match before the backtracking
// engine runs. It is built only for patterns that are a plain alternation of
// literals, so "no literal occurs after the offset" implies "no match".
// A candidate still goes through the full engine from the original offset.
type prefilter struct {
	auto *ahocorasick.Automaton
}

// buildPrefilter returns nil when pattern is not eligible.
func buildPrefilter(pattern string, opts Options, cfg Config) *prefilter {
	if !cfg.EnablePrefilter || opts&(Caseless|Extended) != 0 {
		return nil
	}

	lits, ok := extractLiterals(pattern)
	if !ok || len(lits) == 0 {
		return nil
	}
	if cfg.MaxLiterals > 0 && len(lits) > cfg.MaxLiterals {
		return nil
	}
	for _, lit := range lits {
		if len(lit) < max(cfg.MinLiteralLen, 1) {
			return nil
		}
	}

	builder := ahocorasick.NewBuilder()
	for _, lit := range lits {
		builder.AddPattern([]byte(lit))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &prefilter{auto: auto}
}

// candidate reports whether haystack may contain a match at or after at.
func (p *prefilter) candidate(haystack []byte, at int) bool {
	if at >= len(haystack) {
		return false
	}
	return p.auto.Find(haystack, at) != nil
}

// extractLiterals returns the alternatives of pattern when every one of them
// is a non-empty literal string, possibly wrapped in groups.
func extractLiterals(pattern string) (lits []string, ok bool) {
	if len(pattern) > math.MaxUint16 {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			lits, ok = nil, false
		}
	}()

	re, err := syntax.NewParser(nil).Parse(pattern)
	if err != nil {
		return nil, false
	}
	return alternatives(re.Expr)
}

func alternatives(e syntax.Expr) ([]string, bool) {
	switch e.Op {
	case syntax.OpAlt:
		out := make([]string, 0, len(e.Args))
		for _, arg := range e.Args {
			s, ok := literal(arg)
			if !ok || s == "" {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case syntax.OpCapture, syntax.OpNamedCapture, syntax.OpGroup:
		return alternatives(e.Args[0])
	}
	s, ok := literal(e)
	if !ok || s == "" {
		return nil, false
	}
	return []string{s}, true
}

func literal(e syntax.Expr) (string, bool) {
	switch e.Op {
	case syntax.OpChar, syntax.OpLiteral:
		return e.Value, true
	case syntax.OpEscapeMeta:
		return e.Value[1:], true
	case syntax.OpCapture, syntax.OpNamedCapture, syntax.OpGroup:
		return literal(e.Args[0])
	case syntax.OpConcat:
		var b strings.Builder
		for _, arg := range e.Args {
			s, ok := literal(arg)
			if !ok {
				return "", false
			}
			b.WriteString(s)
		}
		return b.String(), true
	}
	return "", false
}

// errorOffset locates a syntax error in pattern. The engine reports no
// position. Unbalanced parentheses and unterminated classes are found by
// scanning; other errors are placed by re-parsing with a second parser, and
// at the end of the pattern when that parser cannot place them either.
func errorOffset(pattern string, extended bool) (off int) {
	if off, ok := structureError(pattern, extended); ok {
		return off
	}
	off = len(pattern)
	if len(pattern) > math.MaxUint16 {
		return off
	}
	defer func() {
		if recover() != nil {
			off = len(pattern)
		}
	}()

	_, err := syntax.NewParser(nil).Parse(pattern)
	var perr syntax.ParseError
	if !errors.As(err, &perr) || strings.Contains(perr.Message, "None") {
		return off
	}
	switch {
	case strings.HasPrefix(perr.Message, "unexpected token"):
		return min(int(perr.Pos.Begin), off)
	case perr.Message == "group token is incomplete":
		// Positioned at "(": the offending character follows "(?".
		return min(int(perr.Pos.Begin)+2, off)
	}
	return off
}
