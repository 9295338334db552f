package engine

import (
	"github.com/coregx/pcre/internal/template"
)

// SubstituteOptions holds substitution option bits (PCRE2 ABI values).
// Bits the engine does not implement are ignored.
type SubstituteOptions uint32

const (
	SubstituteGlobal          SubstituteOptions = 0x00000100
	SubstituteExtended        SubstituteOptions = 0x00000200
	SubstituteUnsetEmpty      SubstituteOptions = 0x00000400 // always in effect
	SubstituteUnknownUnset    SubstituteOptions = 0x00000800
	SubstituteOverflowLength  SubstituteOptions = 0x00001000 // output is unbounded; ignored
	SubstituteLiteral         SubstituteOptions = 0x00008000
	SubstituteReplacementOnly SubstituteOptions = 0x00020000
)

// Replacement template errors, re-exported for callers of Substitute.
var (
	ErrBadReplacement = template.ErrBadReplacement
	ErrUnknownGroup   = template.ErrUnknownGroup
)

// Substitute replaces the first match at or after offset (every match with
// SubstituteGlobal) and returns the new string with the number of
// replacements. The text before offset is copied unchanged unless
// SubstituteReplacementOnly is set, in which case only the expanded
// replacements are returned.
//
// Zero-width matches advance the search by one character; an empty match at
// the end of the subject is replaced as well.
func (c *Code) Substitute(s *Subject, offset int, replacement string, opts SubstituteOptions) (string, int, error) {
	if _, err := c.checkOffset(s, offset); err != nil {
		return "", 0, err
	}

	var tmpl *template.Template
	if opts&SubstituteLiteral != 0 {
		tmpl = template.Literal(replacement)
	} else {
		var err error
		tmpl, err = template.Parse(replacement, opts&SubstituteExtended != 0)
		if err != nil {
			return "", 0, err
		}
	}

	var (
		text     = s.String()
		keep     = opts&SubstituteReplacementOnly == 0
		global   = opts&SubstituteGlobal != 0
		unknown  = opts&SubstituteUnknownUnset != 0
		out      []byte
		last     = offset
		pos      = offset
		replaced int
	)
	if keep {
		out = append(out, text[:offset]...)
	}

	for pos <= s.Len() {
		m, err := c.Match(s, pos)
		if err != nil {
			return "", replaced, err
		}
		if m == nil {
			break
		}

		start, end := m.Ovector[0], m.Ovector[1]
		if keep {
			out = append(out, text[last:start]...)
		}
		out, err = tmpl.Expand(out, captures{text: text, ovector: m.Ovector, code: c}, unknown)
		if err != nil {
			return "", replaced, err
		}
		replaced++
		last = end

		if !global {
			break
		}
		if end > start {
			pos = end
		} else {
			pos = s.Next(end)
		}
	}

	if keep {
		out = append(out, text[last:]...)
	}
	c.stats.Substitutions += uint64(replaced)
	return string(out), replaced, nil
}

// captures exposes one match to template expansion.
type captures struct {
	text    string
	ovector []int
	code    *Code
}

func (c captures) Lookup(ref template.Ref) (string, bool, bool) {
	idx := ref.Index
	if idx < 0 {
		idx = c.code.GroupIndex(ref.Name)
	}
	if idx < 0 || 2*idx+1 >= len(c.ovector) {
		return "", false, false
	}
	start, end := c.ovector[2*idx], c.ovector[2*idx+1]
	if start < 0 {
		return "", false, true
	}
	return c.text[start:end], true, true
}
