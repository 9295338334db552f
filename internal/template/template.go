// Package template parses and expands replacement strings in PCRE2
// substitution syntax.
//
// Basic syntax, always available:
//
//	$$            literal dollar
//	$n  ${n}      group n (all following digits belong to n)
//	$name ${name} named group
//
// Extended syntax (Parse with extended=true) adds backslash escapes
// (\n \t \r \f \a \e and \ before any non-alphanumeric character),
// case forcing (\U \L \E \u \l) and the conditional forms
// ${n:-default} and ${n:+set:unset}.
package template

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrBadReplacement reports malformed template syntax.
	ErrBadReplacement = errors.New("invalid replacement string")

	// ErrUnknownGroup reports a reference to a group the pattern does not have.
	ErrUnknownGroup = errors.New("unknown substring")
)

// Ref names a capture group either by number or by name.
// Index is -1 for references by name.
type Ref struct {
	Index int
	Name  string
}

func (r Ref) String() string {
	if r.Index >= 0 {
		return strconv.Itoa(r.Index)
	}
	return r.Name
}

// Captures resolves group references during expansion.
type Captures interface {
	// Lookup returns the group text, whether the group participated in the
	// match, and whether the pattern has such a group at all.
	Lookup(ref Ref) (text string, set, known bool)
}

type kind uint8

const (
	kindLiteral kind = iota
	kindGroup
	kindDefault // ${n:-text}
	kindPlus    // ${n:+set:unset}
	kindCase
)

type item struct {
	kind kind
	text string
	ref  Ref

	// Conditional branches.
	ifSet   *Template
	ifUnset *Template

	// Case operator: one of U L E u l.
	op byte
}

// Template is a parsed replacement string. It is immutable and safe for
// concurrent use.
type Template struct {
	items   []item
	hasCase bool
}

// Literal returns a template that inserts s verbatim.
func Literal(s string) *Template {
	if s == "" {
		return &Template{}
	}
	return &Template{items: []item{{kind: kindLiteral, text: s}}}
}

// Parse parses src. With extended set, backslash escapes, case forcing and
// conditional substitutions are recognized.
func Parse(src string, extended bool) (*Template, error) {
	p := parser{src: src, extended: extended}
	t, err := p.parse("")
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return t, nil
}

// Expand appends the expansion of t against c to dst.
//
// Groups that did not participate expand to the empty string. A reference to
// a group the pattern does not have fails with ErrUnknownGroup unless
// unknownUnset is set, in which case it is treated as an unset group.
func (t *Template) Expand(dst []byte, c Captures, unknownUnset bool) ([]byte, error) {
	if !t.hasCase {
		return t.expandPlain(dst, c, unknownUnset)
	}
	w := caseWriter{buf: dst}
	if err := t.expandCase(&w, c, unknownUnset); err != nil {
		return dst, err
	}
	return w.buf, nil
}

func (t *Template) expandPlain(dst []byte, c Captures, unknownUnset bool) ([]byte, error) {
	for _, it := range t.items {
		switch it.kind {
		case kindLiteral:
			dst = append(dst, it.text...)
		case kindGroup:
			text, _, err := lookup(c, it.ref, unknownUnset)
			if err != nil {
				return dst, err
			}
			dst = append(dst, text...)
		case kindDefault, kindPlus:
			text, set, err := lookup(c, it.ref, unknownUnset)
			if err != nil {
				return dst, err
			}
			var branch *Template
			switch {
			case it.kind == kindDefault && set:
				dst = append(dst, text...)
				continue
			case it.kind == kindDefault, !set:
				branch = it.ifUnset
			default:
				branch = it.ifSet
			}
			if dst, err = branch.expandPlain(dst, c, unknownUnset); err != nil {
				return dst, err
			}
		}
	}
	return dst, nil
}

func (t *Template) expandCase(w *caseWriter, c Captures, unknownUnset bool) error {
	for _, it := range t.items {
		switch it.kind {
		case kindLiteral:
			w.write(it.text)
		case kindCase:
			w.apply(it.op)
		case kindGroup:
			text, _, err := lookup(c, it.ref, unknownUnset)
			if err != nil {
				return err
			}
			w.write(text)
		case kindDefault, kindPlus:
			text, set, err := lookup(c, it.ref, unknownUnset)
			if err != nil {
				return err
			}
			if it.kind == kindDefault && set {
				w.write(text)
				continue
			}
			branch := it.ifUnset
			if it.kind == kindPlus && set {
				branch = it.ifSet
			}
			if err := branch.expandCase(w, c, unknownUnset); err != nil {
				return err
			}
		}
	}
	return nil
}

func lookup(c Captures, ref Ref, unknownUnset bool) (string, bool, error) {
	text, set, known := c.Lookup(ref)
	if !known {
		if unknownUnset {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %s", ErrUnknownGroup, ref)
	}
	if !set {
		return "", false, nil
	}
	return text, true, nil
}

// caseWriter applies \U \L \E \u \l forcing to everything written after the
// operator.
type caseWriter struct {
	buf  []byte
	mode byte // 'U', 'L' or 0
	once byte // 'u', 'l' or 0
}

func (w *caseWriter) apply(op byte) {
	switch op {
	case 'U', 'L':
		w.mode = op
	case 'E':
		w.mode = 0
	case 'u', 'l':
		w.once = op
	}
}

func (w *caseWriter) write(s string) {
	if w.mode == 0 && w.once == 0 {
		w.buf = append(w.buf, s...)
		return
	}
	for _, r := range s {
		switch {
		case w.once == 'u':
			r = unicode.ToUpper(r)
			w.once = 0
		case w.once == 'l':
			r = unicode.ToLower(r)
			w.once = 0
		case w.mode == 'U':
			r = unicode.ToUpper(r)
		case w.mode == 'L':
			r = unicode.ToLower(r)
		}
		w.buf = utf8.AppendRune(w.buf, r)
	}
}

type parser struct {
	src      string
	pos      int
	extended bool
	hasCase  bool
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrBadReplacement, p.pos, fmt.Sprintf(format, args...))
}

// parse reads items until the end of input or, inside a conditional branch,
// until an unescaped byte from stops.
func (p *parser) parse(stops string) (*Template, error) {
	t := &Template{}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.items = append(t.items, item{kind: kindLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case stops != "" && strings.IndexByte(stops, c) >= 0:
			flush()
			t.hasCase = p.hasCase
			return t, nil

		case c == '$':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '$' {
				lit.WriteByte('$')
				p.pos += 2
				continue
			}
			flush()
			it, err := p.parseDollar()
			if err != nil {
				return nil, err
			}
			t.items = append(t.items, it)

		case c == '\\' && p.extended:
			if p.pos+1 >= len(p.src) {
				return nil, p.errorf("trailing backslash")
			}
			e := p.src[p.pos+1]
			switch e {
			case 'n':
				lit.WriteByte('\n')
			case 't':
				lit.WriteByte('\t')
			case 'r':
				lit.WriteByte('\r')
			case 'f':
				lit.WriteByte('\f')
			case 'a':
				lit.WriteByte('\a')
			case 'e':
				lit.WriteByte(0x1b)
			case 'U', 'L', 'E', 'u', 'l':
				flush()
				t.items = append(t.items, item{kind: kindCase, op: e})
				p.hasCase = true
			default:
				if isAlnum(e) {
					return nil, p.errorf("unrecognized escape \\%c", e)
				}
				lit.WriteByte(e)
			}
			p.pos += 2

		default:
			lit.WriteByte(c)
			p.pos++
		}
	}
	if stops != "" {
		return nil, p.errorf("missing closing '}'")
	}
	flush()
	t.hasCase = p.hasCase
	return t, nil
}

// parseDollar parses one reference starting at '$'.
func (p *parser) parseDollar() (item, error) {
	start := p.pos
	p.pos++ // '$'
	if p.pos >= len(p.src) {
		p.pos = start
		return item{}, p.errorf("'$' at end of replacement")
	}

	c := p.src[p.pos]
	switch {
	case isDigit(c):
		ref, err := p.readNumber()
		if err != nil {
			return item{}, err
		}
		return item{kind: kindGroup, ref: ref}, nil

	case isNameStart(c):
		return item{kind: kindGroup, ref: Ref{Index: -1, Name: p.readName()}}, nil

	case c == '{':
		p.pos++
		var ref Ref
		switch {
		case p.pos < len(p.src) && isDigit(p.src[p.pos]):
			var err error
			if ref, err = p.readNumber(); err != nil {
				return item{}, err
			}
		case p.pos < len(p.src) && isNameStart(p.src[p.pos]):
			ref = Ref{Index: -1, Name: p.readName()}
		default:
			return item{}, p.errorf("expected group number or name after '${'")
		}
		if p.pos >= len(p.src) {
			return item{}, p.errorf("missing closing '}'")
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return item{kind: kindGroup, ref: ref}, nil
		}
		if p.extended && p.src[p.pos] == ':' && p.pos+1 < len(p.src) {
			return p.parseConditional(ref)
		}
		return item{}, p.errorf("expected '}'")

	default:
		p.pos = start
		return item{}, p.errorf("'$' not followed by a group reference")
	}
}

// parseConditional parses the tail of ${ref:-text} or ${ref:+set:unset};
// p.pos is at the ':'.
func (p *parser) parseConditional(ref Ref) (item, error) {
	op := p.src[p.pos+1]
	if op != '-' && op != '+' {
		return item{}, p.errorf("expected ':-' or ':+'")
	}
	p.pos += 2

	if op == '-' {
		text, err := p.parse("}")
		if err != nil {
			return item{}, err
		}
		if p.pos >= len(p.src) || p.src[p.pos] != '}' {
			return item{}, p.errorf("expected '}'")
		}
		p.pos++
		return item{kind: kindDefault, ref: ref, ifUnset: text}, nil
	}

	first, err := p.parse(":}")
	if err != nil {
		return item{}, err
	}

	second := &Template{}
	if p.pos < len(p.src) && p.src[p.pos] == ':' {
		p.pos++
		if second, err = p.parse("}"); err != nil {
			return item{}, err
		}
	}
	if p.pos >= len(p.src) || p.src[p.pos] != '}' {
		return item{}, p.errorf("expected '}'")
	}
	p.pos++
	return item{kind: kindPlus, ref: ref, ifSet: first, ifUnset: second}, nil
}

func (p *parser) readNumber() (Ref, error) {
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		p.pos = start
		return Ref{}, p.errorf("group number out of range")
	}
	return Ref{Index: n}, nil
}

func (p *parser) readName() string {
	start := p.pos
	for p.pos < len(p.src) && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

func isAlnum(c byte) bool {
	return isNameChar(c) && c != '_'
}
