package engine

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// rangeTable is a sorted list of inclusive rune ranges.
type rangeTable [][2]rune

var (
	horizontalSpace = rangeTable{
		{0x09, 0x09}, {0x20, 0x20}, {0xA0, 0xA0}, {0x1680, 0x1680}, {0x180E, 0x180E},
		{0x2000, 0x200A}, {0x202F, 0x202F}, {0x205F, 0x205F}, {0x3000, 0x3000},
	}
	verticalSpace = rangeTable{{0x0A, 0x0D}, {0x85, 0x85}, {0x2028, 0x2029}}

	// ASCII POSIX classes, as PCRE defines them without UCP.
	posixClasses = map[string]rangeTable{
		"alnum":  {{'0', '9'}, {'A', 'Z'}, {'a', 'z'}},
		"alpha":  {{'A', 'Z'}, {'a', 'z'}},
		"ascii":  {{0x00, 0x7F}},
		"blank":  {{'\t', '\t'}, {' ', ' '}},
		"cntrl":  {{0x00, 0x1F}, {0x7F, 0x7F}},
		"digit":  {{'0', '9'}},
		"graph":  {{0x21, 0x7E}},
		"lower":  {{'a', 'z'}},
		"print":  {{0x20, 0x7E}},
		"punct":  {{0x21, 0x2F}, {0x3A, 0x40}, {0x5B, 0x60}, {0x7B, 0x7E}},
		"space":  {{0x09, 0x0D}, {0x20, 0x20}},
		"upper":  {{'A', 'Z'}},
		"word":   {{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}},
		"xdigit": {{'0', '9'}, {'A', 'F'}, {'a', 'f'}},
	}
)

// \R: CRLF or any single vertical space. \v here is the engine's vertical
// tab, not a class.
const linebreak = `(?>\r\n|[\n\v\f\r\x{85}\x{2028}\x{2029}])`

func (t rangeTable) negate() rangeTable {
	var out rangeTable
	next := rune(0)
	for _, r := range t {
		if r[0] > next {
			out = append(out, [2]rune{next, r[0] - 1})
		}
		next = r[1] + 1
	}
	if next <= utf8.MaxRune {
		out = append(out, [2]rune{next, utf8.MaxRune})
	}
	return out
}

// appendMembers writes t as the body of a character class.
func (t rangeTable) appendMembers(dst []byte) []byte {
	for _, r := range t {
		dst = appendClassRune(dst, r[0])
		if r[1] != r[0] {
			dst = append(dst, '-')
			dst = appendClassRune(dst, r[1])
		}
	}
	return dst
}

func (t rangeTable) appendClass(dst []byte, negated bool) []byte {
	dst = append(dst, '[')
	if negated {
		dst = append(dst, '^')
	}
	dst = t.appendMembers(dst)
	return append(dst, ']')
}

func appendClassRune(dst []byte, r rune) []byte {
	if isWordRune(r) {
		return append(dst, byte(r))
	}
	dst = append(dst, `\x{`...)
	dst = strconv.AppendInt(dst, int64(r), 16)
	return append(dst, '}')
}

func isWordRune(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// QuoteMeta escapes the ASCII characters that mean something in some
// pattern context. The result matches s literally as a pattern, with or
// without the x flag, and also as the body of a character class.
func QuoteMeta(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for _, r := range s {
		if r < utf8.RuneSelf && needsQuote(byte(r)) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// needsQuote lists the bytes that have a meaning in some pattern context:
// metacharacters, class syntax, and whitespace and # under the x flag.
func needsQuote(c byte) bool {
	return strings.IndexByte("\\.+*?()|[]{}^$#-\t\n\v\f\r ", c) >= 0
}

// translate rewrites the PCRE constructs the engine lacks or reads
// differently into engine syntax:
//
//	(?P<name>...)          ->  (?<name>...)
//	(?P=name)              ->  \k<name>
//	X*+  X++  X?+  X{n,m}+ ->  (?>X*) (?>X+) (?>X?) (?>X{n,m})
//	[[:alpha:][:^digit:]]  ->  explicit ASCII ranges
//	\h \H \v \V            ->  horizontal and vertical space classes
//	\R                     ->  any line break sequence
//	\Q...\E                ->  escaped literal text
//
// Anything else is copied unchanged and left for the engine to accept or
// reject. An unknown POSIX class name is a *SyntaxError.
func translate(pattern string, extended bool) (string, error) {
	t := translator{src: pattern, extended: extended, atom: -1}
	if err := t.run(); err != nil {
		return "", err
	}
	return string(t.out), nil
}

type translator struct {
	src      string
	extended bool
	out      []byte

	// atom is where the last quantifiable item starts in out, or -1.
	atom int
	// groups holds the out offsets of the open parentheses.
	groups []int
}

func (t *translator) run() error {
	s := t.src
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\':
			i = t.escape(i)
		case c == '[':
			start := len(t.out)
			next, err := t.class(i)
			if err != nil {
				return err
			}
			t.atom = start
			i = next
		case c == '#' && t.extended:
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				end = len(s) - i - 1
			}
			t.out = append(t.out, s[i:i+end+1]...)
			i += end + 1
		case strings.HasPrefix(s[i:], "(?#"):
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				end = len(s) - i - 1
			}
			t.out = append(t.out, s[i:i+end+1]...)
			i += end + 1
		case strings.HasPrefix(s[i:], "(?P<"):
			t.groups = append(t.groups, len(t.out))
			t.atom = -1
			t.out = append(t.out, "(?<"...)
			i += 4
		case strings.HasPrefix(s[i:], "(?P="):
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				t.out = append(t.out, s[i:]...)
				return nil
			}
			t.atom = len(t.out)
			t.out = append(t.out, `\k<`...)
			t.out = append(t.out, s[i+4:i+end]...)
			t.out = append(t.out, '>')
			i += end + 1
		case c == '(':
			t.groups = append(t.groups, len(t.out))
			t.atom = -1
			t.out = append(t.out, c)
			i++
		case c == ')':
			t.atom = -1
			if n := len(t.groups); n > 0 {
				t.atom = t.groups[n-1]
				t.groups = t.groups[:n-1]
			}
			t.out = append(t.out, c)
			i++
		case c == '|':
			t.atom = -1
			t.out = append(t.out, c)
			i++
		case quantifierLen(s, i) > 0:
			n := quantifierLen(s, i)
			q := s[i : i+n]
			i += n
			switch {
			case i < len(s) && s[i] == '+' && t.atom >= 0:
				t.possessive(q)
				i++
			case i < len(s) && s[i] == '?':
				t.out = append(t.out, q...)
				t.out = append(t.out, '?')
				i++
			default:
				t.out = append(t.out, q...)
			}
			t.atom = -1
		case t.extended && isSpace(c):
			t.out = append(t.out, c)
			i++
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			t.atom = len(t.out)
			t.out = append(t.out, s[i:i+size]...)
			i += size
		}
	}
	return nil
}

// possessive wraps the last atom and its quantifier q in an atomic group.
func (t *translator) possessive(q string) {
	body := append([]byte(nil), t.out[t.atom:]...)
	t.out = append(t.out[:t.atom], "(?>"...)
	t.out = append(t.out, body...)
	t.out = append(t.out, q...)
	t.out = append(t.out, ')')
}

// escape translates the escape sequence at i outside a class.
func (t *translator) escape(i int) int {
	s := t.src
	if i+1 >= len(s) {
		t.out = append(t.out, s[i:]...)
		return len(s)
	}
	switch s[i+1] {
	case 'Q':
		text, next := quoted(s, i)
		for _, r := range text {
			t.atom = len(t.out)
			t.out = append(t.out, QuoteMeta(string(r))...)
		}
		return next
	case 'E':
		return i + 2
	case 'h', 'H':
		t.atom = len(t.out)
		t.out = horizontalSpace.appendClass(t.out, s[i+1] == 'H')
		return i + 2
	case 'v', 'V':
		t.atom = len(t.out)
		t.out = verticalSpace.appendClass(t.out, s[i+1] == 'V')
		return i + 2
	case 'R':
		t.atom = len(t.out)
		t.out = append(t.out, linebreak...)
		return i + 2
	}
	n := escapeLen(s, i)
	t.atom = len(t.out)
	t.out = append(t.out, s[i:i+n]...)
	return i + n
}

// class translates the character class opening at i and returns the index
// just past it. An unterminated class is copied as is.
func (t *translator) class(i int) (int, error) {
	s := t.src
	t.out = append(t.out, '[')
	j := i + 1
	if j < len(s) && s[j] == '^' {
		t.out = append(t.out, '^')
		j++
	}
	if j < len(s) && s[j] == ']' {
		t.out = append(t.out, `\]`...)
		j++
	}
	for j < len(s) {
		c := s[j]
		switch {
		case c == ']':
			t.out = append(t.out, c)
			return j + 1, nil
		case c == '\\' && j+1 < len(s):
			switch s[j+1] {
			case 'Q':
				text, next := quoted(s, j)
				t.out = append(t.out, QuoteMeta(text)...)
				j = next
			case 'E':
				j += 2
			case 'h':
				t.out = horizontalSpace.appendMembers(t.out)
				j += 2
			case 'H':
				t.out = horizontalSpace.negate().appendMembers(t.out)
				j += 2
			case 'v':
				t.out = verticalSpace.appendMembers(t.out)
				j += 2
			case 'V':
				t.out = verticalSpace.negate().appendMembers(t.out)
				j += 2
			default:
				n := escapeLen(s, j)
				t.out = append(t.out, s[j:j+n]...)
				j += n
			}
		case c == '[':
			name, negated, end, ok := posixName(s, j)
			if ok {
				table, known := posixClasses[name]
				if !known {
					return 0, &SyntaxError{Message: "unknown POSIX class name", Offset: j}
				}
				if negated {
					table = table.negate()
				}
				t.out = table.appendMembers(t.out)
				j = end
				continue
			}
			if j+1 < len(s) && (s[j+1] == '.' || s[j+1] == '=') &&
				strings.Contains(s[j+2:], string(s[j+1])+"]") {
				return 0, &SyntaxError{Message: "POSIX collating elements are not supported", Offset: j}
			}
			// A bare [ inside a class is literal; the engine would read
			// -[ as class subtraction.
			t.out = append(t.out, `\[`...)
			j++
		default:
			_, size := utf8.DecodeRuneInString(s[j:])
			t.out = append(t.out, s[j:j+size]...)
			j += size
		}
	}
	return len(s), nil
}

// posixName parses [:name:] or [:^name:] at i.
func posixName(s string, i int) (name string, negated bool, end int, ok bool) {
	if !strings.HasPrefix(s[i:], "[:") {
		return "", false, 0, false
	}
	j := i + 2
	if j < len(s) && s[j] == '^' {
		negated = true
		j++
	}
	k := j
	for k < len(s) && s[k] >= 'a' && s[k] <= 'z' {
		k++
	}
	if k == j || !strings.HasPrefix(s[k:], ":]") {
		return "", false, 0, false
	}
	return s[j:k], negated, k + 2, true
}

// quoted returns the text of the \Q...\E sequence at i and the index past
// it. Without \E the quote runs to the end of the pattern.
func quoted(s string, i int) (string, int) {
	end := strings.Index(s[i+2:], `\E`)
	if end < 0 {
		return s[i+2:], len(s)
	}
	return s[i+2 : i+2+end], i + 2 + end + 2
}

// escapeLen returns the length of the escape sequence at i.
func escapeLen(s string, i int) int {
	if i+1 >= len(s) {
		return len(s) - i
	}
	switch c := s[i+1]; {
	case strings.IndexByte("xopPgkN", c) >= 0 && i+2 < len(s) && strings.IndexByte("{<'", s[i+2]) >= 0:
		closer := s[i+2]
		switch closer {
		case '{':
			closer = '}'
		case '<':
			closer = '>'
		}
		if end := strings.IndexByte(s[i+3:], closer); end >= 0 {
			return 3 + end + 1
		}
		return len(s) - i
	case c == 'x':
		return 2 + hexRun(s[i+2:], 2)
	case c == 'u':
		return 2 + hexRun(s[i+2:], 4)
	case c == 'p' || c == 'P' || c == 'c':
		return min(3, len(s)-i)
	case c >= '0' && c <= '9':
		j := i + 2
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		return j - i
	}
	_, size := utf8.DecodeRuneInString(s[i+1:])
	return 1 + size
}

func hexRun(s string, limit int) int {
	n := 0
	for n < len(s) && n < limit && strings.IndexByte("0123456789abcdefABCDEF", s[n]) >= 0 {
		n++
	}
	return n
}

// quantifierLen returns the length of the quantifier at i: *, +, ?, {n},
// {n,} or {n,m}. It returns 0 when there is none.
func quantifierLen(s string, i int) int {
	switch s[i] {
	case '*', '+', '?':
		return 1
	case '{':
	default:
		return 0
	}
	j := i + 1
	digits := func() int {
		k := j
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		return j - k
	}
	if digits() == 0 {
		return 0
	}
	if j < len(s) && s[j] == ',' {
		j++
		digits()
	}
	if j < len(s) && s[j] == '}' {
		return j + 1 - i
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f' || c == '\r'
}
