package engine

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// group is a capturing group found by scanGroups.
type group struct {
	name string
	// nameEnd is the offset just past the name, 0 for unnamed groups.
	nameEnd int
}

// scanGroups lists the capturing groups of pattern in order of their opening
// parenthesis.
func scanGroups(pattern string, opts Options) []group {
	var groups []group
	explicit := opts&NoAutoCapture != 0
	walk(pattern, opts&Extended != 0, func(i int, tok token) {
		if tok != tokOpen {
			return
		}
		rest := pattern[i+1:]
		if !strings.HasPrefix(rest, "?") {
			if !strings.HasPrefix(rest, "*") && !explicit {
				groups = append(groups, group{})
			}
			return
		}
		if name, at, ok := groupName(rest[1:]); ok {
			groups = append(groups, group{name: name, nameEnd: i + 2 + at + len(name)})
		}
	})
	return groups
}

// checkNames rejects a pattern that gives two groups the same name.
func checkNames(groups []group) error {
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g.name == "" {
			continue
		}
		if seen[g.name] {
			return &SyntaxError{
				Message: "two named subpatterns have the same name",
				Offset:  g.nameEnd,
			}
		}
		seen[g.name] = true
	}
	return nil
}

// groupName extracts the name of a named group from the text after "(?".
// at is the offset of the name within s.
func groupName(s string) (name string, at int, ok bool) {
	var closer byte
	switch {
	case strings.HasPrefix(s, "P<"):
		at, closer = 2, '>'
	case strings.HasPrefix(s, "<"):
		if strings.HasPrefix(s, "<=") || strings.HasPrefix(s, "<!") {
			return "", 0, false
		}
		at, closer = 1, '>'
	case strings.HasPrefix(s, "'"):
		at, closer = 1, '\''
	default:
		return "", 0, false
	}
	end := strings.IndexByte(s[at:], closer)
	if end <= 0 {
		return "", 0, false
	}
	return s[at : at+end], at, true
}

// structureError finds an unbalanced parenthesis or an unterminated class or
// comment and returns its offset: the offset of a stray ')', or the end of
// the pattern for anything left open.
func structureError(pattern string, extended bool) (int, bool) {
	depth, off := 0, -1
	walk(pattern, extended, func(i int, tok token) {
		if off >= 0 {
			return
		}
		switch tok {
		case tokOpen:
			depth++
		case tokClose:
			if depth == 0 {
				off = i
				return
			}
			depth--
		case tokUnterminated:
			off = len(pattern)
		}
	})
	if off < 0 && depth > 0 {
		off = len(pattern)
	}
	return off, off >= 0
}

type token int

const (
	tokOpen         token = iota // '(' outside a class, escape or comment
	tokClose                     // ')'
	tokUnterminated              // a class or (?# comment running off the end
)

// walk scans pattern, skipping escapes, \Q...\E quotes, character classes
// and, in extended mode, # comments. visit is called at every structural
// token.
func walk(pattern string, extended bool, visit func(i int, tok token)) {
	i := 0
	for i < len(pattern) {
		switch c := pattern[i]; {
		case c == '\\' && strings.HasPrefix(pattern[i:], `\Q`):
			_, i = quoted(pattern, i)
		case c == '\\':
			i = min(i+2, len(pattern))
		case c == '[':
			end, ok := skipClass(pattern, i)
			if !ok {
				visit(i, tokUnterminated)
			}
			i = end
		case c == '#' && extended:
			end := strings.IndexByte(pattern[i:], '\n')
			if end < 0 {
				return
			}
			i += end + 1
		case c == '(' && strings.HasPrefix(pattern[i:], "(?#"):
			end := strings.IndexByte(pattern[i:], ')')
			if end < 0 {
				visit(i, tokUnterminated)
				return
			}
			i += end + 1
		case c == '(':
			visit(i, tokOpen)
			i++
		case c == ')':
			visit(i, tokClose)
			i++
		default:
			i++
		}
	}
}

// skipClass returns the index just past the character class opening at i.
// ok is false when the class is not terminated.
func skipClass(p string, i int) (end int, ok bool) {
	j := i + 1
	if j < len(p) && p[j] == '^' {
		j++
	}
	if j < len(p) && p[j] == ']' {
		j++
	}
	for j < len(p) {
		switch {
		case strings.HasPrefix(p[j:], `\Q`):
			_, j = quoted(p, j)
		case p[j] == '\\':
			j += 2
		case strings.HasPrefix(p[j:], "[:"):
			if _, _, e, ok := posixName(p, j); ok {
				j = e
			} else {
				j++
			}
		case p[j] == ']':
			return j + 1, true
		default:
			j++
		}
	}
	return len(p), false
}

// numberGroups maps Perl group numbers to engine group numbers.
//
// The engine numbers unnamed groups before named ones, while Perl numbers
// every group by the position of its opening parenthesis. scanned is the
// left-to-right group list from scanGroups. When the scan and the engine
// disagree (constructs the scanner does not model), the engine's own
// numbering is used unchanged.
func numberGroups(re *regexp2.Regexp, scanned []group) (numbers []int, names []string) {
	native := re.GetGroupNumbers()
	known := make(map[int]bool, len(native))
	for _, n := range native {
		known[n] = true
	}

	numbers = []int{0}
	names = []string{""}
	used := map[int]bool{0: true}
	unnamed := 0
	for _, g := range scanned {
		name := g.name
		var num int
		if name == "" {
			unnamed++
			num = unnamed
		} else {
			num = re.GroupNumberFromName(name)
		}
		if !known[num] || used[num] {
			return nativeGroups(re, native)
		}
		used[num] = true
		numbers = append(numbers, num)
		names = append(names, name)
	}
	if len(numbers) != len(native) {
		return nativeGroups(re, native)
	}
	return numbers, names
}

func nativeGroups(re *regexp2.Regexp, native []int) ([]int, []string) {
	names := make([]string, len(native))
	for i, num := range native {
		if name := re.GroupNameFromNumber(num); name != strconv.Itoa(num) {
			names[i] = name
		}
	}
	return native, names
}
