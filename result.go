package pcre

import (
	"strconv"

	"github.com/coregx/pcre/internal/engine"
	"github.com/coregx/pcre/internal/template"
)

// Unset is the Start and End of a group that did not participate in a match.
const Unset = -1

// MatchGroup is one capture group of a match. Offsets are byte offsets into
// the subject; End is exclusive.
type MatchGroup struct {
	Start int
	End   int
	Text  string
	// Name is the group name, or "" for an unnamed group.
	Name  string
	Index int
}

// Matched reports whether the group participated in the match. A group that
// matched the empty string is Matched with Start == End.
func (g MatchGroup) Matched() bool {
	return g.Start != Unset
}

// MatchResult is a single match: groups 0..N, where group 0 is the whole
// match, plus a name index for named groups. It holds no reference to the
// Pattern and stays valid after Release.
type MatchResult struct {
	groups []MatchGroup
	names  map[string]int
}

// decode converts a raw engine match into a MatchResult. names[i] is the
// name of group i or "".
func decode(subject string, raw *engine.RawMatch, names []string) *MatchResult {
	n := len(raw.Ovector) / 2
	m := &MatchResult{groups: make([]MatchGroup, n)}
	for i := range n {
		g := MatchGroup{Start: Unset, End: Unset, Index: i}
		if i < len(names) {
			g.Name = names[i]
		}
		if start, end := raw.Ovector[2*i], raw.Ovector[2*i+1]; start >= 0 {
			g.Start, g.End, g.Text = start, end, subject[start:end]
		}
		m.groups[i] = g

		if g.Name == "" {
			continue
		}
		if m.names == nil {
			m.names = make(map[string]int)
		}
		m.names[g.Name] = i
	}
	return m
}

// Len returns the number of groups, including group 0.
func (m *MatchResult) Len() int {
	return len(m.groups)
}

// Group returns group i. It panics if i is out of range, like a slice index.
func (m *MatchResult) Group(i int) MatchGroup {
	return m.groups[i]
}

// Named returns the group called name. Group names are unique within a
// pattern.
func (m *MatchResult) Named(name string) (MatchGroup, bool) {
	i, ok := m.names[name]
	if !ok {
		return MatchGroup{}, false
	}
	return m.groups[i], true
}

// Get resolves key as a group index when it is a decimal number and as a
// group name otherwise.
//
// Example:
//
//	m, _ := re.Match("2024-06")         // re: (?<year>\d+)-(\d+)
//	y1, _ := m.Get("1")
//	y2, _ := m.Get("year")              // y1 == y2
func (m *MatchResult) Get(key string) (MatchGroup, bool) {
	if i, err := strconv.Atoi(key); err == nil && isDecimal(key) {
		if i >= len(m.groups) {
			return MatchGroup{}, false
		}
		return m.groups[i], true
	}
	return m.Named(key)
}

func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// Groups returns a copy of all groups in index order.
func (m *MatchResult) Groups() []MatchGroup {
	return append([]MatchGroup(nil), m.groups...)
}

// Names returns the group names that occur in the match's pattern, in group
// order.
func (m *MatchResult) Names() []string {
	var out []string
	for _, g := range m.groups {
		if g.Name != "" {
			out = append(out, g.Name)
		}
	}
	return out
}

// Start returns the start offset of the whole match.
func (m *MatchResult) Start() int {
	return m.groups[0].Start
}

// End returns the end offset of the whole match.
func (m *MatchResult) End() int {
	return m.groups[0].End
}

// String returns the text of the whole match.
func (m *MatchResult) String() string {
	return m.groups[0].Text
}

// Expand expands a replacement template (basic substitution syntax: $$, $n,
// ${n}, $name, ${name}) against the match. Unset groups expand to "".
// References to groups the pattern does not have fail with ErrUnknownGroup.
func (m *MatchResult) Expand(tmpl string) (string, error) {
	t, err := template.Parse(tmpl, false)
	if err != nil {
		return "", &EngineError{Op: "expand", Err: err}
	}
	out, err := t.Expand(nil, resultCaptures{m}, false)
	if err != nil {
		return "", &EngineError{Op: "expand", Err: err}
	}
	return string(out), nil
}

type resultCaptures struct {
	m *MatchResult
}

func (c resultCaptures) Lookup(ref template.Ref) (text string, set, known bool) {
	m := c.m
	var g MatchGroup
	if ref.Index >= 0 {
		if ref.Index >= len(m.groups) {
			return "", false, false
		}
		g = m.groups[ref.Index]
	} else if g, known = m.Named(ref.Name); !known {
		return "", false, false
	}
	return g.Text, g.Matched(), true
}
