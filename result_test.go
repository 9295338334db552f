package pcre

import (
	"errors"
	"testing"

	"github.com/coregx/pcre/internal/engine"
	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	raw := &engine.RawMatch{Ovector: []int{1, 8, 1, 4, -1, -1, 5, 8}}
	m := decode("xabc-def", raw, []string{"", "first", "", "last"})

	want := []MatchGroup{
		{Start: 1, End: 8, Text: "abc-def", Index: 0},
		{Start: 1, End: 4, Text: "abc", Name: "first", Index: 1},
		{Start: Unset, End: Unset, Index: 2},
		{Start: 5, End: 8, Text: "def", Name: "last", Index: 3},
	}
	if diff := cmp.Diff(want, m.Groups()); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	if m.Len() != 4 {
		t.Errorf("Len() = %d, want 4", m.Len())
	}
	if diff := cmp.Diff([]string{"first", "last"}, m.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	if m.Start() != 1 || m.End() != 8 || m.String() != "abc-def" {
		t.Errorf("Start/End/String = %d/%d/%q", m.Start(), m.End(), m.String())
	}
}

func TestDuplicateNamesRejected(t *testing.T) {
	re, err := Compile(`(?<n>a)|(?<n>b)`, "")
	if err == nil {
		re.Release()
		t.Fatal("Compile succeeded, want duplicate name error")
	}
	var cerr *CompileError
	if !errors.As(err, &cerr) || cerr.Offset != 12 {
		t.Errorf("Compile error = %v, want CompileError at offset 12", err)
	}
}

func TestUnsetVersusEmpty(t *testing.T) {
	re := MustCompile(`(a)(x?)(y)?`, "")
	defer re.Release()

	m, err := re.Match("a")
	if err != nil || m == nil {
		t.Fatalf("Match = %v, %v", m, err)
	}

	empty := m.Group(2)
	if !empty.Matched() || empty.Start != 1 || empty.End != 1 {
		t.Errorf("empty group = %+v, want matched at 1", empty)
	}
	unset := m.Group(3)
	if unset.Matched() || unset.Start != Unset || unset.End != Unset || unset.Text != "" {
		t.Errorf("unset group = %+v", unset)
	}
}

func TestGet(t *testing.T) {
	re := MustCompile(`(?<year>\d{4})-(?<month>\d{2})`, "")
	defer re.Release()

	m, _ := re.Match("on 2024-06-01")

	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"0", "2024-06", true},
		{"1", "2024", true},
		{"year", "2024", true},
		{"2", "06", true},
		{"month", "06", true},
		{"3", "", false},
		{"day", "", false},
		{"-1", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		g, ok := m.Get(tt.key)
		if ok != tt.ok || g.Text != tt.want {
			t.Errorf("Get(%q) = %q, %v, want %q, %v", tt.key, g.Text, ok, tt.want, tt.ok)
		}
	}

	byIndex, _ := m.Get("1")
	byName, _ := m.Get("year")
	if diff := cmp.Diff(byIndex, byName); diff != "" {
		t.Errorf("Get(1) and Get(year) differ (-index +name):\n%s", diff)
	}
}

func TestGroupPanicsOutOfRange(t *testing.T) {
	re := MustCompile(`a`, "")
	defer re.Release()
	m, _ := re.Match("a")

	defer func() {
		if recover() == nil {
			t.Error("Group(1) did not panic")
		}
	}()
	m.Group(1)
}

func TestExpand(t *testing.T) {
	re := MustCompile(`(?<user>\w+)@(\w+)(\.org)?`, "")
	defer re.Release()
	m, _ := re.Match("mail bob@example now")

	tests := []struct {
		tmpl string
		want string
	}{
		{"$user at $2", "bob at example"},
		{"${1}$$[$3]", "bob$[]"},
		{"$0", "bob@example"},
	}
	for _, tt := range tests {
		got, err := m.Expand(tt.tmpl)
		if err != nil {
			t.Errorf("Expand(%q) error: %v", tt.tmpl, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.tmpl, got, tt.want)
		}
	}

	if _, err := m.Expand("$9"); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("Expand($9) error = %v, want ErrUnknownGroup", err)
	}
	if _, err := m.Expand("${"); !errors.Is(err, ErrBadReplacement) {
		t.Errorf("Expand(${) error = %v, want ErrBadReplacement", err)
	}
}
