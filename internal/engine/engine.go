// Package engine is the matching primitive behind package pcre.
//
// It compiles patterns with a Perl5-compatible backtracking engine
// (github.com/dlclark/regexp2) and exposes the three capabilities the
// wrapper needs:
//
//   - Compile: pattern + option bits -> *Code
//   - (*Code).Match: one match at a byte offset -> *RawMatch (an ovector)
//   - (*Code).Substitute: native single or global substitution
//
// The engine works on characters; Code converts every position to byte
// offsets before returning, and capture groups are numbered left to right by
// opening parenthesis as in Perl, whatever the engine's native numbering is.
//
// Thread safety: a Code is not safe for concurrent use. The owner must
// serialize Match, Substitute and Free.
package engine

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"github.com/coregx/pcre/internal/conv"
	"github.com/dlclark/regexp2"
)

// Options holds compile option bits. The values follow the PCRE2 ABI so that
// option words built for PCRE2 can be passed through unchanged.
type Options uint32

const (
	Caseless      Options = 0x00000008 // i
	DotAll        Options = 0x00000020 // s
	Extended      Options = 0x00000080 // x
	Multiline     Options = 0x00000400 // m
	NoAutoCapture Options = 0x00002000 // n
	UTF           Options = 0x00080000 // u: subjects must be valid UTF-8
)

func (o Options) regexp2() regexp2.RegexOptions {
	ro := regexp2.None
	if o&Caseless != 0 {
		ro |= regexp2.IgnoreCase
	}
	if o&DotAll != 0 {
		ro |= regexp2.Singleline
	}
	if o&Extended != 0 {
		ro |= regexp2.IgnorePatternWhitespace
	}
	if o&Multiline != 0 {
		ro |= regexp2.Multiline
	}
	if o&NoAutoCapture != 0 {
		ro |= regexp2.ExplicitCapture
	}
	return ro
}

var (
	// ErrFreed is returned by every operation on a Code after Free.
	ErrFreed = errors.New("compiled pattern has been freed")

	// ErrBadOffset reports a start offset outside the subject.
	ErrBadOffset = errors.New("bad offset value")

	// ErrBadUTFOffset reports a start offset inside a UTF-8 sequence.
	ErrBadUTFOffset = errors.New("offset in UTF-8 string not at start of a character")

	// ErrBadUTF reports an invalid UTF-8 subject under the UTF option.
	ErrBadUTF = errors.New("UTF-8 error: invalid subject")

	// ErrMatchLimit reports that the engine gave up on a match attempt.
	ErrMatchLimit = errors.New("match limit exceeded")
)

// SyntaxError describes a pattern that failed to compile.
type SyntaxError struct {
	Message string
	// Offset is the byte offset in the pattern where the error was detected.
	Offset int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Message, e.Offset)
}

// Config tunes optional engine behavior.
type Config struct {
	// EnablePrefilter enables the Aho-Corasick prefilter for patterns that
	// are a plain alternation of literals.
	EnablePrefilter bool

	// MinLiteralLen is the shortest literal the prefilter accepts.
	MinLiteralLen int

	// MaxLiterals caps the number of alternatives the prefilter accepts.
	MaxLiterals int
}

// Stats tracks execution counters for one Code.
type Stats struct {
	// Matches counts successful match attempts.
	Matches uint64

	// Misses counts match attempts that found nothing.
	Misses uint64

	// PrefilterRejects counts misses decided by the prefilter alone.
	PrefilterRejects uint64

	// Substitutions counts replaced matches.
	Substitutions uint64
}

// RawMatch is the engine's view of one match: pairs of byte offsets, one per
// capture group including group 0. Unset groups hold -1, -1.
type RawMatch struct {
	Ovector []int
}

// Code is a compiled pattern.
type Code struct {
	re   *regexp2.Regexp
	opts Options

	// numbers[i] is the engine group number of Perl group i.
	numbers []int
	// names[i] is the name of Perl group i, "" when unnamed.
	names   []string
	byName  map[string]int
	prefilt *prefilter
	stats   Stats
}

// Compile compiles pattern with the given options.
// On failure the error is a *SyntaxError.
func Compile(pattern string, opts Options, cfg Config) (*Code, error) {
	extended := opts&Extended != 0
	src, err := translate(pattern, extended)
	if err != nil {
		return nil, err
	}
	groups := scanGroups(pattern, opts)
	if err := checkNames(groups); err != nil {
		return nil, err
	}

	re, err := regexp2.Compile(src, opts.regexp2())
	if err != nil {
		msg := strings.TrimPrefix(err.Error(), "error parsing regexp: ")
		return nil, &SyntaxError{
			Message: strings.TrimSuffix(msg, " in `"+src+"`"),
			Offset:  errorOffset(pattern, extended),
		}
	}

	numbers, names := numberGroups(re, groups)
	byName := make(map[string]int)
	for i, name := range names {
		if name == "" {
			continue
		}
		if _, dup := byName[name]; !dup {
			byName[name] = i
		}
	}

	return &Code{
		re:      re,
		opts:    opts,
		numbers: numbers,
		names:   names,
		byName:  byName,
		prefilt: buildPrefilter(pattern, opts, cfg),
	}, nil
}

// Free releases the compiled program. Any later call returns ErrFreed.
func (c *Code) Free() {
	c.re = nil
	c.prefilt = nil
}

// NumGroups returns the number of groups including group 0.
func (c *Code) NumGroups() int {
	return len(c.numbers)
}

// Names returns the name table: Names()[i] is the name of group i, or "".
// The slice is shared and must not be modified.
func (c *Code) Names() []string {
	return c.names
}

// GroupIndex returns the index of the first group called name, or -1.
func (c *Code) GroupIndex(name string) int {
	if i, ok := c.byName[name]; ok {
		return i
	}
	return -1
}

// HasPrefilter reports whether matches are screened by a literal prefilter.
func (c *Code) HasPrefilter() bool {
	return c.prefilt != nil
}

// Stats returns a snapshot of the execution counters.
func (c *Code) Stats() Stats {
	return c.stats
}

// Subject is a subject string prepared for repeated matching.
type Subject struct {
	text  string
	idx   *conv.Index
	valid bool
	bytes []byte
}

// NewSubject prepares s for matching.
func NewSubject(s string) *Subject {
	return &Subject{
		text:  s,
		idx:   conv.NewIndex(s),
		valid: utf8.ValidString(s),
	}
}

// String returns the subject text.
func (s *Subject) String() string {
	return s.text
}

// Len returns the subject length in bytes.
func (s *Subject) Len() int {
	return len(s.text)
}

// Next returns the byte offset one character past off, or Len()+1 at the end.
func (s *Subject) Next(off int) int {
	return s.idx.Next(off)
}

func (s *Subject) raw() []byte {
	if s.bytes == nil {
		s.bytes = []byte(s.text)
	}
	return s.bytes
}

// checkOffset validates a start offset and converts it to a character position.
func (c *Code) checkOffset(s *Subject, offset int) (int, error) {
	if c.re == nil {
		return 0, ErrFreed
	}
	if offset < 0 || offset > s.Len() {
		return 0, ErrBadOffset
	}
	if c.opts&UTF != 0 && !s.valid {
		return 0, ErrBadUTF
	}
	pos, ok := s.idx.RuneOffset(offset)
	if !ok {
		return 0, ErrBadUTFOffset
	}
	return pos, nil
}

// Match finds the leftmost match starting the search at byte offset offset.
// Text before offset is still visible to lookbehind and anchors.
// A nil match with a nil error means no match.
func (c *Code) Match(s *Subject, offset int) (*RawMatch, error) {
	pos, err := c.checkOffset(s, offset)
	if err != nil {
		return nil, err
	}

	if c.prefilt != nil && !c.prefilt.candidate(s.raw(), offset) {
		c.stats.Misses++
		c.stats.PrefilterRejects++
		return nil, nil
	}

	m, err := c.re.FindRunesMatchStartingAt(s.idx.Runes, pos)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMatchLimit, err)
	}
	if m == nil {
		c.stats.Misses++
		return nil, nil
	}
	c.stats.Matches++

	ov := make([]int, 2*len(c.numbers))
	for i, num := range c.numbers {
		g := m.GroupByNumber(num)
		if g == nil || len(g.Captures) == 0 {
			ov[2*i], ov[2*i+1] = -1, -1
			continue
		}
		ov[2*i] = s.idx.ByteOffset(g.Index)
		ov[2*i+1] = s.idx.ByteOffset(g.Index + g.Length)
	}
	return &RawMatch{Ovector: ov}, nil
}

// Version returns the engine name and module version.
func Version() string {
	const module = "github.com/dlclark/regexp2"
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path != module {
				continue
			}
			if dep.Replace != nil && dep.Replace.Version != "" {
				return "regexp2 " + dep.Replace.Version
			}
			return "regexp2 " + dep.Version
		}
	}
	return "regexp2 (devel)"
}

// SelfTest compiles and runs a fixed pattern to verify the engine is usable.
func SelfTest() error {
	code, err := Compile(`(?<w>\w+)\s(\d+)`, 0, Config{})
	if err != nil {
		return fmt.Errorf("engine self-test: %w", err)
	}
	defer code.Free()

	m, err := code.Match(NewSubject("x check 42"), 0)
	if err != nil {
		return fmt.Errorf("engine self-test: %w", err)
	}
	want := []int{2, 10, 2, 7, 8, 10}
	if m == nil || len(m.Ovector) != len(want) {
		return errors.New("engine self-test: fixed pattern did not match")
	}
	for i := range want {
		if m.Ovector[i] != want[i] {
			return fmt.Errorf("engine self-test: ovector %v, want %v", m.Ovector, want)
		}
	}
	return nil
}
