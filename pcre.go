// Package pcre provides Perl-compatible compiled-pattern matching and
// substitution for Go.
//
// A pattern is compiled once and reused for any number of match and
// substitute calls. Results report byte offsets into the subject, groups
// are numbered left to right by opening parenthesis, and named groups are
// reachable both by index and by name.
//
// Basic usage:
//
//	if err := pcre.Init(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	re, err := pcre.Compile(`(?<word>\w+)`, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer re.Release()
//
//	m, _ := re.Match("hello world")
//	fmt.Println(m.Group(0).Text) // "hello"
//
//	all, _ := re.MatchAll("hello world")      // two matches
//	out, _, _ := re.SubstituteAll("a b", "<$word>") // "<a> <b>"
//
// Resource model:
//   - Compile allocates one engine resource owned by the returned Pattern.
//   - Release (or Close) frees it. There is no finalizer.
//   - Any use after Release, including a second Release, fails with a
//     UsageError wrapping ErrReleased.
//
// A Pattern is not safe for concurrent use. Compile one Pattern per
// goroutine, or share patterns through a Cache.
package pcre

import (
	"log/slog"

	"github.com/coregx/pcre/internal/engine"
)

// Pattern is a compiled pattern.
//
// Example:
//
//	re := pcre.MustCompile(`hello`, "i")
//	defer re.Release()
//	m, _ := re.Match("Hello world")
//	// m.Group(0).Text == "Hello"
type Pattern struct {
	code    *engine.Code
	pattern string
	flags   Flags
	log     *slog.Logger
}

// Compile compiles pattern with the given flag characters (see ParseFlags)
// and the default configuration.
//
// Init must have completed first; otherwise the error is a UsageError
// wrapping ErrNotInitialized. Invalid patterns return a *CompileError
// carrying the byte offset of the failure.
//
// Example:
//
//	re, err := pcre.Compile(`\d{3}-\d{4}`, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer re.Release()
func Compile(pattern, flags string) (*Pattern, error) {
	return CompileWithConfig(pattern, flags, DefaultConfig())
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
//
// Example:
//
//	var dateRe = pcre.MustCompile(`(?<y>\d{4})-(?<m>\d{2})`, "")
func MustCompile(pattern, flags string) *Pattern {
	re, err := Compile(pattern, flags)
	if err != nil {
		panic("pcre: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles a pattern with custom configuration.
//
// Example:
//
//	config := pcre.DefaultConfig()
//	config.Logger = slog.Default()
//	re, err := pcre.CompileWithConfig(`error|warn`, "", config)
func CompileWithConfig(pattern, flags string, config Config) (*Pattern, error) {
	if !Ready() {
		return nil, &UsageError{Op: "compile", Err: ErrNotInitialized}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	f, err := ParseFlags(flags)
	if err != nil {
		return nil, err
	}

	log := config.logger()
	code, err := engine.Compile(pattern, f.options(), config.engine())
	if err != nil {
		cerr := &CompileError{Pattern: pattern, Message: err.Error(), Err: err}
		if serr, ok := err.(*engine.SyntaxError); ok {
			cerr.Message, cerr.Offset = serr.Message, serr.Offset
		}
		log.Debug("Pattern compile failed", "pattern", pattern, "flags", f.String(), "offset", cerr.Offset)
		return nil, cerr
	}

	log.Debug("Pattern compiled",
		"pattern", pattern,
		"flags", f.String(),
		"groups", code.NumGroups()-1,
		"prefilter", code.HasPrefilter())

	return &Pattern{
		code:    code,
		pattern: pattern,
		flags:   f,
		log:     log,
	}, nil
}

// Release frees the compiled pattern. Every later call on p, including a
// second Release, fails with a UsageError wrapping ErrReleased.
func (p *Pattern) Release() error {
	if p.code == nil {
		return &UsageError{Op: "release", Err: ErrReleased}
	}
	st := p.code.Stats()
	p.code.Free()
	p.code = nil
	p.log.Debug("Pattern released", "pattern", p.pattern, "matches", st.Matches, "misses", st.Misses)
	return nil
}

// Close is Release; it lets a Pattern be used as an io.Closer.
func (p *Pattern) Close() error {
	return p.Release()
}

// Released reports whether Release has been called.
func (p *Pattern) Released() bool {
	return p.code == nil
}

// acquire returns the engine resource, or a UsageError after Release.
func (p *Pattern) acquire(op string) (*engine.Code, error) {
	if p.code == nil {
		return nil, &UsageError{Op: op, Err: ErrReleased}
	}
	return p.code, nil
}

// String returns the source text used to compile the pattern.
func (p *Pattern) String() string {
	return p.pattern
}

// Flags returns the flags the pattern was compiled with.
func (p *Pattern) Flags() Flags {
	return p.flags
}

// NumSubexp returns the number of capture groups. It returns 0 after Release.
func (p *Pattern) NumSubexp() int {
	if p.code == nil {
		return 0
	}
	return p.code.NumGroups() - 1
}

// SubexpNames returns the names of the capture groups. names[0] is always ""
// and names[i] is the name of group i, or "" when unnamed. The slice is
// shared and must not be modified. It returns nil after Release.
//
// Example:
//
//	re := pcre.MustCompile(`(?<year>\d+)-(\d+)`, "")
//	names := re.SubexpNames()
//	// names[0] = ""
//	// names[1] = "year"
//	// names[2] = ""
func (p *Pattern) SubexpNames() []string {
	if p.code == nil {
		return nil
	}
	return p.code.Names()
}

// SubexpIndex returns the index of the first group called name, or -1 if
// there is none or p has been released.
func (p *Pattern) SubexpIndex(name string) int {
	if p.code == nil || name == "" {
		return -1
	}
	return p.code.GroupIndex(name)
}

// Stats holds execution counters for one Pattern.
type Stats struct {
	// Matches counts successful match attempts.
	Matches uint64

	// Misses counts match attempts that found nothing.
	Misses uint64

	// PrefilterRejects counts misses decided without running the engine.
	PrefilterRejects uint64

	// Substitutions counts replaced matches.
	Substitutions uint64
}

// Stats returns a snapshot of the pattern's execution counters, or the zero
// value after Release.
func (p *Pattern) Stats() Stats {
	if p.code == nil {
		return Stats{}
	}
	st := p.code.Stats()
	return Stats{
		Matches:          st.Matches,
		Misses:           st.Misses,
		PrefilterRejects: st.PrefilterRejects,
		Substitutions:    st.Substitutions,
	}
}

// Match returns the leftmost match in subject, or nil if there is none.
//
// Example:
//
//	re := pcre.MustCompile(`(?<word>\w+)`, "")
//	m, _ := re.Match("hello world")
//	w, _ := m.Named("word")
//	// w.Start == 0, w.End == 5, w.Text == "hello"
func (p *Pattern) Match(subject string) (*MatchResult, error) {
	return p.MatchAt(subject, 0)
}

// MatchAt returns the leftmost match that starts at or after byte offset
// offset, or nil if there is none. Text before offset is still visible to
// lookbehind assertions. offset must lie on a character boundary in
// [0, len(subject)]; otherwise the error is an EngineError.
func (p *Pattern) MatchAt(subject string, offset int) (*MatchResult, error) {
	code, err := p.acquire("match")
	if err != nil {
		return nil, err
	}
	raw, err := code.Match(engine.NewSubject(subject), offset)
	if err != nil {
		return nil, wrapEngine("match", err)
	}
	if raw == nil {
		return nil, nil
	}
	return decode(subject, raw, code.Names()), nil
}

// QuoteMeta returns a pattern that matches s literally, with or without the
// x flag. Metacharacters, ASCII whitespace, '#' and '-' are escaped; every
// other character is kept as is.
//
// Example:
//
//	escaped := pcre.QuoteMeta("1.5 # total")
//	// escaped = `1\.5\ \#\ total`
func QuoteMeta(s string) string {
	return engine.QuoteMeta(s)
}
