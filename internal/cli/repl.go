package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/coregx/pcre"
	"github.com/spf13/cobra"
)

const replHelp = `/PATTERN/FLAGS  set the pattern (#PATTERN#FLAGS also works)
:sub TEMPLATE   substitute into the last subject
:match TEXT     match TEXT, even if it starts with a delimiter
:help           show this help
:quit           exit
anything else   match it as a subject`

var (
	errNoPattern = errors.New("no pattern; enter /pattern/flags first")
	errNoSubject = errors.New("no subject to substitute into")
)

func (a *App) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively test patterns against subjects",
		Long: `Start an interactive session. Set a pattern with /pattern/flags,
then type subjects to see what it matches.

` + replHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRepl(cmd.Context())
		},
	}
}

func (a *App) runRepl(ctx context.Context) error {
	p, err := a.printer()
	if err != nil {
		return err
	}
	cache, err := pcre.NewCache(a.v.GetInt("cache-size"), a.patternConfig())
	if err != nil {
		return err
	}
	defer cache.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt: "pcre> ",
		Stdin:  io.NopCloser(a.In),
		Stdout: a.Out,
		Stderr: a.Err,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	s := newSession(rl.Stdout(), cache, p)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) && line != "" {
				continue
			}
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		quit, err := s.handle(line)
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
		}
		if quit {
			return nil
		}
	}
}

// session is the state of an interactive session.
type session struct {
	out     io.Writer
	cache   *pcre.Cache
	printer *printer

	pattern string
	flags   string
	set     bool

	subject    string
	hasSubject bool
}

func newSession(out io.Writer, cache *pcre.Cache, p *printer) *session {
	return &session{out: out, cache: cache, printer: p}
}

// handle executes one input line and reports whether the session is over.
func (s *session) handle(line string) (bool, error) {
	switch {
	case line == ":quit" || line == ":q":
		return true, nil
	case line == ":help":
		_, err := fmt.Fprintln(s.out, replHelp)
		return false, err
	case strings.HasPrefix(line, ":sub "):
		return false, s.substitute(strings.TrimPrefix(line, ":sub "))
	case strings.HasPrefix(line, ":match "):
		return false, s.match(strings.TrimPrefix(line, ":match "))
	case strings.HasPrefix(line, "/") || strings.HasPrefix(line, "#"):
		return false, s.setPattern(line)
	}
	return false, s.match(line)
}

func (s *session) setPattern(literal string) error {
	pattern, flags, err := pcre.ParseDelimited(literal)
	if err != nil {
		return err
	}
	// Compile now so syntax errors are reported against the pattern line.
	if err := s.cache.Do(pattern, flags, func(*pcre.Pattern) error { return nil }); err != nil {
		return err
	}
	s.pattern, s.flags, s.set = pattern, flags, true
	return nil
}

func (s *session) match(subject string) error {
	if !s.set {
		return errNoPattern
	}
	s.subject, s.hasSubject = subject, true

	return s.cache.Do(s.pattern, s.flags, func(re *pcre.Pattern) error {
		matches, err := find(re, subject, re.Flags().Has(pcre.FlagGlobal))
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			_, err := fmt.Fprintln(s.out, "no match")
			return err
		}
		rec := record{Source: "repl", Subject: subject}
		for _, m := range matches {
			rec.Matches = append(rec.Matches, newMatchRecord(m))
		}
		return s.printer.print([]record{rec}, modeMatch)
	})
}

func (s *session) substitute(tmpl string) error {
	if !s.set {
		return errNoPattern
	}
	if !s.hasSubject {
		return errNoSubject
	}
	return s.cache.Do(s.pattern, s.flags, func(re *pcre.Pattern) error {
		out, err := re.Replace(s.subject, tmpl)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(s.out, out)
		return err
	})
}
