package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/coregx/pcre"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// source is a named list of subjects, loaded on demand.
type source struct {
	name  string
	lines func() ([]string, error)
}

// sources returns the subjects of a command: the arguments, then every
// --file, or standard input when neither is given.
func (a *App) sources(args []string) []source {
	var out []source
	if len(args) > 0 {
		out = append(out, source{name: "args", lines: func() ([]string, error) { return args, nil }})
	}
	for _, path := range a.v.GetStringSlice("file") {
		out = append(out, source{name: path, lines: func() ([]string, error) {
			f, err := a.Fs.Open(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open subject file: %w", err)
			}
			defer f.Close()
			return readLines(f)
		}})
	}
	if len(out) == 0 {
		out = append(out, source{name: "stdin", lines: func() ([]string, error) { return readLines(a.In) }})
	}
	return out
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subjects: %w", err)
	}
	return lines, nil
}

// subjectFunc produces the record for one subject, or nil to skip it.
type subjectFunc func(re *pcre.Pattern, subject string) (*record, error)

// process runs fn over every subject of every source. Sources are handled
// concurrently, each goroutine with its own compiled pattern; records come
// back in source order.
func (a *App) process(ctx context.Context, pattern string, srcs []source, fn subjectFunc) ([]record, error) {
	// The first source's pattern is compiled before any input is read so a
	// bad pattern fails fast.
	first, err := a.compile(pattern)
	if err != nil {
		return nil, err
	}
	if len(srcs) == 0 {
		a.release(first)
		return nil, nil
	}

	results := make([][]record, len(srcs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range srcs {
		g.Go(func() error {
			re := first
			if i > 0 {
				var err error
				if re, err = a.compile(pattern); err != nil {
					return err
				}
			}
			defer a.release(re)

			lines, err := src.lines()
			if err != nil {
				return err
			}
			for n, line := range lines {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := fn(re, line)
				if err != nil {
					return fmt.Errorf("%s:%d: %w", src.name, n+1, err)
				}
				if rec == nil {
					continue
				}
				rec.Source, rec.Line = src.name, n+1
				results[i] = append(results[i], *rec)
			}
			a.log.Debug("Source processed", "source", src.name, "subjects", len(lines), "records", len(results[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Flatten(results), nil
}

func (a *App) release(re *pcre.Pattern) {
	if err := re.Release(); err != nil {
		a.log.Warn("Failed to release pattern", "pattern", re.String(), "err", err)
	}
}
