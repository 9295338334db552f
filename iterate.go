package pcre

import (
	"iter"

	"github.com/coregx/pcre/internal/engine"
)

// MatchAll returns every non-overlapping match in subject, left to right.
// It returns an empty slice when nothing matches.
//
// After a non-empty match the search resumes at its end. After an empty
// match it resumes one character later, so iteration always terminates
// (at most len(subject)+1 matches) and an empty match at the very end of
// the subject is reported too.
//
// Example:
//
//	re := pcre.MustCompile(`a*`, "")
//	all, _ := re.MatchAll("baaab")
//	// spans: [0,0) [1,4) [4,4) [5,5)
func (p *Pattern) MatchAll(subject string) ([]*MatchResult, error) {
	var out []*MatchResult
	err := p.each("match all", subject, func(m *MatchResult) bool {
		out = append(out, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*MatchResult{}
	}
	return out, nil
}

// All is the lazy form of MatchAll: it yields the same matches in the same
// order and stops matching as soon as the loop body breaks. An error is
// yielded once, as the last pair, with a nil result.
//
// The Pattern must not be released or used elsewhere while the sequence is
// being iterated.
//
// Example:
//
//	for m, err := range re.All(subject) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(m.Start(), m.String())
//	}
func (p *Pattern) All(subject string) iter.Seq2[*MatchResult, error] {
	return func(yield func(*MatchResult, error) bool) {
		err := p.each("match all", subject, func(m *MatchResult) bool {
			return yield(m, nil)
		})
		if err != nil {
			yield(nil, err)
		}
	}
}

// each drives the global iteration, calling fn for every match until fn
// returns false or the subject is exhausted.
func (p *Pattern) each(op, subject string, fn func(*MatchResult) bool) error {
	code, err := p.acquire(op)
	if err != nil {
		return err
	}

	subj := engine.NewSubject(subject)
	names := code.Names()
	for offset := 0; offset <= subj.Len(); {
		raw, err := code.Match(subj, offset)
		if err != nil {
			return wrapEngine(op, err)
		}
		if raw == nil {
			return nil
		}
		if !fn(decode(subject, raw, names)) {
			return nil
		}

		start, end := raw.Ovector[0], raw.Ovector[1]
		if end > start {
			offset = end
		} else {
			offset = subj.Next(end)
		}
	}
	return nil
}
