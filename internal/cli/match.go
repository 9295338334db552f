package cli

import (
	"context"

	"github.com/coregx/pcre"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func (a *App) matchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match PATTERN [SUBJECT...]",
		Short: "Print the first match in each subject",
		Long: `Print every subject that matches PATTERN, with its first match
highlighted and the capture groups listed below it.

Exits with status 1 when no subject matched.

Examples:
  pcre match '(?<year>\d{4})-(?<month>\d{2})' 2024-05-17
  pcre -F i match error < app.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMatch(cmd.Context(), args[0], args[1:], false)
		},
	}
}

func (a *App) allCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all PATTERN [SUBJECT...]",
		Short: "Print every match in each subject",
		Long: `Print every subject that matches PATTERN, with all of its
non-overlapping matches. Empty matches advance by one character.

Exits with status 1 when no subject matched.

Examples:
  pcre all '\d+' a1b22c333
  pcre all -o json 'a*' baaab`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMatch(cmd.Context(), args[0], args[1:], true)
		},
	}
}

func (a *App) runMatch(ctx context.Context, pattern string, subjects []string, global bool) error {
	p, err := a.printer()
	if err != nil {
		return err
	}

	records, err := a.process(ctx, pattern, a.sources(subjects), func(re *pcre.Pattern, subject string) (*record, error) {
		matches, err := find(re, subject, global)
		if err != nil || len(matches) == 0 {
			return nil, err
		}
		return &record{
			Subject: subject,
			Matches: lo.Map(matches, func(m *pcre.MatchResult, _ int) matchRecord { return newMatchRecord(m) }),
		}, nil
	})
	if err != nil {
		return err
	}

	if err := p.print(records, modeMatch); err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrNoMatch
	}
	return nil
}

// find returns the first match, or every match when global is set.
func find(re *pcre.Pattern, subject string, global bool) ([]*pcre.MatchResult, error) {
	if global {
		return re.MatchAll(subject)
	}
	m, err := re.Match(subject)
	if err != nil || m == nil {
		return nil, err
	}
	return []*pcre.MatchResult{m}, nil
}
