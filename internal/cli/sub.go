package cli

import (
	"context"

	"github.com/coregx/pcre"
	"github.com/spf13/cobra"
)

type subOptions struct {
	global          bool
	offset          int
	extended        bool
	literal         bool
	unknownUnset    bool
	replacementOnly bool
}

func (o subOptions) options(re *pcre.Pattern) pcre.SubstituteOptions {
	var opts pcre.SubstituteOptions
	if o.global || re.Flags().Has(pcre.FlagGlobal) {
		opts |= pcre.SubstituteGlobal
	}
	if o.extended {
		opts |= pcre.SubstituteExtended
	}
	if o.literal {
		opts |= pcre.SubstituteLiteral
	}
	if o.unknownUnset {
		opts |= pcre.SubstituteUnknownUnset
	}
	if o.replacementOnly {
		opts |= pcre.SubstituteReplacementOnly
	}
	return opts
}

func (a *App) subCmd() *cobra.Command {
	var o subOptions
	cmd := &cobra.Command{
		Use:   "sub PATTERN REPLACEMENT [SUBJECT...]",
		Short: "Substitute matches of PATTERN with REPLACEMENT",
		Long: `Print each subject with the first match of PATTERN replaced, or
every match with --global or the g flag. Subjects without a match are
printed unchanged.

REPLACEMENT may reference groups as $n, ${n}, $name or ${name}; $$ is a
literal dollar. --extended adds \n \t escapes, case forcing with \U \L \E
\u \l, and the conditional forms ${n:-default} and ${n:+set:unset}.

Examples:
  pcre sub --global '(\d+)' '[$1]' a1b22c
  pcre sub -x '(?<first>\w+) (?<last>\w+)' '\U$last\E, $first' 'ada lovelace'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSub(cmd.Context(), args[0], args[1], args[2:], o)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&o.global, "global", "g", false, "replace every match")
	f.IntVar(&o.offset, "offset", 0, "byte offset at which the search starts")
	f.BoolVarP(&o.extended, "extended", "x", false, "enable the extended replacement syntax")
	f.BoolVar(&o.literal, "literal", false, "insert REPLACEMENT verbatim")
	f.BoolVar(&o.unknownUnset, "unknown-unset", false, "treat references to unknown groups as unset")
	f.BoolVar(&o.replacementOnly, "replacement-only", false, "print only the replacements")
	return cmd
}

func (a *App) runSub(ctx context.Context, pattern, replacement string, subjects []string, o subOptions) error {
	p, err := a.printer()
	if err != nil {
		return err
	}

	records, err := a.process(ctx, pattern, a.sources(subjects), func(re *pcre.Pattern, subject string) (*record, error) {
		out, ok, err := re.SubstituteAt(subject, replacement, o.offset, o.options(re))
		if err != nil {
			return nil, err
		}
		if !ok {
			out = subject
		}
		return &record{Subject: subject, Result: &out}, nil
	})
	if err != nil {
		return err
	}
	return p.print(records, modeSub)
}
