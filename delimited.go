package pcre

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quasilyte/regex/syntax"
)

// ParseDelimited splits a delimited pattern literal such as "/ab+c/i",
// "#a/b#" or "{a}x" into its pattern and trailing flag characters. Bracket
// delimiters close with their partner. The pattern itself is not validated.
func ParseDelimited(literal string) (pattern, flags string, err error) {
	// The literal parser refuses the x modifier, so it is stripped from the
	// trailing modifier run and re-added afterwards.
	src := literal
	mods := trailingLetters(literal)
	extended := strings.Count(mods, "x")
	if extended > 0 {
		src = literal[:len(literal)-len(mods)] + strings.ReplaceAll(mods, "x", "")
	}

	re, err := parsePCRE(src)
	if re == nil {
		if err == nil {
			err = errors.New("malformed literal")
		}
		return "", "", fmt.Errorf("pcre: delimited pattern %q: %w", literal, err)
	}
	return re.Pattern, re.Modifiers + strings.Repeat("x", extended), nil
}

// parsePCRE returns the split literal even when the pattern body is not
// understood by the literal parser; the engine is the authority on syntax.
func parsePCRE(literal string) (re *syntax.RegexpPCRE, err error) {
	defer func() {
		if r := recover(); r != nil {
			re, err = nil, fmt.Errorf("unparsable literal: %v", r)
		}
	}()
	return syntax.NewParser(nil).ParsePCRE(literal)
}

func trailingLetters(s string) string {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		i--
	}
	return s[i:]
}

// CompileDelimited compiles a delimited pattern literal such as "/\d+/g".
//
// Example:
//
//	re, err := pcre.CompileDelimited(`/(?<n>\d+)/g`)
func CompileDelimited(literal string) (*Pattern, error) {
	pattern, flags, err := ParseDelimited(literal)
	if err != nil {
		return nil, err
	}
	return Compile(pattern, flags)
}
