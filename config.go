package pcre

import (
	"log/slog"

	"github.com/coregx/pcre/internal/engine"
)

// Config controls optional compile-time behavior.
//
// Example:
//
//	config := pcre.DefaultConfig()
//	config.EnablePrefilter = false
//	re, err := pcre.CompileWithConfig(`error|warning`, "", config)
type Config struct {
	// EnablePrefilter screens subjects with an Aho-Corasick automaton when
	// the pattern is a plain alternation of literals. Patterns compiled with
	// the i or x flag never use it.
	// Default: true
	EnablePrefilter bool

	// MinLiteralLen is the shortest alternative the prefilter accepts.
	// Default: 1
	MinLiteralLen int

	// MaxLiterals is the largest number of alternatives the prefilter accepts.
	// Default: 256
	MaxLiterals int

	// Logger receives debug records for compile and release.
	// Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnablePrefilter: true,
		MinLiteralLen:   1,
		MaxLiterals:     256,
	}
}

// Validate checks if the configuration is valid.
//
// Valid ranges, checked only when EnablePrefilter is set:
//   - MinLiteralLen: 1 to 64
//   - MaxLiterals: 1 to 1,000
func (c Config) Validate() error {
	if !c.EnablePrefilter {
		return nil
	}
	if c.MinLiteralLen < 1 || c.MinLiteralLen > 64 {
		return &ConfigError{
			Field:   "MinLiteralLen",
			Message: "must be between 1 and 64",
		}
	}
	if c.MaxLiterals < 1 || c.MaxLiterals > 1_000 {
		return &ConfigError{
			Field:   "MaxLiterals",
			Message: "must be between 1 and 1,000",
		}
	}
	return nil
}

func (c Config) engine() engine.Config {
	return engine.Config{
		EnablePrefilter: c.EnablePrefilter,
		MinLiteralLen:   c.MinLiteralLen,
		MaxLiterals:     c.MaxLiterals,
	}
}

var discard = slog.New(slog.DiscardHandler)

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return discard
	}
	return c.Logger
}
