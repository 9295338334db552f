package pcre

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/coregx/pcre/internal/engine"
)

var (
	// ErrReleased is wrapped by a UsageError when a Pattern is used after
	// Release.
	ErrReleased = errors.New("pattern used after release")

	// ErrNotInitialized is wrapped by a UsageError when Compile is called
	// before Init has completed.
	ErrNotInitialized = errors.New("library not initialized")
)

// Engine failures, wrapped by EngineError.
var (
	ErrBadOffset      = engine.ErrBadOffset
	ErrBadUTFOffset   = engine.ErrBadUTFOffset
	ErrBadUTF         = engine.ErrBadUTF
	ErrMatchLimit     = engine.ErrMatchLimit
	ErrUnknownGroup   = engine.ErrUnknownGroup
	ErrBadReplacement = engine.ErrBadReplacement
)

// CompileError reports a pattern that failed to compile.
//
// Example:
//
//	_, err := pcre.Compile(`a(b`, "")
//	var cerr *pcre.CompileError
//	if errors.As(err, &cerr) {
//	    fmt.Println(cerr.Offset, cerr.Message)
//	}
type CompileError struct {
	Pattern string
	Message string
	// Offset is the byte offset in Pattern at which compilation failed.
	Offset int
	Err    error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return "pcre: compile " + strconv.Quote(e.Pattern) + ": " + e.Message + " at offset " + strconv.Itoa(e.Offset)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// UsageError reports an API misuse: a released Pattern or a missing Init.
type UsageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return "pcre: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *UsageError) Unwrap() error {
	return e.Err
}

// EngineError reports a failure of the matching engine other than "no match".
type EngineError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return "pcre: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// FlagError reports an unrecognized flag character.
type FlagError struct {
	Flags string
	Char  rune
	// Pos is the byte offset of Char in Flags.
	Pos int
}

// Error implements the error interface.
func (e *FlagError) Error() string {
	return fmt.Sprintf("pcre: unknown flag %q at position %d in %q", e.Char, e.Pos, e.Flags)
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "pcre: invalid config: " + e.Field + ": " + e.Message
}

// wrapEngine converts an engine failure into the public error taxonomy.
func wrapEngine(op string, err error) error {
	if errors.Is(err, engine.ErrFreed) {
		return &UsageError{Op: op, Err: ErrReleased}
	}
	return &EngineError{Op: op, Err: err}
}
