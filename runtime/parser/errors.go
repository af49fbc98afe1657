package parser

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a parse failure
type ErrorKind int

const (
	KindUnmatchedDelimiter  ErrorKind = iota + 1 // '(' or '"' without its closing partner
	KindUnknownCallable                          // Name after '(' is not registered
	KindUnrecognizedLiteral                      // Bare token is neither integer nor float
	KindSignatureMismatch                        // Argument types fit no overload
	KindMalformedInput                           // Not exactly one top-level expression
	KindNestingTooDeep                           // Nesting exceeds the configured limit
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnmatchedDelimiter:
		return "unmatched delimiter"
	case KindUnknownCallable:
		return "unknown callable"
	case KindUnrecognizedLiteral:
		return "unrecognized literal"
	case KindSignatureMismatch:
		return "signature mismatch"
	case KindMalformedInput:
		return "malformed input"
	case KindNestingTooDeep:
		return "nesting too deep"
	default:
		return "error"
	}
}

// Sentinels for errors.Is matching against a *ParseError
var (
	ErrUnmatchedDelimiter  = errors.New("unmatched delimiter")
	ErrUnknownCallable     = errors.New("unknown callable")
	ErrUnrecognizedLiteral = errors.New("unrecognized literal")
	ErrSignatureMismatch   = errors.New("signature mismatch")
	ErrMalformedInput      = errors.New("malformed input")
	ErrNestingTooDeep      = errors.New("nesting too deep")
)

var kindSentinels = map[ErrorKind]error{
	KindUnmatchedDelimiter:  ErrUnmatchedDelimiter,
	KindUnknownCallable:     ErrUnknownCallable,
	KindUnrecognizedLiteral: ErrUnrecognizedLiteral,
	KindSignatureMismatch:   ErrSignatureMismatch,
	KindMalformedInput:      ErrMalformedInput,
	KindNestingTooDeep:      ErrNestingTooDeep,
}

// TraceFrame is one open call at the moment a parse failed
type TraceFrame struct {
	Callable  string // Name of the call being validated
	Offset    int    // Offset of its '('
	Validated int    // Arguments validated so far
	Arity     int    // Top-level arguments in its span
}

// ParseError represents a rejected expression. It keeps the source and the
// exact offending byte offset so that callers can render a diagnostic or
// correct the input and retry.
type ParseError struct {
	Kind        ErrorKind
	Message     string
	Source      string
	Offset      int          // Byte offset of the offending character
	Callable    string       // Callable involved, if any
	Suggestions []string     // Registered names close to an unknown callable
	Hint        string       // How to fix it
	Trace       []TraceFrame // Open calls, innermost first
	cause       error
}

// Error returns "kind at offset N: message"
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Message)
}

// Is matches the sentinel for the error's kind
func (e *ParseError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// Unwrap exposes the registry error behind a signature mismatch
func (e *ParseError) Unwrap() error {
	return e.cause
}

// Position converts the byte offset into a 1-based line and column.
// Columns count runes, not bytes. Offsets past the end clamp to the end.
func (e *ParseError) Position() (line, column int) {
	return position(e.Source, e.Offset)
}

// AsParseError extracts a *ParseError from err's chain
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
