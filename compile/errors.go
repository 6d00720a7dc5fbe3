package compile

import (
	"fmt"

	"github.com/dekarrin/neotoma"
	"github.com/dekarrin/rosed"
)

// file errors.go contains the structured diagnostics produced while
// compiling a grammar. Any Error aborts compilation for the whole
// grammar; there is no partial output.

// Code identifies which compile-time failure mode a diagnostic is.
type Code int

const (
	// CodeUnknown is the zero Code and is never produced.
	CodeUnknown Code = iota

	// CodeUndefined is a reference to a non-terminal that is not
	// declared anywhere in the grammar.
	CodeUndefined

	// CodeRedefined is a second declaration of an already-declared
	// non-terminal.
	CodeRedefined

	// CodeEmptyParser is a non-terminal declared with no rules.
	CodeEmptyParser

	// CodeEmptyProduction is a production with no parts.
	CodeEmptyProduction

	// CodeBadLiteral is a literal terminal of a form the token model
	// cannot match.
	CodeBadLiteral

	// CodePatternMismatch is a capture unification failure between two
	// named captures with different patterns.
	CodePatternMismatch

	// CodeCaptureMismatch is a capture unification failure between two
	// captures whose shapes cannot be reconciled.
	CodeCaptureMismatch

	// CodeBadCapturePattern is a named-capture pattern that is not a
	// single identifier in a position that requires one.
	CodeBadCapturePattern

	// CodeUnknownReturn is a `return` naming a non-terminal that is
	// not declared.
	CodeUnknownReturn
)

func (c Code) String() string {
	switch c {
	case CodeUndefined:
		return "undefined non-terminal"
	case CodeRedefined:
		return "redefined non-terminal"
	case CodeEmptyParser:
		return "empty parser"
	case CodeEmptyProduction:
		return "empty production"
	case CodeBadLiteral:
		return "unsupported literal"
	case CodePatternMismatch:
		return "pattern mismatch"
	case CodeCaptureMismatch:
		return "capture mismatch"
	case CodeBadCapturePattern:
		return "bad capture pattern"
	case CodeUnknownReturn:
		return "unknown return"
	default:
		return "unknown error"
	}
}

// Error is a compile-time diagnostic. It carries the failure mode, a
// message, and the source span of the offending AST node so that
// surrounding tooling can point at the user's grammar.
type Error struct {
	Code Code
	Span neotoma.Span

	message string
}

func errorf(code Code, span neotoma.Span, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Span:    span,
		message: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	if e.Span.Empty() && e.Span.Start == 0 {
		return fmt.Sprintf("grammar error: %s", e.message)
	}
	return fmt.Sprintf("grammar error: at %s: %s", e.Span, e.message)
}

// Message returns the diagnostic text without the location prefix.
func (e *Error) Message() string {
	return e.message
}

// FullMessage renders the complete diagnostic wrapped to a standard
// console width.
func (e *Error) FullMessage() string {
	return rosed.Edit(e.Error()).Wrap(80).String()
}
