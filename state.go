package neotoma

import "fmt"

// Error is the single kind of runtime parse failure. It carries the
// source span the failure occurred at and nothing else; recovery and
// diagnostic presentation are grammar- and tooling-directed.
type Error struct {
	Span Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %s", e.Span)
}

// ParserState wraps a lexer with the fork-and-commit discipline the
// generated parsers use for speculation. A state never rewinds:
// alternatives are tried on forks, and a successful fork is committed
// forward with AdvanceTo while a failed one is simply discarded.
type ParserState[K any] struct {
	lex Lexer[K]
}

// NewState creates a ParserState reading tokens from the given lexer.
func NewState[K any](lex Lexer[K]) *ParserState[K] {
	return &ParserState[K]{lex: lex}
}

// Cursor returns the current cursor of the underlying lexer.
func (s *ParserState[K]) Cursor() Cursor {
	return s.lex.Cursor()
}

// IsEmpty returns whether there are no more tokens.
func (s *ParserState[K]) IsEmpty() bool {
	return s.lex.IsEmpty()
}

// Span returns the span of the most recently consumed token, or the
// empty span at the current position when nothing has been consumed.
func (s *ParserState[K]) Span() Span {
	return s.lex.Span()
}

// Fork returns an independent state aliasing the same input at the
// current cursor. Work done on the fork does not affect the receiver
// until the fork is committed with AdvanceTo.
func (s *ParserState[K]) Fork() *ParserState[K] {
	return &ParserState[K]{lex: s.lex.Fork()}
}

// AdvanceTo commits the receiver to the other state's cursor. The other
// state must not be behind the receiver; a backwards advance is a
// programming error and panics.
func (s *ParserState[K]) AdvanceTo(o *ParserState[K]) {
	cur := s.Cursor()
	target := o.Cursor()
	if target.Less(cur) {
		panic(fmt.Sprintf("parser state moved backwards: %s -> %s", cur, target))
	}
	s.lex.AdvanceToCursor(target)
}

// AdvanceToCursor commits the receiver directly to a cursor previously
// obtained from this state or one of its forks. Backwards advances
// panic.
func (s *ParserState[K]) AdvanceToCursor(c Cursor) {
	if c.Less(s.Cursor()) {
		panic(fmt.Sprintf("parser state moved backwards: %s -> %s", s.Cursor(), c))
	}
	s.lex.AdvanceToCursor(c)
}

// Err constructs a parse failure located at the state's current span.
func (s *ParserState[K]) Err() error {
	return &Error{Span: s.Span()}
}

// ParseWith consumes one token and applies the matcher to it. If the
// matcher accepts, the match result is returned; otherwise the parse
// fails at the consumed token's span. ParseWith is intended to run on a
// fork, so consuming the token on failure is harmless: the fork is
// discarded.
func ParseWith[K any, T any](s *ParserState[K], match func(K) (T, bool)) (T, error) {
	var zero T

	tok, ok := s.lex.Next()
	if !ok {
		return zero, s.Err()
	}
	v, ok := match(tok)
	if !ok {
		return zero, s.Err()
	}
	return v, nil
}
