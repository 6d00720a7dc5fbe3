package neotoma

import "fmt"

// Span is a half-open range of byte offsets into the source text that a
// token, AST node, or error covers. Start and End are 0-indexed; End is
// exclusive. A zero Span covers nothing at the start of input.
type Span struct {
	Start int
	End   int
}

// SpanOf returns a Span covering [start, end).
func SpanOf(start, end int) Span {
	return Span{Start: start, End: end}
}

// Empty returns whether the span covers no bytes.
func (sp Span) Empty() bool {
	return sp.End <= sp.Start
}

// Extend returns the smallest span covering both sp and o.
func (sp Span) Extend(o Span) Span {
	ext := sp
	if o.Start < ext.Start {
		ext.Start = o.Start
	}
	if o.End > ext.End {
		ext.End = o.End
	}
	return ext
}

func (sp Span) String() string {
	return fmt.Sprintf("%d..%d", sp.Start, sp.End)
}
