package grammar

import (
	"github.com/dekarrin/neotoma"
)

// Literal is a literal terminal as written in a grammar: the value
// itself plus the raw source text and span for diagnostics.
type Literal struct {
	neotoma.Lit

	// Raw is the literal exactly as written in the grammar source, if
	// the front-end preserved it. It may be empty for synthesized
	// literals.
	Raw string

	Span neotoma.Span
}

// CharLiteral returns a Literal holding a character value.
func CharLiteral(c rune) Literal {
	return Literal{Lit: neotoma.CharLit(c)}
}

// StringLiteral returns a Literal holding a string value.
func StringLiteral(s string) Literal {
	return Literal{Lit: neotoma.StringLit(s)}
}

// IntLiteral returns a Literal holding an integer value.
func IntLiteral(i int64) Literal {
	return Literal{Lit: neotoma.IntLit(i)}
}

// FloatLiteral returns a Literal holding a float value.
func FloatLiteral(f float64) Literal {
	return Literal{Lit: neotoma.FloatLit(f)}
}

// BoolLiteral returns a Literal holding a boolean value.
func BoolLiteral(b bool) Literal {
	return Literal{Lit: neotoma.BoolLit(b)}
}

func (l Literal) String() string {
	if l.Raw != "" {
		return l.Raw
	}
	return l.Lit.String()
}
