package neotoma

import (
	"fmt"
	"strconv"
)

// LitKind enumerates the kinds of literal values that grammars may
// write in terminal position and that token streams can be matched
// against.
type LitKind int

const (
	LitInvalid LitKind = iota
	LitBool
	LitInt
	LitFloat
	LitChar
	LitString
)

func (lk LitKind) String() string {
	switch lk {
	case LitBool:
		return "bool"
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitChar:
		return "char"
	case LitString:
		return "string"
	default:
		return "invalid"
	}
}

// Lit is a literal value from a grammar terminal. Exactly one of the
// value fields is meaningful, selected by Kind.
type Lit struct {
	Kind  LitKind
	Bool  bool
	Int   int64
	Float float64
	Char  rune
	Str   string
}

// BoolLit returns a Lit holding a boolean literal.
func BoolLit(b bool) Lit {
	return Lit{Kind: LitBool, Bool: b}
}

// IntLit returns a Lit holding an integer literal.
func IntLit(i int64) Lit {
	return Lit{Kind: LitInt, Int: i}
}

// FloatLit returns a Lit holding a float literal.
func FloatLit(f float64) Lit {
	return Lit{Kind: LitFloat, Float: f}
}

// CharLit returns a Lit holding a character literal.
func CharLit(c rune) Lit {
	return Lit{Kind: LitChar, Char: c}
}

// StringLit returns a Lit holding a string literal.
func StringLit(s string) Lit {
	return Lit{Kind: LitString, Str: s}
}

func (l Lit) String() string {
	switch l.Kind {
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LitChar:
		return strconv.QuoteRune(l.Char)
	case LitString:
		return strconv.Quote(l.Str)
	default:
		return "<invalid literal>"
	}
}

// Equal returns whether the Lit is equal to another value. The other
// value may be a Lit or a *Lit; any other type is not equal.
func (l Lit) Equal(o any) bool {
	other, ok := o.(Lit)
	if !ok {
		otherPtr, ok := o.(*Lit)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return l == other
}

// LitMatcher is implemented by custom token types that want a say in
// whether they match a grammar literal. Token types that do not
// implement it are matched by plain value comparison in MatchLit.
type LitMatcher interface {
	MatchesLit(l Lit) bool
}

// MatchLit reports whether a token matches a literal value. Custom
// token types implementing LitMatcher decide for themselves; rune
// (against char literals), string, bool, int, int64, float32, and
// float64 tokens are compared against the literal's value directly.
// Tokens of any other type match nothing.
func MatchLit[K any](tok K, l Lit) bool {
	if m, ok := any(tok).(LitMatcher); ok {
		return m.MatchesLit(l)
	}

	switch v := any(tok).(type) {
	case rune:
		return l.Kind == LitChar && v == l.Char
	case string:
		return l.Kind == LitString && v == l.Str
	case bool:
		return l.Kind == LitBool && v == l.Bool
	case int:
		return l.Kind == LitInt && int64(v) == l.Int
	case int64:
		return l.Kind == LitInt && v == l.Int
	case float32:
		return l.Kind == LitFloat && float64(v) == l.Float
	case float64:
		return l.Kind == LitFloat && v == l.Float
	default:
		return false
	}
}

// FormatToken gives a human-readable rendition of a token for error
// messages and debug output.
func FormatToken[K any](tok K) string {
	switch v := any(tok).(type) {
	case rune:
		return strconv.QuoteRune(v)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
