// Package grammar defines the abstract syntax of a neotoma grammar:
// the declarations, rules, productions, and atoms a front-end produces
// and the compiler consumes. The AST is a plain tagged-variant
// hierarchy; everything host-language-flavored in it (actions,
// patterns, return types) is carried as opaque token trees.
//
// A grammar is immutable once built. The compiler reads it exactly
// once and never writes it back.
package grammar

import (
	"strings"

	"github.com/dekarrin/neotoma"
)

// Visibility is the visibility tag of a parser declaration, forwarded
// untouched to the code emitter.
type Visibility int

const (
	// VisPrivate parsers are internal to the generated module.
	VisPrivate Visibility = iota

	// VisPublic parsers are exported from the generated module.
	VisPublic
)

func (v Visibility) String() string {
	if v == VisPublic {
		return "pub"
	}
	return ""
}

// Type is an opaque return-type token forwarded to the emitter.
type Type struct {
	Text string
	Span neotoma.Span
}

// Grammar is a complete grammar: an ordered list of parser (that is,
// non-terminal) declarations plus its configuration.
type Grammar struct {
	// Parsers holds the non-terminal declarations in source order.
	Parsers []Parser

	// Returns names the entry non-terminals, from the grammar's
	// `return` form. It may be empty, in which case an emitter exposes
	// whatever the grammar marked public.
	Returns []string

	// Options is the grammar-level configuration record.
	Options Options
}

// Parser is one non-terminal declaration: a name, a return type, and a
// non-empty ordered list of rules.
type Parser struct {
	Vis     Visibility
	Name    string
	RetType Type
	Rules   []Rule
	Span    neotoma.Span
}

// Rule is one alternative of a non-terminal: a production and the
// action expression evaluated when the production matches.
type Rule struct {
	Production Production
	Action     Expr
	Span       neotoma.Span
}

// Production is a non-empty ordered sequence of parts matched one
// after another.
type Production struct {
	Parts []Part
	Span  neotoma.Span
}

// CaptureMode is the capture marker written on a part.
type CaptureMode int

const (
	// CaptureNotSpecified leaves the atom's natural capture.
	CaptureNotSpecified CaptureMode = iota

	// CaptureLoud forces the part to contribute a value.
	CaptureLoud

	// CaptureNamed binds the part's match to a host pattern.
	CaptureNamed
)

// Part is one element of a production: an atom with a capture marker.
// Pat is set when Capture is CaptureNamed.
type Part struct {
	Capture CaptureMode
	Pat     Pattern
	Atom    Atom
}

// Plain returns a part with no capture marker.
func Plain(a Atom) Part {
	return Part{Capture: CaptureNotSpecified, Atom: a}
}

// Loud returns a part whose match is forced loud.
func Loud(a Atom) Part {
	return Part{Capture: CaptureLoud, Atom: a}
}

// Named returns a part whose match is bound to the given pattern.
func Named(pat Pattern, a Atom) Part {
	return Part{Capture: CaptureNamed, Pat: pat, Atom: a}
}

// AtomKind discriminates the Atom variants.
type AtomKind int

const (
	// AtomTerminal consumes one token matching a literal.
	AtomTerminal AtomKind = iota

	// AtomPatTerminal consumes one token matching a host pattern.
	AtomPatTerminal

	// AtomNonTerminal invokes another parser by name.
	AtomNonTerminal

	// AtomSub is a parenthesized sub-production.
	AtomSub

	// AtomChoice is an ordered choice among productions.
	AtomChoice

	// AtomRepeat matches its inner atom zero or more times.
	AtomRepeat

	// AtomRepeat1 matches its inner atom one or more times.
	AtomRepeat1

	// AtomOptional matches its inner atom zero or one time.
	AtomOptional

	// AtomLookAhead matches iff its inner atom matches, consuming
	// nothing.
	AtomLookAhead

	// AtomLookAheadNot matches iff its inner atom does not match,
	// consuming nothing.
	AtomLookAheadNot
)

// Atom is the smallest matchable unit of a production. It is a flat
// tagged variant; the fields that are meaningful depend on Kind.
type Atom struct {
	Kind AtomKind

	// Lit is set for AtomTerminal.
	Lit Literal

	// Pat is set for AtomPatTerminal.
	Pat Pattern

	// Name is set for AtomNonTerminal.
	Name string

	// Sub is set for AtomSub.
	Sub *Production

	// Alts is set for AtomChoice. It is non-empty; the first element
	// is the first alternative.
	Alts []*Production

	// Inner is set for the wrapping kinds (repeat, optional,
	// lookahead).
	Inner *Atom

	Span neotoma.Span
}

// Terminal returns an atom consuming one token equal to the literal.
func Terminal(lit Literal) Atom {
	return Atom{Kind: AtomTerminal, Lit: lit, Span: lit.Span}
}

// PatTerminal returns an atom consuming one token matching the
// pattern.
func PatTerminal(pat Pattern) Atom {
	return Atom{Kind: AtomPatTerminal, Pat: pat, Span: pat.Span}
}

// NonTerminal returns an atom invoking the named parser.
func NonTerminal(name string) Atom {
	return Atom{Kind: AtomNonTerminal, Name: name}
}

// Sub returns an atom matching a parenthesized sub-production.
func Sub(p Production) Atom {
	return Atom{Kind: AtomSub, Sub: &p, Span: p.Span}
}

// ChoiceOf returns an atom matching the first of the given productions
// to succeed, tried in order.
func ChoiceOf(first Production, rest ...Production) Atom {
	alts := make([]*Production, 0, len(rest)+1)
	alts = append(alts, &first)
	for i := range rest {
		r := rest[i]
		alts = append(alts, &r)
	}
	return Atom{Kind: AtomChoice, Alts: alts, Span: first.Span}
}

// Repeat returns an atom matching the inner atom zero or more times.
func Repeat(a Atom) Atom {
	return Atom{Kind: AtomRepeat, Inner: &a, Span: a.Span}
}

// Repeat1 returns an atom matching the inner atom one or more times.
func Repeat1(a Atom) Atom {
	return Atom{Kind: AtomRepeat1, Inner: &a, Span: a.Span}
}

// Optional returns an atom matching the inner atom zero or one time.
func Optional(a Atom) Atom {
	return Atom{Kind: AtomOptional, Inner: &a, Span: a.Span}
}

// LookAhead returns a zero-width atom matching iff the inner atom
// matches.
func LookAhead(a Atom) Atom {
	return Atom{Kind: AtomLookAhead, Inner: &a, Span: a.Span}
}

// LookAheadNot returns a zero-width atom matching iff the inner atom
// does not match.
func LookAheadNot(a Atom) Atom {
	return Atom{Kind: AtomLookAheadNot, Inner: &a, Span: a.Span}
}

// Prod builds a production from parts.
func Prod(parts ...Part) Production {
	return Production{Parts: parts}
}

// RuleOf builds a rule from a production and an action expression.
func RuleOf(p Production, action Expr) Rule {
	return Rule{Production: p, Action: action}
}

// String renders the grammar in a canonical surface-like syntax. The
// rendition leaves out source spans and Options, so two grammars with
// the same String differ at most in those. The artifact cache
// fingerprints it together with the options that reach the compiled
// module.
func (g *Grammar) String() string {
	var sb strings.Builder

	for i := range g.Parsers {
		p := &g.Parsers[i]
		if p.Vis == VisPublic {
			sb.WriteString("pub ")
		}
		sb.WriteString(p.Name)
		sb.WriteString(" -> ")
		sb.WriteString(p.RetType.Text)
		sb.WriteString(" {\n")
		for j := range p.Rules {
			r := &p.Rules[j]
			sb.WriteString("\t")
			sb.WriteString(r.Production.String())
			sb.WriteString(" => ")
			sb.WriteString(r.Action.String())
			sb.WriteString("\n")
		}
		sb.WriteString("}\n")
	}
	for _, ret := range g.Returns {
		sb.WriteString("return ")
		sb.WriteString(ret)
		sb.WriteString("\n")
	}

	return sb.String()
}

func (p Production) String() string {
	var sb strings.Builder
	for i, part := range p.Parts {
		if i > 0 {
			sb.WriteRune(' ')
		}
		sb.WriteString(part.String())
	}
	return sb.String()
}

func (pt Part) String() string {
	var sb strings.Builder
	switch pt.Capture {
	case CaptureNamed:
		sb.WriteString(pt.Pat.String())
		sb.WriteRune(':')
	case CaptureLoud:
		sb.WriteRune('@')
	}
	sb.WriteString(pt.Atom.String())
	return sb.String()
}

func (a Atom) String() string {
	switch a.Kind {
	case AtomTerminal:
		return a.Lit.String()
	case AtomPatTerminal:
		return a.Pat.String()
	case AtomNonTerminal:
		return a.Name
	case AtomSub:
		return "(" + a.Sub.String() + ")"
	case AtomChoice:
		var sb strings.Builder
		sb.WriteRune('[')
		for i, alt := range a.Alts {
			if i > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(alt.String())
		}
		sb.WriteRune(']')
		return sb.String()
	case AtomRepeat:
		return a.Inner.String() + "*"
	case AtomRepeat1:
		return a.Inner.String() + "+"
	case AtomOptional:
		return a.Inner.String() + "?"
	case AtomLookAhead:
		return "&" + a.Inner.String()
	case AtomLookAheadNot:
		return "!" + a.Inner.String()
	default:
		return "<invalid atom>"
	}
}
