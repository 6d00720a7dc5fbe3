package grammar

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/dekarrin/neotoma"
)

// file expr.go contains the opaque host-expression representation.
// Actions, patterns, and return types in a grammar are token trees: the
// compiler moves them around, rewrites identifiers in them, and hands
// them to the code emitter, but never assigns meaning to them beyond
// that.

// TreeKind enumerates the kinds of nodes in a token tree.
type TreeKind int

const (
	// TreeIdent is a bare identifier.
	TreeIdent TreeKind = iota

	// TreeLit is a literal token (number, char, string, ...). Its text
	// is kept verbatim.
	TreeLit

	// TreePunct is a single punctuation character.
	TreePunct

	// TreeGroup is a delimited group of sub-trees.
	TreeGroup
)

// Delim is the opening delimiter of a group.
type Delim rune

const (
	DelimParen   Delim = '('
	DelimBracket Delim = '['
	DelimBrace   Delim = '{'
)

// Close returns the matching closing delimiter.
func (d Delim) Close() rune {
	switch d {
	case DelimParen:
		return ')'
	case DelimBracket:
		return ']'
	case DelimBrace:
		return '}'
	default:
		return rune(d)
	}
}

// TokenTree is one node of an opaque host expression: an identifier, a
// literal, a punctuation character, or a delimited group of sub-trees.
type TokenTree struct {
	Kind TreeKind

	// Text is the identifier text, the raw literal text, or the
	// punctuation character. Unused for groups.
	Text string

	// Delim and Trees are set for groups only.
	Delim Delim
	Trees []TokenTree

	Span neotoma.Span
}

// Ident returns an identifier tree.
func Ident(name string) TokenTree {
	return TokenTree{Kind: TreeIdent, Text: name}
}

// Punct returns a punctuation tree.
func Punct(ch string) TokenTree {
	return TokenTree{Kind: TreePunct, Text: ch}
}

// Group returns a delimited group tree.
func Group(d Delim, trees ...TokenTree) TokenTree {
	return TokenTree{Kind: TreeGroup, Delim: d, Trees: trees}
}

// Equal returns whether two trees are token-equal. Spans are ignored.
func (tt TokenTree) Equal(o TokenTree) bool {
	if tt.Kind != o.Kind || tt.Text != o.Text || tt.Delim != o.Delim {
		return false
	}
	if len(tt.Trees) != len(o.Trees) {
		return false
	}
	for i := range tt.Trees {
		if !tt.Trees[i].Equal(o.Trees[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the tree.
func (tt TokenTree) Clone() TokenTree {
	cp := tt
	if tt.Trees != nil {
		cp.Trees = make([]TokenTree, len(tt.Trees))
		for i := range tt.Trees {
			cp.Trees[i] = tt.Trees[i].Clone()
		}
	}
	return cp
}

func (tt TokenTree) writeTo(sb *strings.Builder) {
	switch tt.Kind {
	case TreeGroup:
		sb.WriteRune(rune(tt.Delim))
		for i := range tt.Trees {
			if i > 0 && needSpace(tt.Trees[i-1], tt.Trees[i]) {
				sb.WriteRune(' ')
			}
			tt.Trees[i].writeTo(sb)
		}
		sb.WriteRune(tt.Delim.Close())
	default:
		sb.WriteString(tt.Text)
	}
}

// needSpace separates word-like tokens so re-serialized expressions
// stay re-scannable; punctuation binds tight.
func needSpace(prev, next TokenTree) bool {
	wordy := func(t TokenTree) bool {
		return t.Kind == TreeIdent || t.Kind == TreeLit
	}
	return wordy(prev) && wordy(next)
}

// Expr is an opaque host expression: an ordered sequence of token
// trees plus the overall source span.
type Expr struct {
	Trees []TokenTree
	Span  neotoma.Span
}

// Empty returns whether the expression has no tokens.
func (e Expr) Empty() bool {
	return len(e.Trees) == 0
}

// Equal returns whether two expressions are token-equal, ignoring
// spans.
func (e Expr) Equal(o Expr) bool {
	if len(e.Trees) != len(o.Trees) {
		return false
	}
	for i := range e.Trees {
		if !e.Trees[i].Equal(o.Trees[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the expression.
func (e Expr) Clone() Expr {
	cp := Expr{Span: e.Span}
	if e.Trees != nil {
		cp.Trees = make([]TokenTree, len(e.Trees))
		for i := range e.Trees {
			cp.Trees[i] = e.Trees[i].Clone()
		}
	}
	return cp
}

func (e Expr) String() string {
	var sb strings.Builder
	for i := range e.Trees {
		if i > 0 && needSpace(e.Trees[i-1], e.Trees[i]) {
			sb.WriteRune(' ')
		}
		e.Trees[i].writeTo(&sb)
	}
	return sb.String()
}

// Pattern is an opaque host pattern, as used for named captures and
// pattern terminals. Patterns participate in capture unification by
// token equality.
type Pattern struct {
	Expr
}

// IsIdent returns whether the pattern is a single bare identifier.
func (p Pattern) IsIdent() bool {
	return len(p.Trees) == 1 && p.Trees[0].Kind == TreeIdent
}

// Idents returns the binding identifiers of the pattern in token
// order, without duplicates. An identifier binds when it is
// lowercase-initial, is not part of a dotted path, is not a field key
// (followed by ':'), and is not one of the wildcard or constant
// spellings.
func (p Pattern) Idents() []string {
	var out []string
	seen := map[string]bool{}
	collectIdents(p.Trees, seen, &out)
	return out
}

func collectIdents(trees []TokenTree, seen map[string]bool, out *[]string) {
	for i, tt := range trees {
		switch tt.Kind {
		case TreeGroup:
			collectIdents(tt.Trees, seen, out)
		case TreeIdent:
			if !bindingIdent(tt.Text) {
				continue
			}
			if adjoinsPunct(trees, i, ".") || followedByPunct(trees, i, ":") {
				continue
			}
			if !seen[tt.Text] {
				seen[tt.Text] = true
				*out = append(*out, tt.Text)
			}
		}
	}
}

func bindingIdent(name string) bool {
	switch name {
	case "_", "true", "false", "nil":
		return false
	}
	r := rune(name[0])
	return r == '_' || (r >= 'a' && r <= 'z')
}

func adjoinsPunct(trees []TokenTree, i int, p string) bool {
	if i > 0 && trees[i-1].Kind == TreePunct && trees[i-1].Text == p {
		return true
	}
	return followedByPunct(trees, i, p)
}

func followedByPunct(trees []TokenTree, i int, p string) bool {
	return i+1 < len(trees) && trees[i+1].Kind == TreePunct && trees[i+1].Text == p
}

// ScanExpr tokenizes a host expression string into an Expr. It exists
// as a convenience for front-ends and tests; the compiler itself only
// consumes already-built token trees.
func ScanExpr(src string) (Expr, error) {
	var sc scanner.Scanner
	sc.Init(strings.NewReader(src))
	sc.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanChars | scanner.ScanStrings | scanner.ScanRawStrings
	sc.Error = func(_ *scanner.Scanner, _ string) {}

	trees, closer, err := scanTrees(&sc, src, 0)
	if err != nil {
		return Expr{}, err
	}
	if closer != scanner.EOF {
		return Expr{}, fmt.Errorf("unbalanced %q in expression", string(closer))
	}
	return Expr{Trees: trees, Span: neotoma.SpanOf(0, len(src))}, nil
}

// MustExpr is like ScanExpr but panics on malformed input. It is
// intended for statically-known expressions.
func MustExpr(src string) Expr {
	e, err := ScanExpr(src)
	if err != nil {
		panic(fmt.Sprintf("MustExpr(%q): %v", src, err))
	}
	return e
}

// ScanPattern tokenizes a host pattern string into a Pattern.
func ScanPattern(src string) (Pattern, error) {
	e, err := ScanExpr(src)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Expr: e}, nil
}

// MustPattern is like ScanPattern but panics on malformed input.
func MustPattern(src string) Pattern {
	p, err := ScanPattern(src)
	if err != nil {
		panic(fmt.Sprintf("MustPattern(%q): %v", src, err))
	}
	return p
}

// scanTrees reads trees until EOF or a closing delimiter, which is
// returned so the caller can match it against its opener.
func scanTrees(sc *scanner.Scanner, src string, depth int) ([]TokenTree, rune, error) {
	var trees []TokenTree

	for {
		tok := sc.Scan()
		start := sc.Position.Offset
		text := sc.TokenText()
		end := start + len(text)

		switch tok {
		case scanner.EOF:
			return trees, scanner.EOF, nil
		case scanner.Ident:
			trees = append(trees, TokenTree{Kind: TreeIdent, Text: text, Span: neotoma.SpanOf(start, end)})
		case scanner.Int, scanner.Float, scanner.Char, scanner.String, scanner.RawString:
			trees = append(trees, TokenTree{Kind: TreeLit, Text: text, Span: neotoma.SpanOf(start, end)})
		case '(', '[', '{':
			sub, closer, err := scanTrees(sc, src, depth+1)
			if err != nil {
				return nil, 0, err
			}
			if closer != matchingCloser(tok) {
				return nil, 0, fmt.Errorf("unbalanced %q in expression", string(tok))
			}
			grpEnd := sc.Position.Offset + 1
			trees = append(trees, TokenTree{
				Kind:  TreeGroup,
				Delim: Delim(tok),
				Trees: sub,
				Span:  neotoma.SpanOf(start, grpEnd),
			})
		case ')', ']', '}':
			if depth == 0 {
				return nil, 0, fmt.Errorf("unbalanced %q in expression", string(tok))
			}
			return trees, tok, nil
		default:
			trees = append(trees, TokenTree{Kind: TreePunct, Text: text, Span: neotoma.SpanOf(start, end)})
		}
	}
}

func matchingCloser(open rune) rune {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}
