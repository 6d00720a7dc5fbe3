package compile

import (
	"github.com/dekarrin/neotoma/grammar"
)

// file rewrite.go contains the self-rewriter. Action expressions may
// use the identifier `self` for the rule's whole captured value; the
// rewriter replaces every such occurrence with a synthetic binder and
// reports whether it found any, so rule lowering can wrap the capture
// in a Named binding for it.

// selfBinder is the synthetic identifier `self` is rewritten to. It is
// stable for every rule so emitted destructuring patterns line up with
// rewritten actions.
const selfBinder = "__self"

type rewriter struct {
	// referred records whether any occurrence of `self` was found.
	referred bool
}

// rewriteExpr rewrites the expression in place. The walker descends
// into every expression form: argument lists of invocations are
// ordinary expressions in this host, so they are visited like any
// other group. Literal tokens pass through verbatim.
func (rw *rewriter) rewriteExpr(e *grammar.Expr) {
	e.Trees = rw.rewriteTrees(e.Trees)
}

func (rw *rewriter) rewriteTrees(trees []grammar.TokenTree) []grammar.TokenTree {
	out := make([]grammar.TokenTree, len(trees))
	copy(out, trees)

	for i := range out {
		switch out[i].Kind {
		case grammar.TreeIdent:
			if out[i].Text == "self" {
				out[i].Text = selfBinder
				rw.referred = true
			}
		case grammar.TreeGroup:
			out[i].Trees = rw.rewriteTrees(out[i].Trees)
		}
	}

	return out
}

// rewriteAction runs the self-rewriter over a copy of a rule's action
// and returns the rewritten action along with whether `self` was
// referred to.
func rewriteAction(action grammar.Expr) (grammar.Expr, bool) {
	rw := &rewriter{}
	out := action.Clone()
	rw.rewriteExpr(&out)
	return out, rw.referred
}

// selfPattern returns the pattern binding the synthetic self
// identifier, spanned to the action it came from.
func selfPattern(action grammar.Expr) grammar.Pattern {
	return grammar.Pattern{Expr: grammar.Expr{
		Trees: []grammar.TokenTree{{
			Kind: grammar.TreeIdent,
			Text: selfBinder,
			Span: action.Span,
		}},
		Span: action.Span,
	}}
}
