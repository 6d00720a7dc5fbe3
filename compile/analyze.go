package compile

import (
	"github.com/dekarrin/neotoma/grammar"
	"github.com/dekarrin/neotoma/internal/ordered"
)

// file analyze.go contains two of the three whole-grammar analyses that
// run before lowering, in order: the left-call graph with its
// left-recursion set, and the transitive dependency closure. The
// progress analysis that feeds the left-call graph is in progress.go.
// All containers are insertion-ordered so the compiled shape is stable
// under re-compilation.

type analysis struct {
	// leftCalls maps each non-terminal to the non-terminals it can
	// invoke before consuming any input.
	leftCalls *ordered.Map[string, *ordered.Set[string]]

	// leftRec is the set of non-terminals lying on a cycle in the
	// left-call graph. Every member is compiled with MemoLeftRec.
	leftRec *ordered.Set[string]

	// direct maps each non-terminal to the non-terminals referenced
	// anywhere in its body, itself excluded, in discovery order.
	direct *ordered.Map[string, *ordered.Set[string]]

	// depends maps each non-terminal to the transitive closure of its
	// direct dependencies, itself excluded, in discovery order.
	depends *ordered.Map[string, *ordered.Set[string]]
}

func analyze(g *grammar.Grammar) *analysis {
	an := &analysis{
		leftCalls: ordered.NewMap[string, *ordered.Set[string]](),
		leftRec:   ordered.NewSet[string](),
		direct:    ordered.NewMap[string, *ordered.Set[string]](),
		depends:   ordered.NewMap[string, *ordered.Set[string]](),
	}

	an.analyzeLeftRecursion(g)
	an.analyzeDepends(g)

	return an
}

// depsOf returns the transitive dependencies of a non-terminal as
// ParserRef handles in the deterministic discovery order. This order
// is what every Call site and parse_memo signature uses.
func (an *analysis) depsOf(name string) []ParserRef {
	deps := an.depends.Get(name)
	if deps == nil {
		return nil
	}
	refs := make([]ParserRef, 0, deps.Len())
	for _, dep := range deps.Elements() {
		refs = append(refs, ParserRef{Name: dep})
	}
	return refs
}

// analyzeLeftRecursion builds the left-call graph and marks every
// non-terminal on one of its cycles.
func (an *analysis) analyzeLeftRecursion(g *grammar.Grammar) {
	for i := range g.Parsers {
		p := &g.Parsers[i]
		an.leftCalls.Set(p.Name, leftCallsOf(p))
	}

	// depth-first over the left-call graph; a re-encounter of a node
	// already on the visiting path marks the whole cycle from the
	// re-encounter point onward.
	for _, name := range an.leftCalls.Keys() {
		if an.leftRec.Has(name) {
			continue
		}

		visited := ordered.NewSet[string]()
		var path []string
		var walk func(n string)
		walk = func(n string) {
			path = append(path, n)
			visited.Add(n)
			calls := an.leftCalls.Get(n)
			for _, dep := range calls.Elements() {
				if an.leftRec.Has(dep) {
					continue
				}
				onPath := -1
				for i := range path {
					if path[i] == dep {
						onPath = i
						break
					}
				}
				if onPath >= 0 {
					for _, m := range path[onPath:] {
						an.leftRec.Add(m)
					}
					continue
				}
				if visited.Has(dep) || !an.leftCalls.Has(dep) {
					continue
				}
				walk(dep)
			}
			path = path[:len(path)-1]
		}
		walk(name)
	}
}

// leftCallsOf collects the non-terminals named in bare non-terminal
// position among the first-progress parts of any rule of p.
func leftCallsOf(p *grammar.Parser) *ordered.Set[string] {
	calls := ordered.NewSet[string]()
	for i := range p.Rules {
		for _, part := range firstProgress(&p.Rules[i].Production) {
			if part.Atom.Kind == grammar.AtomNonTerminal {
				calls.Add(part.Atom.Name)
			}
		}
	}
	return calls
}

// analyzeDepends computes direct dependencies per non-terminal and
// closes them transitively.
func (an *analysis) analyzeDepends(g *grammar.Grammar) {
	for i := range g.Parsers {
		p := &g.Parsers[i]
		direct := ordered.NewSet[string]()
		for j := range p.Rules {
			collectDirectDepends(&p.Rules[j].Production, p.Name, direct)
		}
		an.direct.Set(p.Name, direct)
	}

	for _, name := range an.direct.Keys() {
		closure := ordered.NewSet[string]()
		stack := []string{name}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if closure.Has(n) {
				continue
			}
			closure.Add(n)
			stack = append(stack, an.direct.Get(n).Elements()...)
		}
		deps := ordered.NewSet[string]()
		for _, n := range closure.Elements() {
			if n != name {
				deps.Add(n)
			}
		}
		an.depends.Set(name, deps)
	}
}

// collectDirectDepends walks a production recording every non-terminal
// reference except curr itself, in discovery order.
func collectDirectDepends(p *grammar.Production, curr string, deps *ordered.Set[string]) {
	for i := range p.Parts {
		collectAtomDepends(&p.Parts[i].Atom, curr, deps)
	}
}

func collectAtomDepends(a *grammar.Atom, curr string, deps *ordered.Set[string]) {
	switch a.Kind {
	case grammar.AtomNonTerminal:
		if a.Name != curr {
			deps.Add(a.Name)
		}
	case grammar.AtomSub:
		collectDirectDepends(a.Sub, curr, deps)
	case grammar.AtomChoice:
		for _, alt := range a.Alts {
			collectDirectDepends(alt, curr, deps)
		}
	case grammar.AtomRepeat, grammar.AtomRepeat1, grammar.AtomOptional,
		grammar.AtomLookAhead, grammar.AtomLookAheadNot:
		collectAtomDepends(a.Inner, curr, deps)
	}
}
