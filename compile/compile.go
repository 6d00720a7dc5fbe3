// Package compile lowers a grammar AST into the intermediate
// representation that code emitters walk to produce a runnable parser.
//
// Compilation is a three-phase pipeline. The analyses run first, in
// order: the progress analysis feeds the left-call graph, whose cycles
// become the left-recursion set, and the dependency analysis computes
// each non-terminal's transitive dependencies in a deterministic
// order. Lowering then folds every rule into a flat Parsing op table,
// unifying capture shapes across choice alternatives and rewriting
// `self` in action expressions. Any diagnostic aborts the whole
// grammar; there is no partial output.
package compile

import (
	"github.com/dekarrin/neotoma"
	"github.com/dekarrin/neotoma/grammar"
)

// Compile compiles a grammar into a Module, or returns the first
// *Error diagnostic encountered.
func Compile(g *grammar.Grammar) (*Module, error) {
	c := &compiler{g: g}

	if err := c.checkDecls(); err != nil {
		return nil, err
	}
	if err := c.checkMissing(); err != nil {
		return nil, err
	}

	c.an = analyze(g)
	c.alloc = &valueAlloc{}

	mod := &Module{
		Returns:     g.Returns,
		Debug:       g.Options.Debug,
		RuntimePath: g.Options.RuntimePath,
	}
	for i := range g.Parsers {
		impl, err := c.lowerParser(&g.Parsers[i])
		if err != nil {
			return nil, err
		}
		mod.Parsers = append(mod.Parsers, impl)
	}

	if err := validateCaptures(mod); err != nil {
		return nil, err
	}

	return mod, nil
}

type compiler struct {
	g     *grammar.Grammar
	an    *analysis
	alloc *valueAlloc

	declared map[string]bool
}

// checkDecls validates the declaration list itself: unique names,
// at least one rule per parser, at least one part per production, and
// resolvable entry points.
func (c *compiler) checkDecls() error {
	c.declared = map[string]bool{}
	for i := range c.g.Parsers {
		p := &c.g.Parsers[i]
		if c.declared[p.Name] {
			return errorf(CodeRedefined, p.Span, "parser %s is already defined", p.Name)
		}
		c.declared[p.Name] = true

		if len(p.Rules) == 0 {
			return errorf(CodeEmptyParser, p.Span, "parser %s must have at least one rule", p.Name)
		}
		for j := range p.Rules {
			if err := checkProductions(&p.Rules[j].Production); err != nil {
				return err
			}
		}
	}

	for _, ret := range c.g.Returns {
		if !c.declared[ret] {
			return errorf(CodeUnknownReturn, neotoma.Span{}, "return names undeclared parser %s", ret)
		}
	}

	return nil
}

// checkProductions rejects empty productions, recursively.
func checkProductions(p *grammar.Production) error {
	if len(p.Parts) == 0 {
		return errorf(CodeEmptyProduction, p.Span, "production must have at least one part")
	}
	for i := range p.Parts {
		a := &p.Parts[i].Atom
		// look through repeat, optional, and lookahead wrappers
		for a.Inner != nil {
			a = a.Inner
		}
		switch a.Kind {
		case grammar.AtomSub:
			if err := checkProductions(a.Sub); err != nil {
				return err
			}
		case grammar.AtomChoice:
			for _, alt := range a.Alts {
				if err := checkProductions(alt); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkMissing rejects references to undeclared non-terminals.
func (c *compiler) checkMissing() error {
	var err error
	for i := range c.g.Parsers {
		p := &c.g.Parsers[i]
		for j := range p.Rules {
			walkAtoms(&p.Rules[j].Production, func(a *grammar.Atom) {
				if err != nil {
					return
				}
				if a.Kind == grammar.AtomNonTerminal && !c.declared[a.Name] {
					err = errorf(CodeUndefined, a.Span, "parser %s not found", a.Name)
				}
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func walkAtoms(p *grammar.Production, f func(a *grammar.Atom)) {
	for i := range p.Parts {
		walkAtom(&p.Parts[i].Atom, f)
	}
}

func walkAtom(a *grammar.Atom, f func(a *grammar.Atom)) {
	f(a)
	switch a.Kind {
	case grammar.AtomSub:
		walkAtoms(a.Sub, f)
	case grammar.AtomChoice:
		for _, alt := range a.Alts {
			walkAtoms(alt, f)
		}
	case grammar.AtomRepeat, grammar.AtomRepeat1, grammar.AtomOptional,
		grammar.AtomLookAhead, grammar.AtomLookAheadNot:
		walkAtom(a.Inner, f)
	}
}

// lowerParser lowers all rules of one non-terminal and combines them.
func (c *compiler) lowerParser(p *grammar.Parser) (*ParserImpl, error) {
	bodies := make([]*Parsing, 0, len(p.Rules))
	for i := range p.Rules {
		body, err := c.lowerRule(&p.Rules[i])
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}

	var body *Parsing
	if len(bodies) == 1 {
		body = bodies[0]
	} else {
		body = choiceNocap(c.alloc, p.Span, bodies)
	}

	memo := MemoMemorize
	if c.an.leftRec.Has(p.Name) {
		memo = MemoLeftRec
	}

	return &ParserImpl{
		Name:    p.Name,
		Vis:     p.Vis,
		RetType: p.RetType,
		Body:    body,
		Memo:    memo,
		Depends: c.an.depsOf(p.Name),
	}, nil
}

// lowerRule lowers the rule's production, runs the self-rewriter over
// its action, and terminates the block with the Map op that evaluates
// the action.
func (c *compiler) lowerRule(r *grammar.Rule) (*Parsing, error) {
	body, err := c.lowerProduction(&r.Production)
	if err != nil {
		return nil, err
	}

	action, referred := rewriteAction(r.Action)
	if referred {
		body.Capture = NamedCapture(selfPattern(r.Action), body.Capture)
	}

	return body.mapAction(body.Capture, action), nil
}

// lowerProduction folds the parts left to right with then.
func (c *compiler) lowerProduction(p *grammar.Production) (*Parsing, error) {
	result, err := c.lowerPart(&p.Parts[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(p.Parts); i++ {
		next, err := c.lowerPart(&p.Parts[i])
		if err != nil {
			return nil, err
		}
		result = result.then(next)
	}
	return result, nil
}

// lowerPart lowers the part's atom and applies its capture marker.
func (c *compiler) lowerPart(part *grammar.Part) (*Parsing, error) {
	body, err := c.lowerAtom(&part.Atom)
	if err != nil {
		return nil, err
	}

	switch part.Capture {
	case grammar.CaptureNamed:
		body.Capture = NamedCapture(part.Pat, body.Capture)
	case grammar.CaptureLoud:
		if !body.Capture.IsLoud() {
			body.Capture = LoudCapture()
		}
	}

	return body, nil
}

func (c *compiler) lowerAtom(a *grammar.Atom) (*Parsing, error) {
	switch a.Kind {
	case grammar.AtomTerminal:
		switch a.Lit.Kind {
		case neotoma.LitBool, neotoma.LitInt, neotoma.LitFloat, neotoma.LitChar, neotoma.LitString:
			return parsingJust(c.alloc, a.Lit, a.Span), nil
		default:
			return nil, errorf(CodeBadLiteral, a.Lit.Span, "unsupported literal %s", a.Lit)
		}

	case grammar.AtomPatTerminal:
		return parsingPat(c.alloc, a.Pat, a.Span), nil

	case grammar.AtomNonTerminal:
		if !c.declared[a.Name] {
			return nil, errorf(CodeUndefined, a.Span, "parser %s not found", a.Name)
		}
		return parsingCall(c.alloc, a.Name, c.an.depsOf(a.Name), a.Span), nil

	case grammar.AtomSub:
		return c.lowerProduction(a.Sub)

	case grammar.AtomChoice:
		first, err := c.lowerProduction(a.Alts[0])
		if err != nil {
			return nil, err
		}
		rest := make([]*Parsing, 0, len(a.Alts)-1)
		for _, alt := range a.Alts[1:] {
			p, err := c.lowerProduction(alt)
			if err != nil {
				return nil, err
			}
			rest = append(rest, p)
		}
		return first.choice(rest)

	case grammar.AtomRepeat:
		body, err := c.lowerAtom(a.Inner)
		if err != nil {
			return nil, err
		}
		return body.repeat(0), nil

	case grammar.AtomRepeat1:
		body, err := c.lowerAtom(a.Inner)
		if err != nil {
			return nil, err
		}
		return body.repeat(1), nil

	case grammar.AtomOptional:
		body, err := c.lowerAtom(a.Inner)
		if err != nil {
			return nil, err
		}
		return body.optional(), nil

	case grammar.AtomLookAhead:
		body, err := c.lowerAtom(a.Inner)
		if err != nil {
			return nil, err
		}
		return body.lookAhead(), nil

	case grammar.AtomLookAheadNot:
		body, err := c.lowerAtom(a.Inner)
		if err != nil {
			return nil, err
		}
		return body.lookAheadNot(), nil

	default:
		return nil, errorf(CodeUnknown, a.Span, "unknown atom kind %d", a.Kind)
	}
}

// validateCaptures checks every Map op's capture can actually be bound
// as a destructuring pattern, surfacing bad named-capture patterns at
// compile time instead of leaving them for the emitter.
func validateCaptures(m *Module) error {
	var check func(p *Parsing) error
	check = func(p *Parsing) error {
		for _, ent := range p.Ops {
			op := ent.Op
			if op.Kind == OpMap {
				if _, err := op.Cap.Pattern(); err != nil {
					return err
				}
			}
			if op.Next != nil {
				if err := check(op.Next); err != nil {
					return err
				}
			}
			if op.Body != nil {
				if err := check(op.Body); err != nil {
					return err
				}
			}
			for _, alt := range op.Alts {
				if err := check(alt); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, impl := range m.Parsers {
		if err := check(impl.Body); err != nil {
			return err
		}
	}
	return nil
}
