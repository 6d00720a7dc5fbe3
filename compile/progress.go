package compile

import "github.com/dekarrin/neotoma/grammar"

// file progress.go contains the progress analysis: whether matching an
// atom or production must consume input (every success consumes at
// least one token) or only may (some success consumes at least one
// token). The first-progress prefix it induces over a production is
// the basis of the left-call graph.

// mustProgress reports whether every successful match of the atom
// consumes at least one token.
func mustProgress(a *grammar.Atom) bool {
	switch a.Kind {
	case grammar.AtomTerminal, grammar.AtomPatTerminal, grammar.AtomNonTerminal:
		return true
	case grammar.AtomRepeat, grammar.AtomOptional, grammar.AtomLookAhead, grammar.AtomLookAheadNot:
		return false
	case grammar.AtomRepeat1:
		return mustProgress(a.Inner)
	case grammar.AtomSub:
		return prodMustProgress(a.Sub)
	case grammar.AtomChoice:
		for _, alt := range a.Alts {
			if !prodMustProgress(alt) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// mayProgress reports whether some successful match of the atom
// consumes at least one token.
func mayProgress(a *grammar.Atom) bool {
	switch a.Kind {
	case grammar.AtomTerminal, grammar.AtomPatTerminal, grammar.AtomNonTerminal:
		return true
	case grammar.AtomLookAhead, grammar.AtomLookAheadNot:
		return false
	case grammar.AtomRepeat, grammar.AtomRepeat1, grammar.AtomOptional:
		return mayProgress(a.Inner)
	case grammar.AtomSub:
		return prodMayProgress(a.Sub)
	case grammar.AtomChoice:
		for _, alt := range a.Alts {
			if prodMayProgress(alt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// firstProgress returns the parts of the production that may make
// first progress when parsing: every part up to and including the
// first that must progress, or all of them if none must.
func firstProgress(p *grammar.Production) []grammar.Part {
	var out []grammar.Part
	for i := range p.Parts {
		part := p.Parts[i]
		out = append(out, part)
		if mustProgress(&part.Atom) {
			break
		}
	}
	return out
}

// prodMustProgress reports whether every successful match of the
// production consumes at least one token: some part of its
// first-progress prefix must progress.
func prodMustProgress(p *grammar.Production) bool {
	for _, part := range firstProgress(p) {
		if mustProgress(&part.Atom) {
			return true
		}
	}
	return false
}

// prodMayProgress reports whether some successful match of the
// production consumes at least one token.
func prodMayProgress(p *grammar.Production) bool {
	for _, part := range firstProgress(p) {
		if mayProgress(&part.Atom) {
			return true
		}
	}
	return false
}
