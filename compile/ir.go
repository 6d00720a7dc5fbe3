package compile

import (
	"fmt"

	"github.com/dekarrin/neotoma"
	"github.com/dekarrin/neotoma/grammar"
)

// file ir.go contains the intermediate representation the compiler
// lowers a grammar into, and the builders the lowering phase drives.
// The IR is the contract with code emitters: a flat, insertion-ordered
// table of primitive ops per rule body, with nested blocks modeling
// the lexical scopes of speculative cursors.

// Value identifies one IR op within a compilation. Values are dense
// integers assigned at creation from a counter scoped to a single
// compilation, and double as the emission-order index of primitive
// steps.
type Value int

func (v Value) String() string {
	return fmt.Sprintf("#%d", int(v))
}

// valueAlloc hands out Values for one compilation. Confining the
// counter to a compilation keeps compiled output stable: recompiling
// the same grammar allocates the same ids.
type valueAlloc struct {
	next int
}

func (a *valueAlloc) alloc() Value {
	v := Value(a.next)
	a.next++
	return v
}

// MemoKind selects the memoization protocol a non-terminal is compiled
// with.
type MemoKind int

const (
	// MemoNone performs no memoization.
	MemoNone MemoKind = iota

	// MemoMemorize is packrat memoization, for non-terminals outside
	// the left-recursion set.
	MemoMemorize

	// MemoLeftRec is seed-and-grow memoization, for non-terminals in
	// the left-recursion set.
	MemoLeftRec
)

func (mk MemoKind) String() string {
	switch mk {
	case MemoMemorize:
		return "Memorize"
	case MemoLeftRec:
		return "LeftRec"
	default:
		return "None"
	}
}

// ParserRef is a handle to a generated non-terminal object. Call ops
// name their callee and the dependency handles to pass it with
// ParserRefs; emitters map each to whatever identifies the object in
// the host program.
type ParserRef struct {
	Name string
}

func (pr ParserRef) String() string {
	return pr.Name
}

// OpKind discriminates the ParseOp variants.
type OpKind int

const (
	// OpJust consumes one token matching a literal.
	OpJust OpKind = iota

	// OpPat consumes one token matching a host pattern, yielding the
	// tuple of the pattern's named bindings.
	OpPat

	// OpCall invokes another non-terminal, passing its dependency
	// handles.
	OpCall

	// OpMap binds a value to a capture and evaluates an action.
	OpMap

	// OpThen sequences a prior value with a nested block, keeping
	// both.
	OpThen

	// OpThenIgnore sequences, discarding the nested block's value.
	OpThenIgnore

	// OpIgnoreThen sequences, discarding the prior value.
	OpIgnoreThen

	// OpRepeat matches a nested block at least AtLeast times,
	// collecting values.
	OpRepeat

	// OpOptional matches a nested block or succeeds silently.
	OpOptional

	// OpLookAhead succeeds iff the nested block does, consuming
	// nothing.
	OpLookAhead

	// OpLookAheadNot succeeds iff the nested block fails, consuming
	// nothing.
	OpLookAheadNot

	// OpChoice commits the first nested alternative to succeed.
	OpChoice
)

func (ok OpKind) String() string {
	switch ok {
	case OpJust:
		return "Just"
	case OpPat:
		return "Pat"
	case OpCall:
		return "Call"
	case OpMap:
		return "Map"
	case OpThen:
		return "Then"
	case OpThenIgnore:
		return "ThenIgnore"
	case OpIgnoreThen:
		return "IgnoreThen"
	case OpRepeat:
		return "Repeat"
	case OpOptional:
		return "Optional"
	case OpLookAhead:
		return "LookAhead"
	case OpLookAheadNot:
		return "LookAheadNot"
	case OpChoice:
		return "Choice"
	default:
		return "<invalid op>"
	}
}

// ParseOp is one primitive parsing step. It is a flat tagged variant;
// which fields are meaningful depends on Kind. Nested Parsing blocks
// (Next, Body, Alts) model inner speculative-cursor scopes and are
// emitted as inner blocks by a code generator.
type ParseOp struct {
	Kind OpKind

	// Lit is set for OpJust.
	Lit grammar.Literal

	// Pat and Binds are set for OpPat. Binds is the ordered set of
	// binding identifiers in the pattern.
	Pat   grammar.Pattern
	Binds []string

	// Parser and Depends are set for OpCall.
	Parser  ParserRef
	Depends []ParserRef

	// Src, Cap, and Action are set for OpMap.
	Src    Value
	Cap    *Capture
	Action grammar.Expr

	// Prev and Next are set for the sequencing kinds.
	Prev Value
	Next *Parsing

	// Body is set for OpRepeat, OpOptional, and the lookaheads.
	// AtLeast is the repetition lower bound.
	Body    *Parsing
	AtLeast int

	// Alts is set for OpChoice.
	Alts []*Parsing
}

// Entry is one row of a Parsing: a Value and the op that defines it.
type Entry struct {
	Val Value
	Op  *ParseOp
}

// Parsing is the lowered body of one rule (or sub-production): an
// insertion-ordered list of (Value, ParseOp) entries plus the capture
// shape of the last value. It is built up by the lowering fold,
// mutated only by the then/choice/repeat builders, then frozen and
// walked by emitters. Within one Parsing the op list is topologically
// ordered with no back-edges; recursion between non-terminals is
// expressed by OpCall, never by IR edges.
type Parsing struct {
	Ops     []Entry
	Capture *Capture
	Span    neotoma.Span

	alloc *valueAlloc
}

func newParsing(alloc *valueAlloc, span neotoma.Span) *Parsing {
	return &Parsing{
		Capture: SilentCapture(),
		Span:    span,
		alloc:   alloc,
	}
}

// push appends an op, allocating its Value.
func (p *Parsing) push(op *ParseOp) Value {
	v := p.alloc.alloc()
	p.Ops = append(p.Ops, Entry{Val: v, Op: op})
	return v
}

// Result returns the Value of the last op: the value the whole block
// yields.
func (p *Parsing) Result() Value {
	return p.Ops[len(p.Ops)-1].Val
}

// parsingJust lowers a literal terminal. The capture is silent: a
// literal match carries no information beyond having happened.
func parsingJust(alloc *valueAlloc, lit grammar.Literal, span neotoma.Span) *Parsing {
	p := newParsing(alloc, span)
	p.push(&ParseOp{Kind: OpJust, Lit: lit})
	p.Capture = SilentCapture()
	return p
}

// parsingPat lowers a pattern terminal. The capture is the tuple of
// the pattern's binding identifiers.
func parsingPat(alloc *valueAlloc, pat grammar.Pattern, span neotoma.Span) *Parsing {
	binds := pat.Idents()
	p := newParsing(alloc, span)
	p.push(&ParseOp{Kind: OpPat, Pat: pat, Binds: binds})
	p.Capture = TupleVecCapture(binds)
	return p
}

// parsingCall lowers a non-terminal reference.
func parsingCall(alloc *valueAlloc, name string, depends []ParserRef, span neotoma.Span) *Parsing {
	p := newParsing(alloc, span)
	p.push(&ParseOp{Kind: OpCall, Parser: ParserRef{Name: name}, Depends: depends})
	p.Capture = LoudCapture()
	return p
}

// then sequences next after p, choosing among Then, ThenIgnore, and
// IgnoreThen by the loudness of the two sides so silent matches never
// widen the value shape.
func (p *Parsing) then(next *Parsing) *Parsing {
	loud1 := p.Capture.IsLoud()
	loud2 := next.Capture.IsLoud()

	op := &ParseOp{Prev: p.Result(), Next: next}
	switch {
	case loud1 && !loud2:
		op.Kind = OpThenIgnore
	case !loud1 && loud2:
		op.Kind = OpIgnoreThen
		p.Capture = next.Capture
	default:
		op.Kind = OpThen
		p.Capture = TupleCapture(p.Capture, next.Capture)
	}
	p.push(op)
	p.Span = p.Span.Extend(next.Span)
	return p
}

// choice wraps p and the remaining alternatives into a Choice block,
// unifying their captures left to right.
func (p *Parsing) choice(rest []*Parsing) (*Parsing, error) {
	u := p.Capture
	alts := []*Parsing{p}
	span := p.Span
	for _, alt := range rest {
		var err error
		u, err = Unify(alt.Capture, u)
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
		span = span.Extend(alt.Span)
	}

	out := newParsing(p.alloc, span)
	out.push(&ParseOp{Kind: OpChoice, Alts: alts})
	out.Capture = u
	return out, nil
}

// choiceNocap wraps alternatives whose values are already final (each
// ends in a Map) into a Choice block with no outer capture.
func choiceNocap(alloc *valueAlloc, span neotoma.Span, alts []*Parsing) *Parsing {
	out := newParsing(alloc, span)
	out.push(&ParseOp{Kind: OpChoice, Alts: alts})
	out.Capture = SilentCapture()
	return out
}

// repeat wraps p into a Repeat block with the given lower bound.
func (p *Parsing) repeat(atLeast int) *Parsing {
	out := newParsing(p.alloc, p.Span)
	out.push(&ParseOp{Kind: OpRepeat, Body: p, AtLeast: atLeast})
	out.Capture = p.Capture.Anonymous()
	return out
}

// optional wraps p into an Optional block.
func (p *Parsing) optional() *Parsing {
	out := newParsing(p.alloc, p.Span)
	out.push(&ParseOp{Kind: OpOptional, Body: p})
	out.Capture = p.Capture.Anonymous()
	return out
}

// lookAhead wraps p into a zero-width LookAhead block. Lookaheads are
// silent regardless of their body.
func (p *Parsing) lookAhead() *Parsing {
	out := newParsing(p.alloc, p.Span)
	out.push(&ParseOp{Kind: OpLookAhead, Body: p})
	out.Capture = SilentCapture()
	return out
}

// lookAheadNot wraps p into a zero-width negative lookahead block.
func (p *Parsing) lookAheadNot() *Parsing {
	out := newParsing(p.alloc, p.Span)
	out.push(&ParseOp{Kind: OpLookAheadNot, Body: p})
	out.Capture = SilentCapture()
	return out
}

// mapAction appends the terminal Map op binding the block's value to
// the given capture and evaluating the action.
func (p *Parsing) mapAction(cap *Capture, action grammar.Expr) *Parsing {
	p.push(&ParseOp{Kind: OpMap, Src: p.Result(), Cap: cap, Action: action})
	p.Capture = LoudCapture()
	return p
}

// ParserImpl is the compiled form of one non-terminal: its lowered
// body, its memoization kind, and its transitive dependency handles in
// the deterministic order every Call site uses.
type ParserImpl struct {
	Name    string
	Vis     grammar.Visibility
	RetType grammar.Type
	Body    *Parsing
	Memo    MemoKind
	Depends []ParserRef
}

// Module is the compiler's output for a whole grammar: the compiled
// parsers in declaration order plus the configuration emitters need.
type Module struct {
	Parsers []*ParserImpl

	// Returns names the entry non-terminals.
	Returns []string

	// Debug carries the grammar's debug flag through to emitters.
	Debug bool

	// RuntimePath is the runtime import path override, or empty for
	// the default.
	RuntimePath string
}

// Parser returns the compiled parser with the given name, or nil.
func (m *Module) Parser(name string) *ParserImpl {
	for _, p := range m.Parsers {
		if p.Name == name {
			return p
		}
	}
	return nil
}
