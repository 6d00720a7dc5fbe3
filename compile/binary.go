package compile

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dekarrin/neotoma"
	"github.com/dekarrin/neotoma/grammar"
)

// file binary.go contains the binary encoding of compiled modules, so
// build tooling can persist a Module and hand it to an emitter later
// without recompiling the grammar. Module, ParserImpl, Parsing,
// ParseOp, and Capture implement
// encoding.BinaryMarshaler/BinaryUnmarshaler; the artifact cache wraps
// these through rezi.

func encInt(i int) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, uint64(int64(i)))
	return enc
}

// decInt returns the int followed by bytes consumed.
func decInt(data []byte) (int, int, error) {
	if len(data) < 8 {
		return 0, 0, fmt.Errorf("unexpected end of data")
	}
	return int(int64(binary.BigEndian.Uint64(data[:8]))), 8, nil
}

func encBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func decBool(data []byte) (bool, int, error) {
	if len(data) < 1 {
		return false, 0, fmt.Errorf("unexpected end of data")
	}
	switch data[0] {
	case 0:
		return false, 1, nil
	case 1:
		return true, 1, nil
	default:
		return false, 0, fmt.Errorf("unknown non-bool value")
	}
}

func encString(s string) []byte {
	enc := encInt(len(s))
	return append(enc, []byte(s)...)
}

// decString returns the string followed by bytes consumed.
func decString(data []byte) (string, int, error) {
	byteLen, n, err := decInt(data)
	if err != nil {
		return "", 0, fmt.Errorf("decoding string length: %w", err)
	}
	data = data[n:]
	if byteLen < 0 || len(data) < byteLen {
		return "", 0, fmt.Errorf("unexpected end of data in string")
	}
	return string(data[:byteLen]), n + byteLen, nil
}

func encBinary(b encoding.BinaryMarshaler) []byte {
	enc, _ := b.MarshalBinary()
	return append(encInt(len(enc)), enc...)
}

// decBinary unmarshals a length-prefixed sub-value and returns bytes
// consumed.
func decBinary(data []byte, b encoding.BinaryUnmarshaler) (int, error) {
	byteLen, n, err := decInt(data)
	if err != nil {
		return 0, err
	}
	data = data[n:]
	if byteLen < 0 || len(data) < byteLen {
		return 0, fmt.Errorf("unexpected end of data")
	}
	if err := b.UnmarshalBinary(data[:byteLen]); err != nil {
		return 0, err
	}
	return n + byteLen, nil
}

func encSpan(sp neotoma.Span) []byte {
	enc := encInt(sp.Start)
	return append(enc, encInt(sp.End)...)
}

func decSpan(data []byte) (neotoma.Span, int, error) {
	start, n1, err := decInt(data)
	if err != nil {
		return neotoma.Span{}, 0, err
	}
	end, n2, err := decInt(data[n1:])
	if err != nil {
		return neotoma.Span{}, 0, err
	}
	return neotoma.SpanOf(start, end), n1 + n2, nil
}

func encStrings(ss []string) []byte {
	enc := encInt(len(ss))
	for _, s := range ss {
		enc = append(enc, encString(s)...)
	}
	return enc
}

func decStrings(data []byte) ([]string, int, error) {
	count, read, err := decInt(data)
	if err != nil {
		return nil, 0, err
	}
	data = data[read:]
	var out []string
	for i := 0; i < count; i++ {
		s, n, err := decString(data)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
		data = data[n:]
		read += n
	}
	return out, read, nil
}

func encLit(l grammar.Literal) []byte {
	var data []byte
	data = append(data, encInt(int(l.Kind))...)
	data = append(data, encBool(l.Bool)...)
	data = append(data, encInt(int(l.Int))...)
	data = append(data, encInt(int(int64(math.Float64bits(l.Float))))...)
	data = append(data, encInt(int(l.Char))...)
	data = append(data, encString(l.Str)...)
	data = append(data, encString(l.Raw)...)
	data = append(data, encSpan(l.Span)...)
	return data
}

func decLit(data []byte) (grammar.Literal, int, error) {
	var l grammar.Literal
	var read int

	kind, n, err := decInt(data)
	if err != nil {
		return l, 0, err
	}
	l.Kind = neotoma.LitKind(kind)
	data, read = data[n:], read+n

	l.Bool, n, err = decBool(data)
	if err != nil {
		return l, 0, err
	}
	data, read = data[n:], read+n

	i, n, err := decInt(data)
	if err != nil {
		return l, 0, err
	}
	l.Int = int64(i)
	data, read = data[n:], read+n

	fbits, n, err := decInt(data)
	if err != nil {
		return l, 0, err
	}
	l.Float = math.Float64frombits(uint64(int64(fbits)))
	data, read = data[n:], read+n

	ch, n, err := decInt(data)
	if err != nil {
		return l, 0, err
	}
	l.Char = rune(ch)
	data, read = data[n:], read+n

	l.Str, n, err = decString(data)
	if err != nil {
		return l, 0, err
	}
	data, read = data[n:], read+n

	l.Raw, n, err = decString(data)
	if err != nil {
		return l, 0, err
	}
	data, read = data[n:], read+n

	l.Span, n, err = decSpan(data)
	if err != nil {
		return l, 0, err
	}
	read += n

	return l, read, nil
}

func encTree(tt grammar.TokenTree) []byte {
	var data []byte
	data = append(data, encInt(int(tt.Kind))...)
	data = append(data, encString(tt.Text)...)
	data = append(data, encInt(int(tt.Delim))...)
	data = append(data, encSpan(tt.Span)...)
	data = append(data, encInt(len(tt.Trees))...)
	for _, sub := range tt.Trees {
		data = append(data, encTree(sub)...)
	}
	return data
}

func decTree(data []byte) (grammar.TokenTree, int, error) {
	var tt grammar.TokenTree
	var read int

	kind, n, err := decInt(data)
	if err != nil {
		return tt, 0, err
	}
	tt.Kind = grammar.TreeKind(kind)
	data, read = data[n:], read+n

	tt.Text, n, err = decString(data)
	if err != nil {
		return tt, 0, err
	}
	data, read = data[n:], read+n

	delim, n, err := decInt(data)
	if err != nil {
		return tt, 0, err
	}
	tt.Delim = grammar.Delim(delim)
	data, read = data[n:], read+n

	tt.Span, n, err = decSpan(data)
	if err != nil {
		return tt, 0, err
	}
	data, read = data[n:], read+n

	count, n, err := decInt(data)
	if err != nil {
		return tt, 0, err
	}
	data, read = data[n:], read+n

	for i := 0; i < count; i++ {
		sub, n, err := decTree(data)
		if err != nil {
			return tt, 0, err
		}
		tt.Trees = append(tt.Trees, sub)
		data, read = data[n:], read+n
	}

	return tt, read, nil
}

func encExpr(e grammar.Expr) []byte {
	var data []byte
	data = append(data, encSpan(e.Span)...)
	data = append(data, encInt(len(e.Trees))...)
	for _, tt := range e.Trees {
		data = append(data, encTree(tt)...)
	}
	return data
}

func decExpr(data []byte) (grammar.Expr, int, error) {
	var e grammar.Expr
	var read int

	sp, n, err := decSpan(data)
	if err != nil {
		return e, 0, err
	}
	e.Span = sp
	data, read = data[n:], read+n

	count, n, err := decInt(data)
	if err != nil {
		return e, 0, err
	}
	data, read = data[n:], read+n

	for i := 0; i < count; i++ {
		tt, n, err := decTree(data)
		if err != nil {
			return e, 0, err
		}
		e.Trees = append(e.Trees, tt)
		data, read = data[n:], read+n
	}

	return e, read, nil
}

// MarshalBinary converts the capture to bytes.
func (c *Capture) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, encInt(int(c.Kind))...)
	switch c.Kind {
	case CapNamed:
		data = append(data, encExpr(c.Pat.Expr)...)
		data = append(data, encBinary(c.Inner)...)
	case CapTuple:
		data = append(data, encBinary(c.Left)...)
		data = append(data, encBinary(c.Right)...)
	case CapTupleVec:
		data = append(data, encStrings(c.Binds)...)
	}
	return data, nil
}

// UnmarshalBinary fills the capture from bytes.
func (c *Capture) UnmarshalBinary(data []byte) error {
	kind, n, err := decInt(data)
	if err != nil {
		return err
	}
	c.Kind = CaptureKind(kind)
	data = data[n:]

	switch c.Kind {
	case CapNamed:
		e, n, err := decExpr(data)
		if err != nil {
			return err
		}
		c.Pat = grammar.Pattern{Expr: e}
		data = data[n:]
		c.Inner = &Capture{}
		if _, err := decBinary(data, c.Inner); err != nil {
			return err
		}
	case CapTuple:
		c.Left = &Capture{}
		n, err := decBinary(data, c.Left)
		if err != nil {
			return err
		}
		data = data[n:]
		c.Right = &Capture{}
		if _, err := decBinary(data, c.Right); err != nil {
			return err
		}
	case CapTupleVec:
		c.Binds, _, err = decStrings(data)
		if err != nil {
			return err
		}
	}
	return nil
}

// MarshalBinary converts the op to bytes.
func (op *ParseOp) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, encInt(int(op.Kind))...)

	switch op.Kind {
	case OpJust:
		data = append(data, encLit(op.Lit)...)
	case OpPat:
		data = append(data, encExpr(op.Pat.Expr)...)
		data = append(data, encStrings(op.Binds)...)
	case OpCall:
		data = append(data, encString(op.Parser.Name)...)
		deps := make([]string, len(op.Depends))
		for i, d := range op.Depends {
			deps[i] = d.Name
		}
		data = append(data, encStrings(deps)...)
	case OpMap:
		data = append(data, encInt(int(op.Src))...)
		data = append(data, encBinary(op.Cap)...)
		data = append(data, encExpr(op.Action)...)
	case OpThen, OpThenIgnore, OpIgnoreThen:
		data = append(data, encInt(int(op.Prev))...)
		data = append(data, encBinary(op.Next)...)
	case OpRepeat:
		data = append(data, encInt(op.AtLeast)...)
		data = append(data, encBinary(op.Body)...)
	case OpOptional, OpLookAhead, OpLookAheadNot:
		data = append(data, encBinary(op.Body)...)
	case OpChoice:
		data = append(data, encInt(len(op.Alts))...)
		for _, alt := range op.Alts {
			data = append(data, encBinary(alt)...)
		}
	}

	return data, nil
}

// UnmarshalBinary fills the op from bytes.
func (op *ParseOp) UnmarshalBinary(data []byte) error {
	kind, n, err := decInt(data)
	if err != nil {
		return err
	}
	op.Kind = OpKind(kind)
	data = data[n:]

	switch op.Kind {
	case OpJust:
		op.Lit, _, err = decLit(data)
		return err
	case OpPat:
		e, n, err := decExpr(data)
		if err != nil {
			return err
		}
		op.Pat = grammar.Pattern{Expr: e}
		data = data[n:]
		op.Binds, _, err = decStrings(data)
		return err
	case OpCall:
		name, n, err := decString(data)
		if err != nil {
			return err
		}
		op.Parser = ParserRef{Name: name}
		data = data[n:]
		deps, _, err := decStrings(data)
		if err != nil {
			return err
		}
		for _, d := range deps {
			op.Depends = append(op.Depends, ParserRef{Name: d})
		}
		return nil
	case OpMap:
		src, n, err := decInt(data)
		if err != nil {
			return err
		}
		op.Src = Value(src)
		data = data[n:]
		op.Cap = &Capture{}
		n, err = decBinary(data, op.Cap)
		if err != nil {
			return err
		}
		data = data[n:]
		op.Action, _, err = decExpr(data)
		return err
	case OpThen, OpThenIgnore, OpIgnoreThen:
		prev, n, err := decInt(data)
		if err != nil {
			return err
		}
		op.Prev = Value(prev)
		data = data[n:]
		op.Next = &Parsing{}
		_, err = decBinary(data, op.Next)
		return err
	case OpRepeat:
		atLeast, n, err := decInt(data)
		if err != nil {
			return err
		}
		op.AtLeast = atLeast
		data = data[n:]
		op.Body = &Parsing{}
		_, err = decBinary(data, op.Body)
		return err
	case OpOptional, OpLookAhead, OpLookAheadNot:
		op.Body = &Parsing{}
		_, err = decBinary(data, op.Body)
		return err
	case OpChoice:
		count, n, err := decInt(data)
		if err != nil {
			return err
		}
		data = data[n:]
		for i := 0; i < count; i++ {
			alt := &Parsing{}
			n, err = decBinary(data, alt)
			if err != nil {
				return err
			}
			op.Alts = append(op.Alts, alt)
			data = data[n:]
		}
		return nil
	}

	return nil
}

// MarshalBinary converts the block to bytes.
func (p *Parsing) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, encSpan(p.Span)...)
	data = append(data, encBinary(p.Capture)...)
	data = append(data, encInt(len(p.Ops))...)
	for _, ent := range p.Ops {
		data = append(data, encInt(int(ent.Val))...)
		data = append(data, encBinary(ent.Op)...)
	}
	return data, nil
}

// UnmarshalBinary fills the block from bytes. Decoded blocks are
// frozen: they can be walked and dumped but not built on further.
func (p *Parsing) UnmarshalBinary(data []byte) error {
	sp, n, err := decSpan(data)
	if err != nil {
		return err
	}
	p.Span = sp
	data = data[n:]

	p.Capture = &Capture{}
	n, err = decBinary(data, p.Capture)
	if err != nil {
		return err
	}
	data = data[n:]

	count, n, err := decInt(data)
	if err != nil {
		return err
	}
	data = data[n:]

	for i := 0; i < count; i++ {
		val, n, err := decInt(data)
		if err != nil {
			return err
		}
		data = data[n:]
		op := &ParseOp{}
		n, err = decBinary(data, op)
		if err != nil {
			return err
		}
		data = data[n:]
		p.Ops = append(p.Ops, Entry{Val: Value(val), Op: op})
	}

	return nil
}

// MarshalBinary converts the compiled parser to bytes.
func (impl *ParserImpl) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, encString(impl.Name)...)
	data = append(data, encInt(int(impl.Vis))...)
	data = append(data, encString(impl.RetType.Text)...)
	data = append(data, encSpan(impl.RetType.Span)...)
	data = append(data, encInt(int(impl.Memo))...)
	deps := make([]string, len(impl.Depends))
	for i, d := range impl.Depends {
		deps[i] = d.Name
	}
	data = append(data, encStrings(deps)...)
	data = append(data, encBinary(impl.Body)...)
	return data, nil
}

// UnmarshalBinary fills the compiled parser from bytes.
func (impl *ParserImpl) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	impl.Name, n, err = decString(data)
	if err != nil {
		return err
	}
	data = data[n:]

	vis, n, err := decInt(data)
	if err != nil {
		return err
	}
	impl.Vis = grammar.Visibility(vis)
	data = data[n:]

	impl.RetType.Text, n, err = decString(data)
	if err != nil {
		return err
	}
	data = data[n:]

	impl.RetType.Span, n, err = decSpan(data)
	if err != nil {
		return err
	}
	data = data[n:]

	memo, n, err := decInt(data)
	if err != nil {
		return err
	}
	impl.Memo = MemoKind(memo)
	data = data[n:]

	deps, n, err := decStrings(data)
	if err != nil {
		return err
	}
	for _, d := range deps {
		impl.Depends = append(impl.Depends, ParserRef{Name: d})
	}
	data = data[n:]

	impl.Body = &Parsing{}
	if _, err := decBinary(data, impl.Body); err != nil {
		return err
	}

	return nil
}

// MarshalBinary converts the module to bytes.
func (m *Module) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, encBool(m.Debug)...)
	data = append(data, encString(m.RuntimePath)...)
	data = append(data, encStrings(m.Returns)...)
	data = append(data, encInt(len(m.Parsers))...)
	for _, impl := range m.Parsers {
		data = append(data, encBinary(impl)...)
	}
	return data, nil
}

// UnmarshalBinary fills the module from bytes.
func (m *Module) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	m.Debug, n, err = decBool(data)
	if err != nil {
		return err
	}
	data = data[n:]

	m.RuntimePath, n, err = decString(data)
	if err != nil {
		return err
	}
	data = data[n:]

	m.Returns, n, err = decStrings(data)
	if err != nil {
		return err
	}
	data = data[n:]

	count, n, err := decInt(data)
	if err != nil {
		return err
	}
	data = data[n:]

	for i := 0; i < count; i++ {
		impl := &ParserImpl{}
		n, err = decBinary(data, impl)
		if err != nil {
			return err
		}
		m.Parsers = append(m.Parsers, impl)
		data = data[n:]
	}

	return nil
}
