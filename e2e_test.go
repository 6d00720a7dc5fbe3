package neotoma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// a miniature brainfuck front-end, in the shape the code emitter
// produces: one struct per non-terminal owning its memo, recursion
// through ParseMemo.

type bfInstr struct {
	op   rune
	body []bfInstr
}

type bfPrimitive struct {
	memo Memo[bfInstr]
}

func (p *bfPrimitive) ParseMemo(s *ParserState[rune]) (bfInstr, error) {
	return Memorize(s, &p.memo, p.parseImpl)
}

func (p *bfPrimitive) parseImpl(s *ParserState[rune]) (bfInstr, error) {
	return Choice(
		Map(Just('+'), func(rune) bfInstr { return bfInstr{op: '+'} }),
		Map(Just('-'), func(rune) bfInstr { return bfInstr{op: '-'} }),
		func(s *ParserState[rune]) (bfInstr, error) {
			if _, err := Just('[')(s); err != nil {
				return bfInstr{}, err
			}
			body, err := Repeat(func(s *ParserState[rune]) (bfInstr, error) {
				return p.ParseMemo(s)
			}, 1)(s)
			if err != nil {
				return bfInstr{}, err
			}
			if _, err := Just(']')(s); err != nil {
				return bfInstr{}, err
			}
			return bfInstr{op: '[', body: body}, nil
		},
	)(s)
}

type bfProgram struct{}

func (bfProgram) ParseStream(s *ParserState[rune]) ([]bfInstr, error) {
	prim := &bfPrimitive{}
	return Repeat(func(s *ParserState[rune]) (bfInstr, error) {
		return prim.ParseMemo(s)
	}, 0)(s)
}

// S2: "[+[-]]" parses to Loop([Incr, Loop([Decr])]).
func Test_ParseString_brainfuckNesting(t *testing.T) {
	assert := assert.New(t)

	ast, err := ParseString[[]bfInstr](bfProgram{}, "[+[-]]")
	assert.NoError(err)

	if !assert.Len(ast, 1) {
		return
	}
	outer := ast[0]
	assert.Equal('[', outer.op)
	if !assert.Len(outer.body, 2) {
		return
	}
	assert.Equal('+', outer.body[0].op)
	assert.Equal('[', outer.body[1].op)
	if !assert.Len(outer.body[1].body, 1) {
		return
	}
	assert.Equal('-', outer.body[1].body[0].op)
}

func Test_ParseString_brainfuckUnbalanced(t *testing.T) {
	assert := assert.New(t)

	// the top-level Repeat stops at the unmatched bracket without
	// consuming it; the parse itself succeeds with what matched
	ast, err := ParseString[[]bfInstr](bfProgram{}, "+[-")
	assert.NoError(err)
	assert.Len(ast, 1)
	assert.Equal('+', ast[0].op)
}
