package neotoma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_CharLexer_Next(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		reads      int
		expectTok  rune
		expectOk   bool
		expectSpan Span
	}{
		{
			name:     "empty input",
			input:    "",
			reads:    1,
			expectOk: false,
		},
		{
			name:       "first rune",
			input:      "abc",
			reads:      1,
			expectTok:  'a',
			expectOk:   true,
			expectSpan: SpanOf(0, 1),
		},
		{
			name:       "second rune",
			input:      "abc",
			reads:      2,
			expectTok:  'b',
			expectOk:   true,
			expectSpan: SpanOf(1, 2),
		},
		{
			name:       "multibyte rune",
			input:      "é!",
			reads:      1,
			expectTok:  'é',
			expectOk:   true,
			expectSpan: SpanOf(0, 2),
		},
		{
			name:     "read past end",
			input:    "a",
			reads:    2,
			expectOk: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			lx := NewCharLexer(tc.input)

			var tok rune
			var ok bool
			for i := 0; i < tc.reads; i++ {
				tok, ok = lx.Next()
			}

			assert.Equal(tc.expectOk, ok)
			if tc.expectOk {
				assert.Equal(tc.expectTok, tok)
				assert.Equal(tc.expectSpan, lx.Span())
				assert.Equal(tc.input[tc.expectSpan.Start:tc.expectSpan.End], lx.Lexeme())
			}
		})
	}
}

func Test_CharLexer_Fork(t *testing.T) {
	assert := assert.New(t)

	lx := NewCharLexer("xyz")
	lx.Next()

	forked := lx.Fork()
	forked.Next()

	// the fork advanced; the original did not
	assert.Equal(CursorAt(1), lx.Cursor())
	assert.Equal(CursorAt(2), forked.Cursor())

	// committing moves the original forward
	lx.AdvanceToCursor(forked.Cursor())
	assert.Equal(CursorAt(2), lx.Cursor())
}

func Test_CharLexer_AdvanceToCursor_backwards(t *testing.T) {
	assert := assert.New(t)

	lx := NewCharLexer("xyz")
	lx.Next()
	lx.Next()

	assert.Panics(func() {
		lx.AdvanceToCursor(CursorAt(0))
	})
}

func Test_Cursor_Less(t *testing.T) {
	assert := assert.New(t)

	assert.True(CursorAt(1).Less(CursorAt(2)))
	assert.False(CursorAt(2).Less(CursorAt(2)))
	assert.False(CursorAt(3).Less(CursorAt(2)))
}
