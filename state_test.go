package neotoma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParserState_ParseWith(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		match     func(rune) (rune, bool)
		expect    rune
		expectErr bool
	}{
		{
			name:  "matcher accepts",
			input: "a",
			match: func(ch rune) (rune, bool) { return ch, ch == 'a' },

			expect: 'a',
		},
		{
			name:      "matcher rejects",
			input:     "b",
			match:     func(ch rune) (rune, bool) { return ch, ch == 'a' },
			expectErr: true,
		},
		{
			name:      "empty input",
			input:     "",
			match:     func(ch rune) (rune, bool) { return ch, true },
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			s := NewState[rune](NewCharLexer(tc.input))
			actual, err := ParseWith(s, tc.match)

			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
				assert.Equal(tc.expect, actual)
			}
		})
	}
}

func Test_ParserState_Fork(t *testing.T) {
	assert := assert.New(t)

	s := NewState[rune](NewCharLexer("abc"))

	fork := s.Fork()
	_, err := ParseWith(fork, func(ch rune) (rune, bool) { return ch, true })
	assert.NoError(err)

	// speculation on the fork does not move the outer state
	assert.Equal(CursorAt(0), s.Cursor())
	assert.Equal(CursorAt(1), fork.Cursor())

	// committing does
	s.AdvanceTo(fork)
	assert.Equal(CursorAt(1), s.Cursor())
}

func Test_ParserState_AdvanceTo_backwards(t *testing.T) {
	assert := assert.New(t)

	s := NewState[rune](NewCharLexer("abc"))
	behind := s.Fork()

	_, err := ParseWith(s, func(ch rune) (rune, bool) { return ch, true })
	assert.NoError(err)

	assert.Panics(func() {
		s.AdvanceTo(behind)
	})
}

// cursor monotonicity: successful ops move the cursor forward or not
// at all, and failed ops leave the outer state untouched.
func Test_ParserState_monotonicity(t *testing.T) {
	assert := assert.New(t)

	s := NewState[rune](NewCharLexer("ab"))

	pre := s.Cursor()
	_, err := Then(Just('a'), Just('b'))(s)
	assert.NoError(err)
	assert.False(s.Cursor().Less(pre))

	// a failing parse run on a fork leaves the outer cursor unchanged
	s2 := NewState[rune](NewCharLexer("ab"))
	pre = s2.Cursor()
	_, err = Choice(Then(Just('a'), Just('x')))(s2)
	assert.Error(err)
	assert.Equal(pre, s2.Cursor())
}
