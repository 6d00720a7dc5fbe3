package neotoma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Just(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		want      rune
		expectErr bool
	}{
		{
			name:  "match",
			input: "x",
			want:  'x',
		},
		{
			name:      "wrong token",
			input:     "y",
			want:      'x',
			expectErr: true,
		},
		{
			name:      "empty input",
			input:     "",
			want:      'x',
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			s := NewState[rune](NewCharLexer(tc.input))
			actual, err := Just(tc.want)(s)

			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
				assert.Equal(tc.want, actual)
			}
		})
	}
}

func Test_JustLit(t *testing.T) {
	assert := assert.New(t)

	s := NewState[rune](NewCharLexer("q"))
	tok, err := JustLit[rune](CharLit('q'))(s)
	assert.NoError(err)
	assert.Equal('q', tok)

	s = NewState[rune](NewCharLexer("q"))
	_, err = JustLit[rune](StringLit("q"))(s)
	assert.Error(err, "rune tokens do not match string literals")
}

func Test_Repeat(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		atLeast   int
		expect    int
		expectEnd Cursor
		expectErr bool
	}{
		{
			name:      "zero matches allowed",
			input:     "bbb",
			atLeast:   0,
			expect:    0,
			expectEnd: CursorAt(0),
		},
		{
			name:      "some matches",
			input:     "aab",
			atLeast:   0,
			expect:    2,
			expectEnd: CursorAt(2),
		},
		{
			name:      "at least one met",
			input:     "aaa",
			atLeast:   1,
			expect:    3,
			expectEnd: CursorAt(3),
		},
		{
			name:      "at least one not met",
			input:     "b",
			atLeast:   1,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			s := NewState[rune](NewCharLexer(tc.input))
			actual, err := Repeat(Just('a'), tc.atLeast)(s)

			if tc.expectErr {
				assert.Error(err)
				assert.Equal(CursorAt(0), s.Cursor())
				return
			}
			assert.NoError(err)
			assert.Len(actual, tc.expect)
			assert.Equal(tc.expectEnd, s.Cursor())
		})
	}
}

func Test_OrNot(t *testing.T) {
	assert := assert.New(t)

	s := NewState[rune](NewCharLexer("ab"))
	v, err := OrNot(Just('a'))(s)
	assert.NoError(err)
	assert.True(v.Ok)
	assert.Equal('a', v.Val)
	assert.Equal(CursorAt(1), s.Cursor())

	v, err = OrNot(Just('a'))(s)
	assert.NoError(err)
	assert.False(v.Ok)
	assert.Equal(CursorAt(1), s.Cursor())
}

// S3: A -> 'x' !'y' fails on "xy" and succeeds on "xz" consuming only
// the 'x'.
func Test_LookAheadNot(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectErr bool
		expectEnd Cursor
	}{
		{
			name:      "followed by forbidden token",
			input:     "xy",
			expectErr: true,
		},
		{
			name:      "followed by other token",
			input:     "xz",
			expectEnd: CursorAt(1),
		},
		{
			name:      "at end of input",
			input:     "x",
			expectEnd: CursorAt(1),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			a := ThenIgnore(Just('x'), LookAheadNot(Just('y')))

			s := NewState[rune](NewCharLexer(tc.input))
			fork := s.Fork()
			v, err := a(fork)

			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			s.AdvanceTo(fork)
			assert.Equal('x', v)
			assert.Equal(tc.expectEnd, s.Cursor())
		})
	}
}

func Test_LookAhead(t *testing.T) {
	assert := assert.New(t)

	s := NewState[rune](NewCharLexer("ab"))
	_, err := LookAhead(Just('a'))(s)
	assert.NoError(err)
	// the lookahead never advances
	assert.Equal(CursorAt(0), s.Cursor())

	_, err = LookAhead(Just('b'))(s)
	assert.Error(err)
	assert.Equal(CursorAt(0), s.Cursor())
}

// S5: for S -> 'a' 'b' | 'a', input "a" matches the second rule and
// input "ab" matches the first.
func Test_Choice_ordered(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "both tokens present matches first alternative",
			input:  "ab",
			expect: "ab",
		},
		{
			name:   "one token present matches second alternative",
			input:  "a",
			expect: "a",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			sParser := Choice(
				Map(Then(Just('a'), Just('b')), func(Pair[rune, rune]) string { return "ab" }),
				Map(Just('a'), func(rune) string { return "a" }),
			)

			s := NewState[rune](NewCharLexer(tc.input))
			actual, err := sParser(s)
			assert.NoError(err)
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Choice_allFail(t *testing.T) {
	assert := assert.New(t)

	s := NewState[rune](NewCharLexer("z"))
	_, err := Choice(Just('a'), Just('b'))(s)
	assert.Error(err)
	assert.Equal(CursorAt(0), s.Cursor())
}

func Test_sequencing(t *testing.T) {
	assert := assert.New(t)

	s := NewState[rune](NewCharLexer("ab"))
	pair, err := Then(Just('a'), Just('b'))(s)
	assert.NoError(err)
	assert.Equal('a', pair.First)
	assert.Equal('b', pair.Second)

	s = NewState[rune](NewCharLexer("ab"))
	first, err := ThenIgnore(Just('a'), Just('b'))(s)
	assert.NoError(err)
	assert.Equal('a', first)

	s = NewState[rune](NewCharLexer("ab"))
	second, err := IgnoreThen(Just('a'), Just('b'))(s)
	assert.NoError(err)
	assert.Equal('b', second)

	// sequencing short-circuits on the first failure
	s = NewState[rune](NewCharLexer("xb"))
	_, err = Then(Just('a'), Just('b'))(s)
	assert.Error(err)
}
