package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/neotoma/grammar"
)

func Test_Capture_Unify(t *testing.T) {
	named := func(p string, inner *Capture) *Capture {
		return NamedCapture(grammar.MustPattern(p), inner)
	}

	testCases := []struct {
		name      string
		left      *Capture
		right     *Capture
		expect    *Capture
		expectErr Code
	}{
		{
			name:   "loud absorbs loud",
			left:   LoudCapture(),
			right:  LoudCapture(),
			expect: LoudCapture(),
		},
		{
			name:   "loud absorbs silent",
			left:   LoudCapture(),
			right:  SilentCapture(),
			expect: LoudCapture(),
		},
		{
			name:   "loud absorbs named",
			left:   named("x", LoudCapture()),
			right:  LoudCapture(),
			expect: LoudCapture(),
		},
		{
			name:   "silent with silent",
			left:   SilentCapture(),
			right:  SilentCapture(),
			expect: SilentCapture(),
		},
		{
			name:   "named with same pattern",
			left:   named("x", SilentCapture()),
			right:  named("x", SilentCapture()),
			expect: named("x", SilentCapture()),
		},
		{
			name:   "named with same pattern, un-unifiable inners fall back to loud",
			left:   named("x", TupleCapture(LoudCapture(), LoudCapture())),
			right:  named("x", SilentCapture()),
			expect: named("x", LoudCapture()),
		},
		{
			name:      "named with different patterns",
			left:      named("x", LoudCapture()),
			right:     named("y", LoudCapture()),
			expectErr: CodePatternMismatch,
		},
		{
			name:   "tuples unify pointwise",
			left:   TupleCapture(named("a", LoudCapture()), SilentCapture()),
			right:  TupleCapture(named("a", LoudCapture()), SilentCapture()),
			expect: TupleCapture(named("a", LoudCapture()), SilentCapture()),
		},
		{
			name:      "tuple with silent is a shape mismatch",
			left:      TupleCapture(SilentCapture(), SilentCapture()),
			right:     SilentCapture(),
			expectErr: CodeCaptureMismatch,
		},
		{
			name:   "tuple-vec with equal bindings",
			left:   TupleVecCapture([]string{"a", "b"}),
			right:  TupleVecCapture([]string{"a", "b"}),
			expect: TupleVecCapture([]string{"a", "b"}),
		},
		{
			name:      "tuple-vec with different bindings",
			left:      TupleVecCapture([]string{"a"}),
			right:     TupleVecCapture([]string{"b"}),
			expectErr: CodeCaptureMismatch,
		},
		{
			name:   "tuple-vec absorbs into loud",
			left:   TupleVecCapture([]string{"a"}),
			right:  LoudCapture(),
			expect: LoudCapture(),
		},
		{
			name:   "tuple-vec with named degrades to loud",
			left:   TupleVecCapture([]string{"a"}),
			right:  named("x", SilentCapture()),
			expect: LoudCapture(),
		},
		{
			name:   "tuple-vec with tuple degrades to loud",
			left:   TupleVecCapture([]string{"a", "b"}),
			right:  TupleCapture(LoudCapture(), LoudCapture()),
			expect: LoudCapture(),
		},
		{
			name:   "tuple-vec with silent degrades to loud",
			left:   TupleVecCapture([]string{"a"}),
			right:  SilentCapture(),
			expect: LoudCapture(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Unify(tc.left, tc.right)
			mirror, mirrorErr := Unify(tc.right, tc.left)

			if tc.expectErr != CodeUnknown {
				if !assert.Error(err) {
					return
				}
				assert.Equal(tc.expectErr, err.(*Error).Code)
				// unification symmetry: failure in both directions
				assert.Error(mirrorErr)
				return
			}

			if !assert.NoError(err) {
				return
			}
			assert.True(actual.Equal(tc.expect), "got %s, want %s", actual, tc.expect)

			// unification symmetry: same result in both directions
			if assert.NoError(mirrorErr) {
				assert.True(actual.Equal(mirror), "asymmetric: %s vs %s", actual, mirror)
			}
		})
	}
}

func Test_Capture_IsLoud(t *testing.T) {
	assert := assert.New(t)

	assert.False(SilentCapture().IsLoud())
	assert.True(LoudCapture().IsLoud())
	assert.True(NamedCapture(grammar.MustPattern("x"), SilentCapture()).IsLoud())
	assert.True(TupleVecCapture([]string{"a"}).IsLoud())

	// a tuple is as loud as its right side
	assert.True(TupleCapture(SilentCapture(), LoudCapture()).IsLoud())
	assert.False(TupleCapture(LoudCapture(), SilentCapture()).IsLoud())
}

func Test_Capture_Anonymous(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(CapLoud, NamedCapture(grammar.MustPattern("x"), LoudCapture()).Anonymous().Kind)
	assert.Equal(CapSilent, SilentCapture().Anonymous().Kind)
	assert.Equal(CapSilent, TupleCapture(LoudCapture(), SilentCapture()).Anonymous().Kind)
}

func Test_Capture_Pattern(t *testing.T) {
	named := func(p string, inner *Capture) *Capture {
		return NamedCapture(grammar.MustPattern(p), inner)
	}

	testCases := []struct {
		name      string
		cap       *Capture
		expect    string
		expectErr bool
	}{
		{
			name:   "silent is wildcard",
			cap:    SilentCapture(),
			expect: "_",
		},
		{
			name:   "loud is wildcard",
			cap:    LoudCapture(),
			expect: "_",
		},
		{
			name:   "identifier binding",
			cap:    named("n", LoudCapture()),
			expect: "n @ _",
		},
		{
			name:   "destructuring pattern over plain value",
			cap:    named("Num(n)", LoudCapture()),
			expect: "Num(n)",
		},
		{
			name:      "destructuring pattern over structured inner",
			cap:       named("Num(n)", TupleCapture(LoudCapture(), LoudCapture())),
			expectErr: true,
		},
		{
			name:   "tuple",
			cap:    TupleCapture(named("a", LoudCapture()), named("b", LoudCapture())),
			expect: "(a @ _, b @ _)",
		},
		{
			name:   "tuple-vec",
			cap:    TupleVecCapture([]string{"a", "b"}),
			expect: "(a, b)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := tc.cap.Pattern()

			if tc.expectErr {
				if assert.Error(err) {
					assert.Equal(CodeBadCapturePattern, err.(*Error).Code)
				}
				return
			}
			assert.NoError(err)
			assert.Equal(tc.expect, actual)
		})
	}
}
