package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/neotoma/grammar"
)

func Test_rewriteAction(t *testing.T) {
	testCases := []struct {
		name           string
		action         string
		expect         string
		expectReferred bool
	}{
		{
			name:           "bare self",
			action:         "self",
			expect:         "__self",
			expectReferred: true,
		},
		{
			name:           "self in binary expression",
			action:         "self + 1",
			expect:         "__self + 1",
			expectReferred: true,
		},
		{
			name:           "self in plain parens",
			action:         "(self + 1) * 2",
			expect:         "(__self + 1) * 2",
			expectReferred: true,
		},
		{
			name:           "self in index expression",
			action:         "xs[self]",
			expect:         "xs[__self]",
			expectReferred: true,
		},
		{
			name:           "no self is conservative",
			action:         "lhs - rhs",
			expect:         "lhs - rhs",
			expectReferred: false,
		},
		{
			name:           "self in invocation arguments",
			action:         `fmt.Sprintf("%d", self)`,
			expect:         `fmt.Sprintf("%d", __self)`,
			expectReferred: true,
		},
		{
			name:           "self in constructor arguments",
			action:         "Loop(self)",
			expect:         "Loop(__self)",
			expectReferred: true,
		},
		{
			name:           "self in nested invocations",
			action:         `fmt.Sprintf("%v", mylib.Wrap(self))`,
			expect:         `fmt.Sprintf("%v", mylib.Wrap(__self))`,
			expectReferred: true,
		},
		{
			name:           "self in method call on self",
			action:         "self.String() + self",
			expect:         "__self.String() + __self",
			expectReferred: true,
		},
		{
			name:           "literal tokens are preserved verbatim",
			action:         `fmt.Sprintf("self", 0x2A)`,
			expect:         `fmt.Sprintf("self", 0x2A)`,
			expectReferred: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			action := grammar.MustExpr(tc.action)
			before := action.Clone()

			actual, referred := rewriteAction(action)

			assert.Equal(tc.expectReferred, referred)
			assert.True(actual.Equal(grammar.MustExpr(tc.expect)), "got %s", actual)

			// the input is never mutated
			assert.True(action.Equal(before), "rewriteAction mutated its input")

			// conservativity: no self means token-equal output
			if !tc.expectReferred {
				assert.True(actual.Equal(before))
			}
		})
	}
}
