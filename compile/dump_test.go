package compile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Module_Dump(t *testing.T) {
	assert := assert.New(t)

	mod, err := Compile(subtractionGrammar())
	if !assert.NoError(err) {
		return
	}

	dump := mod.Dump()

	// summary table lists every parser with its memo kind
	assert.Contains(dump, "Digit")
	assert.Contains(dump, "Memorize")
	assert.Contains(dump, "LeftRec")

	// op listings use the #N = Op notation
	assert.Contains(dump, "= Just")
	assert.Contains(dump, "= Call Digit")
	assert.Contains(dump, "= Choice:")
	assert.Contains(dump, "= Map")
	assert.Contains(dump, "= Repeat >=1:")

	// entry points are listed
	assert.Contains(dump, "return Expr")

	// the dump is stable
	assert.Equal(dump, mod.Dump())

	// one parser's listing renders standalone too
	expr := mod.Parser("Expr")
	assert.True(strings.HasPrefix(expr.Dump(), "pub Expr -> int [LeftRec]:"))
}
