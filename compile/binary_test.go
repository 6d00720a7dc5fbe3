package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Module_MarshalBinary_roundTrip(t *testing.T) {
	assert := assert.New(t)

	g := subtractionGrammar()
	g.Options.Debug = true
	mod, err := Compile(g)
	if !assert.NoError(err) {
		return
	}

	data, err := mod.MarshalBinary()
	if !assert.NoError(err) {
		return
	}

	decoded := &Module{}
	if !assert.NoError(decoded.UnmarshalBinary(data)) {
		return
	}

	assert.Equal(mod.Debug, decoded.Debug)
	assert.Equal(mod.RuntimePath, decoded.RuntimePath)
	assert.Equal(mod.Returns, decoded.Returns)
	assert.Len(decoded.Parsers, len(mod.Parsers))

	for i := range mod.Parsers {
		assert.Equal(mod.Parsers[i].Name, decoded.Parsers[i].Name)
		assert.Equal(mod.Parsers[i].Memo, decoded.Parsers[i].Memo)
		assert.Equal(mod.Parsers[i].Depends, decoded.Parsers[i].Depends)
	}

	// the decoded module dumps identically, so every op, capture, and
	// action survived the trip
	assert.Equal(mod.Dump(), decoded.Dump())
}

func Test_Module_UnmarshalBinary_truncated(t *testing.T) {
	assert := assert.New(t)

	mod, err := Compile(subtractionGrammar())
	if !assert.NoError(err) {
		return
	}
	data, err := mod.MarshalBinary()
	if !assert.NoError(err) {
		return
	}

	decoded := &Module{}
	assert.Error(decoded.UnmarshalBinary(data[:len(data)/2]))
}
