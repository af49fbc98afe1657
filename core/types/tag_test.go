package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeTagString(t *testing.T) {
	assert.Equal(t, "unresolved", Unresolved.String())
	assert.Equal(t, "string", String.String())
	assert.Equal(t, "integer", Integer.String())
	assert.Equal(t, "float", Float.String())
	assert.Equal(t, "boolean", Boolean.String())
	assert.Equal(t, "void", Void.String())
	assert.Equal(t, "TypeTag(99)", TypeTag(99).String())
}

func TestTypeTagPredicates(t *testing.T) {
	assert.False(t, Unresolved.IsResolved())
	assert.False(t, TypeTag(99).IsResolved())
	assert.True(t, Void.IsResolved())

	assert.False(t, Unresolved.IsArgument(), "unresolved is never an argument")
	assert.False(t, Void.IsArgument(), "void is never an argument")
	assert.True(t, String.IsArgument())
	assert.True(t, Boolean.IsArgument())

	assert.True(t, Integer.IsNumeric())
	assert.True(t, Float.IsNumeric())
	assert.False(t, String.IsNumeric())
}

func TestParseTypeTag(t *testing.T) {
	tests := []struct {
		in   string
		want TypeTag
	}{
		{"string", String},
		{"str", String},
		{"int", Integer},
		{"Integer", Integer},
		{"long", Integer},
		{"float", Float},
		{"double", Float},
		{" number ", Float},
		{"bool", Boolean},
		{"boolean", Boolean},
		{"void", Void},
	}
	for _, tt := range tests {
		got, err := ParseTypeTag(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTypeTag("char")
	assert.Error(t, err)
	_, err = ParseTypeTag("unresolved")
	assert.Error(t, err)
}

func TestTypeTagText(t *testing.T) {
	b, err := Float.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "float", string(b))

	_, err = Unresolved.MarshalText()
	assert.Error(t, err)

	var tag TypeTag
	require.NoError(t, tag.UnmarshalText([]byte("double")))
	assert.Equal(t, Float, tag)
	assert.Error(t, tag.UnmarshalText([]byte("bogus")))
}
