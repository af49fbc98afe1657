package parser

import (
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintIgnoresWhitespace(t *testing.T) {
	a, err := parseQuiet("(add (mult 5 5) (mult 5 5))")
	require.NoError(t, err)
	b, err := parseQuiet("  (add\n\t(mult 5   5)\n\t(mult 5 5))\n")
	require.NoError(t, err)

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
}

func TestFingerprintDistinguishesTrees(t *testing.T) {
	inputs := []string{
		"(add 1 2)",
		"(add 2 1)",
		"(add 1 2.0)",
		"(sum 1 2)",
		"(sum (sum 1) 2)",
		"(sum (sum 1 2))",
		`(length "1")`,
	}

	seen := make(map[[32]byte]string)
	for _, input := range inputs {
		tree, err := parseQuiet(input)
		require.NoError(t, err, input)
		sum, err := tree.Fingerprint()
		require.NoError(t, err)
		if prev, dup := seen[sum]; dup {
			t.Errorf("%q and %q share a fingerprint", prev, input)
		}
		seen[sum] = input
	}
}

func TestMarshalBinaryIsStable(t *testing.T) {
	tree, err := parseQuiet(`(concat "a" (concat "b" "c"))`)
	require.NoError(t, err)

	first, err := tree.MarshalBinary()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := tree.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	var decoded CanonicalTree
	require.NoError(t, cbor.Unmarshal(first, &decoded))
	assert.Equal(t, uint8(canonicalVersion), decoded.Version)
	require.Len(t, decoded.Nodes, 5)
	assert.Equal(t, CanonicalNode{Kind: uint8(NodeCall), Text: "concat", Type: "string", Arity: 2}, decoded.Nodes[0])
	assert.Equal(t, CanonicalNode{Kind: uint8(NodeLeaf), Text: `"a"`, Type: "string"}, decoded.Nodes[1])
}

func TestFingerprintString(t *testing.T) {
	tree, err := parseQuiet("7")
	require.NoError(t, err)

	s, err := tree.FingerprintString()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "blake2b:"))
	assert.Len(t, s, len("blake2b:")+64)
}
