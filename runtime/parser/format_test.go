package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTree(t *testing.T) {
	tree, err := parseQuiet(`(add (mult 2 3) (length "ab"))`)
	require.NoError(t, err)

	var buf bytes.Buffer
	FormatTree(&buf, tree, false)

	expected := `add -> integer
├─ mult -> integer
│  ├─ 2 : integer
│  └─ 3 : integer
└─ length -> integer
   └─ "ab" : string
`
	assert.Equal(t, expected, buf.String())
}

func TestFormatTreeLeafRoot(t *testing.T) {
	tree, err := parseQuiet("2.5")
	require.NoError(t, err)

	var buf bytes.Buffer
	FormatTree(&buf, tree, false)
	assert.Equal(t, "2.5 : float\n", buf.String())
}

func TestFormatTreeColor(t *testing.T) {
	tree, err := parseQuiet("(add 1 2)")
	require.NoError(t, err)

	var buf bytes.Buffer
	FormatTree(&buf, tree, true)
	assert.Contains(t, buf.String(), ColorBlue+"add"+ColorReset)
	assert.Contains(t, buf.String(), ColorGreen+"1"+ColorReset)
}

func TestFormatTreeEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTree(&buf, nil, false)
	assert.Equal(t, "(empty tree)\n", buf.String())
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "x", Colorize("x", ColorRed, false))
	assert.Equal(t, ColorRed+"x"+ColorReset, Colorize("x", ColorRed, true))
}
