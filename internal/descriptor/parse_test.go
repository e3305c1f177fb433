package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBareToken(t *testing.T) {
	nodes, err := Parse("SDES")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "SDES", nodes[0].Type)
	assert.False(t, nodes[0].HasValue)
	assert.False(t, nodes[0].IsGroup())
}

func TestParseNumericAndStringValues(t *testing.T) {
	nodes, err := Parse(`src=0xdeadbeef cname="host@example" count=8`)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	assert.Equal(t, "src", nodes[0].Type)
	num, err := nodes[0].Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0xdeadbeef), num)

	assert.Equal(t, "cname", nodes[1].Type)
	str, err := nodes[1].String()
	require.NoError(t, err)
	assert.Equal(t, "host@example", str)

	num, err = nodes[2].Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(8), num)
}

func TestParseNestedGroup(t *testing.T) {
	nodes, err := Parse(`(SDES (src=0xdeadbeef cname="host@example" tool="rtpsend"))`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	outer := nodes[0]
	require.True(t, outer.IsGroup())
	require.Len(t, outer.Children, 2)

	head := outer.Children[0]
	assert.Equal(t, "SDES", head.Type)
	assert.False(t, head.IsGroup())

	block := outer.Children[1]
	require.True(t, block.IsGroup())
	require.Len(t, block.Children, 3)

	srcNode := block.First("src")
	require.NotNil(t, srcNode)
	num, err := srcNode.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0xdeadbeef), num)

	toolNode := block.First("tool")
	require.NotNil(t, toolNode)
	str, err := toolNode.String()
	require.NoError(t, err)
	assert.Equal(t, "rtpsend", str)
}

func TestParseMultipleTopLevelGroups(t *testing.T) {
	nodes, err := Parse(`(SR (ssrc=1)) (BYE (ssrc=1))`)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	for _, n := range nodes {
		assert.True(t, n.IsGroup())
	}
}

func TestParseOctalAndHexNumbers(t *testing.T) {
	nodes, err := Parse("p=0x1 count=010")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	num, err := nodes[0].Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), num)

	num, err = nodes[1].Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(8), num)
}

func TestParseUnbalancedParens(t *testing.T) {
	_, err := Parse("(SDES (src=1)")
	assert.Error(t, err)

	_, err = Parse("SDES (src=1))")
	assert.Error(t, err)
}

func TestParseUnterminatedString(t *testing.T) {
	_, err := Parse(`cname="unterminated`)
	assert.Error(t, err)
}

func TestParseInvalidValue(t *testing.T) {
	_, err := Parse("cname=unquoted")
	assert.Error(t, err)
}

func TestParseEmptyChunkIsStillAGroup(t *testing.T) {
	nodes, err := Parse(`(SDES (ssrc=1))`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	block := nodes[0].Children[1]
	require.Len(t, block.Children, 1)
}
