package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenTreeKey_OrderAndDuplicatesIgnored(t *testing.T) {
	a := MustParseSenTree("posedge clk", "negedge rst_n")
	b := MustParseSenTree("negedge rst_n", "posedge clk", "posedge clk")

	assert.Equal(t, SenTreeKey(a), SenTreeKey(b))
}

func TestSenTreeKey_MultiIgnored(t *testing.T) {
	a := MustParseSenTree("posedge clk")
	b := a.Clone()
	b.Multi = true

	assert.Equal(t, SenTreeKey(a), SenTreeKey(b))
}

func TestSenTreeKey_ChangesWithContent(t *testing.T) {
	base := SenTreeKey(MustParseSenTree("posedge clk"))

	assert.NotEqual(t, base, SenTreeKey(MustParseSenTree("negedge clk")))
	assert.NotEqual(t, base, SenTreeKey(MustParseSenTree("posedge clk2")))
	assert.NotEqual(t, base, SenTreeKey(MustParseSenTree("posedge clk", "initial")))
}

func TestSenTreeKey_AliasesShareKey(t *testing.T) {
	assert.Equal(t,
		SenTreeKey(MustParseSenTree("bothedge d")),
		SenTreeKey(MustParseSenTree("edge d")))
	assert.Equal(t,
		SenTreeKey(MustParseSenTree("combo")),
		SenTreeKey(MustParseSenTree("*")))
}

func TestSenTreeKey_DoesNotMutateInput(t *testing.T) {
	tree := MustParseSenTree("posedge z", "posedge a", "posedge z")
	SenTreeKey(tree)

	assert.Equal(t, "posedge z or posedge a or posedge z", tree.String())
}

func TestSenTreeKey_MatchesDefinition(t *testing.T) {
	tree := MustParseSenTree("posedge clk")

	h := sha256.New()
	h.Write([]byte(DomainSenTree))
	h.Write([]byte{0x00})
	h.Write([]byte("\x07posedge\x03clk"))

	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), SenTreeKey(tree))
	assert.Len(t, SenTreeKey(tree), 64)
}

func TestSenTreeKey_SignalNamesByteForByte(t *testing.T) {
	nfc := &SenTree{Items: []SenItem{{Edge: EdgePos, Signal: "caf\u00e9"}}}
	nfd := &SenTree{Items: []SenItem{{Edge: EdgePos, Signal: "cafe\u0301"}}}
	assert.NotEqual(t, SenTreeKey(nfc), SenTreeKey(nfd))

	ff := &SenTree{Items: []SenItem{{Edge: EdgePos, Signal: "a\xff"}}}
	fe := &SenTree{Items: []SenItem{{Edge: EdgePos, Signal: "a\xfe"}}}
	assert.NotEqual(t, SenTreeKey(ff), SenTreeKey(fe))
}

func TestSenTreeKey_PairBoundaries(t *testing.T) {
	a := &SenTree{Items: []SenItem{{Edge: EdgePos, Signal: "ab"}}}
	b := &SenTree{Items: []SenItem{{Edge: EdgePos, Signal: "a"}, {Edge: EdgePos, Signal: "b"}}}
	assert.NotEqual(t, SenTreeKey(a), SenTreeKey(b))

	// Signal-less edges ignore a stray name.
	assert.Equal(t,
		SenTreeKey(&SenTree{Items: []SenItem{{Edge: EdgeCombo}}}),
		SenTreeKey(&SenTree{Items: []SenItem{{Edge: EdgeCombo, Signal: "x"}}}))
}

func TestContentHash_DomainSeparation(t *testing.T) {
	v := map[string]any{"tag": "top"}

	h1, err := ContentHash(DomainSenTree, v)
	require.NoError(t, err)
	h2, err := ContentHash(DomainGraph, v)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestContentHash_KeyOrderIrrelevant(t *testing.T) {
	h1, err := ContentHash(DomainGraph, map[string]any{"a": 1, "b": "x"})
	require.NoError(t, err)
	h2, err := ContentHash(DomainGraph, map[string]any{"b": "x", "a": 1})
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestContentHash_Error(t *testing.T) {
	_, err := ContentHash(DomainGraph, map[string]any{"f": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ContentHash")
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	// "ab" + "c" must not collide with "a" + "bc"
	assert.NotEqual(t,
		hashWithDomain("ab", []byte("c")),
		hashWithDomain("a", []byte("bc")))
}
