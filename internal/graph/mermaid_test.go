package graph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/ir"
)

func TestWriteMermaid(t *testing.T) {
	g, nl := newTestGraph()
	a := g.AddVar(nl.AddSignal(`a"b`), PhasePre)
	l := g.AddLogic(nl.AddLogic("l", ir.LogicComb, ""), canon.None)
	l.SetDomain(Deleted())
	_, err := g.AddEdge(a, l, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteMermaid(&buf, g, Domain.String))

	want := "graph TD\n" +
		"    v1[\"a#quot;b {PRE}<br/>[unresolved]\"]\n" +
		"    v2[[\"l<br/>[DEL]\"]]\n" +
		"    v1 -.->|0| v2\n"
	assert.Equal(t, want, buf.String())
}
