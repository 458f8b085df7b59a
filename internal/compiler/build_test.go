package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/order"
)

func buildCounter(t *testing.T) *Design {
	t.Helper()
	spec, err := LoadFile("testdata/counter.yaml")
	require.NoError(t, err)
	d, err := Build(spec)
	require.NoError(t, err)
	return d
}

func domainText(t *testing.T, d *Design, id string) string {
	t.Helper()
	v, ok := d.Vertices[id]
	require.True(t, ok, "vertex %q", id)
	h, ok := v.Domain().Handle()
	if !ok {
		return v.Domain().String()
	}
	return d.Canon.String(h)
}

// TestBuild_Structure tests that Build mirrors the description.
func TestBuild_Structure(t *testing.T) {
	d := buildCounter(t)

	assert.Equal(t, "counter", d.Tag)
	assert.Len(t, d.Hash, 64)
	assert.Equal(t, 10, d.Graph.Len())
	assert.Equal(t, 9, d.Graph.EdgeCount())
	assert.Len(t, d.Netlist.Logic(), 3)

	clk, ok := d.Netlist.Signal("clk")
	require.True(t, ok)
	assert.Equal(t, "0x0001", clk.ID.String())
	unused, ok := d.Netlist.Signal("unused")
	require.True(t, ok)
	assert.Equal(t, "0x0006", unused.ID.String())

	// clk, rst, reg and the external set of en
	assert.Equal(t, 4, d.Canon.Len())
	require.Len(t, d.External["en"], 1)
	assert.Equal(t, "negedge clk", d.Canon.String(d.External["en"][0]))

	pre, ok := d.Vertices["cnt_pre"].(*graph.VarVertex)
	require.True(t, ok)
	assert.Equal(t, graph.PhasePre, pre.Phase)
	assert.False(t, pre.DomainMatters())

	assert.Equal(t, "posedge clk or posedge rst", domainText(t, d, "reg"))
	assert.False(t, d.Vertices["inc"].Domain().IsSet())
}

// TestBuild_RejectsInvalid tests that validation errors surface from Build.
func TestBuild_RejectsInvalid(t *testing.T) {
	spec := validSpec()
	spec.Edges = append(spec.Edges, EdgeSpec{From: "q", To: "l"}, EdgeSpec{From: "x", To: "l"})

	_, err := Build(spec)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "(and 1 more)")
}

// TestBuild_ProcessDomains tests the counter design end to end.
func TestBuild_ProcessDomains(t *testing.T) {
	d := buildCounter(t)
	dir := t.TempDir()

	res, err := order.ProcessDomains(d.Netlist, d.Graph, d.Canon, d.External.Provide, order.Options{
		Tag:     d.Tag,
		DumpDir: dir,
		Report:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "posedge clk or posedge rst", domainText(t, d, "cnt"))
	assert.Equal(t, "posedge clk or negedge clk or posedge rst", domainText(t, d, "inc"))
	assert.Equal(t, "posedge clk or negedge clk or posedge rst", domainText(t, d, "cnt_next"))
	for _, id := range []string{"en", "cnt_pre", "unused"} {
		assert.True(t, d.Vertices[id].Domain().IsDeleted(), id)
	}

	assert.Equal(t, []string{"idle"}, res.Pruned)
	assert.Equal(t, 3, res.Preset)
	_, ok := d.Vertex("idle")
	assert.False(t, ok)
	_, ok = d.Vertex("reg")
	assert.True(t, ok)
	assert.Len(t, d.Netlist.Logic(), 2)

	// Merging cnt with the external set of en derives one new set
	assert.Equal(t, 5, d.Canon.Len())
	h, _ := d.Vertices["inc"].Domain().Handle()
	assert.True(t, d.Canon.Multi(h))

	report, err := os.ReadFile(filepath.Join(dir, "counter_order_edges.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "Signals and their clock domains:")
	assert.Contains(t, string(report), "DELETED")
}

// TestBuild_WithoutExternals tests that dropping the external provider
// narrows the derived domain to the registered one.
func TestBuild_WithoutExternals(t *testing.T) {
	d := buildCounter(t)

	_, err := order.ProcessDomains(d.Netlist, d.Graph, d.Canon, order.NoExternalDomains, order.Options{Tag: d.Tag})
	require.NoError(t, err)

	reg, _ := d.Vertices["reg"].Domain().Handle()
	inc, _ := d.Vertices["inc"].Domain().Handle()
	assert.Equal(t, reg, inc)
	assert.NotEqual(t, canon.None, inc)
}
