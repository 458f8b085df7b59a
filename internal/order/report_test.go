package order

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/testutil"
)

// buildReportFixture builds a small design:
//
//	clk, rst -> mix -> d
//	idle -> dead
//	q {PRE}
func buildReportFixture(t *testing.T) *testutil.Fixture {
	t.Helper()
	fx := testutil.NewFixture(t)
	clk := fx.Var("clk", fx.Set("posedge clk"))
	rst := fx.Var("rst", fx.Set("posedge rst"))
	mix := fx.Logic("mix")
	d := fx.Var("d", 0)
	fx.PhaseVar("q", graph.PhasePre, 0)
	idle := fx.Var("idle", 0)
	dead := fx.Logic("dead")
	fx.Edge(clk, mix, 1)
	fx.Edge(rst, mix, 1)
	fx.Edge(mix, d, 1)
	fx.Edge(idle, dead, 1)
	return fx
}

// TestProcessDomains_Report tests the report file against a golden copy.
func TestProcessDomains_Report(t *testing.T) {
	fx := buildReportFixture(t)
	dir := t.TempDir()

	res, err := ProcessDomains(fx.Netlist, fx.Graph, fx.Canon, nil, Options{
		Tag:     "top",
		DumpDir: dir,
		Report:  true,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "top_order_edges.txt"), res.ReportPath)

	data, err := os.ReadFile(res.ReportPath)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "domain_report", data)

	// The report is taken before pruning
	assert.Equal(t, []string{"dead"}, res.Pruned)
	assert.Contains(t, string(data), "idle")
}

// TestReportLines_Sorted tests that lines are ordered independently of the
// graph order.
func TestReportLines_Sorted(t *testing.T) {
	fx := testutil.NewFixture(t)
	h := fx.Set("posedge clk")
	fx.Var("b", h)
	fx.Var("a", h)
	process(t, fx, nil)

	lines := ReportLines(fx.Graph, fx.Canon)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  0x0001 b "))
	assert.True(t, strings.HasPrefix(lines[1], "  0x0002 a "))

	// Same ids and names, reversed insertion: identical output
	fx2 := testutil.NewFixture(t)
	fx2.Netlist.AddSignal("b")
	fx2.Netlist.AddSignal("a")
	h2 := fx2.Set("posedge clk")
	fx2.Var("a", h2)
	fx2.Var("b", h2)
	process(t, fx2, nil)
	assert.Equal(t, lines, ReportLines(fx2.Graph, fx2.Canon))
}

// TestReportLines_SkipsLogic tests that only variables are listed.
func TestReportLines_SkipsLogic(t *testing.T) {
	fx := testutil.NewFixture(t)
	h := fx.Set("posedge clk")
	fx.SeqLogic("seq", h)
	fx.Var("q", h)

	lines := ReportLines(fx.Graph, fx.Canon)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], " q ")
	assert.True(t, strings.HasSuffix(lines[0], " posedge clk"))
}

// TestReportLines_PadsName tests the fixed-width name column.
func TestReportLines_PadsName(t *testing.T) {
	fx := testutil.NewFixture(t)
	fx.PhaseVar("q", graph.PhasePost, fx.Set("posedge clk"))

	lines := ReportLines(fx.Graph, fx.Canon)
	require.Len(t, lines, 1)
	assert.Equal(t, "  0x0001 "+"q {POST}"+strings.Repeat(" ", 42)+" posedge clk", lines[0])
}

// TestProcessDomains_ReportUnwritable tests that a report that cannot be
// created aborts the pass with the path.
func TestProcessDomains_ReportUnwritable(t *testing.T) {
	fx := buildReportFixture(t)
	missing := filepath.Join(t.TempDir(), "no", "such", "dir")

	_, err := ProcessDomains(fx.Netlist, fx.Graph, fx.Canon, nil, Options{
		Tag:     "top",
		DumpDir: missing,
		Report:  true,
	})
	require.Error(t, err)

	var re *ResourceError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, filepath.Join(missing, "top_order_edges.txt"), re.Path)
	assert.Contains(t, err.Error(), "can't write file")
	assert.False(t, IsInvariantError(err))

	// Nothing was pruned
	assert.Len(t, fx.Netlist.Logic(), 2)
}

// TestProcessDomains_DumpGraph tests the Mermaid dump.
func TestProcessDomains_DumpGraph(t *testing.T) {
	fx := testutil.NewFixture(t)
	clk := fx.Var("clk", fx.Set("posedge clk"))
	l := fx.Logic("l")
	cut := fx.Logic("cut")
	fx.Edge(clk, l, 1)
	fx.Edge(clk, cut, 0)

	dir := t.TempDir()
	res, err := ProcessDomains(fx.Netlist, fx.Graph, fx.Canon, nil, Options{
		Tag:       "top",
		DumpDir:   dir,
		DumpGraph: true,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "top_orderg_domain.mmd"), res.GraphPath)

	data, err := os.ReadFile(res.GraphPath)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `v2[["l<br/>#1 posedge clk"]]`)
	assert.Contains(t, out, `v3[["cut<br/>[DEL]"]]`)
	assert.Contains(t, out, "v1 -->|1| v2")
	assert.Contains(t, out, "v1 -.->|0| v3")
	assert.Empty(t, res.ReportPath)
}
