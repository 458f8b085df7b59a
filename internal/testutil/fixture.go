package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/ir"
)

// Fixture builds a netlist, order graph and canon in lockstep for tests.
// Vertices are appended in call order, so callers add sources before their
// sinks.
//
// Example:
//
//	fx := testutil.NewFixture(t)
//	clk := fx.Var("clk", fx.Set("posedge clk"))
//	v1 := fx.Logic("v1")
//	fx.Edge(clk, v1, 1)
type Fixture struct {
	t       testing.TB
	Netlist *ir.Netlist
	Graph   *graph.Graph
	Canon   *canon.Canon
}

// NewFixture creates an empty fixture.
func NewFixture(t testing.TB) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		Netlist: ir.NewNetlist(),
		Graph:   graph.New(),
		Canon:   canon.New(),
	}
}

// Set interns the trigger set parsed from items.
func (f *Fixture) Set(items ...string) canon.Handle {
	f.t.Helper()
	tree, err := ir.ParseSenTree(items)
	require.NoError(f.t, err)
	return f.Canon.Intern(tree)
}

// Var adds a standard variable vertex. A valid domain is preset on it.
func (f *Fixture) Var(name string, domain canon.Handle) *graph.VarVertex {
	f.t.Helper()
	return f.PhaseVar(name, graph.PhaseStd, domain)
}

// PhaseVar adds a variable vertex of the given phase.
func (f *Fixture) PhaseVar(name string, phase graph.Phase, domain canon.Handle) *graph.VarVertex {
	f.t.Helper()
	v := f.Graph.AddVar(f.Netlist.AddSignal(name), phase)
	if domain.Valid() {
		v.SetDomain(graph.Concrete(domain))
	}
	return v
}

// Logic adds combinational logic with no domain.
func (f *Fixture) Logic(name string) *graph.LogicVertex {
	f.t.Helper()
	return f.Graph.AddLogic(f.Netlist.AddLogic(name, ir.LogicComb, name+"_body"), canon.None)
}

// HybridLogic adds logic seeded with an explicit sensitivity.
func (f *Fixture) HybridLogic(name string, hybrid canon.Handle) *graph.LogicVertex {
	f.t.Helper()
	return f.Graph.AddLogic(f.Netlist.AddLogic(name, ir.LogicHybrid, name+"_body"), hybrid)
}

// SeqLogic adds sequential logic with its domain preset.
func (f *Fixture) SeqLogic(name string, domain canon.Handle) *graph.LogicVertex {
	f.t.Helper()
	v := f.Graph.AddLogic(f.Netlist.AddLogic(name, ir.LogicSeq, name+"_body"), canon.None)
	v.SetDomain(graph.Concrete(domain))
	return v
}

// Edge connects from to to and fails the test on error.
func (f *Fixture) Edge(from, to graph.Vertex, weight int) *graph.Edge {
	f.t.Helper()
	e, err := f.Graph.AddEdge(from, to, weight)
	require.NoError(f.t, err)
	return e
}

// Handle returns the concrete domain of v, failing the test otherwise.
func (f *Fixture) Handle(v graph.Vertex) canon.Handle {
	f.t.Helper()
	h, ok := v.Domain().Handle()
	require.True(f.t, ok, "vertex %s has domain %s, want concrete", v, v.Domain())
	return h
}

// Text renders the concrete domain of v, e.g. "posedge clk or posedge rst".
func (f *Fixture) Text(v graph.Vertex) string {
	f.t.Helper()
	return f.Canon.String(f.Handle(v))
}
