// Package graph holds the order graph the scheduling passes run over.
//
// The graph is built and ordered upstream: vertices are kept in insertion
// order, and the caller guarantees that for every edge with a nonzero weight
// the source vertex was inserted before the destination. Passes only read the
// structure, update vertex domains, and remove vertices.
//
// A Graph is not safe for concurrent use.
package graph

import (
	"fmt"
	"slices"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/ir"
)

// Graph is a directed graph of logic and variable vertices in processing
// order.
type Graph struct {
	vertices []Vertex
	nextID   VertexID
	edges    int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nextID: 1}
}

// AddLogic appends a logic vertex. hybrid may be canon.None.
func (g *Graph) AddLogic(l *ir.Logic, hybrid canon.Handle) *LogicVertex {
	v := &LogicVertex{Logic: l, Hybrid: hybrid}
	g.insert(&v.vertexBase, v)
	return v
}

// AddVar appends a variable vertex.
func (g *Graph) AddVar(s *ir.Signal, phase Phase) *VarVertex {
	v := &VarVertex{Signal: s, Phase: phase}
	g.insert(&v.vertexBase, v)
	return v
}

func (g *Graph) insert(b *vertexBase, v Vertex) {
	b.id = g.nextID
	b.owner = g
	g.nextID++
	g.vertices = append(g.vertices, v)
}

// AddEdge connects from to to. Both vertices must belong to g and the weight
// must not be negative.
func (g *Graph) AddEdge(from, to Vertex, weight int) (*Edge, error) {
	if !g.Contains(from) {
		return nil, fmt.Errorf("source vertex %s not in graph", from)
	}
	if !g.Contains(to) {
		return nil, fmt.Errorf("destination vertex %s not in graph", to)
	}
	if weight < 0 {
		return nil, fmt.Errorf("negative weight %d on edge %s -> %s", weight, from, to)
	}

	e := &Edge{From: from, To: to, Weight: weight}
	from.base().out = append(from.base().out, e)
	to.base().in = append(to.base().in, e)
	g.edges++
	return e, nil
}

// Contains reports whether v is a live vertex of g.
func (g *Graph) Contains(v Vertex) bool {
	return v != nil && v.base().owner == g
}

// Vertices returns the live vertices in processing order.
func (g *Graph) Vertices() []Vertex {
	return slices.Clone(g.vertices)
}

// Len returns the number of live vertices.
func (g *Graph) Len() int {
	return len(g.vertices)
}

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Edges returns every live edge, grouped by source vertex in processing order.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, 0, g.edges)
	for _, v := range g.vertices {
		edges = append(edges, v.OutEdges()...)
	}
	return edges
}

// Remove deletes v and every edge touching it.
func (g *Graph) Remove(v Vertex) error {
	if !g.Contains(v) {
		return fmt.Errorf("vertex %s not in graph", v)
	}
	b := v.base()

	for _, e := range b.in {
		from := e.From.base()
		from.out = slices.DeleteFunc(from.out, func(x *Edge) bool { return x == e })
		g.edges--
	}
	for _, e := range b.out {
		if e.To == v {
			continue // self loop, already counted through b.in
		}
		to := e.To.base()
		to.in = slices.DeleteFunc(to.in, func(x *Edge) bool { return x == e })
		g.edges--
	}
	b.in = nil
	b.out = nil
	b.owner = nil

	g.vertices = slices.DeleteFunc(g.vertices, func(x Vertex) bool { return x == v })
	return nil
}
