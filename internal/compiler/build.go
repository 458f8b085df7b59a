package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/ir"
	"github.com/roach88/hdlorder/internal/order"
)

// Design is a graph description turned into the structures the domain pass
// runs over.
type Design struct {
	Tag      string
	Hash     string
	Netlist  *ir.Netlist
	Graph    *graph.Graph
	Canon    *canon.Canon
	External order.StaticExternalDomains

	// Vertices maps description ids to graph vertices.
	Vertices map[string]graph.Vertex
}

// ValidationErrors wraps the errors returned by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}

// Build validates spec and constructs its netlist, ordered graph and
// trigger-set table. Signal ids follow the declaration order; preset,
// hybrid and external sets are interned in description order.
func Build(spec *GraphSpec) (*Design, error) {
	if errs := Validate(spec); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	hash, err := spec.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash graph description: %w", err)
	}

	d := &Design{
		Tag:      spec.TagOrDefault(),
		Hash:     hash,
		Netlist:  ir.NewNetlist(),
		Graph:    graph.New(),
		Canon:    canon.New(),
		External: order.StaticExternalDomains{},
		Vertices: make(map[string]graph.Vertex, len(spec.Vertices)),
	}

	for _, name := range spec.Signals {
		d.Netlist.AddSignal(name)
	}
	logic := make(map[string]*ir.Logic, len(spec.Logic))
	for _, l := range spec.Logic {
		logic[l.Name] = d.Netlist.AddLogic(l.Name, ir.LogicKind(l.Kind), l.Body)
	}

	for _, vs := range spec.Vertices {
		v, err := d.addVertex(vs, logic)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %w", vs.ID, err)
		}
		d.Vertices[vs.ID] = v
	}

	for i, es := range spec.Edges {
		if _, err := d.Graph.AddEdge(d.Vertices[es.From], d.Vertices[es.To], es.EdgeWeight()); err != nil {
			return nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
	}

	for _, name := range spec.ExternalSignals() {
		for i, set := range spec.External[name] {
			h, err := d.intern(set)
			if err != nil {
				return nil, fmt.Errorf("external.%s[%d]: %w", name, i, err)
			}
			d.External[name] = append(d.External[name], h)
		}
	}

	return d, nil
}

func (d *Design) addVertex(vs VertexSpec, logic map[string]*ir.Logic) (graph.Vertex, error) {
	var v graph.Vertex
	switch vs.Kind {
	case KindLogic:
		hybrid := canon.None
		if len(vs.Hybrid) > 0 {
			h, err := d.intern(vs.Hybrid)
			if err != nil {
				return nil, err
			}
			hybrid = h
		}
		v = d.Graph.AddLogic(logic[vs.Logic], hybrid)
	case KindVar:
		sig, ok := d.Netlist.Signal(vs.Signal)
		if !ok {
			return nil, fmt.Errorf("unknown signal %q", vs.Signal)
		}
		phase, err := graph.ParsePhase(vs.Phase)
		if err != nil {
			return nil, err
		}
		v = d.Graph.AddVar(sig, phase)
	default:
		return nil, errors.New("invalid vertex kind " + vs.Kind)
	}

	if len(vs.Domain) > 0 {
		h, err := d.intern(vs.Domain)
		if err != nil {
			return nil, err
		}
		v.SetDomain(graph.Concrete(h))
	}
	return v, nil
}

func (d *Design) intern(items []string) (canon.Handle, error) {
	tree, err := ir.ParseSenTree(items)
	if err != nil {
		return canon.None, err
	}
	return d.Canon.Intern(tree), nil
}

// Vertex returns the vertex declared with id, if it is still in the graph.
func (d *Design) Vertex(id string) (graph.Vertex, bool) {
	v, ok := d.Vertices[id]
	if !ok || !d.Graph.Contains(v) {
		return nil, false
	}
	return v, true
}
