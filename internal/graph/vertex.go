package graph

import (
	"fmt"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/ir"
)

// VertexID identifies a vertex within its graph. Ids follow insertion order.
type VertexID int

// Vertex is a node of the order graph. The set of implementations is closed:
// *LogicVertex and *VarVertex. Dispatch with a type switch.
type Vertex interface {
	ID() VertexID
	Name() string
	Domain() Domain
	SetDomain(Domain)
	// DomainMatters reports whether this vertex is a meaningful source of
	// domain information for its successors.
	DomainMatters() bool
	InEdges() []*Edge
	OutEdges() []*Edge
	String() string

	base() *vertexBase
}

type vertexBase struct {
	id     VertexID
	domain Domain
	in     []*Edge
	out    []*Edge
	owner  *Graph
}

func (v *vertexBase) ID() VertexID       { return v.id }
func (v *vertexBase) Domain() Domain     { return v.domain }
func (v *vertexBase) SetDomain(d Domain) { v.domain = d }
func (v *vertexBase) InEdges() []*Edge   { return v.in }
func (v *vertexBase) OutEdges() []*Edge  { return v.out }
func (v *vertexBase) base() *vertexBase  { return v }

// LogicVertex is one schedulable logic block.
type LogicVertex struct {
	vertexBase

	Logic *ir.Logic
	// Hybrid is the explicitly declared sensitivity of the block, or
	// canon.None.
	Hybrid canon.Handle
}

// Name returns the logic block name.
func (v *LogicVertex) Name() string { return v.Logic.Name }

// DomainMatters is always true for logic.
func (v *LogicVertex) DomainMatters() bool { return true }

func (v *LogicVertex) String() string {
	return fmt.Sprintf("logic#%d(%s)", v.id, v.Logic.Name)
}

// Phase distinguishes the occurrences of one signal in the order graph.
type Phase int

const (
	PhaseStd  Phase = iota // the signal value itself
	PhasePre               // value before a delayed update
	PhasePost              // value after a delayed update
	PhasePord              // ordering-only occurrence, carries no data
)

var phaseTags = map[Phase]string{
	PhaseStd:  "",
	PhasePre:  "PRE",
	PhasePost: "POST",
	PhasePord: "PORD",
}

// Tag returns "PRE", "POST", "PORD", or "" for the standard occurrence.
func (p Phase) Tag() string { return phaseTags[p] }

// ParsePhase accepts "", "std", "pre", "post", "pord" (any case).
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "", "std", "STD":
		return PhaseStd, nil
	case "pre", "PRE":
		return PhasePre, nil
	case "post", "POST":
		return PhasePost, nil
	case "pord", "PORD":
		return PhasePord, nil
	default:
		return PhaseStd, fmt.Errorf("unknown variable phase %q", s)
	}
}

// VarVertex is one occurrence of a signal.
type VarVertex struct {
	vertexBase

	Signal *ir.Signal
	Phase  Phase
}

// Name returns the signal name.
func (v *VarVertex) Name() string { return v.Signal.Name }

// DomainMatters is true only for the standard occurrence; pre, post and
// ordering vertices only linearize read/write cycles.
func (v *VarVertex) DomainMatters() bool { return v.Phase == PhaseStd }

func (v *VarVertex) String() string {
	if tag := v.Phase.Tag(); tag != "" {
		return fmt.Sprintf("var#%d(%s {%s})", v.id, v.Signal.Name, tag)
	}
	return fmt.Sprintf("var#%d(%s)", v.id, v.Signal.Name)
}

// Edge is a dependency from From to To. Weight zero marks an edge cut by
// cycle breaking: it stays in the graph but carries no domain.
type Edge struct {
	From   Vertex
	To     Vertex
	Weight int
}

// Cut reports whether the edge was severed.
func (e *Edge) Cut() bool { return e.Weight == 0 }
