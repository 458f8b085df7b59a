package compiler

import (
	"slices"

	"github.com/roach88/hdlorder/internal/ir"
)

// Vertex kinds accepted in a graph description.
const (
	KindLogic = "logic"
	KindVar   = "var"
)

// DefaultTag names diagnostics of a description without a tag.
const DefaultTag = "graph"

// GraphSpec is a decoded graph description. The same shape is read from
// CUE, YAML and HCL.
type GraphSpec struct {
	Tag      string                `json:"tag,omitempty" yaml:"tag"`
	Signals  []string              `json:"signals" yaml:"signals"`
	Logic    []LogicSpec           `json:"logic" yaml:"logic"`
	Vertices []VertexSpec          `json:"vertices" yaml:"vertices"`
	Edges    []EdgeSpec            `json:"edges" yaml:"edges"`
	External map[string][][]string `json:"external,omitempty" yaml:"external"`
}

// LogicSpec declares one logic block.
type LogicSpec struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	Body string `json:"body,omitempty" yaml:"body"`
}

// VertexSpec declares one vertex. Vertices are listed in processing order.
//
// Logic vertices name a logic block and may carry a hybrid sensitivity;
// variable vertices name a signal and a phase. Domain presets the vertex
// domain, as for sequential logic.
type VertexSpec struct {
	ID     string   `json:"id" yaml:"id"`
	Kind   string   `json:"kind" yaml:"kind"`
	Logic  string   `json:"logic,omitempty" yaml:"logic"`
	Signal string   `json:"signal,omitempty" yaml:"signal"`
	Phase  string   `json:"phase,omitempty" yaml:"phase"`
	Domain []string `json:"domain,omitempty" yaml:"domain"`
	Hybrid []string `json:"hybrid,omitempty" yaml:"hybrid"`
}

// EdgeSpec declares a dependency between two vertices. A nil Weight means 1.
type EdgeSpec struct {
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	Weight *int   `json:"weight,omitempty" yaml:"weight"`
}

// EdgeWeight returns the effective weight of e.
func (e EdgeSpec) EdgeWeight() int {
	if e.Weight == nil {
		return 1
	}
	return *e.Weight
}

// TagOrDefault returns the tag, or DefaultTag when it is empty.
func (s *GraphSpec) TagOrDefault() string {
	if s.Tag == "" {
		return DefaultTag
	}
	return s.Tag
}

// Hash returns the content hash of the description. Equivalent descriptions
// in different formats hash alike.
func (s *GraphSpec) Hash() (string, error) {
	return ir.ContentHash(ir.DomainGraph, s.canonicalMap())
}

func (s *GraphSpec) canonicalMap() map[string]any {
	logic := make([]any, len(s.Logic))
	for i, l := range s.Logic {
		logic[i] = map[string]any{"name": l.Name, "kind": l.Kind, "body": l.Body}
	}

	vertices := make([]any, len(s.Vertices))
	for i, v := range s.Vertices {
		vertices[i] = map[string]any{
			"id":     v.ID,
			"kind":   v.Kind,
			"logic":  v.Logic,
			"signal": v.Signal,
			"phase":  v.Phase,
			"domain": orEmpty(v.Domain),
			"hybrid": orEmpty(v.Hybrid),
		}
	}

	edges := make([]any, len(s.Edges))
	for i, e := range s.Edges {
		edges[i] = map[string]any{"from": e.From, "to": e.To, "weight": e.EdgeWeight()}
	}

	external := make(map[string]any, len(s.External))
	for sig, sets := range s.External {
		list := make([]any, len(sets))
		for i, set := range sets {
			list[i] = orEmpty(set)
		}
		external[sig] = list
	}

	return map[string]any{
		"schema":   ir.SchemaVersion,
		"tag":      s.TagOrDefault(),
		"signals":  orEmpty(s.Signals),
		"logic":    logic,
		"vertices": vertices,
		"edges":    edges,
		"external": external,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ExternalSignals returns the signals with external domains, sorted.
func (s *GraphSpec) ExternalSignals() []string {
	names := make([]string, 0, len(s.External))
	for name := range s.External {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
