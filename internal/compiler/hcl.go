package compiler

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclGraphFile is the top-level structure of an HCL graph description:
//
//	tag     = "top"
//	signals = ["clk", "d"]
//
//	logic "mix" {
//	  kind = "comb"
//	}
//
//	vertex "clk" {
//	  kind   = "var"
//	  signal = "clk"
//	  domain = ["posedge clk"]
//	}
//
//	edge {
//	  from = "clk"
//	  to   = "mix"
//	}
//
//	external "d" {
//	  sets = [["negedge clk"]]
//	}
type hclGraphFile struct {
	Tag      string         `hcl:"tag,optional"`
	Signals  []string       `hcl:"signals,optional"`
	Logic    []*hclLogic    `hcl:"logic,block"`
	Vertices []*hclVertex   `hcl:"vertex,block"`
	Edges    []*hclEdge     `hcl:"edge,block"`
	External []*hclExternal `hcl:"external,block"`
}

type hclLogic struct {
	Name string `hcl:"name,label"`
	Kind string `hcl:"kind"`
	Body string `hcl:"body,optional"`
}

type hclVertex struct {
	ID     string   `hcl:"id,label"`
	Kind   string   `hcl:"kind"`
	Logic  string   `hcl:"logic,optional"`
	Signal string   `hcl:"signal,optional"`
	Phase  string   `hcl:"phase,optional"`
	Domain []string `hcl:"domain,optional"`
	Hybrid []string `hcl:"hybrid,optional"`
}

type hclEdge struct {
	From   string `hcl:"from"`
	To     string `hcl:"to"`
	Weight *int   `hcl:"weight,optional"`
}

type hclExternal struct {
	Signal string     `hcl:"signal,label"`
	Sets   [][]string `hcl:"sets"`
}

// ParseHCL decodes an HCL graph description.
func ParseHCL(filename string, src []byte) (*GraphSpec, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclGraphFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	spec := &GraphSpec{
		Tag:     parsed.Tag,
		Signals: parsed.Signals,
	}
	for _, l := range parsed.Logic {
		spec.Logic = append(spec.Logic, LogicSpec{Name: l.Name, Kind: l.Kind, Body: l.Body})
	}
	for _, v := range parsed.Vertices {
		spec.Vertices = append(spec.Vertices, VertexSpec{
			ID:     v.ID,
			Kind:   v.Kind,
			Logic:  v.Logic,
			Signal: v.Signal,
			Phase:  v.Phase,
			Domain: v.Domain,
			Hybrid: v.Hybrid,
		})
	}
	for _, e := range parsed.Edges {
		spec.Edges = append(spec.Edges, EdgeSpec{From: e.From, To: e.To, Weight: e.Weight})
	}
	if len(parsed.External) > 0 {
		spec.External = make(map[string][][]string, len(parsed.External))
		for _, x := range parsed.External {
			spec.External[x.Signal] = append(spec.External[x.Signal], x.Sets...)
		}
	}
	return spec, nil
}
