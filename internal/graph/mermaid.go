package graph

import (
	"fmt"
	"io"
	"strings"
)

// DomainLabel renders a vertex domain for a graph dump.
type DomainLabel func(Domain) string

// WriteMermaid writes g as a Mermaid flowchart. Logic vertices are drawn as
// subroutines, variables as rectangles; cut edges are dotted. Each node is
// annotated with its domain as rendered by label.
func WriteMermaid(w io.Writer, g *Graph, label DomainLabel) error {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, v := range g.vertices {
		opener, closer := "[", "]"
		if _, ok := v.(*LogicVertex); ok {
			opener, closer = "[[", "]]"
		}
		name := v.Name()
		if vv, ok := v.(*VarVertex); ok && vv.Phase.Tag() != "" {
			name += " {" + vv.Phase.Tag() + "}"
		}
		fmt.Fprintf(&sb, "    v%d%s\"%s<br/>%s\"%s\n",
			v.ID(), opener, escapeMermaid(name), escapeMermaid(label(v.Domain())), closer)
	}

	for _, e := range g.Edges() {
		arrow := "-->"
		if e.Cut() {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    v%d %s|%d| v%d\n", e.From.ID(), arrow, e.Weight, e.To.ID())
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func escapeMermaid(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
