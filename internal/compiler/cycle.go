package compiler

import (
	"fmt"
	"strings"
)

// CycleWarning represents a cycle through nonzero-weight edges.
//
// Such a cycle makes a valid processing order impossible: the description
// must cut one of its edges (weight 0) before the domain pass can run. The
// order check in Validate reports the offending edge; the warning names the
// whole loop.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["a", "b", "a"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning"
}

// AnalyzeCycles finds the loops formed by nonzero-weight edges.
//
// The algorithm:
//  1. Build the vertex dependency graph from edges with nonzero weight
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle
//
// Vertices are visited in description order, so the output is deterministic.
// A DAG returns an empty list.
func AnalyzeCycles(spec *GraphSpec) []CycleWarning {
	g := buildDependencyGraph(spec)

	var warnings []CycleWarning
	for _, scc := range tarjanSCC(g) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], g)) {
			warnings = append(warnings, cycleSCCToWarning(scc, g))
		}
	}
	if warnings == nil {
		return []CycleWarning{}
	}
	return warnings
}

// dependencyGraph maps vertex id -> successors over nonzero edges, with the
// vertex ids in description order.
type dependencyGraph struct {
	order []string
	succ  map[string][]string
}

func buildDependencyGraph(spec *GraphSpec) dependencyGraph {
	g := dependencyGraph{succ: make(map[string][]string)}
	for _, v := range spec.Vertices {
		if _, seen := g.succ[v.ID]; seen {
			continue
		}
		g.order = append(g.order, v.ID)
		g.succ[v.ID] = []string{}
	}
	for _, e := range spec.Edges {
		if e.EdgeWeight() == 0 {
			continue
		}
		if _, ok := g.succ[e.From]; !ok {
			continue
		}
		if _, ok := g.succ[e.To]; !ok {
			continue
		}
		g.succ[e.From] = append(g.succ[e.From], e.To)
	}
	return g
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, g dependencyGraph) bool {
	for _, neighbor := range g.succ[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of vertex ids.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(g dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		// Set the depth index for v
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		// Consider successors of v
		for _, w := range g.succ[v] {
			if _, visited := indices[w]; !visited {
				// Successor w has not yet been visited; recurse on it
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				// Successor w is on stack and hence in the current SCC
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
func cycleSCCToWarning(scc []string, g dependencyGraph) CycleWarning {
	if len(scc) == 1 {
		id := scc[0]
		return CycleWarning{
			Path:    []string{id, id},
			Message: fmt.Sprintf("Vertex depends on itself: %s → %s", id, id),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, g)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Cycle through uncut edges: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath builds a cycle path from an SCC, starting at the
// member listed first in the description.
func reconstructCyclePath(scc []string, g dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	for _, id := range g.order {
		if sccSet[id] {
			start = id
			break
		}
	}

	current := start
	path := []string{current}
	visited := make(map[string]bool)

	// Follow edges within SCC until we return to start
	for {
		visited[current] = true

		var next string
		for _, neighbor := range g.succ[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
