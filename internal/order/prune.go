package order

import (
	"fmt"
	"log/slog"

	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/ir"
)

// PruneDeadLogic removes every vertex in dead from g and its logic block
// from nl. Each vertex must still carry the delete domain. The names of the
// removed blocks are returned in the order given.
func PruneDeadLogic(nl *ir.Netlist, g *graph.Graph, dead []*graph.LogicVertex, log *slog.Logger) ([]string, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	removed := make([]string, 0, len(dead))
	for _, v := range dead {
		if !v.Domain().IsDeleted() {
			return removed, &InvariantError{
				Code:    ErrCodeNotDeleted,
				Message: "should have been marked as deleted, has " + v.Domain().String(),
				Vertex:  v.String(),
			}
		}

		name := v.Logic.Name
		if err := nl.RemoveLogic(v.Logic); err != nil {
			return removed, fmt.Errorf("prune %s: %w", v, err)
		}
		if err := g.Remove(v); err != nil {
			return removed, fmt.Errorf("prune %s: %w", v, err)
		}
		log.Debug("pruned dead logic", "logic", name, "vertex", v.ID())
		removed = append(removed, name)
	}
	return removed, nil
}
