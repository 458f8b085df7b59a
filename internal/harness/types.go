package harness

import (
	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/order"
	"github.com/roach88/hdlorder/internal/store"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RunID identifies the run recorded in the scenario's store.
	RunID string `json:"run_id,omitempty"`

	// Tag is the design tag the pass ran under.
	Tag string `json:"tag,omitempty"`

	// Domains, Canon and Pruned are read back from the store.
	Domains []order.VertexDomain `json:"domains,omitempty"`
	Canon   []store.CanonSet     `json:"canon,omitempty"`
	Pruned  []string             `json:"pruned,omitempty"`

	// Report holds the lines of the domain report file, header included.
	Report []string `json:"report,omitempty"`

	// Err is the pipeline error an expect_error scenario matched.
	Err string `json:"error,omitempty"`

	// vertexIDs maps description ids to graph vertex ids.
	vertexIDs map[string]graph.VertexID
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Errors:    []string{},
		vertexIDs: make(map[string]graph.VertexID),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Domain returns the recorded domain of the vertex declared with id.
func (r *Result) Domain(id string) (order.VertexDomain, bool) {
	vid, ok := r.vertexIDs[id]
	if !ok {
		return order.VertexDomain{}, false
	}
	for _, vd := range r.Domains {
		if vd.ID == vid {
			return vd, true
		}
	}
	return order.VertexDomain{}, false
}

// CanonSet returns the recorded trigger set with the given handle.
func (r *Result) CanonSet(vd order.VertexDomain) (store.CanonSet, bool) {
	for _, cs := range r.Canon {
		if cs.Handle == vd.Handle {
			return cs, true
		}
	}
	return store.CanonSet{}, false
}
