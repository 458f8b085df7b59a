package order

import (
	"log/slog"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/metrics"
)

// assigner computes the trigger domain of every vertex in one forward pass.
//
// Sequential logic already has its domain. Everything else takes the union
// of the domains of its inputs: combinational logic fed only from one clock
// domain ends up in that domain, logic fed from several gets a derived
// domain covering all of them, and logic nothing can trigger gets the delete
// domain.
type assigner struct {
	graph     *graph.Graph
	canon     *canon.Canon
	externals ExternalDomains
	log       *slog.Logger
	metrics   *metrics.Pass

	// Logic that is never triggered and hence can be deleted.
	dead []*graph.LogicVertex
	// Buffer handed to externals, reset for every call.
	extBuf []canon.Handle

	preset, concrete, deleted int
}

func newAssigner(g *graph.Graph, cn *canon.Canon, externals ExternalDomains, log *slog.Logger, m *metrics.Pass) *assigner {
	if externals == nil {
		externals = NoExternalDomains
	}
	return &assigner{
		graph:     g,
		canon:     cn,
		externals: externals,
		log:       log,
		metrics:   m,
	}
}

// run visits the vertices in graph order. The graph must already be sorted
// so that the source of every nonzero-weight edge comes before its
// destination.
func (p *assigner) run() error {
	p.log.Debug("assigning domains", "vertices", p.graph.Len())
	for _, v := range p.graph.Vertices() {
		p.log.Debug("pdi", "vertex", v.String())
		if v.Domain().IsSet() {
			p.preset++
			p.metrics.VertexResolved(metrics.OutcomePreset)
			continue
		}
		if err := p.assign(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *assigner) assign(v graph.Vertex) error {
	var domain term
	have := false

	// For logic, start with the explicit hybrid sensitivities
	lv, isLogic := v.(*graph.LogicVertex)
	if isLogic && lv.Hybrid.Valid() {
		if !p.canon.Contains(lv.Hybrid) {
			return &InvariantError{
				Code:    ErrCodeNotCanonical,
				Message: "hybrid sensitivity is not an interned trigger set",
				Vertex:  v.String(),
			}
		}
		domain, have = canonicalTerm(lv.Hybrid), true
		p.log.Debug("hybr", "domain", p.describe(domain), "vertex", v.String())
	}

	for _, e := range v.InEdges() {
		if e.Cut() {
			continue
		}
		from := e.From
		if !from.DomainMatters() {
			continue
		}

		fromDomain, err := p.sourceDomain(from, v)
		if err != nil {
			return err
		}
		p.log.Debug("from", "domain", p.describe(fromDomain), "vertex", from.String())

		// External writers apply in addition to the graph-internal ones
		if vv, ok := from.(*graph.VarVertex); ok {
			p.extBuf = p.externals(vv.Signal, p.extBuf[:0])
			for _, h := range p.extBuf {
				if err := p.checkExternal(h, vv, v); err != nil {
					return err
				}
				p.log.Debug("xtrn", "domain", h.String(), "vertex", from.String(), "signal", vv.Signal.Name)
				if fromDomain, err = p.combine(fromDomain, canonicalTerm(h), v); err != nil {
					return err
				}
			}
			p.metrics.ExternalMerged(len(p.extBuf))
		}

		// Irrelevant input vertex (never triggered, not even externally)
		if fromDomain.deleted {
			continue
		}

		if !have {
			domain, have = fromDomain, true
			continue
		}
		if domain, err = p.combine(domain, fromDomain, v); err != nil {
			return err
		}
	}

	if !have {
		v.SetDomain(graph.Deleted())
		if isLogic {
			p.dead = append(p.dead, lv)
		}
		p.deleted++
		p.metrics.VertexResolved(metrics.OutcomeDeleted)
		p.log.Debug("done", "domain", "[DEL]", "vertex", v.String())
		return nil
	}

	h := p.simplify(domain)
	v.SetDomain(graph.Concrete(h))
	p.concrete++
	p.metrics.VertexResolved(metrics.OutcomeConcrete)
	p.log.Debug("done", "domain", p.describe(canonicalTerm(h)), "vertex", v.String())
	return nil
}

// sourceDomain reads the domain of an already processed input vertex.
func (p *assigner) sourceDomain(from, at graph.Vertex) (term, error) {
	d := from.Domain()
	if !d.IsSet() {
		return term{}, &InvariantError{
			Code:    ErrCodeUnresolvedSource,
			Message: "input " + from.String() + " has no domain yet; graph is not in dependency order",
			Vertex:  at.String(),
		}
	}
	if d.IsDeleted() {
		return deletedTerm(), nil
	}

	h, _ := d.Handle()
	if !p.canon.Contains(h) {
		return term{}, &InvariantError{
			Code:    ErrCodeNotCanonical,
			Message: "driver domain of " + from.String() + " is not an interned trigger set",
			Vertex:  at.String(),
		}
	}
	if p.canon.Tree(h).HasCombo() {
		return term{}, &InvariantError{
			Code:    ErrCodeComboDomain,
			Message: "driver " + from.String() + " has a combinational domain",
			Vertex:  at.String(),
		}
	}
	return canonicalTerm(h), nil
}

func (p *assigner) checkExternal(h canon.Handle, from *graph.VarVertex, at graph.Vertex) error {
	if !p.canon.Contains(h) {
		return &InvariantError{
			Code:    ErrCodeNotCanonical,
			Message: "external trigger set " + h.String() + " is not interned",
			Vertex:  at.String(),
			Signal:  from.Signal.Name,
		}
	}
	if p.canon.Tree(h).HasCombo() {
		return &InvariantError{
			Code:    ErrCodeComboDomain,
			Message: "external trigger set " + h.String() + " is combinational",
			Vertex:  at.String(),
			Signal:  from.Signal.Name,
		}
	}
	return nil
}
