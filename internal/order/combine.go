package order

import (
	"fmt"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/ir"
)

// term is a domain while it is being computed: an interned set, a transient
// set built by combine and not yet interned, or the delete domain.
type term struct {
	handle  canon.Handle
	tree    *ir.SenTree
	deleted bool
}

func canonicalTerm(h canon.Handle) term { return term{handle: h} }

func deletedTerm() term { return term{deleted: true} }

// termOf converts a resolved vertex domain.
func termOf(d graph.Domain) term {
	if d.IsDeleted() {
		return deletedTerm()
	}
	h, _ := d.Handle()
	return canonicalTerm(h)
}

func (t term) canonical() bool { return t.handle.Valid() }

// same is identity, never structural, equality.
func (t term) same(o term) bool {
	switch {
	case t.deleted || o.deleted:
		return t.deleted == o.deleted
	case t.canonical() || o.canonical():
		return t.handle == o.handle
	default:
		return t.tree == o.tree
	}
}

// describe renders t for debug logs.
func (p *assigner) describe(t term) string {
	switch {
	case t.deleted:
		return "[DEL]"
	case t.canonical():
		tree := p.canon.Tree(t.handle)
		switch {
		case tree.HasCombo():
			return t.handle.String() + " [COMB]"
		case tree.Multi:
			return t.handle.String() + " [MULT]"
		}
		return t.handle.String()
	default:
		return fmt.Sprintf("{%s} [TMP]", t.tree)
	}
}

// combine merges b into a without interning the result. A transient a is
// extended in place; a transient b is consumed.
func (p *assigner) combine(a, b term, at graph.Vertex) (term, error) {
	if a.same(b) {
		return a, nil
	}
	if a.deleted {
		return b, nil
	}
	if b.deleted {
		return term{}, &InvariantError{
			Code:    ErrCodeDeleteOperand,
			Message: "second operand of combine must not be the delete domain",
			Vertex:  at.String(),
		}
	}
	p.metrics.Combined()

	tree := a.tree
	if a.canonical() {
		tree = p.canon.Tree(a.handle).Clone()
	}
	if b.canonical() {
		tree.Union(p.canon.Tree(b.handle).Items...)
	} else {
		tree.Union(b.tree.Items...)
		b.tree = nil
	}
	tree.Multi = true
	return term{tree: tree}, nil
}

// simplify returns the interned handle for t. A transient tree is
// normalized, flagged as derived, interned and then dropped.
func (p *assigner) simplify(t term) canon.Handle {
	if t.canonical() {
		return t.handle
	}
	t.tree.Normalize()
	t.tree.Multi = true
	h := p.canon.Intern(t.tree)
	t.tree = nil
	return h
}
