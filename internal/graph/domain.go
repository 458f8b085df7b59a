package graph

import "github.com/roach88/hdlorder/internal/canon"

type domainState uint8

const (
	domainUnresolved domainState = iota
	domainConcrete
	domainDeleted
)

// Domain is the trigger domain of a vertex: unresolved, a concrete interned
// trigger set, or deleted ("never triggered, not even externally"). The zero
// value is unresolved.
type Domain struct {
	state  domainState
	handle canon.Handle
}

// Unresolved returns the domain of a vertex the pass has not reached yet.
func Unresolved() Domain { return Domain{} }

// Deleted returns the delete domain.
func Deleted() Domain { return Domain{state: domainDeleted} }

// Concrete returns the domain for an interned trigger set.
// It panics on the invalid handle.
func Concrete(h canon.Handle) Domain {
	if !h.Valid() {
		panic("graph: concrete domain needs a valid handle")
	}
	return Domain{state: domainConcrete, handle: h}
}

// IsSet reports whether the domain has been assigned (concrete or deleted).
func (d Domain) IsSet() bool { return d.state != domainUnresolved }

// IsDeleted reports whether d is the delete domain.
func (d Domain) IsDeleted() bool { return d.state == domainDeleted }

// IsConcrete reports whether d names an interned trigger set.
func (d Domain) IsConcrete() bool { return d.state == domainConcrete }

// Handle returns the interned set of a concrete domain.
func (d Domain) Handle() (canon.Handle, bool) {
	return d.handle, d.state == domainConcrete
}

// String renders the domain for logs; concrete sets show their handle only.
func (d Domain) String() string {
	switch d.state {
	case domainConcrete:
		return d.handle.String()
	case domainDeleted:
		return "[DEL]"
	default:
		return "[unresolved]"
	}
}
