package ir

import (
	"fmt"
	"slices"
)

// SignalID identifies a signal within one netlist. Zero is never assigned.
type SignalID uint32

// String renders the id the way diagnostic reports print it.
func (id SignalID) String() string {
	return fmt.Sprintf("0x%04x", uint32(id))
}

// Signal is one variable of the design being scheduled.
type Signal struct {
	ID   SignalID `json:"id"`
	Name string   `json:"name"`
}

// LogicKind says how a logic block was declared in the source.
type LogicKind string

const (
	LogicComb   LogicKind = "comb"   // always_comb / continuous assignment
	LogicSeq    LogicKind = "seq"    // clocked process with a declared domain
	LogicHybrid LogicKind = "hybrid" // explicit sensitivity list mixed with inferred inputs
	LogicStatic LogicKind = "static" // initial/final/static initialisers
)

// ValidLogicKinds defines allowed logic kinds.
var ValidLogicKinds = map[LogicKind]bool{
	LogicComb:   true,
	LogicSeq:    true,
	LogicHybrid: true,
	LogicStatic: true,
}

// Logic is one schedulable block of behaviour owned by a Netlist.
type Logic struct {
	Name string    `json:"name"`
	Kind LogicKind `json:"kind"`
	Body string    `json:"body,omitempty"`

	owner *Netlist
}

// Unlinked reports whether the block has been removed from its netlist.
func (l *Logic) Unlinked() bool {
	return l.owner == nil
}

// Netlist owns the signals and logic blocks of one compilation unit.
type Netlist struct {
	signals []*Signal
	byName  map[string]*Signal
	logic   []*Logic
}

// NewNetlist creates an empty netlist.
func NewNetlist() *Netlist {
	return &Netlist{byName: make(map[string]*Signal)}
}

// AddSignal returns the signal with the given name, creating it if needed.
func (n *Netlist) AddSignal(name string) *Signal {
	if s, ok := n.byName[name]; ok {
		return s
	}
	s := &Signal{ID: SignalID(len(n.signals) + 1), Name: name}
	n.signals = append(n.signals, s)
	n.byName[name] = s
	return s
}

// Signal looks up a signal by name.
func (n *Netlist) Signal(name string) (*Signal, bool) {
	s, ok := n.byName[name]
	return s, ok
}

// Signals returns all signals in creation order.
func (n *Netlist) Signals() []*Signal {
	return slices.Clone(n.signals)
}

// AddLogic appends a logic block.
func (n *Netlist) AddLogic(name string, kind LogicKind, body string) *Logic {
	l := &Logic{Name: name, Kind: kind, Body: body, owner: n}
	n.logic = append(n.logic, l)
	return l
}

// Logic returns the live logic blocks in creation order.
func (n *Netlist) Logic() []*Logic {
	return slices.Clone(n.logic)
}

// RemoveLogic detaches l from the netlist and discards it. Removing a block
// twice, or one owned by another netlist, is an error.
func (n *Netlist) RemoveLogic(l *Logic) error {
	if l.owner != n {
		return fmt.Errorf("logic %q is not owned by this netlist", l.Name)
	}
	idx := slices.Index(n.logic, l)
	if idx < 0 {
		return fmt.Errorf("logic %q missing from netlist", l.Name)
	}
	n.logic = slices.Delete(n.logic, idx, idx+1)
	l.owner = nil
	l.Body = ""
	return nil
}
