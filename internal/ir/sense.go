package ir

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Edge is the triggering condition of a single sensitivity item.
type Edge int

const (
	EdgeInvalid Edge = iota
	EdgePos          // posedge <sig>
	EdgeNeg          // negedge <sig>
	EdgeBoth         // edge <sig>
	EdgeChanged      // changed <sig>
	EdgeEvent        // event <sig>
	EdgeHybrid       // hybrid <sig>
	EdgeCombo        // *
	EdgeStatic       // static
	EdgeInitial      // initial
	EdgeFinal        // final
)

var edgeNames = map[Edge]string{
	EdgePos:     "posedge",
	EdgeNeg:     "negedge",
	EdgeBoth:    "edge",
	EdgeChanged: "changed",
	EdgeEvent:   "event",
	EdgeHybrid:  "hybrid",
	EdgeCombo:   "*",
	EdgeStatic:  "static",
	EdgeInitial: "initial",
	EdgeFinal:   "final",
}

// edgeKeywords maps accepted spellings to edges. Rendering always uses
// edgeNames, so "bothedge" and "combo" are input-only aliases.
var edgeKeywords = map[string]Edge{
	"posedge":  EdgePos,
	"negedge":  EdgeNeg,
	"edge":     EdgeBoth,
	"bothedge": EdgeBoth,
	"changed":  EdgeChanged,
	"event":    EdgeEvent,
	"hybrid":   EdgeHybrid,
	"*":        EdgeCombo,
	"combo":    EdgeCombo,
	"static":   EdgeStatic,
	"initial":  EdgeInitial,
	"final":    EdgeFinal,
}

// String returns the keyword used when rendering the edge.
func (e Edge) String() string {
	if name, ok := edgeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Edge(%d)", int(e))
}

// HasSignal reports whether items with this edge name a signal.
func (e Edge) HasSignal() bool {
	switch e {
	case EdgePos, EdgeNeg, EdgeBoth, EdgeChanged, EdgeEvent, EdgeHybrid:
		return true
	default:
		return false
	}
}

// SenItem is one trigger condition, e.g. "posedge clk".
type SenItem struct {
	Edge   Edge   `json:"edge"`
	Signal string `json:"signal,omitempty"`
}

// String renders the item in the same syntax ParseSenItem accepts.
func (it SenItem) String() string {
	if !it.Edge.HasSignal() {
		return it.Edge.String()
	}
	return it.Edge.String() + " " + it.Signal
}

// Compare orders items by signal name, then edge.
func (it SenItem) Compare(other SenItem) int {
	if c := strings.Compare(it.Signal, other.Signal); c != 0 {
		return c
	}
	return cmp.Compare(it.Edge, other.Edge)
}

// ParseSenItem parses "posedge clk", "negedge rst_n", "*", "initial", ...
func ParseSenItem(text string) (SenItem, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return SenItem{}, fmt.Errorf("empty sensitivity item")
	}

	edge, ok := edgeKeywords[fields[0]]
	if !ok {
		return SenItem{}, fmt.Errorf("unknown edge %q in %q", fields[0], text)
	}

	if !edge.HasSignal() {
		if len(fields) != 1 {
			return SenItem{}, fmt.Errorf("%q takes no signal: %q", fields[0], text)
		}
		return SenItem{Edge: edge}, nil
	}

	if len(fields) != 2 {
		return SenItem{}, fmt.Errorf("%q requires exactly one signal: %q", fields[0], text)
	}
	return SenItem{Edge: edge, Signal: fields[1]}, nil
}

// SenTree is an ordered set of trigger items: the logic re-evaluates when any
// one of them fires. Multi marks trees built by merging two or more others.
type SenTree struct {
	Items []SenItem `json:"items"`
	Multi bool      `json:"multi,omitempty"`
}

// NewSenTree builds a tree from items without normalizing it.
func NewSenTree(items ...SenItem) *SenTree {
	return &SenTree{Items: slices.Clone(items)}
}

// ParseSenTree parses each text as an item.
func ParseSenTree(texts []string) (*SenTree, error) {
	t := &SenTree{Items: make([]SenItem, 0, len(texts))}
	for i, text := range texts {
		it, err := ParseSenItem(text)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		t.Items = append(t.Items, it)
	}
	return t, nil
}

// MustParseSenTree is like ParseSenTree but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParseSenTree(texts ...string) *SenTree {
	t, err := ParseSenTree(texts)
	if err != nil {
		panic(err)
	}
	return t
}

// Clone returns a deep copy.
func (t *SenTree) Clone() *SenTree {
	return &SenTree{Items: slices.Clone(t.Items), Multi: t.Multi}
}

// Add appends items without removing duplicates.
func (t *SenTree) Add(items ...SenItem) {
	t.Items = append(t.Items, items...)
}

// Union appends the items not already present, keeping first-seen order.
func (t *SenTree) Union(items ...SenItem) {
	for _, it := range items {
		if !slices.Contains(t.Items, it) {
			t.Items = append(t.Items, it)
		}
	}
}

// Normalize sorts the items and removes duplicates in place.
func (t *SenTree) Normalize() {
	slices.SortFunc(t.Items, SenItem.Compare)
	t.Items = slices.Compact(t.Items)
}

// HasCombo reports whether any item is combinational.
func (t *SenTree) HasCombo() bool {
	return slices.ContainsFunc(t.Items, func(it SenItem) bool { return it.Edge == EdgeCombo })
}

// Empty reports whether the tree has no items.
func (t *SenTree) Empty() bool {
	return len(t.Items) == 0
}

// String renders the disjunction of all items, e.g. "posedge clk or negedge rst".
func (t *SenTree) String() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = it.String()
	}
	return strings.Join(parts, " or ")
}

// Texts returns the rendered form of each item.
func (t *SenTree) Texts() []string {
	texts := make([]string, len(t.Items))
	for i, it := range t.Items {
		texts[i] = it.String()
	}
	return texts
}
