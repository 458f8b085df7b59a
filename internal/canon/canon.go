// Package canon interns trigger sets so that structurally equal sets share
// one representative.
//
// A Canon is a hash-consing arena. Interning a tree returns a small opaque
// Handle; two handles are equal exactly when their trees have the same items
// (order and duplicates ignored). Once interned, sets are compared by handle
// and never re-compared structurally.
//
// A Canon is single-writer. It is owned by the pass that runs over one
// compilation unit; callers sharing one across goroutines must serialize
// access themselves.
package canon

import (
	"fmt"

	"github.com/roach88/hdlorder/internal/ir"
)

// Handle identifies an interned trigger set. The zero Handle is invalid.
type Handle uint32

// None is the invalid handle, used for "no set".
const None Handle = 0

// Valid reports whether h refers to an interned set.
func (h Handle) Valid() bool { return h != None }

// String renders the handle for logs.
func (h Handle) String() string {
	if h == None {
		return "#none"
	}
	return fmt.Sprintf("#%d", uint32(h))
}

type entry struct {
	key  string
	tree *ir.SenTree
}

// Stats counts interning activity.
type Stats struct {
	Interned int `json:"interned"` // distinct sets stored
	Hits     int `json:"hits"`     // Intern calls answered by an existing set
}

// Canon is the table of interned trigger sets.
type Canon struct {
	entries []entry // index = handle - 1
	byKey   map[string]Handle
	hits    int
}

// New creates an empty Canon.
func New() *Canon {
	return &Canon{byKey: make(map[string]Handle)}
}

// Intern returns the shared handle for t's content. If an equal set is
// already interned its handle is returned and t is left untouched; otherwise
// a normalized copy of t is stored. The caller keeps ownership of t.
func (c *Canon) Intern(t *ir.SenTree) Handle {
	key := ir.SenTreeKey(t)
	if h, ok := c.byKey[key]; ok {
		c.hits++
		return h
	}

	stored := t.Clone()
	stored.Normalize()
	c.entries = append(c.entries, entry{key: key, tree: stored})
	h := Handle(len(c.entries))
	c.byKey[key] = h
	return h
}

// InternItems is a convenience for Intern(ir.NewSenTree(items...)).
func (c *Canon) InternItems(items ...ir.SenItem) Handle {
	return c.Intern(ir.NewSenTree(items...))
}

// Lookup returns the handle for t's content without interning it.
func (c *Canon) Lookup(t *ir.SenTree) (Handle, bool) {
	h, ok := c.byKey[ir.SenTreeKey(t)]
	return h, ok
}

// Contains reports whether h was issued by this Canon.
func (c *Canon) Contains(h Handle) bool {
	return h != None && int(h) <= len(c.entries)
}

// Tree returns the interned set for h. The returned tree is shared and must
// not be modified. It panics on a handle this Canon never issued.
func (c *Canon) Tree(h Handle) *ir.SenTree {
	return c.get(h).tree
}

// Key returns the content key of h.
func (c *Canon) Key(h Handle) string {
	return c.get(h).key
}

// Multi reports whether the set for h was derived by merging other sets.
func (c *Canon) Multi(h Handle) bool {
	return c.get(h).tree.Multi
}

// String renders the set for h as "posedge clk or negedge rst".
func (c *Canon) String(h Handle) string {
	return c.get(h).tree.String()
}

// Len returns the number of interned sets.
func (c *Canon) Len() int {
	return len(c.entries)
}

// Handles returns every issued handle in interning order.
func (c *Canon) Handles() []Handle {
	hs := make([]Handle, len(c.entries))
	for i := range c.entries {
		hs[i] = Handle(i + 1)
	}
	return hs
}

// Stats returns the interning counters.
func (c *Canon) Stats() Stats {
	return Stats{Interned: len(c.entries), Hits: c.hits}
}

func (c *Canon) get(h Handle) entry {
	if !c.Contains(h) {
		panic(fmt.Sprintf("canon: handle %s not issued by this table", h))
	}
	return c.entries[h-1]
}
