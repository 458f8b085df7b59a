// Package order implements the clock-domain pass of the scheduler.
//
// Every vertex of an ordered graph is given the set of trigger conditions
// under which it may change: sequential logic brings its own, and everything
// downstream inherits the union of the domains of its inputs, plus any
// trigger sets reported for a signal by an ExternalDomains provider.
// Vertices that nothing can trigger get the delete domain, and their logic is
// removed from the netlist.
//
// All concrete domains are interned in a canon.Canon. A violated invariant
// is returned as an *InvariantError and aborts the pass; the graph is then
// left partially assigned and must be discarded.
package order
