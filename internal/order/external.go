package order

import (
	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/ir"
)

// ExternalDomains appends to buf the trigger sets under which sig may change
// outside the graph being ordered, e.g. because logic not in this graph also
// writes it, and returns the extended slice. The returned handles must be
// interned in the pass's Canon.
//
// buf is reset by the caller before every call and is only valid until the
// next one. Implementations must not have side effects: they are called once
// per edge leaving a variable vertex, so the same signal is asked repeatedly.
type ExternalDomains func(sig *ir.Signal, buf []canon.Handle) []canon.Handle

// NoExternalDomains is the provider for a graph that sees every writer.
func NoExternalDomains(_ *ir.Signal, buf []canon.Handle) []canon.Handle {
	return buf
}

// StaticExternalDomains maps signal names to their external trigger sets.
type StaticExternalDomains map[string][]canon.Handle

// Provide implements ExternalDomains.
func (s StaticExternalDomains) Provide(sig *ir.Signal, buf []canon.Handle) []canon.Handle {
	return append(buf, s[sig.Name]...)
}
