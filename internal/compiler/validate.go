package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Declaration errors (E100-E109)
	ErrMissingField     = "E100" // required field is empty
	ErrDuplicateSignal  = "E101" // signal declared twice
	ErrDuplicateLogic   = "E102" // logic block declared twice
	ErrInvalidLogicKind = "E103" // unknown logic kind

	// Vertex errors (E110-E119)
	ErrDuplicateVertex   = "E110" // vertex id used twice
	ErrInvalidVertexKind = "E111" // kind is not logic or var
	ErrUnknownSignal     = "E112" // vertex or external names an undeclared signal
	ErrUnknownLogic      = "E113" // vertex names an undeclared logic block
	ErrLogicReused       = "E114" // logic block placed on two vertices
	ErrInvalidPhase      = "E115" // unknown variable phase
	ErrMisplacedField    = "E116" // field not valid for this vertex kind
	ErrInvalidSenItem    = "E117" // sensitivity item does not parse
	ErrComboDomain       = "E118" // combinational item in a domain

	// Edge errors (E120-E129)
	ErrUnknownVertex  = "E120" // edge endpoint not declared
	ErrNegativeWeight = "E121" // weight below zero
	ErrOrderViolation = "E122" // nonzero edge runs against vertex order
)

// ValidationError represents a graph description validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a graph description.
// Returns all errors found (does not fail-fast).
//
// Besides well-formedness it enforces the preconditions of the domain pass:
// vertices are listed so that every nonzero-weight edge runs forward, and no
// preset, hybrid or external domain is combinational. Combinational logic
// belongs to the settle region and must not reach domain assignment with a
// domain of its own.
func Validate(spec *GraphSpec) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	signals := make(map[string]bool, len(spec.Signals))
	for i, name := range spec.Signals {
		field := fmt.Sprintf("signals[%d]", i)
		switch {
		case strings.TrimSpace(name) == "":
			add(field, ErrMissingField, "signal name is required")
		case signals[name]:
			add(field, ErrDuplicateSignal, "duplicate signal: %q", name)
		}
		signals[name] = true
	}

	logic := make(map[string]bool, len(spec.Logic))
	for i, l := range spec.Logic {
		field := fmt.Sprintf("logic[%d]", i)
		switch {
		case strings.TrimSpace(l.Name) == "":
			add(field+".name", ErrMissingField, "logic name is required")
		case logic[l.Name]:
			add(field+".name", ErrDuplicateLogic, "duplicate logic block: %q", l.Name)
		}
		logic[l.Name] = true

		if !ir.ValidLogicKinds[ir.LogicKind(l.Kind)] {
			add(field+".kind", ErrInvalidLogicKind, "invalid logic kind %q, must be comb, seq, hybrid or static", l.Kind)
		}
	}

	position := make(map[string]int, len(spec.Vertices))
	placed := make(map[string]string)
	for i, v := range spec.Vertices {
		field := fmt.Sprintf("vertices[%d]", i)
		if strings.TrimSpace(v.ID) == "" {
			add(field+".id", ErrMissingField, "vertex id is required")
		} else if _, dup := position[v.ID]; dup {
			add(field+".id", ErrDuplicateVertex, "duplicate vertex id: %q", v.ID)
		} else {
			position[v.ID] = i
		}

		switch v.Kind {
		case KindLogic:
			switch {
			case v.Logic == "":
				add(field+".logic", ErrMissingField, "logic vertex %q must name a logic block", v.ID)
			case !logic[v.Logic]:
				add(field+".logic", ErrUnknownLogic, "unknown logic block %q", v.Logic)
			case placed[v.Logic] != "":
				add(field+".logic", ErrLogicReused, "logic block %q already placed on vertex %q", v.Logic, placed[v.Logic])
			default:
				placed[v.Logic] = v.ID
			}
			if v.Signal != "" || v.Phase != "" {
				add(field, ErrMisplacedField, "logic vertex %q takes no signal or phase", v.ID)
			}
			errs = append(errs, validateItems(v.Hybrid, field+".hybrid")...)

		case KindVar:
			switch {
			case v.Signal == "":
				add(field+".signal", ErrMissingField, "variable vertex %q must name a signal", v.ID)
			case !signals[v.Signal]:
				add(field+".signal", ErrUnknownSignal, "unknown signal %q", v.Signal)
			}
			if _, err := graph.ParsePhase(v.Phase); err != nil {
				add(field+".phase", ErrInvalidPhase, "%v", err)
			}
			if v.Logic != "" || len(v.Hybrid) > 0 {
				add(field, ErrMisplacedField, "variable vertex %q takes no logic or hybrid sensitivity", v.ID)
			}

		default:
			add(field+".kind", ErrInvalidVertexKind, "invalid vertex kind %q, must be \"logic\" or \"var\"", v.Kind)
		}

		errs = append(errs, validateItems(v.Domain, field+".domain")...)
	}

	for i, e := range spec.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		from, fromOK := position[e.From]
		to, toOK := position[e.To]
		if !fromOK {
			add(field+".from", ErrUnknownVertex, "unknown vertex %q", e.From)
		}
		if !toOK {
			add(field+".to", ErrUnknownVertex, "unknown vertex %q", e.To)
		}
		weight := e.EdgeWeight()
		if weight < 0 {
			add(field+".weight", ErrNegativeWeight, "weight %d must not be negative", weight)
		}
		if fromOK && toOK && weight != 0 && from >= to {
			add(field, ErrOrderViolation,
				"edge %s -> %s (weight %d) runs against vertex order; cut it with weight 0 or reorder the vertices",
				e.From, e.To, weight)
		}
	}

	for _, signal := range spec.ExternalSignals() {
		field := "external." + signal
		if !signals[signal] {
			add(field, ErrUnknownSignal, "unknown signal %q", signal)
		}
		for i, set := range spec.External[signal] {
			errs = append(errs, validateItems(set, fmt.Sprintf("%s[%d]", field, i))...)
		}
	}

	return errs
}

// validateItems checks that every item parses and none is combinational.
func validateItems(items []string, field string) []ValidationError {
	var errs []ValidationError
	for i, text := range items {
		it, err := ir.ParseSenItem(text)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: err.Error(),
				Code:    ErrInvalidSenItem,
			})
			continue
		}
		if it.Edge == ir.EdgeCombo {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "combinational sensitivity cannot be a clock domain",
				Code:    ErrComboDomain,
			})
		}
	}
	return errs
}
