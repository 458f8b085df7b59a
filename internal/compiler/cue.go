package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseCUE compiles CUE source and decodes the graph description at its
// root.
func ParseCUE(filename string, src []byte) (*GraphSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return CompileGraph(v)
}

// CompileGraph decodes a CUE value into a GraphSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
//	tag: "top"
//	signals: ["clk", "d"]
//	logic: [{name: "mix", kind: "comb"}]
//	vertices: [
//		{id: "clk", kind: "var", signal: "clk", domain: ["posedge clk"]},
//		{id: "mix", kind: "logic", logic: "mix"},
//	]
//	edges: [{from: "clk", to: "mix"}]
//	external: d: [["negedge clk"]]
func CompileGraph(v cue.Value) (*GraphSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &GraphSpec{}
	var err error

	if spec.Tag, err = optionalString(v, "tag", "tag"); err != nil {
		return nil, err
	}
	if spec.Signals, err = optionalStrings(v, "signals", "signals"); err != nil {
		return nil, err
	}

	err = eachListItem(v, "logic", func(i int, item cue.Value) error {
		l, err := parseLogic(item, fmt.Sprintf("logic[%d]", i))
		if err != nil {
			return err
		}
		spec.Logic = append(spec.Logic, l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachListItem(v, "vertices", func(i int, item cue.Value) error {
		vs, err := parseVertex(item, fmt.Sprintf("vertices[%d]", i))
		if err != nil {
			return err
		}
		spec.Vertices = append(spec.Vertices, vs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachListItem(v, "edges", func(i int, item cue.Value) error {
		e, err := parseEdge(item, fmt.Sprintf("edges[%d]", i))
		if err != nil {
			return err
		}
		spec.Edges = append(spec.Edges, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if spec.External, err = parseExternal(v); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseLogic(v cue.Value, path string) (LogicSpec, error) {
	var l LogicSpec
	var err error
	if l.Name, err = requiredString(v, "name", path); err != nil {
		return l, err
	}
	if l.Kind, err = requiredString(v, "kind", path); err != nil {
		return l, err
	}
	if l.Body, err = optionalString(v, "body", path); err != nil {
		return l, err
	}
	return l, nil
}

func parseVertex(v cue.Value, path string) (VertexSpec, error) {
	var vs VertexSpec
	var err error
	if vs.ID, err = requiredString(v, "id", path); err != nil {
		return vs, err
	}
	if vs.Kind, err = requiredString(v, "kind", path); err != nil {
		return vs, err
	}
	if vs.Logic, err = optionalString(v, "logic", path); err != nil {
		return vs, err
	}
	if vs.Signal, err = optionalString(v, "signal", path); err != nil {
		return vs, err
	}
	if vs.Phase, err = optionalString(v, "phase", path); err != nil {
		return vs, err
	}
	if vs.Domain, err = optionalStrings(v, "domain", path); err != nil {
		return vs, err
	}
	if vs.Hybrid, err = optionalStrings(v, "hybrid", path); err != nil {
		return vs, err
	}
	return vs, nil
}

func parseEdge(v cue.Value, path string) (EdgeSpec, error) {
	var e EdgeSpec
	var err error
	if e.From, err = requiredString(v, "from", path); err != nil {
		return e, err
	}
	if e.To, err = requiredString(v, "to", path); err != nil {
		return e, err
	}

	weightVal := v.LookupPath(cue.ParsePath("weight"))
	if weightVal.Exists() {
		w, err := weightVal.Int64()
		if err != nil {
			return e, &CompileError{
				Field:   path + ".weight",
				Message: "weight must be an integer",
				Pos:     weightVal.Pos(),
			}
		}
		weight := int(w)
		e.Weight = &weight
	}
	return e, nil
}

// parseExternal reads external: <signal>: [[items...], ...].
func parseExternal(v cue.Value) (map[string][][]string, error) {
	extVal := v.LookupPath(cue.ParsePath("external"))
	if !extVal.Exists() {
		return nil, nil
	}

	iter, err := extVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	external := make(map[string][][]string)
	for iter.Next() {
		signal := iter.Selector().Unquoted()
		setsIter, err := iter.Value().List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		sets := [][]string{}
		for setsIter.Next() {
			items, err := stringsOf(setsIter.Value(), "external."+signal)
			if err != nil {
				return nil, err
			}
			sets = append(sets, items)
		}
		external[signal] = sets
	}
	return external, nil
}

func eachListItem(v cue.Value, field string, fn func(int, cue.Value) error) error {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil
	}
	iter, err := listVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		if err := fn(i, iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func requiredString(v cue.Value, field, path string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   path + "." + field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field, path string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", nil
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", &CompileError{
			Field:   path + "." + field,
			Message: "must be a string",
			Pos:     fieldVal.Pos(),
		}
	}
	return s, nil
}

func optionalStrings(v cue.Value, field, path string) ([]string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return nil, nil
	}
	return stringsOf(fieldVal, path+"."+field)
}

func stringsOf(v cue.Value, path string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   path,
			Message: "must be a list of strings",
			Pos:     v.Pos(),
		}
	}
	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   path,
				Message: "must be a list of strings",
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}
