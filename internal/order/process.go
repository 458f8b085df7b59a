package order

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/graph"
	"github.com/roach88/hdlorder/internal/ir"
	"github.com/roach88/hdlorder/internal/metrics"
)

// Options configures ProcessDomains.
type Options struct {
	// Tag names the diagnostic files of this pass.
	Tag string

	// DumpDir receives the report and graph dump. Defaults to ".".
	DumpDir string

	// Report writes <tag>_order_edges.txt after assignment.
	Report bool

	// DumpGraph writes <tag>_orderg_domain.mmd after assignment.
	DumpGraph bool

	Logger  *slog.Logger
	Metrics *metrics.Pass
}

// VertexDomain is the resolved domain of one vertex, captured before
// pruning.
type VertexDomain struct {
	ID      graph.VertexID `json:"id"`
	Kind    string         `json:"kind"` // "logic" or "var"
	Name    string         `json:"name"`
	Phase   string         `json:"phase,omitempty"`
	Handle  canon.Handle   `json:"handle,omitempty"`
	Deleted bool           `json:"deleted,omitempty"`
	Domain  string         `json:"domain"`
}

// Result summarizes one run of ProcessDomains.
type Result struct {
	Vertices int `json:"vertices"`
	Preset   int `json:"preset"`
	Concrete int `json:"concrete"`
	Deleted  int `json:"deleted"`

	// Pruned lists the removed logic blocks in graph order.
	Pruned []string `json:"pruned"`

	Domains []VertexDomain `json:"domains"`
	Canon   canon.Stats    `json:"canon"`

	ReportPath string `json:"report_path,omitempty"`
	GraphPath  string `json:"graph_path,omitempty"`
}

// ProcessDomains assigns a trigger domain to every vertex of g, optionally
// writes the domain report and graph dump, and then removes logic that can
// never be triggered from both g and nl.
//
// The vertices of g must be in dependency order and sequential logic must
// already carry its domain. Every handle reachable from g or returned by
// externals must be interned in cn. Derived sets are interned into cn.
func ProcessDomains(nl *ir.Netlist, g *graph.Graph, cn *canon.Canon, externals ExternalDomains, opts Options) (*Result, error) {
	start := time.Now()
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("tag", opts.Tag)

	res := &Result{Vertices: g.Len()}

	p := newAssigner(g, cn, externals, log, opts.Metrics)
	if err := p.run(); err != nil {
		return nil, fmt.Errorf("assign domains: %w", err)
	}
	res.Preset, res.Concrete, res.Deleted = p.preset, p.concrete, p.deleted
	res.Domains = snapshotDomains(g, cn)

	dir := opts.DumpDir
	if dir == "" {
		dir = "."
	}
	if opts.DumpGraph {
		path := filepath.Join(dir, opts.Tag+"_orderg_domain.mmd")
		if err := writeGraphFile(path, g, cn); err != nil {
			return nil, err
		}
		res.GraphPath = path
		log.Debug("wrote graph dump", "path", path)
	}
	if opts.Report {
		path := ReportPath(dir, opts.Tag)
		if err := writeReportFile(path, g, cn); err != nil {
			return nil, err
		}
		res.ReportPath = path
		log.Debug("wrote domain report", "path", path)
	}

	pruned, err := PruneDeadLogic(nl, g, p.dead, log)
	if err != nil {
		return nil, err
	}
	res.Pruned = pruned

	res.Canon = cn.Stats()
	opts.Metrics.Pruned(len(pruned))
	opts.Metrics.ObserveCanon(res.Canon.Interned, res.Canon.Hits)
	opts.Metrics.ObserveDuration(time.Since(start))

	log.Info("domains assigned",
		"vertices", res.Vertices,
		"preset", res.Preset,
		"concrete", res.Concrete,
		"deleted", res.Deleted,
		"pruned", len(pruned),
		"canon_sets", res.Canon.Interned,
	)
	return res, nil
}

func snapshotDomains(g *graph.Graph, cn *canon.Canon) []VertexDomain {
	out := make([]VertexDomain, 0, g.Len())
	for _, v := range g.Vertices() {
		vd := VertexDomain{ID: v.ID(), Name: v.Name(), Domain: renderDomain(v.Domain(), cn)}
		switch v := v.(type) {
		case *graph.LogicVertex:
			vd.Kind = "logic"
		case *graph.VarVertex:
			vd.Kind = "var"
			vd.Phase = v.Phase.Tag()
		}
		if h, ok := v.Domain().Handle(); ok {
			vd.Handle = h
		}
		vd.Deleted = v.Domain().IsDeleted()
		out = append(out, vd)
	}
	return out
}

// DomainLabel renders domains for graph dumps.
func DomainLabel(cn *canon.Canon) graph.DomainLabel {
	return func(d graph.Domain) string {
		if h, ok := d.Handle(); ok {
			return h.String() + " " + cn.String(h)
		}
		return d.String()
	}
}

func writeGraphFile(path string, g *graph.Graph, cn *canon.Canon) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &ResourceError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &ResourceError{Path: path, Err: cerr}
		}
	}()

	if err := graph.WriteMermaid(f, g, DomainLabel(cn)); err != nil {
		return &ResourceError{Path: path, Err: err}
	}
	return nil
}
