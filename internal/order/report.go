package order

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/graph"
)

// ReportHeader is the first line of a domain report.
const ReportHeader = "Signals and their clock domains:"

// ReportPath returns where the domain report for tag is written.
func ReportPath(dir, tag string) string {
	return filepath.Join(dir, tag+"_order_edges.txt")
}

// ReportLines renders one line per variable vertex of g, sorted.
func ReportLines(g *graph.Graph, cn *canon.Canon) []string {
	var lines []string
	for _, v := range g.Vertices() {
		vv, ok := v.(*graph.VarVertex)
		if !ok {
			continue
		}
		name := vv.Signal.Name
		if tag := vv.Phase.Tag(); tag != "" {
			name += " {" + tag + "}"
		}
		lines = append(lines, fmt.Sprintf("  %s %-50s %s", vv.Signal.ID, name, renderDomain(vv.Domain(), cn)))
	}
	slices.Sort(lines)
	return lines
}

func renderDomain(d graph.Domain, cn *canon.Canon) string {
	if d.IsDeleted() {
		return "DELETED"
	}
	if h, ok := d.Handle(); ok {
		return cn.String(h)
	}
	return "UNRESOLVED"
}

// WriteReport writes the header and the report lines of g to w.
func WriteReport(w io.Writer, g *graph.Graph, cn *canon.Canon) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, ReportHeader)
	for _, line := range ReportLines(g, cn) {
		fmt.Fprintln(bw, line)
	}
	return bw.Flush()
}

// writeReportFile writes the report to path. Any failure is a ResourceError.
func writeReportFile(path string, g *graph.Graph, cn *canon.Canon) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &ResourceError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &ResourceError{Path: path, Err: cerr}
		}
	}()

	if err := WriteReport(f, g, cn); err != nil {
		return &ResourceError{Path: path, Err: err}
	}
	return nil
}
