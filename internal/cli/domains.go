package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/hdlorder/internal/canon"
	"github.com/roach88/hdlorder/internal/compiler"
	"github.com/roach88/hdlorder/internal/metrics"
	"github.com/roach88/hdlorder/internal/order"
	"github.com/roach88/hdlorder/internal/runid"
	"github.com/roach88/hdlorder/internal/store"
)

// DomainsOptions holds flags for the domains command.
type DomainsOptions struct {
	*RootOptions
	Tag         string
	DumpDir     string
	Report      bool
	DumpGraph   bool
	Database    string
	MetricsFile string

	// RunIDs overrides the run id generator of the store (for testing).
	// If nil, the store uses UUIDv7.
	RunIDs runid.Generator
}

// CanonEntry is one interned trigger set in command output.
type CanonEntry struct {
	Handle canon.Handle `json:"handle"`
	Text   string       `json:"text"`
	Multi  bool         `json:"multi,omitempty"`
}

// DomainsResult is the output of the domains command.
type DomainsResult struct {
	Tag         string        `json:"tag"`
	GraphHash   string        `json:"graph_hash"`
	RunID       string        `json:"run_id,omitempty"`
	MetricsFile string        `json:"metrics_file,omitempty"`
	Result      *order.Result `json:"result"`
	Canon       []CanonEntry  `json:"canon"`
}

// WriteText renders the result for terminals.
func (r DomainsResult) WriteText(w io.Writer) error {
	res := r.Result
	fmt.Fprintf(w, "Tag: %s\n", r.Tag)
	fmt.Fprintf(w, "Vertices: %d (preset %d, concrete %d, deleted %d)\n",
		res.Vertices, res.Preset, res.Concrete, res.Deleted)
	fmt.Fprintf(w, "Trigger sets: %d (hits %d)\n", res.Canon.Interned, res.Canon.Hits)
	for _, c := range r.Canon {
		fmt.Fprintf(w, "  %-4s %s\n", c.Handle, c.Text)
	}
	fmt.Fprintln(w, "Domains:")
	for _, vd := range res.Domains {
		name := vd.Name
		if vd.Phase != "" {
			name += " {" + vd.Phase + "}"
		}
		fmt.Fprintf(w, "  %-5s %-30s %s\n", vd.Kind, name, vd.Domain)
	}
	if len(res.Pruned) == 0 {
		fmt.Fprintln(w, "Pruned: none")
	} else {
		fmt.Fprintf(w, "Pruned: %s\n", strings.Join(res.Pruned, ", "))
	}
	if res.ReportPath != "" {
		fmt.Fprintf(w, "Report: %s\n", res.ReportPath)
	}
	if res.GraphPath != "" {
		fmt.Fprintf(w, "Graph: %s\n", res.GraphPath)
	}
	if r.MetricsFile != "" {
		fmt.Fprintf(w, "Metrics: %s\n", r.MetricsFile)
	}
	if r.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", r.RunID)
	}
	return nil
}

// NewDomainsCommand creates the domains command.
func NewDomainsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DomainsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "domains <graph-file>",
		Short: "Assign trigger domains and prune dead logic",
		Long: `Assign a trigger domain to every vertex of a graph description.

The description is validated, the domain pass runs over its vertices in
order, and logic that no trigger can ever reach is removed. Optionally the
domain report and a Mermaid graph dump are written to the dump directory,
pass metrics are written in the Prometheus text format, and the run is
recorded in a SQLite database.

Flags left unset fall back to the config file and HDLORDER_* variables.

Examples:
  hdlorder domains ./design.cue
  hdlorder domains ./design.yaml --report --dump-dir ./out
  hdlorder domains ./design.hcl --db ./hdlorder.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyConfig(cmd)
			return runDomains(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tag, "tag", "", "tag naming the report and dump files (default: the description's tag)")
	cmd.Flags().StringVar(&opts.DumpDir, "dump-dir", "", "directory for the report and graph dump")
	cmd.Flags().BoolVar(&opts.Report, "report", false, "write <tag>_order_edges.txt")
	cmd.Flags().BoolVar(&opts.DumpGraph, "dump-graph", false, "write <tag>_orderg_domain.mmd")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write pass metrics to this file")

	return cmd
}

// applyConfig fills every flag the user did not set from the loaded config.
func (o *DomainsOptions) applyConfig(cmd *cobra.Command) {
	cfg := o.Config
	flags := cmd.Flags()
	if !flags.Changed("dump-dir") {
		o.DumpDir = cfg.DumpDir
	}
	if !flags.Changed("report") {
		o.Report = cfg.Report
	}
	if !flags.Changed("dump-graph") {
		o.DumpGraph = cfg.DumpGraph
	}
	if !flags.Changed("db") {
		o.Database = cfg.Database
	}
	if !flags.Changed("metrics-file") {
		o.MetricsFile = cfg.MetricsFile
	}
}

func runDomains(opts *DomainsOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	log := opts.logger(cmd.ErrOrStderr())

	spec, err := LoadGraph(path)
	if err != nil {
		_ = formatter.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load graph", err)
	}

	design, err := compiler.Build(spec)
	if err != nil {
		var verrs compiler.ValidationErrors
		if errors.As(err, &verrs) {
			_ = formatter.Error(verrs[0].Code, fmt.Sprintf("graph is invalid: %d error(s)", len(verrs)), []compiler.ValidationError(verrs))
			return WrapExitError(ExitFailure, "graph is invalid", err)
		}
		_ = formatter.Error(ErrCodeBuildFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to build graph", err)
	}
	tag := design.Tag
	if opts.Tag != "" {
		tag = opts.Tag
	}
	formatter.VerboseLog("Loaded %s: %d vertices, %d trigger sets", path, design.Graph.Len(), design.Canon.Len())

	if opts.Report || opts.DumpGraph {
		if err := os.MkdirAll(opts.DumpDir, 0o755); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to create dump directory", err)
		}
	}

	reg := prometheus.NewRegistry()
	pass, err := metrics.NewPass(reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to register metrics", err)
	}

	res, err := order.ProcessDomains(design.Netlist, design.Graph, design.Canon, design.External.Provide, order.Options{
		Tag:       tag,
		DumpDir:   opts.DumpDir,
		Report:    opts.Report,
		DumpGraph: opts.DumpGraph,
		Logger:    log.With("graph", path),
		Metrics:   pass,
	})
	if err != nil {
		var resErr *order.ResourceError
		if errors.As(err, &resErr) {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "domain pass failed", err)
		}
		_ = formatter.Error(ErrCodePassFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "domain pass failed", err)
	}

	out := DomainsResult{
		Tag:       tag,
		GraphHash: design.Hash,
		Result:    res,
		Canon:     canonEntries(design.Canon),
	}

	if opts.MetricsFile != "" {
		if err := metrics.WriteTextfile(opts.MetricsFile, reg); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
		out.MetricsFile = opts.MetricsFile
	}

	if opts.Database != "" {
		runID, err := recordRun(cmd.Context(), opts, store.RunRecord{
			Tag:       tag,
			GraphHash: design.Hash,
			Result:    res,
			Canon:     design.Canon,
		})
		if err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		log.Info("run recorded", "run_id", runID, "db", opts.Database)
		out.RunID = runID
	}

	return formatter.Success(out)
}

func recordRun(ctx context.Context, opts *DomainsOptions, rec store.RunRecord) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var storeOpts []store.Option
	if opts.RunIDs != nil {
		storeOpts = append(storeOpts, store.WithRunIDs(opts.RunIDs))
	}
	st, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run, err := st.WriteRun(ctx, rec)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

func canonEntries(cn *canon.Canon) []CanonEntry {
	handles := cn.Handles()
	out := make([]CanonEntry, 0, len(handles))
	for _, h := range handles {
		out = append(out, CanonEntry{Handle: h, Text: cn.String(h), Multi: cn.Multi(h)})
	}
	return out
}
