package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/hdlorder/internal/compiler"
	"github.com/roach88/hdlorder/internal/ir"
	"github.com/roach88/hdlorder/internal/logging"
	"github.com/roach88/hdlorder/internal/order"
	"github.com/roach88/hdlorder/internal/runid"
	"github.com/roach88/hdlorder/internal/store"
	"github.com/roach88/hdlorder/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios against an isolated store with deterministic run ids
// and timestamps.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load (or take inline) and validate the graph description
// 2. Build the netlist, graph and trigger-set table
// 3. Assign domains, write the report and prune dead logic
// 4. Record the run and read it back from the store
// 5. Evaluate assertions and return the result
//
// A returned error means the harness itself failed; assertion failures and
// pipeline errors expected by the scenario are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:",
		store.WithRunIDs(runid.NewFixedGenerator("run-"+scenario.Name)),
		store.WithClock(testutil.NewSteppingClock().Now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, logger: logging.NewNop()}
	ctx := context.Background()

	result := NewResult()
	perr := h.execute(ctx, scenario, result)

	switch {
	case scenario.ExpectError != "" && perr == nil:
		result.AddError(fmt.Sprintf("expected error containing %q, pipeline succeeded", scenario.ExpectError))
		return result, nil
	case scenario.ExpectError != "":
		result.Err = perr.Error()
		if !strings.Contains(perr.Error(), scenario.ExpectError) {
			result.AddError(fmt.Sprintf("expected error containing %q, got: %v", scenario.ExpectError, perr))
		}
		return result, nil
	case perr != nil:
		return nil, perr
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// execute runs the pipeline and fills result with the recorded run.
func (h *Harness) execute(ctx context.Context, scenario *Scenario, result *Result) error {
	spec, err := scenario.graphSpec()
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	design, err := compiler.Build(spec)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	result.Tag = design.Tag
	for id, v := range design.Vertices {
		result.vertexIDs[id] = v.ID()
	}

	dir, err := os.MkdirTemp("", "hdlorder-harness-*")
	if err != nil {
		return fmt.Errorf("create dump dir: %w", err)
	}
	defer os.RemoveAll(dir)

	res, err := order.ProcessDomains(design.Netlist, design.Graph, design.Canon, design.External.Provide, order.Options{
		Tag:     design.Tag,
		DumpDir: dir,
		Report:  true,
		Logger:  h.logger,
	})
	if err != nil {
		return err
	}

	report, err := os.ReadFile(res.ReportPath)
	if err != nil {
		return fmt.Errorf("read domain report: %w", err)
	}
	result.Report = strings.Split(strings.TrimSuffix(string(report), "\n"), "\n")

	run, err := h.store.WriteRun(ctx, store.RunRecord{
		Tag:       design.Tag,
		GraphHash: design.Hash,
		Result:    res,
		Canon:     design.Canon,
	})
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	result.RunID = run.ID

	if result.Domains, err = h.store.ReadDomains(ctx, run.ID); err != nil {
		return err
	}
	if result.Canon, err = h.store.ReadCanon(ctx, run.ID); err != nil {
		return err
	}
	if result.Pruned, err = h.store.ReadPruned(ctx, run.ID); err != nil {
		return err
	}
	return nil
}

// canonicalText renders a trigger set written as "a or b or c" in the form
// the report uses: items sorted and deduplicated.
func canonicalText(text string) (string, error) {
	parts := strings.Split(text, " or ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	tree, err := ir.ParseSenTree(parts)
	if err != nil {
		return "", err
	}
	tree.Normalize()
	return tree.String(), nil
}
