package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hdlorder/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern over file base names)
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []string                  `json:"scenarios"`
	Passed    int                       `json:"passed"`
	Failed    int                       `json:"failed"`
	Total     int                       `json:"total"`
	Failures  []harness.ScenarioFailure `json:"failures,omitempty"`
}

// WriteText renders the result for terminals.
func (r TestResult) WriteText(w io.Writer) error {
	if r.Total == 0 {
		_, err := fmt.Fprintln(w, "No scenarios found.")
		return err
	}
	for _, f := range r.Failures {
		name := f.Scenario
		if name == "" {
			name = filepath.Base(f.ScenarioPath)
		}
		fmt.Fprintf(w, "✗ %s\n", name)
		fmt.Fprintf(w, "  %s\n", f.Error)
	}
	mark := "✓"
	if r.Failed > 0 {
		mark = "✗"
	}
	_, err := fmt.Fprintf(w, "%s %d passed, %d failed (%d total)\n", mark, r.Passed, r.Failed, r.Total)
	return err
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-dir|file>",
		Short: "Run scenario files against the domain pass",
		Long: `Run scenario files against the domain pass.

Each scenario names a graph description (or embeds one), runs the domain
pass over it, records the run in an in-memory store and checks its
assertions on domains, trigger sets, pruned logic and stored rows.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  hdlorder test ./scenarios
  hdlorder test ./scenarios --filter "counter*"
  hdlorder test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("scenarios not found: %s", path), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios not found: %s", path))
	}

	files, err := harness.FindScenarios(path)
	if err != nil {
		_ = formatter.Error(ErrCodeScanError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	files, err = filterScenarios(files, opts.Filter)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}

	result := TestResult{Scenarios: make([]string, 0, len(files))}
	for _, file := range files {
		formatter.VerboseLog("Running %s", file)
		suite, err := harness.RunSuite(file)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to run scenario", err)
		}
		result.Scenarios = append(result.Scenarios, file)
		result.Total += suite.Total
		result.Passed += suite.Passed
		result.Failed += suite.Failed
		result.Failures = append(result.Failures, suite.Failures...)
	}

	if err := formatter.Success(result); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// filterScenarios keeps the files whose base name without extension matches
// pattern. An empty pattern keeps everything.
func filterScenarios(files []string, pattern string) ([]string, error) {
	if pattern == "" {
		return files, nil
	}
	var kept []string
	for _, file := range files {
		base := filepath.Base(file)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		if matched {
			kept = append(kept, file)
		}
	}
	return kept, nil
}
