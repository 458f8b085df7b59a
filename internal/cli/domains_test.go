package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hdlorder/internal/runid"
)

const counterGraph = "testdata/graphs/counter.yaml"

type domainsResponse struct {
	Status string        `json:"status"`
	Data   DomainsResult `json:"data"`
	Error  *CLIError     `json:"error"`
}

// TestDomains_Text tests the human-readable summary.
func TestDomains_Text(t *testing.T) {
	stdout, _, err := executeCommand(t, "domains", counterGraph)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Tag: counter")
	assert.Contains(t, stdout, "Vertices: 10 (preset 3, concrete 3, deleted 4)")
	assert.Contains(t, stdout, "Trigger sets: 5")
	assert.Contains(t, stdout, "posedge clk or negedge clk or posedge rst")
	assert.Contains(t, stdout, "Pruned: idle")
	assert.NotContains(t, stdout, "Report:")
	assert.NotContains(t, stdout, "Run:")
}

// TestDomains_JSON tests the JSON envelope and its payload.
func TestDomains_JSON(t *testing.T) {
	stdout, _, err := executeCommand(t, "--format", "json", "domains", counterGraph)
	require.NoError(t, err)

	var resp domainsResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)

	out := resp.Data
	assert.Equal(t, "counter", out.Tag)
	assert.Len(t, out.GraphHash, 64)
	require.NotNil(t, out.Result)
	assert.Equal(t, []string{"idle"}, out.Result.Pruned)
	assert.Equal(t, 3, out.Result.Preset)
	assert.Len(t, out.Result.Domains, 10)

	require.Len(t, out.Canon, 5)
	assert.Equal(t, "posedge clk or posedge rst", out.Canon[2].Text)
	assert.False(t, out.Canon[2].Multi)
	assert.Equal(t, "posedge clk or negedge clk or posedge rst", out.Canon[4].Text)
	assert.True(t, out.Canon[4].Multi)

	domains := make(map[string]string)
	for _, vd := range out.Result.Domains {
		if vd.Phase == "" {
			domains[vd.Name] = vd.Domain
		}
	}
	assert.Equal(t, "DELETED", domains["en"])
	assert.Equal(t, "posedge clk or posedge rst", domains["cnt"])
	assert.Equal(t, domains["inc"], domains["cnt_next"])
}

// TestDomains_Outputs tests the report, graph dump, metrics file and run
// database written by one invocation.
func TestDomains_Outputs(t *testing.T) {
	dir := t.TempDir()
	dumpDir := filepath.Join(dir, "dump")
	metricsFile := filepath.Join(dir, "pass.prom")
	dbPath := filepath.Join(dir, "runs.db")

	stdout, _, err := executeCommand(t, "domains", counterGraph,
		"--report", "--dump-graph",
		"--dump-dir", dumpDir,
		"--metrics-file", metricsFile,
		"--db", dbPath,
	)
	require.NoError(t, err)

	report, err := os.ReadFile(filepath.Join(dumpDir, "counter_order_edges.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "Signals and their clock domains:")
	assert.Contains(t, string(report), "cnt {PRE}")

	dump, err := os.ReadFile(filepath.Join(dumpDir, "counter_orderg_domain.mmd"))
	require.NoError(t, err)
	assert.NotEmpty(t, dump)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "hdlorder_logic_pruned_total 1")
	assert.Contains(t, string(prom), "hdlorder_canon_sets 5")

	assert.FileExists(t, dbPath)
	assert.Contains(t, stdout, "Report: "+filepath.Join(dumpDir, "counter_order_edges.txt"))
	assert.Contains(t, stdout, "Metrics: "+metricsFile)
	assert.Contains(t, stdout, "Run: ")
}

// TestDomains_TagOverride tests that --tag renames the diagnostic files.
func TestDomains_TagOverride(t *testing.T) {
	dumpDir := t.TempDir()

	_, _, err := executeCommand(t, "domains", counterGraph, "--tag", "top", "--report", "--dump-dir", dumpDir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dumpDir, "top_order_edges.txt"))
	assert.NoFileExists(t, filepath.Join(dumpDir, "counter_order_edges.txt"))
}

// TestDomains_FixedRunID tests the run id override used by tests.
func TestDomains_FixedRunID(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	opts := &DomainsOptions{
		RootOptions: &RootOptions{Format: "json"},
		Database:    dbPath,
		DumpDir:     ".",
		RunIDs:      runid.NewFixedGenerator("run-fixed"),
	}

	cmd := &cobra.Command{}
	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, runDomains(opts, counterGraph, cmd))

	var resp domainsResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "run-fixed", resp.Data.RunID)
}

// TestDomains_InvalidGraph tests that validation errors stop the pass.
func TestDomains_InvalidGraph(t *testing.T) {
	stdout, _, err := executeCommand(t, "--format", "json", "domains", "testdata/graphs/loop.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E122", resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)
}

// TestDomains_LoadErrors tests missing and malformed descriptions.
func TestDomains_LoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing", "testdata/graphs/nope.yaml", ErrCodeNotFound},
		{"directory", "testdata/graphs", ErrCodeNotFound},
		{"syntax", "testdata/broken/syntax.yaml", ErrCodeLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := executeCommand(t, "domains", tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, stdout, "Error ["+tt.code+"]")
		})
	}
}

// TestDomains_ReportWriteFailure tests that an unwritable dump directory is
// a command error.
func TestDomains_ReportWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	stdout, _, err := executeCommand(t, "domains", counterGraph, "--report", "--dump-dir", filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error ["+ErrCodeWriteFailed+"]")
}
