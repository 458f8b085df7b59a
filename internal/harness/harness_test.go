package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hdlorder/internal/compiler"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return s
}

func intPtr(v int) *int { return &v }

// TestRun_Scenarios tests that every checked-in scenario passes.
func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"counter", "two_domains", "hybrid", "cut_edge", "order_violation"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

// TestRun_RecordsRun tests that the result is read back from the store.
func TestRun_RecordsRun(t *testing.T) {
	result, err := Run(loadScenario(t, "counter"))
	require.NoError(t, err)

	assert.Equal(t, "run-counter", result.RunID)
	assert.Equal(t, "counter", result.Tag)
	assert.Len(t, result.Domains, 10)
	assert.Len(t, result.Canon, 5)
	assert.Equal(t, []string{"idle"}, result.Pruned)
	require.NotEmpty(t, result.Report)
	assert.Equal(t, "Signals and their clock domains:", result.Report[0])

	vd, ok := result.Domain("cnt_pre")
	require.True(t, ok)
	assert.Equal(t, "PRE", vd.Phase)
	assert.True(t, vd.Deleted)

	_, ok = result.Domain("nope")
	assert.False(t, ok)
}

// TestRun_Golden tests the counter scenario against its golden snapshot and
// report.
func TestRun_Golden(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "counter"))
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func inlineTwoClocks() *compiler.GraphSpec {
	return &compiler.GraphSpec{
		Signals: []string{"a", "b", "y"},
		Logic:   []compiler.LogicSpec{{Name: "m", Kind: "comb"}},
		Vertices: []compiler.VertexSpec{
			{ID: "a", Kind: compiler.KindVar, Signal: "a", Domain: []string{"posedge clk"}},
			{ID: "b", Kind: compiler.KindVar, Signal: "b", Domain: []string{"posedge rst"}},
			{ID: "m", Kind: compiler.KindLogic, Logic: "m"},
			{ID: "y", Kind: compiler.KindVar, Signal: "y"},
		},
		Edges: []compiler.EdgeSpec{{From: "a", To: "m"}, {From: "b", To: "m"}, {From: "m", To: "y"}},
	}
}

// TestRun_FailingAssertions tests that each assertion type reports a
// mismatch instead of passing.
func TestRun_FailingAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		contains  string
	}{
		{"domain", Assertion{Type: AssertDomain, Vertex: "m", Expect: "posedge clk"}, `m has domain "posedge clk"`},
		{"deleted", Assertion{Type: AssertDeleted, Vertex: "a"}, "a is deleted"},
		{"multi", Assertion{Type: AssertMulti, Vertex: "a"}, "merged domain"},
		{"same_domain", Assertion{Type: AssertSameDomain, Vertices: []string{"a", "b"}}, "share one domain"},
		{"distinct", Assertion{Type: AssertDistinctDomains, Vertices: []string{"m", "y"}}, "m and y share"},
		{"pruned", Assertion{Type: AssertPruned, Logic: []string{"m"}}, "pruned [m]"},
		{"canon_size", Assertion{Type: AssertCanonSize, Count: intPtr(2)}, "2 trigger sets"},
		{"stored", Assertion{Type: AssertStored, Table: "runs", Expect: map[string]any{"vertices": 5}}, `field "vertices" = 5`},
		{"unknown vertex", Assertion{Type: AssertDeleted, Vertex: "ghost"}, "no such vertex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(&Scenario{
				Name:       "failing",
				Inline:     inlineTwoClocks(),
				Assertions: []Assertion{tt.assertion},
			})
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.contains)
		})
	}
}

// TestRun_PassingAssertions tests the inline description directly.
func TestRun_PassingAssertions(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "passing",
		Inline: inlineTwoClocks(),
		Assertions: []Assertion{
			{Type: AssertDomain, Vertex: "m", Expect: "posedge rst or posedge clk"},
			{Type: AssertMulti, Vertex: "m"},
			{Type: AssertSameDomain, Vertices: []string{"m", "y"}},
			{Type: AssertDistinctDomains, Vertices: []string{"a", "b", "m"}},
			{Type: AssertPruned, Logic: []string{}},
			{Type: AssertCanonSize, Count: intPtr(3)},
			{Type: AssertStored, Table: "canon_sets", Where: map[string]any{"handle": 3}, Expect: map[string]any{"multi": true}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

// TestRun_ExpectError tests both outcomes of an expect_error scenario.
func TestRun_ExpectError(t *testing.T) {
	spec := inlineTwoClocks()
	spec.Edges = append(spec.Edges, compiler.EdgeSpec{From: "y", To: "m"})

	result, err := Run(&Scenario{Name: "bad", Inline: spec, ExpectError: "E122"})
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Contains(t, result.Err, "runs against vertex order")

	result, err = Run(&Scenario{Name: "bad", Inline: spec, ExpectError: "E999"})
	require.NoError(t, err)
	assert.False(t, result.Pass)

	result, err = Run(&Scenario{Name: "good", Inline: inlineTwoClocks(), ExpectError: "E122"})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "pipeline succeeded")
}

// TestRun_PipelineError tests that an unexpected pipeline error is returned.
func TestRun_PipelineError(t *testing.T) {
	spec := inlineTwoClocks()
	spec.Vertices[0].Signal = "missing"

	_, err := Run(&Scenario{
		Name:       "broken",
		Inline:     spec,
		Assertions: []Assertion{{Type: AssertPruned, Logic: []string{}}},
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "E112"), err.Error())
}

func TestCanonicalText(t *testing.T) {
	got, err := canonicalText("posedge rst or posedge clk or posedge clk")
	require.NoError(t, err)
	assert.Equal(t, "posedge clk or posedge rst", got)

	_, err = canonicalText("sometimes clk")
	require.Error(t, err)
}
