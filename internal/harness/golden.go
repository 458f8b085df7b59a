package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/hdlorder/internal/ir"
)

// DomainSnapshot captures the recorded outcome of a scenario.
// All fields use canonical JSON serialization for deterministic comparison.
type DomainSnapshot struct {
	ScenarioName string
	Tag          string
	Result       *Result
}

// toCanonicalMap converts a DomainSnapshot to a map[string]any for canonical
// JSON serialization. ir.MarshalCanonical only handles primitives, slices and
// maps.
func (s *DomainSnapshot) toCanonicalMap() map[string]any {
	domains := make([]any, len(s.Result.Domains))
	for i, vd := range s.Result.Domains {
		domains[i] = map[string]any{
			"id":     int(vd.ID),
			"kind":   vd.Kind,
			"name":   vd.Name,
			"phase":  vd.Phase,
			"domain": vd.Domain,
		}
	}

	sets := make([]any, len(s.Result.Canon))
	for i, cs := range s.Result.Canon {
		sets[i] = map[string]any{
			"handle": int(cs.Handle),
			"text":   cs.Text,
			"multi":  cs.Multi,
		}
	}

	pruned := make([]any, len(s.Result.Pruned))
	for i, name := range s.Result.Pruned {
		pruned[i] = name
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"tag":           s.Tag,
		"domains":       domains,
		"canon":         sets,
		"pruned":        pruned,
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// RunWithGolden executes a scenario and compares its recorded outcome
// against testdata/golden/{scenario.Name}.golden and its domain report
// against testdata/golden/{scenario.Name}_report.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the output doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	AssertReportGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := DomainSnapshot{ScenarioName: scenarioName, Tag: result.Tag, Result: result}
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	newGoldie(t).Assert(t, scenarioName, data)
	return nil
}

// AssertReportGolden compares the domain report of result against a golden
// file.
func AssertReportGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()
	report := strings.Join(result.Report, "\n") + "\n"
	newGoldie(t).Assert(t, scenarioName+"_report", []byte(report))
}
