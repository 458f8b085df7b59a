package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hdlorder/internal/compiler"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Graph is the path of a graph description in any supported format.
	// Relative paths are resolved against the scenario file location.
	Graph string `yaml:"graph,omitempty"`

	// Inline is a graph description embedded in the scenario. Exactly one
	// of Graph and Inline must be set.
	Inline *compiler.GraphSpec `yaml:"inline,omitempty"`

	// ExpectError makes the scenario pass only if the pipeline fails with an
	// error containing this text.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the recorded run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion validates one aspect of the recorded run.
type Assertion struct {
	// Type specifies the assertion type; see the package documentation.
	Type string `yaml:"type"`

	// Vertex is a description vertex id (domain, deleted, multi).
	Vertex string `yaml:"vertex,omitempty"`

	// Vertices lists description vertex ids (same_domain, distinct_domains).
	Vertices []string `yaml:"vertices,omitempty"`

	// Expect is the rendered trigger set (domain) or the expected column
	// values (stored).
	Expect any `yaml:"expect,omitempty"`

	// Logic lists the pruned logic block names (pruned). An empty list
	// asserts that nothing was pruned.
	Logic []string `yaml:"logic,omitempty"`

	// Count is the expected number of trigger sets (canon_size).
	Count *int `yaml:"count,omitempty"`

	// Table and Where select one row of the run (stored).
	Table string         `yaml:"table,omitempty"`
	Where map[string]any `yaml:"where,omitempty"`
}

// Assertion type constants.
const (
	AssertDomain          = "domain"
	AssertDeleted         = "deleted"
	AssertSameDomain      = "same_domain"
	AssertDistinctDomains = "distinct_domains"
	AssertMulti           = "multi"
	AssertPruned          = "pruned"
	AssertCanonSize       = "canon_size"
	AssertStored          = "stored"
)

// LoadScenario reads and parses a scenario YAML file, resolving the graph
// path relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the graph path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Graph != "" && !filepath.IsAbs(scenario.Graph) && basePath != "" {
		scenario.Graph = filepath.Join(basePath, scenario.Graph)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// graphSpec returns the description the scenario runs over.
func (s *Scenario) graphSpec() (*compiler.GraphSpec, error) {
	if s.Inline != nil {
		return s.Inline, nil
	}
	return compiler.LoadFile(s.Graph)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Graph == "" && s.Inline == nil:
		return fmt.Errorf("graph or inline is required")
	case s.Graph != "" && s.Inline != nil:
		return fmt.Errorf("graph and inline are mutually exclusive")
	}

	if s.Graph != "" {
		if _, err := os.Stat(s.Graph); os.IsNotExist(err) {
			return fmt.Errorf("graph file not found: %s", s.Graph)
		}
	}

	if s.ExpectError == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertDomain:
		if a.Vertex == "" {
			return fmt.Errorf("assertions[%d]: vertex is required for domain", index)
		}
		if _, ok := a.Expect.(string); !ok {
			return fmt.Errorf("assertions[%d]: expect must be a trigger set string for domain", index)
		}
	case AssertDeleted, AssertMulti:
		if a.Vertex == "" {
			return fmt.Errorf("assertions[%d]: vertex is required for %s", index, a.Type)
		}
	case AssertSameDomain, AssertDistinctDomains:
		if len(a.Vertices) < 2 {
			return fmt.Errorf("assertions[%d]: at least two vertices are required for %s", index, a.Type)
		}
	case AssertPruned:
		if a.Logic == nil {
			return fmt.Errorf("assertions[%d]: logic list is required for pruned (use [] for none)", index)
		}
	case AssertCanonSize:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for canon_size", index)
		}
	case AssertStored:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for stored", index)
		}
		if m, ok := a.Expect.(map[string]any); !ok || len(m) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for stored", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
