// Package harness provides conformance testing for the domain pass.
//
// A scenario names a graph description, runs the full pipeline over it
// (validate, build, assign domains, write the report, prune, record the run)
// and checks the outcome with declarative assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	graph: ../graphs/counter.yaml   # or an inline description under "inline:"
//	assertions:
//	  - type: domain
//	    vertex: cnt
//	    expect: "posedge clk or posedge rst"
//	  - type: deleted
//	    vertex: unused
//	  - type: pruned
//	    logic: [idle]
//	  - type: stored
//	    table: runs
//	    expect: { pruned: 1 }
//
// A scenario that sets expect_error passes when loading or running the graph
// fails with an error containing that text.
//
// # Assertion Types
//
//   - domain: the vertex has exactly the given trigger set
//   - deleted: the vertex can never be triggered
//   - same_domain: all listed vertices share one trigger set handle
//   - distinct_domains: no two listed vertices share a handle
//   - multi: the vertex domain was derived by merging sets
//   - pruned: exactly these logic blocks were removed, in order
//   - canon_size: the trigger-set table holds count sets
//   - stored: a row of the recorded run has the expected columns
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory store with a fixed run id
// and a stepping clock, so recorded runs and golden snapshots are identical
// across executions.
package harness
