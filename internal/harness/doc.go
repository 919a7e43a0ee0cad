// Package harness runs normalization scenarios against a fresh graph store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scalar_prefixes
//	description: "Scheme and resolver prefixes are stripped"
//	dry_run: false
//	nodes:
//	  - labels: [Dataset]
//	    properties: { doi: "doi:10.1000/xyz" }
//	  - raw: '{"doi": 2.5}'
//	expect:
//	  error: scan_fault
//	  report: { nodes_updated: 1 }
//	  nodes:
//	    - { doi: "10.1000/xyz" }
//
// Each node is seeded in order, so the n-th entry gets id n. A node given as
// raw is inserted with that text as its stored property map, which lets a
// scenario hold data the property codec rejects.
//
// # Expectations
//
//   - error: "" (the pass succeeds), "scan_fault", or "error" for any other failure
//   - report: subset match on the report's counters, keyed by their JSON names
//   - nodes: subset match on each node's final properties, in seed order
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run id (testutil.RunID) and a step clock
// (testutil.StepClock), and the final store is rendered as canonical JSON, so
// identical scenarios produce byte-identical snapshots for golden comparison.
package harness
