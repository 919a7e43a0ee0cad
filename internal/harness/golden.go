package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/rdswitchboard/doinorm/internal/prop"
)

// Snapshot renders a scenario result as canonical JSON.
//
// The snapshot holds the pass state, its counters, the failure class and
// every node's final labels and properties. Run ids and durations are left
// out so snapshots only change when behavior does.
func Snapshot(name string, result *Result) ([]byte, error) {
	counters := prop.Object{}
	for k, v := range reportCounters(result.Report) {
		counters[k] = prop.Int(v)
	}
	counters["state"] = prop.String(result.Report.State.String())
	counters["dry_run"] = prop.Bool(result.Report.DryRun)

	nodes := make(prop.Array, len(result.Nodes))
	for i, n := range result.Nodes {
		node := prop.Object{
			"id":     prop.Int(n.ID),
			"labels": prop.Strings(n.Labels...),
		}
		if n.Properties != nil {
			node["properties"] = n.Properties
		} else {
			node["raw"] = prop.String(n.Raw)
		}
		nodes[i] = node
	}

	snap := prop.Object{
		"scenario": prop.String(name),
		"report":   counters,
		"nodes":    nodes,
	}
	if class := failureClass(result.Err); class != "" {
		snap["error"] = prop.String(class)
	}
	return prop.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check expectations. Test failure
// (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snap, err := Snapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snap)

	return result, nil
}
