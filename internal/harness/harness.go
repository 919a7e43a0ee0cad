package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rdswitchboard/doinorm/internal/graph"
	"github.com/rdswitchboard/doinorm/internal/normalize"
	"github.com/rdswitchboard/doinorm/internal/prop"
	"github.com/rdswitchboard/doinorm/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh store under a temporary directory that is
// removed afterwards. The returned error covers harness failures (the store
// could not be created or seeded); a failing pass is recorded in the result.
//
// Execution flow:
//  1. Create a store with the default config
//  2. Seed nodes in order
//  3. Run one normalization pass with a fixed run id and step clock
//  4. Snapshot every node and check the expectations
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "doinorm-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if _, err := graph.Init(dir); err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}
	st, err := graph.Open(dir, graph.ReadWrite)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := seed(ctx, st, scenario.Nodes); err != nil {
		return nil, err
	}

	pass := normalize.New(normalize.Options{
		DryRun: scenario.DryRun,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		RunID:  testutil.RunID(scenario.Name),
		Now:    testutil.NewStepClock(time.Millisecond).Now,
	})

	result := NewResult()
	result.Report, result.Err = pass.Run(ctx, normalize.FromGraph(st))

	result.Nodes, err = snapshot(ctx, st)
	if err != nil {
		return nil, err
	}

	check(scenario.Expect, result)
	return result, nil
}

// seed creates the scenario's nodes in order.
func seed(ctx context.Context, st *graph.Store, nodes []NodeSeed) error {
	for i, n := range nodes {
		if n.Raw != "" {
			if err := insertRaw(ctx, st, n.Labels, n.Raw); err != nil {
				return fmt.Errorf("nodes[%d]: %w", i, err)
			}
			continue
		}

		props := prop.Object{}
		for k, v := range n.Properties {
			pv, err := prop.FromAny(v)
			if err != nil {
				return fmt.Errorf("nodes[%d].properties[%q]: %w", i, k, err)
			}
			props[k] = pv
		}
		if _, err := st.CreateNode(ctx, n.Labels, props); err != nil {
			return fmt.Errorf("nodes[%d]: %w", i, err)
		}
	}
	return nil
}

// insertRaw stores props verbatim, bypassing the property codec.
func insertRaw(ctx context.Context, st *graph.Store, labels []string, props string) error {
	if labels == nil {
		labels = []string{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}
	_, err = st.DB().ExecContext(ctx, `
		INSERT INTO nodes (labels, properties) VALUES (?, ?)
	`, string(labelsJSON), props)
	if err != nil {
		return fmt.Errorf("insert raw node: %w", err)
	}
	return nil
}

// snapshot reads every node back from the store.
func snapshot(ctx context.Context, st *graph.Store) ([]NodeState, error) {
	var nodes []NodeState
	err := st.AllNodes(ctx, func(n *graph.Node) error {
		state := NodeState{ID: n.ID(), Labels: n.Labels()}
		props, err := n.Properties()
		if err != nil {
			state.Raw = n.RawProperties()
		} else {
			state.Properties = props
		}
		nodes = append(nodes, state)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot store: %w", err)
	}
	return nodes, nil
}

// failureClass maps a pass error to an Expectation.Error value.
func failureClass(err error) string {
	if err == nil {
		return ""
	}
	var fault *normalize.ScanFault
	if errors.As(err, &fault) {
		return ErrorScanFault
	}
	return ErrorOther
}
