package harness

import (
	"github.com/rdswitchboard/doinorm/internal/normalize"
	"github.com/rdswitchboard/doinorm/internal/prop"
)

// NodeState is one node as found in the store after the pass.
type NodeState struct {
	ID     int64
	Labels []string

	// Properties is nil when the stored map could not be decoded; Raw then
	// holds the stored text.
	Properties prop.Object
	Raw        string
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool

	// Report is the pass report, returned on success and failure alike.
	Report normalize.Report

	// Err is the error returned by the pass, if any.
	Err error

	// Nodes is the final store content in id order.
	Nodes []NodeState

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// reportCounterNames lists the report counters a scenario may check.
var reportCounterNames = reportCounters(normalize.Report{})

// reportCounters returns the report's counters keyed by their JSON names.
func reportCounters(r normalize.Report) map[string]int {
	return map[string]int{
		"nodes_scanned":    r.Scanned,
		"nodes_with_doi":   r.WithDOI,
		"scalar_values":    r.Scalars,
		"array_values":     r.Arrays,
		"other_values":     r.Other,
		"nodes_updated":    r.Updated,
		"unmatched_values": r.Unmatched,
	}
}
