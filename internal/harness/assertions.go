package harness

import (
	"fmt"
	"sort"

	"github.com/rdswitchboard/doinorm/internal/prop"
)

// check evaluates every expectation and records failures on result.
func check(expect Expectation, result *Result) {
	checkError(expect.Error, result)
	checkReport(expect.Report, result)
	checkNodes(expect.Nodes, result)
}

func checkError(want string, result *Result) {
	got := failureClass(result.Err)
	if got == want {
		return
	}
	if result.Err == nil {
		result.AddError(fmt.Sprintf("error: expected %q, pass succeeded", want))
		return
	}
	result.AddError(fmt.Sprintf("error: expected %q, got %q (%v)", want, got, result.Err))
}

func checkReport(want map[string]int, result *Result) {
	got := reportCounters(result.Report)

	// Sorted so failures are reported in a stable order.
	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if got[k] != want[k] {
			result.AddError(fmt.Sprintf("report.%s: expected %d, got %d", k, want[k], got[k]))
		}
	}
}

func checkNodes(want []map[string]any, result *Result) {
	for i, expected := range want {
		if i >= len(result.Nodes) {
			result.AddError(fmt.Sprintf("nodes[%d]: missing from store", i))
			continue
		}
		node := result.Nodes[i]
		if node.Properties == nil {
			result.AddError(fmt.Sprintf("nodes[%d]: properties unreadable: %s", i, node.Raw))
			continue
		}

		keys := make([]string, 0, len(expected))
		for k := range expected {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			wantValue, err := prop.FromAny(expected[k])
			if err != nil {
				result.AddError(fmt.Sprintf("nodes[%d].%s: invalid expected value: %v", i, k, err))
				continue
			}
			gotValue, ok := node.Properties[k]
			if !ok {
				result.AddError(fmt.Sprintf("nodes[%d].%s: missing", i, k))
				continue
			}
			if !prop.Equal(wantValue, gotValue) {
				result.AddError(fmt.Sprintf("nodes[%d].%s: expected %v, got %v", i, k, wantValue, gotValue))
			}
		}
	}
}
