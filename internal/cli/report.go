package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rdswitchboard/doinorm/internal/normalize"
)

// reportView renders a pass report for text output.
type reportView struct {
	Store  string           `json:"store"`
	Report normalize.Report `json:"report"`
}

func (v reportView) String() string {
	r := v.Report

	var b strings.Builder
	switch {
	case r.DryRun:
		fmt.Fprintf(&b, "Dry run of %s complete, no changes written (run %s)\n", v.Store, r.RunID)
	case r.State == normalize.Committed:
		fmt.Fprintf(&b, "Normalized DOIs in %s (run %s)\n", v.Store, r.RunID)
	default:
		fmt.Fprintf(&b, "Pass over %s ended in state %s (run %s)\n", v.Store, r.State, r.RunID)
	}

	verb := "updated"
	if r.DryRun {
		verb = "would update"
	}

	rows := []struct {
		label string
		value int
	}{
		{"nodes scanned", r.Scanned},
		{"nodes with doi", r.WithDOI},
		{"  scalar", r.Scalars},
		{"  array", r.Arrays},
		{"  other (skipped)", r.Other},
		{"nodes " + verb, r.Updated},
		{"values without a doi", r.Unmatched},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "  %-22s %d\n", row.label+":", row.value)
	}
	fmt.Fprintf(&b, "  %-22s %s", "duration:", r.Duration.Round(time.Millisecond))
	return b.String()
}
