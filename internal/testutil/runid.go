package testutil

// DefaultRunID is used when a test names no run.
const DefaultRunID = "test-run-default"

// RunID returns a stable run id for name, for logs and golden snapshots.
func RunID(name string) string {
	if name == "" {
		return DefaultRunID
	}
	return "test-run-" + name
}
