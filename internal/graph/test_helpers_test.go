package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rdswitchboard/doinorm/internal/prop"
)

// createTestDir lays out an empty store directory and returns its path.
func createTestDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "graph")
	if _, err := Init(dir); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	return dir
}

// createTestStore opens a fresh read-write store.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(createTestDir(t), ReadWrite)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// writeConfig replaces the store's config file.
func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(ConfPath))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// mustCreateNode inserts a node with the given properties.
func mustCreateNode(t *testing.T, s *Store, props prop.Object) int64 {
	t.Helper()
	id, err := s.CreateNode(context.Background(), []string{"Publication"}, props)
	if err != nil {
		t.Fatalf("CreateNode() failed: %v", err)
	}
	return id
}

// countNodes returns the number of stored nodes.
func (s *Store) countNodes(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return n, nil
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// insertRawNode stores props verbatim and returns the new node's id.
func insertRawNode(t *testing.T, s *Store, props string) int64 {
	t.Helper()
	res, err := s.DB().Exec(`INSERT INTO nodes (labels, properties) VALUES ('[]', ?)`, props)
	if err != nil {
		t.Fatalf("insert raw node: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insert raw node: %v", err)
	}
	return id
}
