package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rdswitchboard/doinorm/internal/prop"
)

// AllNodes calls fn for every stored node in ascending id order, outside
// any transaction. The nodes are read-only.
func (s *Store) AllNodes(ctx context.Context, fn func(*Node) error) error {
	return scanNodes(ctx, s.db, s.config.PageSize, nil, fn)
}

// ReadNode retrieves a single node by id, outside any transaction.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadNode(ctx context.Context, id int64) (*Node, error) {
	var (
		n      = Node{id: id}
		labels string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT labels, properties FROM nodes WHERE id = ?
	`, id).Scan(&labels, &n.raw)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("read node %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(labels), &n.labels); err != nil {
		return nil, fmt.Errorf("node %d: decode labels: %w", id, err)
	}
	return &n, nil
}

// CreateNode inserts a node and returns its id. Used to load fixtures; the
// normalization pass never creates nodes.
func (s *Store) CreateNode(ctx context.Context, labels []string, props prop.Object) (int64, error) {
	if labels == nil {
		labels = []string{}
	}
	if props == nil {
		props = prop.Object{}
	}

	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return 0, fmt.Errorf("create node: marshal labels: %w", err)
	}
	propsJSON, err := prop.MarshalCanonical(props)
	if err != nil {
		return 0, fmt.Errorf("create node: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO nodes (labels, properties) VALUES (?, ?)
	`, string(labelsJSON), string(propsJSON))
	if err != nil {
		return 0, fmt.Errorf("create node: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create node: last insert id: %w", err)
	}
	return id, nil
}
