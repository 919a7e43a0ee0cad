package normalize

import (
	"context"

	"github.com/rdswitchboard/doinorm/internal/graph"
	"github.com/rdswitchboard/doinorm/internal/prop"
)

// Node is the part of a stored node the pass needs.
type Node interface {
	ID() int64
	Property(name string) (prop.Value, bool, error)
	SetProperty(ctx context.Context, name string, value prop.Value) error
}

// Tx enumerates nodes and finalizes their writes.
type Tx interface {
	Nodes(ctx context.Context, fn func(Node) error) error
	Commit() error
	Rollback() error
}

// Store begins transactions.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// FromGraph adapts a graph store to Store.
func FromGraph(s *graph.Store) Store {
	return graphStore{s: s}
}

type graphStore struct {
	s *graph.Store
}

func (g graphStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := g.s.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return graphTx{tx: tx}, nil
}

type graphTx struct {
	tx *graph.Tx
}

func (t graphTx) Nodes(ctx context.Context, fn func(Node) error) error {
	return t.tx.Nodes(ctx, func(n *graph.Node) error { return fn(n) })
}

func (t graphTx) Commit() error   { return t.tx.Commit() }
func (t graphTx) Rollback() error { return t.tx.Rollback() }
