package normalize

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"github.com/rdswitchboard/doinorm/internal/prop"
)

// fakeNode is an in-memory node that counts writes.
type fakeNode struct {
	id      int64
	props   prop.Object
	readErr error
	setErr  error
	sets    int
}

func (n *fakeNode) ID() int64 { return n.id }

func (n *fakeNode) Property(name string) (prop.Value, bool, error) {
	if n.readErr != nil {
		return nil, false, n.readErr
	}
	v, ok := n.props[name]
	return v, ok, nil
}

func (n *fakeNode) SetProperty(_ context.Context, name string, value prop.Value) error {
	if n.setErr != nil {
		return n.setErr
	}
	n.sets++
	n.props[name] = value
	return nil
}

// fakeStore hands out a single fakeTx over its nodes.
type fakeStore struct {
	nodes    []Node
	beginErr error
	tx       *fakeTx
}

func (s *fakeStore) Begin(context.Context) (Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.tx = &fakeTx{nodes: s.nodes}
	return s.tx, nil
}

type fakeTx struct {
	nodes     []Node
	scanErr   error
	commitErr error
	commits   int
	rollbacks int
}

func (t *fakeTx) Nodes(_ context.Context, fn func(Node) error) error {
	if t.scanErr != nil {
		return t.scanErr
	}
	for _, n := range t.nodes {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

func (t *fakeTx) Commit() error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.commits > 0 {
		return errors.New("transaction already committed")
	}
	t.rollbacks++
	return nil
}

// mockNode records calls for spy assertions.
type mockNode struct {
	mock.Mock
}

func (m *mockNode) ID() int64 {
	return m.Called().Get(0).(int64)
}

func (m *mockNode) Property(name string) (prop.Value, bool, error) {
	args := m.Called(name)
	v, _ := args.Get(0).(prop.Value)
	return v, args.Bool(1), args.Error(2)
}

func (m *mockNode) SetProperty(ctx context.Context, name string, value prop.Value) error {
	return m.Called(ctx, name, value).Error(0)
}
