package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rdswitchboard/doinorm/internal/prop"
)

// ErrNoTransaction is returned when a node read outside a transaction is
// written to.
var ErrNoTransaction = errors.New("node was not read inside a transaction")

// Node is a handle on one stored node.
//
// Properties are decoded on first access, and only the property asked for,
// so a node with an unreadable property map still enumerates and the error
// surfaces where it is read.
type Node struct {
	id     int64
	labels []string
	raw    string
	fields *storedFields
	tx     *Tx
}

// ID returns the node's identity.
func (n *Node) ID() int64 {
	return n.id
}

// Labels returns the node's labels.
func (n *Node) Labels() []string {
	return n.labels
}

// RawProperties returns the property map as stored, before decoding.
func (n *Node) RawProperties() string {
	return n.raw
}

func (n *Node) storedFields() (*storedFields, error) {
	if n.fields == nil {
		f, err := indexFields([]byte(n.raw))
		if err != nil {
			return nil, err
		}
		n.fields = f
	}
	return n.fields, nil
}

// Properties decodes the whole property map.
func (n *Node) Properties() (prop.Object, error) {
	f, err := n.storedFields()
	if err != nil {
		return nil, err
	}
	props := make(prop.Object, len(f.values))
	for name, raw := range f.values {
		v, err := prop.DecodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("decode property %q: %w", name, err)
		}
		props[name] = v
	}
	return props, nil
}

// HasProperty reports whether the node carries name.
func (n *Node) HasProperty(name string) (bool, error) {
	f, err := n.storedFields()
	if err != nil {
		return false, err
	}
	_, ok := f.values[name]
	return ok, nil
}

// Property decodes the value stored under name and reports whether it
// exists. Other properties are not decoded.
func (n *Node) Property(name string) (prop.Value, bool, error) {
	f, err := n.storedFields()
	if err != nil {
		return nil, false, err
	}
	raw, ok := f.values[name]
	if !ok {
		return nil, false, nil
	}
	v, err := prop.DecodeValue(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode property %q: %w", name, err)
	}
	return v, true, nil
}

// SetProperty writes value under name within the node's transaction.
// Only the bytes of that one property change; every other property keeps
// its stored text.
func (n *Node) SetProperty(ctx context.Context, name string, value prop.Value) error {
	if n.tx == nil {
		return ErrNoTransaction
	}

	f, err := n.storedFields()
	if err != nil {
		return err
	}

	data, err := prop.MarshalCanonical(value)
	if err != nil {
		return fmt.Errorf("set property %q: %w", name, err)
	}

	updated, err := f.replace([]byte(n.raw), name, data)
	if err != nil {
		return fmt.Errorf("set property %q: %w", name, err)
	}

	if err := n.tx.updateProperties(ctx, n.id, string(updated)); err != nil {
		return fmt.Errorf("set property %q: %w", name, err)
	}

	n.raw = string(updated)
	n.fields = nil
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// scanNodes walks all nodes in id order, one page at a time. Each page is
// read fully and its rows closed before fn sees any node of it.
func scanNodes(ctx context.Context, q querier, pageSize int, tx *Tx, fn func(*Node) error) error {
	if pageSize <= 0 {
		pageSize = DefaultConfig().PageSize
	}

	var after int64
	for {
		page, err := readPage(ctx, q, after, pageSize)
		if err != nil {
			return err
		}
		for _, n := range page {
			n.tx = tx
			if err := fn(n); err != nil {
				return err
			}
		}
		if len(page) < pageSize {
			return nil
		}
		after = page[len(page)-1].id
	}
}

func readPage(ctx context.Context, q querier, after int64, limit int) ([]*Node, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, labels, properties
		FROM nodes
		WHERE id > ?
		ORDER BY id ASC
		LIMIT ?
	`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var page []*Node
	for rows.Next() {
		var (
			n      Node
			labels string
		)
		if err := rows.Scan(&n.id, &labels, &n.raw); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		if err := json.Unmarshal([]byte(labels), &n.labels); err != nil {
			return nil, fmt.Errorf("node %d: decode labels: %w", n.id, err)
		}
		page = append(page, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return page, nil
}
