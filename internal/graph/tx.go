package graph

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx is a store transaction. Writes made through nodes enumerated by the
// transaction become durable on Commit and are discarded on Rollback or if
// the transaction is never committed.
type Tx struct {
	tx       *sql.Tx
	pageSize int
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, pageSize: s.config.PageSize}, nil
}

// Nodes calls fn for every stored node in ascending id order. Nodes passed
// to fn can be written with SetProperty. The first error from fn stops the
// scan and is returned unchanged.
func (t *Tx) Nodes(ctx context.Context, fn func(*Node) error) error {
	return scanNodes(ctx, t.tx, t.pageSize, t, fn)
}

// Commit makes the transaction's writes durable.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the transaction's writes. It returns sql.ErrTxDone
// after Commit or a previous Rollback.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

func (t *Tx) updateProperties(ctx context.Context, id int64, data string) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE nodes SET properties = ? WHERE id = ?`, data, id)
	if err != nil {
		return fmt.Errorf("update node: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("update node: %d rows affected", n)
	}
	return nil
}
