// Package graph provides an embedded, SQLite-backed property graph store.
//
// A store lives in a directory with a fixed layout:
//
//	<dir>/conf/graph.yaml             store configuration (required, may be empty)
//	<dir>/data/databases/graph.db     node storage
//
// Nodes are rows with an integer identity, a JSON label list and a JSON
// property map (see internal/prop). The store never interprets property
// values; callers read and write them through Node handles. A write replaces
// the bytes of one property and leaves the rest of the stored text as is.
//
// # Transactions
//
// All writes happen inside a Tx. Node enumeration inside a transaction is
// keyset-paginated (ORDER BY id ASC) so no cursor stays open while the caller
// writes. A Tx that is not committed leaves the store unchanged.
//
// # Database Configuration
//
//   - WAL mode (read-write opens only)
//   - synchronous from conf/graph.yaml, NORMAL by default
//   - busy_timeout from conf/graph.yaml, 5000ms by default
//   - a single connection, so a transaction and its reads share one writer
//
// Read-only opens use SQLite's mode=ro and query_only, and require the node
// table to already exist.
package graph
