package graph

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - nodes table
const currentSchemaVersion = 1

// Mode selects how a store is opened.
type Mode int

const (
	ReadWrite Mode = iota
	ReadOnly
)

func (m Mode) String() string {
	if m == ReadOnly {
		return "read-only"
	}
	return "read-write"
}

// Store is an open graph store.
type Store struct {
	db     *sql.DB
	layout Layout
	config Config
	mode   Mode
}

// Open validates the layout at dir, loads its config and opens the node
// database.
//
// Layout and config problems are returned as *StoreLayoutError; failures of
// the database itself as *StoreOpenError. A config with read_only: true
// forces ReadOnly.
func Open(dir string, mode Mode) (*Store, error) {
	layout, err := ResolveLayout(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(layout.Conf)
	if err != nil {
		return nil, &StoreLayoutError{Dir: dir, Reason: err.Error()}
	}
	if cfg.ReadOnly {
		mode = ReadOnly
	}

	if mode == ReadWrite {
		if err := layout.ensureDataDir(); err != nil {
			return nil, err
		}
	}

	db, err := openDB(layout.Data, mode, cfg)
	if err != nil {
		return nil, &StoreOpenError{Dir: dir, Err: err}
	}

	return &Store{db: db, layout: layout, config: cfg, mode: mode}, nil
}

func openDB(path string, mode Mode, cfg Config) (*sql.DB, error) {
	dsn := path
	if mode == ReadOnly {
		dsn = (&url.URL{Scheme: "file", Opaque: path, RawQuery: "mode=ro"}).String()
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: the scan and the writes of a transaction share it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, mode, cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if mode == ReadOnly {
		err = checkSchema(db)
	} else {
		err = applySchema(db)
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection. Safe to call on a closed store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Layout returns the resolved store paths.
func (s *Store) Layout() Layout {
	return s.layout
}

// Config returns the loaded store configuration.
func (s *Store) Config() Config {
	return s.config
}

// Mode returns the mode the store was opened in.
func (s *Store) Mode() Mode {
	return s.mode
}

func applyPragmas(db *sql.DB, mode Mode, cfg Config) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeoutMS),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.Synchronous),
	}
	if mode == ReadOnly {
		pragmas = append(pragmas, "PRAGMA query_only = ON")
	} else {
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	if err := checkVersion(db); err != nil {
		return err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// checkSchema verifies a read-only database already holds a node table.
func checkSchema(db *sql.DB) error {
	if err := checkVersion(db); err != nil {
		return err
	}
	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'nodes'",
	).Scan(&name)
	if err == sql.ErrNoRows {
		return fmt.Errorf("database has no nodes table")
	}
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	return nil
}

func checkVersion(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	return nil
}
