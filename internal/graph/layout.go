package graph

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Paths inside a store directory.
const (
	ConfPath = "conf/graph.yaml"
	DataPath = "data/databases/graph.db"
)

// StoreLayoutError reports a directory that is not a valid store.
// No database connection has been made when this is returned.
type StoreLayoutError struct {
	Dir    string
	Reason string
}

func (e *StoreLayoutError) Error() string {
	if e.Dir == "" {
		return fmt.Sprintf("invalid store layout: %s", e.Reason)
	}
	return fmt.Sprintf("the %s folder is not a valid graph store: %s", e.Dir, e.Reason)
}

// StoreOpenError reports a store with a valid layout that failed to open:
// locked, corrupt, unreadable, or written by a newer schema.
type StoreOpenError struct {
	Dir string
	Err error
}

func (e *StoreOpenError) Error() string {
	return fmt.Sprintf("unable to open graph store at %s: %v", e.Dir, e.Err)
}

func (e *StoreOpenError) Unwrap() error {
	return e.Err
}

// Layout holds the resolved file paths of a store directory.
type Layout struct {
	Dir  string
	Conf string
	Data string
}

// ResolveLayout checks that dir looks like a store and returns its paths.
//
// The config file must exist and be a regular file. The data directory is
// created when missing; an existing data path that is not a regular file is
// rejected.
func ResolveLayout(dir string) (Layout, error) {
	if dir == "" {
		return Layout{}, &StoreLayoutError{Reason: "please provide the path to an existing graph store"}
	}

	l := Layout{
		Dir:  dir,
		Conf: filepath.Join(dir, filepath.FromSlash(ConfPath)),
		Data: filepath.Join(dir, filepath.FromSlash(DataPath)),
	}

	info, err := os.Stat(l.Conf)
	if errors.Is(err, os.ErrNotExist) {
		return Layout{}, &StoreLayoutError{Dir: dir, Reason: fmt.Sprintf("missing %s", ConfPath)}
	}
	if err != nil {
		return Layout{}, &StoreLayoutError{Dir: dir, Reason: err.Error()}
	}
	if info.IsDir() {
		return Layout{}, &StoreLayoutError{Dir: dir, Reason: fmt.Sprintf("%s is a directory", ConfPath)}
	}

	info, err = os.Stat(l.Data)
	switch {
	case err == nil && !info.Mode().IsRegular():
		return Layout{}, &StoreLayoutError{Dir: dir, Reason: fmt.Sprintf("%s is not a regular file", DataPath)}
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return Layout{}, &StoreLayoutError{Dir: dir, Reason: err.Error()}
	}

	return l, nil
}

// ensureDataDir creates the parent directories of the data file.
func (l Layout) ensureDataDir() error {
	if err := os.MkdirAll(filepath.Dir(l.Data), 0o755); err != nil {
		return &StoreLayoutError{Dir: l.Dir, Reason: err.Error()}
	}
	return nil
}

// Init creates an empty store layout at dir with a default config file.
// Existing files are left untouched.
func Init(dir string) (Layout, error) {
	conf := filepath.Join(dir, filepath.FromSlash(ConfPath))
	if err := os.MkdirAll(filepath.Dir(conf), 0o755); err != nil {
		return Layout{}, fmt.Errorf("init store: %w", err)
	}
	if _, err := os.Stat(conf); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(conf, []byte(defaultConfigYAML), 0o644); err != nil {
			return Layout{}, fmt.Errorf("init store: write config: %w", err)
		}
	}
	l, err := ResolveLayout(dir)
	if err != nil {
		return Layout{}, err
	}
	return l, l.ensureDataDir()
}
