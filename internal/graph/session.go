package graph

import "sync"

// Session owns an open store for the lifetime of one process run.
// Release closes the store exactly once, however many paths call it.
type Session struct {
	store *Store
	once  sync.Once
	err   error
}

// OpenSession opens the store at dir and wraps it in a Session.
func OpenSession(dir string, mode Mode) (*Session, error) {
	st, err := Open(dir, mode)
	if err != nil {
		return nil, err
	}
	return &Session{store: st}, nil
}

// Store returns the session's store.
func (s *Session) Store() *Store {
	return s.store
}

// Release closes the store. Later calls return the first call's result.
func (s *Session) Release() error {
	s.once.Do(func() {
		s.err = s.store.Close()
	})
	return s.err
}
