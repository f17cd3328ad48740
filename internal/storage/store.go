package storage

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	// ErrNotConnected is returned before the connect stage has stored a handle.
	ErrNotConnected = errors.New("database not connected")
	// ErrAlreadyConnected is returned when a second handle is stored.
	ErrAlreadyConnected = errors.New("database already connected")
)

type handle struct {
	db Database
}

// Store holds the process-wide database handle. It is written once by the
// connect stage and read concurrently by request handlers.
type Store struct {
	current atomic.Pointer[handle]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set stores db. Only the first call succeeds.
func (s *Store) Set(db Database) error {
	if db == nil {
		return errors.New("nil database")
	}
	if !s.current.CompareAndSwap(nil, &handle{db: db}) {
		return ErrAlreadyConnected
	}
	return nil
}

// Database returns the stored handle.
func (s *Store) Database() (Database, error) {
	h := s.current.Load()
	if h == nil {
		return nil, ErrNotConnected
	}
	return h.db, nil
}

// Connected reports whether a handle has been stored.
func (s *Store) Connected() bool {
	return s.current.Load() != nil
}

// Ping checks the stored handle.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.Database()
	if err != nil {
		return err
	}
	return db.Ping(ctx)
}

// Close disconnects the stored handle, if any.
func (s *Store) Close(ctx context.Context) error {
	h := s.current.Load()
	if h == nil {
		return nil
	}
	return h.db.Close(ctx)
}
