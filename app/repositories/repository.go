package repositories

import (
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore owns an embedded Badger database and hands out the
// repositories that share it.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// OpenBadger opens the database at path. An empty path opens an in-memory
// database, which is what the tests use. logger may be nil to silence badger.
func OpenBadger(path string, logger badger.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(logger).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerStore{db: db, path: path}, nil
}

// DB exposes the underlying database.
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

// Path is the on-disk location, empty for in-memory stores.
func (s *BadgerStore) Path() string {
	return s.path
}

func (s *BadgerStore) Posts() *BadgerPostRepository {
	return NewBadgerPostRepository(s.db)
}

func (s *BadgerStore) Comments() *BadgerCommentRepository {
	return NewBadgerCommentRepository(s.db)
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Clear drops every key, sequences included.
func (s *BadgerStore) Clear() error {
	if err := s.db.DropAll(); err != nil {
		return wrapBadger("store.clear", err)
	}
	return nil
}

// Backup writes a full backup to w and returns the version it covers.
func (s *BadgerStore) Backup(w io.Writer) (uint64, error) {
	version, err := s.db.Backup(w, 0)
	if err != nil {
		return 0, wrapBadger("store.backup", err)
	}
	return version, nil
}

// Restore loads a backup produced by Backup.
func (s *BadgerStore) Restore(r io.Reader) error {
	if err := s.db.Load(r, 256); err != nil {
		return wrapBadger("store.restore", err)
	}
	return nil
}
