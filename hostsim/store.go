package hostsim

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	ErrNotTransaction    = errors.New("store is not a transaction")
	ErrNestedTransaction = errors.New("transaction already open on this store")
)

// kv is the part of LevelDB shared by the database and its transactions.
type kv interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	Put(key, value []byte, wo *opt.WriteOptions) error
	Delete(key []byte, wo *opt.WriteOptions) error
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

var (
	_ kv = (*leveldb.DB)(nil)
	_ kv = (*leveldb.Transaction)(nil)
)

// Store wraps LevelDB for the simulated host ledger. A Store returned by
// OpenTransaction reads and writes the uncommitted transaction until it is
// committed or discarded.
type Store struct {
	db *leveldb.DB
	tx *leveldb.Transaction
}

// OpenStore opens or creates a LevelDB database at the given path.
// If path is empty, uses in-memory storage.
func OpenStore(path string) (*Store, error) {
	var db *leveldb.DB
	var err error

	if path == "" {
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) rw() kv {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Get retrieves a value by key. Returns (nil, false, nil) if not found.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	data, err := s.rw().Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Get %x: %w", key, err)
	}
	return data, true, nil
}

func (s *Store) Put(key []byte, value []byte) error {
	if err := s.rw().Put(key, value, nil); err != nil {
		return fmt.Errorf("Put %x: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key []byte) error {
	if err := s.rw().Delete(key, nil); err != nil {
		return fmt.Errorf("Delete %x: %w", key, err)
	}
	return nil
}

// GetWithPrefix returns all key-value pairs with the given prefix in key order.
func (s *Store) GetWithPrefix(prefix []byte) ([][2][]byte, error) {
	iter := s.rw().NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var results [][2][]byte
	for iter.Next() {
		// Copy key and value to avoid iterator reuse issues
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		results = append(results, [2][]byte{key, value})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("GetWithPrefix %x: %w", prefix, err)
	}
	return results, nil
}

// OpenTransaction starts the only write transaction the database allows at
// a time. Writes outside it block until it is committed or discarded.
func (s *Store) OpenTransaction() (*Store, error) {
	if s.tx != nil {
		return nil, ErrNestedTransaction
	}
	tx, err := s.db.OpenTransaction()
	if err != nil {
		return nil, fmt.Errorf("opening transaction: %w", err)
	}
	return &Store{db: s.db, tx: tx}, nil
}

func (s *Store) Commit() error {
	if s.tx == nil {
		return ErrNotTransaction
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Discard drops the writes of a transaction. It is a no-op after Commit.
func (s *Store) Discard() {
	if s.tx != nil {
		s.tx.Discard()
	}
}

// Close discards an open transaction, or closes the database.
func (s *Store) Close() error {
	if s.tx != nil {
		s.tx.Discard()
		return nil
	}
	return s.db.Close()
}
