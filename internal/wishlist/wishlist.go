// Package wishlist persists the user's saved book identifiers.
//
// The list lives under a single key ("wishlist") in a local key-value file,
// encoded as a JSON array of numbers, e.g. [1342,84,11]. Order is insertion
// order and identifiers never repeat. A missing key reads as an empty list; a
// value that does not decode is reported rather than overwritten.
package wishlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// Key is the storage key holding the encoded identifier list.
	Key = "wishlist"

	bucketName  = "localStorage"
	openTimeout = time.Second
)

var (
	// ErrInvalidID is returned for identifiers that are not positive.
	ErrInvalidID = errors.New("wishlist: book id must be positive")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("wishlist: store is closed")
)

// Store is a wishlist backed by a bbolt file. It is safe for concurrent use.
type Store struct {
	mu sync.Mutex
	db *bolt.DB
}

// Open opens (creating if needed) the wishlist database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create wishlist dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("open wishlist db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init wishlist bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// List returns all saved identifiers in insertion order.
func (s *Store) List() ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	var ids []int
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		ids, err = decode(tx.Bucket([]byte(bucketName)).Get([]byte(Key)))
		return err
	})
	return ids, err
}

// Contains reports whether id is saved.
func (s *Store) Contains(id int) (bool, error) {
	ids, err := s.List()
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

// Add saves id. Adding an id that is already present is a no-op.
// It reports whether the list changed.
func (s *Store) Add(id int) (bool, error) {
	if id <= 0 {
		return false, ErrInvalidID
	}
	return s.mutate(func(ids []int) ([]int, bool) {
		if slices.Contains(ids, id) {
			return ids, false
		}
		return append(ids, id), true
	})
}

// Remove deletes id. It reports whether the list changed.
func (s *Store) Remove(id int) (bool, error) {
	return s.mutate(func(ids []int) ([]int, bool) {
		idx := slices.Index(ids, id)
		if idx < 0 {
			return ids, false
		}
		return slices.Delete(ids, idx, idx+1), true
	})
}

// Toggle adds id when absent and removes it when present. It returns whether
// id is saved afterwards.
func (s *Store) Toggle(id int) (bool, error) {
	if id <= 0 {
		return false, ErrInvalidID
	}
	var saved bool
	_, err := s.mutate(func(ids []int) ([]int, bool) {
		if idx := slices.Index(ids, id); idx >= 0 {
			saved = false
			return slices.Delete(ids, idx, idx+1), true
		}
		saved = true
		return append(ids, id), true
	})
	return saved, err
}

func (s *Store) mutate(fn func([]int) ([]int, bool)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return false, ErrClosed
	}

	var changed bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		ids, err := decode(b.Get([]byte(Key)))
		if err != nil {
			return err
		}
		ids, changed = fn(ids)
		if !changed {
			return nil
		}
		raw, err := encode(ids)
		if err != nil {
			return err
		}
		return b.Put([]byte(Key), raw)
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func decode(raw []byte) ([]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode wishlist: %w", err)
	}
	return ids, nil
}

func encode(ids []int) ([]byte, error) {
	if ids == nil {
		ids = []int{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode wishlist: %w", err)
	}
	return raw, nil
}
