package wishlist

import "sync"

// File is a wishlist that opens the database only for the duration of each
// operation, so other processes (the wishlist commands) can use the same
// file while a File is held. It is safe for concurrent use.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a File for the database at path. Nothing is opened until
// the first operation.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the database path.
func (f *File) Path() string { return f.path }

// List returns all saved identifiers in insertion order.
func (f *File) List() ([]int, error) {
	var ids []int
	err := f.with(func(s *Store) error {
		var err error
		ids, err = s.List()
		return err
	})
	return ids, err
}

// Contains reports whether id is saved.
func (f *File) Contains(id int) (bool, error) {
	return f.apply(func(s *Store) (bool, error) { return s.Contains(id) })
}

// Add saves id and reports whether the list changed.
func (f *File) Add(id int) (bool, error) {
	if id <= 0 {
		return false, ErrInvalidID
	}
	return f.apply(func(s *Store) (bool, error) { return s.Add(id) })
}

// Remove deletes id and reports whether the list changed.
func (f *File) Remove(id int) (bool, error) {
	return f.apply(func(s *Store) (bool, error) { return s.Remove(id) })
}

// Toggle adds id when absent and removes it when present. It returns whether
// id is saved afterwards.
func (f *File) Toggle(id int) (bool, error) {
	if id <= 0 {
		return false, ErrInvalidID
	}
	return f.apply(func(s *Store) (bool, error) { return s.Toggle(id) })
}

func (f *File) apply(fn func(*Store) (bool, error)) (bool, error) {
	var result bool
	err := f.with(func(s *Store) error {
		var err error
		result, err = fn(s)
		return err
	})
	return result, err
}

func (f *File) with(fn func(*Store) error) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := Open(f.path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}
