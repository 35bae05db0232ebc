package wishlist

import (
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	bolt "go.etcd.io/bbolt"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "folio.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStore_EmptyByDefault(t *testing.T) {
	s, _ := openTemp(t)
	ids, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("List = %v, want empty", ids)
	}
}

func TestStore_AddIgnoresDuplicatesAndKeepsOrder(t *testing.T) {
	s, _ := openTemp(t)

	for _, id := range []int{1342, 84, 1342, 11} {
		if _, err := s.Add(id); err != nil {
			t.Fatalf("Add(%d): %v", id, err)
		}
	}
	changed, err := s.Add(84)
	if err != nil {
		t.Fatalf("Add(84): %v", err)
	}
	if changed {
		t.Fatalf("Add(84) changed = true, want false for duplicate")
	}

	ids, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !slices.Equal(ids, []int{1342, 84, 11}) {
		t.Fatalf("List = %v, want [1342 84 11]", ids)
	}
}

func TestStore_RejectsNonPositiveIDs(t *testing.T) {
	s, _ := openTemp(t)
	if _, err := s.Add(0); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("Add(0) error = %v, want ErrInvalidID", err)
	}
	if _, err := s.Toggle(-2); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("Toggle(-2) error = %v, want ErrInvalidID", err)
	}
}

func TestStore_RemoveAndContains(t *testing.T) {
	s, _ := openTemp(t)
	for _, id := range []int{1, 2, 3} {
		if _, err := s.Add(id); err != nil {
			t.Fatalf("Add(%d): %v", id, err)
		}
	}

	changed, err := s.Remove(2)
	if err != nil || !changed {
		t.Fatalf("Remove(2) = %v, %v; want true, nil", changed, err)
	}
	changed, err = s.Remove(2)
	if err != nil || changed {
		t.Fatalf("second Remove(2) = %v, %v; want false, nil", changed, err)
	}

	ok, err := s.Contains(2)
	if err != nil || ok {
		t.Fatalf("Contains(2) = %v, %v; want false, nil", ok, err)
	}
	ok, err = s.Contains(3)
	if err != nil || !ok {
		t.Fatalf("Contains(3) = %v, %v; want true, nil", ok, err)
	}
}

func TestStore_Toggle(t *testing.T) {
	s, _ := openTemp(t)

	saved, err := s.Toggle(98)
	if err != nil || !saved {
		t.Fatalf("Toggle(98) = %v, %v; want true, nil", saved, err)
	}
	saved, err = s.Toggle(98)
	if err != nil || saved {
		t.Fatalf("Toggle(98) again = %v, %v; want false, nil", saved, err)
	}
}

func TestStore_PersistsAcrossReopenAsJSON(t *testing.T) {
	s, path := openTemp(t)
	for _, id := range []int{5, 7} {
		if _, err := s.Add(id); err != nil {
			t.Fatalf("Add(%d): %v", id, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		t.Fatalf("bolt.Open: %v", err)
	}
	var raw string
	_ = db.View(func(tx *bolt.Tx) error {
		raw = string(tx.Bucket([]byte(bucketName)).Get([]byte(Key)))
		return nil
	})
	_ = db.Close()
	if raw != "[5,7]" {
		t.Fatalf("stored value = %q, want [5,7]", raw)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	ids, err := reopened.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !slices.Equal(ids, []int{5, 7}) {
		t.Fatalf("List after reopen = %v, want [5 7]", ids)
	}
}

func TestStore_CorruptValueIsReported(t *testing.T) {
	s, path := openTemp(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		t.Fatalf("bolt.Open: %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(Key), []byte("{not-json"))
	})
	_ = db.Close()
	if err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.List(); err == nil {
		t.Fatalf("List returned nil error, want decode error")
	}
	if _, err := reopened.Add(1); err == nil {
		t.Fatalf("Add returned nil error, want decode error")
	}
}

func TestStore_ClosedStoreErrors(t *testing.T) {
	s, _ := openTemp(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.List(); !errors.Is(err, ErrClosed) {
		t.Fatalf("List after Close error = %v, want ErrClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestStore_ConcurrentAddsAreAllKept(t *testing.T) {
	s, _ := openTemp(t)
	assertConcurrentAdds(t, s.Add, s.List)
}

func TestFile_ConcurrentAddsAreAllKept(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "folio.db"))
	assertConcurrentAdds(t, f.Add, f.List)
}

func assertConcurrentAdds(t *testing.T, add func(int) (bool, error), list func() ([]int, error)) {
	t.Helper()
	const n = 25

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := add(id); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Add: %v", err)
	}

	ids, err := list()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != n {
		t.Fatalf("List has %d ids, want %d: %v", len(ids), n, ids)
	}
	sorted := slices.Sorted(slices.Values(ids))
	for i, id := range sorted {
		if id != i+1 {
			t.Fatalf("ids = %v, want each of 1..%d exactly once", sorted, n)
		}
	}
}

func TestFile_DoesNotHoldDatabaseOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "folio.db")
	f := NewFile(path)
	if _, err := f.Add(1342); err != nil {
		t.Fatalf("File.Add: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open while File is live: %v", err)
	}
	if _, err := s.Add(84); err != nil {
		t.Fatalf("Store.Add: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	saved, err := f.Toggle(11)
	if err != nil || !saved {
		t.Fatalf("File.Toggle = %v, %v; want true, nil", saved, err)
	}
	ids, err := f.List()
	if err != nil {
		t.Fatalf("File.List: %v", err)
	}
	if !slices.Equal(ids, []int{1342, 84, 11}) {
		t.Fatalf("List = %v, want [1342 84 11]", ids)
	}
	if ok, err := f.Contains(84); err != nil || !ok {
		t.Fatalf("Contains(84) = %v, %v; want true, nil", ok, err)
	}
	if _, err := f.Add(0); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("Add(0) error = %v, want ErrInvalidID", err)
	}
}
