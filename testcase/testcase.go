// Package testcase implements the file-per-case test-case output described
// in spec §6: each newly discovered input is named with a fresh UUID and
// deduplicated against every case already written this run by a
// content-addressed hash, so a solver that rediscovers the same input
// along a different path does not pile up duplicate files.
package testcase

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Store writes deduplicated test cases under a single output directory.
// It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	dir  string
	seen map[[32]byte]bool
}

// NewStore returns a Store that writes under dir, creating it on first
// write rather than eagerly.
func NewStore(dir string) *Store {
	return &Store{dir: dir, seen: make(map[[32]byte]bool)}
}

// Save writes bytes as a new test case file named with a fresh UUID, unless
// its content hash matches a case already saved by this Store, in which
// case it is silently skipped (created reports false). The returned path is
// empty when the case was a duplicate.
func (s *Store) Save(bytes []byte) (path string, created bool, err error) {
	h := blake2b.Sum256(bytes)

	s.mu.Lock()
	if s.seen[h] {
		s.mu.Unlock()
		return "", false, nil
	}
	s.seen[h] = true
	s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", false, fmt.Errorf("testcase: creating output dir %q: %w", s.dir, err)
	}
	id, err := uuid.NewRandomFromReader(rand.Reader)
	if err != nil {
		return "", false, fmt.Errorf("testcase: generating id: %w", err)
	}
	name := filepath.Join(s.dir, "testcase-"+id.String())
	if err := os.WriteFile(name, bytes, 0o644); err != nil {
		return "", false, fmt.Errorf("testcase: writing %q: %w", name, err)
	}
	return name, true, nil
}

// Count reports how many distinct test cases this Store has saved.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
