// Package corpus implements the batch seed-corpus replay driver
// supplemented from original_source/: a single-process analogue of the
// original's symcc_fuzzing_helper shell script. It repeatedly feeds seed
// files to the instrumented target as SYMCC_INPUT_FILE, adds every newly
// mined test case back into the queue, and stops once a generation produces
// nothing new twice in a row. It is explicitly not a distributed fuzzer —
// there is no worker coordination here, just a queue and a replay loop.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Queue is a directory-backed FIFO of seed files awaiting replay. It never
// deletes a file from disk; Next only advances an in-memory cursor, so the
// directory itself always reflects every seed the queue has ever held.
type Queue struct {
	dir     string
	pending []string
	seen    map[string]bool
}

// NewQueue returns a Queue primed with every regular file already present
// in dir, in lexical order (stable and reproducible across runs, unlike
// directory iteration order on some filesystems).
func NewQueue(dir string) (*Queue, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("corpus: reading seed directory %q: %w", dir, err)
	}
	q := &Queue{dir: dir, seen: make(map[string]bool)}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, n := range names {
		p := filepath.Join(dir, n)
		q.seen[p] = true
		q.pending = append(q.pending, p)
	}
	return q, nil
}

// Add enqueues path for replay unless it has already been seen by this
// Queue (either replayed already or still pending), the dedup spec §4.7's
// allocation registry mirrors for expressions: a rediscovered input along a
// different path should not pile up duplicate work.
func (q *Queue) Add(path string) {
	if q.seen[path] {
		return
	}
	q.seen[path] = true
	q.pending = append(q.pending, path)
}

// Next pops the oldest pending seed, reporting ok=false once the queue is
// empty.
func (q *Queue) Next() (path string, ok bool) {
	if len(q.pending) == 0 {
		return "", false
	}
	path, q.pending = q.pending[0], q.pending[1:]
	return path, true
}

// Len reports how many seeds are still pending replay.
func (q *Queue) Len() int {
	return len(q.pending)
}
