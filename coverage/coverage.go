// Package coverage implements the AFL-style edge coverage bitmap spec §6
// calls "SYMCC_AFL_COVERAGE_MAP": it receives call/return/basic-block
// notifications forwarded from the instrumented program (via
// runtime.CallSiteSink, which this package implements without runtime
// importing coverage) and folds them into a fixed-size bitmap using AFL's
// own prev-location edge-hashing trick, so the bitmap plays nicely with
// anything downstream that already speaks the AFL coverage format.
package coverage

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/s2"
)

// MapSize matches AFL's traditional 64Ki-entry bitmap.
const MapSize = 1 << 16

// Map is an AFL-style edge coverage bitmap. It is safe for concurrent use.
type Map struct {
	mu      sync.Mutex
	bits    [MapSize]byte
	prevLoc uint32
}

// New returns an empty coverage Map.
func New() *Map { return &Map{} }

// edge folds curLoc into the bitmap using AFL's `cur_loc ^ (prev_loc >> 1)`
// hash, then remembers curLoc (halved, the same way AFL's own
// instrumentation does) as the next call's prevLoc.
func (m *Map) edge(curLoc uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := (curLoc ^ m.prevLoc) % MapSize
	if m.bits[idx] != 0xff {
		m.bits[idx]++
	}
	m.prevLoc = curLoc >> 1
}

// NotifyCall/NotifyRet/NotifyBasicBlock implement runtime.CallSiteSink: the
// reference coverage map treats every notification site uniformly as an
// edge endpoint, the same granularity AFL's own block-level instrumentation
// uses.
func (m *Map) NotifyCall(siteID int32)       { m.edge(uint32(siteID)) }
func (m *Map) NotifyRet(siteID int32)        { m.edge(uint32(siteID)) }
func (m *Map) NotifyBasicBlock(siteID int32) { m.edge(uint32(siteID)) }

// HitCount reports how many distinct bitmap entries have been touched at
// least once, a cheap proxy for edge coverage breadth.
func (m *Map) HitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bits {
		if b != 0 {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the raw bitmap.
func (m *Map) Snapshot() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, MapSize)
	copy(out, m.bits[:])
	return out
}

// Save writes the bitmap, s2-compressed, to path (spec §6
// SYMCC_AFL_COVERAGE_MAP). s2 is klauspost/compress's Snappy-compatible
// codec, chosen the way the rest of this module favors a real pack
// dependency over a hand-rolled format.
func (m *Map) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("coverage: creating %q: %w", path, err)
	}
	defer f.Close()

	w := s2.NewWriter(f)
	if _, err := w.Write(m.Snapshot()); err != nil {
		w.Close()
		return fmt.Errorf("coverage: writing %q: %w", path, err)
	}
	return w.Close()
}

// Load reads back a bitmap previously written by Save, replacing m's
// current contents.
func (m *Map) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("coverage: opening %q: %w", path, err)
	}
	defer f.Close()

	r := s2.NewReader(f)
	buf := make([]byte, MapSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("coverage: reading %q: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.bits[:], buf[:n])
	return nil
}
