// Package shadow implements the per-byte shadow memory described in spec
// §3/§4.1: a partial map from every byte of the target's address space to
// an optional symbolic expression. Pages are created lazily on first
// symbolic write and are never destroyed during a run; only the SymExprs
// they hold may become unreachable and be garbage collected.
package shadow

import (
	"math/big"
	"sync"

	"github.com/symcc-go/symcc/symexpr"
)

// Memory is the process-wide shadow address space. The reference design is
// single-threaded per spec §5; Memory still serializes page creation with a
// mutex so a host that chooses the thread-local-instance escape hatch can
// still share one Memory safely if it wants to.
type Memory struct {
	mu    sync.Mutex
	pages map[uint64]*page
	b     *symexpr.Builder
}

// New returns an empty shadow address space backed by b for constructing
// the Concat/Extract expressions read_memory and write_memory need.
func New(b *symexpr.Builder) *Memory {
	return &Memory{pages: make(map[uint64]*page), b: b}
}

func (m *Memory) pageFor(addr uint64, create bool) *page {
	base := pageBase(addr)
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.pages[base]
	if p == nil && create {
		p = newPage()
		m.pages[base] = p
	}
	return p
}

// slot returns the shadow expression at addr, or nil if concrete, without
// creating a page that doesn't already exist. The page itself stores a
// node id (see page.go); this resolves it back to a *symexpr.Node through
// the builder's registry.
func (m *Memory) slot(addr uint64) *symexpr.Node {
	p := m.pageFor(addr, false)
	if p == nil {
		return nil
	}
	return m.b.Lookup(p.slots[pageOffset(addr)])
}

// setSlot materializes the owning page on first write, per spec §4.1's
// "write iterator that materializes the shadow page on dereference".
func (m *Memory) setSlot(addr uint64, v *symexpr.Node) {
	p := m.pageFor(addr, true)
	var id uint64
	if v != nil {
		id = v.ID()
	}
	p.slots[pageOffset(addr)] = id
}

// PageCount reports how many shadow pages have been materialized, mostly
// useful for tests and for the GC root-walk in package gc.
func (m *Memory) PageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

// Pages returns a snapshot of the materialized pages, used by the garbage
// collector to walk shadow-memory roots (spec §4.7).
func (m *Memory) Pages() []PageView {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PageView, 0, len(m.pages))
	for base, p := range m.pages {
		out = append(out, PageView{Base: base, page: p, b: m.b})
	}
	return out
}

// PageView exposes one materialized page's live slots to the GC without
// leaking the unexported page type.
type PageView struct {
	Base uint64
	page *page
	b    *symexpr.Builder
}

// Roots appends every non-nil slot in the page to roots and returns the
// extended slice. Slots are stored as node ids (see page.go), resolved
// back to *symexpr.Node through the same builder that allocated them.
func (v PageView) Roots(roots []*symexpr.Node) []*symexpr.Node {
	for _, id := range v.page.slots {
		if n := v.b.Lookup(id); n != nil {
			roots = append(roots, n)
		}
	}
	return roots
}

// IsConcrete is the fast path from spec §4.1: it returns true immediately
// if the whole range falls on pages that have no shadow at all, and only
// falls back to a byte-by-byte scan when some page in range exists.
func (m *Memory) IsConcrete(addr uint64, n int) bool {
	for i := 0; i < n; {
		base := pageBase(addr + uint64(i))
		p := m.pageFor(addr+uint64(i), false)
		if p == nil {
			// entire remainder of this page is concrete; skip to the next page
			skip := int(base+PageSize-(addr+uint64(i)))
			i += skip
			continue
		}
		for ; i < n && pageBase(addr+uint64(i)) == base; i++ {
			if p.slots[pageOffset(addr+uint64(i))] != 0 {
				return false
			}
		}
	}
	return true
}

// ReadMemory returns nil if the range [addr, addr+n) is fully concrete;
// otherwise it folds the per-byte expressions (materializing concrete
// bytes as Constant(concreteByte,8) nodes) via Concat, honoring
// littleEndian exactly as spec §4.1 describes: "little: concat(byte[i+1],
// byte[i]) accumulates with the newer byte on the high side; big: reverse".
// concreteBytes supplies the real memory contents for bytes whose shadow
// slot is nil.
func (m *Memory) ReadMemory(addr uint64, n int, littleEndian bool, concreteBytes []byte) *symexpr.Node {
	if m.IsConcrete(addr, n) {
		return nil
	}
	byteAt := func(i int) *symexpr.Node {
		if s := m.slot(addr + uint64(i)); s != nil {
			return s
		}
		return m.b.Constant(big.NewInt(int64(concreteBytes[i])), 8)
	}
	var acc *symexpr.Node
	if littleEndian {
		for i := 0; i < n; i++ {
			b := byteAt(i)
			if acc == nil {
				acc = b
			} else {
				acc = m.b.Concat(b, acc)
			}
		}
	} else {
		for i := 0; i < n; i++ {
			b := byteAt(i)
			if acc == nil {
				acc = b
			} else {
				acc = m.b.Concat(acc, b)
			}
		}
	}
	return acc
}

// WriteMemory stores expr across [addr, addr+n); nil with an already
// concrete range is a no-op, nil over a partially symbolic range blanks
// the shadow back to concrete, and otherwise each byte gets the matching
// 8-bit Extract slice of expr, ordered by littleEndian.
func (m *Memory) WriteMemory(addr uint64, n int, expr *symexpr.Node, littleEndian bool) {
	if expr == nil {
		if m.IsConcrete(addr, n) {
			return
		}
		for i := 0; i < n; i++ {
			m.setSlot(addr+uint64(i), nil)
		}
		return
	}
	bits := int(expr.Width)
	if bits != n*8 {
		panic("shadow: WriteMemory: expression width does not match byte range")
	}
	for i := 0; i < n; i++ {
		var lo int
		if littleEndian {
			lo = i * 8
		} else {
			lo = (n - 1 - i) * 8
		}
		byteExpr := m.b.Extract(expr, lo+7, lo)
		m.setSlot(addr+uint64(i), byteExpr)
	}
}

// Memcpy propagates shadow state for a non-overlapping (or safely
// direction-independent) copy.
func (m *Memory) Memcpy(dst, src uint64, n int) {
	m.copyDirectional(dst, src, n, dst > src)
}

// Memmove is direction-aware when src and dst overlap, copying back-to-front
// when the destination is after the source so a forward byte-by-byte copy
// doesn't clobber source bytes it hasn't read yet.
func (m *Memory) Memmove(dst, src uint64, n int) {
	overlap := dst < src+uint64(n) && src < dst+uint64(n)
	m.copyDirectional(dst, src, n, overlap && dst > src)
}

func (m *Memory) copyDirectional(dst, src uint64, n int, reverse bool) {
	if reverse {
		for i := n - 1; i >= 0; i-- {
			m.setSlot(dst+uint64(i), m.slot(src+uint64(i)))
		}
		return
	}
	for i := 0; i < n; i++ {
		m.setSlot(dst+uint64(i), m.slot(src+uint64(i)))
	}
}

// Memset broadcasts val (an 8-bit expression, or nil for concrete) across
// [dst, dst+n).
func (m *Memory) Memset(dst uint64, val *symexpr.Node, n int) {
	for i := 0; i < n; i++ {
		m.setSlot(dst+uint64(i), val)
	}
}
