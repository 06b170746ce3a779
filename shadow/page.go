package shadow

import "unsafe"

// PageBits/PageSize match spec §3: shadow memory is physically a sparse map
// from page base (4096-aligned) to a page of 4096 byte-wide slots.
const (
	PageBits = 12
	PageSize = 1 << PageBits
	pageMask = PageSize - 1
)

func pageBase(addr uint64) uint64 { return addr &^ pageMask }
func pageOffset(addr uint64) int  { return int(addr & pageMask) }

// slotWidth is the size in bytes of one shadow slot. Spec §5 describes a
// shadow page as "4096 × pointer-size bytes"; original_source/Shadow.h's
// getOrCreateShadowPage mallocs a Z3_ast* array of exactly that shape (one
// pointer-sized slot per shadowed byte). A raw Go pointer stored in memory
// the Go runtime didn't allocate is invisible to the garbage collector, so
// instead of a *symexpr.Node this slot holds a plain node id (symexpr.Node
// IDs are allocated starting at 1, so 0 doubles as "no expression");
// Memory resolves ids back to nodes through symexpr.Builder.Lookup, the
// same pointer-sized quantity the original stores, without handing the
// garbage collector a reason to miscount live heap references.
const slotWidth = 8

// page is one lazily-created shadow page. backing is the raw memory the
// process reserved from the system allocator for this page's address
// range (see mapPage in page_unix.go/page_windows.go) — it is never
// released during a run, matching spec §5 "Shadow pages are allocated
// from the system allocator ... and never freed during a run." slots
// reinterprets that same backing buffer as an array of node ids, one per
// shadowed byte; a zero slot means the byte is concrete.
type page struct {
	backing []byte
	slots   *[PageSize]uint64
}

func newPage() *page {
	buf := mapPage(PageSize * slotWidth)
	p := &page{backing: buf}
	p.slots = (*[PageSize]uint64)(unsafe.Pointer(&buf[0]))
	return p
}
