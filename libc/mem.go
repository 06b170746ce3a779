package libc

import "github.com/symcc-go/symcc/symexpr"

// Malloc/Mmap carry no shadow effect of their own (freshly returned memory
// starts concrete, same as alloca per spec §4.5) beyond tryAlternative on a
// symbolic size argument, since a symbolic allocation size is itself
// interesting to fork test cases on.
func (l *Libc) Malloc(size *symexpr.Node, concreteSize uint64, siteID int32) {
	l.rt.TryAlternative(size, concreteSize, PointerBits, siteID)
}

func (l *Libc) Mmap(length *symexpr.Node, concreteLength uint64, siteID int32) {
	l.rt.TryAlternative(length, concreteLength, PointerBits, siteID)
}

// Memcpy implements memcpy_symbolized: tryAlternative on both pointers, then
// copy shadow the way spec §4.4 step 3 describes for memcpy/memmove/strncpy.
func (l *Libc) Memcpy(dstAddr, srcAddr uint64, dstExpr, srcExpr *symexpr.Node, dstConcrete, srcConcrete uint64, n int, siteID int32) {
	l.rt.TryAlternative(dstExpr, dstConcrete, PointerBits, siteID)
	l.rt.TryAlternative(srcExpr, srcConcrete, PointerBits, siteID)
	l.rt.Memcpy(dstAddr, srcAddr, n)
}

func (l *Libc) Memmove(dstAddr, srcAddr uint64, dstExpr, srcExpr *symexpr.Node, dstConcrete, srcConcrete uint64, n int, siteID int32) {
	l.rt.TryAlternative(dstExpr, dstConcrete, PointerBits, siteID)
	l.rt.TryAlternative(srcExpr, srcConcrete, PointerBits, siteID)
	l.rt.Memmove(dstAddr, srcAddr, n)
}

// Strncpy shares memcpy's shadow-copy semantics in this simplified model:
// the wrapper copies up to n bytes of shadow, leaving the source's
// null-padding behavior to the real libc call the caller already performed.
func (l *Libc) Strncpy(dstAddr, srcAddr uint64, dstExpr, srcExpr *symexpr.Node, dstConcrete, srcConcrete uint64, n int, siteID int32) {
	l.rt.TryAlternative(dstExpr, dstConcrete, PointerBits, siteID)
	l.rt.TryAlternative(srcExpr, srcConcrete, PointerBits, siteID)
	l.rt.Memcpy(dstAddr, srcAddr, n)
}

// Memset broadcasts val's shadow across [dst, dst+n) per spec §4.4.
func (l *Libc) Memset(dstAddr uint64, dstExpr *symexpr.Node, dstConcrete uint64, val *symexpr.Node, n int, siteID int32) {
	l.rt.TryAlternative(dstExpr, dstConcrete, PointerBits, siteID)
	l.rt.Memset(dstAddr, val, n)
}

// Bzero blanks the shadow over [dst, dst+n) back to concrete, per spec
// §4.4's "blanks on bzero".
func (l *Libc) Bzero(dstAddr uint64, dstExpr *symexpr.Node, dstConcrete uint64, n int, siteID int32) {
	l.rt.TryAlternative(dstExpr, dstConcrete, PointerBits, siteID)
	l.rt.WriteMemory(dstAddr, n, nil, true)
}
