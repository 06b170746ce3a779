package libc

import "github.com/symcc-go/symcc/symexpr"

// Strchr implements strchr_symbolized: one not_equal(byte_i, c) path
// constraint per byte scanned before the match (or per byte of scanned,
// including the terminator when the caller passes it, if c was not found),
// per spec §4.4. foundIndex is the index of the match
// within scanned, or -1 if the real strchr scanned to the terminator
// without finding c.
func (l *Libc) Strchr(addr uint64, c byte, scanned []byte, foundIndex int, siteID int32) {
	n := foundIndex
	if n < 0 {
		n = len(scanned)
	}
	for i := 0; i < n; i++ {
		byteExpr := l.rt.ReadMemory(addr+uint64(i), 1, true, scanned[i:i+1])
		ne := l.rt.BuildNe(byteExpr, uint64(scanned[i]), nil, uint64(c), 8)
		l.rt.PushPathConstraint(ne, true, siteID)
	}
}

// Memcmp/Bcmp implement spec §4.4's "accumulate a big and of byte
// equalities and push that as a single constraint with polarity
// result==0."
func (l *Libc) Memcmp(addr1, addr2 uint64, n int, bytes1, bytes2 []byte, result int, siteID int32) {
	l.compareRegions(addr1, addr2, n, bytes1, bytes2, result, siteID)
}

func (l *Libc) Bcmp(addr1, addr2 uint64, n int, bytes1, bytes2 []byte, result int, siteID int32) {
	l.compareRegions(addr1, addr2, n, bytes1, bytes2, result, siteID)
}

func (l *Libc) compareRegions(addr1, addr2 uint64, n int, bytes1, bytes2 []byte, result int, siteID int32) {
	var acc *symexpr.Node
	for i := 0; i < n; i++ {
		b1 := l.rt.ReadMemory(addr1+uint64(i), 1, true, bytes1[i:i+1])
		b2 := l.rt.ReadMemory(addr2+uint64(i), 1, true, bytes2[i:i+1])
		eq := l.rt.BuildEq(b1, uint64(bytes1[i]), b2, uint64(bytes2[i]), 8)
		if eq == nil {
			// both bytes were concrete; BuildEq's short-circuit convention
			// returns nil for "the result is concrete", but we need an
			// actual boolean node to fold into the running conjunction.
			eq = l.rt.BuildBool(bytes1[i] == bytes2[i])
		}
		if acc == nil {
			acc = eq
			continue
		}
		acc = l.rt.BuildBoolAnd(acc, eq, false, false)
	}
	if acc == nil {
		return
	}
	l.rt.PushPathConstraint(acc, result == 0, siteID)
}
