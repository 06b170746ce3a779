package libc

import (
	"unsafe"

	"github.com/symcc-go/symcc/symexpr"
)

// HostLittleEndian reports whether the running host is little-endian,
// detected once at process startup rather than assumed, so ntohl's
// symbolic emission (spec §4.4: "emits bswap on little-endian hosts,
// identity on big-endian") stays correct on big-endian hosts too instead
// of hard-coding the x86-64 case.
var HostLittleEndian = func() bool {
	var probe uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&probe))
	return b[0] == 1
}()

// Ntohl implements ntohl_symbolized.
func (l *Libc) Ntohl(e *symexpr.Node) *symexpr.Node {
	if e == nil {
		return nil
	}
	if HostLittleEndian {
		return l.rt.Bswap(e)
	}
	return e
}
