//go:build linux || darwin

package shadow

import "golang.org/x/sys/unix"

// mapPage reserves a region of the given size from the system allocator,
// the same way vm/malloc_linux.go and vm/malloc_darwin.go map their VM
// arena: a failed allocation is unrecoverable and panics rather than
// returning an error, matching spec §7 item 6 ("Allocation failure for a
// shadow page: abort"). size is PageSize*slotWidth bytes, not PageSize,
// since each of the page's 4096 byte-wide slots is itself pointer-sized
// (spec §5 "4096 × pointer-size bytes each").
func mapPage(size int) []byte {
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		panic("shadow: couldn't map shadow page: " + err.Error())
	}
	return buf
}
