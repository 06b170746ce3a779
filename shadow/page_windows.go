//go:build windows

package shadow

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func unsafeSlice(addr uintptr, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}

// mapPage is the Windows analogue of the unix mmap path in page_unix.go,
// grounded on vm/malloc_windows.go's VirtualAlloc usage. size is
// PageSize*slotWidth bytes (spec §5 "4096 × pointer-size bytes each"),
// not PageSize.
func mapPage(size int) []byte {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		panic("shadow: couldn't map shadow page: " + err.Error())
	}
	return unsafeSlice(addr, size)
}
