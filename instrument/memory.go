package instrument

import (
	"github.com/symcc-go/symcc/libc"
	"github.com/symcc-go/symcc/ssair"
)

// littleEndian is memory's byte order for load/store/GEP/aggregate shadow
// layout. It tracks libc.HostLittleEndian rather than hard-coding true, so
// a big-endian host gets a self-consistent (if non-default) memory model
// instead of a silent x86-64 assumption.
var littleEndian = libc.HostLittleEndian

// execLoad implements spec §4.5's "load | tryAlternative(address); then
// read_memory(address, size, endian); wrap in bits_to_float if destination
// is a float" row. Float values share the same raw-bit-pattern
// representation as same-width integers in this module, so no separate
// wrap step is needed once the byte count is right.
func (in *Interpreter) execLoad(inst *ssair.Value, addr Cell) Cell {
	n := inst.Type.ByteSize()
	in.RT.TryAlternative(addr.Sym, addr.Concrete, PointerBits, in.nextSite())

	concreteBytes := in.readConcrete(addr.Concrete, n)
	sym := in.RT.ReadMemory(addr.Concrete, n, littleEndian, concreteBytes)
	return Cell{Concrete: bytesToU64(concreteBytes), Sym: sym}
}

// execStore implements spec §4.5's "store | tryAlternative(address); wrap
// value in float_to_bits if needed; write_memory(...)" row.
func (in *Interpreter) execStore(inst *ssair.Value, addr, val Cell) {
	n := inst.Args[1].Type.ByteSize()
	in.RT.TryAlternative(addr.Sym, addr.Concrete, PointerBits, in.nextSite())

	in.writeConcrete(addr.Concrete, u64ToBytes(val.Concrete, n))
	in.RT.WriteMemory(addr.Concrete, n, val.Sym, littleEndian)
}

// execAlloca implements spec §4.5's "alloca | No-op (shadow is lazy)":
// only the concrete backing address needs to exist, reserved from the
// interpreter's bump allocator. inst.Imm holds the allocated type's byte
// size.
func (in *Interpreter) execAlloca(inst *ssair.Value) Cell {
	n := inst.Imm.(int)
	return Cell{Concrete: in.alloc(n)}
}

func bytesToU64(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func u64ToBytes(v uint64, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
