package shadow

import (
	"math/big"
	"testing"

	"github.com/symcc-go/symcc/symexpr"
)

func TestIsConcreteFastPath(t *testing.T) {
	b := symexpr.NewBuilder()
	m := New(b)
	if !m.IsConcrete(0x1000, 16) {
		t.Fatalf("untouched range should be concrete")
	}
	m.WriteMemory(0x1000, 1, b.ConstantU64(1, 8), true)
	if m.IsConcrete(0x1000, 16) {
		t.Fatalf("range containing a symbolic byte must not be concrete")
	}
}

func TestWriteThenReadRoundTripLittleEndian(t *testing.T) {
	b := symexpr.NewBuilder()
	m := New(b)
	val := b.ConstantU64(0x11223344, 32)
	m.WriteMemory(0x2000, 4, val, true)

	got := m.ReadMemory(0x2000, 4, true, nil)
	got = b.Simplify(got)
	v, ok := got.ConstantValue()
	if !ok || v.Cmp(big.NewInt(0x11223344)) != 0 {
		t.Fatalf("round trip = %v, want 0x11223344", v)
	}
}

func TestWriteThenReadRoundTripBigEndian(t *testing.T) {
	b := symexpr.NewBuilder()
	m := New(b)
	val := b.ConstantU64(0x11223344, 32)
	m.WriteMemory(0x3000, 4, val, false)
	got := b.Simplify(m.ReadMemory(0x3000, 4, false, nil))
	v, _ := got.ConstantValue()
	if v.Cmp(big.NewInt(0x11223344)) != 0 {
		t.Fatalf("big-endian round trip = %v, want 0x11223344", v)
	}
}

func TestBswapBetweenEndians(t *testing.T) {
	b := symexpr.NewBuilder()
	m := New(b)
	val := b.ConstantU64(0x11223344, 32)
	m.WriteMemory(0x4000, 4, val, false) // store big-endian

	big := b.Simplify(m.ReadMemory(0x4000, 4, false, nil))
	little := b.Simplify(m.ReadMemory(0x4000, 4, true, nil))

	swapped := b.Simplify(b.Bswap(big))
	lv, _ := little.ConstantValue()
	sv, _ := swapped.ConstantValue()
	if lv.Cmp(sv) != 0 {
		t.Fatalf("bswap(read big) = %v, want read little = %v", sv, lv)
	}
}

func TestReadPartiallyConcreteUsesConcreteBytes(t *testing.T) {
	b := symexpr.NewBuilder()
	m := New(b)
	// byte 0 symbolic, bytes 1-3 left concrete
	m.WriteMemory(0x5000, 1, b.ConstantU64(0xAB, 8), true)
	concrete := []byte{0, 0x02, 0x03, 0x04}
	got := b.Simplify(m.ReadMemory(0x5000, 4, true, concrete))
	v, ok := got.ConstantValue()
	if !ok {
		t.Fatalf("expected a folded constant")
	}
	want := uint64(0x040302AB)
	if v.Uint64() != want {
		t.Fatalf("got %#x, want %#x", v.Uint64(), want)
	}
}

func TestMemmoveOverlapForward(t *testing.T) {
	b := symexpr.NewBuilder()
	m := New(b)
	for i := 0; i < 4; i++ {
		m.WriteMemory(0x6000+uint64(i), 1, b.ConstantU64(uint64(i+1), 8), true)
	}
	// move [0x6000,0x6004) to [0x6002,0x6006): dst > src, overlapping -> must go in reverse
	m.Memmove(0x6002, 0x6000, 4)
	for i := 0; i < 4; i++ {
		got := b.Simplify(m.ReadMemory(0x6002+uint64(i), 1, true, nil))
		v, _ := got.ConstantValue()
		if v.Uint64() != uint64(i+1) {
			t.Fatalf("byte %d after memmove = %v, want %d", i, v, i+1)
		}
	}
}

func TestMemsetBroadcasts(t *testing.T) {
	b := symexpr.NewBuilder()
	m := New(b)
	m.Memset(0x7000, b.ConstantU64(0x7, 8), 5)
	for i := 0; i < 5; i++ {
		got := b.Simplify(m.ReadMemory(0x7000+uint64(i), 1, true, nil))
		v, _ := got.ConstantValue()
		if v.Uint64() != 7 {
			t.Fatalf("byte %d = %v, want 7", i, v)
		}
	}
}

func TestWriteNilOverConcreteRangeIsNoop(t *testing.T) {
	b := symexpr.NewBuilder()
	m := New(b)
	m.WriteMemory(0x8000, 4, nil, true)
	if m.PageCount() != 0 {
		t.Fatalf("writing nil over an already-concrete range must not materialize a page")
	}
}

func TestWriteNilOverSymbolicRangeBlanks(t *testing.T) {
	b := symexpr.NewBuilder()
	m := New(b)
	m.WriteMemory(0x9000, 1, b.ConstantU64(1, 8), true)
	m.WriteMemory(0x9000, 4, nil, true)
	if !m.IsConcrete(0x9000, 4) {
		t.Fatalf("writing nil should blank a previously-symbolic range")
	}
}

func TestPageBoundaryCrossing(t *testing.T) {
	b := symexpr.NewBuilder()
	m := New(b)
	addr := uint64(PageSize - 2)
	val := b.ConstantU64(0xCAFEBABE, 32)
	m.WriteMemory(addr, 4, val, true)
	got := b.Simplify(m.ReadMemory(addr, 4, true, nil))
	v, ok := got.ConstantValue()
	if !ok || v.Uint64() != 0xCAFEBABE {
		t.Fatalf("page-crossing round trip = %v, want 0xCAFEBABE", v)
	}
	if m.PageCount() != 2 {
		t.Fatalf("page count = %d, want 2 (range spans two pages)", m.PageCount())
	}
}
