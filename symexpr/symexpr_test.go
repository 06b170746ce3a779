package symexpr

import (
	"math/big"
	"testing"
)

func TestConstantHashConsing(t *testing.T) {
	b := NewBuilder()
	a := b.ConstantU64(42, 32)
	c := b.ConstantU64(42, 32)
	if a != c {
		t.Fatalf("constants with equal (value,bits) should be the identical node")
	}
	d := b.ConstantU64(42, 16)
	if a == d {
		t.Fatalf("constants with different bit widths must not be shared")
	}
}

func TestInputByteCaching(t *testing.T) {
	b := NewBuilder()
	x := b.InputByte(3)
	y := b.InputByte(3)
	if x != y {
		t.Fatalf("get_input_byte must return a cached node per offset")
	}
	if x.Width != 8 {
		t.Fatalf("input byte width = %d, want 8", x.Width)
	}
}

func TestWidthInvariants(t *testing.T) {
	b := NewBuilder()
	x := b.ConstantU64(1, 32)
	y := b.ConstantU64(2, 32)

	if add := b.Add(x, y); add.Width != 32 {
		t.Fatalf("add width = %d, want 32", add.Width)
	}
	if eq := b.Eq(x, y); eq.Width != 0 {
		t.Fatalf("eq width = %d, want 0 (bool)", eq.Width)
	}
	sext := b.Sext(x, 64)
	if sext.Width != 64 {
		t.Fatalf("sext width = %d, want 64", sext.Width)
	}
	trunc := b.Trunc(x, 8)
	if trunc.Width != 8 {
		t.Fatalf("trunc width = %d, want 8", trunc.Width)
	}
	concat := b.Concat(x, y)
	if concat.Width != 64 {
		t.Fatalf("concat width = %d, want 64", concat.Width)
	}
	extract := b.Extract(concat, 39, 32)
	if extract.Width != 8 {
		t.Fatalf("extract width = %d, want 8", extract.Width)
	}
}

func TestExtractInvalidRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for first < last")
		}
	}()
	b := NewBuilder()
	x := b.ConstantU64(1, 32)
	b.Extract(x, 3, 10)
}

func TestBoolXorIsLogicalXor(t *testing.T) {
	b := NewBuilder()
	tt := b.ConstantBool(true)
	ff := b.ConstantBool(false)

	xorTT := b.Simplify(b.BoolXor(tt, tt))
	if v, ok := xorTT.ConstantBool(); !ok || v != false {
		t.Fatalf("true xor true = %v, want false", v)
	}
	xorTF := b.Simplify(b.BoolXor(tt, ff))
	if v, ok := xorTF.ConstantBool(); !ok || v != true {
		t.Fatalf("true xor false = %v, want true", v)
	}
}

func TestBswapRoundTrip(t *testing.T) {
	b := NewBuilder()
	x := b.ConstantU64(0x01020304, 32)
	swapped := b.Simplify(b.Bswap(x))
	v, ok := swapped.ConstantValue()
	if !ok {
		t.Fatalf("expected a folded constant")
	}
	if v.Uint64() != 0x04030201 {
		t.Fatalf("bswap(0x01020304) = %#x, want 0x04030201", v.Uint64())
	}
}

func TestSimplifyConstantFolding(t *testing.T) {
	b := NewBuilder()
	x := b.ConstantU64(3, 8)
	y := b.ConstantU64(4, 8)
	sum := b.Simplify(b.Add(x, y))
	v, ok := sum.ConstantValue()
	if !ok || v.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("3+4 folded to %v, want 7", v)
	}
}

func TestSimplifyIteWithConstantCondition(t *testing.T) {
	b := NewBuilder()
	cond := b.ConstantBool(true)
	then := b.ConstantU64(10, 8)
	els := b.ConstantU64(20, 8)
	out := b.Simplify(b.Ite(cond, then, els))
	v, ok := out.ConstantValue()
	if !ok || v.Uint64() != 10 {
		t.Fatalf("ite(true, 10, 20) simplified to %v, want 10", v)
	}
}

func TestSignedRelationFolding(t *testing.T) {
	b := NewBuilder()
	negOne := b.ConstantU64(0xFF, 8) // -1 as signed i8
	zero := b.ConstantU64(0, 8)
	lt := b.Simplify(b.SLt(negOne, zero))
	v, ok := lt.ConstantBool()
	if !ok || !v {
		t.Fatalf("signed -1 < 0 should fold to true")
	}
	ult := b.Simplify(b.ULt(negOne, zero))
	v, ok = ult.ConstantBool()
	if !ok || v {
		t.Fatalf("unsigned 0xFF < 0 should fold to false")
	}
}

func TestSweepRemovesUnreachableNodes(t *testing.T) {
	b := NewBuilder()
	live := b.ConstantU64(1, 8)
	_ = b.ConstantU64(2, 8) // transient, not kept below

	keep := map[uint64]bool{live.ID(): true}
	b.Sweep(keep)

	reg := b.Registry()
	if len(reg) != 1 {
		t.Fatalf("registry has %d nodes after sweep, want 1", len(reg))
	}
	if _, ok := reg[live.ID()]; !ok {
		t.Fatalf("kept node missing from registry after sweep")
	}
}
