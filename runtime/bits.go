package runtime

import (
	"math/big"

	"github.com/symcc-go/symcc/symexpr"
)

// Concat/Extract/Bits are the bit helpers from spec §4.3; unlike the
// binary-op Build methods above they operate directly on expressions the
// caller already knows are non-nil (the instrumentation pass only emits
// these once it has established a byte-aligned sub-value is symbolic).

func (rt *Runtime) Concat(hi, lo *symexpr.Node) *symexpr.Node { return rt.Builder.Concat(hi, lo) }

func (rt *Runtime) Extract(e *symexpr.Node, firstBit, lastBit int) *symexpr.Node {
	return rt.Builder.Extract(e, firstBit, lastBit)
}

// Bits returns e's bit width.
func (rt *Runtime) Bits(e *symexpr.Node) uint32 { return e.Width }

// Bswap implements the derived byte-swap helper (spec §4.2/§4.3).
func (rt *Runtime) Bswap(e *symexpr.Node) *symexpr.Node { return rt.Builder.Bswap(e) }

// ExtractBytes is the byte-aligned derived extract from spec §4.3:
// "extract(offset_bytes, length_bytes, little_endian) that slices a
// byte-aligned sub-expression". little_endian only affects which end of e
// the slice is read from when e represents a little-endian-laid-out value;
// the extracted bytes themselves are returned in e's own bit order.
func (rt *Runtime) ExtractBytes(e *symexpr.Node, offsetBytes, lengthBytes int, littleEndian bool) *symexpr.Node {
	totalBytes := int(e.Width / 8)
	var lastByte int
	if littleEndian {
		lastByte = offsetBytes
	} else {
		lastByte = totalBytes - offsetBytes - lengthBytes
	}
	lo := lastByte * 8
	hi := lo + lengthBytes*8 - 1
	return rt.Builder.Extract(e, hi, lo)
}

// Insert implements build_insert(target, piece, offset, little_endian):
// splice piece into target at a byte offset, replacing the corresponding
// bits, by extracting the untouched low and high remainders of target and
// concatenating them back around piece.
func (rt *Runtime) Insert(target, piece *symexpr.Node, offsetBytes int, littleEndian bool) *symexpr.Node {
	pieceBytes := int(piece.Width / 8)
	totalBytes := int(target.Width / 8)

	var lastByte int
	if littleEndian {
		lastByte = offsetBytes
	} else {
		lastByte = totalBytes - offsetBytes - pieceBytes
	}
	lo := lastByte * 8
	hi := lo + pieceBytes*8 - 1

	var out *symexpr.Node
	if hi < int(target.Width)-1 {
		high := rt.Builder.Extract(target, int(target.Width)-1, hi+1)
		out = high
	}
	if out == nil {
		out = piece
	} else {
		out = rt.Builder.Concat(out, piece)
	}
	if lo > 0 {
		low := rt.Builder.Extract(target, lo-1, 0)
		out = rt.Builder.Concat(out, low)
	}
	return out
}

// ZeroBytes implements zero_bytes(n): an all-zero n-byte constant, used to
// pad overflow-result packing and similar fixed-layout constructions.
func (rt *Runtime) ZeroBytes(n int) *symexpr.Node {
	return rt.Builder.ConstantU64(0, uint32(n*8))
}

// MinUInt/MaxUInt/MinSInt/MaxSInt implement {min,max}_{s,u}_int(bits) from
// spec §4.3's saturating-arithmetic helpers.
func (rt *Runtime) MinUInt(bits uint32) *symexpr.Node { return rt.Builder.ConstantU64(0, bits) }

func (rt *Runtime) MaxUInt(bits uint32) *symexpr.Node {
	v := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
	return rt.Builder.Constant(v, bits)
}

func (rt *Runtime) MinSInt(bits uint32) *symexpr.Node {
	v := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	return rt.Builder.Constant(v, bits) // two's-complement min is 1000...0
}

func (rt *Runtime) MaxSInt(bits uint32) *symexpr.Node {
	v := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)), big.NewInt(1))
	return rt.Builder.Constant(v, bits)
}
