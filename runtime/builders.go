package runtime

import (
	"math/big"

	"github.com/symcc-go/symcc/symexpr"
)

// In this ABI a nil *symexpr.Node always means "concrete" (the same
// convention shadow memory uses for a null shadow slot). Every Build*
// method below implements the short-circuit fast path from spec §4.5/§9
// inline: if every operand is concrete the call returns nil in one
// comparison without touching the builder at all; otherwise it manufactures
// a Constant node for any operand that is concrete (the runtime's
// equivalent of createValueExpression) and only then builds the real
// expression, which is what the compile-time short-circuit rewriter's
// generated PHI dance amounts to at the value level.

// BuildIntegerConst implements build_integer(u64, bits): the constructor a
// concrete scalar turns into when it needs a symbolic placeholder (e.g. one
// operand of a binary op is symbolic and the other isn't).
func (rt *Runtime) BuildIntegerConst(value uint64, bits uint32) *symexpr.Node {
	return rt.Builder.ConstantU64(value, bits)
}

// BuildInteger128 implements build_integer128(hi, lo): a 128-bit constant
// assembled from its two 64-bit halves.
func (rt *Runtime) BuildInteger128(hi, lo uint64) *symexpr.Node {
	v := new(big.Int).Lsh(new(big.Int).SetUint64(hi), 64)
	v.Or(v, new(big.Int).SetUint64(lo))
	return rt.Builder.Constant(v, 128)
}

// BuildFloat implements build_float(double, is_double): floats are
// represented as their IEEE-754 bit pattern packed into a Constant, the
// same "bits_to_float"/"float_to_bits" detour spec §4.5's bitcast row uses.
func (rt *Runtime) BuildFloat(bits uint64, isDouble bool) *symexpr.Node {
	width := uint32(32)
	if isDouble {
		width = 64
	}
	return rt.Builder.ConstantU64(bits, width)
}

func (rt *Runtime) BuildTrue() *symexpr.Node       { return rt.Builder.ConstantBool(true) }
func (rt *Runtime) BuildFalse() *symexpr.Node      { return rt.Builder.ConstantBool(false) }
func (rt *Runtime) BuildBool(v bool) *symexpr.Node { return rt.Builder.ConstantBool(v) }

// BuildNullPointer implements build_null_pointer: a zero integer at the
// host's pointer width, matching createValueExpression's "null pointer ->
// build_null_pointer" case generalized to an explicit width parameter since
// this package has no notion of the host's pointer size.
func (rt *Runtime) BuildNullPointer(ptrBits uint32) *symexpr.Node {
	return rt.Builder.ConstantU64(0, ptrBits)
}

// materialize returns e if non-nil, or a freshly built Constant(concrete,
// bits) otherwise; this is the runtime's createValueExpression for the
// plain-integer case, invoked only on the side of a binary op whose peer is
// symbolic.
func (rt *Runtime) materialize(e *symexpr.Node, concrete uint64, bits uint32) *symexpr.Node {
	if e != nil {
		return e
	}
	return rt.Builder.ConstantU64(concrete, bits)
}

// binOp is the short-circuit wrapper every BuildXxx binary entry point goes
// through: nil, nil concrete operands short-circuit to nil without
// allocating, matching the single comparison-and-branch spec §9 describes.
func (rt *Runtime) binOp(lhs *symexpr.Node, lhsConcrete uint64, rhs *symexpr.Node, rhsConcrete uint64, bits uint32, build func(l, r *symexpr.Node) *symexpr.Node) *symexpr.Node {
	if lhs == nil && rhs == nil {
		return nil
	}
	l := rt.materialize(lhs, lhsConcrete, bits)
	r := rt.materialize(rhs, rhsConcrete, bits)
	return build(l, r)
}

func (rt *Runtime) BuildAdd(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.Add)
}
func (rt *Runtime) BuildSub(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.Sub)
}
func (rt *Runtime) BuildMul(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.Mul)
}
func (rt *Runtime) BuildUDiv(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.UDiv)
}
func (rt *Runtime) BuildSDiv(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.SDiv)
}
func (rt *Runtime) BuildURem(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.URem)
}
func (rt *Runtime) BuildSRem(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.SRem)
}
func (rt *Runtime) BuildShl(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.Shl)
}
func (rt *Runtime) BuildLShr(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.LShr)
}
func (rt *Runtime) BuildAShr(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.AShr)
}
func (rt *Runtime) BuildAnd(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.And)
}
func (rt *Runtime) BuildOr(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.Or)
}
func (rt *Runtime) BuildXor(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.Xor)
}

// BuildNeg/BuildNot are unary, so the short circuit is just "operand is
// concrete".
func (rt *Runtime) BuildNeg(e *symexpr.Node) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.Neg(e)
}
func (rt *Runtime) BuildNot(e *symexpr.Node) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.Not(e)
}

// Bool-typed (i1) and/or/xor/not route through the width-0 builders per
// spec §4.2's "and/or/xor on i1 use the bool variants".
func (rt *Runtime) BuildBoolAnd(lhs, rhs *symexpr.Node, lc, rc bool) *symexpr.Node {
	return rt.binOp(lhs, boolU64(lc), rhs, boolU64(rc), 0, rt.Builder.BoolAnd)
}
func (rt *Runtime) BuildBoolOr(lhs, rhs *symexpr.Node, lc, rc bool) *symexpr.Node {
	return rt.binOp(lhs, boolU64(lc), rhs, boolU64(rc), 0, rt.Builder.BoolOr)
}
func (rt *Runtime) BuildBoolXor(lhs, rhs *symexpr.Node, lc, rc bool) *symexpr.Node {
	return rt.binOp(lhs, boolU64(lc), rhs, boolU64(rc), 0, rt.Builder.BoolXor)
}
func (rt *Runtime) BuildBoolNot(e *symexpr.Node) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.BoolNot(e)
}

func boolU64(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// BuildIte always needs the condition to be available as an expression
// (the caller is expected to have already materialized it from the
// concrete branch outcome if needed, since Ite's own concreteness doesn't
// matter the way a binary op's does: even a concrete condition can select
// between two differently-symbolic branches).
func (rt *Runtime) BuildIte(cond, then, els *symexpr.Node) *symexpr.Node {
	return rt.Builder.Ite(cond, then, els)
}

// Comparisons: result is meaningless unless at least one side is symbolic,
// so they share the same short-circuit shape as the arithmetic ops.
func (rt *Runtime) BuildULt(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.ULt)
}
func (rt *Runtime) BuildULe(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.ULe)
}
func (rt *Runtime) BuildUGt(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.UGt)
}
func (rt *Runtime) BuildUGe(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.UGe)
}
func (rt *Runtime) BuildSLt(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.SLt)
}
func (rt *Runtime) BuildSLe(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.SLe)
}
func (rt *Runtime) BuildSGt(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.SGt)
}
func (rt *Runtime) BuildSGe(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.SGe)
}
func (rt *Runtime) BuildEq(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.Eq)
}
func (rt *Runtime) BuildNe(lhs *symexpr.Node, lc uint64, rhs *symexpr.Node, rc uint64, bits uint32) *symexpr.Node {
	return rt.binOp(lhs, lc, rhs, rc, bits, rt.Builder.Ne)
}

// Casts: a nil operand short-circuits to nil (source was concrete, so the
// cast result stays concrete too; the instrumented code reads the
// concretely-computed cast result directly).
func (rt *Runtime) BuildSext(e *symexpr.Node, destBits uint32) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.Sext(e, destBits)
}
func (rt *Runtime) BuildZext(e *symexpr.Node, destBits uint32) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.Zext(e, destBits)
}
func (rt *Runtime) BuildTrunc(e *symexpr.Node, destBits uint32) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.Trunc(e, destBits)
}

// BuildBoolToBit/BuildBitToBool implement the i1-width-0 <-> 1-bit bridge
// spec §3 lists alongside the other bit ops; sext/zext of an i1 source
// route through BuildBoolToBit first per spec §4.5.
func (rt *Runtime) BuildBoolToBit(e *symexpr.Node) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.BoolToBit(e)
}
func (rt *Runtime) BuildBitToBool(e *symexpr.Node) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.BitToBool(e)
}

func (rt *Runtime) BuildSIToFloat(e *symexpr.Node, floatBits uint32) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.SIToFloat(e, floatBits)
}
func (rt *Runtime) BuildUIToFloat(e *symexpr.Node, floatBits uint32) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.UIToFloat(e, floatBits)
}
func (rt *Runtime) BuildFloatToSInt(e *symexpr.Node, intBits uint32) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.FloatToSInt(e, intBits)
}
func (rt *Runtime) BuildFloatToUInt(e *symexpr.Node, intBits uint32) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.FloatToUInt(e, intBits)
}
func (rt *Runtime) BuildFPExt(e *symexpr.Node, destBits uint32) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.FPExt(e, destBits)
}
func (rt *Runtime) BuildFPTrunc(e *symexpr.Node, destBits uint32) *symexpr.Node {
	if e == nil {
		return nil
	}
	return rt.Builder.FPTrunc(e, destBits)
}
