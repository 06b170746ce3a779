// Package symexpr implements the symbolic-expression DAG described in
// spec §3/§4.2: an immutable, garbage-collected node graph describing
// bit-vector, boolean and floating-point values built up as an instrumented
// program executes. Nodes are produced only through Builder methods, never
// constructed directly, so that width invariants and (optional) hash-consing
// stay centralized in one place, the way vm/ssa.go centralizes value
// construction behind prog methods rather than letting callers build
// *value literals.
package symexpr

import "math/big"

// Kind identifies the variant of a Node, mirroring the constructor list in
// spec §3/§4.3.
type Kind int

const (
	KindInvalid Kind = iota

	KindConstant
	KindInputByte

	// bit-vector arithmetic
	KindAdd
	KindSub
	KindMul
	KindUDiv
	KindSDiv
	KindURem
	KindSRem
	KindShl
	KindLShr
	KindAShr
	KindAnd
	KindOr
	KindXor
	KindNeg
	KindNot

	// bit-vector relations (produce bool, width 0)
	KindULt
	KindULe
	KindUGt
	KindUGe
	KindSLt
	KindSLe
	KindSGt
	KindSGe
	KindEq
	KindNe

	// boolean logic (operate on width-0 operands)
	KindBoolAnd
	KindBoolOr
	KindBoolXor
	KindBoolNot
	KindIte

	// bit operations
	KindConcat
	KindExtract
	KindSext
	KindZext
	KindTrunc

	// float arithmetic
	KindFAdd
	KindFSub
	KindFMul
	KindFDiv
	KindFRem
	KindFNeg

	// float comparisons: ordered and unordered variants
	KindFOEq
	KindFONe
	KindFOLt
	KindFOLe
	KindFOGt
	KindFOGe
	KindFUEq
	KindFUNe
	KindFULt
	KindFULe
	KindFUGt
	KindFUGe

	// int <-> float casts
	KindSIToFloat
	KindUIToFloat
	KindFloatToSInt
	KindFloatToUInt
	KindFPExt
	KindFPTrunc

	KindBoolToBit
	KindBitToBool
)

var kindNames = map[Kind]string{
	KindConstant: "const", KindInputByte: "input_byte",
	KindAdd: "add", KindSub: "sub", KindMul: "mul", KindUDiv: "udiv", KindSDiv: "sdiv",
	KindURem: "urem", KindSRem: "srem", KindShl: "shl", KindLShr: "lshr", KindAShr: "ashr",
	KindAnd: "and", KindOr: "or", KindXor: "xor", KindNeg: "neg", KindNot: "not",
	KindULt: "ult", KindULe: "ule", KindUGt: "ugt", KindUGe: "uge",
	KindSLt: "slt", KindSLe: "sle", KindSGt: "sgt", KindSGe: "sge",
	KindEq: "eq", KindNe: "ne",
	KindBoolAnd: "bool_and", KindBoolOr: "bool_or", KindBoolXor: "bool_xor", KindBoolNot: "bool_not",
	KindIte: "ite",
	KindConcat: "concat", KindExtract: "extract", KindSext: "sext", KindZext: "zext",
	KindTrunc: "trunc",
	KindFAdd: "fadd", KindFSub: "fsub", KindFMul: "fmul", KindFDiv: "fdiv", KindFRem: "frem", KindFNeg: "fneg",
	KindFOEq: "foeq", KindFONe: "fone", KindFOLt: "folt", KindFOLe: "fole", KindFOGt: "fogt", KindFOGe: "foge",
	KindFUEq: "fueq", KindFUNe: "fune", KindFULt: "fult", KindFULe: "fule", KindFUGt: "fugt", KindFUGe: "fuge",
	KindSIToFloat: "sitofp", KindUIToFloat: "uitofp", KindFloatToSInt: "fptosi", KindFloatToUInt: "fptoui",
	KindFPExt: "fpext", KindFPTrunc: "fptrunc",
	KindBoolToBit: "bool_to_bit", KindBitToBool: "bit_to_bool",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// IsRelation reports whether k always produces a width-0 boolean value.
func (k Kind) IsRelation() bool {
	switch k {
	case KindULt, KindULe, KindUGt, KindUGe, KindSLt, KindSLe, KindSGt, KindSGe, KindEq, KindNe,
		KindBoolAnd, KindBoolOr, KindBoolXor, KindBoolNot,
		KindFOEq, KindFONe, KindFOLt, KindFOLe, KindFOGt, KindFOGe,
		KindFUEq, KindFUNe, KindFULt, KindFULe, KindFUGt, KindFUGe,
		KindBitToBool:
		return true
	}
	return false
}

// extractBits packs the inclusive, MSB-first (first >= last) bit range an
// Extract node reads, per spec §3.
type extractBits struct {
	first, last int
}

// Node is one immutable DAG node. Nodes are always obtained from a Builder;
// do not construct them directly (the zero Node is invalid and has
// Kind == KindInvalid).
type Node struct {
	id    uint64
	Kind  Kind
	Width uint32 // 0 for bool-valued nodes
	Args  []*Node

	// Imm carries the per-kind payload:
	//   KindConstant:   *big.Int (value, already reduced mod 2^Width)
	//   KindInputByte:  int (input offset)
	//   KindExtract:    extractBits
	// all other kinds leave Imm nil.
	Imm interface{}
}

// ID returns a process-unique identity for the node, stable for its
// lifetime. The garbage collector and the allocation registry key on this,
// not on pointer identity, so that a rewritten/interned node can be looked
// up consistently across the registry.
func (n *Node) ID() uint64 { return n.id }

// IsBool reports whether n carries a boolean value rather than a bit-vector.
func (n *Node) IsBool() bool { return n.Kind.IsRelation() || (n.Kind == KindConstant && n.Width == 0) }

// ConstantValue returns the node's constant value and true if n is a
// KindConstant node.
func (n *Node) ConstantValue() (*big.Int, bool) {
	if n.Kind != KindConstant {
		return nil, false
	}
	return n.Imm.(*big.Int), true
}

// ExtractRange returns the inclusive, MSB-first (first, last) bit range an
// Extract node reads. It panics if n is not a KindExtract node. This is
// the one place outside the builder that needs the unexported extractBits
// payload, so it is exposed as a narrow accessor rather than making the
// field public.
func ExtractRange(n *Node) (first, last int) {
	eb := n.Imm.(extractBits)
	return eb.first, eb.last
}

// ConstantBool reports whether n is a folded boolean constant and, if so,
// its value. Boolean constants are represented as width-0 KindConstant
// nodes with Imm 0 or 1, matching the "constants fold into a canonical node
// per (value,bits)" invariant in spec §3 generalized to bool's width 0.
func (n *Node) ConstantBool() (bool, bool) {
	if n.Kind != KindConstant || n.Width != 0 {
		return false, false
	}
	return n.Imm.(*big.Int).Sign() != 0, true
}
