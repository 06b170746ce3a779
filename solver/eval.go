package solver

import (
	"fmt"
	"math/big"

	"github.com/symcc-go/symcc/symexpr"
)

// eval concretely evaluates n under assign, treating any InputByte offset
// missing from assign as 0. It mirrors symexpr's constant-folding table
// (see symexpr.foldConstant) but operates over an arbitrary assignment
// instead of requiring every operand to already be a folded constant; this
// is what lets the simple backend score candidate assignments during its
// local search in simple.go.
func eval(n *symexpr.Node, assign Model) (*big.Int, error) {
	if n == nil {
		return nil, fmt.Errorf("solver: eval: nil expression")
	}
	switch n.Kind {
	case symexpr.KindConstant:
		v, _ := n.ConstantValue()
		return v, nil
	case symexpr.KindInputByte:
		off := n.Imm.(int)
		return big.NewInt(int64(assign[off])), nil
	}

	args := make([]*big.Int, len(n.Args))
	widths := make([]uint32, len(n.Args))
	for i, a := range n.Args {
		v, err := eval(a, assign)
		if err != nil {
			return nil, err
		}
		args[i] = v
		widths[i] = a.Width
	}

	switch n.Kind {
	case symexpr.KindAdd:
		return mask(new(big.Int).Add(args[0], args[1]), n.Width), nil
	case symexpr.KindSub:
		return mask(new(big.Int).Sub(args[0], args[1]), n.Width), nil
	case symexpr.KindMul:
		return mask(new(big.Int).Mul(args[0], args[1]), n.Width), nil
	case symexpr.KindUDiv:
		if args[1].Sign() == 0 {
			return nil, fmt.Errorf("solver: eval: udiv by zero")
		}
		return new(big.Int).Div(args[0], args[1]), nil
	case symexpr.KindURem:
		if args[1].Sign() == 0 {
			return nil, fmt.Errorf("solver: eval: urem by zero")
		}
		return new(big.Int).Mod(args[0], args[1]), nil
	case symexpr.KindSDiv, symexpr.KindSRem:
		a := toSigned(args[0], widths[0])
		c := toSigned(args[1], widths[1])
		if c.Sign() == 0 {
			return nil, fmt.Errorf("solver: eval: division by zero")
		}
		q, r := new(big.Int).QuoRem(a, c, new(big.Int))
		if n.Kind == symexpr.KindSDiv {
			return mask(q, n.Width), nil
		}
		return mask(r, n.Width), nil
	case symexpr.KindShl:
		return mask(new(big.Int).Lsh(args[0], uint(args[1].Uint64())), n.Width), nil
	case symexpr.KindLShr:
		return mask(new(big.Int).Rsh(args[0], uint(args[1].Uint64())), n.Width), nil
	case symexpr.KindAShr:
		a := toSigned(args[0], widths[0])
		return mask(new(big.Int).Rsh(a, uint(args[1].Uint64())), n.Width), nil
	case symexpr.KindAnd:
		return new(big.Int).And(args[0], args[1]), nil
	case symexpr.KindOr:
		return new(big.Int).Or(args[0], args[1]), nil
	case symexpr.KindXor:
		return new(big.Int).Xor(args[0], args[1]), nil
	case symexpr.KindNeg:
		return mask(new(big.Int).Neg(args[0]), n.Width), nil
	case symexpr.KindNot:
		full := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(n.Width)), big.NewInt(1))
		return new(big.Int).Xor(args[0], full), nil
	case symexpr.KindEq:
		return boolInt(args[0].Cmp(args[1]) == 0), nil
	case symexpr.KindNe:
		return boolInt(args[0].Cmp(args[1]) != 0), nil
	case symexpr.KindULt:
		return boolInt(args[0].Cmp(args[1]) < 0), nil
	case symexpr.KindULe:
		return boolInt(args[0].Cmp(args[1]) <= 0), nil
	case symexpr.KindUGt:
		return boolInt(args[0].Cmp(args[1]) > 0), nil
	case symexpr.KindUGe:
		return boolInt(args[0].Cmp(args[1]) >= 0), nil
	case symexpr.KindSLt, symexpr.KindSLe, symexpr.KindSGt, symexpr.KindSGe:
		a := toSigned(args[0], widths[0])
		c := toSigned(args[1], widths[1])
		cmp := a.Cmp(c)
		switch n.Kind {
		case symexpr.KindSLt:
			return boolInt(cmp < 0), nil
		case symexpr.KindSLe:
			return boolInt(cmp <= 0), nil
		case symexpr.KindSGt:
			return boolInt(cmp > 0), nil
		default:
			return boolInt(cmp >= 0), nil
		}
	case symexpr.KindBoolAnd:
		return boolInt(args[0].Sign() != 0 && args[1].Sign() != 0), nil
	case symexpr.KindBoolOr:
		return boolInt(args[0].Sign() != 0 || args[1].Sign() != 0), nil
	case symexpr.KindBoolXor:
		return boolInt((args[0].Sign() != 0) != (args[1].Sign() != 0)), nil
	case symexpr.KindBoolNot:
		return boolInt(args[0].Sign() == 0), nil
	case symexpr.KindIte:
		if args[0].Sign() != 0 {
			return args[1], nil
		}
		return args[2], nil
	case symexpr.KindConcat:
		hi := new(big.Int).Lsh(args[0], uint(widths[1]))
		return new(big.Int).Or(hi, args[1]), nil
	case symexpr.KindExtract:
		return evalExtract(n, args[0]), nil
	case symexpr.KindSext:
		return mask(toSigned(args[0], widths[0]), n.Width), nil
	case symexpr.KindZext:
		return args[0], nil
	case symexpr.KindTrunc:
		return mask(args[0], n.Width), nil
	case symexpr.KindBoolToBit:
		return args[0], nil
	case symexpr.KindBitToBool:
		return boolInt(args[0].Sign() != 0), nil
	case symexpr.KindFAdd, symexpr.KindFSub, symexpr.KindFMul, symexpr.KindFDiv, symexpr.KindFRem, symexpr.KindFNeg,
		symexpr.KindFOEq, symexpr.KindFONe, symexpr.KindFOLt, symexpr.KindFOLe, symexpr.KindFOGt, symexpr.KindFOGe,
		symexpr.KindFUEq, symexpr.KindFUNe, symexpr.KindFULt, symexpr.KindFULe, symexpr.KindFUGt, symexpr.KindFUGe,
		symexpr.KindSIToFloat, symexpr.KindUIToFloat, symexpr.KindFloatToSInt, symexpr.KindFloatToUInt,
		symexpr.KindFPExt, symexpr.KindFPTrunc:
		return nil, ErrUnsupportedFloat
	}
	return nil, fmt.Errorf("solver: eval: unhandled kind %v", n.Kind)
}

func mask(v *big.Int, width uint32) *big.Int {
	if width == 0 {
		return v
	}
	m := new(big.Int).Lsh(big.NewInt(1), uint(width))
	out := new(big.Int).Mod(v, m)
	if out.Sign() < 0 {
		out.Add(out, m)
	}
	return out
}

func toSigned(v *big.Int, width uint32) *big.Int {
	if width == 0 {
		return v
	}
	half := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	if v.Cmp(half) < 0 {
		return new(big.Int).Set(v)
	}
	full := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return new(big.Int).Sub(v, full)
}

func boolInt(v bool) *big.Int {
	if v {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

// evalExtract is split out because Node.Imm's extractBits type is
// unexported; Extract nodes are only ever produced by symexpr.Builder, so
// we recover the bit range through the builder's exported helper instead
// of reaching into the unexported field.
func evalExtract(n *symexpr.Node, v *big.Int) *big.Int {
	first, last := symexpr.ExtractRange(n)
	shifted := new(big.Int).Rsh(v, uint(last))
	return mask(shifted, uint32(first-last+1))
}

// inputOffsets collects the set of InputByte offsets n's subtree depends
// on, used to scope the local search in simple.go to the bytes that can
// actually affect the formula.
func inputOffsets(n *symexpr.Node, out map[int]bool) {
	if n == nil {
		return
	}
	if n.Kind == symexpr.KindInputByte {
		out[n.Imm.(int)] = true
		return
	}
	for _, a := range n.Args {
		inputOffsets(a, out)
	}
}
