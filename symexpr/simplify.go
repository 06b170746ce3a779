package symexpr

import "math/big"

// Simplify performs bottom-up constant folding over n, the same depth-first
// rewrite shape as expr.Rewrite: each node's children are simplified first,
// then the node itself is folded if every child collapsed to a constant.
// It never consults the solver; anything it cannot fold it returns
// unchanged. This is what spec §4.6 step 2 calls when it says
// push_path_constraint "simplifies c" before deciding whether the branch
// is trivially feasible.
func (b *Builder) Simplify(n *Node) *Node {
	return b.simplify(n, make(map[uint64]*Node))
}

func (b *Builder) simplify(n *Node, memo map[uint64]*Node) *Node {
	if n == nil {
		return nil
	}
	if v, ok := memo[n.id]; ok {
		return v
	}
	args := make([]*Node, len(n.Args))
	changed := false
	for i, a := range n.Args {
		args[i] = b.simplify(a, memo)
		if args[i] != a {
			changed = true
		}
	}
	out := b.foldOrRebuild(n, args, changed)
	memo[n.id] = out
	return out
}

func asConst(n *Node) (*big.Int, bool) {
	if n.Kind != KindConstant {
		return nil, false
	}
	return n.Imm.(*big.Int), true
}

// foldOrRebuild tries to constant-fold n given its (already simplified)
// children; if folding does not apply it rebuilds n with the new children
// only when they actually changed, to avoid needless allocation churn.
func (b *Builder) foldOrRebuild(n *Node, args []*Node, changed bool) *Node {
	allConst := true
	cargs := make([]*big.Int, len(args))
	for i, a := range args {
		v, ok := asConst(a)
		if !ok {
			allConst = false
			break
		}
		cargs[i] = v
	}

	if allConst {
		argWidths := make([]uint32, len(args))
		for i, a := range args {
			argWidths[i] = a.Width
		}
		if folded, ok := foldConstant(b, n.Kind, n.Width, n.Imm, cargs, argWidths); ok {
			return folded
		}
	}

	switch n.Kind {
	case KindIte:
		if cond, ok := n.ConstantBool(); args[0].Kind == KindConstant && ok {
			if cond {
				return args[1]
			}
			return args[2]
		}
		if boolv, ok := args[0].ConstantBool(); ok {
			if boolv {
				return args[1]
			}
			return args[2]
		}
	case KindBoolAnd:
		if v, ok := args[0].ConstantBool(); ok {
			if !v {
				return b.ConstantBool(false)
			}
			return args[1]
		}
		if v, ok := args[1].ConstantBool(); ok {
			if !v {
				return b.ConstantBool(false)
			}
			return args[0]
		}
	case KindBoolOr:
		if v, ok := args[0].ConstantBool(); ok {
			if v {
				return b.ConstantBool(true)
			}
			return args[1]
		}
		if v, ok := args[1].ConstantBool(); ok {
			if v {
				return b.ConstantBool(true)
			}
			return args[0]
		}
	}

	if !changed {
		return n
	}
	if n.Imm != nil {
		return b.freshImm(n.Kind, n.Width, n.Imm, args...)
	}
	return b.fresh(n.Kind, n.Width, args...)
}

// foldConstant implements the constant-folding table for nodes whose
// operands are all already KindConstant. It returns ok=false for anything
// left to the solver (notably float ops, which stay unfolded here since
// correct IEEE-754 rounding is the solver backend's job per spec's
// "floating-point support is optional" non-goal).
func foldConstant(b *Builder, kind Kind, width uint32, imm interface{}, args []*big.Int, argWidths []uint32) (*Node, bool) {
	switch kind {
	case KindAdd:
		return b.Constant(new(big.Int).Add(args[0], args[1]), width), true
	case KindSub:
		return b.Constant(new(big.Int).Sub(args[0], args[1]), width), true
	case KindMul:
		return b.Constant(new(big.Int).Mul(args[0], args[1]), width), true
	case KindUDiv:
		if args[1].Sign() == 0 {
			return nil, false
		}
		return b.Constant(new(big.Int).Div(args[0], args[1]), width), true
	case KindURem:
		if args[1].Sign() == 0 {
			return nil, false
		}
		return b.Constant(new(big.Int).Mod(args[0], args[1]), width), true
	case KindSDiv, KindSRem:
		a := signed(args[0], width)
		c := signed(args[1], width)
		if c.Sign() == 0 {
			return nil, false
		}
		q, r := new(big.Int).QuoRem(a, c, new(big.Int))
		if kind == KindSDiv {
			return b.Constant(q, width), true
		}
		return b.Constant(r, width), true
	case KindShl:
		return b.Constant(new(big.Int).Lsh(args[0], uint(args[1].Uint64())), width), true
	case KindLShr:
		return b.Constant(new(big.Int).Rsh(args[0], uint(args[1].Uint64())), width), true
	case KindAShr:
		a := signed(args[0], width)
		return b.Constant(new(big.Int).Rsh(a, uint(args[1].Uint64())), width), true
	case KindAnd:
		return b.Constant(new(big.Int).And(args[0], args[1]), width), true
	case KindOr:
		return b.Constant(new(big.Int).Or(args[0], args[1]), width), true
	case KindXor:
		return b.Constant(new(big.Int).Xor(args[0], args[1]), width), true
	case KindNeg:
		return b.Constant(new(big.Int).Neg(args[0]), width), true
	case KindNot:
		mAll := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
		return b.Constant(new(big.Int).Xor(args[0], mAll), width), true
	case KindEq:
		return b.ConstantBool(args[0].Cmp(args[1]) == 0), true
	case KindNe:
		return b.ConstantBool(args[0].Cmp(args[1]) != 0), true
	case KindULt:
		return b.ConstantBool(args[0].Cmp(args[1]) < 0), true
	case KindULe:
		return b.ConstantBool(args[0].Cmp(args[1]) <= 0), true
	case KindUGt:
		return b.ConstantBool(args[0].Cmp(args[1]) > 0), true
	case KindUGe:
		return b.ConstantBool(args[0].Cmp(args[1]) >= 0), true
	case KindSLt, KindSLe, KindSGt, KindSGe:
		a := signed(args[0], argWidths[0])
		c := signed(args[1], argWidths[1])
		cmp := a.Cmp(c)
		switch kind {
		case KindSLt:
			return b.ConstantBool(cmp < 0), true
		case KindSLe:
			return b.ConstantBool(cmp <= 0), true
		case KindSGt:
			return b.ConstantBool(cmp > 0), true
		default:
			return b.ConstantBool(cmp >= 0), true
		}
	case KindBoolAnd:
		return b.ConstantBool(args[0].Sign() != 0 && args[1].Sign() != 0), true
	case KindBoolOr:
		return b.ConstantBool(args[0].Sign() != 0 || args[1].Sign() != 0), true
	case KindBoolXor:
		return b.ConstantBool((args[0].Sign() != 0) != (args[1].Sign() != 0)), true
	case KindBoolNot:
		return b.ConstantBool(args[0].Sign() == 0), true
	case KindConcat:
		hi := new(big.Int).Lsh(args[0], uint(argWidths[1]))
		return b.Constant(new(big.Int).Or(hi, args[1]), width), true
	case KindExtract:
		eb := imm.(extractBits)
		v := args[0]
		shifted := new(big.Int).Rsh(v, uint(eb.last))
		w := uint32(eb.first - eb.last + 1)
		return b.Constant(shifted, w), true
	case KindSext:
		a := signed(args[0], argWidths[0])
		return b.Constant(a, width), true
	case KindZext:
		return b.Constant(args[0], width), true
	case KindTrunc:
		return b.Constant(args[0], width), true
	case KindBoolToBit:
		return b.Constant(args[0], 1), true
	case KindBitToBool:
		return b.ConstantBool(args[0].Sign() != 0), true
	}
	return nil, false
}

// signed reinterprets the unsigned canonical representative v (width bits)
// as a two's-complement signed value.
func signed(v *big.Int, width uint32) *big.Int {
	half := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	if v.Cmp(half) < 0 {
		return new(big.Int).Set(v)
	}
	full := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return new(big.Int).Sub(v, full)
}
