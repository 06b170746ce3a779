package instrument

import "github.com/symcc-go/symcc/ssair"

// GEPStep is one level of a GEP chain (spec §4.5's GEP row): either a
// compile-time-constant struct member offset, or an array/pointer index
// that multiplies a runtime value by ElemSize. OpGEP.Imm is a []GEPStep;
// OpGEP.Args is [base, idx_0, idx_1, ...] where idx_i corresponds, in
// order, to the array-kind steps only (struct steps consume no operand,
// matching how a constant field index never needs a runtime value).
type GEPStep struct {
	ElemSize     int // >0: array/pointer index step, consumes one Args entry
	StructOffset int // used only when ElemSize == 0
}

// EmitGEP appends a GEP instruction computing base + sum(steps), threading
// indices positionally to their array-kind steps.
func EmitGEP(fn *ssair.Function, b *ssair.Block, base *ssair.Value, steps []GEPStep, indices []*ssair.Value) *ssair.Value {
	args := make([]*ssair.Value, 0, len(indices)+1)
	args = append(args, base)
	args = append(args, indices...)
	return fn.Emit(b, ssair.OpGEP, ssair.Pointer(), args, steps)
}

// execGEP implements spec §4.5's GEP row: walk the struct/array step chain,
// summing a symbolic address alongside the concrete one; if every step and
// index is concrete, runtime's own Build* short-circuiting leaves the
// result's Sym nil, the same as "if every operand is concrete, emit
// nothing."
func (in *Interpreter) execGEP(inst *ssair.Value, env map[*ssair.Value]Cell) Cell {
	steps := inst.Imm.([]GEPStep)
	base := env[inst.Args[0]]
	addrConcrete := base.Concrete
	addrSym := base.Sym

	argIdx := 1
	for _, step := range steps {
		if step.ElemSize > 0 {
			idx := env[inst.Args[argIdx]]
			argIdx++
			idxSymWide := in.RT.BuildZext(idx.Sym, PointerBits)
			offsetConcrete := idx.Concrete * uint64(step.ElemSize)
			offsetSym := in.RT.BuildMul(idxSymWide, idx.Concrete, nil, uint64(step.ElemSize), PointerBits)
			addrSym = in.RT.BuildAdd(addrSym, addrConcrete, offsetSym, offsetConcrete, PointerBits)
			addrConcrete += offsetConcrete
		} else {
			addrSym = in.RT.BuildAdd(addrSym, addrConcrete, nil, uint64(step.StructOffset), PointerBits)
			addrConcrete += uint64(step.StructOffset)
		}
	}
	return Cell{Concrete: addrConcrete, Sym: addrSym}
}
