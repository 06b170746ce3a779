package instrument

import (
	"fmt"

	"github.com/symcc-go/symcc/ssair"
)

// execCompare implements spec §4.5's "icmp/fcmp | Dispatch through a
// predicate→builder table; emits bool-valued expression" row.
func (in *Interpreter) execCompare(inst *ssair.Value, lhs, rhs Cell) (Cell, error) {
	pred := inst.Imm.(ssair.Predicate)

	if inst.Op == ssair.OpFCmp {
		bits := uint32(inst.Args[0].Type.Bits)
		return Cell{Concrete: boolU64(evalFloatCompare(pred, lhs.Concrete, rhs.Concrete, bits))}, nil
	}

	bits := uint32(inst.Args[0].Type.Bits)
	var concrete bool

	switch pred {
	case ssair.PredEQ:
		concrete = maskU64(lhs.Concrete, bits) == maskU64(rhs.Concrete, bits)
		return Cell{boolU64(concrete), in.RT.BuildEq(lhs.Sym, lhs.Concrete, rhs.Sym, rhs.Concrete, bits)}, nil
	case ssair.PredNE:
		concrete = maskU64(lhs.Concrete, bits) != maskU64(rhs.Concrete, bits)
		return Cell{boolU64(concrete), in.RT.BuildNe(lhs.Sym, lhs.Concrete, rhs.Sym, rhs.Concrete, bits)}, nil
	case ssair.PredULT:
		concrete = maskU64(lhs.Concrete, bits) < maskU64(rhs.Concrete, bits)
		return Cell{boolU64(concrete), in.RT.BuildULt(lhs.Sym, lhs.Concrete, rhs.Sym, rhs.Concrete, bits)}, nil
	case ssair.PredULE:
		concrete = maskU64(lhs.Concrete, bits) <= maskU64(rhs.Concrete, bits)
		return Cell{boolU64(concrete), in.RT.BuildULe(lhs.Sym, lhs.Concrete, rhs.Sym, rhs.Concrete, bits)}, nil
	case ssair.PredUGT:
		concrete = maskU64(lhs.Concrete, bits) > maskU64(rhs.Concrete, bits)
		return Cell{boolU64(concrete), in.RT.BuildUGt(lhs.Sym, lhs.Concrete, rhs.Sym, rhs.Concrete, bits)}, nil
	case ssair.PredUGE:
		concrete = maskU64(lhs.Concrete, bits) >= maskU64(rhs.Concrete, bits)
		return Cell{boolU64(concrete), in.RT.BuildUGe(lhs.Sym, lhs.Concrete, rhs.Sym, rhs.Concrete, bits)}, nil
	case ssair.PredSLT:
		concrete = signExtend(lhs.Concrete, bits) < signExtend(rhs.Concrete, bits)
		return Cell{boolU64(concrete), in.RT.BuildSLt(lhs.Sym, lhs.Concrete, rhs.Sym, rhs.Concrete, bits)}, nil
	case ssair.PredSLE:
		concrete = signExtend(lhs.Concrete, bits) <= signExtend(rhs.Concrete, bits)
		return Cell{boolU64(concrete), in.RT.BuildSLe(lhs.Sym, lhs.Concrete, rhs.Sym, rhs.Concrete, bits)}, nil
	case ssair.PredSGT:
		concrete = signExtend(lhs.Concrete, bits) > signExtend(rhs.Concrete, bits)
		return Cell{boolU64(concrete), in.RT.BuildSGt(lhs.Sym, lhs.Concrete, rhs.Sym, rhs.Concrete, bits)}, nil
	case ssair.PredSGE:
		concrete = signExtend(lhs.Concrete, bits) >= signExtend(rhs.Concrete, bits)
		return Cell{boolU64(concrete), in.RT.BuildSGe(lhs.Sym, lhs.Concrete, rhs.Sym, rhs.Concrete, bits)}, nil
	default:
		return Cell{}, fmt.Errorf("instrument: unhandled predicate %v", pred)
	}
}
