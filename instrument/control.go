package instrument

import (
	"fmt"

	"github.com/symcc-go/symcc/ssair"
)

// execSelect implements spec §4.5's "select | Push a path constraint on the
// condition (with polarity = concrete condition value) and propagate the
// expression of the chosen side — identical to a branch."
func (in *Interpreter) execSelect(cond, thenCell, elseCell Cell) Cell {
	taken := cond.Concrete != 0
	in.RT.PushPathConstraint(cond.Sym, taken, in.nextSite())
	if taken {
		return thenCell
	}
	return elseCell
}

// execTerminator dispatches a block's terminator instruction, returning the
// block to run next, or (when done) the function's return value.
func (in *Interpreter) execTerminator(inst *ssair.Value, env map[*ssair.Value]Cell) (next *ssair.Block, result Cell, done bool, err error) {
	switch inst.Op {
	case ssair.OpRet:
		// spec §4.5 "return | set_return_expression(expr(retval) ?? null)"
		var retval Cell
		if len(inst.Args) > 0 {
			retval = env[inst.Args[0]]
		}
		in.RT.SetReturnExpression(retval.Sym)
		return nil, retval, true, nil

	case ssair.OpUnreachable:
		return nil, Cell{}, false, fmt.Errorf("instrument: reached an unreachable instruction")

	case ssair.OpJmp:
		return inst.Imm.(*ssair.Block), Cell{}, false, nil

	case ssair.OpBr:
		// spec §4.5 "branch (conditional) | push_path_constraint(cond_expr,
		// taken=concrete_cond, site_id)"
		cond := env[inst.Args[0]]
		targets := inst.Imm.([2]*ssair.Block)
		taken := cond.Concrete != 0
		in.RT.PushPathConstraint(cond.Sym, taken, in.nextSite())
		if taken {
			return targets[0], Cell{}, false, nil
		}
		return targets[1], Cell{}, false, nil

	case ssair.OpIndirectBr:
		// spec §4.5 "indirectbr | tryAlternative on the address"
		addr := env[inst.Args[0]]
		in.RT.TryAlternative(addr.Sym, addr.Concrete, PointerBits, in.nextSite())
		return inst.Imm.(*ssair.Block), Cell{}, false, nil

	case ssair.OpSwitch:
		return in.execSwitch(inst, env), Cell{}, false, nil

	case ssair.OpResume:
		// spec §4.5 "landingpad / resume | Skip (exception handling is out
		// of scope)": resume has no unwind target this interpreter can
		// follow, so it ends the current path quietly (like ret with no
		// value) instead of surfacing an error.
		return nil, Cell{}, true, nil

	default:
		return nil, Cell{}, false, fmt.Errorf("instrument: unhandled terminator op %v", inst.Op)
	}
}

// execSwitch implements spec §4.5's switch row: "If the value expression is
// null, skip. Otherwise... iterate over cases and for each push
// value_expr == case_value with polarity = is this the taken case."
func (in *Interpreter) execSwitch(inst *ssair.Value, env map[*ssair.Value]Cell) *ssair.Block {
	val := env[inst.Args[0]]
	tbl := inst.Imm.(*ssair.SwitchTable)

	matched := tbl.Default
	for _, c := range tbl.Cases {
		if val.Concrete == c.Value {
			matched = c.Target
		}
	}
	if val.Sym == nil {
		return matched
	}

	bits := uint32(inst.Args[0].Type.Bits)
	for _, c := range tbl.Cases {
		eq := in.RT.BuildEq(val.Sym, val.Concrete, nil, c.Value, bits)
		in.RT.PushPathConstraint(eq, c.Target == matched, in.nextSite())
	}
	return matched
}
