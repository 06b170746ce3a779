package instrument

import (
	"fmt"

	"github.com/symcc-go/symcc/ssair"
)

// Run interprets fn from its entry block, returning the Cell set_return_
// expression recorded for the taken ret. args are the concolic parameter
// values; for a non-main function reached this way directly (rather than
// through execCall), any argument left concrete here is still given a
// chance to pick up a symbolic shadow via GetParameterExpression, mirroring
// spec §4.5 step 2's symbolic-arguments prologue.
func (in *Interpreter) Run(fn *ssair.Function, args []Cell) (Cell, error) {
	env := make(map[*ssair.Value]Cell, len(fn.Blocks)*4)
	for i, p := range fn.Params {
		var c Cell
		if i < len(args) {
			c = args[i]
		}
		if !fn.IsMain && c.Sym == nil {
			c.Sym = in.RT.GetParameterExpression(i)
		}
		env[p.Value] = c
	}

	var prev *ssair.Block
	b := fn.Entry
	for {
		next, result, done, err := in.runBlock(fn, b, prev, env)
		if err != nil {
			return Cell{}, fmt.Errorf("instrument: running %s: %w", fn.Name, err)
		}
		if done {
			return result, nil
		}
		prev, b = b, next
	}
}

// runBlock executes b's instructions in order: first resolving any leading
// PHIs against the edge the interpreter actually arrived on (prev), since a
// concolic interpreter always knows the concrete control-flow path taken
// and so never needs a separate compile-time PHI-finalization pass, then
// the rest of the block, stopping at its terminator.
func (in *Interpreter) runBlock(fn *ssair.Function, b, prev *ssair.Block, env map[*ssair.Value]Cell) (next *ssair.Block, result Cell, done bool, err error) {
	for _, inst := range b.Instrs {
		if inst.Op != ssair.OpPhi {
			continue
		}
		preds, vals := ssair.Incoming(inst)
		for i, p := range preds {
			if p == prev {
				env[inst] = env[vals[i]]
				break
			}
		}
	}

	in.notifyBlock()

	for _, inst := range b.Instrs {
		switch {
		case inst.Op == ssair.OpPhi:
			continue
		case inst.IsTerminator():
			return in.execTerminator(inst, env)
		default:
			c, err := in.execInstr(fn, inst, env)
			if err != nil {
				return nil, Cell{}, false, err
			}
			env[inst] = c
		}
	}
	return nil, Cell{}, false, fmt.Errorf("instrument: block %q has no terminator", b.Name)
}

// execInstr dispatches every non-terminator, non-phi opcode to the
// instruction-family helper that implements its spec §4.5 row.
func (in *Interpreter) execInstr(fn *ssair.Function, inst *ssair.Value, env map[*ssair.Value]Cell) (Cell, error) {
	arg := func(i int) Cell { return env[inst.Args[i]] }

	switch inst.Op {
	case ssair.OpAdd, ssair.OpSub, ssair.OpMul, ssair.OpUDiv, ssair.OpSDiv, ssair.OpURem, ssair.OpSRem,
		ssair.OpAnd, ssair.OpOr, ssair.OpXor, ssair.OpShl, ssair.OpLShr, ssair.OpAShr,
		ssair.OpFAdd, ssair.OpFSub, ssair.OpFMul, ssair.OpFDiv:
		return in.execBinary(inst, arg(0), arg(1))

	case ssair.OpICmp, ssair.OpFCmp:
		return in.execCompare(inst, arg(0), arg(1))

	case ssair.OpSExt, ssair.OpZExt, ssair.OpTrunc, ssair.OpBitcast, ssair.OpIntToPtr, ssair.OpPtrToInt,
		ssair.OpSIToFP, ssair.OpUIToFP, ssair.OpFPToSI, ssair.OpFPToUI, ssair.OpFPExt, ssair.OpFPTrunc:
		return in.execCast(inst, arg(0))

	case ssair.OpLoad:
		return in.execLoad(inst, arg(0)), nil
	case ssair.OpStore:
		in.execStore(inst, arg(0), arg(1))
		return Cell{}, nil
	case ssair.OpGEP:
		return in.execGEP(inst, env), nil
	case ssair.OpAlloca:
		return in.execAlloca(inst), nil

	case ssair.OpSelect:
		return in.execSelect(arg(0), arg(1), arg(2)), nil

	case ssair.OpCall, ssair.OpInvoke:
		return in.execCall(inst, env)

	case ssair.OpInsertValue:
		return in.execInsertValue(inst, arg(0), arg(1)), nil
	case ssair.OpExtractValue:
		return in.execExtractValue(inst, arg(0)), nil

	case ssair.OpLandingPad:
		// spec §4.5 "landingpad / resume | Skip (exception handling is out
		// of scope)": emit nothing symbolic and hand back a purely concrete
		// zero-value cell, rather than treating the opcode as an error.
		return Cell{}, nil

	case ssair.OpUnknown:
		return Cell{}, fmt.Errorf("instrument: unrecognized opcode passed through by the front end")

	default:
		return Cell{}, fmt.Errorf("instrument: unhandled instruction op %v", inst.Op)
	}
}
