package instrument

import (
	"fmt"
	"math"

	"github.com/symcc-go/symcc/ssair"
)

// execCast implements spec §4.5's cast rows: sext/zext/trunc, bitcast
// (int<->float via bits_to_float/float_to_bits, pointer<->pointer
// unchanged), int<->ptr (unchanged), the si/ui-to-fp and fp-to-si/ui
// family, and fpext/fptrunc.
func (in *Interpreter) execCast(inst *ssair.Value, src Cell) (Cell, error) {
	srcBits := uint32(inst.Args[0].Type.Bits)
	dstBits := uint32(inst.Type.Bits)

	switch inst.Op {
	case ssair.OpSExt:
		sym := src.Sym
		if srcBits == 1 {
			sym = in.RT.BuildBoolToBit(sym)
		}
		return Cell{maskU64(uint64(signExtend(src.Concrete, srcBits)), dstBits), in.RT.BuildSext(sym, dstBits)}, nil
	case ssair.OpZExt:
		sym := src.Sym
		if srcBits == 1 {
			sym = in.RT.BuildBoolToBit(sym)
		}
		return Cell{maskU64(src.Concrete, dstBits), in.RT.BuildZext(sym, dstBits)}, nil
	case ssair.OpTrunc:
		return Cell{maskU64(src.Concrete, dstBits), in.RT.BuildTrunc(src.Sym, dstBits)}, nil
	case ssair.OpBitcast:
		if inst.Type.IsPointer() && inst.Args[0].Type.IsPointer() {
			return src, nil
		}
		// int<->float bit-pattern reinterpretation: the concrete bits are
		// already the right representation either way, only the symbolic
		// side needs nothing extra since SymExpr stores raw bit patterns.
		return src, nil
	case ssair.OpIntToPtr, ssair.OpPtrToInt:
		return src, nil // propagate the expression unchanged, per spec
	case ssair.OpSIToFP:
		return Cell{floatBitsFromInt(signExtend(src.Concrete, srcBits), dstBits), in.RT.BuildSIToFloat(src.Sym, dstBits)}, nil
	case ssair.OpUIToFP:
		return Cell{floatBitsFromUint(src.Concrete, dstBits), in.RT.BuildUIToFloat(src.Sym, dstBits)}, nil
	case ssair.OpFPToSI:
		return Cell{maskU64(uint64(intFromFloatBits(src.Concrete, srcBits)), dstBits), in.RT.BuildFloatToSInt(src.Sym, dstBits)}, nil
	case ssair.OpFPToUI:
		return Cell{maskU64(uintFromFloatBits(src.Concrete, srcBits), dstBits), in.RT.BuildFloatToUInt(src.Sym, dstBits)}, nil
	case ssair.OpFPExt:
		f := math.Float32frombits(uint32(src.Concrete))
		return Cell{math.Float64bits(float64(f)), in.RT.BuildFPExt(src.Sym, dstBits)}, nil
	case ssair.OpFPTrunc:
		f := math.Float64frombits(src.Concrete)
		return Cell{uint64(math.Float32bits(float32(f))), in.RT.BuildFPTrunc(src.Sym, dstBits)}, nil
	default:
		return Cell{}, fmt.Errorf("instrument: unhandled cast op %v", inst.Op)
	}
}

func floatBitsFromInt(v int64, bits uint32) uint64 {
	if bits == 32 {
		return uint64(math.Float32bits(float32(v)))
	}
	return math.Float64bits(float64(v))
}

func floatBitsFromUint(v uint64, bits uint32) uint64 {
	if bits == 32 {
		return uint64(math.Float32bits(float32(v)))
	}
	return math.Float64bits(float64(v))
}

func intFromFloatBits(bits uint64, floatBits uint32) int64 {
	if floatBits == 32 {
		return int64(math.Float32frombits(uint32(bits)))
	}
	return int64(math.Float64frombits(bits))
}

func uintFromFloatBits(bits uint64, floatBits uint32) uint64 {
	if floatBits == 32 {
		return uint64(math.Float32frombits(uint32(bits)))
	}
	return uint64(math.Float64frombits(bits))
}
