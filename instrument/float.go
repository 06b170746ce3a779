package instrument

import (
	"math"

	"github.com/symcc-go/symcc/ssair"
)

// evalFloatBinary/evalFloatCompare concretely evaluate float arithmetic and
// comparisons (bits selects float32 vs double), concrete-only per the
// comment on execBinary's float case in arith.go.
func evalFloatBinary(op ssair.Op, lc, rc uint64, bits uint32) uint64 {
	if bits == 32 {
		l, r := math.Float32frombits(uint32(lc)), math.Float32frombits(uint32(rc))
		var res float32
		switch op {
		case ssair.OpFAdd:
			res = l + r
		case ssair.OpFSub:
			res = l - r
		case ssair.OpFMul:
			res = l * r
		case ssair.OpFDiv:
			res = l / r
		}
		return uint64(math.Float32bits(res))
	}
	l, r := math.Float64frombits(lc), math.Float64frombits(rc)
	var res float64
	switch op {
	case ssair.OpFAdd:
		res = l + r
	case ssair.OpFSub:
		res = l - r
	case ssair.OpFMul:
		res = l * r
	case ssair.OpFDiv:
		res = l / r
	}
	return math.Float64bits(res)
}

func evalFloatCompare(pred ssair.Predicate, lc, rc uint64, bits uint32) bool {
	var l, r float64
	if bits == 32 {
		l, r = float64(math.Float32frombits(uint32(lc))), float64(math.Float32frombits(uint32(rc)))
	} else {
		l, r = math.Float64frombits(lc), math.Float64frombits(rc)
	}
	switch pred {
	case ssair.PredEQ:
		return l == r
	case ssair.PredNE:
		return l != r
	case ssair.PredSLT, ssair.PredULT:
		return l < r
	case ssair.PredSLE, ssair.PredULE:
		return l <= r
	case ssair.PredSGT, ssair.PredUGT:
		return l > r
	case ssair.PredSGE, ssair.PredUGE:
		return l >= r
	default:
		return false
	}
}
