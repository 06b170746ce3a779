package runtime

import "github.com/symcc-go/symcc/symexpr"

// ReadMemory/WriteMemory/Memcpy/Memmove/Memset forward directly to shadow
// memory (spec §4.1/§4.3); they are exposed on Runtime rather than
// requiring every caller to reach through rt.Memory so the ABI surface
// reads the same way the spec table lists it.
func (rt *Runtime) ReadMemory(addr uint64, n int, littleEndian bool, concreteBytes []byte) *symexpr.Node {
	return rt.Memory.ReadMemory(addr, n, littleEndian, concreteBytes)
}

func (rt *Runtime) WriteMemory(addr uint64, n int, expr *symexpr.Node, littleEndian bool) {
	rt.Memory.WriteMemory(addr, n, expr, littleEndian)
}

func (rt *Runtime) Memcpy(dst, src uint64, n int)  { rt.Memory.Memcpy(dst, src, n) }
func (rt *Runtime) Memmove(dst, src uint64, n int) { rt.Memory.Memmove(dst, src, n) }
func (rt *Runtime) Memset(dst uint64, val *symexpr.Node, n int) {
	rt.Memory.Memset(dst, val, n)
}

// TryAlternative implements spec §4.4 step 1 / §4.5's load/store/indirectbr
// rows: when a pointer or size argument carries a symbolic expression, it
// asserts the expression equals its observed concrete value and asks the
// solver for a diverging model, the same way a branch condition does,
// except the "branch" here is implicit (the fact that the address/size
// equals what was actually used). siteID identifies the call site for
// coverage exactly like push_path_constraint's site_id.
//
// A nil expr (the address/size was concrete) is a no-op, matching every
// other short-circuit-shaped entry point in this package.
func (rt *Runtime) TryAlternative(expr *symexpr.Node, concrete uint64, bits uint32, siteID int32) {
	if expr == nil {
		return
	}
	eq := rt.Builder.Eq(expr, rt.Builder.ConstantU64(concrete, bits))
	rt.PushPathConstraint(eq, true, siteID)
}
