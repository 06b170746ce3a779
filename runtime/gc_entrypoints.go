package runtime

import (
	"github.com/symcc-go/symcc/gc"
	"github.com/symcc-go/symcc/symexpr"
)

// CollectGarbage implements collect_garbage() from spec §4.3: runs one
// mark-sweep pass over the allocation registry immediately, regardless of
// whether gc_threshold has been reached (automatic triggering is the
// caller's job — see MaybeCollectGarbage).
func (rt *Runtime) CollectGarbage() int {
	return rt.GC.Collect()
}

// MaybeCollectGarbage runs a collection only if the live registry has
// crossed the configured gc_threshold (spec §4.7 "Trigger: when |allocated|
// >= gc_threshold"); instrumented allocation sites call this rather than
// CollectGarbage directly so collection frequency scales with allocation
// volume instead of call-site count.
func (rt *Runtime) MaybeCollectGarbage() int {
	if rt.GC.ShouldCollect(rt.cfg.GCThreshold) {
		return rt.GC.Collect()
	}
	return 0
}

// RegisterExpressionRegion implements register_expression_region(ptr,
// count) from spec §4.3: registers a contiguous array of SymExpr (a PHI
// table, a call frame's worth of parameter slots) as a GC root until
// UnregisterExpressionRegion is called with the same handle.
func (rt *Runtime) RegisterExpressionRegion(slots []*symexpr.Node) *gc.Region {
	r := &gc.Region{Slots: slots}
	rt.GC.RegisterRegion(r)
	return r
}

// UnregisterExpressionRegion removes a region previously returned by
// RegisterExpressionRegion.
func (rt *Runtime) UnregisterExpressionRegion(r *gc.Region) {
	rt.GC.UnregisterRegion(r)
}
