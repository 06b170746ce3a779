package runtime

import (
	"fmt"

	"github.com/symcc-go/symcc/solver"
	"github.com/symcc-go/symcc/symexpr"
)

// DebugAssertions, when true, turns an impossible-branch or post-assertion
// sanity-check failure into a panic instead of a log line. Spec §7 item 4
// and §9 item (c) both want this: "in debug, abort; in release, log and
// skip", and "should be downgraded to a log" under solver timeouts. It
// defaults to false (release behavior), and nothing in this module sets it;
// a host that wants a broken instrumentation emission to stop the run
// immediately sets it itself.
var DebugAssertions = false

// PushPathConstraint implements push_path_constraint(c, taken, site_id)
// from spec §4.6: assert the negation of the branch condition to mine a
// diverging test case, then assert the concrete direction actually taken
// so downstream reasoning on this path stays consistent.
//
// A nil c (the branch condition was concrete) is a no-op.
func (rt *Runtime) PushPathConstraint(c *symexpr.Node, taken bool, siteID int32) {
	if c == nil {
		return
	}
	simplified := rt.Builder.Simplify(c)

	if v, ok := simplified.ConstantBool(); ok {
		// the condition folded to a concrete boolean: reaching this point
		// with a *different* concrete answer than `taken` means the branch
		// that was actually taken at runtime is, per our own simplifier,
		// infeasible — an impossible-branch assertion (spec §7 item 4).
		if v != taken {
			msg := fmt.Sprintf("runtime: push_path_constraint: site %d: branch folds to %v but taken=%v", siteID, v, taken)
			if DebugAssertions {
				panic(msg)
			}
			warnf("%s", msg)
		}
		rt.assertDirection(simplified, taken)
		return
	}

	rt.mineAlternative(simplified, taken, siteID)
	rt.assertDirection(simplified, taken)
}

func negate(b *symexpr.Builder, c *symexpr.Node, taken bool) *symexpr.Node {
	if taken {
		return b.BoolNot(c)
	}
	return c
}

// mineAlternative implements spec §4.6 steps 3-4: push a frame, assert the
// negation of the taken direction, check feasibility with the solver's
// configured timeout, and emit a test case on SAT. It always pops the
// frame before returning, regardless of outcome.
func (rt *Runtime) mineAlternative(c *symexpr.Node, taken bool, siteID int32) {
	if rt.Solver.SiteFullyExplored(siteID) {
		// SUPPLEMENTED FEATURES pruning detail: both directions of this
		// site already produced a test case, so another speculative query
		// here is redundant for coverage. Skip mining but still record the
		// visit in case pruning was toggled mid-run.
		rt.Solver.MarkVisited(siteID, taken)
		return
	}
	rt.Solver.MarkVisited(siteID, taken)

	rt.Solver.Push()
	defer rt.Solver.Pop()

	rt.Solver.Assert(negate(rt.Builder, c, taken))
	outcome, model, err := rt.Solver.CheckFeasible()
	switch outcome {
	case solver.Sat:
		rt.emitTestCase(model)
	case solver.Unsat, solver.Unknown:
		if err != nil {
			warnf("push_path_constraint: site %d: solver error: %v", siteID, err)
		}
		// not errors per spec §7 item 3: log (above, only on err) and continue
	}
}

// assertDirection implements spec §4.6 step 5: assert the direction
// actually taken so the path formula for everything after this branch
// stays consistent with what really happened.
func (rt *Runtime) assertDirection(c *symexpr.Node, taken bool) {
	var actual *symexpr.Node
	if taken {
		actual = c
	} else {
		actual = rt.Builder.BoolNot(c)
	}
	rt.Solver.Assert(actual)

	if DebugAssertions {
		outcome, _, _ := rt.Solver.CheckFeasible()
		if outcome == solver.Unsat {
			panic("runtime: push_path_constraint: asserted direction is unsatisfiable")
		}
	}
}
