// Package solver implements the solver gateway described in spec §4.6: a
// push/pop assertion stack in front of a pluggable SMT-style Backend, plus
// model extraction for mining alternative inputs. The SMT solver itself is
// an external collaborator per spec §1 ("the SMT solver itself... consumed
// via a first-order-logic expression builder and check/push/pop/model
// API") — this package only defines that API and ships one concrete,
// intentionally simple Backend (see simple.go); it does not implement any
// novel solving algorithm (spec §1 Non-goals).
package solver

import (
	"context"
	"errors"
	"time"

	"github.com/symcc-go/symcc/symexpr"
)

// Outcome is the result of a feasibility Check.
type Outcome int

const (
	Unsat Outcome = iota
	Sat
	Unknown
)

func (o Outcome) String() string {
	switch o {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Model maps an input byte offset to the concrete value a Backend found
// for it in a satisfying assignment.
type Model map[int]byte

// ErrUnsupportedFloat is the error the simple backend's evaluator reports
// for a floating-point operation, matching spec §1's allowance that
// "Floating-point support is optional and may be declared unsupported by a
// backend." SimpleBackend.Check does not return it; it reports such a
// constraint set as Unknown.
var ErrUnsupportedFloat = errors.New("solver: floating-point constraints are not supported by this backend")

// Backend is the push/pop/check/model surface spec §1 says any concrete
// SMT solver is consumed through. Frames nest: Push opens one, Pop
// discards the most recently opened (and everything asserted in it).
type Backend interface {
	Push()
	Pop()
	Assert(e *symexpr.Node)
	Check(ctx context.Context) (Outcome, Model, error)
}

// Gateway owns one Backend and the frame discipline spec §4.6/§5 requires:
// "path-constraint frames are strictly LIFO around each speculative
// query." It is not safe for concurrent use; spec §5 calls the solver
// context one of the two contention points that must be externally
// serialized ("guarded by a mutex") if a host multi-threads the runtime.
type Gateway struct {
	backend Backend
	depth   int
	timeout time.Duration

	// pruning implements the SUPPLEMENTED FEATURES pruning-mode detail:
	// once a branch site has produced a mined test case in both
	// polarities, re-mining it again trades completeness for speed with
	// no new coverage to show for it, so further mining at that site is
	// skipped. Pruning is false unless EnablePruning is called, so the
	// zero Gateway never prunes; visited is filled by MarkVisited either
	// way.
	Pruning bool
	visited map[int32]polarityMask
}

// polarityMask records, per call site, which branch directions have
// already been mined: bit 0 for taken=false, bit 1 for taken=true.
type polarityMask uint8

const (
	polarityFalse polarityMask = 1 << iota
	polarityTrue
)

func maskFor(taken bool) polarityMask {
	if taken {
		return polarityTrue
	}
	return polarityFalse
}

// DefaultTimeout matches spec §4.6 step 3's example solver timeout.
const DefaultTimeout = 10 * time.Second

// NewGateway wraps backend with the default query timeout.
func NewGateway(backend Backend) *Gateway {
	return &Gateway{backend: backend, timeout: DefaultTimeout}
}

// SetTimeout overrides the per-query timeout used by CheckFeasible.
func (g *Gateway) SetTimeout(d time.Duration) { g.timeout = d }

// EnablePruning turns on the pruning-mode detail from the SUPPLEMENTED
// FEATURES expansion: SiteFullyExplored starts reporting true for a site
// once both of its branch directions have been recorded via MarkVisited.
func (g *Gateway) EnablePruning() {
	g.Pruning = true
	if g.visited == nil {
		g.visited = make(map[int32]polarityMask)
	}
}

// MarkVisited records that siteID's taken direction has now produced a
// mining attempt, regardless of whether pruning is enabled, so enabling
// pruning mid-run still benefits from history collected before it was on.
func (g *Gateway) MarkVisited(siteID int32, taken bool) {
	if g.visited == nil {
		g.visited = make(map[int32]polarityMask)
	}
	g.visited[siteID] |= maskFor(taken)
}

// SiteFullyExplored reports whether pruning is enabled and siteID has
// already been mined in both directions, i.e. further speculative queries
// at this site are redundant for coverage purposes.
func (g *Gateway) SiteFullyExplored(siteID int32) bool {
	if !g.Pruning {
		return false
	}
	return g.visited[siteID] == polarityFalse|polarityTrue
}

// Push opens a new assertion frame.
func (g *Gateway) Push() {
	g.backend.Push()
	g.depth++
}

// Pop discards the most recently opened assertion frame. It panics if
// called without a matching Push, since that would violate the strict
// LIFO discipline spec §5 requires.
func (g *Gateway) Pop() {
	if g.depth == 0 {
		panic("solver: Pop without matching Push")
	}
	g.backend.Pop()
	g.depth--
}

// Depth reports how many frames are currently open.
func (g *Gateway) Depth() int { return g.depth }

// rootedBackend is implemented by backends (SimpleBackend does) that can
// enumerate every symexpr.Node their current assertion stack still
// references, so the garbage collector can treat "the solver-session
// frames" as a root per spec §3/§4.7 without the gc package having to know
// anything about a specific backend's internals.
type rootedBackend interface {
	GCRoots(roots []*symexpr.Node) []*symexpr.Node
}

// GCRoots implements gc.RootSource: it appends every expression node
// currently asserted in the backend's open frames, conservatively treating
// the whole solver session as live per spec §4.7. Backends that don't
// track this (none currently) contribute nothing.
func (g *Gateway) GCRoots(roots []*symexpr.Node) []*symexpr.Node {
	if rb, ok := g.backend.(rootedBackend); ok {
		return rb.GCRoots(roots)
	}
	return roots
}

// seedableBackend is implemented by backends (SimpleBackend does) that can
// be warm-started from a concretely-observed input byte.
type seedableBackend interface {
	SetSeed(offset int, v byte)
}

// Seed forwards a concrete input byte observed on the current run to the
// backend's warm start, if it has one. Backends without a notion of a seed
// (none currently) ignore the call.
func (g *Gateway) Seed(offset int, v byte) {
	if sb, ok := g.backend.(seedableBackend); ok {
		sb.SetSeed(offset, v)
	}
}

// Assert adds e (a boolean-valued expression) to the current frame.
func (g *Gateway) Assert(e *symexpr.Node) {
	if e.Width != 0 {
		panic("solver: Assert: expression must be boolean (width 0)")
	}
	g.backend.Assert(e)
}

// CheckFeasible runs Check bounded by the gateway's timeout. A timeout is
// reported as Unknown, never as an error: spec §7 item 3 classifies
// "UNSAT, UNKNOWN, timeout" as non-errors to log and continue past.
func (g *Gateway) CheckFeasible() (Outcome, Model, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()
	outcome, model, err := g.backend.Check(ctx)
	if ctx.Err() != nil {
		return Unknown, nil, nil
	}
	return outcome, model, err
}
