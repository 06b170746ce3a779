// Package gc implements the mark-from-roots/sweep collector described in
// spec §4.7: when the allocation registry (symexpr.Builder's live set)
// grows past the configured threshold, walk every root and release every
// node not reachable from one. It is a thin pass over the same Trace-like
// shape plan/pir's dead-code-elimination passes walk — a fixed root set
// instead of a single Trace top, then a reachability mark instead of a
// liveness bit per step.
package gc

import (
	"golang.org/x/exp/slices"

	"github.com/symcc-go/symcc/shadow"
	"github.com/symcc-go/symcc/symexpr"
)

// Region is a registered contiguous array of SymExpr the runtime emits
// (PHI tables, parameter/return slot blocks) so the collector can treat it
// as a root per spec §3's "expression-region registry".
type Region struct {
	Slots []*symexpr.Node
}

// RootSource is anything the collector consults for additional roots
// beyond shadow memory and registered regions; solver.Gateway satisfies
// this with its own conservative held-reference accounting.
type RootSource interface {
	// GCRoots appends every symexpr.Node this source currently holds a
	// reference to and returns the extended slice.
	GCRoots(roots []*symexpr.Node) []*symexpr.Node
}

// Collector owns the root bookkeeping around one symexpr.Builder and
// shadow.Memory pair: registered expression regions, parameter/return
// slots, and any extra RootSources (typically the solver gateway).
type Collector struct {
	builder *symexpr.Builder
	mem     *shadow.Memory

	regions []*Region
	slots   []*symexpr.Node // parameter/return slots, spec §3
	sources []RootSource

	unreachable func(ids []uint64) // optional notification hook, spec §4.7
}

// New returns a Collector walking b's registry and mem's pages as its base
// root set.
func New(b *symexpr.Builder, mem *shadow.Memory) *Collector {
	return &Collector{builder: b, mem: mem}
}

// OnUnreachable installs a callback invoked with the ids swept on the next
// Collect, matching spec §4.7's "for reference-free backends, notify the
// backend via an expression_unreachable(ids[]) callback".
func (c *Collector) OnUnreachable(fn func(ids []uint64)) {
	c.unreachable = fn
}

// RegisterRegion adds r to the root set. The caller keeps writing into
// r.Slots after registration; Collect always reads the current contents.
func (c *Collector) RegisterRegion(r *Region) {
	c.regions = append(c.regions, r)
}

// UnregisterRegion removes a region previously passed to RegisterRegion
// (e.g. once a PHI table or call frame goes out of scope).
func (c *Collector) UnregisterRegion(r *Region) {
	for i, rr := range c.regions {
		if rr == r {
			c.regions = append(c.regions[:i], c.regions[i+1:]...)
			return
		}
	}
}

// SetSlots replaces the parameter/return slot root set wholesale; runtime
// calls this once per call boundary rather than registering each slot as
// its own Region.
func (c *Collector) SetSlots(slots []*symexpr.Node) {
	c.slots = slots
}

// AddSource registers an additional RootSource, e.g. a solver.Gateway
// whose assertion stack must stay reachable across a collection.
func (c *Collector) AddSource(s RootSource) {
	c.sources = append(c.sources, s)
}

// ShouldCollect reports whether the live registry has crossed threshold,
// the trigger condition from spec §4.7.
func (c *Collector) ShouldCollect(threshold int) bool {
	return c.builder.Len() >= threshold
}

// Collect performs one mark-sweep pass: gathers roots from shadow memory,
// registered regions, parameter/return slots and any extra RootSources,
// marks everything transitively reachable from them, then sweeps the
// builder's registry down to that reachable set. It returns the number of
// nodes reclaimed.
func (c *Collector) Collect() int {
	before := c.builder.Len()

	var roots []*symexpr.Node
	for _, pv := range c.mem.Pages() {
		roots = pv.Roots(roots)
	}
	for _, r := range c.regions {
		for _, s := range r.Slots {
			if s != nil {
				roots = append(roots, s)
			}
		}
	}
	for _, s := range c.slots {
		if s != nil {
			roots = append(roots, s)
		}
	}
	for _, src := range c.sources {
		roots = src.GCRoots(roots)
	}

	reachable := mark(roots)

	var swept []uint64
	if c.unreachable != nil {
		for id := range c.builder.Registry() {
			if !reachable[id] {
				swept = append(swept, id)
			}
		}
	}

	c.builder.Sweep(reachable)

	if c.unreachable != nil && len(swept) > 0 {
		// c.builder.Registry() iteration order is random; sort before
		// notifying so a backend's expression_unreachable log/trace is
		// stable across runs instead of jittering with map order.
		slices.Sort(swept)
		c.unreachable(swept)
	}

	after := c.builder.Len()
	return before - after
}

// mark walks the DAG from roots and returns the set of reachable node ids.
// Nodes are immutable and args only ever point to already-allocated nodes
// (no cycles are possible outside the solver's own bookkeeping, which is
// covered by RootSource rather than by traversing into solver state), so a
// plain depth-first walk with a visited set terminates.
func mark(roots []*symexpr.Node) map[uint64]bool {
	reachable := make(map[uint64]bool, len(roots)*2)
	stack := append([]*symexpr.Node(nil), roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil || reachable[n.ID()] {
			continue
		}
		reachable[n.ID()] = true
		stack = append(stack, n.Args...)
	}
	return reachable
}
