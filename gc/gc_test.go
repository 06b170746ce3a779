package gc

import (
	"testing"

	"github.com/symcc-go/symcc/shadow"
	"github.com/symcc-go/symcc/solver"
	"github.com/symcc-go/symcc/symexpr"
)

func TestCollectReclaimsUnreachableNodes(t *testing.T) {
	b := symexpr.NewBuilder()
	mem := shadow.New(b)
	c := New(b, mem)

	// a chain of transient nodes with nothing holding onto them
	x := b.InputByte(0)
	for i := 0; i < 50; i++ {
		x = b.Add(x, b.ConstantU64(1, 8))
	}
	if b.Len() == 0 {
		t.Fatalf("builder should have allocated nodes")
	}
	_ = x

	reclaimed := c.Collect()
	if reclaimed == 0 {
		t.Fatalf("expected some nodes reclaimed, got 0")
	}
	if b.Len() != 0 {
		t.Fatalf("builder.Len() = %d, want 0 (nothing is rooted)", b.Len())
	}
}

func TestCollectKeepsShadowRoots(t *testing.T) {
	b := symexpr.NewBuilder()
	mem := shadow.New(b)
	c := New(b, mem)

	val := b.ConstantU64(0x11223344, 32)
	mem.WriteMemory(0x1000, 4, val, true)

	c.Collect()

	got := b.Simplify(mem.ReadMemory(0x1000, 4, true, nil))
	v, ok := got.ConstantValue()
	if !ok || v.Uint64() != 0x11223344 {
		t.Fatalf("shadow-rooted value did not survive collection: %v", v)
	}
}

func TestCollectKeepsRegisteredRegions(t *testing.T) {
	b := symexpr.NewBuilder()
	mem := shadow.New(b)
	c := New(b, mem)

	held := b.Add(b.InputByte(0), b.ConstantU64(1, 8))
	region := &Region{Slots: []*symexpr.Node{held}}
	c.RegisterRegion(region)

	c.Collect()
	if b.Registry()[held.ID()] == nil {
		t.Fatalf("node referenced by a registered region was swept")
	}

	c.UnregisterRegion(region)
	c.Collect()
	if b.Registry()[held.ID()] != nil {
		t.Fatalf("node should be gone after the owning region is unregistered")
	}
}

func TestCollectKeepsParameterSlots(t *testing.T) {
	b := symexpr.NewBuilder()
	mem := shadow.New(b)
	c := New(b, mem)

	ret := b.Mul(b.InputByte(1), b.ConstantU64(2, 8))
	c.SetSlots([]*symexpr.Node{ret})

	c.Collect()
	if b.Registry()[ret.ID()] == nil {
		t.Fatalf("parameter/return slot contents were swept")
	}
}

func TestCollectKeepsSolverSessionRoots(t *testing.T) {
	b := symexpr.NewBuilder()
	mem := shadow.New(b)
	c := New(b, mem)

	g := solver.NewGateway(solver.NewSimpleBackend(nil))
	c.AddSource(g)

	g.Push()
	asserted := b.Eq(b.InputByte(0), b.ConstantU64('a', 8))
	g.Assert(asserted)

	c.Collect()
	if b.Registry()[asserted.ID()] == nil {
		t.Fatalf("node asserted to the solver session was swept")
	}
}

func TestShouldCollectThreshold(t *testing.T) {
	b := symexpr.NewBuilder()
	mem := shadow.New(b)
	c := New(b, mem)

	if c.ShouldCollect(1) {
		t.Fatalf("empty builder should not need collection at threshold 1")
	}
	b.ConstantU64(1, 8)
	b.ConstantU64(2, 8)
	if !c.ShouldCollect(2) {
		t.Fatalf("builder with 2 live nodes should need collection at threshold 2")
	}
}

func TestOnUnreachableNotification(t *testing.T) {
	b := symexpr.NewBuilder()
	mem := shadow.New(b)
	c := New(b, mem)

	dead := b.Add(b.InputByte(0), b.ConstantU64(1, 8))
	var notified []uint64
	c.OnUnreachable(func(ids []uint64) { notified = append(notified, ids...) })

	c.Collect()

	found := false
	for _, id := range notified {
		if id == dead.ID() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unreachable callback to include swept node %d, got %v", dead.ID(), notified)
	}
}
