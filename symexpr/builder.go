package symexpr

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/dchest/siphash"
	"golang.org/x/exp/maps"
)

// sipKey is a fixed, process-wide key for the structural hash used to
// hash-cons Constant and InputByte nodes. It only needs to be stable for
// the lifetime of one process; it is not a security boundary.
var sipKey0, sipKey1 uint64 = 0x736d7863c0ffee11, 0x6578707273686164

// Builder constructs Node values and owns the allocation registry that
// backs the garbage collector (spec §3 "allocation registry... a set of
// all SymExpr ever handed to instrumented code"). A Builder is safe for
// concurrent use; the reference runtime is single-threaded per spec §5 but
// the mutex costs nothing on the fast path and lets a host embed one
// Builder per thread-local runtime instance.
type Builder struct {
	mu       sync.Mutex
	nextID   uint64
	interned map[uint64]*Node // hash-consing cache, keyed by structural siphash; only used for Constant/InputByte
	live     map[uint64]*Node // every node ever allocated, keyed by Node.id; this is the GC's allocation registry
}

// NewBuilder returns a Builder with an empty registry.
func NewBuilder() *Builder {
	return &Builder{
		interned: make(map[uint64]*Node),
		live:     make(map[uint64]*Node),
	}
}

// Registry returns the live allocation-registry snapshot: every Node ever
// produced by b that has not yet been swept by a garbage collection pass.
// Callers must not mutate the returned map; gc.Collector uses it, through
// this accessor, as the candidate set for mark-sweep.
func (b *Builder) Registry() map[uint64]*Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.live)
}

// Lookup resolves a node id back to its *Node, or nil if id is 0 or no
// longer live (e.g. already swept). Shadow memory stores node ids rather
// than raw pointers in its mmap'd pages (see shadow/page.go), so this is
// the one place that turns an id found there back into a usable Node.
func (b *Builder) Lookup(id uint64) *Node {
	if id == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live[id]
}

// Len reports the number of live nodes currently registered, the quantity
// compared against config.Config.GCThreshold to decide when to collect.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

// Sweep removes every node whose id is not in keep from the registry. It is
// called by gc.Collector after computing the reachable set; Builder itself
// has no notion of roots.
func (b *Builder) Sweep(keep map[uint64]bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id := range b.live {
		if !keep[id] {
			delete(b.live, id)
		}
	}
	// Constants/input bytes that were swept must be re-built (and
	// re-interned) on next use; stale cache entries would otherwise
	// resurrect a Node no longer present in live.
	for k, v := range b.interned {
		if _, ok := b.live[v.id]; !ok {
			delete(b.interned, k)
		}
	}
}

func (b *Builder) alloc(n *Node) *Node {
	b.nextID++
	n.id = b.nextID
	b.live[n.id] = n
	return n
}

// structHash computes a structural fingerprint over (kind, width, operand
// ids, immediate bits), the same shape as vm/ssa.go's per-arity hashcode
// arrays, collapsed into a single siphash-64 so the interning cache can use
// a plain map[uint64]*Node instead of a fixed-size array key.
func structHash(kind Kind, width uint32, args []*Node, immBits uint64) uint64 {
	buf := make([]byte, 0, 16+8*len(args))
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(kind))
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], uint64(width))
	buf = append(buf, tmp[:]...)
	for _, a := range args {
		binary.LittleEndian.PutUint64(tmp[:], a.id)
		buf = append(buf, tmp[:]...)
	}
	binary.LittleEndian.PutUint64(tmp[:], immBits)
	buf = append(buf, tmp[:]...)
	return siphash.Hash(sipKey0, sipKey1, buf)
}

func bigToBits(v *big.Int) uint64 {
	if v.IsUint64() {
		return v.Uint64()
	}
	// fold down to 64 bits for hashing purposes only; equality is still
	// checked against the full value before reusing a cached node.
	return siphash.Hash(sipKey0, sipKey1, v.Bytes())
}

// mask reduces v to its canonical unsigned representative mod 2^width.
func mask(v *big.Int, width uint32) *big.Int {
	if width == 0 {
		// boolean constants are represented as 0/1
		out := new(big.Int)
		if v.Sign() != 0 {
			out.SetInt64(1)
		}
		return out
	}
	m := new(big.Int).Lsh(big.NewInt(1), uint(width))
	out := new(big.Int).Mod(v, m)
	if out.Sign() < 0 {
		out.Add(out, m)
	}
	return out
}

// Constant returns the canonical node for (value, bits); per spec §3
// "constants fold into a canonical node per (value,bits)", this constructor
// always hash-conses regardless of what the rest of the builder does.
func (b *Builder) Constant(value *big.Int, bits uint32) *Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := mask(value, bits)
	h := structHash(KindConstant, bits, nil, bigToBits(v))
	if n, ok := b.interned[h]; ok && n.Kind == KindConstant && n.Width == bits && n.Imm.(*big.Int).Cmp(v) == 0 {
		return n
	}
	n := &Node{Kind: KindConstant, Width: bits, Imm: v}
	b.alloc(n)
	b.interned[h] = n
	return n
}

// ConstantU64 is a convenience wrapper for the common 64-bit-or-narrower
// case (spec §4.3 build_integer).
func (b *Builder) ConstantU64(value uint64, bits uint32) *Node {
	return b.Constant(new(big.Int).SetUint64(value), bits)
}

// ConstantBool returns the canonical boolean constant node.
func (b *Builder) ConstantBool(value bool) *Node {
	v := int64(0)
	if value {
		v = 1
	}
	return b.Constant(big.NewInt(v), 0)
}

// InputByte returns the cached fresh symbolic variable for offset,
// constructing it on first use (spec §4.3 get_input_byte): "returns a
// cached fresh symbolic variable for offset". Subsequent calls with the
// same offset return the identical node.
func (b *Builder) InputByte(offset int) *Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := structHash(KindInputByte, 8, nil, uint64(offset))
	if n, ok := b.interned[h]; ok && n.Kind == KindInputByte && n.Imm.(int) == offset {
		return n
	}
	n := &Node{Kind: KindInputByte, Width: 8, Imm: offset}
	b.alloc(n)
	b.interned[h] = n
	return n
}

func (b *Builder) fresh(kind Kind, width uint32, args ...*Node) *Node {
	n := &Node{Kind: kind, Width: width, Args: args}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alloc(n)
	return n
}

func (b *Builder) freshImm(kind Kind, width uint32, imm interface{}, args ...*Node) *Node {
	n := &Node{Kind: kind, Width: width, Args: args, Imm: imm}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alloc(n)
	return n
}

func mustSameWidth(op string, a, b *Node) {
	if a.Width != b.Width {
		panic(fmt.Sprintf("symexpr: %s: operand width mismatch (%d vs %d)", op, a.Width, b.Width))
	}
}
