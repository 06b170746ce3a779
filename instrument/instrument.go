// Package instrument realizes spec §4.5's Instrumentation Pass. The real
// pass rewrites a host bitcode function in place, inserting calls into the
// runtime ABI around every instruction; the host bitcode toolchain is an
// out-of-scope external collaborator (§1), so there is no native backend
// here to rewrite. Instead this package *interprets* an ssair.Function
// directly, driving runtime/libc/coverage exactly the way the rewritten
// native code would at execution time: every instruction's concrete result
// is computed while its symbolic counterpart (spec §4.5's per-instruction
// emission table) is built alongside it. The effect on runtime/libc is
// identical either way — the difference is only in how the symbolic
// builder calls get placed next to the concrete computation.
//
// One consequence of interpreting rather than compiling: spec §4.5's
// short-circuit rewriter (block-splitting a slow path that only runs when
// an operand turns out to be symbolic) exists purely to avoid the runtime
// call overhead on the common concrete-only path of a *compiled* binary.
// An interpreter pays that dispatch cost on every instruction regardless,
// so the rewriter's effect — "materialize a concrete operand into a
// symbolic one exactly when its peer is symbolic, otherwise skip the
// runtime call entirely" — is already exactly what runtime's own nil-means-
// concrete Build* dispatch (runtime/builders.go) does per call. See
// DESIGN.md.
package instrument

import (
	"fmt"

	"github.com/symcc-go/symcc/coverage"
	"github.com/symcc-go/symcc/libc"
	"github.com/symcc-go/symcc/runtime"
	"github.com/symcc-go/symcc/symexpr"
)

// PointerBits matches libc.PointerBits: addresses and GEP arithmetic are
// fixed-width 64-bit in this reference target.
const PointerBits = libc.PointerBits

// Cell is one SSA value's concolic pair: Concrete holds the raw bit
// pattern (zero/sign-extended per the value's declared width; an IEEE-754
// bit pattern for floats), Sym is its symbolic expression or nil if the
// value is presently concrete, the same nil-means-concrete convention
// runtime/shadow already use.
type Cell struct {
	Concrete uint64
	Sym      *symexpr.Node
}

func concrete(v uint64) Cell { return Cell{Concrete: v} }

// External is a call target the interpreter cannot see inside of — either
// a libc wrapper or a user-registered stub — invoked by OpCall/OpInvoke.
type External func(in *Interpreter, args []Cell) Cell

// Interpreter walks one ssair.Function at a time, maintaining a concrete
// scratch memory (backing alloca/GEP addresses) alongside the Runtime's
// shadow memory, and a per-value Cell environment that is reset for every
// Run call (ssair.Value identity is only unique within one function's
// lifetime, matching vm/ssa.go's per-prog value numbering).
type Interpreter struct {
	RT  *runtime.Runtime
	Lc  *libc.Libc
	Cov *coverage.Map

	externals map[string]External

	mem     []byte
	memBase uint64
	memNext uint64

	siteSeq int32
}

// New constructs an Interpreter over rt/lc, with cov as the optional
// coverage sink (nil disables call-site notification — spec §6's coverage
// map is itself optional instrumentation).
func New(rt *runtime.Runtime, lc *libc.Libc, cov *coverage.Map) *Interpreter {
	const scratchSize = 1 << 20
	const base = 0x10000 // keep address 0 reserved as "null"
	in := &Interpreter{
		RT:        rt,
		Lc:        lc,
		Cov:       cov,
		externals: make(map[string]External),
		mem:       make([]byte, scratchSize),
		memBase:   base,
		memNext:   base,
	}
	if cov != nil {
		rt.SetCallSiteSink(cov)
	}
	registerLibcExternals(in)
	return in
}

// RegisterExternal installs fn as the target for OpCall/OpInvoke
// instructions whose Imm is name, for user/harness-defined functions the
// instrumented program calls that aren't one of the wrapped libc
// functions.
func (in *Interpreter) RegisterExternal(name string, fn External) {
	in.externals[name] = fn
}

// nextSite returns a fresh, monotonically increasing call-site id; the
// real pass assigns these at compile time per instruction, we hand them
// out as instructions execute instead since there is no separate compile
// phase.
func (in *Interpreter) nextSite() int32 {
	in.siteSeq++
	return in.siteSeq
}

// alloc bump-allocates n bytes of concrete scratch memory and returns its
// address, implementing alloca (spec §4.5: "No-op (shadow is lazy)" — only
// the concrete backing address needs to exist).
func (in *Interpreter) alloc(n int) uint64 {
	if n <= 0 {
		n = 1
	}
	addr := in.memNext
	in.memNext += uint64(n)
	return addr
}

func (in *Interpreter) readConcrete(addr uint64, n int) []byte {
	off := addr - in.memBase
	if off+uint64(n) > uint64(len(in.mem)) {
		panic(fmt.Sprintf("instrument: concrete memory access out of range: addr=%#x n=%d", addr, n))
	}
	out := make([]byte, n)
	copy(out, in.mem[off:off+uint64(n)])
	return out
}

func (in *Interpreter) writeConcrete(addr uint64, data []byte) {
	off := addr - in.memBase
	if off+uint64(len(data)) > uint64(len(in.mem)) {
		panic(fmt.Sprintf("instrument: concrete memory write out of range: addr=%#x n=%d", addr, len(data)))
	}
	copy(in.mem[off:], data)
}

// notifyBlock implements spec §4.5 step 3, "insert a basic-block entry
// notification at each block's first insertion point." Going through
// rt.NotifyBasicBlock rather than calling in.Cov directly keeps coverage
// wired the same way as call/ret notifications, via the CallSiteSink New
// installed.
func (in *Interpreter) notifyBlock() {
	in.RT.NotifyBasicBlock(in.nextSite())
}

// readCString reads a NUL-terminated string out of concrete scratch memory.
// No external registered in call.go calls it; the open/fopen family is not
// in that table.
func (in *Interpreter) readCString(addr uint64) string {
	off := addr - in.memBase
	end := off
	for end < uint64(len(in.mem)) && in.mem[end] != 0 {
		end++
	}
	return string(in.mem[off:end])
}
