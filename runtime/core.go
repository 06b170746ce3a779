// Package runtime implements the ABI surface an instrumented binary links
// against (spec §4.3): value constructors, unary/binary/compare/cast
// dispatch, bit helpers, parameter/return slots, memory operations, the
// constraint manager, call-site notification and the user-facing
// symcc_make_symbolic/symcc_set_test_case_handler entry points. It plays
// the role vm/bytecode.go plays for sneller's query engine: the single ABI
// every generated/instrumented caller links against, dispatched from a
// small set of opcode tables rather than one function per opcode family.
package runtime

import (
	"fmt"
	"sync"

	"github.com/symcc-go/symcc/config"
	"github.com/symcc-go/symcc/gc"
	"github.com/symcc-go/symcc/shadow"
	"github.com/symcc-go/symcc/solver"
	"github.com/symcc-go/symcc/symexpr"
	"github.com/symcc-go/symcc/testcase"
)

// ParamSlots is the fixed parameter-slot count from spec §3 ("width 256 is
// sufficient").
const ParamSlots = 256

// TestCaseHandler is the signature symcc_set_test_case_handler installs
// (spec §6 "User API"): invoked with the full input-byte sequence for a
// newly discovered test case.
type TestCaseHandler func(bytes []byte)

// Runtime is the process-wide (or, per spec §5's thread-local escape
// hatch, per-thread-instance) state the ABI methods operate on. The zero
// value is not usable; construct one with New.
type Runtime struct {
	mu sync.Mutex

	cfg *config.Config

	Builder *symexpr.Builder
	Memory  *shadow.Memory
	Solver  *solver.Gateway
	GC      *gc.Collector

	params []*symexpr.Node // spec §3 "function-call slots"
	ret    *symexpr.Node

	inputCursor   int // spec §4.4 inputOffset cursor, advanced by libc wrappers
	inputSnapshot map[int]byte
	handler       TestCaseHandler
	sink          CallSiteSink

	cases *testcase.Store
}

// New constructs a Runtime over cfg, wiring a fresh symexpr.Builder, shadow
// Memory, solver Gateway (over a SimpleBackend) and gc.Collector together
// exactly the way Initialize would, without touching global process state;
// tests and cmd/symcc-run use this directly, while Initialize is the
// idempotent package-level entry point the instrumented binary calls.
func New(cfg *config.Config) *Runtime {
	b := symexpr.NewBuilder()
	mem := shadow.New(b)
	// no seed bytes are known yet at construction time; GetInputByte warm-
	// starts the backend via Gateway.Seed as the run observes concrete
	// input bytes (see runtime/input.go's recordConcreteInputByte).
	backend := solver.NewSimpleBackend(nil)
	gw := solver.NewGateway(backend)
	if cfg.Pruning {
		gw.EnablePruning()
	}
	collector := gc.New(b, mem)
	collector.AddSource(gw)

	rt := &Runtime{
		cfg:     cfg,
		Builder: b,
		Memory:  mem,
		Solver:  gw,
		GC:      collector,
		params:  make([]*symexpr.Node, ParamSlots),
		cases:   testcase.NewStore(cfg.OutputDir),
	}
	collector.SetSlots(rt.slotsView())
	return rt
}

// slotsView returns a fresh copy of the parameter and return slots for the
// collector to root through. Because it is a copy, a later change to
// rt.params/rt.ret is not visible to Collect until SetSlots is called again
// with a new view.
func (rt *Runtime) slotsView() []*symexpr.Node {
	// Go slices of pointers are not safe to share element-for-element
	// across independent backing arrays; instead of trying to alias rt.ret
	// into rt.params, gc.Collector.SetSlots is simply re-called whenever
	// either changes. See SetParameterExpression/SetReturnExpression.
	out := make([]*symexpr.Node, 0, len(rt.params)+1)
	out = append(out, rt.params...)
	if rt.ret != nil {
		out = append(out, rt.ret)
	}
	return out
}

func (rt *Runtime) refreshSlots() {
	rt.GC.SetSlots(rt.slotsView())
}

// Config returns the runtime's immutable configuration.
func (rt *Runtime) Config() *config.Config { return rt.cfg }

// SetTestCaseHandler installs fn as the sink for newly discovered test
// cases, implementing symcc_set_test_case_handler. A nil fn reverts to
// file-per-case output under cfg.OutputDir.
func (rt *Runtime) SetTestCaseHandler(fn TestCaseHandler) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.handler = fn
}

// packageState backs the idempotent, process-wide Initialize entry point;
// a real instrumented binary links one Runtime per process (or per
// thread-local instance per spec §5), but something has to own the single
// global the module constructor calls into.
var packageState struct {
	once sync.Once
	rt   *Runtime
	err  error
}

// Initialize is the `initialize` ABI entry from spec §4.3: idempotent
// (atomic test-and-set), it loads config, and constructs the process-wide
// Runtime the rest of the ABI free functions in this package delegate to.
// Calling it more than once is a no-op; it returns the same Runtime and
// error every time.
func Initialize() (*Runtime, error) {
	packageState.once.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			packageState.err = fmt.Errorf("runtime: initialize: %w", err)
			return
		}
		packageState.rt = New(cfg)
	})
	return packageState.rt, packageState.err
}
