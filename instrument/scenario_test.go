package instrument

import (
	"testing"

	"github.com/symcc-go/symcc/ssair"
)

// TestScenarioNtohlBigEndianMatch covers spec §8's "32-bit big-endian
// match" scenario: a symbolic 32-bit value is byte-swapped through ntohl
// and compared against a network-order constant; the not-equal branch
// should still be mined even though the comparison happens on the
// byte-swapped expression rather than the raw input.
func TestScenarioNtohlBigEndianMatch(t *testing.T) {
	in := newTestInterpreter()
	fn := ssair.NewFunction("ntohl_match", []ssair.Type{ssair.Int(32)})
	entry := fn.Entry
	p0 := fn.Params[0].Value

	hostOrder := fn.Emit(entry, ssair.OpCall, ssair.Int(32), []*ssair.Value{p0}, "ntohl")
	const wanted = 0x01020304
	want := fn.Emit(entry, ssair.OpCall, ssair.Int(32), nil, "const32")
	cmp := fn.Emit(entry, ssair.OpICmp, ssair.Bool(), []*ssair.Value{hostOrder, want}, ssair.PredEQ)

	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	fn.SetTerminator(entry, ssair.OpBr, []*ssair.Value{cmp}, [2]*ssair.Block{thenB, elseB})
	fn.SetTerminator(thenB, ssair.OpRet, nil, nil)
	fn.SetTerminator(elseB, ssair.OpRet, nil, nil)

	in.RegisterExternal("const32", func(in *Interpreter, args []Cell) Cell {
		return concrete(wanted)
	})

	var mined [][]byte
	in.RT.SetTestCaseHandler(func(bytes []byte) {
		mined = append(mined, append([]byte(nil), bytes...))
	})

	// The four wire bytes are the network-order encoding of 0x01020304;
	// assembled little-endian as a raw 32-bit register value that gives
	// 0x04030201, ntohl swaps it right back to 0x01020304 so the concrete
	// run takes the equal branch and the miner has to find the opposite.
	s0 := in.RT.GetInputByte(0, 0x01)
	s1 := in.RT.GetInputByte(1, 0x02)
	s2 := in.RT.GetInputByte(2, 0x03)
	s3 := in.RT.GetInputByte(3, 0x04)
	sym32 := in.RT.Concat(s3, in.RT.Concat(s2, in.RT.Concat(s1, s0)))

	_, err := in.Run(fn, []Cell{{Concrete: 0x04030201, Sym: sym32}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mined) == 0 {
		t.Fatalf("expected the not-equal branch to mine a new test case")
	}
}

// TestScenarioStructFieldComparison covers spec §8's struct field
// comparison scenario: a symbolic value is written into one field of a
// two-field struct via GEP/store, read back, and compared, with the
// resulting constraint reaching the solver even though it passed through
// an aggregate in between.
func TestScenarioStructFieldComparison(t *testing.T) {
	in := newTestInterpreter()
	structTy := ssair.Struct(ssair.Int(8), ssair.Int(8))
	fn := ssair.NewFunction("struct_field_cmp", []ssair.Type{ssair.Int(8), ssair.Int(8)})
	b := fn.Entry
	fieldVal, expected := fn.Params[0].Value, fn.Params[1].Value

	obj := fn.Emit(b, ssair.OpAlloca, ssair.Pointer(), nil, structTy.ByteSize())
	second := EmitGEP(fn, b, obj, []GEPStep{{StructOffset: 1}}, nil)
	fn.Emit(b, ssair.OpStore, ssair.Void(), []*ssair.Value{second, fieldVal}, nil)
	loaded := fn.Emit(b, ssair.OpLoad, ssair.Int(8), []*ssair.Value{second}, nil)
	cmp := fn.Emit(b, ssair.OpICmp, ssair.Bool(), []*ssair.Value{loaded, expected}, ssair.PredEQ)

	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	fn.SetTerminator(b, ssair.OpBr, []*ssair.Value{cmp}, [2]*ssair.Block{thenB, elseB})
	fn.SetTerminator(thenB, ssair.OpRet, nil, nil)
	fn.SetTerminator(elseB, ssair.OpRet, nil, nil)

	var mined [][]byte
	in.RT.SetTestCaseHandler(func(bytes []byte) {
		mined = append(mined, append([]byte(nil), bytes...))
	})

	sym := in.RT.GetInputByte(0, 7)
	_, err := in.Run(fn, []Cell{{Concrete: 7, Sym: sym}, concrete(7)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mined) == 0 {
		t.Fatalf("expected a test case mined off the struct field comparison")
	}
}

// TestScenarioSwitchDispatch covers spec §8's switch dispatch scenario: a
// symbolic selector drives an OpSwitch, and every case pushes its own
// equality constraint with the taken case's polarity (spec §4.5's switch
// row). Negating the taken case's equality mines an input that leaves it.
func TestScenarioSwitchDispatch(t *testing.T) {
	in := newTestInterpreter()
	fn := ssair.NewFunction("switch_dispatch", []ssair.Type{ssair.Int(8)})
	entry := fn.Entry
	p0 := fn.Params[0].Value

	caseA := fn.NewBlock("case_a")
	caseB := fn.NewBlock("case_b")
	def := fn.NewBlock("default")
	tbl := &ssair.SwitchTable{
		Cases: []ssair.SwitchCase{
			{Value: 1, Target: caseA},
			{Value: 2, Target: caseB},
		},
		Default: def,
	}
	fn.SetTerminator(entry, ssair.OpSwitch, []*ssair.Value{p0}, tbl)
	fn.SetTerminator(caseA, ssair.OpRet, nil, nil)
	fn.SetTerminator(caseB, ssair.OpRet, nil, nil)
	fn.SetTerminator(def, ssair.OpRet, nil, nil)

	var mined [][]byte
	in.RT.SetTestCaseHandler(func(bytes []byte) {
		mined = append(mined, append([]byte(nil), bytes...))
	})

	sym := in.RT.GetInputByte(0, 1)
	_, err := in.Run(fn, []Cell{{Concrete: 1, Sym: sym}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// case_a (value 1) is taken, so negating selector == 1 is satisfiable
	// and mines a test case; case_b's selector == 2 is unsatisfiable once
	// selector == 1 has been asserted, so it mines nothing.
	if len(mined) == 0 {
		t.Fatalf("expected the non-taken switch case to be mined as a new test case")
	}
}

// TestScenarioMemcpyLengthSensitivity covers spec §8's memcpy length
// sensitivity scenario: a symbolic length gates whether memcpy runs at
// all, so the branch on the length comparison — not the memcpy call
// itself — is what needs to fork a test case exploring the other length.
func TestScenarioMemcpyLengthSensitivity(t *testing.T) {
	in := newTestInterpreter()
	fn := ssair.NewFunction("memcpy_length", []ssair.Type{ssair.Int(8)})
	entry := fn.Entry
	n := fn.Params[0].Value

	threshold := fn.Emit(entry, ssair.OpCall, ssair.Int(8), nil, "const_threshold")
	cmp := fn.Emit(entry, ssair.OpICmp, ssair.Bool(), []*ssair.Value{n, threshold}, ssair.PredEQ)

	copyB := fn.NewBlock("copy")
	skipB := fn.NewBlock("skip")
	fn.SetTerminator(entry, ssair.OpBr, []*ssair.Value{cmp}, [2]*ssair.Block{copyB, skipB})

	dst := fn.Emit(copyB, ssair.OpAlloca, ssair.Pointer(), nil, 16)
	src := fn.Emit(copyB, ssair.OpAlloca, ssair.Pointer(), nil, 16)
	fn.Emit(copyB, ssair.OpCall, ssair.Pointer(), []*ssair.Value{dst, src, n}, "memcpy")
	fn.SetTerminator(copyB, ssair.OpRet, nil, nil)
	fn.SetTerminator(skipB, ssair.OpRet, nil, nil)

	in.RegisterExternal("const_threshold", func(in *Interpreter, args []Cell) Cell {
		return concrete(8)
	})

	var mined [][]byte
	in.RT.SetTestCaseHandler(func(bytes []byte) {
		mined = append(mined, append([]byte(nil), bytes...))
	})

	sym := in.RT.GetInputByte(0, 8)
	_, err := in.Run(fn, []Cell{{Concrete: 8, Sym: sym}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mined) == 0 {
		t.Fatalf("expected the length-comparison branch to mine a different length")
	}
}

// TestScenarioGCReclamation covers spec §8's GC reclamation scenario: with
// a low threshold, a loop of transient, immediately-unreachable symbolic
// expressions should collapse to O(live roots) once collected, not
// O(iterations).
func TestScenarioGCReclamation(t *testing.T) {
	rt := newTestInterpreter().RT
	const iterations = 10_000

	for i := 0; i < iterations; i++ {
		// build a throwaway expression tied to nothing: not stored to
		// shadow, not a parameter/return slot, not held by the solver.
		a := rt.Builder.ConstantU64(uint64(i), 32)
		b := rt.Builder.ConstantU64(uint64(i+1), 32)
		_ = rt.BuildAdd(a, 0, b, 0, 32)
	}
	before := rt.Builder.Len()
	if before == 0 {
		t.Fatalf("expected the loop to have allocated live nodes before collection")
	}

	reclaimed := rt.CollectGarbage()
	after := rt.Builder.Len()

	if reclaimed == 0 {
		t.Fatalf("expected collect_garbage to reclaim unreachable nodes")
	}
	if after >= before {
		t.Fatalf("registry size did not shrink: before=%d after=%d", before, after)
	}
	// nothing from the loop is rooted, so the registry should collapse to
	// a small constant, not scale with the iteration count.
	if after > 10 {
		t.Fatalf("registry after GC = %d, expected O(live roots), not O(iterations)", after)
	}
}
