package instrument

import (
	"testing"

	"github.com/symcc-go/symcc/config"
	"github.com/symcc-go/symcc/coverage"
	"github.com/symcc-go/symcc/libc"
	"github.com/symcc-go/symcc/runtime"
	"github.com/symcc-go/symcc/ssair"
)

func newTestInterpreter() *Interpreter {
	rt := runtime.New(&config.Config{})
	return New(rt, libc.New(rt), coverage.New())
}

func TestRunAddAndCompareConcrete(t *testing.T) {
	in := newTestInterpreter()
	fn := ssair.NewFunction("add_eq", []ssair.Type{ssair.Int(32), ssair.Int(32), ssair.Int(32)})
	b := fn.Entry
	a, bb, expected := fn.Params[0].Value, fn.Params[1].Value, fn.Params[2].Value
	sum := fn.Emit(b, ssair.OpAdd, ssair.Int(32), []*ssair.Value{a, bb}, nil)
	eq := fn.Emit(b, ssair.OpICmp, ssair.Bool(), []*ssair.Value{sum, expected}, ssair.PredEQ)
	fn.SetTerminator(b, ssair.OpRet, []*ssair.Value{eq}, nil)

	result, err := in.Run(fn, []Cell{concrete(2), concrete(3), concrete(5)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Concrete != 1 || result.Sym != nil {
		t.Fatalf("expected concrete true, got %+v", result)
	}
}

func TestRunSingleByteEqualityMinesAlternative(t *testing.T) {
	in := newTestInterpreter()
	fn := ssair.NewFunction("check_byte", []ssair.Type{ssair.Int(8), ssair.Int(8)})
	entry := fn.Entry
	p0, p1 := fn.Params[0].Value, fn.Params[1].Value
	cmp := fn.Emit(entry, ssair.OpICmp, ssair.Bool(), []*ssair.Value{p0, p1}, ssair.PredEQ)

	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	fn.SetTerminator(entry, ssair.OpBr, []*ssair.Value{cmp}, [2]*ssair.Block{thenB, elseB})
	fn.SetTerminator(thenB, ssair.OpRet, nil, nil)
	fn.SetTerminator(elseB, ssair.OpRet, nil, nil)

	var testCases [][]byte
	in.RT.SetTestCaseHandler(func(bytes []byte) {
		testCases = append(testCases, append([]byte(nil), bytes...))
	})

	sym := in.RT.GetInputByte(0, 'A')
	_, err := in.Run(fn, []Cell{{Concrete: uint64('A'), Sym: sym}, concrete(uint64('A'))})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(testCases) == 0 {
		t.Fatalf("expected the not-equal branch to be mined as a new test case")
	}
	if testCases[0][0] == 'A' {
		t.Fatalf("mined test case should diverge from the concrete byte 'A', got %q", testCases[0])
	}
}

func TestRunCastZextAndCompare(t *testing.T) {
	in := newTestInterpreter()
	fn := ssair.NewFunction("zext_eq", []ssair.Type{ssair.Int(8), ssair.Int(32)})
	b := fn.Entry
	p0, p1 := fn.Params[0].Value, fn.Params[1].Value
	wide := fn.Emit(b, ssair.OpZExt, ssair.Int(32), []*ssair.Value{p0}, nil)
	eq := fn.Emit(b, ssair.OpICmp, ssair.Bool(), []*ssair.Value{wide, p1}, ssair.PredEQ)
	fn.SetTerminator(b, ssair.OpRet, []*ssair.Value{eq}, nil)

	result, err := in.Run(fn, []Cell{concrete(0xff), concrete(0xff)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Concrete != 1 {
		t.Fatalf("expected zext(0xff) == 0xff to hold, got %+v", result)
	}
}

func TestRunAllocaGEPStoreLoadRoundTrip(t *testing.T) {
	in := newTestInterpreter()
	structTy := ssair.Struct(ssair.Int(32), ssair.Int(32))
	fn := ssair.NewFunction("roundtrip", []ssair.Type{ssair.Int(32)})
	b := fn.Entry
	val := fn.Params[0].Value

	obj := fn.Emit(b, ssair.OpAlloca, ssair.Pointer(), nil, structTy.ByteSize())
	field1 := EmitGEP(fn, b, obj, []GEPStep{{StructOffset: 4}}, nil)
	fn.Emit(b, ssair.OpStore, ssair.Void(), []*ssair.Value{field1, val}, nil)
	loaded := fn.Emit(b, ssair.OpLoad, ssair.Int(32), []*ssair.Value{field1}, nil)
	fn.SetTerminator(b, ssair.OpRet, []*ssair.Value{loaded}, nil)

	result, err := in.Run(fn, []Cell{concrete(0xdeadbeef)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Concrete != 0xdeadbeef {
		t.Fatalf("round-tripped value = %#x, want 0xdeadbeef", result.Concrete)
	}
}

func TestRunInsertExtractValueRoundTrip(t *testing.T) {
	in := newTestInterpreter()
	aggTy := ssair.Struct(ssair.Int(32), ssair.Int(32))
	fn := ssair.NewFunction("agg_roundtrip", []ssair.Type{aggTy, ssair.Int(32)})
	b := fn.Entry
	agg, leaf := fn.Params[0].Value, fn.Params[1].Value

	inserted := fn.Emit(b, ssair.OpInsertValue, aggTy, []*ssair.Value{agg, leaf}, AggregateOffset{Offset: 4, Length: 4})
	extracted := fn.Emit(b, ssair.OpExtractValue, ssair.Int(32), []*ssair.Value{inserted}, AggregateOffset{Offset: 4, Length: 4})
	fn.SetTerminator(b, ssair.OpRet, []*ssair.Value{extracted}, nil)

	result, err := in.Run(fn, []Cell{concrete(0), concrete(0xabcd)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Concrete != 0xabcd {
		t.Fatalf("extracted value = %#x, want 0xabcd", result.Concrete)
	}
}
