package main

import (
	"fmt"
	"sort"

	"github.com/symcc-go/symcc/instrument"
	"github.com/symcc-go/symcc/ssair"
)

// demo bundles one built-in instrumented function (grounded on
// original_source/test/*.c's small, single-concept reference programs —
// atol.c, bswap.c, structs.c, switch.c, memcpy.c) with the parameter types
// symcc-run needs to know in order to build its argument Cells from raw
// input bytes.
type demo struct {
	build  func() *ssair.Function
	params []ssair.Type
}

var demos = map[string]demo{
	"byte_eq":       {build: buildByteEqDemo, params: []ssair.Type{ssair.Int(8)}},
	"ntohl":         {build: buildNtohlDemo, params: []ssair.Type{ssair.Int(32)}},
	"struct_cmp":    {build: buildStructCmpDemo, params: []ssair.Type{ssair.Int(8)}},
	"switch":        {build: buildSwitchDemo, params: []ssair.Type{ssair.Int(8)}},
	"memcpy_length": {build: buildMemcpyLengthDemo, params: []ssair.Type{ssair.Int(8)}},
}

// demoNames returns every registered demo name, sorted, for -list output
// and for error messages naming what is available.
func demoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildByteEqDemo mirrors test/test_case_handler.c: a single input byte
// compared against a fixed expected value.
func buildByteEqDemo() *ssair.Function {
	fn := ssair.NewFunction("byte_eq", []ssair.Type{ssair.Int(8)})
	b := fn.Entry
	p0 := fn.Params[0].Value
	expected := fn.Emit(b, ssair.OpCall, ssair.Int(8), nil, "const_expected_byte")
	cmp := fn.Emit(b, ssair.OpICmp, ssair.Bool(), []*ssair.Value{p0, expected}, ssair.PredEQ)
	fn.SetTerminator(b, ssair.OpRet, []*ssair.Value{cmp}, nil)
	return fn
}

// buildNtohlDemo mirrors test/bswap.c: a 32-bit value byte-swapped through
// ntohl, assembled from four one-byte symbolic inputs the way a real
// 32-bit read off the wire would be.
func buildNtohlDemo() *ssair.Function {
	fn := ssair.NewFunction("ntohl_demo", []ssair.Type{ssair.Int(32)})
	b := fn.Entry
	p0 := fn.Params[0].Value
	hostOrder := fn.Emit(b, ssair.OpCall, ssair.Int(32), []*ssair.Value{p0}, "ntohl")
	want := fn.Emit(b, ssair.OpCall, ssair.Int(32), nil, "const_expected_u32")
	cmp := fn.Emit(b, ssair.OpICmp, ssair.Bool(), []*ssair.Value{hostOrder, want}, ssair.PredEQ)
	fn.SetTerminator(b, ssair.OpRet, []*ssair.Value{cmp}, nil)
	return fn
}

// buildStructCmpDemo mirrors test/structs.c: a value written into the
// second field of a two-byte struct via GEP/store, read back and compared.
func buildStructCmpDemo() *ssair.Function {
	structTy := ssair.Struct(ssair.Int(8), ssair.Int(8))
	fn := ssair.NewFunction("struct_cmp", []ssair.Type{ssair.Int(8)})
	b := fn.Entry
	p0 := fn.Params[0].Value
	obj := fn.Emit(b, ssair.OpAlloca, ssair.Pointer(), nil, structTy.ByteSize())
	second := instrument.EmitGEP(fn, b, obj, []instrument.GEPStep{{StructOffset: 1}}, nil)
	fn.Emit(b, ssair.OpStore, ssair.Void(), []*ssair.Value{second, p0}, nil)
	loaded := fn.Emit(b, ssair.OpLoad, ssair.Int(8), []*ssair.Value{second}, nil)
	expected := fn.Emit(b, ssair.OpCall, ssair.Int(8), nil, "const_expected_byte")
	cmp := fn.Emit(b, ssair.OpICmp, ssair.Bool(), []*ssair.Value{loaded, expected}, ssair.PredEQ)
	fn.SetTerminator(b, ssair.OpRet, []*ssair.Value{cmp}, nil)
	return fn
}

// buildSwitchDemo mirrors test/switch.c: a selector byte dispatching
// through a small switch table.
func buildSwitchDemo() *ssair.Function {
	fn := ssair.NewFunction("switch_demo", []ssair.Type{ssair.Int(8)})
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
	fn.SetTerminator(caseA, ssair.OpRet, []*ssair.Value{p0}, nil)
	fn.SetTerminator(caseB, ssair.OpRet, []*ssair.Value{p0}, nil)
	fn.SetTerminator(def, ssair.OpRet, []*ssair.Value{p0}, nil)
	return fn
}

// buildMemcpyLengthDemo mirrors test/memcpy.c: a length comparison gating
// whether a copy between two small scratch buffers runs at all.
func buildMemcpyLengthDemo() *ssair.Function {
	fn := ssair.NewFunction("memcpy_length_demo", []ssair.Type{ssair.Int(8)})
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
	return fn
}

// expectedByte/expectedU32 are the fixed comparison targets the demos
// above check their input against; chosen so the default all-zero input
// (no stdin/file supplied) takes the "not equal"/"default case" branch,
// leaving the equal/matching branch for the solver to mine.
const expectedByte = 'A'
const expectedU32 = 0x01020304

// registerDemoExternals wires the small constant-returning externals the
// demo functions above call.
func registerDemoExternals(in *instrument.Interpreter, name string) error {
	switch name {
	case "byte_eq", "struct_cmp":
		in.RegisterExternal("const_expected_byte", func(in *instrument.Interpreter, args []instrument.Cell) instrument.Cell {
			return instrument.Cell{Concrete: uint64(byte(expectedByte))}
		})
	case "ntohl":
		in.RegisterExternal("const_expected_u32", func(in *instrument.Interpreter, args []instrument.Cell) instrument.Cell {
			return instrument.Cell{Concrete: uint64(expectedU32)}
		})
	case "memcpy_length":
		in.RegisterExternal("const_threshold", func(in *instrument.Interpreter, args []instrument.Cell) instrument.Cell {
			return instrument.Cell{Concrete: 8}
		})
	case "switch":
		// no externals beyond libc
	default:
		return fmt.Errorf("unknown demo %q (available: %v)", name, demoNames())
	}
	return nil
}
