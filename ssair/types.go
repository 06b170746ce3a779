// Package ssair implements a small typed, SSA, basic-block-structured IR
// (spec §4.5: "Operates over an SSA, typed, basic-block-structured IR with
// per-function traversal"). The host bitcode toolchain that the real
// instrumentation pass walks is an out-of-scope external collaborator
// (§1); ssair is the concrete stand-in this module instruments instead,
// modeled the way vm/ssa.go's prog/value pair model sneller's own
// bytecode-compiler IR: values are only ever constructed through Function
// methods, never literal struct construction, and every value carries an
// id used for structural identity.
package ssair

import "fmt"

// TypeKind distinguishes the handful of type shapes the instrumentation
// pass needs to reason about (spec §4.5's createValueExpression table).
type TypeKind int

const (
	TVoid TypeKind = iota
	TInt           // width-bearing integer, including i1 (bool)
	TFloat         // Bits selects float32 (32) vs double (64)
	TPointer
	TStruct
	TArray
	TLabel // basic-block reference, used by branch/phi/switch operands
)

// Type describes the shape of a Value. Width/Bits is meaningful only for
// TInt/TFloat; Elem/Len for TArray; Fields/Offsets for TStruct.
type Type struct {
	Kind    TypeKind
	Bits    int // TInt: bit width (1..128); TFloat: 32 or 64
	Elem    *Type
	Len     int // TArray element count
	Fields  []Type
	Offsets []int // byte offset of each field, parallel to Fields
}

func Int(bits int) Type     { return Type{Kind: TInt, Bits: bits} }
func Bool() Type            { return Type{Kind: TInt, Bits: 1} }
func Float32() Type         { return Type{Kind: TFloat, Bits: 32} }
func Float64() Type         { return Type{Kind: TFloat, Bits: 64} }
func Pointer() Type         { return Type{Kind: TPointer, Bits: 64} }
func Void() Type            { return Type{Kind: TVoid} }
func Array(e Type, n int) Type {
	return Type{Kind: TArray, Elem: &e, Len: n}
}

// Struct builds a struct type from fields laid out with natural
// (no-padding) byte offsets, which is all createValueExpression's
// "sum of struct offsets" walk needs.
func Struct(fields ...Type) Type {
	t := Type{Kind: TStruct, Fields: fields, Offsets: make([]int, len(fields))}
	off := 0
	for i, f := range fields {
		t.Offsets[i] = off
		off += f.ByteSize()
	}
	t.Bits = off * 8
	return t
}

// ByteSize returns the type's size in bytes, used by GEP/insertvalue's
// offset arithmetic.
func (t Type) ByteSize() int {
	switch t.Kind {
	case TInt, TFloat:
		return (t.Bits + 7) / 8
	case TPointer:
		return 8
	case TArray:
		return t.Elem.ByteSize() * t.Len
	case TStruct:
		if len(t.Fields) == 0 {
			return 0
		}
		last := len(t.Fields) - 1
		return t.Offsets[last] + t.Fields[last].ByteSize()
	default:
		return 0
	}
}

func (t Type) IsFloat() bool { return t.Kind == TFloat }
func (t Type) IsInt() bool   { return t.Kind == TInt }
func (t Type) IsPointer() bool { return t.Kind == TPointer }

func (t Type) String() string {
	switch t.Kind {
	case TVoid:
		return "void"
	case TInt:
		return fmt.Sprintf("i%d", t.Bits)
	case TFloat:
		if t.Bits == 32 {
			return "float"
		}
		return "double"
	case TPointer:
		return "ptr"
	case TArray:
		return fmt.Sprintf("[%d x %s]", t.Len, t.Elem)
	case TStruct:
		return fmt.Sprintf("struct(%d fields)", len(t.Fields))
	case TLabel:
		return "label"
	default:
		return "?"
	}
}
