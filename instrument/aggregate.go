package instrument

import "github.com/symcc-go/symcc/ssair"

// AggregateOffset is OpInsertValue/OpExtractValue's Imm: the leaf's flat
// byte offset and size within its aggregate, already folded down from the
// struct/array index chain (spec §4.5: "compute the aggregate member's
// byte offset... then build_insert/build_extract"). Aggregates in this
// interpreter are capped at 8 bytes so they fit in a Cell's single uint64,
// the same simplification GEP's pointer-width arithmetic makes for
// addresses; a real target's wider structs would need a multi-word Cell,
// out of scope for the reference scenarios this module targets.
type AggregateOffset struct {
	Offset int
	Length int
}

// execExtractValue implements the extractvalue row.
func (in *Interpreter) execExtractValue(inst *ssair.Value, agg Cell) Cell {
	av := inst.Imm.(AggregateOffset)
	bits := uint32(av.Length * 8)
	concrete := maskU64(agg.Concrete>>(uint(av.Offset)*8), bits)
	if agg.Sym == nil {
		return Cell{Concrete: concrete}
	}
	sym := in.RT.ExtractBytes(agg.Sym, av.Offset, av.Length, littleEndian)
	return Cell{Concrete: concrete, Sym: sym}
}

// execInsertValue implements the insertvalue row.
func (in *Interpreter) execInsertValue(inst *ssair.Value, agg, leaf Cell) Cell {
	av := inst.Imm.(AggregateOffset)
	totalBytes := inst.Type.ByteSize()
	newConcrete := insertBytesConcrete(agg.Concrete, leaf.Concrete, av.Offset, av.Length, totalBytes)

	if agg.Sym == nil && leaf.Sym == nil {
		return Cell{Concrete: newConcrete}
	}
	aggSym := agg.Sym
	if aggSym == nil {
		aggSym = in.RT.BuildIntegerConst(agg.Concrete, uint32(totalBytes*8))
	}
	leafSym := leaf.Sym
	if leafSym == nil {
		leafSym = in.RT.BuildIntegerConst(leaf.Concrete, uint32(av.Length*8))
	}
	sym := in.RT.Insert(aggSym, leafSym, av.Offset, littleEndian)
	return Cell{Concrete: newConcrete, Sym: sym}
}

func insertBytesConcrete(agg, leaf uint64, offset, length, total int) uint64 {
	var mask uint64
	if length*8 >= 64 {
		mask = ^uint64(0)
	} else {
		mask = uint64(1)<<uint(length*8) - 1
	}
	mask <<= uint(offset * 8)
	result := (agg &^ mask) | ((leaf << uint(offset*8)) & mask)
	if total*8 < 64 {
		result &= uint64(1)<<uint(total*8) - 1
	}
	return result
}
