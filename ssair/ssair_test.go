package ssair

import "testing"

func TestStructByteSizeSumsFieldOffsets(t *testing.T) {
	s := Struct(Int(32), Int(8), Pointer())
	if s.Offsets[0] != 0 || s.Offsets[1] != 4 || s.Offsets[2] != 5 {
		t.Fatalf("unexpected offsets: %v", s.Offsets)
	}
	if got, want := s.ByteSize(), 13; got != want {
		t.Fatalf("ByteSize() = %d, want %d", got, want)
	}
}

func TestEmitAndTerminatorDetection(t *testing.T) {
	fn := NewFunction("f", []Type{Int(32), Int(32)})
	add := fn.Emit(fn.Entry, OpAdd, Int(32), []*Value{fn.Params[0].Value, fn.Params[1].Value}, nil)
	if add.IsTerminator() {
		t.Fatalf("add should not be a terminator")
	}
	fn.SetTerminator(fn.Entry, OpRet, []*Value{add}, nil)
	if term := fn.Entry.Terminator(); term == nil || term.Op != OpRet {
		t.Fatalf("expected ret terminator, got %v", term)
	}
}

func TestBrWiresPredecessors(t *testing.T) {
	fn := NewFunction("f", nil)
	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	cond := fn.Emit(fn.Entry, OpICmp, Bool(), nil, PredEQ)
	fn.SetTerminator(fn.Entry, OpBr, []*Value{cond}, [2]*Block{thenB, elseB})
	fn.SetTerminator(thenB, OpUnreachable, nil, nil)
	fn.SetTerminator(elseB, OpUnreachable, nil, nil)

	if len(thenB.Preds) != 1 || thenB.Preds[0] != fn.Entry {
		t.Fatalf("then block should have entry as its sole predecessor")
	}
	if len(elseB.Preds) != 1 || elseB.Preds[0] != fn.Entry {
		t.Fatalf("else block should have entry as its sole predecessor")
	}
}

func TestPhiIncomingRoundTrips(t *testing.T) {
	fn := NewFunction("f", nil)
	a := fn.Entry
	b := fn.NewBlock("b")
	join := fn.NewBlock("join")
	va := fn.Emit(a, OpAdd, Int(32), nil, nil)
	vb := fn.Emit(b, OpAdd, Int(32), nil, nil)
	fn.SetTerminator(a, OpJmp, nil, join)
	fn.SetTerminator(b, OpJmp, nil, join)

	phi := fn.NewPhi(join, Int(32))
	AddIncoming(phi, a, va)
	AddIncoming(phi, b, vb)
	fn.SetTerminator(join, OpRet, []*Value{phi}, nil)

	preds, vals := Incoming(phi)
	if len(preds) != 2 || len(vals) != 2 {
		t.Fatalf("expected 2 incoming pairs, got %d/%d", len(preds), len(vals))
	}
	if err := Verify(fn); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsMissingTerminator(t *testing.T) {
	fn := NewFunction("f", nil)
	fn.Emit(fn.Entry, OpAdd, Int(32), nil, nil)
	if err := Verify(fn); err == nil {
		t.Fatalf("expected Verify to reject a block with no terminator")
	}
}

func TestVerifyRejectsPhiArityMismatch(t *testing.T) {
	fn := NewFunction("f", nil)
	a := fn.Entry
	join := fn.NewBlock("join")
	fn.SetTerminator(a, OpJmp, nil, join)
	phi := fn.NewPhi(join, Int(32))
	_ = phi
	fn.SetTerminator(join, OpRet, nil, nil)
	// join has 1 predecessor (a) but phi has 0 incoming values recorded.
	if err := Verify(fn); err == nil {
		t.Fatalf("expected Verify to reject a phi with mismatched arity")
	}
}
