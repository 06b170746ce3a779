package ssair

// Block is a basic block: a straight-line instruction list ending in
// exactly one terminator, plus the predecessor bookkeeping the phi
// finalization step (spec §4.5 step 5) and the short-circuit rewriter's
// block-splitting (step 6) both need.
type Block struct {
	Name   string
	Instrs []*Value
	Preds  []*Block
	Fn     *Function
}

// Terminator returns the block's last instruction if it is a terminator,
// else nil (a block under construction may be temporarily un-terminated).
func (b *Block) Terminator() *Value {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// Succs returns the blocks this block's terminator can jump to, derived
// from the terminator's shape rather than tracked redundantly.
func (b *Block) Succs() []*Block {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	switch term.Op {
	case OpJmp, OpIndirectBr:
		return []*Block{term.Imm.(*Block)}
	case OpBr:
		targets := term.Imm.([2]*Block)
		return []*Block{targets[0], targets[1]}
	case OpSwitch:
		tbl := term.Imm.(*SwitchTable)
		out := make([]*Block, 0, len(tbl.Cases)+1)
		for _, c := range tbl.Cases {
			out = append(out, c.Target)
		}
		if tbl.Default != nil {
			out = append(out, tbl.Default)
		}
		return out
	default:
		return nil
	}
}

// addPred records pred as a predecessor of b if not already present; used
// by Function.SetTerminator and by the short-circuit rewriter when it
// splits blocks and rewires edges.
func (b *Block) addPred(pred *Block) {
	for _, p := range b.Preds {
		if p == pred {
			return
		}
	}
	b.Preds = append(b.Preds, pred)
}

// removePred drops pred from b's predecessor list, used when rewiring
// edges during block splitting.
func (b *Block) removePred(pred *Block) {
	for i, p := range b.Preds {
		if p == pred {
			b.Preds = append(b.Preds[:i], b.Preds[i+1:]...)
			return
		}
	}
}

// FirstInsertionPoint returns the index at which a new non-PHI instruction
// should be inserted at the top of the block (spec §4.5 step 3: "insert a
// basic-block entry notification at each block's first insertion point"):
// after any leading PHI instructions.
func (b *Block) FirstInsertionPoint() int {
	i := 0
	for i < len(b.Instrs) && b.Instrs[i].Op == OpPhi {
		i++
	}
	return i
}
