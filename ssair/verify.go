package ssair

import "fmt"

// Verify checks the handful of structural invariants spec §4.5 step 7
// ("verify the resulting function; abort on invalid IR") requires after
// instrumentation: every block ends in exactly one terminator, and every
// PHI has one incoming value per predecessor.
func Verify(fn *Function) error {
	for _, b := range fn.Blocks {
		if len(b.Instrs) == 0 {
			return fmt.Errorf("ssair: verify %s: block %q is empty", fn.Name, b.Name)
		}
		for i, inst := range b.Instrs {
			if inst.IsTerminator() && i != len(b.Instrs)-1 {
				return fmt.Errorf("ssair: verify %s: block %q has a terminator before its end", fn.Name, b.Name)
			}
		}
		if !b.Instrs[len(b.Instrs)-1].IsTerminator() {
			return fmt.Errorf("ssair: verify %s: block %q does not end in a terminator", fn.Name, b.Name)
		}
		for _, inst := range b.Instrs {
			if inst.Op != OpPhi {
				continue
			}
			preds, vals := Incoming(inst)
			if len(preds) != len(b.Preds) {
				return fmt.Errorf("ssair: verify %s: phi in %q has %d incoming values, block has %d predecessors",
					fn.Name, b.Name, len(preds), len(b.Preds))
			}
			if len(vals) != len(preds) {
				return fmt.Errorf("ssair: verify %s: phi in %q has mismatched incoming preds/values", fn.Name, b.Name)
			}
		}
	}
	return nil
}
