package runtime

import (
	"fmt"

	"github.com/symcc-go/symcc/config"
	"github.com/symcc-go/symcc/solver"
	"github.com/symcc-go/symcc/symexpr"
)

// GetInputByte implements get_input_byte(offset, concrete_value): returns
// the cached fresh symbolic variable for offset (symexpr.Builder already
// hash-conses InputByte by offset, so repeated calls for the same offset
// return the identical node per spec §4.3). It also records concreteValue
// so a later test case can fill in any offset the solved model leaves
// untouched.
func (rt *Runtime) GetInputByte(offset int, concreteValue byte) *symexpr.Node {
	rt.recordConcreteInputByte(offset, concreteValue)
	return rt.Builder.InputByte(offset)
}

// MakeSymbolic implements make_symbolic(ptr, n, input_offset): fills the
// shadow for [ptr, ptr+n) with fresh input-byte expressions linked to the
// input source starting at input_offset.
func (rt *Runtime) MakeSymbolic(ptr uint64, n int, inputOffset int, concreteBytes []byte) {
	for i := 0; i < n; i++ {
		e := rt.GetInputByte(inputOffset+i, concreteBytes[i])
		rt.Memory.WriteMemory(ptr+uint64(i), 1, e, true)
	}
}

// SymccMakeSymbolic implements the user-facing symcc_make_symbolic(ptr, n)
// from spec §6: permitted only when the configured input source is
// InputMemory, since that is the only mode where the target program itself
// decides which bytes are symbolic rather than the runtime doing so as it
// observes reads from a file or stdin. It advances rt.inputCursor so
// successive calls address disjoint input-byte offsets.
func (rt *Runtime) SymccMakeSymbolic(ptr uint64, n int, concreteBytes []byte) error {
	rt.mu.Lock()
	if rt.cfg.InputSource != config.InputMemory {
		rt.mu.Unlock()
		return fmt.Errorf("runtime: symcc_make_symbolic: requires SYMCC_MEMORY_INPUT, input source is %v", rt.cfg.InputSource)
	}
	offset := rt.inputCursor
	rt.inputCursor += n
	rt.mu.Unlock()

	rt.MakeSymbolic(ptr, n, offset, concreteBytes)
	return nil
}

// recordConcreteInputByte remembers the concrete value observed at offset
// so materializeTestCase can fill in any offset a solved model leaves
// untouched, matching the "extract the symbolic input bytes" step of spec
// §4.6 against the bytes actually seen on this run rather than zeros.
func (rt *Runtime) recordConcreteInputByte(offset int, v byte) {
	rt.mu.Lock()
	if rt.inputSnapshot == nil {
		rt.inputSnapshot = make(map[int]byte)
	}
	rt.inputSnapshot[offset] = v
	rt.mu.Unlock()

	// also warm-start the solver backend's own seed assignment, so
	// simple.go's local search actually starts from the concrete run's
	// values per its own doc comment, rather than relying solely on
	// materializeTestCase's post-hoc overlay.
	rt.Solver.Seed(offset, v)
}

// emitTestCase implements spec §6's "test-case output": one
// content-addressed, UUID-named file per distinct test case under
// output_dir when no handler is installed, or an in-process callback when
// one is. model maps input-byte offset to its solved value; offsets the
// model doesn't cover fall back to the concrete byte observed on this run.
func (rt *Runtime) emitTestCase(model solver.Model) {
	rt.mu.Lock()
	handler := rt.handler
	fallback := rt.inputSnapshot
	rt.mu.Unlock()

	bytes := materializeTestCase(model, fallback)

	if handler != nil {
		handler(bytes)
		return
	}
	if _, _, err := rt.cases.Save(bytes); err != nil {
		warnf("emitTestCase: %v", err)
	}
}

// materializeTestCase overlays a solved model on top of the concrete bytes
// observed during this run, producing the full input that would steer the
// un-instrumented program down the other branch.
func materializeTestCase(model solver.Model, fallback map[int]byte) []byte {
	maxOff := -1
	for off := range fallback {
		if off > maxOff {
			maxOff = off
		}
	}
	for off := range model {
		if off > maxOff {
			maxOff = off
		}
	}
	out := make([]byte, maxOff+1)
	for off, v := range fallback {
		out[off] = v
	}
	for off, v := range model {
		out[off] = v
	}
	return out
}

