package runtime

import "github.com/symcc-go/symcc/symexpr"

// SetParameterExpression implements set_parameter_expression(i, e): the
// caller writes the symbolic shadow for argument i into the shared
// parameter slots before a call, spec §3/§9 "parameter/return slots as
// registers".
func (rt *Runtime) SetParameterExpression(i int, e *symexpr.Node) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.params[i] = e
	rt.refreshSlots()
}

// GetParameterExpression implements get_parameter_expression(i): the
// callee's prologue reads back what the caller set, or nil if argument i
// was concrete.
func (rt *Runtime) GetParameterExpression(i int) *symexpr.Node {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.params[i]
}

// ClearReturnExpression implements the caller-side half of spec §9's
// convention: "the caller clears the return slot before the call".
func (rt *Runtime) ClearReturnExpression() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.ret = nil
	rt.refreshSlots()
}

// SetReturnExpression implements set_return_expression(e): the callee's
// return instruction stores its symbolic value (or nil for a concrete
// return) before control returns to the caller.
func (rt *Runtime) SetReturnExpression(e *symexpr.Node) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.ret = e
	rt.refreshSlots()
}

// GetReturnExpression implements get_return_expression(): the caller reads
// this back immediately after the call returns.
func (rt *Runtime) GetReturnExpression() *symexpr.Node {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.ret
}
