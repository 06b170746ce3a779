package ssair

// Param is a function argument: a Value with no Args, materialized once
// per function so that instructions can reference it like any other
// value.
type Param struct {
	*Value
	Index int
}

// Function is one SSA function: an ordered parameter list, an entry
// block, and the full block list in layout order. Values are numbered
// uniquely within a function via nextID, the same role vm/ssa.go's
// prog.values slice (and its implicit index-as-id) plays for a single
// compiled query.
type Function struct {
	Name    string
	Params  []*Param
	Blocks  []*Block
	Entry   *Block
	IsMain  bool // main's arguments are concrete, never get a symbolic prologue

	nextID int
}

// NewFunction constructs an empty function with the given typed
// parameters; the entry block is created but left un-terminated.
func NewFunction(name string, paramTypes []Type) *Function {
	fn := &Function{Name: name}
	for i, t := range paramTypes {
		v := fn.newValue(OpInvalid, t) // a Param's Op is never inspected, only identity/type
		fn.Params = append(fn.Params, &Param{Value: v, Index: i})
	}
	fn.Entry = fn.NewBlock("entry")
	return fn
}

func (fn *Function) newValue(op Op, t Type) *Value {
	fn.nextID++
	return &Value{id: fn.nextID, Op: op, Type: t}
}

// NewBlock appends a fresh, empty block to the function.
func (fn *Function) NewBlock(name string) *Block {
	b := &Block{Name: name, Fn: fn}
	fn.Blocks = append(fn.Blocks, b)
	return b
}

// Emit appends a new instruction to b and returns it. This is the single
// construction path every instruction-family helper in package instrument
// funnels through, the same centralization vm/ssa.go enforces via its
// ssa0/ssa1imm/ssa2/... family.
func (fn *Function) Emit(b *Block, op Op, t Type, args []*Value, imm any) *Value {
	v := fn.newValue(op, t)
	v.Args = args
	v.Imm = imm
	v.Block = b
	b.Instrs = append(b.Instrs, v)
	return v
}

// Insert inserts v into b at index idx (used to splice in the symbolic
// arguments prologue and basic-block entry notifications at a specific
// insertion point rather than always appending).
func (fn *Function) Insert(b *Block, idx int, op Op, t Type, args []*Value, imm any) *Value {
	v := fn.newValue(op, t)
	v.Args = args
	v.Imm = imm
	v.Block = b
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[idx+1:], b.Instrs[idx:])
	b.Instrs[idx] = v
	return v
}

// SetTerminator appends a terminator instruction to b and wires
// predecessor edges on its successors; every control-flow helper in
// package instrument ends by calling this instead of touching Preds
// directly.
func (fn *Function) SetTerminator(b *Block, op Op, args []*Value, imm any) *Value {
	v := fn.Emit(b, op, Void(), args, imm)
	for _, s := range b.Succs() {
		s.addPred(b)
	}
	return v
}

// NewPhi inserts an empty PHI (spec §4.5's "eagerly emit a same-shape
// dummy PHI... record for finalization") at the top of b, after any
// already-present PHIs, and returns it for later filling by AddIncoming.
func (fn *Function) NewPhi(b *Block, t Type) *Value {
	v := fn.newValue(OpPhi, t)
	v.Block = b
	v.Imm = &phiIncoming{}
	idx := b.FirstInsertionPoint()
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[idx+1:], b.Instrs[idx:])
	b.Instrs[idx] = v
	return v
}

type phiIncoming struct {
	preds []*Block
	vals  []*Value
}

// AddIncoming records that phi receives val along the edge from pred.
func AddIncoming(phi *Value, pred *Block, val *Value) {
	inc := phi.Imm.(*phiIncoming)
	inc.preds = append(inc.preds, pred)
	inc.vals = append(inc.vals, val)
}

// Incoming returns phi's recorded (predecessor, value) pairs.
func Incoming(phi *Value) ([]*Block, []*Value) {
	inc := phi.Imm.(*phiIncoming)
	return inc.preds, inc.vals
}

// Module is a collection of functions, the unit the instrumentation pass
// (package instrument) walks one function at a time.
type Module struct {
	Functions []*Function
}

func (m *Module) AddFunction(fn *Function) { m.Functions = append(m.Functions, fn) }

func (m *Module) FuncByName(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}
