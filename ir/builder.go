package ir

import "fmt"

// Builder constructs instructions at an insertion point. Created
// instructions are stamped with the builder's current Loc.
type Builder struct {
	// Loc is applied to every instruction the builder creates.
	Loc Loc

	block *BasicBlock
	idx   int
}

// NewBuilder returns a builder appending at the end of b.
func NewBuilder(b *BasicBlock) *Builder {
	return &Builder{block: b, idx: len(b.instrs)}
}

// NewBuilderBefore returns a builder inserting directly before inst.
func NewBuilderBefore(inst *Instruction) *Builder {
	b := inst.Parent()
	idx := b.IndexOf(inst)
	if idx < 0 {
		panic("ir: NewBuilderBefore on detached instruction")
	}
	return &Builder{block: b, idx: idx}
}

// NewBuilderAfter returns a builder inserting directly after inst.
func NewBuilderAfter(inst *Instruction) *Builder {
	b := inst.Parent()
	idx := b.IndexOf(inst)
	if idx < 0 {
		panic("ir: NewBuilderAfter on detached instruction")
	}
	return &Builder{block: b, idx: idx + 1}
}

// Block returns the block the builder inserts into.
func (b *Builder) Block() *BasicBlock { return b.block }

func (b *Builder) insert(inst *Instruction, resultType Type) *Instruction {
	inst.Loc = b.Loc
	for _, op := range inst.operands {
		op.addUser(inst)
	}
	if resultType != nil {
		inst.result = &Value{typ: resultType, def: inst}
	}
	b.block.insertAt(b.idx, inst)
	b.idx++
	return inst
}

// FunctionRef creates a direct reference to f and bumps its use count.
func (b *Builder) FunctionRef(f *Function) *Instruction {
	f.refs++
	return b.insert(&Instruction{op: OpFunctionRef, Func: f}, f.Type)
}

// PartialApply constructs a closure binding the trailing arguments of
// callee. convs carries one ownership convention per bound argument.
func (b *Builder) PartialApply(callee *Value, args []*Value, convs []Convention, subs SubstitutionMap, guaranteed, onStack bool) *Instruction {
	if len(args) != len(convs) {
		panic(fmt.Sprintf("ir: partial_apply with %d args and %d conventions", len(args), len(convs)))
	}
	ft, ok := callee.Type().(FuncType)
	if !ok {
		panic("ir: partial_apply of non-function value")
	}
	resultType := subs.Apply(ft).(FuncType).DroppingSuffixParams(len(args), guaranteed)
	inst := &Instruction{
		op:          OpPartialApply,
		operands:    append([]*Value{callee}, args...),
		Conventions: append([]Convention(nil), convs...),
		Subs:        subs.Clone(),
		OnStack:     onStack,
	}
	return b.insert(inst, resultType)
}

// ThinToThick wraps a thin function value in a context-free thick one.
func (b *Builder) ThinToThick(v *Value) *Instruction {
	ft, ok := v.Type().(FuncType)
	if !ok {
		panic("ir: thin_to_thick of non-function value")
	}
	ft.Rep = RepThick
	return b.insert(&Instruction{op: OpThinToThick, operands: []*Value{v}}, ft)
}

// ConvertFunc converts a function value to the given type.
func (b *Builder) ConvertFunc(v *Value, to FuncType) *Instruction {
	return b.insert(&Instruction{op: OpConvertFunc, operands: []*Value{v}}, to)
}

// ConvertEscape narrows an escaping function value to a non-escaping
// one.
func (b *Builder) ConvertEscape(v *Value) *Instruction {
	ft, ok := v.Type().(FuncType)
	if !ok {
		panic("ir: convert_escape of non-function value")
	}
	return b.insert(&Instruction{op: OpConvertEscape, operands: []*Value{v}}, ft.WithNoEscape(true))
}

// MarkDependence marks value as dependent on base without changing it.
func (b *Builder) MarkDependence(value, base *Value) *Instruction {
	return b.insert(&Instruction{op: OpMarkDependence, operands: []*Value{value, base}}, value.Type())
}

// Apply invokes a function value with arguments under the given
// substitution map.
func (b *Builder) Apply(callee *Value, args []*Value, subs SubstitutionMap) *Instruction {
	ft, ok := callee.Type().(FuncType)
	if !ok {
		panic("ir: apply of non-function value")
	}
	inst := &Instruction{
		op:       OpApply,
		operands: append([]*Value{callee}, args...),
		Subs:     subs.Clone(),
	}
	return b.insert(inst, subs.Apply(ft.Result))
}

// ClassMethod looks up a dynamically dispatched method on receiver.
func (b *Builder) ClassMethod(receiver *Value, method string, t FuncType) *Instruction {
	return b.insert(&Instruction{op: OpClassMethod, operands: []*Value{receiver}, Method: method}, t)
}

// AllocBox allocates boxed local storage for the element type.
func (b *Builder) AllocBox(elem Type) *Instruction {
	return b.insert(&Instruction{op: OpAllocBox}, BoxType{Elem: elem})
}

// ProjectBox projects the storage address out of a box.
func (b *Builder) ProjectBox(box *Value) *Instruction {
	bt, ok := box.Type().(BoxType)
	if !ok {
		panic("ir: project_box of non-box value")
	}
	return b.insert(&Instruction{op: OpProjectBox, operands: []*Value{box}}, AddrType{Elem: bt.Elem})
}

// Store stores src to the address dest.
func (b *Builder) Store(src, dest *Value) *Instruction {
	return b.insert(&Instruction{op: OpStore, operands: []*Value{src, dest}}, nil)
}

// Load loads from the address addr.
func (b *Builder) Load(addr *Value) *Instruction {
	at, ok := addr.Type().(AddrType)
	if !ok {
		panic("ir: load of non-address value")
	}
	return b.insert(&Instruction{op: OpLoad, operands: []*Value{addr}}, at.Elem)
}

// Retain inserts an ownership increment of v.
func (b *Builder) Retain(v *Value) *Instruction {
	return b.insert(&Instruction{op: OpRetain, operands: []*Value{v}}, nil)
}

// Release inserts an ownership decrement of v.
func (b *Builder) Release(v *Value) *Instruction {
	return b.insert(&Instruction{op: OpRelease, operands: []*Value{v}}, nil)
}

// AllocRef allocates an instance of the named class.
func (b *Builder) AllocRef(class string) *Instruction {
	return b.insert(&Instruction{op: OpAllocRef, Class: class}, NamedType(class))
}

// Const materializes an integer constant of the given type.
func (b *Builder) Const(val int64, t Type) *Instruction {
	return b.insert(&Instruction{op: OpConst, ConstValue: val}, t)
}

// Builtin creates an opaque side-effecting operation. result may be
// nil for void builtins.
func (b *Builder) Builtin(name string, args []*Value, result Type) *Instruction {
	return b.insert(&Instruction{op: OpBuiltin, operands: append([]*Value(nil), args...), BuiltinName: name}, result)
}

// Return returns v from the function; v may be nil for void returns.
func (b *Builder) Return(v *Value) *Instruction {
	var operands []*Value
	if v != nil {
		operands = []*Value{v}
	}
	return b.insert(&Instruction{op: OpReturn, operands: operands}, nil)
}

// Br branches unconditionally to dest, passing args to its block
// parameters.
func (b *Builder) Br(dest *BasicBlock, args ...*Value) *Instruction {
	if len(args) != len(dest.Params()) {
		panic(fmt.Sprintf("ir: br with %d args to block with %d params", len(args), len(dest.Params())))
	}
	inst := &Instruction{
		op:       OpBr,
		operands: append([]*Value(nil), args...),
		Dests:    []*BasicBlock{dest},
	}
	return b.insert(inst, nil)
}

// CondBr branches to trueDest or falseDest on cond.
func (b *Builder) CondBr(cond *Value, trueDest, falseDest *BasicBlock) *Instruction {
	inst := &Instruction{
		op:       OpCondBr,
		operands: []*Value{cond},
		Dests:    []*BasicBlock{trueDest, falseDest},
	}
	return b.insert(inst, nil)
}
