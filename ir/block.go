package ir

// BasicBlock is an ordered sequence of instructions owned by a
// Function. Blocks may carry parameters; branch instructions pass
// matching argument values.
type BasicBlock struct {
	parent *Function
	instrs []*Instruction
	params []*Value
}

// Parent returns the owning function.
func (b *BasicBlock) Parent() *Function { return b.parent }

// Instructions returns the block's instructions in order. The
// returned slice is the live backing slice; callers must not mutate
// it directly.
func (b *BasicBlock) Instructions() []*Instruction { return b.instrs }

// NumInstructions returns the instruction count.
func (b *BasicBlock) NumInstructions() int { return len(b.instrs) }

// Params returns the block parameter values.
func (b *BasicBlock) Params() []*Value { return b.params }

// AddParam appends a new block parameter of the given type and
// returns its value.
func (b *BasicBlock) AddParam(t Type) *Value {
	v := &Value{typ: t, block: b}
	b.params = append(b.params, v)
	return v
}

// Terminator returns the block's final instruction if it is a
// terminator, else nil.
func (b *BasicBlock) Terminator() *Instruction {
	if len(b.instrs) == 0 {
		return nil
	}
	last := b.instrs[len(b.instrs)-1]
	if !last.op.IsTerminator() {
		return nil
	}
	return last
}

// IndexOf returns the position of inst in the block, or -1.
func (b *BasicBlock) IndexOf(inst *Instruction) int {
	for i, in := range b.instrs {
		if in == inst {
			return i
		}
	}
	return -1
}

// append adds inst at the end of the block.
func (b *BasicBlock) append(inst *Instruction) {
	inst.parent = b
	b.instrs = append(b.instrs, inst)
}

// insertAt places inst at position i, shifting later instructions.
func (b *BasicBlock) insertAt(i int, inst *Instruction) {
	inst.parent = b
	b.instrs = append(b.instrs, nil)
	copy(b.instrs[i+1:], b.instrs[i:])
	b.instrs[i] = inst
}

// remove unlinks inst from the block without touching def-use edges.
// Instruction.Erase is the public removal path.
func (b *BasicBlock) remove(inst *Instruction) {
	for i, in := range b.instrs {
		if in == inst {
			b.instrs = append(b.instrs[:i], b.instrs[i+1:]...)
			return
		}
	}
}

// SplitAfter detaches every instruction after inst into a fresh
// block. The new block belongs to the same function but is not yet
// linked into the block list; link it with InsertBlockAfter.
func (b *BasicBlock) SplitAfter(inst *Instruction) *BasicBlock {
	idx := b.IndexOf(inst)
	if idx < 0 {
		panic("ir: SplitAfter on instruction outside block")
	}
	tail := &BasicBlock{parent: b.parent}
	moved := b.instrs[idx+1:]
	tail.instrs = make([]*Instruction, len(moved))
	copy(tail.instrs, moved)
	for _, in := range tail.instrs {
		in.parent = tail
	}
	b.instrs = b.instrs[:idx+1]
	return tail
}

// Successors returns the blocks this block's terminator branches to.
func (b *BasicBlock) Successors() []*BasicBlock {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	return term.Dests
}

// Predecessors returns the blocks branching to b. Computed on demand;
// the IR does not cache predecessor lists.
func (b *BasicBlock) Predecessors() []*BasicBlock {
	var preds []*BasicBlock
	for _, other := range b.parent.blocks {
		for _, succ := range other.Successors() {
			if succ == b {
				preds = append(preds, other)
				break
			}
		}
	}
	return preds
}
