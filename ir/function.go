package ir

// Linkage controls a function's visibility and cross-module
// compatibility class.
type Linkage int

const (
	LinkagePublic Linkage = iota
	LinkagePublicExternal
	LinkageHidden
	LinkageShared
	LinkagePrivate
)

func (l Linkage) String() string {
	switch l {
	case LinkagePublic:
		return "public"
	case LinkagePublicExternal:
		return "public_external"
	case LinkageHidden:
		return "hidden"
	case LinkageShared:
		return "shared"
	case LinkagePrivate:
		return "private"
	}
	return "unknown"
}

// Function is an ordered sequence of basic blocks plus the attribute
// set the inlining pass consults.
type Function struct {
	module *Module

	Name         string
	Type         FuncType
	Linkage      Linkage
	Rep          Representation
	MustInline   bool
	Thunk        bool
	Serialized   bool // body belongs to a fragile (serialized) unit
	Deserialized bool // deserialized in canonical form; not reprocessed

	blocks []*BasicBlock
	refs   int
	opened map[OpenedType]bool
}

// Module returns the owning module.
func (f *Function) Module() *Module { return f.module }

// Blocks returns the function's blocks in program order. The returned
// slice is the live backing slice; callers must not mutate it
// directly.
func (f *Function) Blocks() []*BasicBlock { return f.blocks }

// NumBlocks returns the block count.
func (f *Function) NumBlocks() int { return len(f.blocks) }

// Empty reports whether the function has no body. Bodies may be
// absent until loaded through the module's FunctionLoader.
func (f *Function) Empty() bool { return len(f.blocks) == 0 }

// Entry returns the entry block, or nil for bodiless functions.
func (f *Function) Entry() *BasicBlock {
	if len(f.blocks) == 0 {
		return nil
	}
	return f.blocks[0]
}

// Params returns the entry block's parameters.
func (f *Function) Params() []*Value {
	if e := f.Entry(); e != nil {
		return e.Params()
	}
	return nil
}

// NewBlock appends a fresh block at the end of the function.
func (f *Function) NewBlock() *BasicBlock {
	b := &BasicBlock{parent: f}
	f.blocks = append(f.blocks, b)
	return b
}

// IndexOfBlock returns the position of b in the block list, or -1.
func (f *Function) IndexOfBlock(b *BasicBlock) int {
	for i, blk := range f.blocks {
		if blk == b {
			return i
		}
	}
	return -1
}

// InsertBlockAfter links b into the block list directly after pos.
func (f *Function) InsertBlockAfter(b, pos *BasicBlock) {
	idx := f.IndexOfBlock(pos)
	if idx < 0 {
		panic("ir: InsertBlockAfter position outside function")
	}
	b.parent = f
	f.blocks = append(f.blocks, nil)
	copy(f.blocks[idx+2:], f.blocks[idx+1:])
	f.blocks[idx+1] = b
}

// RemoveBlock unlinks b. The caller is responsible for having erased
// or moved its instructions.
func (f *Function) RemoveBlock(b *BasicBlock) {
	idx := f.IndexOfBlock(b)
	if idx < 0 {
		return
	}
	f.blocks = append(f.blocks[:idx], f.blocks[idx+1:]...)
}

// RefCount returns the module-wide number of function_ref
// instructions referencing the function.
func (f *Function) RefCount() int { return f.refs }

// PossiblyUsedExternally reports whether the function may be
// referenced from outside the compilation unit.
func (f *Function) PossiblyUsedExternally() bool {
	return f.Linkage == LinkagePublic || f.Linkage == LinkagePublicExternal
}

// ValidForFragileInline reports whether the function's body may be
// inlined into a serialized (fragile) caller.
func (f *Function) ValidForFragileInline() bool {
	return f.Serialized
}

// ValidForFragileRef reports whether a serialized caller may retain a
// reference to the function without inlining it.
func (f *Function) ValidForFragileRef() bool {
	return f.Serialized || f.Linkage == LinkagePublic || f.Linkage == LinkagePublicExternal
}

// DropBody erases the entire body, releasing every def-use edge and
// function reference it holds. Deletion observers are notified for
// each instruction.
func (f *Function) DropBody() {
	for _, blk := range f.blocks {
		for _, inst := range blk.instrs {
			for _, operand := range inst.operands {
				operand.removeUser(inst)
			}
			if inst.op == OpFunctionRef && inst.Func != nil {
				inst.Func.refs--
			}
		}
	}
	for _, blk := range f.blocks {
		for _, inst := range blk.instrs {
			inst.parent = nil
			inst.erased = true
			if f.module != nil {
				f.module.notifyInstructionDeleted(inst)
			}
		}
		blk.instrs = nil
	}
	f.blocks = nil
}

// RegisterOpenedType brings an opened generic placeholder into scope
// for code spliced into this function.
func (f *Function) RegisterOpenedType(t OpenedType) {
	if f.opened == nil {
		f.opened = make(map[OpenedType]bool)
	}
	f.opened[t] = true
}

// OpenedInScope reports whether the placeholder is registered.
func (f *Function) OpenedInScope(t OpenedType) bool { return f.opened[t] }
