package inline

import (
	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/splice"
)

// closureCleanup tracks function-valued instructions that may have
// become dead while call sites were deleted, then sweeps them after
// the enclosing function is fully processed.
//
// Entries are kept in insertion order. An instruction deleted by an
// earlier cleanup step is evicted in place rather than removed, so
// iteration stays stable while the set shrinks underneath it.
type closureCleanup struct {
	items []*ir.Instruction
	index map[*ir.Instruction]int
}

// recordDeadFunction is installed as the splice engine's deletion
// callback. Every function-typed operand of a deleted instruction
// names a producer that may now be dead.
func (c *closureCleanup) recordDeadFunction(inst *ir.Instruction) {
	for _, operand := range inst.Operands() {
		if !ir.IsFunction(operand.Type()) {
			continue
		}
		def := operand.Def()
		if def == nil || def.Erased() {
			continue
		}
		c.add(def)
	}
}

func (c *closureCleanup) add(inst *ir.Instruction) {
	if c.index == nil {
		c.index = make(map[*ir.Instruction]int)
	}
	if _, ok := c.index[inst]; ok {
		return
	}
	c.index[inst] = len(c.items)
	c.items = append(c.items, inst)
}

// InstructionDeleted implements ir.DeletionObserver. While the sweep
// runs, any instruction the module deletes is evicted so a later
// iteration cannot touch freed IR.
func (c *closureCleanup) InstructionDeleted(inst *ir.Instruction) {
	if i, ok := c.index[inst]; ok {
		c.items[i] = nil
		delete(c.index, inst)
	}
}

// run sweeps every recorded candidate. The cleanup registers itself as
// a deletion observer for the duration, since deleting one candidate
// routinely deletes others.
func (c *closureCleanup) run(m *ir.Module) {
	if len(c.items) == 0 {
		return
	}
	m.RegisterDeletionObserver(c)
	defer m.UnregisterDeletionObserver(c)

	for i := 0; i < len(c.items); i++ {
		inst := c.items[i]
		if inst == nil || inst.Erased() {
			continue
		}
		c.items[i] = nil
		delete(c.index, inst)
		c.cleanupCalleeValue(inst)
	}
	c.items = c.items[:0]
	c.index = nil
}

// cleanupCalleeValue deletes a callee-producing chain that lost its
// last call site: conversion wrappers are peeled while dead, and the
// underlying closure or reference is removed if nothing but lifetime
// management still uses it.
func (c *closureCleanup) cleanupCalleeValue(inst *ir.Instruction) {
	if inst.Erased() {
		return
	}
	if inst.Op() == ir.OpLoad {
		c.cleanupLoadedCalleeValue(inst)
		return
	}

	for {
		switch inst.Op() {
		case ir.OpConvertFunc, ir.OpConvertEscape, ir.OpMarkDependence:
		default:
			goto peeled
		}
		if inst.Result().NumUses() > 0 {
			return
		}
		inner := inst.Operand(0).Def()
		inst.Erase()
		if inner == nil || inner.Erased() {
			return
		}
		inst = inner
	}

peeled:
	switch inst.Op() {
	case ir.OpPartialApply, ir.OpThinToThick:
		splice.TryDeleteDeadClosure(inst, nil)
	default:
		splice.RecursivelyDeleteTriviallyDead(inst, nil)
	}
}

// cleanupLoadedCalleeValue handles the boxed-closure pattern: once the
// load feeding the deleted call is dead, the store, projection, box
// and its lifetime instructions can go, and the stored closure chain
// is cleaned like a direct callee value.
func (c *closureCleanup) cleanupLoadedCalleeValue(load *ir.Instruction) {
	if load.Result().NumUses() > 0 {
		return
	}
	proj := defOp(load.Operand(0), ir.OpProjectBox)
	load.Erase()
	if proj == nil {
		return
	}

	var store *ir.Instruction
	for _, u := range proj.Result().Users() {
		if u.Erased() {
			continue
		}
		if u.Op() == ir.OpStore && u.Operand(1) == proj.Result() && store == nil {
			store = u
			continue
		}
		// Another load or store keeps the box live.
		return
	}
	if store == nil {
		return
	}

	stored := store.Operand(0).Def()
	store.Erase()
	box := defOp(proj.Operand(0), ir.OpAllocBox)
	proj.Erase()

	if box != nil {
		for _, u := range box.Result().Users() {
			if u.Erased() {
				continue
			}
			if u.Op() == ir.OpRetain || u.Op() == ir.OpRelease {
				u.Erase()
			}
		}
		if box.Result().NumUses() == 0 {
			box.Erase()
		}
	}

	if stored != nil && !stored.Erased() {
		c.cleanupCalleeValue(stored)
	}
}
