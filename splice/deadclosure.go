package splice

import "github.com/wippyai/ssair/ir"

// TryDeleteDeadClosure removes a closure-forming instruction
// (partial_apply or thin_to_thick) whose value is no longer called.
// Uses that merely manage the closure's lifetime (retain, release)
// are erased with it. Captured-argument producers left without uses
// are deleted transitively.
//
// Returns false without modifying the IR when the closure has a
// remaining real use.
func TryDeleteDeadClosure(closure *ir.Instruction, onDelete func(*ir.Instruction)) bool {
	switch closure.Op() {
	case ir.OpPartialApply, ir.OpThinToThick:
	default:
		return false
	}
	result := closure.Result()
	if !result.OnlyUsedBy(func(u *ir.Instruction) bool {
		return u.Op() == ir.OpRetain || u.Op() == ir.OpRelease
	}) {
		return false
	}

	for _, user := range result.Users() {
		if user.Erased() {
			continue
		}
		user.Erase()
		notify(onDelete, user)
	}

	operands := closure.Operands()
	closure.Erase()
	notify(onDelete, closure)

	for _, operand := range operands {
		if def := operand.Def(); def != nil {
			RecursivelyDeleteTriviallyDead(def, onDelete)
		}
	}
	return true
}

// RecursivelyDeleteTriviallyDead erases inst if it has no side
// effects and its result has no remaining uses, then reconsiders its
// operand producers the same way.
func RecursivelyDeleteTriviallyDead(inst *ir.Instruction, onDelete func(*ir.Instruction)) {
	if inst.Erased() || !TriviallyDeadIfUnused(inst) {
		return
	}
	if inst.Result() != nil && inst.Result().NumUses() > 0 {
		return
	}
	operands := inst.Operands()
	inst.Erase()
	notify(onDelete, inst)
	for _, operand := range operands {
		if def := operand.Def(); def != nil {
			RecursivelyDeleteTriviallyDead(def, onDelete)
		}
	}
}

// TriviallyDeadIfUnused reports whether the instruction may be erased
// once its result is unused. Closure construction is excluded here;
// TryDeleteDeadClosure handles it with capture cleanup.
func TriviallyDeadIfUnused(inst *ir.Instruction) bool {
	switch inst.Op() {
	case ir.OpFunctionRef, ir.OpThinToThick, ir.OpConvertFunc,
		ir.OpConvertEscape, ir.OpMarkDependence, ir.OpConst,
		ir.OpClassMethod, ir.OpAllocRef:
		return true
	}
	return false
}

func notify(onDelete func(*ir.Instruction), inst *ir.Instruction) {
	if onDelete != nil {
		onDelete(inst)
	}
}
