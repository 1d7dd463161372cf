package ir

// Value is the result of an instruction or a parameter of a basic
// block. Uses are tracked eagerly: every operand reference appears
// once in the user list, so a value used twice by one instruction has
// that instruction listed twice.
type Value struct {
	typ   Type
	def   *Instruction // non-nil for instruction results
	block *BasicBlock  // non-nil for block parameters
	users []*Instruction
}

// Type returns the type of the value.
func (v *Value) Type() Type { return v.typ }

// Def returns the defining instruction, or nil for block parameters.
func (v *Value) Def() *Instruction { return v.def }

// Block returns the owning block for block parameters, or nil for
// instruction results.
func (v *Value) Block() *BasicBlock { return v.block }

// NumUses returns the number of remaining operand references to the
// value.
func (v *Value) NumUses() int { return len(v.users) }

// Users returns the instructions currently using the value. The
// returned slice is a copy; an instruction using the value through
// several operands appears once per operand.
func (v *Value) Users() []*Instruction {
	out := make([]*Instruction, len(v.users))
	copy(out, v.users)
	return out
}

// OnlyUsedBy reports whether every use of the value satisfies pred.
// A value with no uses trivially satisfies any predicate.
func (v *Value) OnlyUsedBy(pred func(*Instruction) bool) bool {
	for _, u := range v.users {
		if !pred(u) {
			return false
		}
	}
	return true
}

func (v *Value) addUser(inst *Instruction) {
	v.users = append(v.users, inst)
}

// removeUser removes one operand reference from inst. Erasing an
// instruction calls this once per operand slot.
func (v *Value) removeUser(inst *Instruction) {
	for i, u := range v.users {
		if u == inst {
			v.users = append(v.users[:i], v.users[i+1:]...)
			return
		}
	}
}
