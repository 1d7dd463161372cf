package ir

import "fmt"

// Op identifies the operation an instruction performs.
type Op int

const (
	OpInvalid Op = iota

	// Function values and closures.
	OpFunctionRef  // direct reference to a Function
	OpPartialApply // closure construction binding trailing arguments
	OpThinToThick  // wrap a thin function in a context-free thick value
	OpConvertFunc  // function type conversion (escaping, abstraction)
	OpConvertEscape
	OpMarkDependence

	// Calls.
	OpApply
	OpClassMethod

	// Memory and boxes.
	OpAllocBox
	OpProjectBox
	OpStore
	OpLoad

	// Ownership.
	OpRetain
	OpRelease

	// Misc values.
	OpAllocRef
	OpConst
	OpBuiltin

	// Terminators.
	OpReturn
	OpBr
	OpCondBr
)

var opNames = map[Op]string{
	OpFunctionRef:    "function_ref",
	OpPartialApply:   "partial_apply",
	OpThinToThick:    "thin_to_thick",
	OpConvertFunc:    "convert_function",
	OpConvertEscape:  "convert_escape",
	OpMarkDependence: "mark_dependence",
	OpApply:          "apply",
	OpClassMethod:    "class_method",
	OpAllocBox:       "alloc_box",
	OpProjectBox:     "project_box",
	OpStore:          "store",
	OpLoad:           "load",
	OpRetain:         "retain",
	OpRelease:        "release",
	OpAllocRef:       "alloc_ref",
	OpConst:          "const",
	OpBuiltin:        "builtin",
	OpReturn:         "return",
	OpBr:             "br",
	OpCondBr:         "cond_br",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// IsTerminator reports whether op ends a basic block.
func (op Op) IsTerminator() bool {
	return op == OpReturn || op == OpBr || op == OpCondBr
}

// Convention is the ownership protocol of a captured or passed value.
type Convention int

const (
	ConvOwned Convention = iota
	ConvGuaranteed
	ConvUnowned
	ConvIndirectOwned
)

func (c Convention) String() string {
	switch c {
	case ConvOwned:
		return "owned"
	case ConvGuaranteed:
		return "guaranteed"
	case ConvUnowned:
		return "unowned"
	case ConvIndirectOwned:
		return "indirect_owned"
	}
	return "unknown"
}

// Loc is a source location carried for diagnostics. The zero Loc is
// unknown.
type Loc struct {
	File string
	Line int
	Col  int
}

// Known reports whether the location is set.
func (l Loc) Known() bool { return l.Line != 0 }

func (l Loc) String() string {
	if !l.Known() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Instruction is a single IR operation. Operand slots and op-specific
// fields are populated by the Builder; the operand layout per op is
// documented on the accessors below.
type Instruction struct {
	op       Op
	parent   *BasicBlock
	operands []*Value
	result   *Value
	erased   bool

	// Op-specific payloads.
	Func        *Function      // function_ref
	Method      string         // class_method
	Class       string         // alloc_ref
	Conventions []Convention   // partial_apply: one per captured argument
	OnStack     bool           // partial_apply: stack-allocated context
	Subs        SubstitutionMap // apply, partial_apply
	Dests       []*BasicBlock  // br (1), cond_br (2)
	ConstValue  int64          // const
	BuiltinName string         // builtin

	Loc Loc
}

// Op returns the instruction's operation.
func (in *Instruction) Op() Op { return in.op }

// Parent returns the owning basic block, or nil once erased.
func (in *Instruction) Parent() *BasicBlock { return in.parent }

// Function returns the function containing the instruction.
func (in *Instruction) Function() *Function {
	if in.parent == nil {
		return nil
	}
	return in.parent.parent
}

// Result returns the value the instruction produces, or nil.
func (in *Instruction) Result() *Value { return in.result }

// Operands returns the operand values. The returned slice is a copy.
func (in *Instruction) Operands() []*Value {
	out := make([]*Value, len(in.operands))
	copy(out, in.operands)
	return out
}

// NumOperands returns the operand count.
func (in *Instruction) NumOperands() int { return len(in.operands) }

// Operand returns the i'th operand.
func (in *Instruction) Operand(i int) *Value { return in.operands[i] }

// Erased reports whether the instruction has been removed from the IR.
func (in *Instruction) Erased() bool { return in.erased }

// Callee returns the callee value of an apply or partial_apply.
func (in *Instruction) Callee() *Value {
	switch in.op {
	case OpApply, OpPartialApply:
		return in.operands[0]
	}
	panic("ir: Callee on " + in.op.String())
}

// Args returns the argument values of an apply or partial_apply.
func (in *Instruction) Args() []*Value {
	switch in.op {
	case OpApply, OpPartialApply:
		out := make([]*Value, len(in.operands)-1)
		copy(out, in.operands[1:])
		return out
	}
	panic("ir: Args on " + in.op.String())
}

// IsApplySite reports whether the instruction is a full apply site.
// partial_apply is not a full apply site; it only constructs a value.
func (in *Instruction) IsApplySite() bool { return in.op == OpApply }

// replaceResultUses rewrites every use of the instruction's result to
// use v instead.
func (in *Instruction) replaceResultUses(v *Value) {
	if in.result == nil {
		return
	}
	for _, user := range in.result.Users() {
		for i, operand := range user.operands {
			if operand == in.result {
				user.operands[i] = v
				v.addUser(user)
				in.result.removeUser(user)
			}
		}
	}
}

// ReplaceAllUsesWith rewrites every use of the instruction's result to
// use v instead.
func (in *Instruction) ReplaceAllUsesWith(v *Value) {
	in.replaceResultUses(v)
}

// ReplaceOperand swaps every operand slot holding old for new,
// keeping def-use edges consistent.
func (in *Instruction) ReplaceOperand(old, new *Value) {
	for i, operand := range in.operands {
		if operand == old {
			in.operands[i] = new
			old.removeUser(in)
			new.addUser(in)
		}
	}
}

// MoveToEnd detaches the instruction from its block and appends it to
// dest, preserving all def-use edges.
func (in *Instruction) MoveToEnd(dest *BasicBlock) {
	in.parent.remove(in)
	dest.append(in)
}

// Erase detaches the instruction from all def-use edges, unlinks it
// from its block, and notifies the module's deletion observers. The
// result must have no remaining uses.
func (in *Instruction) Erase() {
	if in.erased {
		panic("ir: double erase of " + in.op.String())
	}
	if in.result != nil && in.result.NumUses() > 0 {
		panic(fmt.Sprintf("ir: erasing %s with %d remaining uses",
			in.op, in.result.NumUses()))
	}
	fn := in.Function()
	for _, operand := range in.operands {
		operand.removeUser(in)
	}
	if in.op == OpFunctionRef && in.Func != nil {
		in.Func.refs--
	}
	in.parent.remove(in)
	in.parent = nil
	in.erased = true
	if fn != nil && fn.module != nil {
		fn.module.notifyInstructionDeleted(in)
	}
}
