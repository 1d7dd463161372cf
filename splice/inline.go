package splice

import (
	"go.uber.org/zap"

	"github.com/wippyai/ssair/ir"
)

// Inliner splices callee bodies into callers under a substitution map.
//
// The zero Inliner is usable; Subs and OnDelete are optional.
type Inliner struct {
	// Subs binds the callee's generic parameters for this splice.
	Subs ir.SubstitutionMap

	// OnDelete, when set, is invoked synchronously for every
	// instruction the engine deletes.
	OnDelete func(*ir.Instruction)
}

func (il *Inliner) deleted(inst *ir.Instruction) {
	if il.OnDelete != nil {
		il.OnDelete(inst)
	}
}

// CanInline reports whether the apply site is structurally inlinable:
// the callee has a loadable body, a non-foreign representation, and
// the effective arguments are ABI-compatible with its parameters
// under the inliner's substitution map.
func (il *Inliner) CanInline(callee *ir.Function, site *ir.Instruction, args []*ir.Value) bool {
	if !site.IsApplySite() {
		return false
	}
	if callee.Empty() || callee.Rep.Foreign() {
		return false
	}
	if len(args) != len(callee.Type.Params) {
		return false
	}
	for i, param := range callee.Type.Params {
		if !abiCompatible(il.Subs.Apply(param), args[i].Type()) {
			return false
		}
	}
	return true
}

// abiCompatible reports whether a value of type have may be passed
// where want is expected. Function types compare with the escaping
// bit normalized; unbound generic parameters accept anything.
func abiCompatible(want, have ir.Type) bool {
	if _, generic := want.(ir.GenericType); generic {
		return true
	}
	if ir.TypeEqual(want, have) {
		return true
	}
	wf, wok := want.(ir.FuncType)
	hf, hok := have.(ir.FuncType)
	if wok && hok {
		return ir.TypeEqual(wf.WithNoEscape(false), hf.WithNoEscape(false))
	}
	return false
}

// Inline splices callee's body into the caller at site, substituting
// args for the callee's parameters. The apply instruction is deleted.
//
// Returns the first inlined instruction and the last block containing
// inlined code. Instructions that followed the apply are moved to a
// detached tail block after the inlined code; a reverse scan resuming
// at the returned block never revisits them.
func (il *Inliner) Inline(callee *ir.Function, site *ir.Instruction, args []*ir.Value) (*ir.Instruction, *ir.BasicBlock) {
	caller := site.Function()
	block := site.Parent()

	Logger().Debug("inlining",
		zap.String("callee", callee.Name),
		zap.String("caller", caller.Name))

	// Detach everything after the apply into the tail block. The
	// apply's result, if any, becomes a parameter of the tail so
	// every return path can feed it.
	tail := block.SplitAfter(site)
	if site.Result() != nil {
		resultParam := tail.AddParam(site.Result().Type())
		site.ReplaceAllUsesWith(resultParam)
	}
	site.Erase()
	il.deleted(site)

	// First pass: create a clone target per callee block. The entry
	// block clones straight into the call block; its parameters are
	// the effective arguments.
	valueMap := make(map[*ir.Value]*ir.Value)
	blockMap := make(map[*ir.BasicBlock]*ir.BasicBlock)
	entry := callee.Entry()
	blockMap[entry] = block
	for i, param := range entry.Params() {
		valueMap[param] = args[i]
	}
	prev := block
	for _, bb := range callee.Blocks()[1:] {
		clone := &ir.BasicBlock{}
		caller.InsertBlockAfter(clone, prev)
		for _, param := range bb.Params() {
			valueMap[param] = clone.AddParam(il.Subs.Apply(param.Type()))
		}
		blockMap[bb] = clone
		prev = clone
	}
	caller.InsertBlockAfter(tail, prev)

	// Second pass: clone instructions.
	prefixLen := block.NumInstructions()
	for _, bb := range callee.Blocks() {
		builder := ir.NewBuilder(blockMap[bb])
		for _, inst := range bb.Instructions() {
			builder.Loc = inst.Loc
			cloned := il.cloneInstruction(builder, inst, tail, valueMap, blockMap)
			if inst.Result() != nil {
				valueMap[inst.Result()] = cloned.Result()
			}
		}
	}

	first := block.Instructions()[prefixLen]
	last := prev
	return first, last
}

func (il *Inliner) cloneInstruction(b *ir.Builder, inst *ir.Instruction, tail *ir.BasicBlock, valueMap map[*ir.Value]*ir.Value, blockMap map[*ir.BasicBlock]*ir.BasicBlock) *ir.Instruction {
	mapped := func(v *ir.Value) *ir.Value {
		if mv, ok := valueMap[v]; ok {
			return mv
		}
		return v
	}
	mappedAll := func(vs []*ir.Value) []*ir.Value {
		out := make([]*ir.Value, len(vs))
		for i, v := range vs {
			out[i] = mapped(v)
		}
		return out
	}

	switch inst.Op() {
	case ir.OpFunctionRef:
		return b.FunctionRef(inst.Func)
	case ir.OpPartialApply:
		args := mappedAll(inst.Args())
		guaranteed := false
		if ft, ok := inst.Result().Type().(ir.FuncType); ok {
			guaranteed = ft.CalleeGuaranteed
		}
		return b.PartialApply(mapped(inst.Callee()), args, inst.Conventions, il.compose(inst.Subs), guaranteed, inst.OnStack)
	case ir.OpThinToThick:
		return b.ThinToThick(mapped(inst.Operand(0)))
	case ir.OpConvertFunc:
		to := il.Subs.Apply(inst.Result().Type()).(ir.FuncType)
		return b.ConvertFunc(mapped(inst.Operand(0)), to)
	case ir.OpConvertEscape:
		return b.ConvertEscape(mapped(inst.Operand(0)))
	case ir.OpMarkDependence:
		return b.MarkDependence(mapped(inst.Operand(0)), mapped(inst.Operand(1)))
	case ir.OpApply:
		return b.Apply(mapped(inst.Callee()), mappedAll(inst.Args()), il.compose(inst.Subs))
	case ir.OpClassMethod:
		t := il.Subs.Apply(inst.Result().Type()).(ir.FuncType)
		return b.ClassMethod(mapped(inst.Operand(0)), inst.Method, t)
	case ir.OpAllocBox:
		return b.AllocBox(il.Subs.Apply(inst.Result().Type().(ir.BoxType).Elem))
	case ir.OpProjectBox:
		return b.ProjectBox(mapped(inst.Operand(0)))
	case ir.OpStore:
		return b.Store(mapped(inst.Operand(0)), mapped(inst.Operand(1)))
	case ir.OpLoad:
		return b.Load(mapped(inst.Operand(0)))
	case ir.OpRetain:
		return b.Retain(mapped(inst.Operand(0)))
	case ir.OpRelease:
		return b.Release(mapped(inst.Operand(0)))
	case ir.OpAllocRef:
		return b.AllocRef(inst.Class)
	case ir.OpConst:
		return b.Const(inst.ConstValue, il.Subs.Apply(inst.Result().Type()))
	case ir.OpBuiltin:
		var result ir.Type
		if inst.Result() != nil {
			result = il.Subs.Apply(inst.Result().Type())
		}
		return b.Builtin(inst.BuiltinName, mappedAll(inst.Operands()), result)
	case ir.OpReturn:
		// Callee returns become branches to the tail block.
		if inst.NumOperands() > 0 {
			return b.Br(tail, mapped(inst.Operand(0)))
		}
		return b.Br(tail)
	case ir.OpBr:
		return b.Br(blockMap[inst.Dests[0]], mappedAll(inst.Operands())...)
	case ir.OpCondBr:
		return b.CondBr(mapped(inst.Operand(0)), blockMap[inst.Dests[0]], blockMap[inst.Dests[1]])
	}
	panic("splice: cannot clone " + inst.Op().String())
}

// compose rewrites the bindings of an inner substitution map through
// the inliner's own map, so nested apply sites keep resolving after
// the splice.
func (il *Inliner) compose(inner ir.SubstitutionMap) ir.SubstitutionMap {
	if inner.Empty() {
		return nil
	}
	out := make(ir.SubstitutionMap, len(inner))
	for k, v := range inner {
		out[k] = il.Subs.Apply(v)
	}
	return out
}
