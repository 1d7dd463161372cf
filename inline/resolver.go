package inline

import (
	"fmt"

	"github.com/wippyai/ssair/ir"
)

// capture is a closure-captured argument paired with its ownership
// convention.
type capture struct {
	value *ir.Value
	conv  ir.Convention
}

// resolution describes an apply site whose callee was traced back to
// a statically known function.
type resolution struct {
	// callee is the resolved function.
	callee *ir.Function
	// calleeValue is the apply's original callee value, needed for
	// reference-count compensation and dead-closure cleanup.
	calleeValue *ir.Value
	// thick marks a call whose callee value carried context.
	thick bool
	// captures are the closure's bound arguments, in order.
	captures []capture
	// fullArgs is the effective argument list for the inlined body:
	// the apply's own arguments followed by the captures.
	fullArgs []*ir.Value
	// partialApply is the traversed closure-forming instruction, if
	// any. Its substitution map takes precedence over the apply's.
	partialApply *ir.Instruction
}

// defOp returns v's defining instruction when it is a live
// instruction of the given op, else nil.
func defOp(v *ir.Value, op ir.Op) *ir.Instruction {
	def := v.Def()
	if def == nil || def.Erased() || def.Op() != op {
		return nil
	}
	return def
}

// resolveCallee pattern-matches the apply site's callee value through
// closures and conversions to a statically known must-inline
// function. Any mismatch along the way fails the resolution; the call
// is simply left alone.
func (p *Pass) resolveCallee(caller *ir.Function, site *ir.Instruction) (*resolution, bool) {
	res := &resolution{
		calleeValue: site.Callee(),
		fullArgs:    site.Args(),
	}
	v := site.Callee()

	// A load from boxed local storage is looked through only when the
	// box provably holds exactly one value.
	if load := defOp(v, ir.OpLoad); load != nil {
		v = lookThroughLoadedBox(load)
		if v == nil {
			return nil, false
		}
	}

	v = skipFunctionConversions(v)

	// At most one closure-forming instruction may be traversed; this
	// is where captures are collected and the call becomes thick.
	if pai := defOp(v, ir.OpPartialApply); pai != nil {
		for i, arg := range pai.Args() {
			res.captures = append(res.captures, capture{value: arg, conv: pai.Conventions[i]})
			res.fullArgs = append(res.fullArgs, arg)
		}
		v = pai.Callee()
		res.thick = true
		res.partialApply = pai
	} else if ttf := defOp(v, ir.OpThinToThick); ttf != nil {
		v = ttf.Operand(0)
		res.thick = true
	}

	v = skipFunctionConversions(v)

	ref := defOp(v, ir.OpFunctionRef)
	if ref == nil {
		return nil, false
	}
	callee := ref.Func

	if callee.Rep.Foreign() {
		return nil, false
	}
	if !callee.MustInline || callee.Thunk {
		return nil, false
	}
	if callee.Empty() {
		caller.Module().LoadFunction(callee)
	}
	if callee.Empty() {
		return nil, false
	}
	if caller.Serialized && !callee.ValidForFragileInline() {
		if !callee.ValidForFragileRef() {
			// An earlier verification stage is expected to rule this
			// out; reaching it is an internal consistency failure.
			panic(fmt.Sprintf(
				"inline: serialized caller %q references callee %q with no valid fragile linkage",
				caller.Name, callee.Name))
		}
		return nil, false
	}

	res.callee = callee
	return res, true
}

// lookThroughLoadedBox returns the single value stored into the box a
// load reads from, or nil when the box's uses do not match the
// expected store/retain/release/load pattern.
func lookThroughLoadedBox(load *ir.Instruction) *ir.Value {
	proj := defOp(load.Operand(0), ir.OpProjectBox)
	if proj == nil {
		return nil
	}
	box := defOp(proj.Operand(0), ir.OpAllocBox)
	if box == nil {
		return nil
	}
	// The box must have no uses beyond the projection and lifetime
	// management.
	ok := box.Result().OnlyUsedBy(func(u *ir.Instruction) bool {
		return u == proj || u.Op() == ir.OpRetain || u.Op() == ir.OpRelease
	})
	if !ok {
		return nil
	}

	// Scan forward from the box for the store, which must appear in
	// the same block and before the load.
	blk := box.Parent()
	instrs := blk.Instructions()
	for i := blk.IndexOf(box); i >= 0 && i < len(instrs); i++ {
		in := instrs[i]
		if in == load {
			// The load reads an uninitialized box.
			return nil
		}
		if in.Op() == ir.OpStore && in.Operand(1) == proj.Result() {
			// Single dominating store found; the projection may have
			// no other uses except loads.
			ok := proj.Result().OnlyUsedBy(func(u *ir.Instruction) bool {
				return u == in || u.Op() == ir.OpLoad
			})
			if !ok {
				return nil
			}
			return in.Operand(0)
		}
	}
	return nil
}

// skipFunctionConversions walks v back through semantically
// transparent wrappers: dependence markers, escaping-to-noescape
// narrowing proven to be a structural no-op, and escaping conversions
// that change no part of the signature.
func skipFunctionConversions(v *ir.Value) *ir.Value {
	for {
		if md := defOp(v, ir.OpMarkDependence); md != nil {
			v = md.Operand(0)
			continue
		}
		if cf := defOp(v, ir.OpConvertFunc); cf != nil {
			from, fok := cf.Operand(0).Type().(ir.FuncType)
			to, tok := cf.Result().Type().(ir.FuncType)
			// A thin escaping-to-noescape cast is a no-op when the
			// types agree with the escaping bit normalized.
			if fok && tok && !from.Rep.HasContext() &&
				ir.TypeEqual(to.WithNoEscape(false), from) {
				v = cf.Operand(0)
				continue
			}
			return v
		}
		if ce := defOp(v, ir.OpConvertEscape); ce != nil {
			from, fok := ce.Operand(0).Type().(ir.FuncType)
			to, tok := ce.Result().Type().(ir.FuncType)
			if fok && tok && ir.TypeEqual(to.WithNoEscape(false), from) {
				v = ce.Operand(0)
				continue
			}
			return v
		}
		return v
	}
}
