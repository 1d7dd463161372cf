package devirt

import (
	"go.uber.org/zap"

	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/splice"
)

// TryDevirtualize attempts to rewrite the apply site into a direct
// call. On success it returns the new apply, inserted directly before
// the original; the original site is left intact for the caller to
// delete with DeleteDevirtualizedApply. Returns nil when the callee
// cannot be statically resolved.
func TryDevirtualize(site *ir.Instruction) *ir.Instruction {
	if !site.IsApplySite() {
		return nil
	}
	method := site.Callee().Def()
	if method == nil || method.Op() != ir.OpClassMethod {
		return nil
	}
	receiver := method.Operand(0)
	alloc := receiver.Def()
	if alloc == nil || alloc.Op() != ir.OpAllocRef {
		return nil
	}
	module := site.Function().Module()
	impl := module.LookupMethod(alloc.Class, method.Method)
	if impl == nil {
		return nil
	}

	Logger().Debug("devirtualized",
		zap.String("class", alloc.Class),
		zap.String("method", method.Method),
		zap.String("impl", impl.Name))

	builder := ir.NewBuilderBefore(site)
	builder.Loc = site.Loc
	ref := builder.FunctionRef(impl)
	return builder.Apply(ref.Result(), site.Args(), site.Subs)
}

// DeleteDevirtualizedApply erases the original apply after a
// successful rewrite, forwarding its result to the replacement, and
// cleans up the now-dead method lookup.
func DeleteDevirtualizedApply(site, replacement *ir.Instruction) {
	method := site.Callee().Def()
	if site.Result() != nil {
		site.ReplaceAllUsesWith(replacement.Result())
	}
	site.Erase()
	if method != nil {
		splice.RecursivelyDeleteTriviallyDead(method, nil)
	}
}
