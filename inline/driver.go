package inline

import (
	"go.uber.org/zap"

	"github.com/wippyai/ssair/devirt"
	"github.com/wippyai/ssair/diag"
	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/splice"
)

// inliningSet is a persistent linked list of the functions on the
// active inlining path, each paired with the apply site that entered
// it. Frames are pushed by value on recursion, so unwinding needs no
// cleanup and sibling branches never see each other's frames.
type inliningSet struct {
	fn   *ir.Function
	site *ir.Instruction
	next *inliningSet
}

func (s *inliningSet) contains(f *ir.Function) bool {
	for ; s != nil; s = s.next {
		if s.fn == f {
			return true
		}
	}
	return false
}

// runOnFunctionRecursively flattens every must-inline call site in f,
// recursing into each callee first so bodies are spliced in fully
// flattened form. site is the apply that entered f, nil at the top
// level. Returns false when a circular must-inline dependency was
// diagnosed; the failure unwinds to the top-level function, which is
// then left partially processed.
func (p *Pass) runOnFunctionRecursively(f *ir.Function, site *ir.Instruction, set *inliningSet) bool {
	if p.fullyInlined[f] {
		return true
	}
	set = &inliningSet{fn: f, site: site, next: set}

	cleanup := &closureCleanup{}

	// Reverse scan. Inlining splits the current block and moves the
	// already-visited suffix into a detached tail, so resuming at the
	// last inlined block never revisits an instruction.
	for bi := f.NumBlocks() - 1; bi >= 0; bi-- {
		blk := f.Blocks()[bi]
		for ii := blk.NumInstructions() - 1; ii >= 0; ii-- {
			inst := blk.Instructions()[ii]
			if inst.Erased() || !inst.IsApplySite() {
				continue
			}

			if repl := devirt.TryDevirtualize(inst); repl != nil {
				devirt.DeleteDevirtualizedApply(inst, repl)
				inst = repl
				blk = inst.Parent()
				bi = f.IndexOfBlock(blk)
				ii = blk.IndexOf(inst)
				p.stats.Devirtualized++
			}

			res, ok := p.resolveCallee(f, inst)
			if !ok {
				continue
			}
			callee := res.callee

			if set.contains(callee) {
				p.Diags.Report(inst.Loc, diag.CircularMustInline)
				for frame := set; frame != nil; frame = frame.next {
					if frame.site != nil {
						p.Diags.Report(frame.site.Loc, diag.NoteWhileInlining)
					}
				}
				return false
			}
			if !p.runOnFunctionRecursively(callee, inst, set) {
				return false
			}

			subs := inst.Subs
			if res.partialApply != nil {
				subs = res.partialApply.Subs
			}
			for _, opened := range subs.OpenedTypes() {
				f.RegisterOpenedType(opened)
			}
			for _, opened := range inst.Subs.OpenedTypes() {
				f.RegisterOpenedType(opened)
			}

			inliner := &splice.Inliner{Subs: subs, OnDelete: cleanup.recordDeadFunction}
			if !inliner.CanInline(callee, inst, res.fullArgs) {
				continue
			}

			if res.thick {
				guaranteed := false
				if ft, ok := res.calleeValue.Type().(ir.FuncType); ok {
					guaranteed = ft.CalleeGuaranteed
				}
				fixupReferenceCounts(inst, res.calleeValue, res.captures, guaranteed)
			}

			_, lastBB := inliner.Inline(callee, inst, res.fullArgs)
			p.stats.Inlined++
			Logger().Debug("inlined call site",
				zap.String("caller", f.Name),
				zap.String("callee", callee.Name))

			// Resume the reverse scan at the end of the last block that
			// received inlined code.
			bi = f.IndexOfBlock(lastBB) + 1
			break
		}
	}

	cleanup.run(f.Module())
	p.fullyInlined[f] = true
	return true
}
