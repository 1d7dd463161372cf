package cfg

import (
	"go.uber.org/zap"

	"github.com/wippyai/ssair/ir"
)

// MergeBlocks merges trivially-split blocks: whenever a block ends in
// an unconditional branch to a block with exactly one predecessor,
// the successor's instructions fold into the block and the branch
// disappears. Branch arguments replace the successor's parameters.
// Repeats until no such pair remains.
func MergeBlocks(f *ir.Function) {
	merged := 0
	for mergeOnePair(f) {
		merged++
	}
	if merged > 0 {
		Logger().Debug("merged blocks",
			zap.String("function", f.Name),
			zap.Int("merged", merged))
	}
}

func mergeOnePair(f *ir.Function) bool {
	for _, b := range f.Blocks() {
		term := b.Terminator()
		if term == nil || term.Op() != ir.OpBr {
			continue
		}
		succ := term.Dests[0]
		if succ == b || len(succ.Predecessors()) != 1 {
			continue
		}
		mergeInto(f, b, term, succ)
		return true
	}
	return false
}

func mergeInto(f *ir.Function, b *ir.BasicBlock, term *ir.Instruction, succ *ir.BasicBlock) {
	// Branch arguments stand in for the successor's parameters.
	args := term.Operands()
	for i, param := range succ.Params() {
		replaceValueUses(param, args[i])
	}
	term.Erase()
	for _, inst := range append([]*ir.Instruction(nil), succ.Instructions()...) {
		inst.MoveToEnd(b)
	}
	f.RemoveBlock(succ)
}

func replaceValueUses(old, new *ir.Value) {
	for _, user := range old.Users() {
		user.ReplaceOperand(old, new)
	}
}
