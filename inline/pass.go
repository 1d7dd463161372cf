package inline

import (
	"go.uber.org/zap"

	"github.com/wippyai/ssair/cfg"
	"github.com/wippyai/ssair/diag"
	"github.com/wippyai/ssair/ir"
)

// Stats summarizes one run of the pass.
type Stats struct {
	// Inlined counts call sites replaced by callee bodies.
	Inlined int
	// Devirtualized counts class method calls rewritten to direct
	// calls.
	Devirtualized int
	// Removed counts dead must-inline functions swept from the module.
	Removed int
}

// Pass runs mandatory inlining over a module.
type Pass struct {
	// Diags receives diagnostics for circular must-inline chains.
	Diags *diag.Engine

	stats        Stats
	fullyInlined map[*ir.Function]bool
}

// NewPass creates a pass reporting into diags. A nil diags gets a
// private engine; use Diags to read it back.
func NewPass(diags *diag.Engine) *Pass {
	if diags == nil {
		diags = diag.NewEngine()
	}
	return &Pass{
		Diags:        diags,
		fullyInlined: make(map[*ir.Function]bool),
	}
}

// Run processes every function in the module. Thunks and functions
// deserialized in canonical form are already flattened and are
// skipped. After inlining, single-predecessor block chains left by
// splicing are merged and must-inline functions with no remaining
// references are removed.
func (p *Pass) Run(m *ir.Module) Stats {
	snapshot := append([]*ir.Function(nil), m.Functions()...)
	for _, f := range snapshot {
		if f.Thunk || f.Deserialized || f.Empty() {
			continue
		}
		p.runOnFunctionRecursively(f, nil, nil)
		cfg.MergeBlocks(f)
	}

	p.sweepDeadFunctions(m)

	Logger().Info("mandatory inlining complete",
		zap.String("module", m.Name),
		zap.Int("inlined", p.stats.Inlined),
		zap.Int("devirtualized", p.stats.Devirtualized),
		zap.Int("removed", p.stats.Removed))
	return p.stats
}

// sweepDeadFunctions removes must-inline functions whose last
// reference disappeared during inlining. Dropping one body can free
// references held by another, so the sweep repeats until it finds
// nothing to remove.
func (p *Pass) sweepDeadFunctions(m *ir.Module) {
	for {
		removed := false
		for _, f := range append([]*ir.Function(nil), m.Functions()...) {
			if !f.MustInline || f.PossiblyUsedExternally() {
				continue
			}
			if f.Rep == ir.RepObjCMethod || m.ReferencedFromMethodTables(f) {
				continue
			}
			if f.RefCount() != 0 {
				continue
			}
			Logger().Debug("removing dead function", zap.String("name", f.Name))
			f.DropBody()
			m.RemoveFunction(f)
			p.stats.Removed++
			removed = true
		}
		if !removed {
			return
		}
	}
}
