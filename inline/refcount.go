package inline

import (
	"fmt"

	"github.com/wippyai/ssair/ir"
)

// fixupReferenceCounts compensates for the closure that is about to
// disappear. The closure consumed its by-value captures at formation
// and would have released them on its own destruction; once the call
// is direct, each such capture needs an extra retain so the inlined
// body's releases stay balanced. The closure value itself is released
// after the call unless the calling convention already guarantees the
// caller keeps it alive.
func fixupReferenceCounts(site *ir.Instruction, calleeValue *ir.Value, captures []capture, guaranteed bool) {
	before := ir.NewBuilderBefore(site)
	before.Loc = site.Loc
	for _, cap := range captures {
		if cap.conv == ir.ConvIndirectOwned {
			// Correct compensation for indirect owned captures needs a
			// copy of the pointed-to value, which this IR cannot
			// express. Refuse loudly rather than miscount.
			panic(fmt.Sprintf(
				"inline: cannot balance indirect owned capture while inlining into %q",
				site.Function().Name))
		}
		if ir.IsAddress(cap.value.Type()) {
			continue
		}
		if cap.conv == ir.ConvGuaranteed || cap.conv == ir.ConvUnowned {
			continue
		}
		before.Retain(cap.value)
	}

	if !guaranteed {
		after := ir.NewBuilderAfter(site)
		after.Loc = site.Loc
		after.Release(calleeValue)
	}
}
