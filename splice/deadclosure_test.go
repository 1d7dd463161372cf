package splice

import (
	"testing"

	"github.com/wippyai/ssair/ir"
)

func TestTryDeleteDeadClosure(t *testing.T) {
	m := ir.NewModule("test")
	g := m.NewFunction("g", ir.FuncType{Result: intType, Params: []ir.Type{intType, intType}})
	f := m.NewFunction("f", ir.FuncType{Params: []ir.Type{intType}})
	bb := f.NewBlock()
	x := bb.AddParam(intType)

	b := ir.NewBuilder(bb)
	ref := b.FunctionRef(g)
	pa := b.PartialApply(ref.Result(), []*ir.Value{x}, []ir.Convention{ir.ConvOwned}, nil, true, false)
	b.Retain(pa.Result())
	b.Release(pa.Result())
	b.Return(nil)

	var deleted []*ir.Instruction
	if !TryDeleteDeadClosure(pa, func(inst *ir.Instruction) { deleted = append(deleted, inst) }) {
		t.Fatal("TryDeleteDeadClosure = false")
	}
	if bb.NumInstructions() != 1 {
		t.Errorf("block has %d instructions, want only the return", bb.NumInstructions())
	}
	if g.RefCount() != 0 {
		t.Errorf("g RefCount = %d, want 0", g.RefCount())
	}
	if len(deleted) != 4 {
		t.Errorf("callback saw %d deletions, want 4", len(deleted))
	}
}

func TestTryDeleteDeadClosureStillCalled(t *testing.T) {
	m := ir.NewModule("test")
	g := m.NewFunction("g", ir.FuncType{Result: intType, Params: []ir.Type{intType}})
	f := m.NewFunction("f", ir.FuncType{Result: intType, Params: []ir.Type{intType}})
	bb := f.NewBlock()
	x := bb.AddParam(intType)

	b := ir.NewBuilder(bb)
	ref := b.FunctionRef(g)
	pa := b.PartialApply(ref.Result(), []*ir.Value{x}, []ir.Convention{ir.ConvOwned}, nil, true, false)
	call := b.Apply(pa.Result(), nil, nil)
	b.Return(call.Result())

	if TryDeleteDeadClosure(pa, nil) {
		t.Fatal("deleted a closure that is still called")
	}
	if bb.NumInstructions() != 4 {
		t.Errorf("block has %d instructions, want 4 untouched", bb.NumInstructions())
	}
}

func TestTryDeleteDeadClosureWrongOp(t *testing.T) {
	m := ir.NewModule("test")
	g := m.NewFunction("g", ir.FuncType{Result: intType})
	f := m.NewFunction("f", ir.FuncType{})
	bb := f.NewBlock()

	b := ir.NewBuilder(bb)
	ref := b.FunctionRef(g)
	b.Return(nil)

	if TryDeleteDeadClosure(ref, nil) {
		t.Error("function_ref treated as a closure")
	}
}

func TestRecursivelyDeleteTriviallyDead(t *testing.T) {
	m := ir.NewModule("test")
	g := m.NewFunction("g", ir.FuncType{Result: intType})
	f := m.NewFunction("f", ir.FuncType{})
	bb := f.NewBlock()

	b := ir.NewBuilder(bb)
	ref := b.FunctionRef(g)
	wrapped := b.ThinToThick(ref.Result())
	b.Return(nil)

	RecursivelyDeleteTriviallyDead(wrapped, nil)
	if bb.NumInstructions() != 1 {
		t.Errorf("block has %d instructions, want only the return", bb.NumInstructions())
	}
	if g.RefCount() != 0 {
		t.Errorf("g RefCount = %d, want 0", g.RefCount())
	}
}

func TestRecursivelyDeleteStopsAtLiveUses(t *testing.T) {
	m := ir.NewModule("test")
	f := m.NewFunction("f", ir.FuncType{Result: intType})
	bb := f.NewBlock()

	b := ir.NewBuilder(bb)
	c := b.Const(1, intType)
	use := b.Builtin("use", []*ir.Value{c.Result()}, intType)
	b.Return(use.Result())

	RecursivelyDeleteTriviallyDead(c, nil)
	if c.Erased() {
		t.Error("erased a constant that still has uses")
	}
}

func TestTriviallyDeadIfUnused(t *testing.T) {
	m := ir.NewModule("test")
	g := m.NewFunction("g", ir.FuncType{Result: intType, Params: []ir.Type{intType}})
	f := m.NewFunction("f", ir.FuncType{Params: []ir.Type{intType}})
	bb := f.NewBlock()
	x := bb.AddParam(intType)

	b := ir.NewBuilder(bb)
	ref := b.FunctionRef(g)
	pa := b.PartialApply(ref.Result(), []*ir.Value{x}, []ir.Convention{ir.ConvOwned}, nil, true, false)
	rel := b.Release(pa.Result())
	b.Return(nil)

	if !TriviallyDeadIfUnused(ref) {
		t.Error("function_ref not trivially dead")
	}
	if TriviallyDeadIfUnused(pa) {
		t.Error("partial_apply reported trivially dead; it needs capture cleanup")
	}
	if TriviallyDeadIfUnused(rel) {
		t.Error("release reported trivially dead")
	}
}
