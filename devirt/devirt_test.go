package devirt

import (
	"testing"

	"github.com/wippyai/ssair/ir"
)

var intType = ir.NamedType("Int")

func speakType() ir.FuncType {
	return ir.FuncType{Result: intType, Params: []ir.Type{ir.NamedType("Dog")}, Rep: ir.RepMethod}
}

func buildCaller(m *ir.Module) (*ir.Function, *ir.Instruction) {
	f := m.NewFunction("main", ir.FuncType{Result: intType})
	bb := f.NewBlock()
	b := ir.NewBuilder(bb)
	dog := b.AllocRef("Dog")
	method := b.ClassMethod(dog.Result(), "speak", speakType())
	site := b.Apply(method.Result(), []*ir.Value{dog.Result()}, nil)
	b.Return(site.Result())
	return f, site
}

func TestTryDevirtualize(t *testing.T) {
	m := ir.NewModule("test")
	impl := m.NewFunction("dogSpeak", speakType())
	m.SetMethod("Dog", "speak", impl)
	f, site := buildCaller(m)

	repl := TryDevirtualize(site)
	if repl == nil {
		t.Fatal("TryDevirtualize = nil")
	}
	if repl.Op() != ir.OpApply {
		t.Fatalf("replacement is %v, want apply", repl.Op())
	}
	ref := repl.Callee().Def()
	if ref == nil || ref.Op() != ir.OpFunctionRef || ref.Func != impl {
		t.Error("replacement does not call the table implementation directly")
	}
	if repl.Args()[0] != site.Args()[0] {
		t.Error("receiver argument not forwarded")
	}

	bb := f.Blocks()[0]
	if bb.IndexOf(repl) != bb.IndexOf(site)-1 {
		t.Error("replacement not inserted directly before the original apply")
	}

	DeleteDevirtualizedApply(site, repl)
	if !site.Erased() {
		t.Error("original apply not erased")
	}
	ret := bb.Terminator()
	if ret.Operand(0) != repl.Result() {
		t.Error("result uses not forwarded to the replacement")
	}
	for _, inst := range bb.Instructions() {
		if inst.Op() == ir.OpClassMethod {
			t.Error("dead method lookup not cleaned up")
		}
	}
	if impl.RefCount() != 1 {
		t.Errorf("impl RefCount = %d, want 1", impl.RefCount())
	}
}

func TestTryDevirtualizeUnknownMethod(t *testing.T) {
	m := ir.NewModule("test")
	_, site := buildCaller(m)
	if TryDevirtualize(site) != nil {
		t.Error("devirtualized a method with no table entry")
	}
}

func TestTryDevirtualizeOpaqueReceiver(t *testing.T) {
	m := ir.NewModule("test")
	impl := m.NewFunction("dogSpeak", speakType())
	m.SetMethod("Dog", "speak", impl)

	f := m.NewFunction("main", ir.FuncType{Result: intType, Params: []ir.Type{ir.NamedType("Dog")}})
	bb := f.NewBlock()
	dog := bb.AddParam(ir.NamedType("Dog"))
	b := ir.NewBuilder(bb)
	method := b.ClassMethod(dog, "speak", speakType())
	site := b.Apply(method.Result(), []*ir.Value{dog}, nil)
	b.Return(site.Result())

	if TryDevirtualize(site) != nil {
		t.Error("devirtualized through a receiver of unknown allocation")
	}
}

func TestTryDevirtualizeDirectCall(t *testing.T) {
	m := ir.NewModule("test")
	g := m.NewFunction("g", ir.FuncType{Result: intType})
	f := m.NewFunction("main", ir.FuncType{Result: intType})
	bb := f.NewBlock()
	b := ir.NewBuilder(bb)
	ref := b.FunctionRef(g)
	site := b.Apply(ref.Result(), nil, nil)
	b.Return(site.Result())

	if TryDevirtualize(site) != nil {
		t.Error("rewrote an already-direct call")
	}
}
