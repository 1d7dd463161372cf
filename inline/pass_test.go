package inline

import (
	"strings"
	"testing"

	"github.com/wippyai/ssair/diag"
	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/irtext"
)

func parse(t *testing.T, source string) *ir.Module {
	t.Helper()
	m, err := irtext.Parse("test.ssair", source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return m
}

func printFunc(t *testing.T, m *ir.Module, name string) string {
	t.Helper()
	f := m.FindFunction(name)
	if f == nil {
		t.Fatalf("function %s not found", name)
	}
	return ir.PrintFunction(f)
}

func TestRunTransitive(t *testing.T) {
	m := parse(t, `
func @leaf : $() -> Int [must_inline] {
bb0:
  %0 = const 7 : $Int
  return %0
}

func @mid : $() -> Int [must_inline] {
bb0:
  %0 = function_ref @leaf : $() -> Int
  %1 = apply %0()
  return %1
}

func @main : $() -> Int [public] {
bb0:
  %0 = function_ref @mid : $() -> Int
  %1 = apply %0()
  return %1
}
`)
	stats := NewPass(nil).Run(m)

	if stats.Inlined != 2 {
		t.Errorf("Inlined = %d, want 2", stats.Inlined)
	}
	if stats.Removed != 2 {
		t.Errorf("Removed = %d, want 2", stats.Removed)
	}
	want := `func @main : $() -> Int [public] {
bb0:
  %0 = const 7 : $Int
  return %0
}
`
	if got := printFunc(t, m, "main"); got != want {
		t.Errorf("main after pass:\n%s\nwant:\n%s", got, want)
	}
	if m.FindFunction("leaf") != nil || m.FindFunction("mid") != nil {
		t.Error("dead must-inline helpers not removed")
	}
}

func TestRunIdempotent(t *testing.T) {
	m := parse(t, `
func @leaf : $() -> Int [must_inline] {
bb0:
  %0 = const 7 : $Int
  return %0
}

func @main : $() -> Int [public] {
bb0:
  %0 = function_ref @leaf : $() -> Int
  %1 = apply %0()
  return %1
}
`)
	NewPass(nil).Run(m)
	before := ir.Print(m)

	stats := NewPass(nil).Run(m)
	if stats.Inlined != 0 || stats.Removed != 0 {
		t.Errorf("second run changed the module: %+v", stats)
	}
	if after := ir.Print(m); after != before {
		t.Errorf("second run rewrote the module:\n%s\nwas:\n%s", after, before)
	}
}

func TestRunCircular(t *testing.T) {
	m := parse(t, `
func @a : $() -> () [must_inline] {
bb0:
  %0 = function_ref @b : $() -> ()
  apply %0()
  return
}

func @b : $() -> () [must_inline] {
bb0:
  %0 = function_ref @a : $() -> ()
  apply %0()
  return
}
`)
	diags := diag.NewEngine()
	stats := NewPass(diags).Run(m)

	if stats.Inlined != 0 {
		t.Errorf("Inlined = %d, want 0", stats.Inlined)
	}
	if diags.ErrorCount() != 2 {
		t.Errorf("ErrorCount = %d, want one per cycle entry", diags.ErrorCount())
	}
	notes := 0
	for _, d := range diags.Diagnostics() {
		if d.ID == diag.NoteWhileInlining {
			notes++
		}
	}
	if notes != 2 {
		t.Errorf("got %d notes, want 2", notes)
	}
}

func TestRunSelfRecursive(t *testing.T) {
	m := parse(t, `
func @loop : $() -> () [must_inline] {
bb0:
  %0 = function_ref @loop : $() -> ()
  apply %0()
  return
}
`)
	diags := diag.NewEngine()
	stats := NewPass(diags).Run(m)

	if stats.Inlined != 0 {
		t.Errorf("Inlined = %d, want 0", stats.Inlined)
	}
	if diags.ErrorCount() != 1 {
		t.Errorf("ErrorCount = %d, want 1", diags.ErrorCount())
	}
	for _, d := range diags.Diagnostics() {
		if d.ID == diag.NoteWhileInlining {
			t.Error("self-recursion has no enclosing call site to note")
		}
	}
	if m.FindFunction("loop") == nil {
		t.Error("self-referential function swept despite its remaining reference")
	}
}

func TestRunClosureOwnedCapture(t *testing.T) {
	m := parse(t, `
func @callee : $(Int, Obj) -> Int [must_inline] {
bb0(%0 : $Int, %1 : $Obj):
  release %1
  return %0
}

func @main : $(Int, Obj) -> Int [public] {
bb0(%0 : $Int, %1 : $Obj):
  %2 = function_ref @callee : $(Int, Obj) -> Int
  %3 = partial_apply %2(%1 : owned) [callee_guaranteed]
  %4 = apply %3(%0)
  return %4
}
`)
	stats := NewPass(nil).Run(m)

	if stats.Inlined != 1 {
		t.Fatalf("Inlined = %d, want 1", stats.Inlined)
	}
	// The closure consumed its owned capture; the direct call must
	// retain it so the inlined release stays balanced.
	want := `func @main : $(Int, Obj) -> Int [public] {
bb0(%0 : $Int, %1 : $Obj):
  retain %1
  release %1
  return %0
}
`
	if got := printFunc(t, m, "main"); got != want {
		t.Errorf("main after pass:\n%s\nwant:\n%s", got, want)
	}
	if m.FindFunction("callee") != nil {
		t.Error("dead callee not removed")
	}
}

func TestRunClosureGuaranteedCapture(t *testing.T) {
	m := parse(t, `
func @callee : $(Int, Obj) -> Int [must_inline] {
bb0(%0 : $Int, %1 : $Obj):
  %2 = builtin "peek"(%1) : $Int
  return %2
}

func @main : $(Int, Obj) -> Int [public] {
bb0(%0 : $Int, %1 : $Obj):
  %2 = function_ref @callee : $(Int, Obj) -> Int
  %3 = partial_apply %2(%1 : guaranteed) [callee_guaranteed]
  %4 = apply %3(%0)
  return %4
}
`)
	stats := NewPass(nil).Run(m)

	if stats.Inlined != 1 {
		t.Fatalf("Inlined = %d, want 1", stats.Inlined)
	}
	got := printFunc(t, m, "main")
	if strings.Contains(got, "retain") {
		t.Errorf("guaranteed capture got a compensating retain:\n%s", got)
	}
	if strings.Contains(got, "partial_apply") {
		t.Errorf("dead closure survived:\n%s", got)
	}
}

func TestRunNonGuaranteedClosureReleased(t *testing.T) {
	m := parse(t, `
func @callee : $(Int) -> Int [must_inline] {
bb0(%0 : $Int):
  return %0
}

func @main : $(Int) -> Int [public] {
bb0(%0 : $Int):
  %1 = function_ref @callee : $(Int) -> Int
  %2 = partial_apply %1()
  %3 = apply %2(%0)
  return %3
}
`)
	stats := NewPass(nil).Run(m)

	if stats.Inlined != 1 {
		t.Fatalf("Inlined = %d, want 1", stats.Inlined)
	}
	// The compensating release targets the closure itself and dies
	// with it.
	want := `func @main : $(Int) -> Int [public] {
bb0(%0 : $Int):
  return %0
}
`
	if got := printFunc(t, m, "main"); got != want {
		t.Errorf("main after pass:\n%s\nwant:\n%s", got, want)
	}
}

func TestRunBoxedClosure(t *testing.T) {
	m := parse(t, `
func @callee : $() -> Int [must_inline] {
bb0:
  %0 = const 9 : $Int
  return %0
}

func @main : $() -> Int [public] {
bb0:
  %0 = function_ref @callee : $() -> Int
  %1 = thin_to_thick %0
  %2 = alloc_box $@thick () -> Int
  %3 = project_box %2
  store %1 to %3
  %4 = load %3
  %5 = apply %4()
  release %2
  return %5
}
`)
	stats := NewPass(nil).Run(m)

	if stats.Inlined != 1 {
		t.Fatalf("Inlined = %d, want 1", stats.Inlined)
	}
	got := printFunc(t, m, "main")
	if strings.Contains(got, "apply") {
		t.Errorf("call not inlined through the box:\n%s", got)
	}
	if !strings.Contains(got, "const 9") {
		t.Errorf("callee body missing from main:\n%s", got)
	}
	// The compensating release keeps the load alive, which keeps the
	// box pattern and the stored closure alive.
	if m.FindFunction("callee") == nil {
		t.Error("callee swept while the stored closure still references it")
	}
}

func TestRunNoescapeConversion(t *testing.T) {
	m := parse(t, `
func @callee : $() -> Int [must_inline] {
bb0:
  %0 = const 3 : $Int
  return %0
}

func @main : $() -> Int [public] {
bb0:
  %0 = function_ref @callee : $() -> Int
  %1 = convert_function %0 to $@noescape () -> Int
  %2 = apply %1()
  return %2
}
`)
	stats := NewPass(nil).Run(m)

	if stats.Inlined != 1 {
		t.Fatalf("Inlined = %d, want 1", stats.Inlined)
	}
	want := `func @main : $() -> Int [public] {
bb0:
  %0 = const 3 : $Int
  return %0
}
`
	if got := printFunc(t, m, "main"); got != want {
		t.Errorf("main after pass:\n%s\nwant:\n%s", got, want)
	}
	if m.FindFunction("callee") != nil {
		t.Error("dead callee not removed")
	}
}

func TestRunLeavesOrdinaryCalls(t *testing.T) {
	m := parse(t, `
func @plain : $() -> Int {
bb0:
  %0 = const 1 : $Int
  return %0
}

func @main : $() -> Int [public] {
bb0:
  %0 = function_ref @plain : $() -> Int
  %1 = apply %0()
  return %1
}
`)
	stats := NewPass(nil).Run(m)

	if stats.Inlined != 0 {
		t.Errorf("Inlined = %d, want 0", stats.Inlined)
	}
	if !strings.Contains(printFunc(t, m, "main"), "apply") {
		t.Error("ordinary call rewritten")
	}
}

func TestRunLeavesThunkCallees(t *testing.T) {
	m := parse(t, `
func @shim : $() -> Int [must_inline] [thunk] {
bb0:
  %0 = const 1 : $Int
  return %0
}

func @main : $() -> Int [public] {
bb0:
  %0 = function_ref @shim : $() -> Int
  %1 = apply %0()
  return %1
}
`)
	if stats := NewPass(nil).Run(m); stats.Inlined != 0 {
		t.Errorf("Inlined = %d, want 0", stats.Inlined)
	}
}

func TestRunSkipsDeserializedCallers(t *testing.T) {
	m := parse(t, `
func @callee : $() -> Int [must_inline] {
bb0:
  %0 = const 1 : $Int
  return %0
}

func @main : $() -> Int [public] [deserialized] {
bb0:
  %0 = function_ref @callee : $() -> Int
  %1 = apply %0()
  return %1
}
`)
	if stats := NewPass(nil).Run(m); stats.Inlined != 0 {
		t.Errorf("Inlined = %d, want 0", stats.Inlined)
	}
}

func TestRunSerializedCaller(t *testing.T) {
	t.Run("serialized callee inlines", func(t *testing.T) {
		m := parse(t, `
func @callee : $() -> Int [must_inline] [serialized] {
bb0:
  %0 = const 5 : $Int
  return %0
}

func @main : $() -> Int [public] [serialized] {
bb0:
  %0 = function_ref @callee : $() -> Int
  %1 = apply %0()
  return %1
}
`)
		stats := NewPass(nil).Run(m)
		if stats.Inlined != 1 {
			t.Errorf("Inlined = %d, want 1", stats.Inlined)
		}
	})

	t.Run("public callee skipped", func(t *testing.T) {
		m := parse(t, `
func @callee : $() -> Int [must_inline] [public] {
bb0:
  %0 = const 5 : $Int
  return %0
}

func @main : $() -> Int [public] [serialized] {
bb0:
  %0 = function_ref @callee : $() -> Int
  %1 = apply %0()
  return %1
}
`)
		stats := NewPass(nil).Run(m)
		if stats.Inlined != 0 {
			t.Errorf("Inlined = %d, want 0", stats.Inlined)
		}
	})
}

func TestRunDevirtualizes(t *testing.T) {
	m := parse(t, `
func @dogSpeak : $(Dog) -> Int [must_inline] [method] {
bb0(%0 : $Dog):
  %1 = const 4 : $Int
  return %1
}

func @main : $() -> Int [public] {
bb0:
  %0 = alloc_ref $Dog
  %1 = class_method %0, #speak : $(Dog) -> Int
  %2 = apply %1(%0)
  return %2
}

method_table $Dog {
  #speak : @dogSpeak
}
`)
	stats := NewPass(nil).Run(m)

	if stats.Devirtualized != 1 {
		t.Errorf("Devirtualized = %d, want 1", stats.Devirtualized)
	}
	if stats.Inlined != 1 {
		t.Errorf("Inlined = %d, want 1", stats.Inlined)
	}
	want := `func @main : $() -> Int [public] {
bb0:
  %0 = alloc_ref $Dog
  %1 = const 4 : $Int
  return %1
}
`
	if got := printFunc(t, m, "main"); got != want {
		t.Errorf("main after pass:\n%s\nwant:\n%s", got, want)
	}
	// The table still names the implementation, so it must survive
	// the dead-function sweep.
	if m.FindFunction("dogSpeak") == nil {
		t.Error("method table implementation removed")
	}
}

func TestRunKeepsExternallyVisibleCallees(t *testing.T) {
	m := parse(t, `
func @callee : $() -> Int [must_inline] [public] {
bb0:
  %0 = const 2 : $Int
  return %0
}

func @main : $() -> Int [public] {
bb0:
  %0 = function_ref @callee : $() -> Int
  %1 = apply %0()
  return %1
}
`)
	stats := NewPass(nil).Run(m)

	if stats.Inlined != 1 {
		t.Errorf("Inlined = %d, want 1", stats.Inlined)
	}
	if stats.Removed != 0 {
		t.Errorf("Removed = %d, want 0", stats.Removed)
	}
	if m.FindFunction("callee") == nil {
		t.Error("externally visible callee removed")
	}
}

type loaderFunc func(*ir.Function) error

func (fn loaderFunc) LoadBody(f *ir.Function) error { return fn(f) }

func TestRunLoadsLazyBodies(t *testing.T) {
	m := parse(t, `
func @lazy : $() -> Int [must_inline]

func @main : $() -> Int [public] {
bb0:
  %0 = function_ref @lazy : $() -> Int
  %1 = apply %0()
  return %1
}
`)
	m.Loader = loaderFunc(func(f *ir.Function) error {
		bb := f.NewBlock()
		b := ir.NewBuilder(bb)
		c := b.Const(11, ir.NamedType("Int"))
		b.Return(c.Result())
		return nil
	})

	stats := NewPass(nil).Run(m)
	if stats.Inlined != 1 {
		t.Fatalf("Inlined = %d, want 1", stats.Inlined)
	}
	if !strings.Contains(printFunc(t, m, "main"), "const 11") {
		t.Error("loaded body not inlined")
	}
}
