package irtext

import (
	"strings"
	"testing"

	"github.com/wippyai/ssair/ir"
)

// Round-trip sources are written in canonical form so the printed
// module must match them byte for byte.
func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			"call",
			`func @g : $(Int) -> Int [must_inline] {
bb0(%0 : $Int):
  return %0
}

func @main : $(Int) -> Int {
bb0(%0 : $Int):
  %1 = function_ref @g : $(Int) -> Int
  %2 = apply %1(%0)
  return %2
}
`,
		},
		{
			"control flow",
			`func @pick : $(Bool) -> Int {
bb0(%0 : $Bool):
  cond_br %0, bb1, bb2

bb1:
  %1 = const 1 : $Int
  br bb3(%1)

bb2:
  %2 = const 2 : $Int
  br bb3(%2)

bb3(%3 : $Int):
  return %3
}
`,
		},
		{
			"forward function_ref",
			`func @main : $() -> Int {
bb0:
  %0 = function_ref @later : $() -> Int
  %1 = apply %0()
  return %1
}

func @later : $() -> Int [must_inline] {
bb0:
  %0 = const 5 : $Int
  return %0
}
`,
		},
		{
			"closure",
			`func @id : $(!T) -> !T

func @mk : $(Int) -> () {
bb0(%0 : $Int):
  %1 = function_ref @id : $(!T) -> !T
  %2 = partial_apply %1<!T = Int>(%0 : owned) [callee_guaranteed]
  release %2
  return
}
`,
		},
		{
			"box",
			`func @boxed : $() -> Int {
bb0:
  %0 = const 3 : $Int
  %1 = alloc_box $Int
  %2 = project_box %1
  store %0 to %2
  %3 = load %2
  release %1
  return %3
}
`,
		},
		{
			"conversions",
			`func @f : $() -> Int

func @use : $() -> () {
bb0:
  %0 = function_ref @f : $() -> Int
  %1 = thin_to_thick %0
  %2 = convert_escape %1
  %3 = mark_dependence %2 on %1
  %4 = builtin "consume"(%3) : $Int
  builtin "log"(%4)
  return
}
`,
		},
		{
			"convert_function",
			`func @f : $() -> Int

func @use : $() -> () {
bb0:
  %0 = function_ref @f : $() -> Int
  %1 = thin_to_thick %0
  %2 = convert_function %1 to $@noescape @thick () -> Int
  retain %2
  release %2
  return
}
`,
		},
		{
			"method table",
			`func @dogSpeak : $(Dog) -> Int [must_inline] {
bb0(%0 : $Dog):
  %1 = const 1 : $Int
  return %1
}

func @main : $() -> Int {
bb0:
  %0 = alloc_ref $Dog
  %1 = class_method %0, #speak : $(Dog) -> Int
  %2 = apply %1(%0)
  return %2
}

method_table $Dog {
  #speak : @dogSpeak
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse("test.ssair", tt.source)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := ir.Print(m); got != tt.source {
				t.Errorf("round trip mismatch:\n%s\nwant:\n%s", got, tt.source)
			}
		})
	}
}

func TestParseFunctionAttributes(t *testing.T) {
	source := `func @f : $(Int) -> Int [must_inline] [thunk] [serialized] [public] [method]
func @g : $() -> () [deserialized] [private]
`
	m, err := Parse("test.ssair", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	f := m.FindFunction("f")
	if f == nil {
		t.Fatal("function f not found")
	}
	if !f.MustInline || !f.Thunk || !f.Serialized {
		t.Errorf("flags = must_inline:%v thunk:%v serialized:%v", f.MustInline, f.Thunk, f.Serialized)
	}
	if f.Linkage != ir.LinkagePublic {
		t.Errorf("Linkage = %v, want public", f.Linkage)
	}
	if f.Rep != ir.RepMethod {
		t.Errorf("Rep = %v, want method", f.Rep)
	}

	g := m.FindFunction("g")
	if g == nil {
		t.Fatal("function g not found")
	}
	if !g.Deserialized || g.Linkage != ir.LinkagePrivate {
		t.Errorf("g flags = deserialized:%v linkage:%v", g.Deserialized, g.Linkage)
	}
}

func TestParseSubstitutions(t *testing.T) {
	source := `func @pair : $(!T, !U) -> !T

func @main : $(Int) -> Int {
bb0(%0 : $Int):
  %1 = function_ref @pair : $(!T, !U) -> !T
  %2 = apply %1<!T = Int, !U = ^Opened>(%0, %0)
  return %2
}
`
	m, err := Parse("test.ssair", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	main := m.FindFunction("main")
	apply := main.Blocks()[0].Instructions()[1]
	if apply.Op() != ir.OpApply {
		t.Fatalf("instruction 1 is %v, want apply", apply.Op())
	}
	if got := apply.Subs[ir.GenericType("T")]; !ir.TypeEqual(got, ir.NamedType("Int")) {
		t.Errorf("T bound to %v, want Int", got)
	}
	if got := apply.Subs[ir.GenericType("U")]; !ir.TypeEqual(got, ir.OpenedType("Opened")) {
		t.Errorf("U bound to %v, want ^Opened", got)
	}
	if !ir.TypeEqual(apply.Result().Type(), ir.NamedType("Int")) {
		t.Errorf("apply result type = %v, want Int", apply.Result().Type())
	}
}

func TestParseComments(t *testing.T) {
	source := `// Leading comment.
func @f : $() -> () { // trailing
bb0:
  return // done
}
`
	if _, err := Parse("test.ssair", source); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"top-level garbage",
			"optimize @f\n",
			"expected 'func' or 'method_table'",
		},
		{
			"undefined value",
			"func @f : $() -> () {\nbb0:\n  release %9\n  return\n}\n",
			"use of undefined value %9",
		},
		{
			"undefined block",
			"func @f : $() -> () {\nbb0:\n  br bb9\n}\n",
			"branch to undefined block bb9",
		},
		{
			"duplicate function",
			"func @f : $() -> ()\nfunc @f : $() -> ()\n",
			`function "f" already defined`,
		},
		{
			"duplicate value",
			"func @f : $() -> () {\nbb0:\n  %0 = const 1 : $Int\n  %0 = const 2 : $Int\n  return\n}\n",
			`value "%0" already defined`,
		},
		{
			"missing terminator",
			"func @f : $() -> () {\nbb0:\n  %0 = const 1 : $Int\n}\n",
			"has no terminator",
		},
		{
			"branch arity",
			"func @f : $(Int) -> () {\nbb0(%0 : $Int):\n  br bb1(%0)\n\nbb1:\n  return\n}\n",
			"1 arguments where 0 expected",
		},
		{
			"unknown attribute",
			"func @f : $() -> () [bogus]\n",
			"unknown function attribute [bogus]",
		},
		{
			"apply of non-function",
			"func @f : $(Int) -> () {\nbb0(%0 : $Int):\n  %1 = apply %0()\n  return\n}\n",
			"apply of non-function value",
		},
		{
			"load of non-address",
			"func @f : $(Int) -> () {\nbb0(%0 : $Int):\n  %1 = load %0\n  return\n}\n",
			"load of non-address value",
		},
		{
			"unknown convention",
			"func @g : $(Int) -> ()\nfunc @f : $(Int) -> () {\nbb0(%0 : $Int):\n  %1 = function_ref @g : $(Int) -> ()\n  %2 = partial_apply %1(%0 : weird)\n  return\n}\n",
			`unknown convention "weird"`,
		},
		{
			"attribute on non-function type",
			"func @f : $@thick Int\n",
			"type attributes on non-function type Int",
		},
		{
			"result on void instruction",
			"func @f : $(Int) -> () {\nbb0(%0 : $Int):\n  %1 = release %0\n  return\n}\n",
			"release produces no value",
		},
		{
			"instruction before block",
			"func @f : $() -> () {\n  return\n}\n",
			"instruction before first block",
		},
		{
			"unknown method impl",
			"method_table $Dog {\n  #speak : @nope\n}\n",
			`method implementation "nope" not found`,
		},
		{
			"non-function type",
			"func @f : $Int\n",
			"non-function type Int",
		},
		{
			"truncated input",
			"func @f : $() -> () {\nbb0:\n  return\n",
			"unexpected end of input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.ssair", tt.source)
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseVoidResultAmbiguity(t *testing.T) {
	// A '()' result is void unless another arrow follows it.
	source := `func @takesThunk : $(@thick () -> ()) -> ()
func @returnsThunk : $() -> @thick () -> ()
`
	m, err := Parse("test.ssair", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	takes := m.FindFunction("takesThunk").Type
	if len(takes.Params) != 1 || takes.Result != nil {
		t.Errorf("takesThunk type = %v", takes)
	}
	inner, ok := takes.Params[0].(ir.FuncType)
	if !ok || inner.Rep != ir.RepThick || inner.Result != nil {
		t.Errorf("takesThunk param = %v", takes.Params[0])
	}

	returns := m.FindFunction("returnsThunk").Type
	res, ok := returns.Result.(ir.FuncType)
	if !ok || res.Rep != ir.RepThick || res.Result != nil {
		t.Errorf("returnsThunk result = %v", returns.Result)
	}
}
