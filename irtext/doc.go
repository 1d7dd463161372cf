// Package irtext provides textual IR parsing.
//
// This package parses the textual form produced by ir.Print back into
// an ir.Module, enabling human-readable test fixtures and tool input.
//
// Basic usage:
//
//	mod, err := irtext.Parse("input.ir", `
//	func @callee : $(Int) -> Int [must_inline] {
//	bb0(%0 : $Int):
//	  return %0
//	}`)
//
// Supported constructs:
//   - Function definitions and bodiless declarations with attributes:
//     [must_inline], [thunk], [serialized], [deserialized], linkage
//     and representation overrides
//   - Basic blocks with typed parameters, forward branch references
//   - The full instruction set: function_ref, partial_apply,
//     thin_to_thick, convert_function, convert_escape, mark_dependence,
//     apply, class_method, alloc_box, project_box, store, load, retain,
//     release, alloc_ref, const, builtin, return, br, cond_br
//   - Generic substitution lists on apply and partial_apply
//   - Function, address, box, generic (!T) and opened (^T) types
//   - Method tables for devirtualization
//   - Comments: line (//)
//
// Every parsed instruction carries its source position, which the
// inlining pass propagates into diagnostics.
package irtext
