// Package devirt rewrites dynamically dispatched apply sites into
// direct calls when the receiver's concrete type is statically known.
//
// The current matcher handles the common post-lowering shape: an
// apply whose callee is a class_method lookup on a value produced by
// alloc_ref. The method implementation comes from the module's method
// tables. Rewriting leaves the original apply in place; the caller
// decides when to delete it with DeleteDevirtualizedApply, mirroring
// the two-step contract inlining relies on.
package devirt
