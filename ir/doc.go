// Package ir defines the SSA intermediate representation the passes in
// this repository operate on.
//
// A Module owns an ordered list of Functions; a Function owns an
// ordered list of BasicBlocks; a BasicBlock owns an ordered list of
// Instructions. Every Instruction produces zero or one typed Value and
// consumes operand Values. Def-use edges are maintained eagerly, so
// the number of remaining uses of any value is always queryable.
//
// # Mutation discipline
//
// Instructions are created through a Builder and removed with
// Instruction.Erase, which detaches the instruction from all def-use
// edges before unlinking it. Components that hold references into the
// IR across deletions performed elsewhere must register a
// DeletionObserver on the Module; observers are notified synchronously
// for every erased instruction, before control returns to the caller
// of Erase.
//
// # Functions as values
//
// A function_ref instruction references a Function and contributes to
// its module-wide use count. Closure-forming instructions
// (partial_apply, thin_to_thick) wrap such references in values with
// thick function types; conversion instructions (convert_function,
// convert_escape, mark_dependence) wrap them further without changing
// the underlying callee.
package ir
