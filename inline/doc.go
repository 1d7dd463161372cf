// Package inline implements the mandatory inlining pass: every
// function flagged must-inline is substituted into all of its call
// sites, recursively, until no must-inline call sites remain.
//
// # Algorithm
//
// Functions are processed depth first. Before a callee is inlined its
// own must-inline call sites are inlined, so each function is
// flattened exactly once and memoized. The active recursion path is
// carried in a persistent set passed by value into each recursive
// call; re-entering a function already on the path is a circular
// must-inline dependency, reported as a diagnostic with a note per
// enclosing call site, and aborts inlining for the top-level function
// that originated the chain.
//
// Within a function, blocks are scanned in reverse program order and
// instructions in reverse order within each block. Inlining splits
// the block at the call site; the scan resumes at the last block
// containing inlined code, so no instruction is ever revisited and
// total work stays linear in the amount of code inlined.
//
// # Per-site pipeline
//
// For each apply site the driver attempts devirtualization, resolves
// the callee value through closure and conversion wrappers back to a
// direct function reference, recursively processes the callee,
// balances reference counts when a closure-mediated call is replaced
// by direct inlining, splices the body in, and finally deletes
// closure-construction chains left without uses.
//
// Calls whose callee cannot be resolved are left untouched; that is
// not an error. After every function is processed, must-inline
// functions with no remaining references that cannot be used
// externally are removed from the module.
package inline
