// Package splice physically inlines a callee function's body into a
// caller at an apply site.
//
// The engine splits the caller block at the apply, clones the callee's
// blocks with arguments substituted for parameters, rewrites callee
// returns into branches to the detached tail block, and deletes the
// apply. Inline reports the first inlined instruction and the last
// block containing inlined code so a caller scanning in reverse can
// resume there without revisiting instructions.
//
// Deletions performed by the engine (the apply itself, dead closure
// chains removed through TryDeleteDeadClosure) are reported through a
// synchronous per-instruction callback in addition to the module's
// deletion-observer feed.
package splice
