// Package ssair provides an SSA-form intermediate representation and a
// mandatory inlining optimizer for it.
//
// The library models a small typed IR with first-class function values,
// closures, generic substitution, and reference counting, and
// implements the pass that flattens every call to a function marked
// must-inline before later optimization stages run.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	ssair/               Root package documentation
//	├── ir/              Types, instructions, functions, modules, builder, printer
//	├── irtext/          Textual IR parser matching the printer's output
//	├── inline/          The mandatory inlining pass: driver, callee
//	│                    resolution, reference-count fixup, closure cleanup
//	├── splice/          Generic body splicing and dead-closure deletion
//	├── devirt/          Class method devirtualization on provably known receivers
//	├── cfg/             Control-flow cleanups (block merging)
//	├── diag/            Source-located diagnostics and rendering
//	├── errors/          Structured error types for parsing and verification
//	└── cmd/opt/         Command-line optimizer over textual IR
//
// # Quick Start
//
// Parse a module, run the pass, print the result:
//
//	mod, err := irtext.Parse("input.ir", source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	diags := diag.NewEngine()
//	stats := inline.NewPass(diags).Run(mod)
//	diags.Render(os.Stderr, false)
//
//	fmt.Print(ir.Print(mod))
//	fmt.Println(stats.Inlined, "call sites inlined")
//
// # Mutation Model
//
// The IR keeps def-use edges bidirectional: instructions know their
// operands, values know their users, and every mutation goes through
// methods that keep both sides consistent. Components that hold
// instruction pointers across deletions performed elsewhere register a
// deletion observer on the module and evict stale pointers as they are
// notified.
//
// # Thread Safety
//
// Modules and everything reachable from them are NOT safe for
// concurrent mutation. Run passes over a module from a single
// goroutine.
package ssair
