// Package errors provides structured error types for the IR toolchain.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: source position, enclosing function, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindUnexpectedToken).
//		At("input.ir", 14).
//		Function("caller").
//		Detail("expected type after ':'").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnexpectedToken("input.ir", 14, "'}'", "instruction")
//	err := errors.ArityMismatch("caller", 2, 3)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
