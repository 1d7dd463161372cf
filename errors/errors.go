package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse   Phase = "parse"   // textual IR parsing
	PhaseVerify  Phase = "verify"  // module verification
	PhaseResolve Phase = "resolve" // callee and method resolution
	PhaseInline  Phase = "inline"  // inlining transformation
	PhaseLoad    Phase = "load"    // input and function body loading
	PhaseConfig  Phase = "config"  // tool configuration
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax          Kind = "syntax"
	KindUnexpectedToken Kind = "unexpected_token"
	KindTypeMismatch    Kind = "type_mismatch"
	KindArityMismatch   Kind = "arity_mismatch"
	KindUnknownRef      Kind = "unknown_reference"
	KindDuplicate       Kind = "duplicate"
	KindInvalidData     Kind = "invalid_data"
	KindUnsupported     Kind = "unsupported"
	KindNotFound        Kind = "not_found"
	KindLinkage         Kind = "linkage"
	KindInvalidInput    Kind = "invalid_input"
)

// Error is the structured error type used throughout the toolchain
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Function string
	File     string
	Line     int
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.File != "" {
		b.WriteString(" at ")
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
	}

	if e.Function != "" {
		b.WriteString(" in @")
		b.WriteString(e.Function)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Function sets the enclosing function name
func (b *Builder) Function(name string) *Builder {
	b.err.Function = name
	return b
}

// At sets the source position
func (b *Builder) At(file string, line int) *Builder {
	b.err.File = file
	b.err.Line = line
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Syntax creates a parse error at a source position
func Syntax(file string, line int, detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		File:   file,
		Line:   line,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// UnexpectedToken creates a parse error for a token that does not fit
// the grammar
func UnexpectedToken(file string, line int, got, want string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindUnexpectedToken,
		File:   file,
		Line:   line,
		Detail: fmt.Sprintf("unexpected %s, expected %s", got, want),
	}
}

// UnknownValue creates an error for a reference to an undefined value
func UnknownValue(file string, line int, fn, name string) *Error {
	return &Error{
		Phase:    PhaseParse,
		Kind:     KindUnknownRef,
		File:     file,
		Line:     line,
		Function: fn,
		Detail:   fmt.Sprintf("use of undefined value %s", name),
	}
}

// UnknownBlock creates an error for a branch to an undefined block
func UnknownBlock(file string, line int, fn, label string) *Error {
	return &Error{
		Phase:    PhaseParse,
		Kind:     KindUnknownRef,
		File:     file,
		Line:     line,
		Function: fn,
		Detail:   fmt.Sprintf("branch to undefined block %s", label),
	}
}

// Duplicate creates an error for a redefined name
func Duplicate(file string, line int, what, name string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindDuplicate,
		File:   file,
		Line:   line,
		Detail: fmt.Sprintf("%s %q already defined", what, name),
	}
}

// TypeMismatch creates a verification error for incompatible types
func TypeMismatch(fn string, detail string, args ...any) *Error {
	return &Error{
		Phase:    PhaseVerify,
		Kind:     KindTypeMismatch,
		Function: fn,
		Detail:   fmt.Sprintf(detail, args...),
	}
}

// ArityMismatch creates a verification error for a call or branch with
// the wrong argument count
func ArityMismatch(fn string, got, want int) *Error {
	return &Error{
		Phase:    PhaseVerify,
		Kind:     KindArityMismatch,
		Function: fn,
		Detail:   fmt.Sprintf("%d arguments where %d expected", got, want),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// BadLinkage creates an error for a fragile function referencing a
// callee it may not legally reference
func BadLinkage(caller, callee string) *Error {
	return &Error{
		Phase:    PhaseVerify,
		Kind:     KindLinkage,
		Function: caller,
		Detail:   fmt.Sprintf("serialized function references @%s, which has no fragile-compatible linkage", callee),
	}
}

// Load creates an input loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error wrapping a lower-level cause
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Config creates a tool configuration error
func Config(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
