package diag

import (
	"fmt"

	"github.com/wippyai/ssair/ir"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityNote:
		return "note"
	}
	return "unknown"
}

// ID names a known diagnostic.
type ID string

const (
	// CircularMustInline reports a cycle among functions that must be
	// inlined into each other.
	CircularMustInline ID = "circular_must_inline"
	// NoteWhileInlining marks an enclosing call site on the path to a
	// reported failure.
	NoteWhileInlining ID = "note_while_inlining"
)

var templates = map[ID]string{
	CircularMustInline: "inlining 'must inline' functions forms circular loop",
	NoteWhileInlining:  "while inlining here",
}

// Diagnostic is one reported message.
type Diagnostic struct {
	Loc      ir.Loc
	ID       ID
	Severity Severity
	Message  string
}

// Engine accumulates diagnostics for one pass invocation.
type Engine struct {
	diags  []Diagnostic
	errors int
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Report emits a diagnostic for the given ID at loc. Note-severity
// IDs attach to the most recent error when rendered.
func (e *Engine) Report(loc ir.Loc, id ID, args ...any) {
	sev := SeverityError
	if id == NoteWhileInlining {
		sev = SeverityNote
	}
	msg, ok := templates[id]
	if !ok {
		msg = string(id)
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	e.diags = append(e.diags, Diagnostic{Loc: loc, ID: id, Severity: sev, Message: msg})
	if sev == SeverityError {
		e.errors++
	}
}

// Diagnostics returns everything reported so far, in order.
func (e *Engine) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(e.diags))
	copy(out, e.diags)
	return out
}

// ErrorCount returns the number of error-severity diagnostics.
func (e *Engine) ErrorCount() int { return e.errors }
