// Package diag collects and renders compiler diagnostics.
//
// Diagnostics are identified by ID with printf-style message
// templates, carry a source location, and may be followed by notes
// attached to the most recent primary diagnostic. The engine is
// advisory: emitting a diagnostic never alters control flow by
// itself, with the single exception that the inlining pass emits the
// circular-inlining error on the same path that aborts a function.
package diag
