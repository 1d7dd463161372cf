package diag

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	locStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	plainStyle = lipgloss.NewStyle()
)

// Render writes the accumulated diagnostics to w in compiler style:
//
//	file:line:col: error: message
//	file:line:col: note: while inlining here
//
// Styling is applied only when color is set.
func (e *Engine) Render(w io.Writer, color bool) {
	loc := locStyle
	errSty := errorStyle
	note := noteStyle
	if !color {
		loc, errSty, note = plainStyle, plainStyle, plainStyle
	}
	for _, d := range e.diags {
		sev := errSty
		if d.Severity == SeverityNote {
			sev = note
		}
		fmt.Fprintf(w, "%s: %s: %s\n",
			loc.Render(d.Loc.String()),
			sev.Render(d.Severity.String()),
			d.Message)
	}
}
