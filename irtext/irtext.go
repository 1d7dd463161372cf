package irtext

import (
	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/irtext/internal/parser"
	"github.com/wippyai/ssair/irtext/internal/token"
)

// Parse parses textual IR into a module. The file name is used for
// instruction locations and error positions.
func Parse(file, source string) (*ir.Module, error) {
	tokens := token.Tokenize(source)
	p := parser.New(file, tokens)
	return p.Parse()
}
