package parser

import (
	"github.com/wippyai/ssair/errors"
	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/irtext/internal/token"
)

type Parser struct {
	file   string
	mod    *ir.Module
	tokens []token.Token
	pos    int

	// Per-function state.
	fn      *ir.Function
	values  map[string]*ir.Value
	blocks  map[string]*ir.BasicBlock
	pending []pendingBranch

	defined map[string]bool
}

func New(file string, tokens []token.Token) *Parser {
	return &Parser{
		file:    file,
		tokens:  tokens,
		defined: make(map[string]bool),
	}
}

func (p *Parser) Parse() (*ir.Module, error) {
	p.mod = ir.NewModule(p.file)
	for p.peek() != nil {
		t := p.peek()
		if t.Type != token.Ident {
			return nil, errors.UnexpectedToken(p.file, t.Line, t.Type.String(), "'func' or 'method_table'")
		}
		switch t.Value {
		case "func":
			p.next()
			if err := p.parseFunction(); err != nil {
				return nil, err
			}
		case "method_table":
			p.next()
			if err := p.parseMethodTable(); err != nil {
				return nil, err
			}
		default:
			return nil, errors.UnexpectedToken(p.file, t.Line, "'"+t.Value+"'", "'func' or 'method_table'")
		}
	}
	return p.mod, nil
}

func (p *Parser) peek() *token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) *token.Token {
	if p.pos+n >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos+n]
}

func (p *Parser) peekIs(typ token.Type) bool {
	t := p.peek()
	return t != nil && t.Type == typ
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) line() int {
	if t := p.peek(); t != nil {
		return t.Line
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Line
	}
	return 0
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, errors.Syntax(p.file, p.line(), "unexpected end of input, expected %s", typ)
	}
	if t.Type != typ {
		return nil, errors.UnexpectedToken(p.file, t.Line, describe(t), typ.String())
	}
	return t, nil
}

func (p *Parser) expectKeyword(word string) error {
	t := p.next()
	if t == nil {
		return errors.Syntax(p.file, p.line(), "unexpected end of input, expected %q", word)
	}
	if t.Type != token.Ident || t.Value != word {
		return errors.UnexpectedToken(p.file, t.Line, describe(t), "'"+word+"'")
	}
	return nil
}

func describe(t *token.Token) string {
	switch t.Type {
	case token.Ident, token.Number:
		return "'" + t.Value + "'"
	case token.FuncName:
		return "'@" + t.Value + "'"
	case token.ValueName:
		return "'%" + t.Value + "'"
	case token.MethodName:
		return "'#" + t.Value + "'"
	}
	return t.Type.String()
}

// method_table $Class { #method : @impl ... }
func (p *Parser) parseMethodTable() error {
	if _, err := p.expect(token.Dollar); err != nil {
		return err
	}
	class, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return err
	}
	for !p.peekIs(token.RBrace) {
		method, err := p.expect(token.MethodName)
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return err
		}
		impl, err := p.expect(token.FuncName)
		if err != nil {
			return err
		}
		fn := p.mod.FindFunction(impl.Value)
		if fn == nil {
			return errors.NotFound(errors.PhaseParse, "method implementation", impl.Value)
		}
		p.mod.SetMethod(class.Value, method.Value, fn)
	}
	_, err = p.expect(token.RBrace)
	return err
}
