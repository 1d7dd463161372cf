package parser

import (
	"github.com/wippyai/ssair/errors"
	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/irtext/internal/token"
)

var reps = map[string]ir.Representation{
	"thin":    ir.RepThin,
	"thick":   ir.RepThick,
	"method":  ir.RepMethod,
	"witness": ir.RepWitness,
	"closure": ir.RepClosure,
	"c_func":  ir.RepCFunc,
	"objc":    ir.RepObjCMethod,
	"block":   ir.RepBlock,
}

// parseType parses a type expression. The leading '$' sigil, where the
// grammar uses one, is consumed by the caller.
func (p *Parser) parseType() (ir.Type, error) {
	var noEscape, guaranteed, throws, repSet bool
	rep := ir.RepThin

	for p.peekIs(token.FuncName) {
		attr := p.next()
		switch attr.Value {
		case "noescape":
			noEscape = true
		case "callee_guaranteed":
			guaranteed = true
		case "throws":
			throws = true
		default:
			r, ok := reps[attr.Value]
			if !ok {
				return nil, errors.Syntax(p.file, attr.Line, "unknown type attribute @%s", attr.Value)
			}
			rep = r
			repSet = true
		}
	}

	core, err := p.parseCoreType()
	if err != nil {
		return nil, err
	}
	if !noEscape && !guaranteed && !throws && !repSet {
		return core, nil
	}
	ft, ok := core.(ir.FuncType)
	if !ok {
		return nil, errors.Syntax(p.file, p.line(), "type attributes on non-function type %s", core)
	}
	ft.NoEscape = noEscape
	ft.CalleeGuaranteed = guaranteed
	ft.Throws = throws
	if repSet {
		ft.Rep = rep
	}
	return ft, nil
}

func (p *Parser) parseCoreType() (ir.Type, error) {
	t := p.peek()
	if t == nil {
		return nil, errors.Syntax(p.file, p.line(), "unexpected end of input in type")
	}
	switch t.Type {
	case token.Star:
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return ir.AddrType{Elem: elem}, nil

	case token.Bang:
		p.next()
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		return ir.GenericType(name.Value), nil

	case token.Caret:
		p.next()
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		return ir.OpenedType(name.Value), nil

	case token.LParen:
		return p.parseFuncCore()

	case token.Ident:
		p.next()
		if t.Value == "box" {
			if _, err := p.expect(token.LAngle); err != nil {
				return nil, err
			}
			elem, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RAngle); err != nil {
				return nil, err
			}
			return ir.BoxType{Elem: elem}, nil
		}
		return ir.NamedType(t.Value), nil
	}
	return nil, errors.UnexpectedToken(p.file, t.Line, describe(t), "type")
}

// (params) -> result
func (p *Parser) parseFuncCore() (ir.Type, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var params []ir.Type
	for !p.peekIs(token.RParen) {
		if len(params) > 0 {
			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
		param, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	p.next() // ')'
	if _, err := p.expect(token.Arrow); err != nil {
		return nil, err
	}
	result, err := p.parseResultType()
	if err != nil {
		return nil, err
	}
	return ir.FuncType{Result: result, Params: params}, nil
}

// parseResultType handles the void spelling: '()' is no result unless
// it opens a function type, which another '->' after it reveals.
func (p *Parser) parseResultType() (ir.Type, error) {
	if p.peekIs(token.LParen) {
		second := p.peekAt(1)
		third := p.peekAt(2)
		if second != nil && second.Type == token.RParen &&
			(third == nil || third.Type != token.Arrow) {
			p.next()
			p.next()
			return nil, nil
		}
	}
	return p.parseType()
}
