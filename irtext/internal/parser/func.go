package parser

import (
	"strings"

	"github.com/wippyai/ssair/errors"
	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/irtext/internal/token"
)

var linkages = map[string]ir.Linkage{
	"public":          ir.LinkagePublic,
	"public_external": ir.LinkagePublicExternal,
	"hidden":          ir.LinkageHidden,
	"shared":          ir.LinkageShared,
	"private":         ir.LinkagePrivate,
}

type pendingBranch struct {
	block  *ir.BasicBlock
	loc    ir.Loc
	isCond bool
	cond   string
	dests  []string
	args   []string
}

// func @name : $TYPE [attr]... [{ body }]
func (p *Parser) parseFunction() error {
	name, err := p.expect(token.FuncName)
	if err != nil {
		return err
	}
	if p.defined[name.Value] {
		return errors.Duplicate(p.file, name.Line, "function", name.Value)
	}
	if _, err := p.expect(token.Colon); err != nil {
		return err
	}
	if _, err := p.expect(token.Dollar); err != nil {
		return err
	}
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	ft, ok := typ.(ir.FuncType)
	if !ok {
		return errors.Syntax(p.file, name.Line, "function @%s has non-function type %s", name.Value, typ)
	}

	// A function_ref may have introduced the function already.
	fn := p.mod.FindFunction(name.Value)
	if fn == nil {
		fn = p.mod.NewFunction(name.Value, ft)
	} else {
		fn.Type = ft
		fn.Rep = ft.Rep
	}
	p.defined[name.Value] = true

	for p.peekIs(token.LBracket) {
		p.next()
		attr, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		switch attr.Value {
		case "must_inline":
			fn.MustInline = true
		case "thunk":
			fn.Thunk = true
		case "serialized":
			fn.Serialized = true
		case "deserialized":
			fn.Deserialized = true
		default:
			if l, ok := linkages[attr.Value]; ok {
				fn.Linkage = l
			} else if r, ok := reps[attr.Value]; ok {
				fn.Rep = r
			} else {
				return errors.Syntax(p.file, attr.Line, "unknown function attribute [%s]", attr.Value)
			}
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return err
		}
	}

	if !p.peekIs(token.LBrace) {
		return nil
	}
	return p.parseBody(fn)
}

func isBlockLabel(t *token.Token) bool {
	return t.Type == token.Ident && strings.HasPrefix(t.Value, "bb")
}

func (p *Parser) parseBody(fn *ir.Function) error {
	p.fn = fn
	p.values = make(map[string]*ir.Value)
	p.blocks = make(map[string]*ir.BasicBlock)
	p.pending = nil
	defer func() {
		p.fn = nil
		p.values = nil
		p.blocks = nil
		p.pending = nil
	}()

	p.next() // '{'
	var builder *ir.Builder
	for !p.peekIs(token.RBrace) {
		t := p.peek()
		if t == nil {
			return errors.Syntax(p.file, p.line(), "unexpected end of input in @%s", fn.Name)
		}
		if isBlockLabel(t) && p.startsBlockHeader() {
			blk, err := p.parseBlockHeader()
			if err != nil {
				return err
			}
			builder = ir.NewBuilder(blk)
			continue
		}
		if builder == nil {
			return errors.Syntax(p.file, t.Line, "instruction before first block in @%s", fn.Name)
		}
		if err := p.parseInstruction(builder); err != nil {
			return err
		}
	}
	p.next() // '}'

	if err := p.resolveBranches(); err != nil {
		return err
	}
	for i, blk := range fn.Blocks() {
		term := blk.Terminator()
		if term == nil {
			return errors.Syntax(p.file, 0, "block bb%d of @%s has no terminator", i, fn.Name)
		}
	}
	return nil
}

// A label token opens a block header when followed by ':' or by a
// parameter list. 'br bb1' never matches: its label is consumed by the
// branch parser before the loop sees it.
func (p *Parser) startsBlockHeader() bool {
	next := p.peekAt(1)
	if next == nil {
		return false
	}
	return next.Type == token.Colon || next.Type == token.LParen
}

// bbN(%a : $T, ...):
func (p *Parser) parseBlockHeader() (*ir.BasicBlock, error) {
	label := p.next()
	if _, dup := p.blocks[label.Value]; dup {
		return nil, errors.Duplicate(p.file, label.Line, "block", label.Value)
	}
	blk := p.fn.NewBlock()
	p.blocks[label.Value] = blk

	if p.peekIs(token.LParen) {
		p.next()
		for !p.peekIs(token.RParen) {
			if len(blk.Params()) > 0 {
				if _, err := p.expect(token.Comma); err != nil {
					return nil, err
				}
			}
			name, err := p.expect(token.ValueName)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Colon); err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Dollar); err != nil {
				return nil, err
			}
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			param := blk.AddParam(typ)
			if err := p.defineValue(name, param); err != nil {
				return nil, err
			}
		}
		p.next() // ')'
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	return blk, nil
}

func (p *Parser) defineValue(name *token.Token, v *ir.Value) error {
	if _, dup := p.values[name.Value]; dup {
		return errors.Duplicate(p.file, name.Line, "value", "%"+name.Value)
	}
	p.values[name.Value] = v
	return nil
}

func (p *Parser) value(name *token.Token) (*ir.Value, error) {
	v, ok := p.values[name.Value]
	if !ok {
		return nil, errors.UnknownValue(p.file, name.Line, p.fn.Name, "%"+name.Value)
	}
	return v, nil
}

// resolveBranches materializes the deferred branch terminators once
// every block and value in the function is known.
func (p *Parser) resolveBranches() error {
	for _, pb := range p.pending {
		b := ir.NewBuilder(pb.block)
		b.Loc = pb.loc
		if pb.isCond {
			cond, ok := p.values[pb.cond]
			if !ok {
				return errors.UnknownValue(p.file, pb.loc.Line, p.fn.Name, "%"+pb.cond)
			}
			trueDest, ok := p.blocks[pb.dests[0]]
			if !ok {
				return errors.UnknownBlock(p.file, pb.loc.Line, p.fn.Name, pb.dests[0])
			}
			falseDest, ok := p.blocks[pb.dests[1]]
			if !ok {
				return errors.UnknownBlock(p.file, pb.loc.Line, p.fn.Name, pb.dests[1])
			}
			b.CondBr(cond, trueDest, falseDest)
			continue
		}
		dest, ok := p.blocks[pb.dests[0]]
		if !ok {
			return errors.UnknownBlock(p.file, pb.loc.Line, p.fn.Name, pb.dests[0])
		}
		args := make([]*ir.Value, len(pb.args))
		for i, name := range pb.args {
			v, ok := p.values[name]
			if !ok {
				return errors.UnknownValue(p.file, pb.loc.Line, p.fn.Name, "%"+name)
			}
			args[i] = v
		}
		if len(args) != len(dest.Params()) {
			return errors.ArityMismatch(p.fn.Name, len(args), len(dest.Params()))
		}
		b.Br(dest, args...)
	}
	return nil
}
