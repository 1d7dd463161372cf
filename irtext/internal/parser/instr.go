package parser

import (
	"strconv"

	"github.com/wippyai/ssair/errors"
	"github.com/wippyai/ssair/ir"
	"github.com/wippyai/ssair/irtext/internal/token"
)

var conventions = map[string]ir.Convention{
	"owned":          ir.ConvOwned,
	"guaranteed":     ir.ConvGuaranteed,
	"unowned":        ir.ConvUnowned,
	"indirect_owned": ir.ConvIndirectOwned,
}

func (p *Parser) parseInstruction(b *ir.Builder) error {
	first := p.peek()
	b.Loc = ir.Loc{File: p.file, Line: first.Line, Col: 1}

	var resName *token.Token
	if first.Type == token.ValueName {
		second := p.peekAt(1)
		if second == nil || second.Type != token.Equals {
			return errors.UnexpectedToken(p.file, first.Line, describe(first), "instruction")
		}
		resName = p.next()
		p.next() // '='
	}

	opcode, err := p.expect(token.Ident)
	if err != nil {
		return err
	}

	var inst *ir.Instruction
	switch opcode.Value {
	case "function_ref":
		inst, err = p.parseFunctionRef(b)
	case "partial_apply":
		inst, err = p.parsePartialApply(b)
	case "thin_to_thick":
		v, verr := p.parseValueOperand()
		if verr != nil {
			return verr
		}
		if !ir.IsFunction(v.Type()) {
			return errors.Syntax(p.file, first.Line, "thin_to_thick of non-function value")
		}
		inst = b.ThinToThick(v)
	case "convert_function":
		inst, err = p.parseConvertFunction(b)
	case "convert_escape":
		v, verr := p.parseValueOperand()
		if verr != nil {
			return verr
		}
		if !ir.IsFunction(v.Type()) {
			return errors.Syntax(p.file, first.Line, "convert_escape of non-function value")
		}
		inst = b.ConvertEscape(v)
	case "mark_dependence":
		v, verr := p.parseValueOperand()
		if verr != nil {
			return verr
		}
		if err := p.expectKeyword("on"); err != nil {
			return err
		}
		base, berr := p.parseValueOperand()
		if berr != nil {
			return berr
		}
		inst = b.MarkDependence(v, base)
	case "apply":
		inst, err = p.parseApply(b)
	case "class_method":
		inst, err = p.parseClassMethod(b)
	case "alloc_box":
		if _, err := p.expect(token.Dollar); err != nil {
			return err
		}
		elem, terr := p.parseType()
		if terr != nil {
			return terr
		}
		inst = b.AllocBox(elem)
	case "project_box":
		v, verr := p.parseValueOperand()
		if verr != nil {
			return verr
		}
		if _, ok := v.Type().(ir.BoxType); !ok {
			return errors.Syntax(p.file, first.Line, "project_box of non-box value")
		}
		inst = b.ProjectBox(v)
	case "store":
		v, verr := p.parseValueOperand()
		if verr != nil {
			return verr
		}
		if err := p.expectKeyword("to"); err != nil {
			return err
		}
		dest, derr := p.parseValueOperand()
		if derr != nil {
			return derr
		}
		inst = b.Store(v, dest)
	case "load":
		v, verr := p.parseValueOperand()
		if verr != nil {
			return verr
		}
		if !ir.IsAddress(v.Type()) {
			return errors.Syntax(p.file, first.Line, "load of non-address value")
		}
		inst = b.Load(v)
	case "retain":
		v, verr := p.parseValueOperand()
		if verr != nil {
			return verr
		}
		inst = b.Retain(v)
	case "release":
		v, verr := p.parseValueOperand()
		if verr != nil {
			return verr
		}
		inst = b.Release(v)
	case "alloc_ref":
		if _, err := p.expect(token.Dollar); err != nil {
			return err
		}
		class, cerr := p.expect(token.Ident)
		if cerr != nil {
			return cerr
		}
		inst = b.AllocRef(class.Value)
	case "const":
		inst, err = p.parseConst(b)
	case "builtin":
		inst, err = p.parseBuiltin(b)
	case "return":
		var v *ir.Value
		if p.peekIs(token.ValueName) {
			v, err = p.parseValueOperand()
			if err != nil {
				return err
			}
		}
		inst = b.Return(v)
	case "br":
		return p.parseBr(b)
	case "cond_br":
		return p.parseCondBr(b)
	default:
		return errors.UnexpectedToken(p.file, opcode.Line, "'"+opcode.Value+"'", "instruction")
	}
	if err != nil {
		return err
	}

	if resName != nil {
		if inst.Result() == nil {
			return errors.Syntax(p.file, first.Line, "%s produces no value", opcode.Value)
		}
		return p.defineValue(resName, inst.Result())
	}
	return nil
}

func (p *Parser) parseValueOperand() (*ir.Value, error) {
	name, err := p.expect(token.ValueName)
	if err != nil {
		return nil, err
	}
	return p.value(name)
}

// function_ref @f : $TYPE
func (p *Parser) parseFunctionRef(b *ir.Builder) (*ir.Instruction, error) {
	name, err := p.expect(token.FuncName)
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
	fn := p.mod.FindFunction(name.Value)
	if fn == nil {
		ft, ok := typ.(ir.FuncType)
		if !ok {
			return nil, errors.Syntax(p.file, name.Line, "function_ref @%s with non-function type %s", name.Value, typ)
		}
		fn = p.mod.NewFunction(name.Value, ft)
	}
	return b.FunctionRef(fn), nil
}

// partial_apply %c<subs>(%x : conv, ...) [callee_guaranteed] [on_stack]
func (p *Parser) parsePartialApply(b *ir.Builder) (*ir.Instruction, error) {
	callee, err := p.parseValueOperand()
	if err != nil {
		return nil, err
	}
	if !ir.IsFunction(callee.Type()) {
		return nil, errors.Syntax(p.file, p.line(), "partial_apply of non-function value")
	}
	subs, err := p.parseSubs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var args []*ir.Value
	var convs []ir.Convention
	for !p.peekIs(token.RParen) {
		if len(args) > 0 {
			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseValueOperand()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		convTok, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		conv, ok := conventions[convTok.Value]
		if !ok {
			return nil, errors.Syntax(p.file, convTok.Line, "unknown convention %q", convTok.Value)
		}
		args = append(args, arg)
		convs = append(convs, conv)
	}
	p.next() // ')'

	var guaranteed, onStack bool
	for p.peekIs(token.LBracket) {
		p.next()
		flag, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		switch flag.Value {
		case "callee_guaranteed":
			guaranteed = true
		case "on_stack":
			onStack = true
		default:
			return nil, errors.Syntax(p.file, flag.Line, "unknown partial_apply flag [%s]", flag.Value)
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return nil, err
		}
	}
	if ft := callee.Type().(ir.FuncType); len(args) > len(ft.Params) {
		return nil, errors.Syntax(p.file, p.line(), "partial_apply binds %d arguments but callee takes %d", len(args), len(ft.Params))
	}
	return b.PartialApply(callee, args, convs, subs, guaranteed, onStack), nil
}

// apply %c<subs>(%x, ...)
func (p *Parser) parseApply(b *ir.Builder) (*ir.Instruction, error) {
	callee, err := p.parseValueOperand()
	if err != nil {
		return nil, err
	}
	if !ir.IsFunction(callee.Type()) {
		return nil, errors.Syntax(p.file, p.line(), "apply of non-function value")
	}
	subs, err := p.parseSubs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var args []*ir.Value
	for !p.peekIs(token.RParen) {
		if len(args) > 0 {
			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseValueOperand()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.next() // ')'
	return b.Apply(callee, args, subs), nil
}

// <!T = Int, !U = ^Opened>
func (p *Parser) parseSubs() (ir.SubstitutionMap, error) {
	if !p.peekIs(token.LAngle) {
		return nil, nil
	}
	p.next()
	subs := make(ir.SubstitutionMap)
	for !p.peekIs(token.RAngle) {
		if len(subs) > 0 {
			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.Bang); err != nil {
			return nil, err
		}
		key, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Equals); err != nil {
			return nil, err
		}
		val, err := p.parseType()
		if err != nil {
			return nil, err
		}
		subs[ir.GenericType(key.Value)] = val
	}
	p.next() // '>'
	return subs, nil
}

// convert_function %x to $TYPE
func (p *Parser) parseConvertFunction(b *ir.Builder) (*ir.Instruction, error) {
	v, err := p.parseValueOperand()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("to"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Dollar); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	ft, ok := typ.(ir.FuncType)
	if !ok {
		return nil, errors.Syntax(p.file, p.line(), "convert_function to non-function type %s", typ)
	}
	return b.ConvertFunc(v, ft), nil
}

// class_method %x, #m : $TYPE
func (p *Parser) parseClassMethod(b *ir.Builder) (*ir.Instruction, error) {
	receiver, err := p.parseValueOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return nil, err
	}
	method, err := p.expect(token.MethodName)
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
	ft, ok := typ.(ir.FuncType)
	if !ok {
		return nil, errors.Syntax(p.file, method.Line, "class_method with non-function type %s", typ)
	}
	return b.ClassMethod(receiver, method.Value, ft), nil
}

// const N : $TYPE
func (p *Parser) parseConst(b *ir.Builder) (*ir.Instruction, error) {
	num, err := p.expect(token.Number)
	if err != nil {
		return nil, err
	}
	val, err := strconv.ParseInt(num.Value, 10, 64)
	if err != nil {
		return nil, errors.Syntax(p.file, num.Line, "bad integer literal %q", num.Value)
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Dollar); err != nil {
		return nil, err
	}
	typ, terr := p.parseType()
	if terr != nil {
		return nil, terr
	}
	return b.Const(val, typ), nil
}

// builtin "name"(%x, ...) [: $TYPE]
func (p *Parser) parseBuiltin(b *ir.Builder) (*ir.Instruction, error) {
	name, err := p.expect(token.String)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var args []*ir.Value
	for !p.peekIs(token.RParen) {
		if len(args) > 0 {
			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseValueOperand()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.next() // ')'
	var result ir.Type
	if p.peekIs(token.Colon) {
		p.next()
		if _, err := p.expect(token.Dollar); err != nil {
			return nil, err
		}
		result, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	return b.Builtin(name.Value, args, result), nil
}

// br bbN(%x, ...)
//
// Branches may target blocks defined later, so they are recorded and
// materialized after the whole body is parsed.
func (p *Parser) parseBr(b *ir.Builder) error {
	label, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	pb := pendingBranch{
		block: b.Block(),
		loc:   b.Loc,
		dests: []string{label.Value},
	}
	if p.peekIs(token.LParen) {
		p.next()
		for !p.peekIs(token.RParen) {
			if len(pb.args) > 0 {
				if _, err := p.expect(token.Comma); err != nil {
					return err
				}
			}
			arg, err := p.expect(token.ValueName)
			if err != nil {
				return err
			}
			pb.args = append(pb.args, arg.Value)
		}
		p.next() // ')'
	}
	p.pending = append(p.pending, pb)
	return nil
}

// cond_br %c, bbN, bbM
func (p *Parser) parseCondBr(b *ir.Builder) error {
	cond, err := p.expect(token.ValueName)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return err
	}
	trueDest, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return err
	}
	falseDest, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	p.pending = append(p.pending, pendingBranch{
		block:  b.Block(),
		loc:    b.Loc,
		isCond: true,
		cond:   cond.Value,
		dests:  []string{trueDest.Value, falseDest.Value},
	})
	return nil
}
