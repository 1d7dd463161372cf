package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Print renders the module in its textual form. The output parses
// back through the irtext package.
func Print(m *Module) string {
	var b strings.Builder
	for i, f := range m.functions {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(PrintFunction(f))
	}
	printMethodTables(&b, m)
	return b.String()
}

func printMethodTables(b *strings.Builder, m *Module) {
	if len(m.methods) == 0 {
		return
	}
	classes := make([]string, 0, len(m.methods))
	for c := range m.methods {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	for _, c := range classes {
		b.WriteString("\nmethod_table $" + c + " {\n")
		names := make([]string, 0, len(m.methods[c]))
		for n := range m.methods[c] {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(b, "  #%s : @%s\n", n, m.methods[c][n].Name)
		}
		b.WriteString("}\n")
	}
}

// PrintFunction renders one function in its textual form.
func PrintFunction(f *Function) string {
	p := &printer{
		names:  make(map[*Value]string),
		labels: make(map[*BasicBlock]string),
	}
	return p.function(f)
}

type printer struct {
	names  map[*Value]string
	labels map[*BasicBlock]string
	next   int
}

func (p *printer) name(v *Value) string {
	if n, ok := p.names[v]; ok {
		return n
	}
	n := fmt.Sprintf("%%%d", p.next)
	p.next++
	p.names[v] = n
	return n
}

func (p *printer) function(f *Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "func @%s : $%s", f.Name, f.Type)
	if f.MustInline {
		b.WriteString(" [must_inline]")
	}
	if f.Thunk {
		b.WriteString(" [thunk]")
	}
	if f.Serialized {
		b.WriteString(" [serialized]")
	}
	if f.Deserialized {
		b.WriteString(" [deserialized]")
	}
	if f.Linkage != LinkageHidden {
		b.WriteString(" [" + f.Linkage.String() + "]")
	}
	if f.Rep != f.Type.Rep {
		b.WriteString(" [" + f.Rep.String() + "]")
	}
	if f.Empty() {
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(" {\n")

	for i, blk := range f.blocks {
		p.labels[blk] = fmt.Sprintf("bb%d", i)
	}
	// Name block params and results in program order first so the
	// numbering is stable.
	for _, blk := range f.blocks {
		for _, param := range blk.Params() {
			p.name(param)
		}
		for _, inst := range blk.Instructions() {
			if inst.Result() != nil {
				p.name(inst.Result())
			}
		}
	}

	for i, blk := range f.blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.labels[blk])
		if len(blk.Params()) > 0 {
			b.WriteByte('(')
			for j, param := range blk.Params() {
				if j > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s : $%s", p.name(param), param.Type())
			}
			b.WriteByte(')')
		}
		b.WriteString(":\n")
		for _, inst := range blk.Instructions() {
			b.WriteString("  " + p.instruction(inst) + "\n")
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func (p *printer) instruction(in *Instruction) string {
	var b strings.Builder
	if in.Result() != nil {
		b.WriteString(p.name(in.Result()) + " = ")
	}
	switch in.Op() {
	case OpFunctionRef:
		fmt.Fprintf(&b, "function_ref @%s : $%s", in.Func.Name, in.Func.Type)
	case OpPartialApply:
		b.WriteString("partial_apply " + p.name(in.Operand(0)))
		p.subs(&b, in.Subs)
		b.WriteByte('(')
		for i, arg := range in.Operands()[1:] {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s : %s", p.name(arg), in.Conventions[i])
		}
		b.WriteByte(')')
		if ft, ok := in.Result().Type().(FuncType); ok && ft.CalleeGuaranteed {
			b.WriteString(" [callee_guaranteed]")
		}
		if in.OnStack {
			b.WriteString(" [on_stack]")
		}
	case OpThinToThick:
		b.WriteString("thin_to_thick " + p.name(in.Operand(0)))
	case OpConvertFunc:
		fmt.Fprintf(&b, "convert_function %s to $%s", p.name(in.Operand(0)), in.Result().Type())
	case OpConvertEscape:
		b.WriteString("convert_escape " + p.name(in.Operand(0)))
	case OpMarkDependence:
		fmt.Fprintf(&b, "mark_dependence %s on %s", p.name(in.Operand(0)), p.name(in.Operand(1)))
	case OpApply:
		b.WriteString("apply " + p.name(in.Operand(0)))
		p.subs(&b, in.Subs)
		b.WriteByte('(')
		for i, arg := range in.Operands()[1:] {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.name(arg))
		}
		b.WriteByte(')')
	case OpClassMethod:
		fmt.Fprintf(&b, "class_method %s, #%s : $%s", p.name(in.Operand(0)), in.Method, in.Result().Type())
	case OpAllocBox:
		fmt.Fprintf(&b, "alloc_box $%s", in.Result().Type().(BoxType).Elem)
	case OpProjectBox:
		b.WriteString("project_box " + p.name(in.Operand(0)))
	case OpStore:
		fmt.Fprintf(&b, "store %s to %s", p.name(in.Operand(0)), p.name(in.Operand(1)))
	case OpLoad:
		b.WriteString("load " + p.name(in.Operand(0)))
	case OpRetain:
		b.WriteString("retain " + p.name(in.Operand(0)))
	case OpRelease:
		b.WriteString("release " + p.name(in.Operand(0)))
	case OpAllocRef:
		b.WriteString("alloc_ref $" + in.Class)
	case OpConst:
		fmt.Fprintf(&b, "const %d : $%s", in.ConstValue, in.Result().Type())
	case OpBuiltin:
		fmt.Fprintf(&b, "builtin %q(", in.BuiltinName)
		for i, arg := range in.Operands() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.name(arg))
		}
		b.WriteByte(')')
		if in.Result() != nil {
			fmt.Fprintf(&b, " : $%s", in.Result().Type())
		}
	case OpReturn:
		b.WriteString("return")
		if in.NumOperands() > 0 {
			b.WriteString(" " + p.name(in.Operand(0)))
		}
	case OpBr:
		b.WriteString("br " + p.labels[in.Dests[0]])
		if in.NumOperands() > 0 {
			b.WriteByte('(')
			for i, arg := range in.Operands() {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(p.name(arg))
			}
			b.WriteByte(')')
		}
	case OpCondBr:
		fmt.Fprintf(&b, "cond_br %s, %s, %s",
			p.name(in.Operand(0)), p.labels[in.Dests[0]], p.labels[in.Dests[1]])
	default:
		b.WriteString(in.Op().String())
	}
	return b.String()
}

func (p *printer) subs(b *strings.Builder, s SubstitutionMap) {
	if s.Empty() {
		return
	}
	b.WriteByte('<')
	for i, k := range s.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "!%s = %s", string(k), s[k])
	}
	b.WriteByte('>')
}
