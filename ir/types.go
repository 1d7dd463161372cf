package ir

import "strings"

// Type is the interface implemented by all IR types.
type Type interface {
	String() string
	typeNode()
}

// NamedType is a nominal type such as Int or String.
type NamedType string

func (t NamedType) String() string { return string(t) }
func (NamedType) typeNode()        {}

// GenericType is a callee-side generic parameter, bound through a
// substitution map at each apply site.
type GenericType string

func (t GenericType) String() string { return "!" + string(t) }
func (GenericType) typeNode()        {}

// OpenedType is a caller-side stand-in for a generic type binding
// opened at a particular call site. Opened types referenced by a
// substitution map must be registered in scope on the caller before
// code using them is spliced in.
type OpenedType string

func (t OpenedType) String() string { return "^" + string(t) }
func (OpenedType) typeNode()        {}

// AddrType is the address of a value of the element type.
type AddrType struct {
	Elem Type
}

func (t AddrType) String() string { return "*" + t.Elem.String() }
func (AddrType) typeNode()        {}

// BoxType is heap-boxed local storage holding the element type.
type BoxType struct {
	Elem Type
}

func (t BoxType) String() string { return "box<" + t.Elem.String() + ">" }
func (BoxType) typeNode()        {}

// Representation classifies how a function value is invoked.
type Representation int

const (
	RepThin Representation = iota
	RepThick
	RepMethod
	RepWitness
	RepClosure
	RepCFunc
	RepObjCMethod
	RepBlock
)

func (r Representation) String() string {
	switch r {
	case RepThin:
		return "thin"
	case RepThick:
		return "thick"
	case RepMethod:
		return "method"
	case RepWitness:
		return "witness"
	case RepClosure:
		return "closure"
	case RepCFunc:
		return "c_func"
	case RepObjCMethod:
		return "objc"
	case RepBlock:
		return "block"
	}
	return "unknown"
}

// Foreign reports whether the representation uses a foreign calling
// convention. Foreign functions are never inlinable.
func (r Representation) Foreign() bool {
	return r == RepCFunc || r == RepObjCMethod || r == RepBlock
}

// HasContext reports whether a function value of this representation
// carries a captured context.
func (r Representation) HasContext() bool {
	return r == RepThick || r == RepBlock
}

// FuncType is the type of a function value.
//
// Result is nil for functions that return nothing.
type FuncType struct {
	Result           Type
	Params           []Type
	Rep              Representation
	NoEscape         bool
	CalleeGuaranteed bool
	Throws           bool
}

func (t FuncType) String() string {
	var b strings.Builder
	if t.NoEscape {
		b.WriteString("@noescape ")
	}
	if t.CalleeGuaranteed {
		b.WriteString("@callee_guaranteed ")
	}
	if t.Throws {
		b.WriteString("@throws ")
	}
	if t.Rep != RepThin {
		b.WriteString("@" + t.Rep.String() + " ")
	}
	b.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> ")
	if t.Result == nil {
		b.WriteString("()")
	} else {
		b.WriteString(t.Result.String())
	}
	return b.String()
}

func (FuncType) typeNode() {}

// WithNoEscape returns a copy of the type with the escaping bit set
// accordingly. Used to compare function types with escaping
// normalized.
func (t FuncType) WithNoEscape(noEscape bool) FuncType {
	t.NoEscape = noEscape
	return t
}

// DroppingSuffixParams returns a copy of the type with the last n
// parameters removed and the representation set to thick. This is the
// type of a closure formed by partially applying the last n arguments.
func (t FuncType) DroppingSuffixParams(n int, guaranteed bool) FuncType {
	params := make([]Type, len(t.Params)-n)
	copy(params, t.Params[:len(t.Params)-n])
	t.Params = params
	t.Rep = RepThick
	t.CalleeGuaranteed = guaranteed
	return t
}

// TypeEqual reports structural equality of two types.
func TypeEqual(a, b Type) bool {
	switch at := a.(type) {
	case nil:
		return b == nil
	case NamedType:
		bt, ok := b.(NamedType)
		return ok && at == bt
	case GenericType:
		bt, ok := b.(GenericType)
		return ok && at == bt
	case OpenedType:
		bt, ok := b.(OpenedType)
		return ok && at == bt
	case AddrType:
		bt, ok := b.(AddrType)
		return ok && TypeEqual(at.Elem, bt.Elem)
	case BoxType:
		bt, ok := b.(BoxType)
		return ok && TypeEqual(at.Elem, bt.Elem)
	case FuncType:
		bt, ok := b.(FuncType)
		if !ok {
			return false
		}
		if at.Rep != bt.Rep || at.NoEscape != bt.NoEscape ||
			at.CalleeGuaranteed != bt.CalleeGuaranteed || at.Throws != bt.Throws {
			return false
		}
		if len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !TypeEqual(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return TypeEqual(at.Result, bt.Result)
	}
	return false
}

// IsAddress reports whether t is an address type. Captured arguments
// of address type are passed indirectly.
func IsAddress(t Type) bool {
	_, ok := t.(AddrType)
	return ok
}

// IsFunction reports whether t is a function type.
func IsFunction(t Type) bool {
	_, ok := t.(FuncType)
	return ok
}
