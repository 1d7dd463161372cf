package ir

import "sort"

// SubstitutionMap binds callee-side generic parameters to concrete or
// opened types at a particular apply or partial_apply site.
type SubstitutionMap map[GenericType]Type

// Empty reports whether the map binds nothing.
func (s SubstitutionMap) Empty() bool { return len(s) == 0 }

// Keys returns the bound generic parameters in stable order.
func (s SubstitutionMap) Keys() []GenericType {
	keys := make([]GenericType, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Clone returns a copy of the map.
func (s SubstitutionMap) Clone() SubstitutionMap {
	if s == nil {
		return nil
	}
	out := make(SubstitutionMap, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Apply substitutes generic parameters in t. Unbound generic
// parameters and opened types are left untouched, keeping the
// operation total.
func (s SubstitutionMap) Apply(t Type) Type {
	if len(s) == 0 || t == nil {
		return t
	}
	switch tt := t.(type) {
	case GenericType:
		if bound, ok := s[tt]; ok {
			return bound
		}
		return tt
	case AddrType:
		return AddrType{Elem: s.Apply(tt.Elem)}
	case BoxType:
		return BoxType{Elem: s.Apply(tt.Elem)}
	case FuncType:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = s.Apply(p)
		}
		tt.Params = params
		tt.Result = s.Apply(tt.Result)
		return tt
	default:
		return t
	}
}

// OpenedTypes returns the opened types referenced by the bindings of
// the map, in stable order. These are the placeholders a caller must
// have in scope for spliced code to resolve.
func (s SubstitutionMap) OpenedTypes() []OpenedType {
	seen := make(map[OpenedType]bool)
	var collect func(t Type)
	collect = func(t Type) {
		switch tt := t.(type) {
		case OpenedType:
			seen[tt] = true
		case AddrType:
			collect(tt.Elem)
		case BoxType:
			collect(tt.Elem)
		case FuncType:
			for _, p := range tt.Params {
				collect(p)
			}
			collect(tt.Result)
		}
	}
	for _, v := range s {
		collect(v)
	}
	out := make([]OpenedType, 0, len(seen))
	for o := range seen {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
