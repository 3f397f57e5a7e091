package assign

import (
	ts "github.com/funvibe/geninst/internal/typesystem"
)

// maxWalk bounds every walk up a hierarchy; universes are validated against
// cyclic inheritance but bounds of type variables may still nest.
const maxWalk = 64

// TypeArguments returns how the type parameters of to, and of every class
// between t and to, are bound when t is viewed as to. The result is nil when
// t is not assignable to to and empty when t is raw.
func TypeArguments(t ts.Type, to *ts.Class) ts.Subst {
	return typeArguments(t, to, nil, 0)
}

func typeArguments(t ts.Type, to *ts.Class, sub ts.Subst, depth int) ts.Subst {
	if depth > maxWalk || t == nil {
		return nil
	}
	switch typ := t.(type) {
	case ts.TClass:
		return classTypeArguments(typ.Class, to, sub, depth)
	case ts.TParam:
		cls := typ.Class
		if !IsSubclass(cls, to) {
			return nil
		}
		var m ts.Subst
		if owner, ok := typ.Owner.(ts.TParam); ok {
			m = typeArguments(owner, owner.Class, sub, depth+1)
		}
		if m == nil {
			m = clone(sub)
		}
		for i, p := range cls.Params {
			if i >= len(typ.Args) {
				break
			}
			arg := typ.Args[i]
			if v, ok := arg.(*ts.TVar); ok {
				if r, found := m.Lookup(v); found {
					arg = r
				}
			}
			m.Bind(p, arg)
		}
		if cls.Is(to) {
			return m
		}
		return typeArguments(ClosestParent(cls, to), to, m, depth+1)
	case *ts.TVar:
		return boundTypeArguments(implicitBounds(typ.Bounds), to, sub, depth)
	case ts.TCapture:
		return boundTypeArguments(implicitBounds(typ.Upper), to, sub, depth)
	case ts.TWildcard:
		return boundTypeArguments(typ.UpperBounds(), to, sub, depth)
	case ts.TArray:
		target := to
		if to.IsArray() {
			target = to.Component
		}
		return typeArguments(typ.Component, target, sub, depth+1)
	}
	return nil
}

func boundTypeArguments(bounds []ts.Type, to *ts.Class, sub ts.Subst, depth int) ts.Subst {
	for _, b := range bounds {
		if toClass(b, to) {
			return typeArguments(b, to, sub, depth+1)
		}
	}
	return nil
}

func classTypeArguments(cls, to *ts.Class, sub ts.Subst, depth int) ts.Subst {
	if !IsSubclass(cls, to) {
		return nil
	}
	if cls.IsPrimitive() {
		if to.IsPrimitive() {
			return ts.Subst{}
		}
		cls = cls.Box
	}
	if cls.IsArray() && to.IsArray() {
		return classTypeArguments(cls.Component, to.Component, sub, depth+1)
	}
	m := clone(sub)
	if cls.Is(to) {
		return m
	}
	parent := ClosestParent(cls, to)
	if parent == nil {
		// an interface or array seen as Object
		return m
	}
	return typeArguments(parent, to, m, depth+1)
}

// ClosestParent returns the direct generic super type of cls on the way to
// super: the most specific matching interface when super is an interface,
// the super class otherwise.
func ClosestParent(cls, super *ts.Class) ts.Type {
	if super.IsInterface() {
		var best ts.Type
		var bestClass *ts.Class
		for _, it := range cls.Interfaces {
			mid := ts.RawClass(it)
			if isRawSubtype(mid, super) && (bestClass == nil || isRawSubtype(bestClass, mid)) {
				best, bestClass = it, mid
			}
		}
		if best != nil {
			return best
		}
	}
	return cls.Super
}

// DetermineTypeArguments resolves the type parameters of cls (and of the
// classes between cls and the raw class of super) so that cls becomes a
// subtype of super. Entries mapping a variable to itself are dropped. The
// result is nil when cls is not a subclass of super.
func DetermineTypeArguments(cls *ts.Class, super ts.TParam) ts.Subst {
	m := determine(cls, super, 0)
	if m == nil {
		return nil
	}
	for k, v := range m {
		if tv, ok := v.(*ts.TVar); ok && tv.Key() == k {
			delete(m, k)
		}
	}
	return m
}

func determine(cls *ts.Class, super ts.TParam, depth int) ts.Subst {
	if depth > maxWalk || !IsSubclass(cls, super.Class) {
		return nil
	}
	if cls.Is(super.Class) {
		return typeArguments(super, super.Class, nil, 0)
	}
	switch mid := ClosestParent(cls, super.Class).(type) {
	case ts.TClass:
		return determine(mid.Class, super, depth+1)
	case ts.TParam:
		m := determine(mid.Class, super, depth+1)
		if m == nil {
			return nil
		}
		mapVariablesToArguments(cls, mid, m)
		return m
	}
	return nil
}

// mapVariablesToArguments carries the bindings of pt's parameters over to
// the variables of cls that pt passes as arguments.
func mapVariablesToArguments(cls *ts.Class, pt ts.TParam, m ts.Subst) {
	if owner, ok := pt.Owner.(ts.TParam); ok {
		mapVariablesToArguments(cls, owner, m)
	}
	for i, p := range pt.Class.Params {
		if i >= len(pt.Args) {
			break
		}
		arg, ok := pt.Args[i].(*ts.TVar)
		if !ok || !declares(cls, arg) {
			continue
		}
		if val, found := m.Lookup(p); found {
			m.Bind(arg, val)
		}
	}
}

func declares(cls *ts.Class, v *ts.TVar) bool {
	for _, p := range cls.Params {
		if p.Key() == v.Key() {
			return true
		}
	}
	return false
}

// ParamBindings maps the declared parameters of a parameterized type, and of
// its parameterized owners, to the actual arguments.
func ParamBindings(p ts.TParam) ts.Subst {
	m := ts.Subst{}
	if owner, ok := p.Owner.(ts.TParam); ok {
		m.Merge(ParamBindings(owner))
	}
	for i, v := range p.Class.Params {
		if i < len(p.Args) {
			m.Bind(v, p.Args[i])
		}
	}
	return m
}

// ExactSuperType returns the exact generic super type of t whose raw class
// is search, with all type arguments carried through the hierarchy. A raw
// use of a generic class yields erased super types. The result is nil when
// search is not a super type of t.
func ExactSuperType(t ts.Type, search *ts.Class) ts.Type {
	return exactSuper(t, search, 0)
}

func exactSuper(t ts.Type, search *ts.Class, depth int) ts.Type {
	if t == nil || depth > maxWalk {
		return nil
	}
	switch t.(type) {
	case ts.TClass, ts.TParam, ts.TArray:
		c := ts.RawClass(t)
		if c.Is(search) {
			return t
		}
		if !isRawSubtype(c, search) {
			return nil
		}
	}
	for _, st := range directSuperTypes(t) {
		if r := exactSuper(st, search, depth+1); r != nil {
			return r
		}
	}
	return nil
}

func directSuperTypes(t ts.Type) []ts.Type {
	object := ts.TClass{Class: ts.ObjectClass}
	switch typ := t.(type) {
	case ts.TClass:
		c := typ.Class
		if c.IsArray() {
			out := arrayOf(directSuperTypes(ts.TClass{Class: c.Component}))
			return append(out, object)
		}
		var supers []ts.Type
		if c.Super != nil {
			supers = append(supers, c.Super)
		}
		supers = append(supers, c.Interfaces...)
		if len(supers) == 0 && c.IsInterface() {
			return []ts.Type{object}
		}
		if c.IsGeneric() {
			// raw use: erase everything
			for i, st := range supers {
				supers[i] = ts.TClass{Class: ts.RawClass(st)}
			}
		}
		return supers
	case ts.TParam:
		c := typ.Class
		m := ParamBindings(typ)
		var supers []ts.Type
		if c.Super != nil {
			supers = append(supers, c.Super.Apply(m))
		}
		for _, it := range c.Interfaces {
			supers = append(supers, it.Apply(m))
		}
		if len(supers) == 0 && c.IsInterface() {
			return []ts.Type{object}
		}
		return supers
	case ts.TArray:
		out := arrayOf(directSuperTypes(typ.Component))
		return append(out, object)
	case *ts.TVar:
		return implicitBounds(typ.Bounds)
	case ts.TCapture:
		return implicitBounds(typ.Upper)
	case ts.TWildcard:
		return typ.UpperBounds()
	}
	return nil
}

func arrayOf(types []ts.Type) []ts.Type {
	out := make([]ts.Type, 0, len(types))
	for _, t := range types {
		if c, ok := t.(ts.TClass); ok && c.Class.IsObject() {
			continue
		}
		out = append(out, ts.ArrayType(t))
	}
	return out
}

func clone(s ts.Subst) ts.Subst {
	if s == nil {
		return ts.Subst{}
	}
	return s.Clone()
}
