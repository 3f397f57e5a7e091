// Package assign answers assignability questions between generic types:
// raw subclassing with boxing and primitive widening, parameterized types
// with wildcard containment, type variables and generic arrays. It also
// resolves how type arguments flow from a subtype to a supertype.
package assign

import (
	"github.com/funvibe/geninst/internal/config"
	ts "github.com/funvibe/geninst/internal/typesystem"
)

// widening lists the primitive widening conversions.
var widening = map[string][]string{
	"byte":  {"short", "int", "long", "float", "double"},
	"short": {"int", "long", "float", "double"},
	"char":  {"int", "long", "float", "double"},
	"int":   {"long", "float", "double"},
	"long":  {"float", "double"},
	"float": {"double"},
}

// IsSubclass reports whether a value of raw class source can be assigned to
// raw class target, allowing boxing, unboxing and primitive widening.
func IsSubclass(source, target *ts.Class) bool {
	if target == nil {
		return false
	}
	if source == nil {
		return !target.IsPrimitive()
	}
	if source.IsPrimitive() && !target.IsPrimitive() {
		if source.Box == nil {
			return false
		}
		source = source.Box
	}
	if target.IsPrimitive() && !source.IsPrimitive() {
		if !source.IsWrapper() || source.Box == nil {
			return false
		}
		source = source.Box
	}
	if source.Is(target) {
		return true
	}
	if source.IsPrimitive() {
		for _, w := range widening[source.Name] {
			if w == target.Name {
				return true
			}
		}
		return false
	}
	return isRawSubtype(source, target)
}

// isRawSubtype is plain reference subtyping without conversions.
func isRawSubtype(source, target *ts.Class) bool {
	if source.Is(target) {
		return true
	}
	if source.IsPrimitive() || target.IsPrimitive() {
		return false
	}
	if target.IsObject() {
		return true
	}
	if source.IsArray() {
		switch target.Name {
		case config.CloneableClassName, config.SerializableClassName:
			return true
		}
		if !target.IsArray() {
			return false
		}
		sc, tc := source.Component, target.Component
		if sc.IsPrimitive() || tc.IsPrimitive() {
			return sc.Is(tc)
		}
		return isRawSubtype(sc, tc)
	}

	seen := map[string]bool{source.Name: true}
	queue := []*ts.Class{source}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, st := range directRawSupers(c) {
			if st.Is(target) {
				return true
			}
			if !seen[st.Name] {
				seen[st.Name] = true
				queue = append(queue, st)
			}
		}
	}
	return false
}

func directRawSupers(c *ts.Class) []*ts.Class {
	var out []*ts.Class
	if c.Super != nil {
		out = append(out, ts.RawClass(c.Super))
	}
	for _, i := range c.Interfaces {
		out = append(out, ts.RawClass(i))
	}
	return out
}

// IsAssignable reports whether a value of type source can be assigned to a
// location of type target.
func IsAssignable(source, target ts.Type) bool {
	return isAssignable(source, target, nil)
}

// IsAssignableWith is IsAssignable where variables of target's bounds are
// looked up in assigns.
func IsAssignableWith(source, target ts.Type, assigns ts.Subst) bool {
	return isAssignable(source, target, assigns)
}

func isAssignable(source, target ts.Type, assigns ts.Subst) bool {
	if target == nil {
		return source == nil
	}
	if source == nil {
		return true
	}
	switch to := target.(type) {
	case ts.TClass:
		return toClass(source, to.Class)
	case ts.TParam:
		return toParam(source, to, assigns)
	case ts.TArray:
		return toArray(source, to, assigns)
	case ts.TWildcard:
		return toWildcard(source, to, assigns)
	case *ts.TVar:
		return toVar(source, to, assigns)
	case ts.TCapture:
		return sameType(source, to)
	}
	return false
}

func toClass(source ts.Type, target *ts.Class) bool {
	switch from := source.(type) {
	case ts.TClass:
		return IsSubclass(from.Class, target)
	case ts.TParam:
		return IsSubclass(from.Class, target)
	case *ts.TVar:
		for _, b := range implicitBounds(from.Bounds) {
			if toClass(b, target) {
				return true
			}
		}
		return false
	case ts.TCapture:
		for _, b := range implicitBounds(from.Upper) {
			if toClass(b, target) {
				return true
			}
		}
		return false
	case ts.TArray:
		if target.IsObject() || target.Name == config.CloneableClassName || target.Name == config.SerializableClassName {
			return true
		}
		return target.IsArray() && isAssignable(from.Component, ts.ClassType(target.Component), nil)
	}
	// a wildcard is never assignable to a class
	return false
}

func toParam(source ts.Type, target ts.TParam, assigns ts.Subst) bool {
	if sameType(source, target) {
		return true
	}
	from := TypeArguments(source, target.Class)
	if from == nil {
		return false
	}
	if len(from) == 0 {
		// raw source
		return true
	}
	to := typeArguments(target, target.Class, assigns, 0)
	for _, key := range to.Keys() {
		toArg := unroll(key, to)
		fromArg := unroll(key, from)
		if toArg == nil || fromArg == nil {
			continue
		}
		if sameType(toArg, fromArg) {
			continue
		}
		if w, ok := toArg.(ts.TWildcard); ok && isAssignable(fromArg, w, assigns) {
			continue
		}
		return false
	}
	return true
}

func toArray(source ts.Type, target ts.TArray, assigns ts.Subst) bool {
	if sameType(source, target) {
		return true
	}
	switch from := source.(type) {
	case ts.TClass:
		return from.Class.IsArray() && isAssignable(ts.ClassType(from.Class.Component), target.Component, assigns)
	case ts.TArray:
		return isAssignable(from.Component, target.Component, assigns)
	case ts.TWildcard:
		for _, b := range from.UpperBounds() {
			if isAssignable(b, target, assigns) {
				return true
			}
		}
	case *ts.TVar:
		for _, b := range implicitBounds(from.Bounds) {
			if isAssignable(b, target, assigns) {
				return true
			}
		}
	}
	return false
}

func toWildcard(source ts.Type, target ts.TWildcard, assigns ts.Subst) bool {
	if sameType(source, target) {
		return true
	}
	toUpper := target.UpperBounds()
	toLower := target.Lower

	if from, ok := source.(ts.TWildcard); ok {
		for _, tb := range toUpper {
			tb = substitute(tb, assigns)
			for _, b := range from.UpperBounds() {
				if !isAssignable(b, tb, assigns) {
					return false
				}
			}
		}
		for _, tb := range toLower {
			tb = substitute(tb, assigns)
			if len(from.Lower) == 0 {
				return false
			}
			for _, b := range from.Lower {
				if !isAssignable(tb, b, assigns) {
					return false
				}
			}
		}
		return true
	}

	for _, tb := range toUpper {
		if !isAssignable(source, substitute(tb, assigns), assigns) {
			return false
		}
	}
	for _, tb := range toLower {
		if !isAssignable(substitute(tb, assigns), source, assigns) {
			return false
		}
	}
	return true
}

func toVar(source ts.Type, target *ts.TVar, assigns ts.Subst) bool {
	if v, ok := source.(*ts.TVar); ok {
		if v.Key() == target.Key() {
			return true
		}
		for _, b := range v.Bounds {
			if isAssignable(b, target, assigns) {
				return true
			}
		}
	}
	return false
}

// implicitBounds defaults an empty bound list to Object.
func implicitBounds(bounds []ts.Type) []ts.Type {
	if len(bounds) == 0 {
		return []ts.Type{ts.TClass{Class: ts.ObjectClass}}
	}
	return bounds
}

func substitute(t ts.Type, assigns ts.Subst) ts.Type {
	if v, ok := t.(*ts.TVar); ok && assigns != nil {
		if r, found := assigns.Lookup(v); found {
			return r
		}
	}
	return t
}

// sameType compares variables by identity and everything else by text.
func sameType(a, b ts.Type) bool {
	va, okA := a.(*ts.TVar)
	vb, okB := b.(*ts.TVar)
	if okA || okB {
		return okA && okB && va.Key() == vb.Key()
	}
	return ts.SameType(a, b)
}

// unroll follows variable-to-variable assignments starting at key.
func unroll(key string, m ts.Subst) ts.Type {
	seen := map[string]bool{}
	for {
		r, ok := m[key]
		if !ok {
			return nil
		}
		v, isVar := r.(*ts.TVar)
		if !isVar || v.Key() == key || seen[v.Key()] {
			return r
		}
		seen[key] = true
		key = v.Key()
	}
}
