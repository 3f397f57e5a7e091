package typesystem

import "github.com/funvibe/geninst/internal/config"

// Shape classification. All predicates are pure and total.

func (d *Descriptor) IsRaw() bool {
	_, ok := d.Type.(TClass)
	return ok
}

func (d *Descriptor) IsParameterized() bool {
	_, ok := d.Type.(TParam)
	return ok
}

func (d *Descriptor) IsTypeVariable() bool {
	_, ok := d.Type.(*TVar)
	return ok
}

func (d *Descriptor) IsWildcard() bool {
	_, ok := d.Type.(TWildcard)
	return ok
}

func (d *Descriptor) IsCapture() bool {
	_, ok := d.Type.(TCapture)
	return ok
}

// IsArray reports array shapes, generic or raw.
func (d *Descriptor) IsArray() bool {
	if _, ok := d.Type.(TArray); ok {
		return true
	}
	return d.Raw.IsArray()
}

// IsGenericArray reports whether the element type has unresolved content.
func (d *Descriptor) IsGenericArray() bool {
	c := d.Component()
	return c != nil && c.HasUnresolved()
}

func (d *Descriptor) HasOwner() bool {
	p, ok := d.Type.(TParam)
	return ok && p.Owner != nil
}

// HasTypeVariables reports a type variable anywhere in the shape.
func (d *Descriptor) HasTypeVariables() bool {
	return containsShape(d.Type, func(t Type) bool {
		_, ok := t.(*TVar)
		return ok
	})
}

// HasWildcards reports a wildcard anywhere in the shape.
func (d *Descriptor) HasWildcards() bool {
	return containsShape(d.Type, func(t Type) bool {
		_, ok := t.(TWildcard)
		return ok
	})
}

// HasUnresolved reports whether the shape contains a wildcard or type variable
// anywhere: through array components, type arguments and the owner chain.
// A descriptor without unresolved content instantiates to itself.
func (d *Descriptor) HasUnresolved() bool {
	return HasUnresolved(d.Type)
}

// HasUnresolved is the shape-level form of Descriptor.HasUnresolved.
func HasUnresolved(t Type) bool {
	return containsShape(t, func(t Type) bool {
		switch t.(type) {
		case *TVar, TWildcard:
			return true
		}
		return false
	})
}

func containsShape(t Type, match func(Type) bool) bool {
	if t == nil {
		return false
	}
	if match(t) {
		return true
	}
	switch typ := t.(type) {
	case TParam:
		for _, arg := range typ.Args {
			if containsShape(arg, match) {
				return true
			}
		}
		return containsShape(typ.Owner, match)
	case TArray:
		return containsShape(typ.Component, match)
	}
	return false
}

func (d *Descriptor) IsEnum() bool      { return d.Raw.IsEnum() }
func (d *Descriptor) IsPrimitive() bool { return d.Raw.IsPrimitive() }
func (d *Descriptor) IsWrapper() bool   { return d.Raw.IsWrapper() }
func (d *Descriptor) IsAbstract() bool  { return d.Raw.IsAbstract() }
func (d *Descriptor) IsAnonymous() bool { return d.Raw.IsAnonymous() }
func (d *Descriptor) IsObject() bool    { return d.Raw.IsObject() }
func (d *Descriptor) IsString() bool    { return d.Raw.Name == config.StringClassName }
func (d *Descriptor) IsClass() bool     { return d.Raw.Name == config.ClassClassName }

func (d *Descriptor) IsVoid() bool {
	return d.Raw.Name == "void" || d.Raw.Name == config.VoidClassName
}

// Boxed returns the wrapper class of a primitive, otherwise the raw class.
func (d *Descriptor) Boxed() *Class {
	if d.Raw.IsPrimitive() && d.Raw.Box != nil {
		return d.Raw.Box
	}
	return d.Raw
}

// Unboxed returns the primitive of a wrapper, otherwise the raw class.
func (d *Descriptor) Unboxed() *Class {
	if d.Raw.IsWrapper() && d.Raw.Box != nil {
		return d.Raw.Box
	}
	return d.Raw
}
