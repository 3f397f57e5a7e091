package typesystem

import (
	"hash/fnv"
)

// Descriptor pairs a generic shape with its raw class (the erasure).
// Descriptors are never mutated in place; every transformation returns a new one.
type Descriptor struct {
	Type Type
	Raw  *Class
}

// FromClass creates the descriptor of a class in its generic form: a generic
// class is parameterized with its own declared variables.
func FromClass(c *Class) *Descriptor {
	return &Descriptor{Type: ClassType(c), Raw: c}
}

// FromType creates a descriptor from a shape. A shape without an erasure
// (a wildcard or an unresolvable capture) gets Object as raw class.
func FromType(t Type) *Descriptor {
	if tc, ok := t.(TClass); ok {
		return &Descriptor{Type: tc, Raw: tc.Class}
	}
	return &Descriptor{Type: t, Raw: RawClass(t)}
}

// New pairs an exact shape with a raw class.
func New(t Type, raw *Class) *Descriptor {
	return &Descriptor{Type: t, Raw: raw}
}

// Copy returns a shallow copy; shapes are immutable by convention.
func (d *Descriptor) Copy() *Descriptor {
	return &Descriptor{Type: d.Type, Raw: d.Raw}
}

// Name returns the canonical fully-qualified text of the generic shape.
func (d *Descriptor) Name() string { return d.Type.String() }

func (d *Descriptor) String() string { return d.Name() }

// SimpleName returns the raw class name without package.
func (d *Descriptor) SimpleName() string { return d.Raw.SimpleName() }

// Equal compares descriptors by canonical text; raw class identity alone is
// not enough once generics are involved.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Name() == other.Name()
}

// Hash is consistent with Equal.
func (d *Descriptor) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(d.Name()))
	return h.Sum64()
}

// TypeVariables returns the declared variables of the raw class when the
// descriptor is parameterized, otherwise nil.
func (d *Descriptor) TypeVariables() []*TVar {
	if _, ok := d.Type.(TParam); !ok {
		return nil
	}
	return d.Raw.Params
}

// ArgTypes returns the actual type arguments of a parameterized descriptor.
func (d *Descriptor) ArgTypes() []Type {
	if p, ok := d.Type.(TParam); ok {
		return p.Args
	}
	return nil
}

// Args returns the type arguments as descriptors.
func (d *Descriptor) Args() []*Descriptor {
	args := d.ArgTypes()
	out := make([]*Descriptor, len(args))
	for i, a := range args {
		out[i] = FromType(a)
	}
	return out
}

// NumParams returns the number of actual type arguments.
func (d *Descriptor) NumParams() int { return len(d.ArgTypes()) }

// Owner returns the owner descriptor of a parameterized inner type, or nil.
func (d *Descriptor) Owner() *Descriptor {
	if p, ok := d.Type.(TParam); ok && p.Owner != nil {
		return FromType(p.Owner)
	}
	return nil
}

// Component returns the element descriptor of an array descriptor, or nil.
func (d *Descriptor) Component() *Descriptor {
	if c := ComponentType(d.Type); c != nil {
		return FromType(c)
	}
	return nil
}

// RawGeneric returns the generic form of the raw class.
func (d *Descriptor) RawGeneric() *Descriptor { return FromClass(d.Raw) }

// WithArgs returns a parameterized descriptor with the given arguments,
// keeping the owner.
func (d *Descriptor) WithArgs(args []Type) *Descriptor {
	var owner Type
	if p, ok := d.Type.(TParam); ok {
		owner = p.Owner
	}
	return New(TParam{Class: d.Raw, Args: args, Owner: owner}, d.Raw)
}

// WithOwner returns the descriptor with a new owner. Non-parameterized
// descriptors are returned unchanged.
func (d *Descriptor) WithOwner(owner *Descriptor) *Descriptor {
	p, ok := d.Type.(TParam)
	if !ok {
		return d.Copy()
	}
	var ot Type
	if owner != nil {
		ot = owner.Type
	}
	return New(TParam{Class: p.Class, Args: p.Args, Owner: ot}, d.Raw)
}

// WithComponent returns the array descriptor with a new element type.
// Non-array descriptors are returned unchanged.
func (d *Descriptor) WithComponent(component *Descriptor) *Descriptor {
	if !d.IsArray() {
		return d.Copy()
	}
	return FromType(ArrayType(component.Type))
}
