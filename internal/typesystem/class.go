package typesystem

import (
	"strings"

	"github.com/funvibe/geninst/internal/config"
)

// Modifier is a bit set of class properties.
type Modifier uint16

const (
	ModAbstract Modifier = 1 << iota
	ModInterface
	ModEnum
	ModPrimitive
	ModWrapper
	ModAnonymous
	ModStatic
	ModFinal
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModAbstract, "abstract"},
	{ModInterface, "interface"},
	{ModEnum, "enum"},
	{ModPrimitive, "primitive"},
	{ModWrapper, "wrapper"},
	{ModAnonymous, "anonymous"},
	{ModStatic, "static"},
	{ModFinal, "final"},
}

// ParseModifier returns the modifier with the given name.
func ParseModifier(name string) (Modifier, bool) {
	for _, m := range modifierNames {
		if m.name == name {
			return m.mod, true
		}
	}
	return 0, false
}

func (m Modifier) String() string {
	var parts []string
	for _, n := range modifierNames {
		if m&n.mod != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " ")
}

// Class is the metadata of a raw class: the erasure every descriptor carries.
// Classes are created by a Provider and are read-only afterwards.
type Class struct {
	Name       string  // fully qualified, nested classes use '$'
	Params     []*TVar // declared type parameters
	Super      Type    // generic super class, nil for Object, interfaces and primitives
	Interfaces []Type  // generic interfaces
	Enclosing  *Class
	Component  *Class // element class of an array class
	Modifiers  Modifier

	// Box links a primitive to its wrapper and a wrapper to its primitive.
	Box *Class
}

// ObjectClass is the universal top type. Providers must register this instance.
var ObjectClass = &Class{Name: config.ObjectClassName}

// Is reports whether both refer to the same class. Classes are identified by name.
func (c *Class) Is(other *Class) bool {
	if c == other {
		return true
	}
	return c != nil && other != nil && c.Name == other.Name
}

// SimpleName returns the name without package and enclosing classes.
func (c *Class) SimpleName() string {
	name := c.Name
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func (c *Class) String() string { return c.Name }

func (c *Class) Has(m Modifier) bool { return c.Modifiers&m != 0 }

func (c *Class) IsInterface() bool { return c.Has(ModInterface) }
func (c *Class) IsAbstract() bool  { return c.Has(ModAbstract) || c.Has(ModInterface) }
func (c *Class) IsEnum() bool      { return c.Has(ModEnum) }
func (c *Class) IsPrimitive() bool { return c.Has(ModPrimitive) }
func (c *Class) IsWrapper() bool   { return c.Has(ModWrapper) }
func (c *Class) IsAnonymous() bool { return c.Has(ModAnonymous) }
func (c *Class) IsStatic() bool    { return c.Has(ModStatic) }
func (c *Class) IsArray() bool     { return c.Component != nil }
func (c *Class) IsObject() bool    { return c.Name == config.ObjectClassName }

// IsGeneric reports whether the class or one of its enclosing classes declares
// type parameters.
func (c *Class) IsGeneric() bool {
	for cls := c; cls != nil; cls = cls.Enclosing {
		if len(cls.Params) != 0 {
			return true
		}
		if cls.IsStatic() {
			break
		}
	}
	return false
}

// ArrayOf returns the array class with the given component class.
func ArrayOf(component *Class) *Class {
	return &Class{
		Name:      component.Name + "[]",
		Component: component,
		Super:     TClass{Class: ObjectClass},
		Modifiers: ModFinal,
	}
}

// Provider resolves classes by name. Implementations must be safe for
// concurrent use and free of side effects.
type Provider interface {
	Lookup(name string) (*Class, error)
	Classes() []*Class
}
