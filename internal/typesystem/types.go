package typesystem

import (
	"strings"
)

// Type is the generic shape of a descriptor. It is a closed sum type:
// TClass, TParam, *TVar, TWildcard, TArray and TCapture.
type Type interface {
	// String returns the canonical fully-qualified text of the shape.
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []*TVar
	isType()
}

// TClass represents a raw class reference (e.g. java.lang.String, or List used raw).
type TClass struct {
	Class *Class
}

func (t TClass) isType()          {}
func (t TClass) String() string   { return t.Class.Name }
func (t TClass) Apply(Subst) Type { return t }

func (t TClass) FreeTypeVariables() []*TVar { return nil }

// TParam represents a parameterized type (e.g. List<String>). Owner is the
// enclosing generic instance of an inner class, or nil.
type TParam struct {
	Class *Class
	Args  []Type
	Owner Type
}

func (t TParam) isType() {}

func (t TParam) String() string {
	var sb strings.Builder
	if owner, ok := t.Owner.(TParam); ok {
		sb.WriteString(owner.String())
		sb.WriteByte('$')
		sb.WriteString(t.Class.SimpleName())
	} else {
		sb.WriteString(t.Class.Name)
	}
	if len(t.Args) > 0 {
		sb.WriteByte('<')
		sb.WriteString(joinTypes(t.Args, ", "))
		sb.WriteByte('>')
	}
	return sb.String()
}

func (t TParam) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TParam) FreeTypeVariables() []*TVar {
	var vars []*TVar
	for _, arg := range t.Args {
		vars = append(vars, arg.FreeTypeVariables()...)
	}
	if t.Owner != nil {
		vars = append(vars, t.Owner.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TVar represents a type variable. Identity is the pair of declaring scope and
// name. Bounds may refer back to the variable itself (T extends Comparable<T>),
// so variables are always handled by pointer.
type TVar struct {
	Name   string
	Decl   string // declaring class, or config.QueryDeclName
	Bounds []Type
}

// NewTVar creates an unbounded type variable.
func NewTVar(name, decl string) *TVar {
	return &TVar{Name: name, Decl: decl}
}

func (t *TVar) isType()        {}
func (t *TVar) String() string { return t.Name }

// Key is the identity of the variable inside a Subst.
func (t *TVar) Key() string { return t.Decl + "#" + t.Name }

// Declaration renders the variable with its bounds (e.g. "T extends Comparable<T>").
func (t *TVar) Declaration() string {
	if len(t.Bounds) == 0 {
		return t.Name
	}
	return t.Name + " extends " + joinTypes(t.Bounds, " & ")
}

func (t *TVar) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t *TVar) FreeTypeVariables() []*TVar { return []*TVar{t} }

// TWildcard represents a wildcard (e.g. "? extends Number", "? super Integer").
// No upper bound means Object.
type TWildcard struct {
	Upper []Type
	Lower []Type
}

// Unbounded is the most permissive wildcard, "?".
var Unbounded = TWildcard{}

func (t TWildcard) isType() {}

func (t TWildcard) String() string {
	if len(t.Lower) > 0 {
		return "? super " + joinTypes(t.Lower, " & ")
	}
	if len(t.Upper) == 0 {
		return "?"
	}
	if len(t.Upper) == 1 {
		if c, ok := t.Upper[0].(TClass); ok && c.Class.IsObject() {
			return "?"
		}
	}
	return "? extends " + joinTypes(t.Upper, " & ")
}

func (t TWildcard) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TWildcard) FreeTypeVariables() []*TVar {
	var vars []*TVar
	for _, b := range t.Upper {
		vars = append(vars, b.FreeTypeVariables()...)
	}
	for _, b := range t.Lower {
		vars = append(vars, b.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// UpperBounds returns the upper bounds, defaulting to Object.
func (t TWildcard) UpperBounds() []Type {
	if len(t.Upper) == 0 {
		return []Type{TClass{Class: ObjectClass}}
	}
	return t.Upper
}

// TArray represents a generic array type (e.g. T[], List<String>[]).
// Arrays of raw classes are TClass values of an array class.
type TArray struct {
	Component Type
}

func (t TArray) isType()        {}
func (t TArray) String() string { return t.Component.String() + "[]" }

func (t TArray) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TArray) FreeTypeVariables() []*TVar { return t.Component.FreeTypeVariables() }

// TCapture is a captured wildcard that could not be resolved. It erases to its
// first upper bound.
type TCapture struct {
	Upper []Type
}

func (t TCapture) isType() {}

func (t TCapture) String() string {
	if len(t.Upper) == 0 {
		return "capture of ?"
	}
	return "capture of ? extends " + joinTypes(t.Upper, " & ")
}

func (t TCapture) Apply(Subst) Type { return t }

func (t TCapture) FreeTypeVariables() []*TVar { return nil }

// ArrayType builds the array type of component. Arrays of raw classes collapse
// into the raw array class.
func ArrayType(component Type) Type {
	if c, ok := component.(TClass); ok {
		return TClass{Class: ArrayOf(c.Class)}
	}
	return TArray{Component: component}
}

// ComponentType returns the element type of an array type, or nil.
func ComponentType(t Type) Type {
	switch typ := t.(type) {
	case TArray:
		return typ.Component
	case TClass:
		if typ.Class.Component != nil {
			return ClassType(typ.Class.Component)
		}
	}
	return nil
}

// ClassType returns the generic form of a class: a generic class is
// parameterized with its own declared variables, arrays of generic classes
// become generic arrays, everything else stays raw.
func ClassType(c *Class) Type {
	if c.Component != nil {
		return ArrayType(ClassType(c.Component))
	}
	if !c.IsGeneric() {
		return TClass{Class: c}
	}
	args := make([]Type, len(c.Params))
	for i, p := range c.Params {
		args[i] = p
	}
	var owner Type
	if c.Enclosing != nil {
		if c.IsStatic() {
			owner = TClass{Class: c.Enclosing}
		} else {
			owner = ClassType(c.Enclosing)
		}
	}
	return TParam{Class: c, Args: args, Owner: owner}
}

const maxEraseDepth = 32

// Erase returns the raw class of t.
func Erase(t Type) (*Class, error) {
	return erase(t, 0)
}

func erase(t Type, depth int) (*Class, error) {
	if depth > maxEraseDepth {
		return nil, errUnsupported(t)
	}
	switch typ := t.(type) {
	case TClass:
		return typ.Class, nil
	case TParam:
		return typ.Class, nil
	case *TVar:
		if len(typ.Bounds) == 0 {
			return ObjectClass, nil
		}
		return erase(typ.Bounds[0], depth+1)
	case TCapture:
		if len(typ.Upper) == 0 {
			return ObjectClass, nil
		}
		return erase(typ.Upper[0], depth+1)
	case TArray:
		c, err := erase(typ.Component, depth+1)
		if err != nil {
			return nil, err
		}
		return ArrayOf(c), nil
	}
	return nil, errUnsupported(t)
}

// RawClass erases t, degrading shapes without an erasure (wildcards) to Object.
func RawClass(t Type) *Class {
	c, err := Erase(t)
	if err != nil {
		return ObjectClass
	}
	return c
}

// SameType compares two types by their canonical text.
func SameType(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

func joinTypes(types []Type, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

func uniqueTVars(vars []*TVar) []*TVar {
	var unique []*TVar
	seen := map[string]bool{}
	for _, v := range vars {
		if !seen[v.Key()] {
			seen[v.Key()] = true
			unique = append(unique, v)
		}
	}
	return unique
}
