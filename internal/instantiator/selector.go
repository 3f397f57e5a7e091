package instantiator

import (
	ts "github.com/funvibe/geninst/internal/typesystem"
)

// Selector chooses a candidate for an unresolved type variable or wildcard.
// bound is a *typesystem.TVar or a typesystem.TWildcard. deep is false once
// the recursion budget is spent; selectors should then prefer non-generic
// candidates. The engine re-validates every candidate.
type Selector interface {
	Select(bound ts.Type, deep bool, m ts.Subst) (*ts.Descriptor, bool)
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(bound ts.Type, deep bool, m ts.Subst) (*ts.Descriptor, bool)

func (f SelectorFunc) Select(bound ts.Type, deep bool, m ts.Subst) (*ts.Descriptor, bool) {
	return f(bound, deep, m)
}
