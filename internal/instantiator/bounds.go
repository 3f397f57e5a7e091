package instantiator

import (
	"log/slog"

	"github.com/funvibe/geninst/internal/assign"
	"github.com/funvibe/geninst/internal/config"
	ts "github.com/funvibe/geninst/internal/typesystem"
)

// Satisfier decides whether a candidate satisfies the bounds of a type
// variable or a wildcard. All checks are silent booleans.
type Satisfier struct {
	logger *slog.Logger
}

func NewSatisfier(logger *slog.Logger) *Satisfier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Satisfier{logger: logger}
}

// BuildMap is BuildMap with the satisfier's logger.
func (s *Satisfier) BuildMap(d *ts.Descriptor) ts.Subst {
	return buildMap(d.Type, map[string]bool{}, s.logger)
}

// Satisfies dispatches on the kind of bound.
func (s *Satisfier) Satisfies(c *ts.Descriptor, bound ts.Type, external ts.Subst) bool {
	switch b := bound.(type) {
	case *ts.TVar:
		return s.SatisfiesVar(c, b, external)
	case ts.TWildcard:
		return s.SatisfiesWildcard(c, b, external)
	}
	return assign.IsAssignable(c.Type, bound)
}

// SatisfiesVar reports whether c can be bound to v under external.
func (s *Satisfier) SatisfiesVar(c *ts.Descriptor, v *ts.TVar, external ts.Subst) bool {
	owner := s.BuildMap(c)
	for _, b := range v.Bounds {
		if bp, ok := b.(ts.TParam); ok && assign.IsSubclass(c.Raw, bp.Class) {
			if inferred := assign.DetermineTypeArguments(c.Raw, bp); inferred != nil {
				owner.Merge(inferred)
			}
		}
	}
	owner.Merge(external)
	resolved := owner.Resolve()
	concrete := c.Type.Apply(resolved)

	for _, bound := range v.Bounds {
		if isEnumBound(bound) {
			if !c.IsEnum() {
				s.logger.Debug("bound requires an enum", "candidate", c.Name(), "var", v.Name)
				return false
			}
			continue
		}

		bt := bound.Apply(resolved)
		bt = ts.ReplaceVar(bt, v, c.Type)
		bt = ts.ReplaceVarsWithWildcards(bt)
		if assign.IsAssignable(concrete, bt) {
			continue
		}
		if s.recoverVar(c, concrete, v, bound, bt) {
			continue
		}
		s.logger.Debug("bound not satisfied", "candidate", c.Name(), "var", v.Declaration(), "bound", bt.String())
		return false
	}
	return true
}

// recoverVar accepts a raw or still generic candidate whose raw class fits
// the bound when the exact super type derived from the raw class satisfies
// the original bound. A closed candidate is judged by its own super type.
func (s *Satisfier) recoverVar(c *ts.Descriptor, view ts.Type, v *ts.TVar, bound, bt ts.Type) bool {
	if !isOpen(c, view) {
		return closedFits(view, bt)
	}
	if !assign.IsSubclass(c.Raw, ts.RawClass(bt)) {
		return false
	}
	inst := assign.ExactSuperType(bt, c.Raw)
	if inst == nil {
		return false
	}
	if assign.IsAssignable(inst, ts.ReplaceVar(bound, v, inst)) {
		s.logger.Debug("bound satisfied by exact super type", "candidate", c.Name(), "type", inst.String())
		return true
	}
	return false
}

// SatisfiesWildcard reports whether c lies within the bounds of w: below
// every upper bound and above every lower bound. Variables left free in a
// bound after applying external do not constrain the candidate.
func (s *Satisfier) SatisfiesWildcard(c *ts.Descriptor, w ts.TWildcard, external ts.Subst) bool {
	owner := s.BuildMap(c)
	owner.Merge(external)

	for _, ub := range w.Upper {
		if isEnumBound(ub) {
			if !c.IsEnum() {
				return false
			}
			continue
		}
		bt := ts.ReplaceVarsWithWildcards(ub.Apply(owner))
		if assign.IsAssignable(c.Type, bt) {
			continue
		}
		if view := c.Type.Apply(owner.Resolve()); !isOpen(c, view) {
			if closedFits(view, bt) {
				continue
			}
		} else if assign.IsSubclass(c.Raw, ts.RawClass(bt)) {
			if inst := assign.ExactSuperType(bt, c.Raw); inst != nil && assign.IsAssignable(inst, bt) {
				continue
			}
		}
		s.logger.Debug("upper bound not satisfied", "candidate", c.Name(), "bound", bt.String())
		return false
	}

	for _, lb := range w.Lower {
		bt := ts.ReplaceVarsWithWildcards(lb.Apply(owner))
		if _, free := bt.(ts.TWildcard); free {
			continue
		}
		if assign.IsAssignable(bt, c.Type) {
			continue
		}
		// the bound's view as the candidate's raw class must fit the candidate
		if assign.IsSubclass(ts.RawClass(bt), c.Raw) {
			if inst := assign.ExactSuperType(bt, c.Raw); inst != nil &&
				assign.IsAssignable(inst, ts.ReplaceVarsWithWildcards(c.Type)) {
				continue
			}
		}
		s.logger.Debug("lower bound not satisfied", "candidate", c.Name(), "bound", bt.String())
		return false
	}
	return true
}

// isOpen reports a candidate whose type arguments may still be chosen: a
// raw use of a generic class or a shape with free variables left.
func isOpen(c *ts.Descriptor, view ts.Type) bool {
	if c.IsRaw() {
		return c.Raw.IsGeneric()
	}
	return ts.HasUnresolved(view)
}

// closedFits checks a closed candidate through its exact super type of the
// bound's raw class; the bound's own arguments never stand in for it.
func closedFits(candidate, bound ts.Type) bool {
	sup := assign.ExactSuperType(candidate, ts.RawClass(bound))
	return sup != nil && assign.IsAssignable(sup, bound)
}

func isEnumBound(bound ts.Type) bool {
	return ts.RawClass(bound).Name == config.EnumClassName
}
