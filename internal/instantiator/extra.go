package instantiator

import (
	"github.com/funvibe/geninst/internal/assign"
	ts "github.com/funvibe/geninst/internal/typesystem"
)

const maxAttempts = 8

// CanBeInstantiatedTo reports whether some instantiation of d is assignable
// to target. It may consult the selector, so the answer for generic
// descriptors can vary between calls.
func (e *Engine) CanBeInstantiatedTo(d, target *ts.Descriptor) bool {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if d.IsPrimitive() && target.IsWrapper() {
			return false
		}
		if assign.IsAssignable(d.Type, target.Type) {
			return true
		}
		if !d.IsTypeVariable() && !target.IsTypeVariable() {
			if st := assign.ExactSuperType(d.Type, target.Raw); st != nil && ts.SameType(st, target.Type) {
				return true
			}
		}
		if !assign.IsSubclass(d.Raw, target.Raw) {
			e.logger.Debug("not assignable", "want", target.Name(), "have", d.Name())
			return false
		}

		m := e.satisfier.BuildMap(target)
		if tp, ok := target.Type.(ts.TParam); ok {
			if inferred := assign.DetermineTypeArguments(d.Raw, tp); inferred != nil {
				m.Merge(inferred)
			}
		}
		inst, err := e.Instantiate(d, m)
		if err != nil {
			e.logger.Debug("failed to instantiate", "type", d.Name(), "error", err)
			return false
		}
		if inst.Equal(d) {
			// nothing changed; only a closed descriptor can still fit
			return !d.HasUnresolved()
		}
		d = inst
	}
	return false
}

// WithParametersFromSuper fills the type arguments of d from a parameterized
// super type: LinkedList<?> with List<Integer> gives LinkedList<Integer>.
func (e *Engine) WithParametersFromSuper(d, super *ts.Descriptor) (*ts.Descriptor, error) {
	p, ok := d.Type.(ts.TParam)
	if !ok {
		return d.Copy(), nil
	}
	if sp, ok := super.Type.(ts.TParam); ok {
		m := assign.DetermineTypeArguments(d.Raw, sp)
		if m == nil {
			return nil, failf(d, "%s is not a subclass of %s", d.Raw, super.Raw)
		}
		return e.Instantiate(d, m)
	}

	// raw super type: take whatever its hierarchy binds
	sm := e.satisfier.BuildMap(super)
	args := make([]ts.Type, len(p.Args))
	copy(args, p.Args)
	for i, v := range d.Raw.Params {
		if i >= len(args) {
			break
		}
		if t, found := sm.Lookup(v); found {
			args[i] = t
		}
	}
	var owner ts.Type
	if p.Owner != nil {
		o, err := e.WithParametersFromSuper(ts.FromType(p.Owner), super)
		if err != nil {
			return nil, err
		}
		owner = o.Type
	}
	return ts.New(ts.TParam{Class: p.Class, Args: args, Owner: owner}, d.Raw), nil
}
