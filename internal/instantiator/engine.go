// Package instantiator turns generic descriptors into concrete ones: every
// type variable and wildcard is replaced by a candidate that satisfies its
// bounds, with a recursion budget guarding self-referential generics.
package instantiator

import (
	"log/slog"

	"github.com/funvibe/geninst/internal/assign"
	"github.com/funvibe/geninst/internal/config"
	ts "github.com/funvibe/geninst/internal/typesystem"
)

// Engine instantiates descriptors. It keeps no state between calls and is
// safe for concurrent use as long as every call gets its own map.
type Engine struct {
	selector  Selector
	satisfier *Satisfier
	maxDepth  int
	logger    *slog.Logger
}

type Option func(*Engine)

// WithMaxDepth sets the recursion budget. Variable and wildcard nodes nested
// deeper than n candidates fail.
func WithMaxDepth(n int) Option {
	return func(e *Engine) { e.maxDepth = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(selector Selector, opts ...Option) *Engine {
	e := &Engine{
		selector: selector,
		maxDepth: config.MaxGenericDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.satisfier = NewSatisfier(e.logger)
	return e
}

func (e *Engine) Satisfier() *Satisfier { return e.satisfier }

func (e *Engine) MaxDepth() int { return e.maxDepth }

// Generic instantiates d with an empty map.
func (e *Engine) Generic(d *ts.Descriptor) (*ts.Descriptor, error) {
	return e.Instantiate(d, ts.Subst{})
}

// Instantiate returns a descriptor without variables or wildcards. Variables
// resolved on the way are recorded in m, so repeated references resolve
// identically. On failure nothing partial is returned.
func (e *Engine) Instantiate(d *ts.Descriptor, m ts.Subst) (*ts.Descriptor, error) {
	if m == nil {
		m = ts.Subst{}
	}
	return e.instantiate(d, m, 0)
}

// SatisfiesBounds reports whether d fits a type variable or wildcard.
func (e *Engine) SatisfiesBounds(d *ts.Descriptor, bound ts.Type) bool {
	return e.satisfier.Satisfies(d, bound, nil)
}

func (e *Engine) instantiate(d *ts.Descriptor, m ts.Subst, level int) (*ts.Descriptor, error) {
	e.logger.Debug("instantiate", "type", d.Name(), "level", level, "map", m.String())
	if d.IsRaw() || !d.HasUnresolved() {
		return d.Copy(), nil
	}

	switch t := d.Type.(type) {
	case ts.TWildcard:
		return e.instantiateWildcard(d, t, m, level)
	case *ts.TVar:
		return e.instantiateVar(d, t, m, level)
	case ts.TArray:
		return e.instantiateArray(d, m, level)
	case ts.TParam:
		return e.instantiateParam(d, t, m, level)
	}
	return nil, wrapFailure(d, ErrUnsupportedShape, "unexpected shape %T", d.Type)
}

func (e *Engine) instantiateWildcard(d *ts.Descriptor, w ts.TWildcard, m ts.Subst, level int) (*ts.Descriptor, error) {
	if level > e.maxDepth {
		return nil, failf(d, "recursion depth %d exceeded", e.maxDepth)
	}
	cand, ok := e.selector.Select(w, level < e.maxDepth, m)
	if !ok {
		return nil, failf(d, "no candidate")
	}

	// the candidate's own parameters follow the upper bounds where they can
	ext := m.Clone()
	for _, ub := range w.Upper {
		if bp, ok := ub.Apply(m).(ts.TParam); ok && assign.IsSubclass(cand.Raw, bp.Class) {
			if inferred := assign.DetermineTypeArguments(cand.Raw, bp); inferred != nil {
				ext.Merge(inferred)
			}
		}
	}
	inst, err := e.instantiate(cand, ext, level+1)
	if err != nil {
		return nil, wrapFailure(d, err, "candidate %s", cand.Name())
	}
	writeBack(w, ext, m)
	if !e.satisfier.SatisfiesWildcard(inst, w, m) {
		return nil, failf(d, "candidate %s is out of bounds", inst.Name())
	}
	return inst, nil
}

func (e *Engine) instantiateVar(d *ts.Descriptor, v *ts.TVar, m ts.Subst, level int) (*ts.Descriptor, error) {
	if level > e.maxDepth {
		return nil, failf(d, "recursion depth %d exceeded", e.maxDepth)
	}

	if target, ok := m.Lookup(v); ok {
		if tv, isVar := target.(*ts.TVar); isVar && tv.Key() == v.Key() {
			return nil, failf(d, "self-referential binding")
		}
		inst, err := e.instantiate(ts.FromType(target), m, level+1)
		if err != nil {
			return nil, wrapFailure(d, err, "mapped to %s", target)
		}
		if !e.satisfier.SatisfiesVar(inst, v, nil) {
			return nil, failf(d, "%s does not satisfy %s", inst.Name(), v.Declaration())
		}
		return inst, nil
	}

	cand, ok := e.selector.Select(v, level < e.maxDepth, m)
	if !ok {
		return nil, failf(d, "no candidate")
	}
	e.logger.Debug("selected candidate", "var", v.Declaration(), "candidate", cand.Name())

	ext := m.Clone()
	ext.Merge(e.satisfier.BuildMap(d))
	for _, b := range v.Bounds {
		ext.Merge(e.satisfier.BuildMap(ts.FromType(b)))
		if bp, ok := b.(ts.TParam); ok && assign.IsSubclass(cand.Raw, bp.Class) {
			if inferred := assign.DetermineTypeArguments(cand.Raw, bp); inferred != nil {
				ext.Merge(inferred)
			}
		}
	}

	inst, err := e.instantiate(cand, ext, level+1)
	if err != nil {
		return nil, wrapFailure(d, err, "candidate %s", cand.Name())
	}
	if !e.satisfier.SatisfiesVar(inst, v, m) {
		return nil, failf(d, "%s does not satisfy %s", inst.Name(), v.Declaration())
	}
	m.Bind(v, inst.Type)
	return inst, nil
}

// instantiateArray works on a snapshot of m: bindings made for the
// component stay local.
func (e *Engine) instantiateArray(d *ts.Descriptor, m ts.Subst, level int) (*ts.Descriptor, error) {
	comp, err := e.instantiate(d.Component(), m.Clone(), level)
	if err != nil {
		return nil, wrapFailure(d, err, "component")
	}
	return d.WithComponent(comp), nil
}

func (e *Engine) instantiateParam(d *ts.Descriptor, p ts.TParam, m ts.Subst, level int) (*ts.Descriptor, error) {
	params := p.Class.Params
	args := make([]ts.Type, len(p.Args))
	// bindings of the declared parameters, visible to the bounds of later ones
	declared := ts.Subst{}
	for i, arg := range p.Args {
		if !ts.HasUnresolved(arg) {
			args[i] = arg
			if i < len(params) {
				declared.Bind(params[i], arg)
			}
			continue
		}
		argDesc := ts.FromType(arg)
		ext := m.Clone()
		ext.Merge(e.satisfier.BuildMap(argDesc))
		ext.Merge(declared)

		var inst *ts.Descriptor
		var err error
		if w, isWildcard := arg.(ts.TWildcard); isWildcard && i < len(params) {
			inst, err = e.instantiateWildcardArg(argDesc, params[i], w, ext, m, level)
		} else {
			inst, err = e.instantiate(argDesc, ext, level)
		}
		if err != nil {
			return nil, wrapFailure(d, err, "type argument %d", i)
		}
		args[i] = inst.Type
		if i < len(params) {
			declared.Bind(params[i], inst.Type)
		}

		// variables of the argument resolve the same way in later arguments
		writeBack(arg, ext, m)
	}

	var owner ts.Type
	if od := d.Owner(); od != nil {
		o, err := e.instantiate(od, m, level)
		if err != nil {
			return nil, wrapFailure(d, err, "owner")
		}
		owner = o.Type
	}
	return ts.New(ts.TParam{Class: p.Class, Args: args, Owner: owner}, d.Raw), nil
}

// instantiateWildcardArg resolves a wildcard type argument through the
// variable it stands for, so the selector sees the variable's own bounds
// next to the wildcard's. A closed binding of the variable is kept if it fits
// the wildcard. Lower bounds have no place on a variable: such wildcards are
// drawn as they are and then checked against the variable.
func (e *Engine) instantiateWildcardArg(d *ts.Descriptor, param *ts.TVar, w ts.TWildcard, ext, m ts.Subst, level int) (*ts.Descriptor, error) {
	target := param
	if bound, ok := ext.Lookup(param); !ok || ts.HasUnresolved(bound) {
		if len(w.Lower) > 0 {
			ext.Bind(param, w)
		} else {
			delete(ext, param.Key())
			target = narrow(param, w, ext)
		}
	}
	inst, err := e.instantiate(ts.FromType(target), ext, level)
	if err != nil {
		return nil, err
	}
	if !e.satisfier.SatisfiesWildcard(inst, w, m) {
		return nil, failf(d, "%s is out of bounds", inst.Name())
	}
	return inst, nil
}

// narrow returns param with the upper bounds of w added. It keeps the
// identity of param, so bounds referring to param still do. Object and
// bounds left free under m add nothing.
func narrow(param *ts.TVar, w ts.TWildcard, m ts.Subst) *ts.TVar {
	bounds := make([]ts.Type, 0, len(param.Bounds)+len(w.Upper))
	bounds = append(bounds, param.Bounds...)
	for _, ub := range w.Upper {
		b := ub.Apply(m)
		if _, free := b.(*ts.TVar); free {
			continue
		}
		if c, ok := b.(ts.TClass); ok && c.Class.IsObject() {
			continue
		}
		bounds = append(bounds, b)
	}
	return &ts.TVar{Name: param.Name, Decl: param.Decl, Bounds: bounds}
}

// writeBack records in m the closed bindings ext found for the free
// variables of t.
func writeBack(t ts.Type, ext, m ts.Subst) {
	for _, fv := range t.FreeTypeVariables() {
		if _, known := m.Lookup(fv); known {
			continue
		}
		if r, ok := ext.Lookup(fv); ok && !ts.HasUnresolved(r) {
			m.Bind(fv, r)
		}
	}
}
