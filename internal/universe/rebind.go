package universe

import (
	ts "github.com/funvibe/geninst/internal/typesystem"
)

// Rebind re-resolves every class referenced by d in this universe. Classes
// the universe does not know degrade to Object with a warning, so the result
// is always usable.
func (u *Universe) Rebind(d *ts.Descriptor) *ts.Descriptor {
	if d == nil {
		return nil
	}
	r := &rebinder{u: u, vars: map[string]*ts.TVar{}}
	return ts.FromType(r.rebind(d.Type))
}

type rebinder struct {
	u    *Universe
	vars map[string]*ts.TVar // rebound variables by key; bounds may be cyclic
}

func (r *rebinder) rebind(t ts.Type) ts.Type {
	switch typ := t.(type) {
	case ts.TClass:
		c, ok := r.class(typ.Class)
		if !ok {
			return ts.TClass{Class: r.object()}
		}
		return ts.TClass{Class: c}
	case ts.TParam:
		c, ok := r.class(typ.Class)
		if !ok || len(c.Params) != len(typ.Args) {
			if ok {
				r.u.logger.Warn("arity changed while rebinding, degrading to Object",
					"class", c.Name, "args", len(typ.Args), "params", len(c.Params))
			}
			return ts.TClass{Class: r.object()}
		}
		args := make([]ts.Type, len(typ.Args))
		for i, a := range typ.Args {
			args[i] = r.rebind(a)
		}
		var owner ts.Type
		if typ.Owner != nil {
			owner = r.rebind(typ.Owner)
		}
		return ts.TParam{Class: c, Args: args, Owner: owner}
	case *ts.TVar:
		if v, ok := r.vars[typ.Key()]; ok {
			return v
		}
		v := ts.NewTVar(typ.Name, typ.Decl)
		r.vars[typ.Key()] = v
		v.Bounds = r.rebindAll(typ.Bounds)
		return v
	case ts.TWildcard:
		return ts.TWildcard{Upper: r.rebindAll(typ.Upper), Lower: r.rebindAll(typ.Lower)}
	case ts.TArray:
		return ts.ArrayType(r.rebind(typ.Component))
	case ts.TCapture:
		return ts.TCapture{Upper: r.rebindAll(typ.Upper)}
	}
	return t
}

func (r *rebinder) rebindAll(types []ts.Type) []ts.Type {
	if types == nil {
		return nil
	}
	out := make([]ts.Type, len(types))
	for i, t := range types {
		out[i] = r.rebind(t)
	}
	return out
}

func (r *rebinder) class(c *ts.Class) (*ts.Class, bool) {
	if c.IsArray() {
		comp, ok := r.class(c.Component)
		if !ok {
			return nil, false
		}
		return ts.ArrayOf(comp), true
	}
	found, err := r.u.Lookup(c.Name)
	if err != nil {
		r.u.logger.Warn("class not found while rebinding, degrading to Object",
			"class", c.Name, "error", err)
		return nil, false
	}
	return found, true
}

func (r *rebinder) object() *ts.Class {
	if o := r.u.Object(); o != nil {
		return o
	}
	return ts.ObjectClass
}
