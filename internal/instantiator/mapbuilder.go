package instantiator

import (
	"log/slog"

	"github.com/funvibe/geninst/internal/assign"
	ts "github.com/funvibe/geninst/internal/typesystem"
)

// BuildMap collects the variable bindings visible from d: those of its super
// class chain, of its interfaces, of its bounds when d is a type variable,
// and finally its own parameter -> argument pairs. Later entries win. The
// map is best effort: a hierarchy that cannot be walked contributes nothing.
func BuildMap(d *ts.Descriptor) ts.Subst {
	return buildMap(d.Type, map[string]bool{}, slog.Default())
}

func buildMap(t ts.Type, visited map[string]bool, logger *slog.Logger) ts.Subst {
	m := ts.Subst{}
	key := visitKey(t)
	if visited[key] {
		return m
	}
	visited[key] = true

	raw := ts.RawClass(t)
	if raw.Super != nil && !skipSuper(t, raw) {
		if st := assign.ExactSuperType(t, ts.RawClass(raw.Super)); st != nil {
			m.Merge(buildMap(st, visited, logger))
		} else {
			logger.Debug("super type not reachable", "type", t.String(), "super", raw.Super.String())
		}
	}
	for _, it := range raw.Interfaces {
		if st := assign.ExactSuperType(t, ts.RawClass(it)); st != nil {
			m.Merge(buildMap(st, visited, logger))
		} else {
			logger.Debug("interface not reachable", "type", t.String(), "interface", it.String())
		}
	}

	switch typ := t.(type) {
	case *ts.TVar:
		for _, b := range typ.Bounds {
			m.Merge(buildMap(b, visited, logger))
		}
	case ts.TParam:
		for i, v := range typ.Class.Params {
			if i >= len(typ.Args) {
				break
			}
			if av, ok := typ.Args[i].(*ts.TVar); ok && av.Key() == v.Key() {
				continue
			}
			m.Bind(v, typ.Args[i])
		}
	}
	return m
}

// skipSuper stops the walk at anonymous classes.
func skipSuper(t ts.Type, raw *ts.Class) bool {
	if raw.IsAnonymous() || ts.RawClass(raw.Super).IsAnonymous() {
		return true
	}
	if p, ok := t.(ts.TParam); ok && p.Owner != nil {
		return ts.RawClass(p.Owner).IsAnonymous()
	}
	return false
}

func visitKey(t ts.Type) string {
	if v, ok := t.(*ts.TVar); ok {
		return "var:" + v.Key()
	}
	return t.String()
}
