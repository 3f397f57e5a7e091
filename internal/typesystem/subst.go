package typesystem

import (
	"sort"
	"strings"
)

// Subst is a mapping from type variables (by TVar.Key) to types.
type Subst map[string]Type

// Lookup returns the binding of v.
func (s Subst) Lookup(v *TVar) (Type, bool) {
	t, ok := s[v.Key()]
	return t, ok
}

// Bind records v -> t.
func (s Subst) Bind(v *TVar, t Type) {
	s[v.Key()] = t
}

// Clone returns an independent copy of the map.
func (s Subst) Clone() Subst {
	c := make(Subst, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Merge copies all entries of other into s; entries of other win.
func (s Subst) Merge(other Subst) {
	for k, v := range other {
		s[k] = v
	}
}

// Resolve flattens chains of variable-to-variable entries to a fixed point:
// "a -> b, b -> c" becomes "a -> c". An entry that would resolve to its own key
// is left as it is. Iteration is capped at len(s)+1 rounds so that chains that
// oscillate through overlapping entries still terminate. The receiver is not
// modified.
func (s Subst) Resolve() Subst {
	r := s.Clone()
	keys := r.Keys()
	for round := 0; round <= len(r); round++ {
		changed := false
		for _, k := range keys {
			v, ok := r[k].(*TVar)
			if !ok {
				continue
			}
			other, ok := r[v.Key()]
			if !ok {
				continue
			}
			if tv, ok := other.(*TVar); ok && tv.Key() == k {
				continue
			}
			if SameType(other, r[k]) {
				continue
			}
			r[k] = other
			changed = true
		}
		if !changed {
			break
		}
	}
	return r
}

// Keys returns the variable keys in sorted order.
func (s Subst) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s Subst) String() string {
	parts := make([]string, 0, len(s))
	for _, k := range s.Keys() {
		parts = append(parts, k+"="+s[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ApplyWithCycleCheck applies substitution with cycle detection.
// This is the main entry point for substitution application.
func ApplyWithCycleCheck(t Type, s Subst, visited map[string]bool) Type {
	if t == nil {
		return nil
	}

	switch typ := t.(type) {
	case *TVar:
		if visited[typ.Key()] {
			return typ // Break cycle - return the variable as-is
		}
		replacement, ok := s[typ.Key()]
		if !ok {
			return typ
		}
		if tv, ok := replacement.(*TVar); ok && tv.Key() == typ.Key() {
			return typ
		}
		newVisited := copyVisited(visited)
		newVisited[typ.Key()] = true
		return ApplyWithCycleCheck(replacement, s, newVisited)

	case TParam:
		newArgs := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			newArgs[i] = ApplyWithCycleCheck(arg, s, visited)
		}
		return TParam{
			Class: typ.Class,
			Args:  newArgs,
			Owner: ApplyWithCycleCheck(typ.Owner, s, visited),
		}

	case TWildcard:
		return TWildcard{
			Upper: applyAll(typ.Upper, s, visited),
			Lower: applyAll(typ.Lower, s, visited),
		}

	case TArray:
		return ArrayType(ApplyWithCycleCheck(typ.Component, s, visited))

	default:
		// TClass and TCapture are closed
		return t
	}
}

func applyAll(types []Type, s Subst, visited map[string]bool) []Type {
	if types == nil {
		return nil
	}
	out := make([]Type, len(types))
	for i, t := range types {
		out[i] = ApplyWithCycleCheck(t, s, visited)
	}
	return out
}

func copyVisited(m map[string]bool) map[string]bool {
	newMap := make(map[string]bool, len(m))
	for k, v := range m {
		newMap[k] = v
	}
	return newMap
}
