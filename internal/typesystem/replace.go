package typesystem

// ReplaceVar replaces all occurrences of v in t with replacement. Unlike Apply,
// the replacement itself is not searched again.
func ReplaceVar(t Type, v *TVar, replacement Type) Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case *TVar:
		if typ.Key() == v.Key() {
			return replacement
		}
		return typ
	case TParam:
		newArgs := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			newArgs[i] = ReplaceVar(arg, v, replacement)
		}
		return TParam{
			Class: typ.Class,
			Args:  newArgs,
			Owner: ReplaceVar(typ.Owner, v, replacement),
		}
	case TWildcard:
		return TWildcard{
			Upper: replaceAll(typ.Upper, v, replacement),
			Lower: replaceAll(typ.Lower, v, replacement),
		}
	case TArray:
		return ArrayType(ReplaceVar(typ.Component, v, replacement))
	default:
		return t
	}
}

func replaceAll(types []Type, v *TVar, replacement Type) []Type {
	if types == nil {
		return nil
	}
	out := make([]Type, len(types))
	for i, t := range types {
		out[i] = ReplaceVar(t, v, replacement)
	}
	return out
}

// ReplaceVarsWithWildcards replaces every free type variable in t with the
// unbounded wildcard, giving the most permissive closed form of t.
func ReplaceVarsWithWildcards(t Type) Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case *TVar:
		return Unbounded
	case TParam:
		newArgs := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			newArgs[i] = ReplaceVarsWithWildcards(arg)
		}
		return TParam{
			Class: typ.Class,
			Args:  newArgs,
			Owner: ReplaceVarsWithWildcards(typ.Owner),
		}
	case TWildcard:
		return TWildcard{
			Upper: wildcardAll(typ.Upper, false),
			Lower: wildcardAll(typ.Lower, true),
		}
	case TArray:
		// a wildcard has no array form; the variable erases instead
		if tv, ok := typ.Component.(*TVar); ok {
			return ArrayType(TClass{Class: RawClass(tv)})
		}
		return ArrayType(ReplaceVarsWithWildcards(typ.Component))
	default:
		return t
	}
}

// wildcardAll rewrites wildcard bounds. A bound that became a wildcard itself
// widens to Object as an upper bound and disappears as a lower bound.
func wildcardAll(types []Type, lower bool) []Type {
	if types == nil {
		return nil
	}
	var out []Type
	for _, t := range types {
		r := ReplaceVarsWithWildcards(t)
		if w, ok := r.(TWildcard); ok {
			if !lower {
				out = append(out, w.UpperBounds()...)
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
