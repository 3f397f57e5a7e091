package instantiator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ts "github.com/funvibe/geninst/internal/typesystem"
)

func TestBuildMap(t *testing.T) {
	u := newUniverse(t)
	m := BuildMap(parse(t, u, "ArrayList<String>"))

	for _, name := range []string{"java.util.ArrayList#E", "java.util.List#E", "java.util.Collection#E", "java.lang.Iterable#T"} {
		got, ok := m[name]
		if assert.True(t, ok, "missing %s in %s", name, m) {
			assert.Equal(t, "java.lang.String", got.String(), name)
		}
	}

	// identity pairs are skipped
	assert.Empty(t, BuildMap(ts.FromClass(parse(t, u, "Comparable").Raw)))

	m = BuildMap(parse(t, u, "<T extends Comparable<T>> T"))
	got, ok := m["java.lang.Comparable#T"]
	if assert.True(t, ok) {
		assert.Equal(t, "T", got.String())
	}

	m = BuildMap(parse(t, u, "p.Leaf"))
	got, ok = m["p.Node#T"]
	if assert.True(t, ok) {
		assert.Equal(t, "p.Leaf", got.String())
	}
}

func TestSatisfiesVar(t *testing.T) {
	u := newUniverse(t)
	s := NewSatisfier(quiet)
	tests := []struct {
		decl, cand string
		want       bool
	}{
		{"<T extends Number> T", "Integer", true},
		{"<T extends Number> T", "String", false},
		{"<T extends Comparable<T>> T", "Integer", true},
		{"<T extends Comparable<T>> T", "Number", false},
		{"<T extends Number & Comparable<T>> T", "Long", true},
		{"<E extends Enum<E>> E", "java.util.concurrent.TimeUnit", true},
		{"<E extends Enum<E>> E", "String", false},
		{"<T> T", "Object", true},
		{"<T extends List<String>> T", "ArrayList<String>", true},
		{"<T extends List<String>> T", "ArrayList<Integer>", false},
		// a generic candidate fits through its exact super type
		{"<X extends Comparable<Integer>> X", "Comparable", true},
		{"<X extends Comparable<Integer>> X", "String", false},
		// a closed candidate is judged by its own arguments
		{"<X extends Comparable<Integer>> X", "Comparable<String>", false},
		{"<X extends Comparable<Integer>> X", "Comparable<Integer>", true},
		{"<T extends List<Integer>> T", "List<String>", false},
		{"<T extends List<Integer>> T", "List<Integer>", true},
	}
	for _, tt := range tests {
		t.Run(tt.decl+"/"+tt.cand, func(t *testing.T) {
			v := parse(t, u, tt.decl).Type.(*ts.TVar)
			got := s.SatisfiesVar(candidate(t, u, tt.cand), v, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSatisfiesWildcard(t *testing.T) {
	u := newUniverse(t)
	s := NewSatisfier(quiet)
	tests := []struct {
		wildcard, cand string
		want           bool
	}{
		{"? extends Number", "Integer", true},
		{"? extends Number", "String", false},
		{"? super Integer", "Object", true},
		{"? super Integer", "Number", true},
		{"? super Integer", "Integer", true},
		{"? super Integer", "String", false},
		{"? super ArrayList<Integer>", "List", true},
		{"? super ArrayList<Integer>", "List<Integer>", true},
		{"? super ArrayList<Integer>", "List<String>", false},
		{"? extends Enum<?>", "java.util.concurrent.TimeUnit", true},
		{"? extends Enum<?>", "Integer", false},
		{"?", "String", true},
		{"? extends Comparable<Integer>", "Comparable<String>", false},
		{"? extends Comparable<Integer>", "Comparable<Integer>", true},
		{"? extends Comparable<Integer>", "Comparable", true},
		{"? extends Comparable<Integer>", "Integer", true},
		{"? extends Comparable<Integer>", "Long", false},
	}
	for _, tt := range tests {
		t.Run(tt.wildcard+"/"+tt.cand, func(t *testing.T) {
			w := parse(t, u, tt.wildcard).Type.(ts.TWildcard)
			got := s.SatisfiesWildcard(candidate(t, u, tt.cand), w, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSatisfiesWildcardUsesExternalMap(t *testing.T) {
	u := newUniverse(t)
	s := NewSatisfier(quiet)
	d := parse(t, u, "<T> ? extends T")
	w := d.Type.(ts.TWildcard)
	v := w.Upper[0].(*ts.TVar)

	// a free variable does not constrain the candidate
	assert.True(t, s.SatisfiesWildcard(parse(t, u, "String"), w, nil))

	m := ts.Subst{v.Key(): parse(t, u, "Number").Type}
	assert.True(t, s.SatisfiesWildcard(parse(t, u, "Integer"), w, m))
	assert.False(t, s.SatisfiesWildcard(parse(t, u, "String"), w, m))
}

func TestEngineSatisfiesBounds(t *testing.T) {
	u := newUniverse(t)
	e := newEngine(noSelector)
	v := parse(t, u, "<T extends Number> T").Type
	assert.True(t, e.SatisfiesBounds(parse(t, u, "Double"), v))
	assert.False(t, e.SatisfiesBounds(parse(t, u, "Boolean"), v))
	assert.True(t, e.SatisfiesBounds(parse(t, u, "Integer"), parse(t, u, "Number").Type))
}
