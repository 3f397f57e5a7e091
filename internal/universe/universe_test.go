package universe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/geninst/internal/config"
	ts "github.com/funvibe/geninst/internal/typesystem"
)

const boxesYAML = `
classes:
  - name: p.Outer$Inner
    params: ["I"]
  - name: p.Outer
    params: ["O"]
  - name: p.Outer$Nested
    params: ["N extends java.lang.Number"]
    modifiers: [static]
  - name: p.Node
    params: ["T extends p.Node<T>"]
  - name: p.IntBox
    extends: "p.Box<java.lang.Integer>"
  - name: p.Box
    params: ["T"]
`

func TestBuiltins(t *testing.T) {
	u := New()

	list, err := u.Lookup("java.util.List")
	require.NoError(t, err)
	require.Len(t, list.Params, 1)
	assert.True(t, list.IsInterface())

	integer, err := u.Lookup("Integer")
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Integer", integer.Name)

	prim, err := u.Lookup("int")
	require.NoError(t, err)
	assert.True(t, prim.IsPrimitive())
	assert.Same(t, integer, prim.Box)
	assert.Same(t, prim, integer.Box)

	arr, err := u.Lookup("String[]")
	require.NoError(t, err)
	assert.True(t, arr.IsArray())
	assert.Equal(t, "java.lang.String[]", arr.Name)

	enum, err := u.Lookup(config.EnumClassName)
	require.NoError(t, err)
	assert.Equal(t, "E extends java.lang.Enum<E>", enum.Params[0].Declaration())

	_, err = u.Lookup("java.util.Nope")
	var notFound *ts.ClassNotFoundError
	assert.True(t, errors.As(err, &notFound))

	assert.Same(t, ts.ObjectClass, u.Object())
}

func TestParse(t *testing.T) {
	u := New()
	tests := []struct {
		in   string
		want string
	}{
		{"java.util.List<java.lang.String>", "java.util.List<java.lang.String>"},
		{"List<? extends Number>", "java.util.List<? extends java.lang.Number>"},
		{"List<? super Integer>", "java.util.List<? super java.lang.Integer>"},
		{"List<?>", "java.util.List<?>"},
		{"java.util.List", "java.util.List"},
		{"int[]", "int[]"},
		{"List<String>[]", "java.util.List<java.lang.String>[]"},
		{"Map<String, List<Integer>>", "java.util.Map<java.lang.String, java.util.List<java.lang.Integer>>"},
		{"Map.Entry<String, Integer>", "java.util.Map$Entry<java.lang.String, java.lang.Integer>"},
		{"java.util.Map.Entry<K2, V2>", ""},
		{"<T> T[]", "T[]"},
		{"<K, V extends Number> Map<K, ? super V>", "java.util.Map<K, ? super V>"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := u.Parse(tt.in)
			if tt.want == "" {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func TestParseDeclaration(t *testing.T) {
	u := New()
	d, err := u.Parse("<T extends Comparable<T>> java.util.List<T>")
	require.NoError(t, err)
	require.True(t, d.IsParameterized())

	v, ok := d.ArgTypes()[0].(*ts.TVar)
	require.True(t, ok)
	assert.Equal(t, config.QueryDeclName, v.Decl)
	assert.Equal(t, "T extends java.lang.Comparable<T>", v.Declaration())

	// the bound refers to the very same variable
	bound := v.Bounds[0].(ts.TParam)
	assert.Same(t, v, bound.Args[0])

	// forward reference to a later variable
	d, err = u.Parse("<A extends List<B>, B> Map<A, B>")
	require.NoError(t, err)
	assert.Equal(t, "java.util.Map<A, B>", d.Name())
}

func TestParseErrors(t *testing.T) {
	u := New()
	for _, in := range []string{
		"",
		"List<String, Integer>",
		"List<",
		"List<>",
		"List<String> extra",
		"int<String>",
		"<T, T> List<T>",
		"<T List<T>",
		"List<#>",
		"<T> T<String>",
	} {
		_, err := u.Parse(in)
		assert.Error(t, err, "input %q", in)
	}

	_, err := u.Parse("List<Unknown>")
	var notFound *ts.ClassNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Unknown", notFound.Name)
}

func TestLoad(t *testing.T) {
	u := New()
	require.NoError(t, u.Load([]byte(boxesYAML), ""))

	inner, err := u.Lookup("p.Outer$Inner")
	require.NoError(t, err)
	require.NotNil(t, inner.Enclosing)
	assert.Equal(t, "p.Outer", inner.Enclosing.Name)
	assert.True(t, inner.IsGeneric())

	intBox, err := u.Lookup("IntBox")
	require.NoError(t, err)
	assert.Equal(t, "p.Box<java.lang.Integer>", intBox.Super.String())

	nested, err := u.Lookup("p.Outer$Nested")
	require.NoError(t, err)
	assert.Equal(t, "N extends java.lang.Number", nested.Params[0].Declaration())

	d, err := u.Parse("p.Outer<String>.Inner<Integer>")
	require.NoError(t, err)
	assert.Equal(t, "p.Outer<java.lang.String>$Inner<java.lang.Integer>", d.Name())
	assert.True(t, d.HasOwner())

	d, err = u.Parse("p.Outer.Nested<Integer>")
	require.NoError(t, err)
	assert.Equal(t, "p.Outer$Nested<java.lang.Integer>", d.Name())
}

func TestLoadIsAtomic(t *testing.T) {
	u := New()
	before := u.Len()
	err := u.Load([]byte(`
classes:
  - name: q.Good
  - name: q.Bad
    extends: "q.Missing"
`), "")
	require.Error(t, err)
	assert.Equal(t, before, u.Len())
	_, err = u.Lookup("q.Good")
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"duplicate":        "classes: [{name: java.lang.String}]",
		"twice":            "classes: [{name: a.A}, {name: a.A}]",
		"modifier":         "classes: [{name: a.A, modifiers: [sealed]}]",
		"iface extends":    "classes: [{name: a.I, modifiers: [interface], extends: java.lang.Object}]",
		"bad name":         "classes: [{name: 'a.A<T>'}]",
		"malformed":        "classes: {",
		"undeclared bound": "classes: [{name: a.A, params: ['T extends U']}]",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, New().Load([]byte(doc), ""))
		})
	}
}

func TestLoadFileIncludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "box.yaml"), []byte(`
classes:
  - name: p.Box
    params: ["T"]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.yaml"), []byte(`
include: ["lib/box.yaml", "main.yaml"]
classes:
  - name: p.StringBox
    extends: "p.Box<String>"
`), 0o644))

	u := New()
	require.NoError(t, u.LoadFile(filepath.Join(dir, "main.yaml")))
	c, err := u.Lookup("p.StringBox")
	require.NoError(t, err)
	assert.Equal(t, "p.Box<java.lang.String>", c.Super.String())

	assert.Error(t, New().LoadFile(filepath.Join(dir, "missing.yaml")))
}

func TestAmbiguousSimpleName(t *testing.T) {
	u := New()
	require.NoError(t, u.Load([]byte("classes: [{name: other.String}]"), ""))
	_, err := u.Lookup("String")
	assert.ErrorContains(t, err, "ambiguous")
	_, err = u.Lookup("java.lang.String")
	assert.NoError(t, err)
}

func TestRebind(t *testing.T) {
	src := New()
	require.NoError(t, src.Load([]byte(boxesYAML), ""))
	dst := New()

	d, err := src.Parse("java.util.List<p.Box<String>>")
	require.NoError(t, err)
	got := dst.Rebind(d)
	assert.Equal(t, "java.util.List<java.lang.Object>", got.Name())

	d, err = src.Parse("<T extends Comparable<T>> Map<String, T[]>")
	require.NoError(t, err)
	got = dst.Rebind(d)
	assert.Equal(t, d.Name(), got.Name())
	dstMap, _ := dst.Lookup("java.util.Map")
	assert.Same(t, dstMap, got.Raw)

	v := got.ArgTypes()[1].(ts.TArray).Component.(*ts.TVar)
	assert.Same(t, v, v.Bounds[0].(ts.TParam).Args[0])

	assert.Nil(t, dst.Rebind(nil))
}

func TestLoadRejectsCyclicInheritance(t *testing.T) {
	u := New()
	err := u.Load([]byte(`
classes:
  - {name: c.A, extends: c.B}
  - {name: c.B, extends: c.A}
`), "")
	assert.ErrorContains(t, err, "cyclic inheritance")
}
