package castpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/geninst/internal/instantiator"
	ts "github.com/funvibe/geninst/internal/typesystem"
	"github.com/funvibe/geninst/internal/universe"
)

func TestFixedLookupOrder(t *testing.T) {
	u := universe.New(universe.WithLogger(quiet))
	str := ts.FromClass(class(t, u, "String"))
	integer := ts.FromClass(class(t, u, "Integer"))
	long := ts.FromClass(class(t, u, "Long"))

	v := bound(t, u, "<T> T").(*ts.TVar)
	other := bound(t, u, "<U> U")
	w := bound(t, u, "? extends Number")

	f := NewFixed(map[string]*ts.Descriptor{
		"T":                          str,
		"? extends java.lang.Number": integer,
	}, nil)

	got, ok := f.Select(v, true, nil)
	require.True(t, ok)
	assert.Equal(t, "java.lang.String", got.Name())

	got, ok = f.Select(w, true, nil)
	require.True(t, ok)
	assert.Equal(t, "java.lang.Integer", got.Name())

	_, ok = f.Select(other, true, nil)
	assert.False(t, ok)

	// the full key wins over the bare name
	f.Bind(v.Key(), long)
	got, _ = f.Select(v, true, nil)
	assert.Equal(t, "java.lang.Long", got.Name())

	f.Bind(Wildcard, integer)
	got, ok = f.Select(other, true, nil)
	require.True(t, ok)
	assert.Equal(t, "java.lang.Integer", got.Name())
}

func TestFixedFallback(t *testing.T) {
	u := universe.New(universe.WithLogger(quiet))
	pool := newPool(t, u, "Integer")
	f := NewFixed(nil, pool)

	got, ok := f.Select(bound(t, u, "<T extends Number> T"), false, nil)
	require.True(t, ok)
	assert.Equal(t, "java.lang.Integer", got.Name())

	_, ok = f.Select(bound(t, u, "<T extends CharSequence> T"), false, nil)
	assert.False(t, ok)
}

func TestFixedDrivesEngine(t *testing.T) {
	u := universe.New(universe.WithLogger(quiet))
	f := NewFixed(map[string]*ts.Descriptor{"K": ts.FromClass(class(t, u, "String"))}, newPool(t, u, "Integer"))
	e := instantiator.NewEngine(f, instantiator.WithLogger(quiet))

	d, err := u.Parse("<K, V extends Number> Map<K, List<V>>")
	require.NoError(t, err)
	got, err := e.Generic(d)
	require.NoError(t, err)
	assert.Equal(t, "java.util.Map<java.lang.String, java.util.List<java.lang.Integer>>", got.Name())
}
