package geninst_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/geninst/pkg/geninst"
)

const nodes = `
classes:
  - name: p.Node
    params: ["T extends p.Node<T>"]
  - name: p.Leaf
    extends: "p.Node<p.Leaf>"
`

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newEngine(t *testing.T, opts ...geninst.Option) *geninst.Engine {
	t.Helper()
	e, err := geninst.New(append([]geninst.Option{geninst.WithLogger(quiet), geninst.WithSeed(11)}, opts...)...)
	require.NoError(t, err)
	return e
}

func parse(t *testing.T, e *geninst.Engine, text string) *geninst.Descriptor {
	t.Helper()
	d, err := e.Parse(text)
	require.NoError(t, err)
	return d
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClosedDescriptorIsUnchanged(t *testing.T) {
	e := newEngine(t)
	for _, text := range []string{"String", "Map<String, List<Integer>>", "long[]", "java.util.List"} {
		d := parse(t, e, text)
		got, err := e.Instantiate(d)
		require.NoError(t, err)
		assert.True(t, got.Equal(d), text)
	}
}

func TestInstantiateFromPool(t *testing.T) {
	e := newEngine(t)
	numbers := parse(t, e, "<T extends Number> T")
	bound := numbers.Type

	for i := 0; i < 20; i++ {
		got, err := e.InstantiateText("<T extends Number> List<T>")
		require.NoError(t, err)
		assert.False(t, got.HasUnresolved())
		args := got.Args()
		require.Len(t, args, 1)
		assert.True(t, e.SatisfiesBounds(args[0], bound), "%s", got)
	}
}

func TestBindings(t *testing.T) {
	e := newEngine(t, geninst.WithBinding("T", "Integer"))
	got, err := e.InstantiateText("<T extends Comparable<T>> T")
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Integer", got.Name())

	e = newEngine(t, geninst.WithBinding("T", "String"), geninst.WithTries(2),
		geninst.WithSelector(geninst.SelectorFunc(func(geninst.Type, bool, geninst.Subst) (*geninst.Descriptor, bool) {
			return nil, false
		})))
	_, err = e.InstantiateText("<T extends Number> List<T>")
	require.Error(t, err)
	assert.True(t, errors.Is(err, geninst.ErrInstantiationFailed))
	var ie *geninst.InstantiationError
	assert.True(t, errors.As(err, &ie))

	_, err = geninst.New(geninst.WithBinding("T", "NoSuchClass"))
	assert.Error(t, err)
}

func TestWildcardArgumentsFollowDeclaredBounds(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		e := newEngine(t, geninst.WithSeed(seed), geninst.WithTries(1))
		got, err := e.InstantiateText("Enum<?>")
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, "java.lang.Enum<java.util.concurrent.TimeUnit>", got.Name())

		got, err = e.InstantiateText("Class<? extends Enum<?>>")
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, "java.lang.Class<java.util.concurrent.TimeUnit>", got.Name())
	}
}

func TestInstantiateWithRecordsBindings(t *testing.T) {
	e := newEngine(t, geninst.WithBinding("T", "Long"))
	d := parse(t, e, "<T> Map<T, List<T>>")
	m := geninst.Subst{}
	got, err := e.InstantiateWith(d, m)
	require.NoError(t, err)
	assert.Equal(t, "java.util.Map<java.lang.Long, java.util.List<java.lang.Long>>", got.Name())
	assert.Len(t, m, 1)
}

func TestRecursionBudget(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nodes.yaml", nodes)

	e := newEngine(t, geninst.WithUniverseFiles(path), geninst.WithMaxDepth(0), geninst.WithBinding("T", "p.Node"))
	_, err := e.InstantiateText("<T extends p.Node<T>> p.Node<T>")
	require.Error(t, err)
	assert.ErrorIs(t, err, geninst.ErrInstantiationFailed)

	e = newEngine(t, geninst.WithUniverseFiles(path), geninst.WithMaxDepth(0), geninst.WithBinding("T", "p.Leaf"))
	d := parse(t, e, "p.Node")
	_, err = e.Instantiate(d)
	require.NoError(t, err, "a raw descriptor is returned as is")

	got, err := e.InstantiateText("<T extends p.Node<T>> p.Node<T>")
	require.NoError(t, err)
	assert.Equal(t, "p.Node<p.Leaf>", got.Name())
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nodes.yaml", nodes)
	cfg := writeFile(t, dir, "geninst.yaml", "max_depth: 1\ntries: 2\nseed: 5\nuniverse: [nodes.yaml]\n")

	e := newEngine(t, geninst.WithConfigFile(cfg))
	assert.Equal(t, 1, e.MaxDepth())
	assert.Equal(t, 2, e.Tries())
	assert.Contains(t, e.Classes(), "p.Leaf")

	bad := writeFile(t, dir, "bad.yaml", "max_depth: -1\ntries: 0\n")
	_, err := geninst.New(geninst.WithConfigFile(bad))
	assert.Error(t, err)

	_, err = geninst.New(geninst.WithConfigFile(filepath.Join(dir, "missing.yaml")))
	assert.Error(t, err)
}

func TestInstantiateAll(t *testing.T) {
	e := newEngine(t)
	inputs := []string{"<T extends Number> T", "List<String>", "List<", "<E extends Enum<E>> E"}
	results, err := e.InstantiateAll(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	ids := map[string]bool{}
	for i, r := range results {
		assert.Equal(t, inputs[i], r.Input)
		assert.NotEmpty(t, r.ID)
		ids[r.ID] = true
	}
	assert.Len(t, ids, len(inputs))

	require.NoError(t, results[0].Err)
	assert.False(t, results[0].Output.HasUnresolved())
	require.NoError(t, results[1].Err)
	assert.Equal(t, "java.util.List<java.lang.String>", results[1].Output.Name())
	assert.Error(t, results[2].Err)
	require.NoError(t, results[3].Err)
	assert.True(t, results[3].Output.IsEnum())
}

func TestInstantiateAllCancelled(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.InstantiateAll(ctx, []string{"String", "Integer"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRebindAcrossEngines(t *testing.T) {
	a := newEngine(t)
	b := newEngine(t)
	d := parse(t, a, "Map<String, List<Integer>>")

	got := b.Rebind(d)
	assert.True(t, got.Equal(d))
	assert.Same(t, parse(t, b, "Map").Raw, got.Raw)
	assert.NotSame(t, d.Raw, got.Raw)
}

func TestSuperTypeHelpers(t *testing.T) {
	e := newEngine(t)
	assert.True(t, e.CanBeInstantiatedTo(parse(t, e, "Integer"), parse(t, e, "Comparable<Integer>")))
	assert.False(t, e.CanBeInstantiatedTo(parse(t, e, "String"), parse(t, e, "Number")))

	got, err := e.WithParametersFromSuper(parse(t, e, "ArrayList<?>"), parse(t, e, "Collection<Long>"))
	require.NoError(t, err)
	assert.Equal(t, "java.util.ArrayList<java.lang.Long>", got.Name())
}

func TestCandidatesAndWeights(t *testing.T) {
	e := newEngine(t, geninst.WithWeight("Integer", 50))
	bound := parse(t, e, "? extends Number").Type
	var names []string
	for _, d := range e.Candidates(bound, false) {
		names = append(names, d.Name())
	}
	assert.Contains(t, names, "java.lang.Integer")
	assert.NotContains(t, names, "java.lang.String")

	_, err := geninst.New(geninst.WithWeight("NoSuchClass", 1))
	assert.Error(t, err)
}
