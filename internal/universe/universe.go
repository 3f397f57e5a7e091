// Package universe is the class provider of the engine: a registry of class
// metadata loaded from YAML universe files on top of a built-in java.lang and
// java.util core, plus a parser for textual type expressions.
package universe

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/funvibe/geninst/internal/config"
	ts "github.com/funvibe/geninst/internal/typesystem"
)

//go:embed builtins.yaml
var builtinsYAML []byte

// Universe is a concurrency-safe class registry. It implements
// typesystem.Provider.
type Universe struct {
	mu      sync.RWMutex
	classes map[string]*ts.Class
	simple  map[string][]string // simple name -> fully qualified names
	logger  *slog.Logger
}

var _ ts.Provider = (*Universe)(nil)

type Option func(*Universe)

// WithLogger sets the logger used for load diagnostics and rebinding warnings.
func WithLogger(l *slog.Logger) Option {
	return func(u *Universe) {
		if l != nil {
			u.logger = l
		}
	}
}

// Empty creates a universe that only knows java.lang.Object.
func Empty(opts ...Option) *Universe {
	u := &Universe{
		classes: make(map[string]*ts.Class),
		simple:  make(map[string][]string),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.register(ts.ObjectClass)
	return u
}

// New creates a universe preloaded with the built-in classes.
func New(opts ...Option) *Universe {
	u := Empty(opts...)
	if err := u.Load(builtinsYAML, ""); err != nil {
		panic(fmt.Sprintf("universe: malformed builtins: %v", err))
	}
	return u
}

func (u *Universe) register(c *ts.Class) {
	u.classes[c.Name] = c
	s := c.SimpleName()
	u.simple[s] = append(u.simple[s], c.Name)
}

// Lookup resolves a fully qualified name, a unique simple name, or an array
// name ending in "[]".
func (u *Universe) Lookup(name string) (*ts.Class, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.lookupLocked(name)
}

func (u *Universe) lookupLocked(name string) (*ts.Class, error) {
	if comp, ok := strings.CutSuffix(name, "[]"); ok {
		c, err := u.lookupLocked(comp)
		if err != nil {
			return nil, err
		}
		return ts.ArrayOf(c), nil
	}
	if c, ok := u.classes[name]; ok {
		return c, nil
	}
	if fqns := u.simple[name]; len(fqns) == 1 {
		return u.classes[fqns[0]], nil
	} else if len(fqns) > 1 {
		return nil, fmt.Errorf("ambiguous class name %s: %s", name, strings.Join(fqns, ", "))
	}
	return nil, ts.NewClassNotFoundError(name)
}

// Classes returns all registered classes sorted by name.
func (u *Universe) Classes() []*ts.Class {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]*ts.Class, 0, len(u.classes))
	for _, c := range u.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered classes.
func (u *Universe) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.classes)
}

// Object returns the registered top type.
func (u *Universe) Object() *ts.Class {
	c, _ := u.Lookup(config.ObjectClassName)
	return c
}
