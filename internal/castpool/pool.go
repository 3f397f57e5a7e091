// Package castpool selects candidate classes for unresolved type variables
// and wildcards. A Pool draws at random from the classes it knows, weighted
// by how often each class was registered.
package castpool

import (
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/funvibe/geninst/internal/assign"
	"github.com/funvibe/geninst/internal/config"
	"github.com/funvibe/geninst/internal/instantiator"
	ts "github.com/funvibe/geninst/internal/typesystem"
)

type entry struct {
	class  *ts.Class
	weight int
}

// Pool is a weighted registry of candidate classes. It is safe for
// concurrent use.
type Pool struct {
	mu        sync.Mutex
	rng       *rand.Rand
	entries   map[string]*entry
	satisfier *instantiator.Satisfier
	logger    *slog.Logger
}

var _ instantiator.Selector = (*Pool)(nil)

type Option func(*Pool)

// WithSeed makes the selection sequence reproducible.
func WithSeed(seed uint64) Option {
	return func(p *Pool) { p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

func New(satisfier *instantiator.Satisfier, opts ...Option) *Pool {
	p := &Pool{
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		entries:   make(map[string]*entry),
		satisfier: satisfier,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.satisfier == nil {
		p.satisfier = instantiator.NewSatisfier(p.logger)
	}
	return p
}

// FromProvider creates a pool holding every class of provider once.
func FromProvider(provider ts.Provider, satisfier *instantiator.Satisfier, opts ...Option) *Pool {
	p := New(satisfier, opts...)
	for _, c := range provider.Classes() {
		p.Add(c)
	}
	return p
}

// Add registers c once more, raising its weight. Primitives, anonymous
// classes and array classes are never candidates.
func (p *Pool) Add(c *ts.Class) {
	p.AddWeighted(c, 1)
}

func (p *Pool) AddWeighted(c *ts.Class, weight int) {
	if c == nil || weight <= 0 || c.IsPrimitive() || c.IsAnonymous() || c.IsArray() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[c.Name]; ok {
		e.weight += weight
		return
	}
	p.entries[c.Name] = &entry{class: c, weight: weight}
}

// Len returns the number of distinct classes.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Candidates returns the classes that fit bound, sorted by name. Generic
// classes are only offered when deep is set.
func (p *Pool) Candidates(bound ts.Type, deep bool, m ts.Subst) []*ts.Descriptor {
	p.mu.Lock()
	entries := p.sorted()
	p.mu.Unlock()

	var out []*ts.Descriptor
	for _, e := range entries {
		if p.fits(e.class, bound, deep, m) {
			out = append(out, ts.FromClass(e.class))
		}
	}
	return out
}

// Select draws one fitting class at random, weighted by registration count.
func (p *Pool) Select(bound ts.Type, deep bool, m ts.Subst) (*ts.Descriptor, bool) {
	p.mu.Lock()
	entries := p.sorted()
	p.mu.Unlock()

	var fitting []entry
	total := 0
	for _, e := range entries {
		if p.fits(e.class, bound, deep, m) {
			fitting = append(fitting, e)
			total += e.weight
		}
	}
	if total == 0 {
		p.logger.Debug("no candidate", "bound", describe(bound), "deep", deep)
		return nil, false
	}

	p.mu.Lock()
	r := p.rng.IntN(total)
	p.mu.Unlock()
	for _, e := range fitting {
		if r < e.weight {
			p.logger.Debug("candidate selected", "bound", describe(bound), "class", e.class.Name)
			return ts.FromClass(e.class), true
		}
		r -= e.weight
	}
	return nil, false
}

// sorted snapshots the entries in name order; the caller holds mu.
func (p *Pool) sorted() []entry {
	out := make([]entry, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].class.Name < out[j].class.Name })
	return out
}

func (p *Pool) fits(c *ts.Class, bound ts.Type, deep bool, m ts.Subst) bool {
	if !c.IsGeneric() {
		return p.satisfier.Satisfies(ts.FromClass(c), bound, m)
	}
	if !deep {
		return false
	}
	// generic candidates are checked on the raw level; the engine validates
	// the instantiation
	switch b := bound.(type) {
	case *ts.TVar:
		for _, ub := range b.Bounds {
			if ts.RawClass(ub).Name == config.EnumClassName && !c.IsEnum() {
				return false
			}
			if !assign.IsSubclass(c, ts.RawClass(ub)) {
				return false
			}
		}
		return true
	case ts.TWildcard:
		for _, ub := range b.UpperBounds() {
			if !assign.IsSubclass(c, ts.RawClass(ub)) {
				return false
			}
		}
		for _, lb := range b.Lower {
			if !assign.IsSubclass(ts.RawClass(lb), c) {
				return false
			}
		}
		return true
	}
	return assign.IsSubclass(c, ts.RawClass(bound))
}

func describe(bound ts.Type) string {
	if v, ok := bound.(*ts.TVar); ok {
		return v.Declaration()
	}
	return bound.String()
}
