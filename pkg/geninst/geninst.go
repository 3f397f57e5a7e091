// Package geninst is the public API of the generic type instantiation
// engine. An Engine owns a class universe, a weighted candidate pool and the
// instantiator that ties them together.
package geninst

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/funvibe/geninst/internal/castpool"
	"github.com/funvibe/geninst/internal/config"
	"github.com/funvibe/geninst/internal/instantiator"
	ts "github.com/funvibe/geninst/internal/typesystem"
	"github.com/funvibe/geninst/internal/universe"
)

type (
	Descriptor         = ts.Descriptor
	Type               = ts.Type
	Subst              = ts.Subst
	Selector           = instantiator.Selector
	SelectorFunc       = instantiator.SelectorFunc
	InstantiationError = instantiator.InstantiationError
	Settings           = config.Settings
)

// ErrInstantiationFailed matches every failed instantiation.
var ErrInstantiationFailed = instantiator.ErrInstantiationFailed

type options struct {
	settings *config.Settings
	tries    int
	logger   *slog.Logger
	selector instantiator.Selector
	bindings map[string]string
	weights  map[string]int
	err      error
}

type Option func(*options)

// WithSettings replaces the settings wholesale. Options given after it
// still override single fields.
func WithSettings(s *Settings) Option {
	return func(o *options) {
		if s != nil {
			c := *s
			c.Universe = append([]string(nil), s.Universe...)
			o.settings = &c
		}
	}
}

// WithConfigFile loads settings from a geninst.yaml file.
func WithConfigFile(path string) Option {
	return func(o *options) {
		s, err := config.LoadSettings(path)
		if err != nil {
			o.err = errors.Join(o.err, err)
			return
		}
		o.settings = s
	}
}

// WithUniverseFiles adds class universe files on top of the built-ins.
func WithUniverseFiles(paths ...string) Option {
	return func(o *options) { o.settings.Universe = append(o.settings.Universe, paths...) }
}

func WithMaxDepth(n int) Option {
	return func(o *options) { o.settings.MaxDepth = n }
}

// WithSeed makes candidate selection reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.settings.Seed = seed }
}

// WithTries sets how many randomized attempts Instantiate makes.
func WithTries(n int) Option {
	return func(o *options) { o.settings.Tries = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSelector replaces the candidate pool.
func WithSelector(s Selector) Option {
	return func(o *options) { o.selector = s }
}

// WithBinding pins the candidate for a type variable (by name or
// Decl#Name) or a wildcard (by its text, e.g. "? extends java.lang.Number").
// The key "*" matches every bound. The type is parsed in the engine's
// universe.
func WithBinding(key, typeText string) Option {
	return func(o *options) {
		if o.bindings == nil {
			o.bindings = map[string]string{}
		}
		o.bindings[key] = typeText
	}
}

// WithWeight registers class name with an extra pool weight.
func WithWeight(class string, weight int) Option {
	return func(o *options) {
		if o.weights == nil {
			o.weights = map[string]int{}
		}
		o.weights[class] += weight
	}
}

// Engine instantiates generic type descriptors. It is safe for concurrent
// use.
type Engine struct {
	universe *universe.Universe
	pool     *castpool.Pool
	engine   *instantiator.Engine
	settings config.Settings
	logger   *slog.Logger
}

// New builds an engine from the built-in classes, the configured universe
// files and the given options.
func New(opts ...Option) (*Engine, error) {
	o := &options{settings: config.DefaultSettings()}
	for _, opt := range opts {
		opt(o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if err := o.settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	u := universe.New(universe.WithLogger(logger))
	for _, path := range o.settings.Universe {
		if err := u.LoadFile(path); err != nil {
			return nil, err
		}
	}

	poolOpts := []castpool.Option{castpool.WithLogger(logger)}
	if o.settings.Seed != 0 {
		poolOpts = append(poolOpts, castpool.WithSeed(o.settings.Seed))
	}
	pool := castpool.FromProvider(u, nil, poolOpts...)
	for name, w := range o.weights {
		c, err := u.Lookup(name)
		if err != nil {
			return nil, err
		}
		pool.AddWeighted(c, w)
	}

	var selector instantiator.Selector = pool
	if o.selector != nil {
		selector = o.selector
	}
	if len(o.bindings) > 0 {
		bound := make(map[string]*ts.Descriptor, len(o.bindings))
		for key, text := range o.bindings {
			d, err := u.Parse(text)
			if err != nil {
				return nil, fmt.Errorf("binding %s: %w", key, err)
			}
			bound[key] = candidateForm(d)
		}
		selector = castpool.NewFixed(bound, selector)
	}

	return &Engine{
		universe: u,
		pool:     pool,
		engine: instantiator.NewEngine(selector,
			instantiator.WithMaxDepth(o.settings.MaxDepth),
			instantiator.WithLogger(logger)),
		settings: *o.settings,
		logger:   logger,
	}, nil
}

// candidateForm offers a generic class in its generic form, the way the pool
// does, so that its own parameters get instantiated.
func candidateForm(d *ts.Descriptor) *ts.Descriptor {
	if d.IsRaw() && d.Raw.IsGeneric() {
		return ts.FromClass(d.Raw)
	}
	return d
}

func (e *Engine) MaxDepth() int { return e.engine.MaxDepth() }

func (e *Engine) Tries() int { return e.settings.Tries }

// Classes returns the names of all known classes, sorted.
func (e *Engine) Classes() []string {
	classes := e.universe.Classes()
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	return names
}

// Candidates lists the pool classes that fit a type variable or wildcard.
func (e *Engine) Candidates(bound Type, deep bool) []*Descriptor {
	return e.pool.Candidates(bound, deep, nil)
}

// Parse parses a type expression in the engine's universe. A leading
// "<T extends ...>" declares query variables.
func (e *Engine) Parse(text string) (*Descriptor, error) {
	return e.universe.Parse(text)
}

// Rebind re-resolves a descriptor built by another engine against this
// engine's classes.
func (e *Engine) Rebind(d *Descriptor) *Descriptor {
	return e.universe.Rebind(d)
}

// Instantiate returns a concrete instantiation of d. Candidate selection is
// random, so a failed attempt is retried up to the configured number of
// tries, each time with a fresh map.
func (e *Engine) Instantiate(d *Descriptor) (*Descriptor, error) {
	var err error
	for attempt := 1; attempt <= e.settings.Tries; attempt++ {
		var inst *Descriptor
		inst, err = e.engine.Generic(d)
		if err == nil {
			return inst, nil
		}
		if !errors.Is(err, ErrInstantiationFailed) {
			return nil, err
		}
		e.logger.Debug("attempt failed", "type", d.Name(), "attempt", attempt, "error", err)
	}
	return nil, err
}

// InstantiateWith makes a single attempt with the caller's map. Variables
// resolved on the way are recorded in m.
func (e *Engine) InstantiateWith(d *Descriptor, m Subst) (*Descriptor, error) {
	return e.engine.Instantiate(d, m)
}

// InstantiateText parses text and instantiates the result.
func (e *Engine) InstantiateText(text string) (*Descriptor, error) {
	d, err := e.Parse(text)
	if err != nil {
		return nil, err
	}
	return e.Instantiate(d)
}

// SatisfiesBounds reports whether d fits a type variable or wildcard.
func (e *Engine) SatisfiesBounds(d *Descriptor, bound Type) bool {
	return e.engine.SatisfiesBounds(d, bound)
}

// CanBeInstantiatedTo reports whether some instantiation of d is assignable
// to target.
func (e *Engine) CanBeInstantiatedTo(d, target *Descriptor) bool {
	return e.engine.CanBeInstantiatedTo(d, target)
}

// WithParametersFromSuper fills the type arguments of d from a
// parameterized super type.
func (e *Engine) WithParametersFromSuper(d, super *Descriptor) (*Descriptor, error) {
	return e.engine.WithParametersFromSuper(d, super)
}
