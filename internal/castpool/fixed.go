package castpool

import (
	"sync"

	"github.com/funvibe/geninst/internal/instantiator"
	ts "github.com/funvibe/geninst/internal/typesystem"
)

// Wildcard is the Fixed key matching any bound without its own binding.
const Wildcard = "*"

// Fixed is a deterministic selector. Bindings are keyed by variable name,
// by variable key (Decl#Name) or by the text of a wildcard. Unmatched bounds
// go to the fallback, if any.
type Fixed struct {
	mu       sync.RWMutex
	bindings map[string]*ts.Descriptor
	fallback instantiator.Selector
}

var _ instantiator.Selector = (*Fixed)(nil)

func NewFixed(bindings map[string]*ts.Descriptor, fallback instantiator.Selector) *Fixed {
	f := &Fixed{bindings: make(map[string]*ts.Descriptor, len(bindings)), fallback: fallback}
	for k, d := range bindings {
		f.bindings[k] = d
	}
	return f
}

// Bind adds or replaces a binding.
func (f *Fixed) Bind(key string, d *ts.Descriptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings[key] = d
}

func (f *Fixed) Select(bound ts.Type, deep bool, m ts.Subst) (*ts.Descriptor, bool) {
	f.mu.RLock()
	d := f.lookup(bound)
	f.mu.RUnlock()
	if d != nil {
		return d.Copy(), true
	}
	if f.fallback != nil {
		return f.fallback.Select(bound, deep, m)
	}
	return nil, false
}

func (f *Fixed) lookup(bound ts.Type) *ts.Descriptor {
	var keys []string
	switch b := bound.(type) {
	case *ts.TVar:
		keys = []string{b.Key(), b.Name}
	default:
		keys = []string{bound.String()}
	}
	keys = append(keys, Wildcard)
	for _, k := range keys {
		if d, ok := f.bindings[k]; ok {
			return d
		}
	}
	return nil
}
