package universe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/geninst/internal/config"
	ts "github.com/funvibe/geninst/internal/typesystem"
	"github.com/funvibe/geninst/internal/utils"
)

// File is the YAML schema of a universe file.
type File struct {
	Include []string    `yaml:"include,omitempty"`
	Classes []ClassSpec `yaml:"classes"`
}

// ClassSpec declares one class. Type expressions use the same syntax as
// queries; params are written as "T" or "T extends Bound".
type ClassSpec struct {
	Name       string   `yaml:"name"`
	Params     []string `yaml:"params,omitempty"`
	Extends    string   `yaml:"extends,omitempty"`
	Implements []string `yaml:"implements,omitempty"`
	Enclosing  string   `yaml:"enclosing,omitempty"`
	Modifiers  []string `yaml:"modifiers,omitempty"`
}

// LoadFile loads a universe file and, recursively, its includes. Include
// paths are relative to the including file.
func (u *Universe) LoadFile(path string) error {
	return u.loadFile(path, map[string]bool{})
}

func (u *Universe) loadFile(path string, visited map[string]bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if visited[abs] {
		return nil
	}
	visited[abs] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read universe: %w", err)
	}
	f, err := decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for _, inc := range f.Include {
		if err := u.loadFile(utils.ResolveImportPath(dir, inc), visited); err != nil {
			return err
		}
	}
	if err := u.define(f.Classes); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	u.logger.Debug("universe loaded",
		"name", utils.ExtractUniverseName(path),
		"classes", len(f.Classes))
	return nil
}

// Load defines the classes of a universe document. Includes are resolved
// against baseDir.
func (u *Universe) Load(data []byte, baseDir string) error {
	f, err := decode(data)
	if err != nil {
		return err
	}
	visited := map[string]bool{}
	for _, inc := range f.Include {
		if err := u.loadFile(utils.ResolveImportPath(baseDir, inc), visited); err != nil {
			return err
		}
	}
	return u.define(f.Classes)
}

func decode(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode universe: %w", err)
	}
	return &f, nil
}

// define registers a batch of classes in two phases: shells first so that
// declarations may refer to each other in any order, then generic
// signatures. Nothing is registered unless the whole batch is valid.
func (u *Universe) define(specs []ClassSpec) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	staged := make(map[string]*ts.Class, len(specs))
	var lookup resolver
	lookup = func(name string) (*ts.Class, error) {
		if comp, ok := strings.CutSuffix(name, "[]"); ok {
			c, err := lookup(comp)
			if err != nil {
				return nil, err
			}
			return ts.ArrayOf(c), nil
		}
		if c, ok := staged[name]; ok {
			return c, nil
		}
		if !strings.ContainsAny(name, ".$") {
			// a simple name may match a staged class
			var found *ts.Class
			for _, c := range staged {
				if c.SimpleName() == name {
					if found != nil {
						return nil, fmt.Errorf("ambiguous class name %s", name)
					}
					found = c
				}
			}
			if found != nil {
				return found, nil
			}
		}
		return u.lookupLocked(name)
	}

	var errs []error
	shells := make([]*ts.Class, len(specs))
	for i := range specs {
		c, err := u.shell(&specs[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := staged[c.Name]; dup {
			errs = append(errs, fmt.Errorf("class %s declared twice", c.Name))
			continue
		}
		staged[c.Name] = c
		shells[i] = c
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for i := range specs {
		spec := &specs[i]
		if err := enclose(shells[i], spec, lookup); err != nil {
			errs = append(errs, fmt.Errorf("class %s: %w", shells[i].Name, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for i := range specs {
		spec := &specs[i]
		if err := u.signature(shells[i], spec, lookup); err != nil {
			errs = append(errs, fmt.Errorf("class %s: %w", shells[i].Name, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, c := range shells {
		if inheritsFrom(c, c) {
			errs = append(errs, fmt.Errorf("class %s: cyclic inheritance", c.Name))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, c := range shells {
		u.register(c)
	}
	u.linkBoxes()
	return nil
}

func (u *Universe) shell(spec *ClassSpec) (*ts.Class, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, errors.New("class without name")
	}
	if strings.ContainsAny(name, "<>[]?, ") {
		return nil, fmt.Errorf("invalid class name %q", name)
	}
	if _, exists := u.classes[name]; exists {
		return nil, fmt.Errorf("class %s already defined", name)
	}

	c := &ts.Class{Name: name}
	for _, m := range spec.Modifiers {
		mod, ok := ts.ParseModifier(m)
		if !ok {
			return nil, fmt.Errorf("class %s: unknown modifier %q", name, m)
		}
		c.Modifiers |= mod
	}
	for _, text := range spec.Params {
		pname, err := paramName(text)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", name, err)
		}
		c.Params = append(c.Params, ts.NewTVar(pname, name))
	}
	return c, nil
}

// enclose links a nested class to its enclosing class, given explicitly or
// derived from the '$' in its name.
func enclose(c *ts.Class, spec *ClassSpec, lookup resolver) error {
	enclosing := spec.Enclosing
	if enclosing == "" {
		if i := strings.LastIndex(c.Name, "$"); i > 0 {
			enclosing = c.Name[:i]
		}
	}
	if enclosing == "" {
		return nil
	}
	outer, err := lookup(enclosing)
	if err != nil {
		return fmt.Errorf("enclosing: %w", err)
	}
	if outer.Is(c) {
		return errors.New("class encloses itself")
	}
	c.Enclosing = outer
	return nil
}

func (u *Universe) signature(c *ts.Class, spec *ClassSpec, lookup resolver) error {
	scope := make(map[string]*ts.TVar)
	// inner classes see the variables of their enclosing classes
	var chain []*ts.Class
	seen := map[*ts.Class]bool{}
	for cls := c; cls != nil; cls = cls.Enclosing {
		if seen[cls] {
			return errors.New("cyclic enclosing classes")
		}
		seen[cls] = true
		chain = append(chain, cls)
		if cls.IsStatic() {
			break
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, v := range chain[i].Params {
			scope[v.Name] = v
		}
	}

	for _, text := range spec.Params {
		if err := parseParamBounds(text, lookup, scope); err != nil {
			return err
		}
	}

	if spec.Extends != "" {
		if c.IsInterface() {
			return errors.New("interfaces list super interfaces under implements")
		}
		super, err := parseTypeText(spec.Extends, lookup, scope)
		if err != nil {
			return err
		}
		c.Super = super
	} else if !c.IsInterface() && !c.IsPrimitive() {
		c.Super = ts.TClass{Class: ts.ObjectClass}
	}

	for _, text := range spec.Implements {
		iface, err := parseTypeText(text, lookup, scope)
		if err != nil {
			return err
		}
		c.Interfaces = append(c.Interfaces, iface)
	}
	return nil
}

// inheritsFrom reports whether target is a proper super type of c.
func inheritsFrom(c, target *ts.Class) bool {
	seen := map[*ts.Class]bool{}
	var walk func(cls *ts.Class) bool
	walk = func(cls *ts.Class) bool {
		supers := cls.Interfaces
		if cls.Super != nil {
			supers = append([]ts.Type{cls.Super}, supers...)
		}
		for _, st := range supers {
			sc := ts.RawClass(st)
			if sc == target {
				return true
			}
			if !seen[sc] {
				seen[sc] = true
				if walk(sc) {
					return true
				}
			}
		}
		return false
	}
	return walk(c)
}

// linkBoxes connects primitives with their wrappers once both are known.
func (u *Universe) linkBoxes() {
	for prim, wrapper := range config.PrimitiveWrappers {
		p, ok1 := u.classes[prim]
		w, ok2 := u.classes[wrapper]
		if ok1 && ok2 && p.Box == nil {
			p.Box = w
			w.Box = p
		}
	}
}
