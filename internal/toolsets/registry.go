// Package toolsets defines the named groups of operation modules that a client
// can select statically (TOOL_SETS) or enable at runtime.
package toolsets

import (
	"fmt"
	"sort"
	"strings"
)

// Definition is an immutable toolset: a name, guidance for choosing it, and
// the ordered module ids it comprises.
type Definition struct {
	Name             string   `json:"name" yaml:"name"`
	Description      string   `json:"description" yaml:"description"`
	DecisionCriteria string   `json:"decisionCriteria" yaml:"decisionCriteria"`
	Modules          []string `json:"modules" yaml:"modules"`
}

// ValidationError reports an unknown toolset name together with the valid set.
type ValidationError struct {
	Name  string
	Valid []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unknown toolset %q; valid toolsets are: %s", e.Name, strings.Join(e.Valid, ", "))
}

// Registry is a read-only table of toolset definitions.
type Registry struct {
	defs  map[string]Definition
	names []string
}

// NewRegistry builds a registry. Duplicate names and toolsets without modules
// are rejected.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("toolset definition without a name")
		}
		if _, dup := r.defs[d.Name]; dup {
			return nil, fmt.Errorf("toolset %q defined twice", d.Name)
		}
		if len(d.Modules) == 0 {
			return nil, fmt.Errorf("toolset %q has no modules", d.Name)
		}
		mods := make([]string, len(d.Modules))
		copy(mods, d.Modules)
		d.Modules = mods
		r.defs[d.Name] = d
		r.names = append(r.names, d.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Definitions returns a copy of all definitions keyed by name.
func (r *Registry) Definitions() map[string]Definition {
	out := make(map[string]Definition, len(r.defs))
	for name, d := range r.defs {
		d.Modules = append([]string(nil), d.Modules...)
		out[name] = d
	}
	return out
}

// Names returns all toolset names, sorted.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the definition for name.
func (r *Registry) Get(name string) (Definition, bool) {
	d, ok := r.defs[name]
	if !ok {
		return Definition{}, false
	}
	d.Modules = append([]string(nil), d.Modules...)
	return d, true
}

// IsValidName reports whether name is a known toolset.
func (r *Registry) IsValidName(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// Validate returns a *ValidationError for unknown names.
func (r *Registry) Validate(name string) error {
	if r.IsValidName(name) {
		return nil
	}
	return &ValidationError{Name: name, Valid: r.Names()}
}

// ModulesFor returns the de-duplicated union of the modules of the named
// toolsets, in first-seen order. Unknown names contribute nothing.
func (r *Registry) ModulesFor(names ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, name := range names {
		d, ok := r.defs[name]
		if !ok {
			continue
		}
		for _, m := range d.Modules {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// CheckModules verifies that every referenced module satisfies known.
func (r *Registry) CheckModules(known func(id string) bool) error {
	for _, name := range r.names {
		for _, m := range r.defs[name].Modules {
			if !known(m) {
				return fmt.Errorf("toolset %q references unknown module %q", name, m)
			}
		}
	}
	return nil
}
