package pipeline

import (
	"sort"
	"strings"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// maxResolveDepth bounds chained template resolution
const maxResolveDepth = 8

// Registry maps variable names, optionally scoped to a side, to values
type Registry struct {
	values map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{values: make(map[string]string)}
}

// ScopedKey is the registry key of name scoped to side
func ScopedKey(side, name string) string {
	return side + "|" + name
}

// Set stores an unscoped value
func (r *Registry) Set(name, value string) {
	r.values[name] = value
}

// SetScoped stores a value visible only to side
func (r *Registry) SetScoped(side, name, value string) {
	r.values[ScopedKey(side, name)] = value
}

// Get returns the raw value stored under key
func (r *Registry) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns every registry key in sorted order
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup finds name for side. extra wins over side-scoped entries, which win
// over unscoped ones.
func (r *Registry) Lookup(side, name string, extra map[string]string) (string, bool) {
	if v, ok := extra[name]; ok {
		return v, true
	}
	if side != "" {
		if v, ok := r.values[ScopedKey(side, name)]; ok {
			return v, true
		}
	}
	v, ok := r.values[name]
	return v, ok
}

// Resolve expands template for side. Only a value that is entirely wrapped in
// braces is a template; anything else is returned unchanged. Values that are
// themselves templates are expanded again, up to maxResolveDepth times.
func (r *Registry) Resolve(template, side string, extra map[string]string) (string, error) {
	value := template
	for i := 0; i < maxResolveDepth; i++ {
		name, ok := templateName(value)
		if !ok {
			return value, nil
		}

		next, found := r.Lookup(side, name, extra)
		if !found {
			return "", errors.Newf(errors.ErrUnresolvedVariable, "variable %s (scoped %s) does not exist", name, ScopedKey(side, name)).
				WithDetail("variable", name).
				WithDetail("side", side)
		}
		if next == value {
			// {a} = "{a}" never settles
			return "", unsettled(template, side)
		}
		value = next
	}

	if _, ok := templateName(value); ok {
		return "", unsettled(template, side)
	}
	return value, nil
}

func unsettled(template, side string) error {
	return errors.Newf(errors.ErrConfigValid, "variable %s does not settle after %d substitutions", template, maxResolveDepth).
		WithDetail("template", template).
		WithDetail("side", side)
}

// resolveAll resolves every template in order
func (r *Registry) resolveAll(templates []string, side string, extra map[string]string) ([]string, error) {
	out := make([]string, 0, len(templates))
	for _, t := range templates {
		v, err := r.Resolve(t, side, extra)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func templateName(value string) (string, bool) {
	if len(value) < 2 || !strings.HasPrefix(value, "{") || !strings.HasSuffix(value, "}") {
		return "", false
	}
	return value[1 : len(value)-1], true
}
