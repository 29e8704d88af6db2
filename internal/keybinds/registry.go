package keybinds

import (
	"maps"
	"slices"
	"strings"
)

// Binding is one key of one context
type Binding struct {
	Context Context
	Key     string
	Action  Action
}

// keymap is the key -> action table of one context
type keymap map[string]Action

// keysFor lists the keys bound to action, sorted
func (km keymap) keysFor(action Action) []string {
	var keys []string
	for key, bound := range km {
		if bound == action {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Registry resolves key names to actions per screen context. A context's
// own keys win over the global ones.
type Registry struct {
	contexts map[Context]keymap
}

// NewRegistry returns a registry with no bindings
func NewRegistry() *Registry {
	return &Registry{contexts: make(map[Context]keymap)}
}

func (r *Registry) keymap(ctx Context) keymap {
	km, ok := r.contexts[ctx]
	if !ok {
		km = make(keymap)
		r.contexts[ctx] = km
	}
	return km
}

// Bind maps each key to action in ctx, replacing whatever the key did
// there before
func (r *Registry) Bind(ctx Context, action Action, keys ...string) {
	km := r.keymap(ctx)
	for _, key := range keys {
		km[key] = action
	}
}

// Unbind removes one key from ctx
func (r *Registry) Unbind(ctx Context, key string) {
	delete(r.contexts[ctx], key)
}

// Rebind makes keys the only keys of action in ctx
func (r *Registry) Rebind(ctx Context, action Action, keys ...string) {
	km := r.keymap(ctx)
	maps.DeleteFunc(km, func(_ string, bound Action) bool { return bound == action })
	r.Bind(ctx, action, keys...)
}

// Match resolves a key pressed on a screen of the given context
func (r *Registry) Match(ctx Context, key string) (Action, bool) {
	for _, c := range lookupOrder(ctx) {
		if action, ok := r.contexts[c][key]; ok {
			return action, true
		}
	}
	return "", false
}

// Keys lists the keys that trigger action in ctx. Global keys are only
// reported when ctx has none of its own.
func (r *Registry) Keys(ctx Context, action Action) []string {
	for _, c := range lookupOrder(ctx) {
		if keys := r.contexts[c].keysFor(action); len(keys) > 0 {
			return keys
		}
	}
	return nil
}

// Help renders the keys of action for a help line, e.g. "k/up"
func (r *Registry) Help(ctx Context, action Action) string {
	keys := r.Keys(ctx, action)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, "/")
}

// Bindings lists the bindings of ctx sorted by key. Only ctx's own
// bindings are listed.
func (r *Registry) Bindings(ctx Context) []Binding {
	km := r.contexts[ctx]
	out := make([]Binding, 0, len(km))
	for _, key := range slices.Sorted(maps.Keys(km)) {
		out = append(out, Binding{Context: ctx, Key: key, Action: km[key]})
	}
	return out
}

// Clone returns an independent copy
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	for ctx, km := range r.contexts {
		clone.contexts[ctx] = maps.Clone(km)
	}
	return clone
}

func lookupOrder(ctx Context) []Context {
	if ctx == ContextGlobal {
		return []Context{ContextGlobal}
	}
	return []Context{ctx, ContextGlobal}
}
