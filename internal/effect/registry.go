package effect

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownEffect is returned when no factory is registered for a type tag.
var ErrUnknownEffect = errors.New("unknown effect type")

// Factory builds a fresh, idle instance carrying the given id.
type Factory func(id string) Effect

// Registry maps effect type tags to factories. Apart from the id counter it
// holds no state; register everything before playback starts.
type Registry struct {
	m   map[string]Factory
	seq uint64
}

func NewRegistry() *Registry { return &Registry{m: map[string]Factory{}} }

func (r *Registry) Register(typ string, f Factory) {
	if typ == "" || f == nil {
		return
	}
	r.m[typ] = f
}

func (r *Registry) Has(typ string) bool {
	_, ok := r.m[typ]
	return ok
}

// New builds an instance of typ with a process-unique id.
func (r *Registry) New(typ string) (Effect, error) {
	f, ok := r.m[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, typ)
	}
	r.seq++
	return f(fmt.Sprintf("%s-%d", typ, r.seq)), nil
}

// List returns the registered type tags, sorted.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
