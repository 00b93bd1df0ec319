package rpc

import (
	"fmt"

	"github.com/gekatateam/parrot/pkg/syncs"
)

// Registry maps object names to remote objects.
type Registry struct {
	objects syncs.Map[string, *Object]
}

func NewRegistry() *Registry {
	return &Registry{
		objects: syncs.New[string, *Object](),
	}
}

func (r *Registry) Register(o *Object) error {
	if _, loaded := r.objects.LoadOrStore(o.Name, o); loaded {
		return &ConflictError{Err: fmt.Errorf("object %v already registered", o.Name)}
	}
	return nil
}

func (r *Registry) Unregister(name string) {
	r.objects.Delete(name)
}

func (r *Registry) Lookup(name string) (*Object, bool) {
	return r.objects.Load(name)
}

func (r *Registry) Names() []string {
	return syncs.Keys(&r.objects)
}
