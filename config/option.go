package config

import (
	"fmt"
	"sync/atomic"

	"github.com/gekatateam/parrot/pkg/mapstructure"
)

// Option is a typed view of one configuration section.
//
// T is expected to be a struct with mapstructure tags; field types
// declare how raw values are coerced. Each committed store view is
// decoded once on top of a copy of defaults, so Get() is cheap
// and always reflects the current configuration.
// Map fields of defaults are shared between decodes, avoid them.
type Option[T any] struct {
	section  string
	defaults T
	value    atomic.Pointer[T]
}

// Bind decodes section into defaults and keeps it in sync with the store.
// Malformed values are reported here and on every store write, never on Get().
func Bind[T any](s *Store, section string, defaults T) (*Option[T], error) {
	o := &Option[T]{
		section:  section,
		defaults: defaults,
	}

	if err := s.bind(o); err != nil {
		return nil, err
	}

	return o, nil
}

// Peek decodes section once, without binding.
func Peek[T any](s *Store, section string, defaults T) (T, error) {
	return decode(s.current()[section], section, defaults)
}

func (o *Option[T]) Get() T {
	return *o.value.Load()
}

func (o *Option[T]) Section() string {
	return o.section
}

func (o *Option[T]) Defaults() T {
	return o.defaults
}

func (o *Option[T]) prepare(view Sections) (func(), error) {
	v, err := decode(view[o.section], o.section, o.defaults)
	if err != nil {
		return nil, err
	}

	return func() {
		o.value.Store(&v)
	}, nil
}

func decode[T any](raw map[string]any, section string, defaults T) (T, error) {
	v := defaults
	if len(raw) == 0 {
		return v, nil
	}

	if err := mapstructure.Decode(raw, &v); err != nil {
		return defaults, fmt.Errorf("%v section decoding failed: %w", section, err)
	}

	return v, nil
}
