package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	xerrors "github.com/gekatateam/parrot/pkg/errors"
)

// Layer is a configuration source; higher layers override lower ones key by key.
type Layer int

const (
	LayerDefaults Layer = iota
	LayerFile
	LayerEnv
	LayerRuntime
	layersCount
)

func (l Layer) String() string {
	switch l {
	case LayerDefaults:
		return "defaults"
	case LayerFile:
		return "file"
	case LayerEnv:
		return "env"
	case LayerRuntime:
		return "runtime"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Loader produces a layer content, it is called by Store.Reload().
type Loader func() (Sections, error)

// bound option, able to validate a new view before it is committed
type binding interface {
	Section() string
	prepare(view Sections) (commit func(), err error)
}

// Store holds process-wide plugin configuration as a stack of layers.
//
// Reads are lock-free and always see the last committed view.
// Writes are serialized; a write is committed only if every bound
// option accepts the new view, otherwise the store keeps the old one.
type Store struct {
	mu       *sync.Mutex
	layers   [layersCount]Sections
	loaders  [layersCount]Loader
	bindings []binding
	view     atomic.Pointer[Sections]
}

func NewStore() *Store {
	s := &Store{mu: &sync.Mutex{}}
	empty := Sections{}
	s.view.Store(&empty)
	return s
}

// SetLoader assigns a reload source for layer.
func (s *Store) SetLoader(layer Layer, loader Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaders[layer] = loader
}

// SetLayer replaces layer content and commits the new view.
func (s *Store) SetLayer(layer Layer, sections Sections) error {
	if layer < 0 || layer >= layersCount {
		return fmt.Errorf("unknown configuration layer: %v", layer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	layers := s.layers
	layers[layer] = sections
	return s.commit(layers)
}

// Set puts a single value into the runtime layer.
func (s *Store) Set(section, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	layers := s.layers
	runtime := cloneSections(layers[LayerRuntime])
	if runtime[section] == nil {
		runtime[section] = make(map[string]any)
	}
	runtime[section][key] = value
	layers[LayerRuntime] = runtime

	return s.commit(layers)
}

// Reload calls every configured loader and commits the result at once.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	layers := s.layers
	var loaded int
	for l, loader := range s.loaders {
		if loader == nil {
			continue
		}

		sections, err := loader()
		if err != nil {
			return fmt.Errorf("%v layer loading failed: %w", Layer(l), err)
		}
		layers[l] = sections
		loaded++
	}

	if loaded == 0 {
		return errors.New("no configuration loaders set")
	}

	return s.commit(layers)
}

// Section returns a copy of merged section content.
func (s *Store) Section(name string) (map[string]any, bool) {
	section, ok := (*s.view.Load())[name]
	if !ok {
		return nil, false
	}
	return maps.Clone(section), true
}

func (s *Store) Lookup(section, key string) (any, bool) {
	sec, ok := (*s.view.Load())[section]
	if !ok {
		return nil, false
	}
	value, ok := sec[key]
	return value, ok
}

func (s *Store) current() Sections {
	return *s.view.Load()
}

func (s *Store) bind(b binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	commit, err := b.prepare(s.current())
	if err != nil {
		return err
	}
	commit()
	s.bindings = append(s.bindings, b)
	return nil
}

// Unbind releases every option bound to section. Released options keep
// their last value, but no longer follow or veto store writes.
func (s *Store) Unbind(section string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bindings = slices.DeleteFunc(s.bindings, func(b binding) bool {
		return b.Section() == section
	})
}

// must be called under lock
func (s *Store) commit(layers [layersCount]Sections) error {
	view := merge(layers[:])

	var errs xerrors.Errorlist
	var commits = make([]func(), 0, len(s.bindings))
	for _, b := range s.bindings {
		commit, err := b.prepare(view)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		commits = append(commits, commit)
	}

	if len(errs) > 0 {
		return &ValidationError{Err: errs}
	}

	for _, c := range commits {
		c()
	}

	s.layers = layers
	s.view.Store(&view)
	return nil
}

// ValidationError is returned when new configuration is rejected by bound options.
type ValidationError struct{ Err error }

func (e *ValidationError) Error() string { return "configuration rejected: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func merge(layers []Sections) Sections {
	view := make(Sections)
	for _, layer := range layers {
		for name, section := range layer {
			if view[name] == nil {
				view[name] = make(map[string]any, len(section))
			}
			for k, v := range section {
				view[name][k] = v
			}
		}
	}
	return view
}

func cloneSections(s Sections) Sections {
	c := make(Sections, len(s))
	for name, section := range s {
		c[name] = maps.Clone(section)
	}
	return c
}

// EnvSections collects overrides in form PREFIX_SECTION__KEY=value,
// section and key are lowercased.
func EnvSections(prefix string, environ []string) Sections {
	sections := make(Sections)
	prefix = strings.ToUpper(prefix) + "_"

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}

		section, key, ok := strings.Cut(strings.TrimPrefix(name, prefix), "__")
		if !ok || len(section) == 0 || len(key) == 0 {
			continue
		}

		section, key = strings.ToLower(section), strings.ToLower(key)
		if sections[section] == nil {
			sections[section] = make(map[string]any)
		}
		sections[section][key] = value
	}

	return sections
}

// EnvLoader is a Loader over the process environment.
func EnvLoader(prefix string, environ func() []string) Loader {
	return func() (Sections, error) {
		return EnvSections(prefix, environ()), nil
	}
}
