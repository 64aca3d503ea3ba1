// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"github.com/gogpu/card/fonts"
)

// Options are passed to a backend factory.
type Options struct {
	Width  int
	Height int

	// Fonts is the registry used for text. Nil means fonts.Default().
	Fonts *fonts.Registry
}

// Factory creates a new Surface.
type Factory func(opts Options) (Surface, error)

type backend struct {
	name      string
	priority  int
	factory   Factory
	available func() bool
}

var globalRegistry = NewRegistry()

// Registry holds named surface backends, selected by name or by priority.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]*backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]*backend)}
}

// Register adds a backend to the global registry. A nil available means
// always available. Registering an existing name replaces it.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Available returns the available global backends, highest priority first.
// These are the accepted values of CARD_SURFACE.
func Available() []string { return globalRegistry.Available() }

// NewSurfaceWithOptions creates a surface with the named global backend,
// or the best available one when name is empty.
func NewSurfaceWithOptions(name string, opts Options) (Surface, error) {
	if name == "" {
		return globalRegistry.NewSurface(opts)
	}
	return globalRegistry.NewSurfaceByName(name, opts)
}

// Register adds a backend to r.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	r.mu.Lock()
	r.backends[name] = &backend{name: name, priority: priority, factory: factory, available: available}
	r.mu.Unlock()
}

// Available returns the available backend names, highest priority first.
// Ties sort by name.
func (r *Registry) Available() []string {
	r.mu.RLock()
	list := make([]*backend, 0, len(r.backends))
	for _, b := range r.backends {
		if b.available() {
			list = append(list, b)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(list, func(a, b *backend) int {
		if c := cmp.Compare(b.priority, a.priority); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	names := make([]string, len(list))
	for i, b := range list {
		names[i] = b.name
	}
	return names
}

// NewSurface tries the available backends in priority order and returns
// the first surface created.
func (r *Registry) NewSurface(opts Options) (Surface, error) {
	names := r.Available()
	if len(names) == 0 {
		return nil, ErrNoBackendAvailable
	}
	var lastErr error
	for _, name := range names {
		s, err := r.NewSurfaceByName(name, opts)
		if err == nil {
			return s, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// NewSurfaceByName creates a surface with the named backend.
func (r *Registry) NewSurfaceByName(name string, opts Options) (Surface, error) {
	r.mu.RLock()
	b, ok := r.backends[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !b.available() {
		return nil, &BackendUnavailableError{Name: name}
	}
	return b.factory(opts)
}

// ErrNoBackendAvailable is returned when no backend is registered or
// available.
var ErrNoBackendAvailable = errors.New("surface: no backend available")

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "surface: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not available.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "surface: backend unavailable: " + e.Name
}

func init() {
	Register("gg", 10, func(o Options) (Surface, error) {
		return NewCanvas(o.Width, o.Height, WithFonts(o.Fonts)), nil
	}, nil)
	Register("record", 0, func(o Options) (Surface, error) {
		return NewRecorder(o.Width, o.Height, WithRecorderFonts(o.Fonts)), nil
	}, nil)
}
