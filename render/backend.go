// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"sort"
	"sync"
)

// Backend names.
const (
	// BackendSoftware is the CPU renderer. It is always available.
	BackendSoftware = "software"
)

// RendererFactory creates a Renderer drawing through device.
type RendererFactory func(device DeviceHandle) (Renderer, error)

// Backend is a registered renderer implementation.
type Backend struct {
	// Name is the unique identifier of the backend.
	Name string

	// Priority orders automatic selection, higher first. GPU backends
	// register at 100, the software renderer at 10.
	Priority int

	// Factory creates renderer instances.
	Factory RendererFactory

	// Available reports whether the backend can run with device. A
	// software backend ignores device; a GPU backend needs a non-null one.
	Available func(device DeviceHandle) bool
}

// Backends holds the renderer implementations a worker can choose from.
//
// Backends register themselves so the compositor does not need to know
// them:
//
//	func init() {
//	    render.RegisterBackend("wgpu", 100, newWGPURenderer, hasAdapter)
//	}
type Backends struct {
	mu      sync.RWMutex
	entries map[string]*Backend
}

var defaultBackends = NewBackends()

func init() {
	RegisterBackend(BackendSoftware, 10, func(DeviceHandle) (Renderer, error) {
		return NewSoftwareRenderer(), nil
	}, nil)
}

// NewBackends returns an empty set. Most code uses the package-level
// functions, which operate on a default set holding the software
// renderer.
func NewBackends() *Backends {
	return &Backends{entries: make(map[string]*Backend)}
}

// RegisterBackend adds a backend to the default set.
func RegisterBackend(name string, priority int, factory RendererFactory, available func(DeviceHandle) bool) {
	defaultBackends.Register(name, priority, factory, available)
}

// BackendNames returns the default set's backend names, best first.
func BackendNames() []string { return defaultBackends.Names() }

// NewRenderer creates a renderer from the best backend available for
// device in the default set.
func NewRenderer(device DeviceHandle) (Renderer, string, error) {
	return defaultBackends.New(device)
}

// NewRendererByName creates a renderer from the named backend of the
// default set.
func NewRendererByName(name string, device DeviceHandle) (Renderer, error) {
	return defaultBackends.NewByName(name, device)
}

// Register adds a backend, replacing any with the same name. A nil
// available means always available.
func (b *Backends) Register(name string, priority int, factory RendererFactory, available func(DeviceHandle) bool) {
	if available == nil {
		available = func(DeviceHandle) bool { return true }
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[name] = &Backend{Name: name, Priority: priority, Factory: factory, Available: available}
}

// Unregister removes a backend.
func (b *Backends) Unregister(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, name)
}

// Get returns a copy of the named backend.
func (b *Backends) Get(name string) (Backend, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[name]
	if !ok {
		return Backend{}, false
	}
	return *e, true
}

// Names returns every backend name, highest priority first. Equal
// priorities sort by name.
func (b *Backends) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sorted(nil)
}

// New creates a renderer from the best backend available for device and
// reports which one it used. A backend whose factory fails is skipped.
func (b *Backends) New(device DeviceHandle) (Renderer, string, error) {
	b.mu.RLock()
	names := b.sorted(device)
	b.mu.RUnlock()

	lastErr := ErrNoBackendAvailable
	for _, name := range names {
		r, err := b.NewByName(name, device)
		if err == nil {
			return r, name, nil
		}
		lastErr = err
	}
	return nil, "", lastErr
}

// NewByName creates a renderer from the named backend.
func (b *Backends) NewByName(name string, device DeviceHandle) (Renderer, error) {
	b.mu.RLock()
	e, ok := b.entries[name]
	b.mu.RUnlock()
	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !e.Available(device) {
		return nil, &BackendUnavailableError{Name: name}
	}
	return e.Factory(device)
}

// sorted returns backend names by priority. With a non-nil device only
// backends available for it are included. Must be called with the lock
// held.
func (b *Backends) sorted(device DeviceHandle) []string {
	list := make([]*Backend, 0, len(b.entries))
	for _, e := range b.entries {
		if device != nil && !e.Available(device) {
			continue
		}
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority > list[j].Priority
		}
		return list[i].Name < list[j].Name
	})
	names := make([]string, len(list))
	for i, e := range list {
		names[i] = e.Name
	}
	return names
}

// ErrNoBackendAvailable is returned when no registered backend can run.
var ErrNoBackendAvailable = errors.New("render: no backend available")

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "render: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend cannot run with the given
// device.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "render: backend unavailable: " + e.Name
}
