package converter

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNoConverter      = errors.New("no converter available")
	ErrUnknownConverter = errors.New("converter not found")
)

// Registry holds converters in registration order.
type Registry struct {
	mu         sync.RWMutex
	converters []Converter
	disabled   map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{disabled: make(map[string]bool)}
}

// Register adds c. A converter with the same name is replaced in place.
func (r *Registry) Register(c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.converters {
		if existing.Name() == c.Name() {
			r.converters[i] = c
			return
		}
	}
	r.converters = append(r.converters, c)
}

// Get retrieves a converter by name
func (r *Registry) Get(name string) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.converters {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// List returns all registered converters
func (r *Registry) List() []Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Converter, len(r.converters))
	copy(out, r.converters)
	return out
}

// ListInfo returns information about all registered converters
func (r *Registry) ListInfo() []ConverterInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]ConverterInfo, 0, len(r.converters))
	for _, c := range r.converters {
		infos = append(infos, ConverterInfo{
			Name:    c.Name(),
			Enabled: !r.disabled[c.Name()],
		})
	}
	return infos
}

// Find returns the first enabled converter that handles from -> to.
func (r *Registry) Find(from, to string) (Converter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.converters {
		if r.disabled[c.Name()] {
			continue
		}
		if c.CanConvert(from, to) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%s -> %s: %w", from, to, ErrNoConverter)
}

func (r *Registry) Enable(name string) error {
	return r.setDisabled(name, false)
}

func (r *Registry) Disable(name string) error {
	return r.setDisabled(name, true)
}

func (r *Registry) setDisabled(name string, disabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for _, c := range r.converters {
		if c.Name() == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%s: %w", name, ErrUnknownConverter)
	}
	if disabled {
		r.disabled[name] = true
	} else {
		delete(r.disabled, name)
	}
	return nil
}

func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.disabled[name]
}
