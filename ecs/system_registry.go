package ecs

import (
	"slices"

	"github.com/rotisserie/eris"
)

// SystemFactory builds a fresh system instance.
type SystemFactory func() System

// SystemRegistry resolves persisted system names to constructors.
type SystemRegistry struct {
	factories map[string]SystemFactory
}

func NewSystemRegistry() *SystemRegistry {
	return &SystemRegistry{factories: make(map[string]SystemFactory)}
}

// Register adds a factory under name. It panics if name is already taken.
func (r *SystemRegistry) Register(name string, factory SystemFactory) {
	if _, ok := r.factories[name]; ok {
		panic("system " + name + " already registered")
	}
	r.factories[name] = factory
}

// RegisterSystem registers factory under the name SystemName reports for its result.
func RegisterSystem[S System](r *SystemRegistry, factory func() S) string {
	name := SystemName(factory())
	r.Register(name, func() System { return factory() })
	return name
}

// New builds the system registered under name.
func (r *SystemRegistry) New(name string) (System, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownSystem, "%q", name)
	}
	return factory(), nil
}

// Names returns the registered names in sorted order.
func (r *SystemRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
