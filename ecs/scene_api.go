package ecs

import (
	"errors"

	"github.com/rotisserie/eris"
)

// AddComponent attaches the store for T to the scene, creating it on first use.
func AddComponent[T any](s *Scene) (*ComponentStore[T], error) {
	ct, ok := TypeOf[T](s.registry)
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "%T", *new(T))
	}
	store, err := s.AttachStore(ct)
	if store == nil {
		return nil, err
	}
	return store.(*ComponentStore[T]), err
}

// GetComponent returns the attached store for T.
func GetComponent[T any](s *Scene) (*ComponentStore[T], bool) {
	ct, ok := TypeOf[T](s.registry)
	if !ok {
		return nil, false
	}
	store, ok := s.Store(ct)
	if !ok {
		return nil, false
	}
	typed, ok := store.(*ComponentStore[T])
	return typed, ok
}

// RemoveComponent detaches the store for T and drops its state.
func RemoveComponent[T any](s *Scene) error {
	ct, ok := TypeOf[T](s.registry)
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "%T", *new(T))
	}
	return s.DetachStore(ct)
}

// SetComponent sets the entity's T, attaching the store if needed.
func SetComponent[T any](s *Scene, id EntityId, value T) error {
	store, err := AddComponent[T](s)
	if store == nil {
		return err
	}
	return errors.Join(err, store.Set(id, value))
}

// Get returns the entity's T. It reports absence for unknown types, detached
// stores and entities without state alike.
func Get[T any](s *Scene, id EntityId) (*T, bool) {
	store, ok := GetComponent[T](s)
	if !ok {
		return nil, false
	}
	return store.Get(id)
}

// SetGlobal stores value as the scene's global T and publishes GlobalComponentAdded.
func SetGlobal[T any](s *Scene, value T) error {
	ct, ok := TypeOf[T](s.registry)
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "%T", value)
	}
	info, err := s.globalInfo(ct)
	if err != nil {
		return err
	}

	slot := s.ensureGlobalSlot(info)
	*slot.value.(*T) = value
	slot.present = true
	return s.bus.Publish(GlobalComponentAdded{Type: ct, Name: info.name, Value: slot.value})
}

// GetGlobal returns the scene's global T. The pointer stays the same for the
// life of the scene.
func GetGlobal[T any](s *Scene) (*T, bool) {
	ct, ok := TypeOf[T](s.registry)
	if !ok {
		return nil, false
	}
	value, ok := s.Global(ct)
	if !ok {
		return nil, false
	}
	typed, ok := value.(*T)
	return typed, ok
}

// RemoveGlobal clears the scene's global T.
func RemoveGlobal[T any](s *Scene) error {
	ct, ok := TypeOf[T](s.registry)
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "%T", *new(T))
	}
	return s.ClearGlobal(ct)
}
