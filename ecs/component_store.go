package ecs

import (
	"errors"
	"iter"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

// AnyStore is the type-erased view of a ComponentStore used by the Scene,
// the scene loader and inspectors.
type AnyStore interface {
	Type() ComponentType
	Name() string
	Policy() DeserializePolicy

	IsPresentOn(id EntityId) bool
	ResetEntity(id EntityId) error
	Value(id EntityId) (any, bool)
	Len() int
	Entities() iter.Seq[EntityId]

	SerializeState(id EntityId) (string, bool, error)
	DeserializeState(record ComponentDataModel) error
	SerializeAllState(ids iter.Seq[EntityId]) ([]ComponentDataModel, error)
	DeserializeAllState(records []ComponentDataModel) error

	bind(bus *EventBus, alive func(EntityId) bool)
}

var _ AnyStore = (*ComponentStore[struct{}])(nil)

// ComponentStore holds the state of one component type for every entity that has it.
// Stores are created by a Scene from a registered type and live as long as they stay attached.
type ComponentStore[T any] struct {
	info  *componentInfo
	codec Codec[T]
	bus   *EventBus
	alive func(EntityId) bool

	slots *intmap.Map[EntityId, int]
	data  blockStorage[T]
}

func newComponentStore[T any](info *componentInfo, codec Codec[T]) *ComponentStore[T] {
	return &ComponentStore[T]{
		info:  info,
		codec: codec,
		slots: intmap.New[EntityId, int](256),
	}
}

// Type returns the registered ComponentType of T.
func (s *ComponentStore[T]) Type() ComponentType {
	return s.info.id
}

// Name returns the persisted type name.
func (s *ComponentStore[T]) Name() string {
	return s.info.name
}

// Policy returns the DeserializeState policy of the type.
func (s *ComponentStore[T]) Policy() DeserializePolicy {
	return s.info.policy
}

// IsPresentOn reports whether the entity has state in this store.
func (s *ComponentStore[T]) IsPresentOn(id EntityId) bool {
	_, ok := s.slots.Get(id)
	return ok
}

// Get returns a pointer to the entity's state. The pointer stays valid until
// the entity's state is reset.
func (s *ComponentStore[T]) Get(id EntityId) (*T, bool) {
	slot, ok := s.slots.Get(id)
	if !ok {
		return nil, false
	}
	return s.data.Get(slot), true
}

// Value is the type-erased form of Get; the returned value is a *T.
func (s *ComponentStore[T]) Value(id EntityId) (any, bool) {
	ptr, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return ptr, true
}

// Set stores value for the entity. The first Set for an entity publishes ComponentAdded.
// A store attached to a scene rejects ids that are not alive in that scene.
func (s *ComponentStore[T]) Set(id EntityId, value T) error {
	if slot, ok := s.slots.Get(id); ok {
		*s.data.Get(slot) = value
		return nil
	}
	if id == NoEntity || (s.alive != nil && !s.alive(id)) {
		return eris.Wrapf(ErrEntityNotFound, "set %s on entity %d", s.info.name, id)
	}

	s.slots.Put(id, s.data.Append(id, value))
	return s.publish(ComponentAdded{Type: s.info.id, Name: s.info.name, Entity: id, Store: s})
}

// ResetEntity clears any state for the entity. It is a no-op when the entity has none,
// otherwise it publishes ComponentRemoved.
func (s *ComponentStore[T]) ResetEntity(id EntityId) error {
	slot, ok := s.slots.Get(id)
	if !ok {
		return nil
	}

	s.slots.Del(id)
	s.data.Delete(slot)
	return s.publish(ComponentRemoved{Type: s.info.id, Name: s.info.name, Entity: id, Store: s})
}

// Len returns the number of entities with state in this store.
func (s *ComponentStore[T]) Len() int {
	return s.data.Len()
}

// Entities returns the ids with state in this store, in storage order.
func (s *ComponentStore[T]) Entities() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		s.data.Each(func(owner EntityId, _ *T) bool {
			return yield(owner)
		})
	}
}

// All returns every entity and its state, in storage order.
func (s *ComponentStore[T]) All() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		s.data.Each(yield)
	}
}

// SerializeState encodes the entity's state. ok is false when the entity has none.
func (s *ComponentStore[T]) SerializeState(id EntityId) (string, bool, error) {
	ptr, ok := s.Get(id)
	if !ok {
		return "", false, nil
	}

	value, err := s.codec.Encode(ptr)
	if err != nil {
		return "", true, eris.Wrapf(err, "serialize %s on entity %d", s.info.name, id)
	}
	return value, true, nil
}

// DeserializeState decodes record.Value into the entity's state. Entities without
// state are created or rejected according to the type's DeserializePolicy.
func (s *ComponentStore[T]) DeserializeState(record ComponentDataModel) error {
	present := s.IsPresentOn(record.Entity)
	if !present && s.info.policy == DeserializeUpdateOnly {
		return eris.Wrapf(ErrComponentNotPresent, "deserialize %s on entity %d", s.info.name, record.Entity)
	}

	var value T
	if err := s.codec.Decode(record.Value, &value); err != nil {
		return eris.Wrapf(err, "deserialize %s on entity %d", s.info.name, record.Entity)
	}
	return s.Set(record.Entity, value)
}

// SerializeAllState encodes every listed entity that has state. Entities without state are omitted.
func (s *ComponentStore[T]) SerializeAllState(ids iter.Seq[EntityId]) ([]ComponentDataModel, error) {
	records := make([]ComponentDataModel, 0, s.Len())
	var errs []error
	for id := range ids {
		value, ok, err := s.SerializeState(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			records = append(records, ComponentDataModel{Entity: id, Value: value})
		}
	}
	return records, errors.Join(errs...)
}

// DeserializeAllState applies every record and joins the errors of the ones that failed.
func (s *ComponentStore[T]) DeserializeAllState(records []ComponentDataModel) error {
	var errs []error
	for _, record := range records {
		if err := s.DeserializeState(record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *ComponentStore[T]) bind(bus *EventBus, alive func(EntityId) bool) {
	s.bus = bus
	s.alive = alive
}

func (s *ComponentStore[T]) publish(event Event) error {
	if s.bus == nil {
		return nil
	}
	return s.bus.Publish(event)
}

// NewComponentStore creates a store for a registered type that is not attached to any scene.
// Detached stores publish no events.
func NewComponentStore[T any](r *ComponentRegistry) (*ComponentStore[T], error) {
	ct, ok := TypeOf[T](r)
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "%T", *new(T))
	}
	info := r.info(ct)
	if info.kind != KindComponent {
		return nil, eris.Wrapf(ErrWrongKind, "%s is a %s", info.name, info.kind)
	}
	return info.newStore().(*ComponentStore[T]), nil
}
