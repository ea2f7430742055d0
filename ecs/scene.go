package ecs

import (
	"errors"
	"iter"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Scene is the aggregate root of the runtime. It owns the entities, the
// attached component stores, the global components, the event bus and the
// ordered list of systems.
//
// A Scene is not safe for concurrent use. Work done on other goroutines must be
// handed back to the goroutine driving the scene before it touches scene state.
type Scene struct {
	name     string
	registry *ComponentRegistry
	entities *EntityRegistry
	bus      *EventBus
	log      *zap.Logger

	stores  []AnyStore
	globals []*globalSlot
	systems []*systemEntry
	running bool
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithSceneName sets the scene name used in logs and snapshots.
func WithSceneName(name string) SceneOption {
	return func(s *Scene) {
		s.name = name
	}
}

// WithLogger sets the logger for wiring problems and handler panics.
func WithLogger(log *zap.Logger) SceneOption {
	return func(s *Scene) {
		s.log = log
	}
}

// NewScene creates an empty, stopped scene over the given registry.
func NewScene(registry *ComponentRegistry, opts ...SceneOption) *Scene {
	s := &Scene{
		registry: registry,
		entities: NewEntityRegistry(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.name != "" {
		s.log = s.log.With(zap.String("scene", s.name))
	}
	s.bus = NewEventBus(WithBusLogger(s.log))
	return s
}

func (s *Scene) Name() string                  { return s.name }
func (s *Scene) Registry() *ComponentRegistry  { return s.registry }
func (s *Scene) Events() *EventBus             { return s.bus }
func (s *Scene) Logger() *zap.Logger           { return s.log }
func (s *Scene) IsRunning() bool               { return s.running }
func (s *Scene) EntityCount() int              { return s.entities.Len() }
func (s *Scene) EntityExists(id EntityId) bool { return s.entities.Exists(id) }

// CreateEntity allocates a new entity.
func (s *Scene) CreateEntity() EntityId {
	return s.entities.Create()
}

// DestroyEntity clears the entity's state in every attached store, then
// releases its id. Errors raised by ComponentRemoved handlers are returned
// after the entity is gone.
func (s *Scene) DestroyEntity(id EntityId) error {
	if !s.entities.Exists(id) {
		return eris.Wrapf(ErrEntityNotFound, "destroy entity %d", id)
	}

	var errs []error
	for _, store := range s.stores {
		if store == nil {
			continue
		}
		if err := store.ResetEntity(id); err != nil {
			errs = append(errs, err)
		}
	}
	s.entities.Destroy(id)
	return errors.Join(errs...)
}

// AllEntities returns the live entities at call time, in ascending index order.
func (s *Scene) AllEntities() iter.Seq[EntityId] {
	return s.entities.All()
}

// AttachStore attaches the store for a registered component type, creating it
// on first use, and publishes ComponentAdded for the store. Attaching an already
// attached type returns the existing store.
func (s *Scene) AttachStore(ct ComponentType) (AnyStore, error) {
	if store, ok := s.Store(ct); ok {
		return store, nil
	}

	info := s.registry.info(ct)
	if info == nil {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component type %d", ct)
	}
	if info.kind != KindComponent {
		return nil, eris.Wrapf(ErrWrongKind, "%s is a %s", info.name, info.kind)
	}

	store := info.newStore()
	store.bind(s.bus, s.entities.Exists)
	if int(ct) >= len(s.stores) {
		s.stores = append(s.stores, make([]AnyStore, int(ct)+1-len(s.stores))...)
	}
	s.stores[ct] = store

	return store, s.bus.Publish(ComponentAdded{Type: ct, Name: info.name, Entity: NoEntity, Store: store})
}

// Store returns the attached store for ct.
func (s *Scene) Store(ct ComponentType) (AnyStore, bool) {
	if int(ct) >= len(s.stores) || s.stores[ct] == nil {
		return nil, false
	}
	return s.stores[ct], true
}

// DetachStore removes the store for ct and all of its state from the scene, then
// publishes ComponentRemoved for the store.
func (s *Scene) DetachStore(ct ComponentType) error {
	store, ok := s.Store(ct)
	if !ok {
		return eris.Wrapf(ErrComponentNotAttached, "%s", s.registry.Name(ct))
	}

	s.stores[ct] = nil
	store.bind(nil, nil)
	return s.bus.Publish(ComponentRemoved{Type: ct, Name: store.Name(), Entity: NoEntity, Store: store})
}

// Stores returns the attached stores ordered by component type.
func (s *Scene) Stores() []AnyStore {
	stores := make([]AnyStore, 0, len(s.stores))
	for _, store := range s.stores {
		if store != nil {
			stores = append(stores, store)
		}
	}
	return stores
}

func (s *Scene) globalSlot(ct ComponentType) *globalSlot {
	if int(ct) >= len(s.globals) {
		return nil
	}
	return s.globals[ct]
}

func (s *Scene) ensureGlobalSlot(info *componentInfo) *globalSlot {
	if slot := s.globalSlot(info.id); slot != nil {
		return slot
	}
	if int(info.id) >= len(s.globals) {
		s.globals = append(s.globals, make([]*globalSlot, int(info.id)+1-len(s.globals))...)
	}
	slot := info.newGlobal()
	s.globals[info.id] = slot
	return slot
}

func (s *Scene) globalInfo(ct ComponentType) (*componentInfo, error) {
	info := s.registry.info(ct)
	if info == nil {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "global type %d", ct)
	}
	if info.kind != KindGlobal {
		return nil, eris.Wrapf(ErrWrongKind, "%s is a %s", info.name, info.kind)
	}
	return info, nil
}

// Global returns a pointer to the global component of type ct.
func (s *Scene) Global(ct ComponentType) (any, bool) {
	slot := s.globalSlot(ct)
	if slot == nil || !slot.present {
		return nil, false
	}
	return slot.value, true
}

// Globals returns the types of the global components currently set.
func (s *Scene) Globals() []ComponentType {
	var types []ComponentType
	for ct, slot := range s.globals {
		if slot != nil && slot.present {
			types = append(types, ComponentType(ct))
		}
	}
	return types
}

// ClearGlobal removes the global component of type ct. It publishes
// GlobalComponentRemoved only when the global was set.
func (s *Scene) ClearGlobal(ct ComponentType) error {
	slot := s.globalSlot(ct)
	if slot == nil || !slot.present {
		return nil
	}
	slot.present = false
	return s.bus.Publish(GlobalComponentRemoved{Type: ct, Name: slot.info.name})
}

// SerializeGlobal encodes the global component of type ct. ok is false when it is not set.
func (s *Scene) SerializeGlobal(ct ComponentType) (data string, ok bool, err error) {
	slot := s.globalSlot(ct)
	if slot == nil {
		return "", false, nil
	}
	return slot.serialize()
}

// DeserializeGlobal sets a global component from its persisted record. Globals
// are always created when absent.
func (s *Scene) DeserializeGlobal(model GlobalComponentModel) error {
	ct, ok := s.registry.Lookup(model.Type)
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "global %q", model.Type)
	}
	info, err := s.globalInfo(ct)
	if err != nil {
		return err
	}

	slot := s.ensureGlobalSlot(info)
	if err := slot.decode(model.Data); err != nil {
		return eris.Wrapf(err, "deserialize global %s", info.name)
	}
	slot.present = true
	return s.bus.Publish(GlobalComponentAdded{Type: ct, Name: info.name, Value: slot.value})
}

// AddSystem adds a system to the scene. If the scene is running the system is
// started immediately.
func (s *Scene) AddSystem(system System) error {
	if system == nil {
		return ErrNilSystem
	}
	name := SystemName(system)
	if s.entry(system) != nil {
		return eris.Wrapf(ErrSystemAdded, "%s", name)
	}
	if owned, ok := system.(interface{ Scene() *Scene }); ok && owned.Scene() != nil {
		return eris.Wrapf(ErrSystemAdded, "%s belongs to another scene", name)
	}

	e := &systemEntry{system: system, name: name, state: SystemAdded}
	s.systems = append(s.systems, e)
	if hook, ok := system.(AddedHook); ok {
		hook.OnAdded(s)
	}

	if s.running {
		return s.startSystem(e)
	}
	return nil
}

// RemoveSystem stops the system if it is started and detaches it from the scene.
func (s *Scene) RemoveSystem(system System) error {
	e := s.entry(system)
	if e == nil {
		return eris.Wrapf(ErrSystemNotFound, "%s", SystemName(system))
	}

	if e.state == SystemStarted {
		s.stopSystem(e)
	}
	if hook, ok := system.(RemovedHook); ok {
		hook.OnRemoved(s)
	}
	s.systems = slices.DeleteFunc(s.systems, func(other *systemEntry) bool {
		return other == e
	})
	return nil
}

// Systems returns the added systems in the order they were added.
func (s *Scene) Systems() []System {
	systems := make([]System, len(s.systems))
	for i, e := range s.systems {
		systems[i] = e.system
	}
	return systems
}

// SystemState returns the lifecycle state of an added system.
func (s *Scene) SystemState(system System) (SystemState, bool) {
	e := s.entry(system)
	if e == nil {
		return 0, false
	}
	return e.state, true
}

func (s *Scene) entry(system System) *systemEntry {
	for _, e := range s.systems {
		if e.system == system {
			return e
		}
	}
	return nil
}

// Start wires every added system in order and marks the scene running. Errors
// from start hooks are joined; the systems that returned them stay started.
func (s *Scene) Start() error {
	if s.running {
		return ErrSceneRunning
	}
	s.running = true

	var errs []error
	for _, e := range s.systems {
		if err := s.startSystem(e); err != nil {
			errs = append(errs, err)
		}
	}
	s.log.Debug("scene started", zap.Int("systems", len(s.systems)), zap.Int("entities", s.entities.Len()))
	return errors.Join(errs...)
}

// Stop unwires every started system in reverse order and marks the scene stopped.
func (s *Scene) Stop() error {
	if !s.running {
		return ErrSceneNotRunning
	}

	for i := len(s.systems) - 1; i >= 0; i-- {
		if e := s.systems[i]; e.state == SystemStarted {
			s.stopSystem(e)
		}
	}
	s.running = false
	s.log.Debug("scene stopped")
	return nil
}
