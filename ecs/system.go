package ecs

import (
	"fmt"
	"reflect"

	"github.com/rotisserie/eris"
)

// System is a behavior unit attached to a Scene. Bindings declares which events
// invoke it and which component stores and globals it wants cached. The table
// is read every time the system starts.
type System interface {
	Bindings() []Binding
}

// Optional lifecycle hooks a System may implement.
type (
	AddedHook interface {
		OnAdded(scene *Scene)
	}
	StartHook interface {
		OnStart(scene *Scene) error
	}
	StopHook interface {
		OnStop(scene *Scene)
	}
	RemovedHook interface {
		OnRemoved(scene *Scene)
	}
	// NamedSystem overrides the type name SystemName reports, for systems
	// whose behavior is chosen at runtime.
	NamedSystem interface {
		SystemName() string
	}
	// TransientSystem marks systems that the host adds at runtime and that
	// scene snapshots leave out.
	TransientSystem interface {
		Transient() bool
	}
)

// IsTransient reports whether system is left out of scene snapshots.
func IsTransient(system System) bool {
	t, ok := system.(TransientSystem)
	return ok && t.Transient()
}

// SystemBase tracks the owning scene. Embed it to get the added/removed hooks.
type SystemBase struct {
	scene *Scene
}

func (b *SystemBase) OnAdded(scene *Scene) { b.scene = scene }

func (b *SystemBase) OnRemoved(*Scene) { b.scene = nil }

// Scene returns the scene the system is added to, or nil.
func (b *SystemBase) Scene() *Scene { return b.scene }

// SystemState is the lifecycle state of a system within a scene.
type SystemState uint8

const (
	SystemAdded SystemState = iota
	SystemStarted
	SystemStopped
)

func (s SystemState) String() string {
	switch s {
	case SystemAdded:
		return "added"
	case SystemStarted:
		return "started"
	case SystemStopped:
		return "stopped"
	default:
		return fmt.Sprintf("SystemState(%d)", uint8(s))
	}
}

type bindingKind uint8

const (
	bindEvent bindingKind = iota
	bindComponent
	bindGlobal
)

// Binding is one entry of a system's wiring table. Build bindings with On,
// OnName, Cache and CacheGlobal.
type Binding struct {
	kind bindingKind

	event   string
	handler Handler

	typ reflect.Type
	set func(value any)
}

func (b Binding) String() string {
	switch b.kind {
	case bindEvent:
		return "on " + b.event
	case bindComponent:
		return "cache " + b.typ.String()
	default:
		return "cache global " + b.typ.String()
	}
}

// On binds fn to events of type E.
func On[E Event](fn func(E) error) Binding {
	var zero E
	name := zero.EventName()
	if fn == nil {
		return Binding{kind: bindEvent, event: name}
	}

	return Binding{
		kind:  bindEvent,
		event: name,
		handler: func(event Event) error {
			typed, ok := event.(E)
			if !ok {
				return eris.Wrapf(ErrPayloadMismatch, "%s carried %T", name, event)
			}
			return fn(typed)
		},
	}
}

// OnName binds handler to events published under name, such as Signal events.
func OnName(name string, handler Handler) Binding {
	return Binding{kind: bindEvent, event: name, handler: handler}
}

// Cache keeps ref pointed at the scene's store for T while the system is started.
func Cache[T any](ref *ComponentRef[T]) Binding {
	b := Binding{kind: bindComponent, typ: reflect.TypeFor[T]()}
	if ref == nil {
		return b
	}

	b.set = func(value any) {
		if value == nil {
			ref.store = nil
			return
		}
		ref.store = value.(*ComponentStore[T])
	}
	return b
}

// CacheGlobal keeps ref pointed at the scene's global T while the system is started.
func CacheGlobal[T any](ref *GlobalRef[T]) Binding {
	b := Binding{kind: bindGlobal, typ: reflect.TypeFor[T]()}
	if ref == nil {
		return b
	}

	b.set = func(value any) {
		if value == nil {
			ref.ptr = nil
			return
		}
		ref.ptr = value.(*T)
	}
	return b
}

// SystemName returns the name a system is persisted under: its Go type name
// unless it implements NamedSystem.
func SystemName(system System) string {
	if named, ok := system.(NamedSystem); ok {
		return named.SystemName()
	}
	t := reflect.TypeOf(system)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
