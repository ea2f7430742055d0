package ecs

// Event is a payload published on an EventBus. Its name selects the subscribers.
// Event types must report their name from the zero value, except Signal whose
// name is carried in the value.
type Event interface {
	EventName() string
}

// Names of the built-in events.
const (
	EventPreUpdate              = "PreUpdate"
	EventUpdate                 = "Update"
	EventPostUpdate             = "PostUpdate"
	EventComponentAdded         = "ComponentAdded"
	EventComponentRemoved       = "ComponentRemoved"
	EventGlobalComponentAdded   = "GlobalComponentAdded"
	EventGlobalComponentRemoved = "GlobalComponentRemoved"
)

// PreUpdate is the first event of a frame.
type PreUpdate struct {
	DeltaTime float64
	Commands  *Commands
}

func (PreUpdate) EventName() string { return EventPreUpdate }

// Update is the main event of a frame.
type Update struct {
	DeltaTime float64
	Commands  *Commands
}

func (Update) EventName() string { return EventUpdate }

// PostUpdate is the last event of a frame. Commands recorded during the frame
// are flushed after it.
type PostUpdate struct {
	DeltaTime float64
	Commands  *Commands
}

func (PostUpdate) EventName() string { return EventPostUpdate }

// ComponentAdded is published when a store is attached to a scene (Entity is
// NoEntity) or when an entity gets state in a store for the first time.
type ComponentAdded struct {
	Type   ComponentType
	Name   string
	Entity EntityId
	Store  AnyStore
}

func (ComponentAdded) EventName() string { return EventComponentAdded }

// StoreLevel reports whether the event is about the whole store rather than one entity.
func (e ComponentAdded) StoreLevel() bool { return e.Entity == NoEntity }

// ComponentRemoved is published when a store is detached from a scene (Entity
// is NoEntity) or when an entity's state is reset.
type ComponentRemoved struct {
	Type   ComponentType
	Name   string
	Entity EntityId
	Store  AnyStore
}

func (ComponentRemoved) EventName() string { return EventComponentRemoved }

// StoreLevel reports whether the event is about the whole store rather than one entity.
func (e ComponentRemoved) StoreLevel() bool { return e.Entity == NoEntity }

// GlobalComponentAdded is published every time a global component is set.
// Value is a pointer to the stored instance.
type GlobalComponentAdded struct {
	Type  ComponentType
	Name  string
	Value any
}

func (GlobalComponentAdded) EventName() string { return EventGlobalComponentAdded }

// GlobalComponentRemoved is published when a global component is cleared.
type GlobalComponentRemoved struct {
	Type ComponentType
	Name string
}

func (GlobalComponentRemoved) EventName() string { return EventGlobalComponentRemoved }

// Signal is an event whose name is chosen at runtime, for publishers such as
// scripts that cannot declare a Go type per event.
type Signal struct {
	Name string
	Args []any
}

func (s Signal) EventName() string { return s.Name }
