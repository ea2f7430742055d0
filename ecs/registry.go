package ecs

import (
	"fmt"
	"math"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
)

// ComponentType is the small integer assigned to a component or global component
// type when it is registered. Scenes index their stores and global slots by it.
type ComponentType uint16

// ComponentKind distinguishes per-entity components from global components.
type ComponentKind uint8

const (
	KindComponent ComponentKind = iota
	KindGlobal
)

func (k ComponentKind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindGlobal:
		return "global"
	default:
		return fmt.Sprintf("ComponentKind(%d)", uint8(k))
	}
}

// DeserializePolicy decides what DeserializeState does for an entity that has no state yet.
type DeserializePolicy uint8

const (
	// DeserializeUpsert creates the component on entities that do not have it.
	DeserializeUpsert DeserializePolicy = iota
	// DeserializeUpdateOnly only updates existing state and reports ErrComponentNotPresent otherwise.
	DeserializeUpdateOnly
)

type componentInfo struct {
	id     ComponentType
	name   string
	typ    reflect.Type
	kind   ComponentKind
	policy DeserializePolicy

	newStore  func() AnyStore
	newGlobal func() *globalSlot
}

// ComponentRegistry manages component type registration for a set of scenes.
// Each registered type gets a ComponentType discriminant and a name used by
// the persistence records.
type ComponentRegistry struct {
	infos  []*componentInfo
	byType map[reflect.Type]ComponentType
	byName map[string]ComponentType
}

// NewComponentRegistry creates a new component registry. The built-in
// TargetRate global is registered first.
func NewComponentRegistry() *ComponentRegistry {
	r := &ComponentRegistry{
		byType: make(map[reflect.Type]ComponentType),
		byName: make(map[string]ComponentType),
	}
	RegisterGlobal[TargetRate](r)
	return r
}

type componentOptions struct {
	name   string
	policy DeserializePolicy
	codec  any
}

// ComponentOption configures a component type at registration.
type ComponentOption func(*componentOptions)

// WithName overrides the persisted type name, which defaults to the Go type name.
func WithName(name string) ComponentOption {
	return func(o *componentOptions) {
		o.name = name
	}
}

// WithPolicy sets the DeserializeState policy. Global components ignore it.
func WithPolicy(policy DeserializePolicy) ComponentOption {
	return func(o *componentOptions) {
		o.policy = policy
	}
}

// WithCodec replaces the default JSONCodec for the registered type.
func WithCodec[T any](codec Codec[T]) ComponentOption {
	return func(o *componentOptions) {
		o.codec = codec
	}
}

// RegisterComponent registers a per-entity component type with the given registry.
// Registering the same type twice returns the existing ComponentType.
func RegisterComponent[T any](r *ComponentRegistry, opts ...ComponentOption) ComponentType {
	info, created := register[T](r, KindComponent, opts)
	if !created {
		return info.id
	}

	codec := info.codec.(Codec[T])
	info.newStore = func() AnyStore {
		return newComponentStore[T](info.componentInfo, codec)
	}
	return info.id
}

// RegisterGlobal registers a global (singleton) component type with the given registry.
func RegisterGlobal[T any](r *ComponentRegistry, opts ...ComponentOption) ComponentType {
	info, created := register[T](r, KindGlobal, opts)
	if !created {
		return info.id
	}

	codec := info.codec.(Codec[T])
	info.newGlobal = func() *globalSlot {
		return newGlobalSlot[T](info.componentInfo, codec)
	}
	return info.id
}

type registration struct {
	*componentInfo
	codec any
}

func register[T any](r *ComponentRegistry, kind ComponentKind, opts []ComponentOption) (registration, bool) {
	t := reflect.TypeFor[T]()
	if id, ok := r.byType[t]; ok {
		info := r.infos[id]
		if info.kind != kind {
			panic("component type " + t.String() + " already registered as " + info.kind.String())
		}
		return registration{componentInfo: info}, false
	}

	o := componentOptions{name: t.Name()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = t.String()
	}
	if o.codec == nil {
		o.codec = JSONCodec[T]{}
	}
	if _, ok := o.codec.(Codec[T]); !ok {
		panic("codec for " + t.String() + " has the wrong value type")
	}
	if _, ok := r.byName[o.name]; ok {
		panic("component name " + o.name + " already registered")
	}
	if len(r.infos) >= math.MaxUint16 {
		panic("too many component types")
	}

	info := &componentInfo{
		id:     ComponentType(len(r.infos)),
		name:   o.name,
		typ:    t,
		kind:   kind,
		policy: o.policy,
	}
	r.infos = append(r.infos, info)
	r.byType[t] = info.id
	r.byName[o.name] = info.id

	return registration{componentInfo: info, codec: o.codec}, true
}

// TypeOf returns the ComponentType registered for T.
func TypeOf[T any](r *ComponentRegistry) (ComponentType, bool) {
	id, ok := r.byType[reflect.TypeFor[T]()]
	return id, ok
}

// Lookup resolves a persisted type name.
func (r *ComponentRegistry) Lookup(name string) (ComponentType, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Name returns the persisted name of a registered type, or "" if ct is unknown.
func (r *ComponentRegistry) Name(ct ComponentType) string {
	if info := r.info(ct); info != nil {
		return info.name
	}
	return ""
}

// Kind returns the kind of a registered type.
func (r *ComponentRegistry) Kind(ct ComponentType) (ComponentKind, bool) {
	if info := r.info(ct); info != nil {
		return info.kind, true
	}
	return 0, false
}

// Policy returns the deserialize policy of a registered component type.
func (r *ComponentRegistry) Policy(ct ComponentType) DeserializePolicy {
	if info := r.info(ct); info != nil {
		return info.policy
	}
	return DeserializeUpsert
}

// Len returns the number of registered types of both kinds.
func (r *ComponentRegistry) Len() int {
	return len(r.infos)
}

// Names returns the persisted names of every registered type of the given kind, in registration order.
func (r *ComponentRegistry) Names(kind ComponentKind) []string {
	names := make([]string, 0, len(r.infos))
	for _, info := range r.infos {
		if info.kind == kind {
			names = append(names, info.name)
		}
	}
	return names
}

// Schema returns the JSON schema of a registered type's value.
// It describes the default codec's encoding.
func (r *ComponentRegistry) Schema(ct ComponentType) ([]byte, error) {
	info := r.info(ct)
	if info == nil {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component type %d", ct)
	}
	schema := jsonschema.Reflect(reflect.New(info.typ).Interface())
	bz, err := schema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrapf(err, "schema for %s", info.name)
	}
	return bz, nil
}

func (r *ComponentRegistry) info(ct ComponentType) *componentInfo {
	if int(ct) >= len(r.infos) {
		return nil
	}
	return r.infos[ct]
}

func (r *ComponentRegistry) infoOf(t reflect.Type) *componentInfo {
	id, ok := r.byType[t]
	if !ok {
		return nil
	}
	return r.infos[id]
}
