package ecs_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/plus3/tessera/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upperCodec struct{}

func (upperCodec) Encode(value *Name) (string, error) { return "name:" + value.Value, nil }

func (upperCodec) Decode(data string, value *Name) error {
	value.Value = data[len("name:"):]
	return nil
}

func TestRegisterComponent(t *testing.T) {
	registry := ecs.NewComponentRegistry()

	pos := ecs.RegisterComponent[Position](registry)
	vel := ecs.RegisterComponent[Velocity](registry, ecs.WithName("vel"), ecs.WithPolicy(ecs.DeserializeUpdateOnly))
	grav := ecs.RegisterGlobal[Gravity](registry)

	assert.NotEqual(t, pos, vel)
	assert.Equal(t, pos, ecs.RegisterComponent[Position](registry), "registration is idempotent")

	ct, ok := ecs.TypeOf[Velocity](registry)
	assert.True(t, ok)
	assert.Equal(t, vel, ct)

	ct, ok = registry.Lookup("vel")
	assert.True(t, ok)
	assert.Equal(t, vel, ct)
	assert.Equal(t, "Position", registry.Name(pos))
	assert.Equal(t, ecs.DeserializeUpdateOnly, registry.Policy(vel))

	kind, ok := registry.Kind(grav)
	assert.True(t, ok)
	assert.Equal(t, ecs.KindGlobal, kind)

	assert.Equal(t, []string{"Position", "vel"}, registry.Names(ecs.KindComponent))
	assert.Equal(t, []string{"TargetRate", "Gravity"}, registry.Names(ecs.KindGlobal))
	assert.Equal(t, 4, registry.Len())

	_, ok = ecs.TypeOf[Health](registry)
	assert.False(t, ok)
	assert.Empty(t, registry.Name(ecs.ComponentType(999)))
}

func TestRegisterPanics(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)

	assert.Panics(t, func() {
		ecs.RegisterGlobal[Position](registry)
	}, "kind mismatch")
	assert.Panics(t, func() {
		ecs.RegisterComponent[Velocity](registry, ecs.WithName("Position"))
	}, "name clash")
	assert.Panics(t, func() {
		ecs.RegisterComponent[Health](registry, ecs.WithCodec[Name](upperCodec{}))
	}, "codec for another type")
}

func TestCustomCodec(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Name](registry, ecs.WithCodec[Name](upperCodec{}))
	scene := ecs.NewScene(registry)
	names := mustStore[Name](scene)
	id := scene.CreateEntity()

	require.NoError(t, names.Set(id, Name{Value: "bob"}))
	data, ok, err := names.SerializeState(id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "name:bob", data)
}

func TestRegistrySchema(t *testing.T) {
	registry := newTestRegistry()
	ct, _ := ecs.TypeOf[Health](registry)

	bz, err := registry.Schema(ct)
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(bz, &schema))
	assert.Contains(t, string(bz), "Current")
	assert.Contains(t, string(bz), "Max")

	_, err = registry.Schema(ecs.ComponentType(999))
	assert.ErrorIs(t, err, ecs.ErrComponentNotRegistered)
}
