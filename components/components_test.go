package components_test

import (
	"testing"

	"github.com/plus3/tessera/components"
	"github.com/plus3/tessera/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScene(t *testing.T) *ecs.Scene {
	t.Helper()
	registry := ecs.NewComponentRegistry()
	components.Register(registry)
	return ecs.NewScene(registry)
}

func TestMovementSystem(t *testing.T) {
	scene := newScene(t)
	id := scene.CreateEntity()
	require.NoError(t, ecs.SetComponent(scene, id, components.NewTransform(components.Vec3{X: 1, Y: 2, Z: 3})))
	require.NoError(t, ecs.SetComponent(scene, id, components.Velocity{Linear: components.Vec3{X: 2}}))

	still := scene.CreateEntity()
	require.NoError(t, ecs.SetComponent(scene, still, components.NewTransform(components.Vec3{})))

	require.NoError(t, scene.AddSystem(&components.MovementSystem{}))
	require.NoError(t, scene.Start())
	require.NoError(t, scene.Events().Publish(ecs.Update{DeltaTime: 0.5}))

	transform, ok := ecs.Get[components.Transform](scene, id)
	require.True(t, ok)
	assert.Equal(t, components.Vec3{X: 2, Y: 2, Z: 3}, transform.Position)
	assert.Equal(t, components.Vec3{X: 1, Y: 1, Z: 1}, transform.Scale)

	transform, _ = ecs.Get[components.Transform](scene, still)
	assert.Equal(t, components.Vec3{}, transform.Position)
}

func TestMovementSystemWithoutStores(t *testing.T) {
	scene := newScene(t)
	require.NoError(t, scene.AddSystem(&components.MovementSystem{}))
	require.NoError(t, scene.Start())
	assert.NoError(t, scene.Events().Publish(ecs.Update{DeltaTime: 1}))
}

func TestLifetimeSystem(t *testing.T) {
	scene := newScene(t)
	short := scene.CreateEntity()
	long := scene.CreateEntity()
	require.NoError(t, ecs.SetComponent(scene, short, components.Lifetime{Remaining: 0.5}))
	require.NoError(t, ecs.SetComponent(scene, long, components.Lifetime{Remaining: 5}))

	require.NoError(t, scene.AddSystem(&components.LifetimeSystem{}))
	require.NoError(t, scene.Start())

	updater := ecs.NewUpdater(scene)
	require.NoError(t, updater.Once(0.25))
	assert.True(t, scene.EntityExists(short))

	require.NoError(t, updater.Once(0.25))
	assert.False(t, scene.EntityExists(short))
	assert.True(t, scene.EntityExists(long))
}

func TestTransformRoundTrip(t *testing.T) {
	scene := newScene(t)
	transforms, err := ecs.AddComponent[components.Transform](scene)
	require.NoError(t, err)

	src := scene.CreateEntity()
	dst := scene.CreateEntity()
	want := components.Transform{
		Position: components.Vec3{X: 1.25, Y: -3, Z: 1e6},
		Rotation: components.Vec3{Z: 3.14159},
		Scale:    components.Vec3{X: 2, Y: 2, Z: 0.5},
	}
	require.NoError(t, transforms.Set(src, want))

	data, ok, err := transforms.SerializeState(src)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{
		"position": {"x": 1.25, "y": -3, "z": 1000000},
		"rotation": {"x": 0, "y": 0, "z": 3.14159},
		"scale": {"x": 2, "y": 2, "z": 0.5}
	}`, data)

	require.NoError(t, transforms.DeserializeState(ecs.ComponentDataModel{Entity: dst, Value: data}))
	got, _ := transforms.Get(dst)
	assert.Equal(t, want, *got)
}

func TestDeserializePolicies(t *testing.T) {
	scene := newScene(t)
	transforms, _ := ecs.AddComponent[components.Transform](scene)
	velocities, _ := ecs.AddComponent[components.Velocity](scene)
	lifetimes, _ := ecs.AddComponent[components.Lifetime](scene)
	id := scene.CreateEntity()

	assert.NoError(t, transforms.DeserializeState(ecs.ComponentDataModel{Entity: id, Value: `{"position":{"x":1}}`}),
		"Transform is created on demand")
	assert.True(t, transforms.IsPresentOn(id))

	assert.NoError(t, velocities.DeserializeState(ecs.ComponentDataModel{Entity: id, Value: `{"linear":{"x":1}}`}),
		"Velocity is created on demand")
	assert.True(t, velocities.IsPresentOn(id))

	err := lifetimes.DeserializeState(ecs.ComponentDataModel{Entity: id, Value: `{"remaining":3}`})
	assert.ErrorIs(t, err, ecs.ErrComponentNotPresent, "Lifetime is update-only")
	assert.False(t, lifetimes.IsPresentOn(id))

	require.NoError(t, lifetimes.Set(id, components.Lifetime{Remaining: 1}))
	require.NoError(t, lifetimes.DeserializeState(ecs.ComponentDataModel{Entity: id, Value: `{"remaining":3}`}))
	l, _ := lifetimes.Get(id)
	assert.Equal(t, 3.0, l.Remaining)
}

func TestRegisterSystems(t *testing.T) {
	systems := ecs.NewSystemRegistry()
	components.RegisterSystems(systems)

	assert.Equal(t, []string{"LifetimeSystem", "MovementSystem"}, systems.Names())
	sys, err := systems.New("MovementSystem")
	require.NoError(t, err)
	assert.IsType(t, &components.MovementSystem{}, sys)

	_, err = systems.New("PhysicsSystem")
	assert.ErrorIs(t, err, ecs.ErrUnknownSystem)
}
