package ecs_test

import (
	"slices"
	"testing"

	"github.com/plus3/tessera/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitiesWith(t *testing.T) {
	scene := newTestScene()
	positions := mustStore[Position](scene)
	velocities := mustStore[Velocity](scene)
	posType, velType := positions.Type(), velocities.Type()

	both := scene.CreateEntity()
	onlyPos := scene.CreateEntity()
	onlyVel := scene.CreateEntity()
	scene.CreateEntity()

	require.NoError(t, positions.Set(both, Position{}))
	require.NoError(t, velocities.Set(both, Velocity{}))
	require.NoError(t, positions.Set(onlyPos, Position{}))
	require.NoError(t, velocities.Set(onlyVel, Velocity{}))

	t.Run("intersection", func(t *testing.T) {
		got := slices.Collect(scene.EntitiesWith(posType, velType))
		assert.Equal(t, []ecs.EntityId{both}, got)
	})

	t.Run("single type", func(t *testing.T) {
		got := slices.Collect(scene.EntitiesWith(posType))
		assert.ElementsMatch(t, []ecs.EntityId{both, onlyPos}, got)
	})

	t.Run("no types yields every entity", func(t *testing.T) {
		got := slices.Collect(scene.EntitiesWith())
		assert.Len(t, got, 4)
	})

	t.Run("detached type yields nothing", func(t *testing.T) {
		nameType, _ := ecs.TypeOf[Name](scene.Registry())
		got := slices.Collect(scene.EntitiesWith(posType, nameType))
		assert.Empty(t, got)
	})

	t.Run("membership follows changes", func(t *testing.T) {
		require.NoError(t, velocities.Set(onlyPos, Velocity{}))
		require.NoError(t, positions.ResetEntity(both))

		got := slices.Collect(scene.EntitiesWith(posType, velType))
		assert.Equal(t, []ecs.EntityId{onlyPos}, got)
	})

	t.Run("order is stable", func(t *testing.T) {
		first := slices.Collect(scene.EntitiesWith(velType, posType))
		second := slices.Collect(scene.EntitiesWith(posType, velType))
		assert.Equal(t, first, second)
	})
}

func TestEntitiesWithEarlyStop(t *testing.T) {
	scene := newTestScene()
	positions := mustStore[Position](scene)
	for range 10 {
		require.NoError(t, positions.Set(scene.CreateEntity(), Position{}))
	}

	count := 0
	for range scene.EntitiesWith(positions.Type()) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestEntitiesWithDestroyDuringIteration(t *testing.T) {
	scene := newTestScene()
	positions := mustStore[Position](scene)
	for range 5 {
		require.NoError(t, positions.Set(scene.CreateEntity(), Position{}))
	}

	visited := 0
	for id := range scene.EntitiesWith(positions.Type()) {
		visited++
		require.NoError(t, scene.DestroyEntity(id))
	}
	assert.Equal(t, 5, visited)
	assert.Equal(t, 0, positions.Len())
}

func TestEach2(t *testing.T) {
	scene := newTestScene()
	a := scene.CreateEntity()
	b := scene.CreateEntity()
	require.NoError(t, ecs.SetComponent(scene, a, Position{X: 1}))
	require.NoError(t, ecs.SetComponent(scene, a, Name{Value: "a"}))
	require.NoError(t, ecs.SetComponent(scene, b, Position{X: 2}))

	var seen []string
	ecs.Each2(scene, func(id ecs.EntityId, pos *Position, name *Name) bool {
		seen = append(seen, name.Value)
		pos.X = 100
		return true
	})

	assert.Equal(t, []string{"a"}, seen)
	pos, _ := ecs.Get[Position](scene, a)
	assert.Equal(t, 100.0, pos.X)

	called := false
	ecs.Each2(scene, func(ecs.EntityId, *Position, *Health) bool {
		called = true
		return true
	})
	assert.False(t, called, "no Health store attached")
}
