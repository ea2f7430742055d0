package ecs_test

import (
	"errors"
	"testing"

	"github.com/plus3/tessera/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commandSystem struct {
	record func(c *ecs.Commands)
}

func (s *commandSystem) Bindings() []ecs.Binding {
	return []ecs.Binding{
		ecs.On(func(ev ecs.Update) error {
			s.record(ev.Commands)
			return nil
		}),
	}
}

func TestCommandsDeferredUntilFlush(t *testing.T) {
	scene := newTestScene()
	id := scene.CreateEntity()
	require.NoError(t, ecs.SetComponent(scene, id, Position{X: 1}))

	var existedDuringPostUpdate bool
	ecs.Subscribe(scene.Events(), func(ecs.PostUpdate) error {
		existedDuringPostUpdate = scene.EntityExists(id)
		return nil
	})
	require.NoError(t, scene.AddSystem(&commandSystem{record: func(c *ecs.Commands) {
		c.Destroy(id)
	}}))
	require.NoError(t, scene.Start())

	updater := ecs.NewUpdater(scene)
	require.NoError(t, updater.Once(0.016))

	assert.True(t, existedDuringPostUpdate)
	assert.False(t, scene.EntityExists(id))
	assert.Equal(t, 0, updater.Commands().Len())
}

func TestCommandsFlush(t *testing.T) {
	t.Run("spawn", func(t *testing.T) {
		scene := newTestScene()
		c := ecs.NewCommands()
		c.Spawn(func(s *ecs.Scene, id ecs.EntityId) error {
			return ecs.SetComponent(s, id, Position{X: 5})
		})
		require.NoError(t, c.Flush(scene))

		assert.Equal(t, 1, scene.EntityCount())
		positions, ok := ecs.GetComponent[Position](scene)
		require.True(t, ok)
		assert.Equal(t, 1, positions.Len())
	})

	t.Run("remove", func(t *testing.T) {
		scene := newTestScene()
		id := scene.CreateEntity()
		require.NoError(t, ecs.SetComponent(scene, id, Position{}))
		positions, _ := ecs.GetComponent[Position](scene)

		c := ecs.NewCommands()
		c.Remove(id, positions.Type())
		require.NoError(t, c.Flush(scene))

		assert.False(t, positions.IsPresentOn(id))
		assert.True(t, scene.EntityExists(id))
	})

	t.Run("deserialize attaches the store", func(t *testing.T) {
		scene := newTestScene()
		id := scene.CreateEntity()
		ct, _ := ecs.TypeOf[Position](scene.Registry())

		c := ecs.NewCommands()
		c.Deserialize(ct, ecs.ComponentDataModel{Entity: id, Value: `{"X":3}`})
		require.NoError(t, c.Flush(scene))

		pos, ok := ecs.Get[Position](scene, id)
		require.True(t, ok)
		assert.Equal(t, 3.0, pos.X)
	})

	t.Run("commands on destroyed entities are dropped", func(t *testing.T) {
		scene := newTestScene()
		id := scene.CreateEntity()
		ct, _ := ecs.TypeOf[Position](scene.Registry())

		c := ecs.NewCommands()
		c.Deserialize(ct, ecs.ComponentDataModel{Entity: id, Value: `{"X":3}`})
		c.Remove(id, ct)
		c.Destroy(id)
		c.Destroy(id)
		require.NoError(t, c.Flush(scene))

		assert.False(t, scene.EntityExists(id))
		_, ok := ecs.GetComponent[Position](scene)
		assert.False(t, ok)
	})

	t.Run("defer runs last", func(t *testing.T) {
		scene := newTestScene()
		c := ecs.NewCommands()

		var order []string
		c.Defer(func() { order = append(order, "defer") })
		c.Spawn(func(*ecs.Scene, ecs.EntityId) error {
			order = append(order, "spawn")
			return nil
		})
		require.NoError(t, c.Flush(scene))
		assert.Equal(t, []string{"spawn", "defer"}, order)
	})

	t.Run("errors are joined", func(t *testing.T) {
		scene := newTestScene()
		errSpawn := errors.New("spawn failed")
		stale := scene.CreateEntity()
		require.NoError(t, scene.DestroyEntity(stale))

		c := ecs.NewCommands()
		c.Destroy(stale)
		c.Spawn(func(*ecs.Scene, ecs.EntityId) error { return errSpawn })
		err := c.Flush(scene)

		assert.ErrorIs(t, err, ecs.ErrEntityNotFound)
		assert.ErrorIs(t, err, errSpawn)
		assert.Equal(t, 1, scene.EntityCount(), "the spawn still happened")
		assert.Equal(t, 0, c.Len())
	})

	t.Run("commands queued during a flush", func(t *testing.T) {
		scene := newTestScene()
		victim := scene.CreateEntity()

		c := ecs.NewCommands()
		var order []string
		c.Spawn(func(*ecs.Scene, ecs.EntityId) error {
			c.Destroy(victim)
			c.Defer(func() { order = append(order, "inner") })
			return nil
		})
		c.Defer(func() { order = append(order, "outer") })
		require.NoError(t, c.Flush(scene))

		assert.False(t, scene.EntityExists(victim))
		assert.Equal(t, []string{"outer", "inner"}, order)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("self-requeueing defers stop at the pass limit", func(t *testing.T) {
		scene := newTestScene()
		c := ecs.NewCommands()

		runs := 0
		var again func()
		again = func() {
			runs++
			c.Defer(again)
		}
		c.Defer(again)
		require.NoError(t, c.Flush(scene))

		assert.Positive(t, runs)
		assert.Equal(t, 1, c.Len(), "the last requeue waits for the next flush")
	})
}
