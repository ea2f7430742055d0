package ecs_test

import (
	"slices"
	"testing"

	"github.com/plus3/tessera/ecs"
	"github.com/stretchr/testify/assert"
)

func TestEntityId(t *testing.T) {
	id := ecs.NewEntityId(7, 3)
	assert.Equal(t, uint32(7), id.Index())
	assert.Equal(t, uint32(3), id.Generation())
}

func TestEntityRegistry(t *testing.T) {
	t.Run("create and destroy", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		a := r.Create()
		b := r.Create()

		assert.NotEqual(t, a, b)
		assert.True(t, r.Exists(a))
		assert.True(t, r.Exists(b))
		assert.Equal(t, 2, r.Len())

		assert.True(t, r.Destroy(a))
		assert.False(t, r.Exists(a))
		assert.False(t, r.Destroy(a), "destroying twice is a no-op")
		assert.Equal(t, 1, r.Len())
	})

	t.Run("recycled index gets new generation", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		a := r.Create()
		r.Destroy(a)
		b := r.Create()

		assert.Equal(t, a.Index(), b.Index())
		assert.NotEqual(t, a.Generation(), b.Generation())
		assert.False(t, r.Exists(a), "stale id must not alias the recycled entity")
		assert.True(t, r.Exists(b))
	})

	t.Run("no entity never exists", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		r.Create()
		assert.False(t, r.Exists(ecs.NoEntity))
	})

	t.Run("all is a snapshot", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		a := r.Create()
		b := r.Create()
		c := r.Create()
		r.Destroy(b)

		all := r.All()
		r.Create()

		assert.Equal(t, []ecs.EntityId{a, c}, slices.Collect(all))
	})
}
