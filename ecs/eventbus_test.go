package ecs_test

import (
	"errors"
	"testing"

	"github.com/plus3/tessera/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hit struct {
	Damage int
}

func (hit) EventName() string { return "Hit" }

func TestEventBusOrdering(t *testing.T) {
	bus := ecs.NewEventBus()

	var calls []string
	for _, name := range []string{"h1", "h2", "h3"} {
		bus.Subscribe("X", func(ecs.Event) error {
			calls = append(calls, name)
			return nil
		})
	}

	require.NoError(t, bus.Publish(ecs.Signal{Name: "X"}))
	assert.Equal(t, []string{"h1", "h2", "h3"}, calls)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := ecs.NewEventBus()
	assert.NoError(t, bus.Publish(ecs.Signal{Name: "nobody"}))
	assert.Equal(t, 0, bus.SubscriberCount("nobody"))
}

func TestEventBusTypedSubscribe(t *testing.T) {
	bus := ecs.NewEventBus()

	var got []int
	ecs.Subscribe(bus, func(e hit) error {
		got = append(got, e.Damage)
		return nil
	})

	require.NoError(t, bus.Publish(hit{Damage: 3}))
	require.NoError(t, bus.Publish(hit{Damage: 5}))
	assert.Equal(t, []int{3, 5}, got)

	err := bus.Publish(ecs.Signal{Name: "Hit"})
	assert.ErrorIs(t, err, ecs.ErrPayloadMismatch)
	assert.Equal(t, []int{3, 5}, got)
}

func TestEventBusSignalArgs(t *testing.T) {
	bus := ecs.NewEventBus()

	var args []any
	bus.Subscribe("spawned", func(e ecs.Event) error {
		args = e.(ecs.Signal).Args
		return nil
	})

	require.NoError(t, bus.Publish(ecs.Signal{Name: "spawned", Args: []any{1, "two"}}))
	assert.Equal(t, []any{1, "two"}, args)
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := ecs.NewEventBus()

	count := 0
	sub := bus.Subscribe("X", func(ecs.Event) error {
		count++
		return nil
	})
	assert.Equal(t, "X", sub.Name())
	assert.False(t, sub.IsZero())

	require.NoError(t, bus.Publish(ecs.Signal{Name: "X"}))
	assert.True(t, bus.Unsubscribe(sub))
	assert.False(t, bus.Unsubscribe(sub))
	assert.False(t, bus.Unsubscribe(ecs.Subscription{}))
	require.NoError(t, bus.Publish(ecs.Signal{Name: "X"}))

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.SubscriberCount("X"))
}

func TestEventBusSelfUnsubscribe(t *testing.T) {
	bus := ecs.NewEventBus()

	var calls []string
	var self ecs.Subscription
	bus.Subscribe("X", func(ecs.Event) error {
		calls = append(calls, "before")
		return nil
	})
	self = bus.Subscribe("X", func(ecs.Event) error {
		calls = append(calls, "self")
		bus.Unsubscribe(self)
		return nil
	})
	bus.Subscribe("X", func(ecs.Event) error {
		calls = append(calls, "after")
		return nil
	})

	require.NoError(t, bus.Publish(ecs.Signal{Name: "X"}))
	assert.Equal(t, []string{"before", "self", "after"}, calls)

	calls = nil
	require.NoError(t, bus.Publish(ecs.Signal{Name: "X"}))
	assert.Equal(t, []string{"before", "after"}, calls)
}

func TestEventBusUnsubscribeOtherDuringDispatch(t *testing.T) {
	bus := ecs.NewEventBus()

	var calls []string
	var victim ecs.Subscription
	bus.Subscribe("X", func(ecs.Event) error {
		calls = append(calls, "first")
		bus.Unsubscribe(victim)
		return nil
	})
	victim = bus.Subscribe("X", func(ecs.Event) error {
		calls = append(calls, "victim")
		return nil
	})

	require.NoError(t, bus.Publish(ecs.Signal{Name: "X"}))
	assert.Equal(t, []string{"first"}, calls, "a subscriber removed mid-dispatch is skipped")
}

func TestEventBusSubscribeDuringDispatch(t *testing.T) {
	bus := ecs.NewEventBus()

	var calls []string
	bus.Subscribe("X", func(ecs.Event) error {
		calls = append(calls, "first")
		bus.Subscribe("X", func(ecs.Event) error {
			calls = append(calls, "late")
			return nil
		})
		return nil
	})

	require.NoError(t, bus.Publish(ecs.Signal{Name: "X"}))
	assert.Equal(t, []string{"first"}, calls, "new subscribers wait for the next publish")
	assert.Equal(t, 2, bus.SubscriberCount("X"))
}

func TestEventBusBestEffortDelivery(t *testing.T) {
	bus := ecs.NewEventBus()
	errBoom := errors.New("boom")

	var calls []string
	bus.Subscribe("X", func(ecs.Event) error {
		calls = append(calls, "fails")
		return errBoom
	})
	bus.Subscribe("X", func(ecs.Event) error {
		calls = append(calls, "panics")
		panic("kaboom")
	})
	bus.Subscribe("X", func(ecs.Event) error {
		calls = append(calls, "ok")
		return nil
	})

	err := bus.Publish(ecs.Signal{Name: "X"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, err, ecs.ErrHandlerPanicked)
	assert.Equal(t, []string{"fails", "panics", "ok"}, calls, "every handler runs")

	assert.Equal(t, 3, bus.SubscriberCount("X"), "subscriber list is intact")
	calls = nil
	_ = bus.Publish(ecs.Signal{Name: "X"})
	assert.Equal(t, []string{"fails", "panics", "ok"}, calls)
}

func TestEventBusStats(t *testing.T) {
	bus := ecs.NewEventBus()
	bus.Subscribe("A", func(ecs.Event) error { return nil })
	bus.Subscribe("B", func(ecs.Event) error { return errors.New("nope") })

	_ = bus.Publish(ecs.Signal{Name: "A"})
	_ = bus.Publish(ecs.Signal{Name: "A"})
	_ = bus.Publish(ecs.Signal{Name: "B"})

	stats := bus.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "A", stats[0].Name)
	assert.Equal(t, int64(2), stats[0].Published)
	assert.Equal(t, int64(0), stats[0].Failures)
	assert.Equal(t, "B", stats[1].Name)
	assert.Equal(t, int64(1), stats[1].Failures)
	assert.Equal(t, 1, stats[1].Subscribers)
}

func TestEventBusNilHandlerPanics(t *testing.T) {
	bus := ecs.NewEventBus()
	assert.Panics(t, func() {
		bus.Subscribe("X", nil)
	})
}
