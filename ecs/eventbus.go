package ecs

import (
	"errors"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Handler receives events published under the name it subscribed to.
type Handler func(Event) error

// Subscription identifies one subscribed handler. It is the token needed to unsubscribe.
type Subscription struct {
	id   uuid.UUID
	name string
}

// ID returns the unique id of the subscription.
func (s Subscription) ID() uuid.UUID { return s.id }

// Name returns the event name the subscription listens to.
func (s Subscription) Name() string { return s.name }

// IsZero reports whether s is the zero Subscription.
func (s Subscription) IsZero() bool { return s.id == uuid.Nil }

type subscriber struct {
	id      uuid.UUID
	handler Handler
	removed bool
}

// topic holds the subscribers of one event name. Topics whose names share an
// xxhash are chained through next.
type topic struct {
	name        string
	next        *topic
	subscribers []*subscriber

	published    int64
	failures     int64
	lastDuration time.Duration
}

// EventBus is a synchronous publish/subscribe hub keyed by event name.
//
// Publish calls every handler subscribed to the event's name, in subscription
// order, on the calling goroutine. Dispatch iterates a snapshot of the
// subscriber list, so handlers may subscribe or unsubscribe (including
// themselves) while an event is being delivered. A handler removed during a
// publish is skipped for the rest of that publish.
//
// Delivery is best-effort: a handler that returns an error or panics does not
// stop the remaining handlers. All failures are joined and returned by Publish.
//
// The bus is not safe for concurrent use.
type EventBus struct {
	topics *intmap.Map[uint64, *topic]
	order  []*topic
	log    *zap.Logger
}

// EventBusOption configures an EventBus.
type EventBusOption func(*EventBus)

// WithBusLogger sets the logger used to report handler panics.
func WithBusLogger(log *zap.Logger) EventBusOption {
	return func(b *EventBus) {
		b.log = log
	}
}

// NewEventBus creates an empty event bus.
func NewEventBus(opts ...EventBusOption) *EventBus {
	b := &EventBus{
		topics: intmap.New[uint64, *topic](32),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for events named name. Handlers are called in the
// order they were subscribed.
func (b *EventBus) Subscribe(name string, handler Handler) Subscription {
	if handler == nil {
		panic("nil handler subscribed to " + name)
	}

	t := b.ensureTopic(name)
	s := &subscriber{id: uuid.New(), handler: handler}

	// Always copy so a publish in progress keeps its snapshot.
	subscribers := make([]*subscriber, len(t.subscribers), len(t.subscribers)+1)
	copy(subscribers, t.subscribers)
	t.subscribers = append(subscribers, s)

	return Subscription{id: s.id, name: name}
}

// Unsubscribe removes the subscription. Returns false if it was not subscribed.
func (b *EventBus) Unsubscribe(sub Subscription) bool {
	t := b.lookup(sub.name)
	if t == nil {
		return false
	}

	for i, s := range t.subscribers {
		if s.id != sub.id {
			continue
		}
		s.removed = true

		subscribers := make([]*subscriber, 0, len(t.subscribers)-1)
		subscribers = append(subscribers, t.subscribers[:i]...)
		subscribers = append(subscribers, t.subscribers[i+1:]...)
		t.subscribers = subscribers
		return true
	}
	return false
}

// Publish delivers event to every handler subscribed to its name.
func (b *EventBus) Publish(event Event) error {
	name := event.EventName()
	t := b.lookup(name)
	if t == nil {
		return nil
	}

	start := time.Now()
	subscribers := t.subscribers
	t.published++

	var errs []error
	for _, s := range subscribers {
		if s.removed {
			continue
		}
		if err := b.invoke(name, s.handler, event); err != nil {
			t.failures++
			errs = append(errs, err)
		}
	}

	t.lastDuration = time.Since(start)
	return errors.Join(errs...)
}

func (b *EventBus) invoke(name string, handler Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked", zap.String("event", name), zap.Any("panic", r))
			err = eris.Wrapf(ErrHandlerPanicked, "handle %s: %v", name, r)
		}
	}()

	if err := handler(event); err != nil {
		return eris.Wrapf(err, "handle %s", name)
	}
	return nil
}

// SubscriberCount returns the number of handlers subscribed to name.
func (b *EventBus) SubscriberCount(name string) int {
	t := b.lookup(name)
	if t == nil {
		return 0
	}
	return len(t.subscribers)
}

// EventStats describes the activity of one event name.
type EventStats struct {
	Name         string
	Subscribers  int
	Published    int64
	Failures     int64
	LastDuration time.Duration
}

// Stats returns per-event statistics in the order event names were first seen.
func (b *EventBus) Stats() []EventStats {
	stats := make([]EventStats, 0, len(b.order))
	for _, t := range b.order {
		stats = append(stats, EventStats{
			Name:         t.name,
			Subscribers:  len(t.subscribers),
			Published:    t.published,
			Failures:     t.failures,
			LastDuration: t.lastDuration,
		})
	}
	return stats
}

func (b *EventBus) lookup(name string) *topic {
	t, ok := b.topics.Get(xxhash.Sum64String(name))
	if !ok {
		return nil
	}
	for t != nil && t.name != name {
		t = t.next
	}
	return t
}

func (b *EventBus) ensureTopic(name string) *topic {
	if t := b.lookup(name); t != nil {
		return t
	}

	key := xxhash.Sum64String(name)
	t := &topic{name: name}
	if head, ok := b.topics.Get(key); ok {
		t.next = head
	}
	b.topics.Put(key, t)
	b.order = append(b.order, t)
	return t
}

// Subscribe registers a typed handler for events of type E, which must report
// its name from its zero value.
func Subscribe[E Event](b *EventBus, fn func(E) error) Subscription {
	var zero E
	name := zero.EventName()
	return b.Subscribe(name, func(event Event) error {
		typed, ok := event.(E)
		if !ok {
			return eris.Wrapf(ErrPayloadMismatch, "%s carried %T, handler expects %T", name, event, zero)
		}
		return fn(typed)
	})
}
