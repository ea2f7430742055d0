package ecs

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type cacheEntry struct {
	ct     ComponentType
	global bool
	set    func(value any)
}

// systemEntry is the scene's record of one added system and its live wiring.
type systemEntry struct {
	system System
	name   string
	state  SystemState

	subs   []Subscription
	caches []cacheEntry
}

// wire fills the system's caches, installs the built-in bindings that keep
// those caches current and then subscribes the system's own event bindings, so
// a cache is already refreshed when the system's handler for the same event
// runs. Bindings that cannot be satisfied are logged and skipped.
func (s *Scene) wire(e *systemEntry) {
	log := s.log.With(zap.String("system", e.name))
	bindings := e.system.Bindings()

	for _, b := range bindings {
		if b.kind != bindComponent && b.kind != bindGlobal {
			continue
		}
		if b.set == nil {
			log.Warn("skipping binding", zap.Stringer("binding", b), zap.Error(ErrNilRef))
			continue
		}
		info := s.registry.infoOf(b.typ)
		if info == nil {
			log.Warn("skipping binding", zap.Stringer("binding", b), zap.Error(ErrComponentNotRegistered))
			continue
		}
		global := b.kind == bindGlobal
		if global != (info.kind == KindGlobal) {
			log.Warn("skipping binding", zap.Stringer("binding", b),
				zap.Error(eris.Wrapf(ErrWrongKind, "%s is a %s", info.name, info.kind)))
			continue
		}

		c := cacheEntry{ct: info.id, global: global, set: b.set}
		s.refreshCache(c)
		e.caches = append(e.caches, c)
	}

	e.subs = append(e.subs,
		Subscribe(s.bus, func(ev ComponentAdded) error {
			s.refreshCaches(e, ev.Type, false)
			return nil
		}),
		Subscribe(s.bus, func(ev ComponentRemoved) error {
			s.refreshCaches(e, ev.Type, false)
			return nil
		}),
		Subscribe(s.bus, func(ev GlobalComponentAdded) error {
			s.refreshCaches(e, ev.Type, true)
			return nil
		}),
		Subscribe(s.bus, func(ev GlobalComponentRemoved) error {
			s.refreshCaches(e, ev.Type, true)
			return nil
		}),
	)

	for _, b := range bindings {
		if b.kind != bindEvent {
			continue
		}
		if b.handler == nil {
			log.Warn("skipping binding", zap.Stringer("binding", b), zap.Error(ErrNilHandler))
			continue
		}
		e.subs = append(e.subs, s.bus.Subscribe(b.event, b.handler))
	}
}

// unwire releases every subscription of the system and clears its caches.
func (s *Scene) unwire(e *systemEntry) {
	for _, sub := range e.subs {
		s.bus.Unsubscribe(sub)
	}
	for _, c := range e.caches {
		c.set(nil)
	}
	e.subs = nil
	e.caches = nil
}

func (s *Scene) refreshCaches(e *systemEntry, ct ComponentType, global bool) {
	for _, c := range e.caches {
		if c.ct == ct && c.global == global {
			s.refreshCache(c)
		}
	}
}

func (s *Scene) refreshCache(c cacheEntry) {
	if c.global {
		if slot := s.globalSlot(c.ct); slot != nil && slot.present {
			c.set(slot.value)
			return
		}
		c.set(nil)
		return
	}

	if store, ok := s.Store(c.ct); ok {
		c.set(store)
		return
	}
	c.set(nil)
}

func (s *Scene) startSystem(e *systemEntry) error {
	s.wire(e)
	e.state = SystemStarted

	if hook, ok := e.system.(StartHook); ok {
		if err := hook.OnStart(s); err != nil {
			s.log.Warn("system start hook failed", zap.String("system", e.name), zap.Error(err))
			return eris.Wrapf(err, "start %s", e.name)
		}
	}
	return nil
}

func (s *Scene) stopSystem(e *systemEntry) {
	if hook, ok := e.system.(StopHook); ok {
		hook.OnStop(s)
	}
	s.unwire(e)
	e.state = SystemStopped
}
