package ecs

import "github.com/rotisserie/eris"

// globalSlot holds the single instance of a global component type in a Scene.
// The value pointer is allocated once, so references to it stay valid across
// removal and re-adding; presence is tracked separately.
type globalSlot struct {
	info    *componentInfo
	value   any
	present bool

	encode func() (string, error)
	decode func(data string) error
}

func newGlobalSlot[T any](info *componentInfo, codec Codec[T]) *globalSlot {
	ptr := new(T)
	return &globalSlot{
		info:  info,
		value: ptr,
		encode: func() (string, error) {
			return codec.Encode(ptr)
		},
		decode: func(data string) error {
			var value T
			if err := codec.Decode(data, &value); err != nil {
				return err
			}
			*ptr = value
			return nil
		},
	}
}

func (g *globalSlot) serialize() (string, bool, error) {
	if !g.present {
		return "", false, nil
	}
	data, err := g.encode()
	if err != nil {
		return "", true, eris.Wrapf(err, "serialize global %s", g.info.name)
	}
	return data, true, nil
}

// GlobalRef is a cached reference to a global component, kept current by the
// system wiring layer. Always check the result of Get: the global may be absent.
type GlobalRef[T any] struct {
	ptr *T
}

// Get returns the global component, or false if the scene does not have it.
func (g *GlobalRef[T]) Get() (*T, bool) {
	return g.ptr, g.ptr != nil
}

// Present reports whether the referenced global component exists.
func (g *GlobalRef[T]) Present() bool {
	return g.ptr != nil
}

// ComponentRef is a cached reference to a component store, kept current by the
// system wiring layer. Per-entity presence must still be checked on the store.
type ComponentRef[T any] struct {
	store *ComponentStore[T]
}

// Get returns the store, or false if the scene does not have the component attached.
func (c *ComponentRef[T]) Get() (*ComponentStore[T], bool) {
	return c.store, c.store != nil
}

// Present reports whether the referenced store is attached.
func (c *ComponentRef[T]) Present() bool {
	return c.store != nil
}
