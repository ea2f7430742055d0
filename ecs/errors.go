package ecs

import "github.com/rotisserie/eris"

var (
	ErrComponentNotRegistered = eris.New("component type not registered")
	ErrComponentNotPresent    = eris.New("component not present on entity")
	ErrComponentNotAttached   = eris.New("component store not attached to scene")
	ErrEntityNotFound         = eris.New("entity does not exist")
	ErrWrongKind              = eris.New("component type registered with a different kind")
	ErrDuplicateName          = eris.New("component name already registered")
	ErrMalformedValue         = eris.New("malformed serialized component value")

	ErrPayloadMismatch = eris.New("event payload does not match handler")
	ErrHandlerPanicked = eris.New("event handler panicked")

	ErrSceneRunning    = eris.New("scene already running")
	ErrSceneNotRunning = eris.New("scene not running")
	ErrSystemAdded     = eris.New("system already added to a scene")
	ErrSystemNotFound  = eris.New("system not added to this scene")
	ErrNilSystem       = eris.New("system is nil")
	ErrUnknownSystem   = eris.New("system type not registered")

	ErrNilHandler = eris.New("event binding has nil handler")
	ErrNilRef     = eris.New("cache binding has nil reference")
)
