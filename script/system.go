// Package script runs systems written in Lua. A script sees the scene through
// a small set of global functions and exchanges component values as tables
// built from their serialized form.
package script

import (
	"os"

	"github.com/plus3/tessera/ecs"
	"github.com/rotisserie/eris"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

var ErrScriptFailed = eris.New("script failed")

// Names of the Lua functions a script may define. Each frame hook receives
// the frame's delta time in seconds.
const (
	HookStart      = "on_start"
	HookStop       = "on_stop"
	HookPreUpdate  = "on_pre_update"
	HookUpdate     = "on_update"
	HookPostUpdate = "on_post_update"
)

// System is a scene system whose behavior is a Lua chunk. The chunk runs when
// the system starts, in a fresh Lua state that lives until the system stops.
// A System reports its script name as its system name, so scenes save and
// load it under that name.
type System struct {
	ecs.SystemBase

	name    string
	source  string
	loadErr error
	log     *zap.Logger

	vm       *lua.LState
	commands *ecs.Commands
}

// Option configures a System.
type Option func(*System)

func WithLogger(log *zap.Logger) Option {
	return func(s *System) {
		s.log = log
	}
}

// New creates a system running source.
func New(name, source string, opts ...Option) *System {
	s := &System{name: name, source: source, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("script", name))
	return s
}

// LoadFile creates a system running the Lua file at path.
func LoadFile(name, path string, opts ...Option) (*System, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read script %s", path)
	}
	return New(name, string(source), opts...), nil
}

// Factory returns a SystemFactory building a new System from the file at
// path on every call, for registering scripts with an ecs.SystemRegistry.
// A file that cannot be read yields a system whose start fails.
func Factory(name, path string, opts ...Option) ecs.SystemFactory {
	return func() ecs.System {
		s, err := LoadFile(name, path, opts...)
		if err != nil {
			s = New(name, "", opts...)
			s.loadErr = err
		}
		return s
	}
}

func (s *System) SystemName() string { return s.name }

func (s *System) Bindings() []ecs.Binding {
	return []ecs.Binding{
		ecs.On(func(ev ecs.PreUpdate) error { return s.frame(HookPreUpdate, ev.DeltaTime, ev.Commands) }),
		ecs.On(func(ev ecs.Update) error { return s.frame(HookUpdate, ev.DeltaTime, ev.Commands) }),
		ecs.On(func(ev ecs.PostUpdate) error { return s.frame(HookPostUpdate, ev.DeltaTime, ev.Commands) }),
	}
}

func (s *System) OnStart(*ecs.Scene) error {
	if s.loadErr != nil {
		return eris.Wrapf(ErrScriptFailed, "load %s: %s", s.name, s.loadErr)
	}

	vm := lua.NewState()
	s.register(vm)

	if err := vm.DoString(s.source); err != nil {
		vm.Close()
		return eris.Wrapf(ErrScriptFailed, "load %s: %s", s.name, err)
	}
	s.vm = vm

	return s.call(HookStart)
}

func (s *System) OnStop(*ecs.Scene) {
	if s.vm == nil {
		return
	}
	if err := s.call(HookStop); err != nil {
		s.log.Warn("script stop failed", zap.Error(err))
	}
	s.vm.Close()
	s.vm = nil
}

func (s *System) frame(hook string, dt float64, commands *ecs.Commands) error {
	s.commands = commands
	defer func() { s.commands = nil }()
	return s.call(hook, lua.LNumber(dt))
}

// call runs a global function of the script if it defines one.
func (s *System) call(hook string, args ...lua.LValue) error {
	if s.vm == nil {
		return nil
	}
	fn := s.vm.GetGlobal(hook)
	if fn == lua.LNil {
		return nil
	}

	if err := s.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		return eris.Wrapf(ErrScriptFailed, "%s.%s: %s", s.name, hook, err)
	}
	return nil
}
