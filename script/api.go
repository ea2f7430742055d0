package script

import (
	"github.com/goccy/go-json"
	"github.com/plus3/tessera/ecs"
	lua "github.com/yuin/gopher-lua"
)

// register installs the scene API as globals of vm. Entity ids are passed to
// scripts as numbers.
func (s *System) register(vm *lua.LState) {
	api := map[string]lua.LGFunction{
		"entities":       s.luaEntities,
		"create_entity":  s.luaCreateEntity,
		"destroy_entity": s.luaDestroyEntity,
		"exists":         s.luaExists,
		"has":            s.luaHas,
		"get":            s.luaGet,
		"set":            s.luaSet,
		"remove":         s.luaRemove,
		"get_global":     s.luaGetGlobal,
		"set_global":     s.luaSetGlobal,
		"publish":        s.luaPublish,
		"log":            s.luaLog,
	}
	for name, fn := range api {
		vm.SetGlobal(name, vm.NewFunction(fn))
	}
}

func checkEntity(L *lua.LState, n int) ecs.EntityId {
	return ecs.EntityId(L.CheckNumber(n))
}

func (s *System) checkType(L *lua.LState, n int) ecs.ComponentType {
	name := L.CheckString(n)
	ct, ok := s.Scene().Registry().Lookup(name)
	if !ok {
		L.ArgError(n, "unknown component "+name)
	}
	return ct
}

// entities(...) returns the entities that have every named component, or all
// entities when called without arguments.
func (s *System) luaEntities(L *lua.LState) int {
	types := make([]ecs.ComponentType, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		types = append(types, s.checkType(L, i))
	}

	result := L.NewTable()
	for id := range s.Scene().EntitiesWith(types...) {
		result.Append(lua.LNumber(id))
	}
	L.Push(result)
	return 1
}

func (s *System) luaCreateEntity(L *lua.LState) int {
	L.Push(lua.LNumber(s.Scene().CreateEntity()))
	return 1
}

// destroy_entity(e) is deferred to the end of the frame when called from a
// frame hook.
func (s *System) luaDestroyEntity(L *lua.LState) int {
	id := checkEntity(L, 1)
	if s.commands != nil {
		s.commands.Destroy(id)
		return 0
	}
	if err := s.Scene().DestroyEntity(id); err != nil {
		L.RaiseError("%s", err)
	}
	return 0
}

func (s *System) luaExists(L *lua.LState) int {
	L.Push(lua.LBool(s.Scene().EntityExists(checkEntity(L, 1))))
	return 1
}

func (s *System) luaHas(L *lua.LState) int {
	ct := s.checkType(L, 1)
	id := checkEntity(L, 2)

	store, ok := s.Scene().Store(ct)
	L.Push(lua.LBool(ok && store.IsPresentOn(id)))
	return 1
}

// get(component, e) returns the component as a table, or nil.
func (s *System) luaGet(L *lua.LState) int {
	ct := s.checkType(L, 1)
	id := checkEntity(L, 2)

	store, ok := s.Scene().Store(ct)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	data, ok, err := store.SerializeState(id)
	if err != nil {
		L.RaiseError("%s", err)
	}
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(decodeValue(L, data))
	return 1
}

// set(component, e, value) replaces the component with value. Whether an
// entity without the component gets one follows the type's deserialize policy.
func (s *System) luaSet(L *lua.LState) int {
	ct := s.checkType(L, 1)
	id := checkEntity(L, 2)
	data := encodeValue(L, L.CheckAny(3))

	store, err := s.Scene().AttachStore(ct)
	if err != nil {
		L.RaiseError("%s", err)
	}
	if err := store.DeserializeState(ecs.ComponentDataModel{Entity: id, Value: data}); err != nil {
		L.RaiseError("%s", err)
	}
	return 0
}

func (s *System) luaRemove(L *lua.LState) int {
	ct := s.checkType(L, 1)
	id := checkEntity(L, 2)

	store, ok := s.Scene().Store(ct)
	if !ok {
		return 0
	}
	if err := store.ResetEntity(id); err != nil {
		L.RaiseError("%s", err)
	}
	return 0
}

func (s *System) luaGetGlobal(L *lua.LState) int {
	ct := s.checkType(L, 1)

	data, ok, err := s.Scene().SerializeGlobal(ct)
	if err != nil {
		L.RaiseError("%s", err)
	}
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(decodeValue(L, data))
	return 1
}

func (s *System) luaSetGlobal(L *lua.LState) int {
	name := L.CheckString(1)
	data := encodeValue(L, L.CheckAny(2))

	if err := s.Scene().DeserializeGlobal(ecs.GlobalComponentModel{Type: name, Data: data}); err != nil {
		L.RaiseError("%s", err)
	}
	return 0
}

// publish(name, ...) publishes an ecs.Signal carrying the remaining arguments.
func (s *System) luaPublish(L *lua.LState) int {
	name := L.CheckString(1)
	args := make([]any, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, fromLua(L.Get(i)))
	}

	if err := s.Scene().Events().Publish(ecs.Signal{Name: name, Args: args}); err != nil {
		L.RaiseError("%s", err)
	}
	return 0
}

func (s *System) luaLog(L *lua.LState) int {
	s.log.Info(L.CheckString(1))
	return 0
}

func decodeValue(L *lua.LState, data string) lua.LValue {
	var value any
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		L.RaiseError("decode value: %s", err)
	}
	return toLua(L, value)
}

func encodeValue(L *lua.LState, value lua.LValue) string {
	bz, err := json.Marshal(fromLua(value))
	if err != nil {
		L.RaiseError("encode value: %s", err)
	}
	return string(bz)
}
