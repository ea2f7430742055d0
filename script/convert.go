package script

import (
	lua "github.com/yuin/gopher-lua"
)

// maxDepth bounds table nesting so self-referencing tables terminate.
const maxDepth = 32

// toLua converts a decoded JSON value to a Lua value.
func toLua(L *lua.LState, value any) lua.LValue {
	switch v := value.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case []any:
		t := L.CreateTable(len(v), 0)
		for _, item := range v {
			t.Append(toLua(L, item))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(v))
		for key, item := range v {
			t.RawSetString(key, toLua(L, item))
		}
		return t
	default:
		return lua.LNil
	}
}

// fromLua converts a Lua value to a value encoding/json understands. Tables
// whose keys are exactly 1..n become slices; other tables become objects.
func fromLua(value lua.LValue) any {
	return fromLuaDepth(value, 0)
}

func fromLuaDepth(value lua.LValue, depth int) any {
	switch v := value.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if depth >= maxDepth {
			return nil
		}
		return tableValue(v, depth+1)
	default:
		if value == lua.LNil {
			return nil
		}
		return value.String()
	}
}

func tableValue(t *lua.LTable, depth int) any {
	n := t.MaxN()
	count := 0
	t.ForEach(func(lua.LValue, lua.LValue) { count++ })

	if n > 0 && n == count {
		items := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			items = append(items, fromLuaDepth(t.RawGetInt(i), depth))
		}
		return items
	}

	fields := make(map[string]any, count)
	t.ForEach(func(key, item lua.LValue) {
		fields[key.String()] = fromLuaDepth(item, depth)
	})
	return fields
}
