package modules

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
)

// LuaToGo converts a Lua value to its JSON-shaped Go equivalent. A table whose
// keys are exactly 1..n becomes a []any; any other table becomes a
// map[string]any. Functions and userdata are stringified.
func LuaToGo(v lua.LValue) any {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		return tableToGo(val)
	default:
		return v.String()
	}
}

func tableToGo(tbl *lua.LTable) any {
	n := tbl.Len()
	count := 0
	tbl.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = LuaToGo(tbl.RawGetInt(i))
		}
		return arr
	}

	obj := make(map[string]any, count)
	tbl.ForEach(func(k, v lua.LValue) {
		obj[lua.LVAsString(k)] = LuaToGo(v)
	})
	return obj
}

// GoToLua converts a decoded JSON value to a Lua value.
func GoToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		tbl := L.CreateTable(len(val), 0)
		for i, item := range val {
			tbl.RawSetInt(i+1, GoToLua(L, item))
		}
		return tbl
	case map[string]any:
		tbl := L.CreateTable(0, len(val))
		for k, item := range val {
			tbl.RawSetString(k, GoToLua(L, item))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprintf("%v", v))
	}
}

// optNumberField reads a numeric field from an optional options table.
func optNumberField(opts *lua.LTable, name string) (float64, bool) {
	if opts == nil {
		return 0, false
	}
	n, ok := opts.RawGetString(name).(lua.LNumber)
	if !ok || math.IsNaN(float64(n)) {
		return 0, false
	}
	return float64(n), true
}

// optBoolField reads a boolean field from an optional options table.
func optBoolField(opts *lua.LTable, name string) bool {
	if opts == nil {
		return false
	}
	return lua.LVAsBool(opts.RawGetString(name))
}

// pushError pushes the (nil, message) pair Lua callers check for.
func pushError(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}
