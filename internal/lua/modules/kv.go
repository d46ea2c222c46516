package modules

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/sqlkv/internal/kv"
)

// KVModule exposes a store to Lua as the kv module.
type KVModule struct {
	store *kv.Store
}

// NewKVModule creates a new KV module.
func NewKVModule(store *kv.Store) *KVModule {
	return &KVModule{store: store}
}

// Loader is the module loader for Lua.
func (m *KVModule) Loader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "get", L.NewFunction(m.get))
	L.SetField(mod, "set", L.NewFunction(m.set))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
	L.SetField(mod, "sweep", L.NewFunction(m.sweep))

	L.Push(mod)
	return 1
}

func luaContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// get(key, opts?) -> value | nil
// opts: { metadata = true }
// A key containing "*" returns an array of every match.
func (m *KVModule) get(L *lua.LState) int {
	key := L.CheckString(1)

	var getOpts []kv.GetOption
	metadata := optBoolField(L.OptTable(2, nil), "metadata")
	if metadata {
		getOpts = append(getOpts, kv.WithMetadata())
	}

	res, err := m.store.Get(luaContext(L), key, getOpts...)
	if err != nil {
		return pushError(L, err)
	}

	if !res.IsMulti() {
		entry, ok := res.Entry()
		switch {
		case !ok:
			L.Push(lua.LNil)
		case metadata:
			L.Push(entryToLua(L, entry))
		default:
			L.Push(GoToLua(L, entry.Value))
		}
		return 1
	}

	entries := res.Entries()
	tbl := L.CreateTable(len(entries), 0)
	for i, entry := range entries {
		if metadata {
			tbl.RawSetInt(i+1, entryToLua(L, entry))
		} else {
			tbl.RawSetInt(i+1, GoToLua(L, entry.Value))
		}
	}
	L.Push(tbl)
	return 1
}

func entryToLua(L *lua.LState, e kv.Entry) *lua.LTable {
	tbl := L.CreateTable(0, 4)
	tbl.RawSetString("key", lua.LString(e.Key))
	tbl.RawSetString("value", GoToLua(L, e.Value))
	tbl.RawSetString("ttl", lua.LNumber(e.TTL))
	tbl.RawSetString("timestamp", lua.LNumber(e.Timestamp.UnixMilli()))
	return tbl
}

// set(key, value, opts?) -> true | nil, err
// opts: { ttl = seconds }
func (m *KVModule) set(L *lua.LState) int {
	key := L.CheckString(1)
	value := LuaToGo(L.Get(2))

	var setOpts []kv.SetOption
	if ttl, ok := optNumberField(L.OptTable(3, nil), "ttl"); ok {
		setOpts = append(setOpts, kv.WithTTL(checkTTL(L, ttl)))
	}

	if err := m.store.Set(luaContext(L), key, value, setOpts...); err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

// maxTTL is the largest ttl that converts to int64 exactly.
const maxTTL = 1 << 62

// checkTTL converts a Lua ttl to seconds. Negative values mean no expiry;
// values an int64 cannot hold raise an argument error.
func checkTTL(L *lua.LState, ttl float64) int64 {
	switch {
	case ttl < 0:
		return kv.NoExpiry
	case ttl > maxTTL:
		L.ArgError(3, "ttl out of range")
		return 0
	default:
		return int64(ttl)
	}
}

// delete(key) -> true | nil, err
func (m *KVModule) delete(L *lua.LState) int {
	key := L.CheckString(1)

	if err := m.store.Delete(luaContext(L), key); err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

// sweep() -> removed | nil, err
func (m *KVModule) sweep(L *lua.LState) int {
	n, err := m.store.Sweep(luaContext(L))
	if err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LNumber(n))
	return 1
}
