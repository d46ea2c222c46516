package modules

import (
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// LogModule provides logging functions to Lua
type LogModule struct {
	logger zerolog.Logger
}

// NewLogModule creates a new log module writing through logger
func NewLogModule(logger zerolog.Logger) *LogModule {
	return &LogModule{logger: logger}
}

// Loader is the module loader for Lua
func (m *LogModule) Loader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "debug", L.NewFunction(m.emitter(zerolog.DebugLevel)))
	L.SetField(mod, "info", L.NewFunction(m.emitter(zerolog.InfoLevel)))
	L.SetField(mod, "warn", L.NewFunction(m.emitter(zerolog.WarnLevel)))
	L.SetField(mod, "error", L.NewFunction(m.emitter(zerolog.ErrorLevel)))

	L.Push(mod)
	return 1
}

// log.<level>(msg, fields?)
func (m *LogModule) emitter(level zerolog.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		msg := L.CheckString(1)

		event := m.logger.WithLevel(level)
		if fields := L.OptTable(2, nil); fields != nil {
			fields.ForEach(func(k, v lua.LValue) {
				event = event.Interface(lua.LVAsString(k), LuaToGo(v))
			})
		}
		event.Msg(msg)
		return 0
	}
}
