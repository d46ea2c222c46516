// Package lua hosts Lua scripts that operate on a KV store.
package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/sqlkv/internal/kv"
	"github.com/dokzlo13/sqlkv/internal/logging"
	"github.com/dokzlo13/sqlkv/internal/lua/modules"
)

// ErrRuntimeClosed is returned when the Lua runtime is closed
var ErrRuntimeClosed = errors.New("lua runtime closed")

// Runtime owns a single Lua VM. All Lua execution goes through Exec, which
// admits one caller at a time.
type Runtime struct {
	L      *lua.LState
	logger zerolog.Logger
	timers *modules.TimerModule

	// Holding the slot grants exclusive use of L. A channel instead of a
	// mutex so waiters can give up on context cancellation.
	slot chan struct{}

	closing   chan struct{}
	closeOnce sync.Once
}

// NewRuntime creates a new Lua runtime with the log, kv and timer modules
// preloaded.
func NewRuntime(store *kv.Store) *Runtime {
	r := &Runtime{
		L:       lua.NewState(),
		logger:  logging.Component("lua"),
		slot:    make(chan struct{}, 1),
		closing: make(chan struct{}),
	}
	r.registerModules(store)
	return r
}

func (r *Runtime) registerModules(store *kv.Store) {
	logModule := modules.NewLogModule(r.logger.With().Str("source", "lua").Logger())
	r.L.PreloadModule("log", logModule.Loader)

	kvModule := modules.NewKVModule(store)
	r.L.PreloadModule("kv", kvModule.Loader)

	r.timers = modules.NewTimerModule(r, r.logger)
	r.L.PreloadModule("timer", r.timers.Loader)
}

// Exec runs work with exclusive access to the VM. ctx is installed on the
// LState for the duration, so a cancelled ctx also aborts a running script.
// A panic inside work is recovered and returned as an error.
func (r *Runtime) Exec(ctx context.Context, work func(L *lua.LState) error) (err error) {
	select {
	case <-r.closing:
		return ErrRuntimeClosed
	case <-ctx.Done():
		return ctx.Err()
	case r.slot <- struct{}{}:
	}
	defer func() { <-r.slot }()

	// select picks randomly when closing and a free slot are both ready.
	select {
	case <-r.closing:
		return ErrRuntimeClosed
	default:
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Msg("Lua work panicked")
			err = fmt.Errorf("lua work panicked: %v", rec)
		}
	}()

	r.L.SetContext(ctx)
	defer r.L.RemoveContext()
	return work(r.L)
}

// DoFile loads and executes a Lua script
func (r *Runtime) DoFile(ctx context.Context, path string) error {
	r.logger.Info().Str("path", path).Msg("Loading Lua script")

	err := r.Exec(ctx, func(L *lua.LState) error { return L.DoFile(path) })
	if err != nil {
		return fmt.Errorf("failed to execute Lua script: %w", err)
	}

	r.logger.Debug().Str("path", path).Msg("Lua script finished")
	return nil
}

// DoString executes a chunk of Lua source
func (r *Runtime) DoString(ctx context.Context, source string) error {
	err := r.Exec(ctx, func(L *lua.LState) error { return L.DoString(source) })
	if err != nil {
		return fmt.Errorf("failed to execute Lua chunk: %w", err)
	}
	return nil
}

// ActiveTimers returns the number of timers scripts have scheduled that are
// still pending.
func (r *Runtime) ActiveTimers() int {
	return r.timers.Active()
}

// Close cancels every timer, waits for in-flight work and closes the Lua
// state. Close is idempotent.
func (r *Runtime) Close() {
	r.closeOnce.Do(func() {
		close(r.closing)
		r.timers.Stop()

		r.slot <- struct{}{}
		r.L.Close()
	})
}
