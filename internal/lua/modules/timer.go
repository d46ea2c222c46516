package modules

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// ErrTimersStopped is returned to scripts that schedule a timer after Stop.
var ErrTimersStopped = errors.New("timers stopped")

// Executor runs work on the Lua VM. Callbacks must never touch the LState
// outside of Exec.
type Executor interface {
	Exec(ctx context.Context, work func(L *lua.LState) error) error
}

// TimerModule provides timer.every/after/cancel/sleep to Lua. Callbacks run
// through the executor, one at a time, until cancelled or Stop is called.
type TimerModule struct {
	exec   Executor
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	nextID  int
	timers  map[int]context.CancelFunc
	running sync.WaitGroup
}

// NewTimerModule creates a new timer module.
func NewTimerModule(exec Executor, logger zerolog.Logger) *TimerModule {
	ctx, cancel := context.WithCancel(context.Background())
	return &TimerModule{
		exec:   exec,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[int]context.CancelFunc),
	}
}

// Loader is the module loader for Lua
func (m *TimerModule) Loader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "every", L.NewFunction(m.every))
	L.SetField(mod, "after", L.NewFunction(m.after))
	L.SetField(mod, "cancel", L.NewFunction(m.cancelTimer))
	L.SetField(mod, "sleep", L.NewFunction(m.sleep))

	L.Push(mod)
	return 1
}

// Active returns the number of timers that have not fired or been cancelled.
func (m *TimerModule) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Stop cancels every timer and waits for running callbacks to return. Timers
// scheduled after Stop are refused.
func (m *TimerModule) Stop() {
	m.mu.Lock()
	m.cancel()
	m.mu.Unlock()

	m.running.Wait()
}

func checkInterval(L *lua.LState, pos int) time.Duration {
	seconds := float64(L.CheckNumber(pos))
	if seconds <= 0 {
		L.ArgError(pos, "interval must be positive")
	}
	return time.Duration(seconds * float64(time.Second))
}

// every(seconds, fn) -> id | nil, err
func (m *TimerModule) every(L *lua.LState) int {
	interval := checkInterval(L, 1)
	fn := L.CheckFunction(2)

	return m.pushScheduled(L, interval, fn, true)
}

// after(seconds, fn) -> id | nil, err
func (m *TimerModule) after(L *lua.LState) int {
	delay := checkInterval(L, 1)
	fn := L.CheckFunction(2)

	return m.pushScheduled(L, delay, fn, false)
}

func (m *TimerModule) pushScheduled(L *lua.LState, d time.Duration, fn *lua.LFunction, repeat bool) int {
	id, err := m.schedule(d, fn, repeat)
	if err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LNumber(id))
	return 1
}

// cancel(id) -> bool
func (m *TimerModule) cancelTimer(L *lua.LState) int {
	id := L.CheckInt(1)

	m.mu.Lock()
	cancel, ok := m.timers[id]
	delete(m.timers, id)
	m.mu.Unlock()

	if ok {
		cancel()
	}
	L.Push(lua.LBool(ok))
	return 1
}

// sleep(ms) blocks the script.
func (m *TimerModule) sleep(L *lua.LState) int {
	ms := L.CheckInt(1)
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
	case <-m.ctx.Done():
	}
	return 0
}

func (m *TimerModule) schedule(d time.Duration, fn *lua.LFunction, repeat bool) (int, error) {
	m.mu.Lock()
	// Stop cancels under mu, so no Add can follow its Wait.
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		return 0, ErrTimersStopped
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.nextID++
	id := m.nextID
	m.timers[id] = cancel
	m.running.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.running.Done()
		defer m.forget(id)
		defer cancel()

		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.fire(ctx, id, fn)
				if !repeat {
					return
				}
			}
		}
	}()

	return id, nil
}

func (m *TimerModule) forget(id int) {
	m.mu.Lock()
	delete(m.timers, id)
	m.mu.Unlock()
}

func (m *TimerModule) fire(ctx context.Context, id int, fn *lua.LFunction) {
	err := m.exec.Exec(ctx, func(L *lua.LState) error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil && ctx.Err() == nil {
		m.logger.Warn().Err(err).Int("timer", id).Msg("Lua timer callback failed")
	}
}
