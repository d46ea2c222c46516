package app

import (
	"context"
	"os"

	luart "github.com/dokzlo13/sqlkv/internal/lua"
	"github.com/dokzlo13/sqlkv/internal/kv"
)

// LuaService wraps the Lua runtime bound to the app's store.
type LuaService struct {
	Runtime *luart.Runtime
}

// NewLuaService creates a new LuaService.
func NewLuaService(store *kv.Store) *LuaService {
	return &LuaService{Runtime: luart.NewRuntime(store)}
}

// LoadScript executes the script at path.
func (s *LuaService) LoadScript(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return s.Runtime.DoFile(ctx, path)
}

// ActiveTimers returns the number of pending script timers.
func (s *LuaService) ActiveTimers() int {
	return s.Runtime.ActiveTimers()
}

// Close closes the Lua runtime.
func (s *LuaService) Close() {
	if s.Runtime != nil {
		s.Runtime.Close()
	}
}
