// Package app wires configuration, the KV store and the Lua runtime into a
// single container used by the command-line tool.
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/dokzlo13/sqlkv/internal/config"
	"github.com/dokzlo13/sqlkv/internal/kv"
	"github.com/dokzlo13/sqlkv/internal/logging"
)

// App is the application container: it owns the store and, once a script
// runs, the Lua service.
type App struct {
	cfg    *config.Config
	store  *kv.Store
	lua    *LuaService
	logger zerolog.Logger
}

// New opens the store described by cfg.
func New(cfg *config.Config) (*App, error) {
	logger := logging.Component("app")

	store, err := kv.Open(cfg.Database.Path, StoreOptions(cfg)...)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", cfg.Database.Path).
		Str("driver", cfg.Database.Driver).
		Str("store", store.ID()).
		Msg("Store ready")

	return &App{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}, nil
}

// StoreOptions translates the database and sweep sections into store options.
func StoreOptions(cfg *config.Config) []kv.Option {
	opts := []kv.Option{
		kv.WithDriver(cfg.Database.Driver),
		kv.WithBusyTimeout(cfg.Database.BusyTimeout.Duration()),
		kv.WithLogger(logging.Component("kv")),
	}
	if cfg.Sweep.Disabled {
		opts = append(opts, kv.WithoutSweeper())
	} else {
		opts = append(opts, kv.WithSweepInterval(cfg.Sweep.Interval.Duration()))
	}
	return opts
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Store returns the open store.
func (a *App) Store() *kv.Store {
	return a.store
}

// RunScript executes the script at path. With wait set it then blocks until
// ctx is cancelled, letting timers the script scheduled keep firing.
func (a *App) RunScript(ctx context.Context, path string, wait bool) error {
	if a.lua == nil {
		a.lua = NewLuaService(a.store)
	}

	if err := a.lua.LoadScript(ctx, path); err != nil {
		return err
	}

	if !wait {
		return nil
	}

	a.logger.Info().Int("timers", a.lua.ActiveTimers()).Msg("Script loaded, waiting for shutdown signal")
	<-ctx.Done()
	return nil
}

// Close stops the Lua service and closes the store.
func (a *App) Close() error {
	if a.lua != nil {
		a.lua.Close()
	}
	return a.store.Close()
}

// SignalContext returns a context that is cancelled when SIGINT or SIGTERM is
// received.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger := logging.Component("app")
			logger.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
