package kv

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dokzlo13/sqlkv/internal/db"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	driver        string
	busyTimeout   time.Duration
	clock         func() time.Time
	logger        *zerolog.Logger
	sweep         bool
	sweepInterval time.Duration
}

func newOptions(opts []Option) options {
	defaults := db.DefaultOptions()
	o := options{
		driver:        defaults.Driver,
		busyTimeout:   defaults.BusyTimeout,
		clock:         time.Now,
		sweep:         true,
		sweepInterval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithDriver selects the SQLite driver used by Open (db.DriverMattn or
// db.DriverModernc).
func WithDriver(driver string) Option {
	return func(o *options) { o.driver = driver }
}

// WithBusyTimeout sets how long Open's handle waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// WithClock replaces the time source used for timestamps and expiry.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger; the store adds its own instance id.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// WithSweepInterval sets how often the background sweep runs.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.sweepInterval = d
		}
	}
}

// WithoutSweeper disables the background sweep, including the initial one.
// Expired entries stay invisible to reads; call Store.Sweep to remove them.
func WithoutSweeper() Option {
	return func(o *options) { o.sweep = false }
}
