package kv

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dokzlo13/sqlkv/internal/db"
)

// Sweepable removes expired entries. *Store satisfies it.
type Sweepable interface {
	Sweep(ctx context.Context) (int64, error)
}

// Sweeper runs a Sweepable on a fixed interval in the background.
type Sweeper struct {
	target   Sweepable
	interval time.Duration
	logger   zerolog.Logger

	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// StartSweeper sweeps once before returning, so rows that expired while no
// process was running are gone before first use, then keeps sweeping every
// interval until Stop.
func StartSweeper(target Sweepable, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	s := &Sweeper{
		target:   target,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	s.runOnce()
	go s.loop()

	logger.Debug().Dur("interval", interval).Msg("Started expiry sweeper")
	return s
}

func (s *Sweeper) loop() {
	defer close(s.stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			// A tick and Stop can be ready together; Stop wins.
			select {
			case <-s.stop:
				return
			default:
			}
			s.runOnce()
		}
	}
}

// runOnce performs one sweep. Errors and panics are logged and contained so
// the next tick retries.
func (s *Sweeper) runOnce() {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().
				Interface("panic", rec).
				Msg("Expiry sweep panicked - sweeper continuing")
		}
	}()

	// Not tied to Stop: a sweep that has started always runs to completion.
	count, err := s.target.Sweep(context.Background())
	switch {
	case err != nil && db.IsBusy(err):
		s.logger.Debug().Err(err).Msg("Database busy, expiry sweep skipped")
	case err != nil:
		s.logger.Warn().Err(err).Msg("Failed to sweep expired KV entries")
	case count > 0:
		s.logger.Debug().Int64("count", count).Msg("Swept expired KV entries")
	}
}

// Stop cancels future sweeps and waits for the loop to exit, letting a sweep
// already in progress finish. It is safe to call more than once and on a nil
// Sweeper.
func (s *Sweeper) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.stopped
		s.logger.Debug().Msg("Stopped expiry sweeper")
	})
}
