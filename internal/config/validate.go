package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/hay-kot/criterio"
)

var (
	drivers   = []string{"sqlite3", "sqlite"}
	logLevels = []string{"debug", "info", "warn", "error"}
)

const minSweepInterval = time.Second

// Validate checks the configuration for values the store cannot run with.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("database.path", c.Database.Path, notEmpty),
		criterio.Run("database.driver", c.Database.Driver, oneOf(drivers)),
		criterio.Run("log.level", c.Log.Level, oneOf(logLevels)),
		c.validateSweep(),
	)
}

func (c *Config) validateSweep() error {
	var errs criterio.FieldErrorsBuilder
	if !c.Sweep.Disabled && c.Sweep.Interval.Duration() < minSweepInterval {
		errs = errs.Append("sweep.interval", fmt.Errorf("must be at least %s, got %s", minSweepInterval, c.Sweep.Interval.Duration()))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", fmt.Errorf("must not be negative"))
	}
	return errs.ToError()
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

func oneOf(allowed []string) func(string) error {
	return func(s string) error {
		if !slices.Contains(allowed, s) {
			return fmt.Errorf("%q is not one of %v", s, allowed)
		}
		return nil
	}
}
