// Package commands implements the sqlkv command-line interface.
package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/dokzlo13/sqlkv/internal/app"
	"github.com/dokzlo13/sqlkv/internal/config"
	"github.com/dokzlo13/sqlkv/internal/logging"
)

// NewRoot builds the sqlkv command with every subcommand registered. The
// Before hook opens the store; After closes it.
func NewRoot(flags *Flags, version string) *cli.Command {
	root := &cli.Command{
		Name:      "sqlkv",
		Usage:     "Inspect and edit a sqlkv store",
		UsageText: "sqlkv [global options] command [command options]",
		Description: `sqlkv is a SQLite-backed key-value store for JSON values with
per-entry expiry and '*' wildcard lookups.

Examples:
  sqlkv set user:1 '{"name":"ada"}' --ttl 3600
  sqlkv get 'user:*'
  sqlkv run seed.lua`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (defaults are used when empty)",
				Sources:     cli.EnvVars("SQLKV_CONFIG"),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "db",
				Usage:       "path to the database file, overrides database.path",
				Sources:     cli.EnvVars("SQLKV_DB"),
				Destination: &flags.DBPath,
			},
			&cli.StringFlag{
				Name:        "driver",
				Usage:       "sqlite driver (sqlite3, sqlite), overrides database.driver",
				Sources:     cli.EnvVars("SQLKV_DRIVER"),
				Destination: &flags.Driver,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error), overrides log.level",
				Sources:     cli.EnvVars("SQLKV_LOG_LEVEL"),
				Destination: &flags.LogLevel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.applyOverrides(cfg)

			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid config: %w", err)
			}

			logging.Setup(cfg.Log.Level, cfg.Log.JSON, cfg.Log.Colors, stderr(c))
			flags.Config = cfg

			application, err := app.New(cfg)
			if err != nil {
				return ctx, fmt.Errorf("open store: %w", err)
			}
			flags.App = application

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if flags.App == nil {
				return nil
			}
			if err := flags.App.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close store")
				return err
			}
			flags.App = nil
			return nil
		},
	}

	root = NewGetCmd(flags).Register(root)
	root = NewSetCmd(flags).Register(root)
	root = NewDelCmd(flags).Register(root)
	root = NewSweepCmd(flags).Register(root)
	root = NewImportCmd(flags).Register(root)
	root = NewRunCmd(flags).Register(root)

	return root
}
