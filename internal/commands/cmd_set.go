package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dokzlo13/sqlkv/internal/kv"
)

type SetCmd struct {
	flags    *Flags
	ttl      int
	asString bool
}

// NewSetCmd creates a new set command
func NewSetCmd(flags *Flags) *SetCmd {
	return &SetCmd{flags: flags}
}

// Register adds the set command to the application
func (cmd *SetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "set",
		Usage:     "Store a value under a key",
		UsageText: "sqlkv set KEY VALUE [--ttl SECONDS] [--string]",
		Description: `VALUE is parsed as JSON unless --string is given. Writing a key replaces
its value and resets its expiry: without --ttl the entry never expires.

Examples:
  sqlkv set count 3
  sqlkv set session:42 '{"user":1}' --ttl 3600
  sqlkv set greeting hello --string`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "ttl",
				Aliases:     []string{"t"},
				Usage:       "expire the entry after this many seconds",
				Destination: &cmd.ttl,
			},
			&cli.BoolFlag{
				Name:        "string",
				Aliases:     []string{"s"},
				Usage:       "store VALUE as a JSON string instead of parsing it",
				Destination: &cmd.asString,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SetCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected KEY and VALUE arguments")
	}

	value, err := parseValue(c.Args().Get(1), cmd.asString)
	if err != nil {
		return err
	}

	var opts []kv.SetOption
	if c.IsSet("ttl") {
		opts = append(opts, kv.WithTTL(int64(cmd.ttl)))
	}

	return cmd.flags.App.Store().Set(ctx, c.Args().Get(0), value, opts...)
}

// parseValue decodes a command-line VALUE.
func parseValue(raw string, asString bool) (any, error) {
	if asString {
		return raw, nil
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("VALUE is not valid JSON (use --string to store raw text): %w", err)
	}
	return value, nil
}
