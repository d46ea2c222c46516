package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dokzlo13/sqlkv/internal/kv"
)

type GetCmd struct {
	flags    *Flags
	metadata bool
}

// NewGetCmd creates a new get command
func NewGetCmd(flags *Flags) *GetCmd {
	return &GetCmd{flags: flags}
}

// Register adds the get command to the application
func (cmd *GetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "get",
		Usage:     "Print the value stored under a key",
		UsageText: "sqlkv get KEY [--metadata]",
		Description: `Prints the value as JSON. A KEY containing '*' prints a JSON array of
every live match in key order.

Exits with status 1 when an exact KEY is not found.

Examples:
  sqlkv get user:1
  sqlkv get 'user:*' --metadata`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "metadata",
				Aliases:     []string{"m"},
				Usage:       "print key, ttl and timestamp alongside each value",
				Destination: &cmd.metadata,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *GetCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one KEY argument")
	}
	key := c.Args().First()

	var opts []kv.GetOption
	if cmd.metadata {
		opts = append(opts, kv.WithMetadata())
	}

	res, err := cmd.flags.App.Store().Get(ctx, key, opts...)
	if err != nil {
		return err
	}

	if !res.IsMulti() && !res.Found() {
		return cli.Exit("not found", 1)
	}

	enc := json.NewEncoder(stdout(c))
	enc.SetIndent("", "  ")
	return enc.Encode(res.Any())
}
