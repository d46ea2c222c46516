package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type DelCmd struct {
	flags *Flags
}

// NewDelCmd creates a new del command
func NewDelCmd(flags *Flags) *DelCmd {
	return &DelCmd{flags: flags}
}

// Register adds the del command to the application
func (cmd *DelCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "del",
		Aliases:   []string{"delete"},
		Usage:     "Delete a key",
		UsageText: "sqlkv del KEY",
		Description: `The key is hidden immediately and physically removed by the next sweep.
Deleting a key that does not exist is not an error.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *DelCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one KEY argument")
	}
	return cmd.flags.App.Store().Delete(ctx, c.Args().First())
}
