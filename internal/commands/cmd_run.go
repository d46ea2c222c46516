package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dokzlo13/sqlkv/internal/app"
)

type RunCmd struct {
	flags *Flags
	wait  bool
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Execute a Lua script against the store",
		UsageText: "sqlkv run [SCRIPT] [--wait]",
		Description: `Runs SCRIPT, or the config's script when omitted. Scripts can
require("kv"), require("log") and require("timer").

With --wait the process stays up after the script returns so timers keep
firing, until SIGINT or SIGTERM.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "wait",
				Aliases:     []string{"w"},
				Usage:       "keep running until interrupted",
				Destination: &cmd.wait,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	script := c.Args().First()
	if script == "" {
		script = cmd.flags.Config.Script
	}
	if script == "" {
		return fmt.Errorf("no SCRIPT given and no script configured")
	}

	if cmd.wait {
		var cancel context.CancelFunc
		ctx, cancel = app.SignalContext(ctx)
		defer cancel()
	}

	return cmd.flags.App.RunScript(ctx, script, cmd.wait)
}
