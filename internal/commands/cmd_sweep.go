package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type SweepCmd struct {
	flags *Flags
}

// NewSweepCmd creates a new sweep command
func NewSweepCmd(flags *Flags) *SweepCmd {
	return &SweepCmd{flags: flags}
}

// Register adds the sweep command to the application
func (cmd *SweepCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sweep",
		Usage:     "Remove expired and deleted entries now",
		UsageText: "sqlkv sweep",
		Action:    cmd.run,
	})

	return app
}

func (cmd *SweepCmd) run(ctx context.Context, c *cli.Command) error {
	n, err := cmd.flags.App.Store().Sweep(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout(c), "Swept %d expired entries\n", n)
	return err
}
