package commands

import (
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dokzlo13/sqlkv/internal/app"
	"github.com/dokzlo13/sqlkv/internal/config"
)

type Flags struct {
	ConfigPath string
	DBPath     string
	Driver     string
	LogLevel   string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// App owns the open store for the duration of a command
	App *app.App
}

// applyOverrides lets command-line flags win over the config file.
func (f *Flags) applyOverrides(cfg *config.Config) {
	if f.DBPath != "" {
		cfg.Database.Path = f.DBPath
	}
	if f.Driver != "" {
		cfg.Database.Driver = f.Driver
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
}

func stdout(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
