package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/dokzlo13/sqlkv/internal/kv"
)

type ImportCmd struct {
	flags  *Flags
	prefix string
	ttl    int
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags) *ImportCmd {
	return &ImportCmd{flags: flags}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Load JSON files into the store",
		UsageText: "sqlkv import GLOB [--prefix PREFIX] [--ttl SECONDS]",
		Description: `Stores the contents of every JSON file matched by GLOB. Each file is
stored under PREFIX followed by its path relative to the static part of GLOB.
'**' matches any number of directories.

Examples:
  sqlkv import 'fixtures/**/*.json' --prefix fixture:
  sqlkv import 'cache/*.json' --ttl 600`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "prefix",
				Aliases:     []string{"p"},
				Usage:       "prepend PREFIX to every imported key",
				Destination: &cmd.prefix,
			},
			&cli.IntFlag{
				Name:        "ttl",
				Aliases:     []string{"t"},
				Usage:       "expire imported entries after this many seconds",
				Destination: &cmd.ttl,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one GLOB argument")
	}
	pattern := c.Args().First()

	files, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("bad glob %q: %w", pattern, err)
	}

	var opts []kv.SetOption
	if c.IsSet("ttl") {
		opts = append(opts, kv.WithTTL(int64(cmd.ttl)))
	}

	base := globBase(pattern)
	store := cmd.flags.App.Store()

	for _, path := range files {
		key, err := importKey(base, path, cmd.prefix)
		if err != nil {
			return err
		}

		value, err := readJSONFile(path)
		if err != nil {
			return err
		}

		if err := store.Set(ctx, key, value, opts...); err != nil {
			return err
		}
		log.Debug().Str("path", path).Str("key", key).Msg("Imported file")
	}

	_, err = fmt.Fprintf(stdout(c), "Imported %d file(s)\n", len(files))
	return err
}

// globBase returns the directory part of pattern that contains no
// metacharacters.
func globBase(pattern string) string {
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	return filepath.FromSlash(base)
}

// importKey derives the key for a matched file: prefix plus the slash
// separated path relative to base.
func importKey(base, path, prefix string) (string, error) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", path, err)
	}
	return prefix + filepath.ToSlash(rel), nil
}

func readJSONFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("%s is not valid JSON: %w", path, err)
	}
	return value, nil
}
