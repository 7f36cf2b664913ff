package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/wippyai/rna/transcoder"
)

const version = "0.3.0"

var log = zap.NewNop()

func main() {
	app := cli.NewApp()
	app.Name = "rna"
	app.Usage = "inspect versioned native layout schemas and decode memory dumps"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log debug output to stderr",
		},
	}
	app.Before = func(c *cli.Context) error {
		l, err := newLogger(c.Bool("verbose"))
		if err != nil {
			return err
		}
		log = l
		transcoder.SetLogger(l.Named("transcoder"))
		return nil
	}
	app.After = func(c *cli.Context) error {
		_ = log.Sync()
		return nil
	}

	versionFlag := cli.StringFlag{
		Name:  "at, a",
		Usage: "Producer version used to select the snapshot (defaults to the first snapshot)",
	}
	app.Commands = []cli.Command{
		{
			Name:      "inspect",
			Usage:     "Print entities with their fields, offsets and sizes",
			ArgsUsage: "<schema> [entity...]",
			Flags:     []cli.Flag{versionFlag},
			Action:    inspectCommand,
		},
		{
			Name:      "validate",
			Usage:     "Load a schema and check every snapshot's layout invariants",
			ArgsUsage: "<schema>",
			Action:    validateCommand,
		},
		{
			Name:      "find",
			Usage:     "Print the snapshot covering a producer version",
			ArgsUsage: "<schema> <version>",
			Action:    findCommand,
		},
		{
			Name:      "merge",
			Usage:     "Combine single-version schemas into one bundle",
			ArgsUsage: "<schema> <schema>...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "Output file; the extension selects YAML or JSON (default stdout, YAML)",
				},
			},
			Action: mergeCommand,
		},
		{
			Name:      "read",
			Usage:     "Decode an entity from a raw memory dump",
			ArgsUsage: "<schema> <dump>",
			Flags: []cli.Flag{
				versionFlag,
				cli.StringFlag{
					Name:  "entity, e",
					Usage: "Top-level entity to decode",
				},
				cli.StringFlag{
					Name:  "base, b",
					Value: "0",
					Usage: "Address the first dump byte was mapped at",
				},
				cli.StringFlag{
					Name:  "addr",
					Usage: "Address of the entity (default: base)",
				},
			},
			Action: readCommand,
		},
		{
			Name:      "browse",
			Usage:     "Browse entities interactively",
			ArgsUsage: "<schema>",
			Flags:     []cli.Flag{versionFlag},
			Action:    browseCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns a development logger when verbose, otherwise a
// production logger that only reports warnings.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

func usageError(c *cli.Context, want int) error {
	if len(c.Args()) >= want {
		return nil
	}
	return fmt.Errorf("%s: expected %s", c.Command.Name, c.Command.ArgsUsage)
}
