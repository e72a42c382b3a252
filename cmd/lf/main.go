// Command lf deploys and inspects Langfuse environments. It wraps the cdk CLI
// around the lfcdk app and reads deployed stack outputs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/advdv/lfcdk/internal/logging"
	"github.com/urfave/cli/v3"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := newCmd().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCmd() *cli.Command {
	flush := func() {}

	return &cli.Command{
		Name:    "lf",
		Usage:   "Deploy and inspect Langfuse environments",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log at debug level",
				Sources: cli.EnvVars(logging.VerboseEnv),
			},
			&cli.StringFlag{
				Name:  "log-encoding",
				Usage: "Log encoding, console or json",
				Value: "console",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Colored log levels, auto, always or never",
				Value: "auto",
			},
		},
		Commands: []*cli.Command{
			envsCmd(),
			synthCmd(),
			diffCmd(),
			deployCmd(),
			destroyCmd(),
			urlCmd(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			var err error
			flush, err = logging.Setup(logging.Opts{
				Verbose:  cmd.Bool("verbose"),
				Encoding: cmd.String("log-encoding"),
				Color:    cmd.String("color"),
			})
			return ctx, err
		},
		After: func(context.Context, *cli.Command) error {
			flush()
			return nil
		},
	}
}
