package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/advdv/lfcdk/cmd/lf/internal/config"
	"github.com/advdv/lfcdk/cmd/lf/internal/stackoutput"
	"github.com/advdv/lfcdk/lfcdk/lfcdkstack"
	"github.com/advdv/lfcdk/lfcdkconfig"
	"github.com/advdv/lfcdk/lfcdkutil"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
)

// OutputReader reads an output of a deployed stack.
type OutputReader interface {
	Output(ctx context.Context, stackName, outputKey string) (string, error)
}

func urlCmd() *cli.Command {
	return &cli.Command{
		Name:      "url",
		Usage:     "Print the URL of a deployed environment",
		ArgsUsage: "<env>",
		Action:    config.RunWithConfig(runURL),
	}
}

func runURL(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	envName := cmd.Args().First()
	if envName == "" {
		return errors.New("environment name is required")
	}

	envs, err := lfcdkconfig.DefaultEnvironments()
	if err != nil {
		return err
	}
	env, err := envs.Lookup(envName)
	if err != nil {
		return err
	}

	reader, err := stackoutput.NewFromProfile(ctx, cfg.Project.Profile, env.RegionOrEmpty())
	if err != nil {
		return err
	}

	return doURL(ctx, os.Stdout, reader, envName)
}

func doURL(ctx context.Context, w io.Writer, reader OutputReader, envName string) error {
	url, err := reader.Output(ctx, lfcdkutil.StackName(lfcdkstack.PrimaryUnit, envName), lfcdkstack.URLOutput)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, url)
	return errors.Wrap(err, "failed to write url")
}
