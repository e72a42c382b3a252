package main

import (
	"context"
	"io"
	"os"

	"github.com/advdv/lfcdk/cmd/lf/internal/cmdexec"
	"github.com/advdv/lfcdk/cmd/lf/internal/config"
	"github.com/advdv/lfcdk/cmd/lf/internal/confirm"
	"github.com/advdv/lfcdk/lfcdkconfig"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// Confirmer asks before an operation on a restricted environment.
type Confirmer interface {
	Confirm(operation, envName string) error
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Print the cdk command instead of running it",
	}
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation for restricted environments",
	}
}

func synthCmd() *cli.Command {
	return &cli.Command{
		Name:      "synth",
		Usage:     "Synthesize the stacks of an environment",
		ArgsUsage: "<env>",
		Flags:     []cli.Flag{dryRunFlag()},
		Action:    config.RunWithConfig(cdkAction("synth")),
	}
}

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Compare the stacks of an environment with the deployed stacks",
		ArgsUsage: "<env>",
		Flags:     []cli.Flag{dryRunFlag()},
		Action:    config.RunWithConfig(cdkAction("diff")),
	}
}

func deployCmd() *cli.Command {
	return &cli.Command{
		Name:      "deploy",
		Usage:     "Deploy the stacks of an environment",
		ArgsUsage: "<env>",
		Flags: []cli.Flag{
			dryRunFlag(),
			yesFlag(),
			&cli.BoolFlag{
				Name:  "hotswap",
				Usage: "Enable CDK hotswap for faster iterations",
			},
		},
		Action: config.RunWithConfig(cdkAction("deploy")),
	}
}

func destroyCmd() *cli.Command {
	return &cli.Command{
		Name:      "destroy",
		Usage:     "Destroy the stacks of an environment",
		ArgsUsage: "<env>",
		Flags:     []cli.Flag{dryRunFlag(), yesFlag()},
		Action:    config.RunWithConfig(cdkAction("destroy")),
	}
}

type cdkOptions struct {
	Subcommand string
	EnvName    string
	Yes        bool
	Hotswap    bool
	Output     io.Writer
}

func cdkAction(sub string) config.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
		exec := cmdexec.New(cfg)
		if cmd.Bool("dry-run") {
			exec = exec.WithDryRun()
		}

		return doCDK(ctx, cfg, exec, confirm.New(confirm.NewInteractiveRunner()), cdkOptions{
			Subcommand: sub,
			EnvName:    cmd.Args().First(),
			Yes:        cmd.Bool("yes"),
			Hotswap:    cmd.Bool("hotswap"),
			Output:     os.Stdout,
		})
	}
}

func doCDK(ctx context.Context, cfg config.Config, exec cmdexec.Executor, confirmer Confirmer,
	opts cdkOptions,
) error {
	if opts.EnvName == "" {
		return errors.New("environment name is required")
	}

	if err := checkEnvironment(opts.EnvName); err != nil {
		return err
	}

	if needsConfirmation(opts.Subcommand) && cfg.Project.IsRestricted(opts.EnvName) && !opts.Yes {
		if err := confirmer.Confirm(opts.Subcommand, opts.EnvName); err != nil {
			return err
		}
	}

	args := cdkArgs(opts.Subcommand, opts.EnvName)
	switch opts.Subcommand {
	case "deploy":
		args = append(args, "--require-approval", "never")
		if opts.Hotswap {
			args = append(args, "--hotswap")
		}
	case "destroy":
		// Confirmation happened above.
		args = append(args, "--force")
	}

	zap.S().Debugw("running cdk", "env", opts.EnvName, "subcommand", opts.Subcommand, "dir", exec.Dir())

	// The cdk CLI and the asset publishing it spawns both read AWS_PROFILE.
	if cfg.Project.Profile != "" {
		exec = exec.WithEnv("AWS_PROFILE", cfg.Project.Profile)
	}

	return exec.WithOutput(opts.Output, opts.Output).Mise(ctx, "cdk", args...)
}

// checkEnvironment fails early for names the app would refuse to synthesize.
func checkEnvironment(envName string) error {
	envs, err := lfcdkconfig.DefaultEnvironments()
	if err != nil {
		return err
	}
	stacks, err := lfcdkconfig.DefaultStacks()
	if err != nil {
		return err
	}

	_, err = lfcdkconfig.Resolve(envs, stacks, envName)
	return err
}

func needsConfirmation(sub string) bool {
	return sub == "deploy" || sub == "destroy"
}

// cdkArgs selects every stack of the app. The app only declares the stacks
// of the environment given in the context.
func cdkArgs(sub, envName string) []string {
	return []string{sub, "--all", "--context", "env=" + envName}
}
