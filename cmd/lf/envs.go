package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/advdv/lfcdk/cmd/lf/internal/config"
	"github.com/advdv/lfcdk/lfcdk/lfcdkedge"
	"github.com/advdv/lfcdk/lfcdkconfig"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
)

func envsCmd() *cli.Command {
	return &cli.Command{
		Name:   "envs",
		Usage:  "List the configured environments",
		Action: runEnvs,
	}
}

func runEnvs(ctx context.Context, _ *cli.Command) error {
	envs, err := lfcdkconfig.DefaultEnvironments()
	if err != nil {
		return err
	}
	stacks, err := lfcdkconfig.DefaultStacks()
	if err != nil {
		return err
	}

	// The project file is optional here, it only adds the restricted column.
	var proj config.Project
	if _, cfg, err := config.Ensure(ctx); err == nil {
		proj = cfg.Project
	}

	return printEnvironments(os.Stdout, envs, stacks, proj)
}

func printEnvironments(w io.Writer, envs *lfcdkconfig.Environments, stacks *lfcdkconfig.Stacks,
	proj config.Project,
) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tREGION\tHOST\tTOPOLOGY\tFEATURES")

	for _, name := range envs.Names() {
		env, err := envs.Lookup(name)
		if err != nil {
			return err
		}

		region := env.RegionOrEmpty()
		if region == "" {
			region = "(default)"
		}

		host := "(generated)"
		if env.HasDomain() {
			host = env.Domain.FQDN()
		}

		features := environmentFeatures(env, proj)
		if stack, err := stacks.Lookup(name); err == nil {
			features = append(features, stackFeatures(stack)...)
		} else {
			features = append(features, "no-stack-config")
		}
		if err := env.Validate(); err != nil {
			features = append(features, "invalid")
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, region, host,
			lfcdkedge.SelectTopology(env.CloudFrontVpcOriginEnabled()), strings.Join(features, ","))
	}

	return errors.Wrap(tw.Flush(), "failed to write environments")
}

func environmentFeatures(env lfcdkconfig.EnvironmentConfig, proj config.Project) []string {
	var features []string
	if env.CognitoAuthEnabled() {
		features = append(features, "cognito")
	}
	if env.EmailPasswordAuthDisabled() {
		features = append(features, "no-password-login")
	}
	if proj.IsRestricted(env.Name) {
		features = append(features, "restricted")
	}
	return features
}

func stackFeatures(stack lfcdkconfig.StackConfig) []string {
	var features []string
	if stack.FargateSpot() {
		features = append(features, "spot")
	}
	if stack.NatInstance() {
		features = append(features, "nat-instance")
	}
	if stack.Bastion() {
		features = append(features, "bastion")
	}
	if _, _, ok := stack.ExplicitAllowlists(); ok {
		features = append(features, "allow-list")
	}
	return features
}
