// Package cmdexec runs external commands for the lf command.
package cmdexec

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/advdv/lfcdk/cmd/lf/internal/config"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Executor provides a common interface for executing external commands.
type Executor interface {
	// WithOutput returns a new Executor that writes to the given stdout/stderr.
	WithOutput(stdout, stderr io.Writer) Executor

	// WithEnv returns a new Executor with an additional environment variable.
	WithEnv(key, value string) Executor

	// WithDryRun returns a new Executor that prints command lines to stdout
	// instead of running them.
	WithDryRun() Executor

	// Dir returns the working directory for this executor.
	Dir() string

	// Run executes a command and streams output to configured writers.
	Run(ctx context.Context, name string, args ...string) error

	// Mise executes a command wrapped with "mise exec --".
	Mise(ctx context.Context, name string, args ...string) error
}

type executor struct {
	dir    string
	stdout io.Writer
	stderr io.Writer
	env    []string
	dryRun bool
}

// New creates an Executor that runs in the CDK directory of the project.
func New(cfg config.Config) Executor {
	return &executor{dir: cfg.CDKDir()}
}

// NewWithDir creates an Executor with an explicit working directory.
func NewWithDir(dir string) Executor {
	return &executor{dir: dir}
}

func (e *executor) clone() *executor {
	c := *e
	c.env = append([]string(nil), e.env...)
	return &c
}

func (e *executor) WithOutput(stdout, stderr io.Writer) Executor {
	c := e.clone()
	c.stdout, c.stderr = stdout, stderr
	return c
}

func (e *executor) WithEnv(key, value string) Executor {
	c := e.clone()
	c.env = append(c.env, key+"="+value)
	return c
}

func (e *executor) WithDryRun() Executor {
	c := e.clone()
	c.dryRun = true
	return c
}

func (e *executor) Dir() string {
	return e.dir
}

func (e *executor) Run(ctx context.Context, name string, args ...string) error {
	if e.dryRun {
		return e.print(name, args)
	}

	cmd := e.command(ctx, name, args)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s failed", name)
	}

	return nil
}

func (e *executor) Mise(ctx context.Context, name string, args ...string) error {
	miseArgs := make([]string, 0, 3+len(args))
	miseArgs = append(miseArgs, "exec", "--", name)
	miseArgs = append(miseArgs, args...)

	return e.Run(ctx, "mise", miseArgs...)
}

func (e *executor) command(ctx context.Context, name string, args []string) *exec.Cmd {
	zap.S().Debugw("running command", "dir", e.dir, "name", name, "args", args, "env", e.env)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.dir
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}
	return cmd
}

func (e *executor) print(name string, args []string) error {
	w := e.stdout
	if w == nil {
		w = os.Stdout
	}

	line := name
	if len(args) > 0 {
		line += " " + strings.Join(args, " ")
	}
	for _, kv := range e.env {
		line = kv + " " + line
	}

	if _, err := fmt.Fprintln(w, line); err != nil {
		return errors.Wrap(err, "failed to print command")
	}
	return nil
}
