// Package confirm asks the operator to confirm changes to restricted environments.
package confirm

import (
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"
)

// ErrDeclined is returned when the operator answers no.
var ErrDeclined = errors.New("operation declined")

type FormRunner interface {
	Run(form *huh.Form) error
}

type InteractiveRunner struct{}

func NewInteractiveRunner() *InteractiveRunner {
	return &InteractiveRunner{}
}

func (r *InteractiveRunner) Run(form *huh.Form) error {
	return form.Run()
}

type AccessibleRunner struct {
	output io.Writer
	input  io.Reader
}

func NewAccessibleRunner(output io.Writer, input io.Reader) *AccessibleRunner {
	return &AccessibleRunner{
		output: output,
		input:  input,
	}
}

func (r *AccessibleRunner) Run(form *huh.Form) error {
	return form.
		WithAccessible(true).
		WithOutput(r.output).
		WithInput(r.input).
		Run()
}

// Prompter asks for confirmation of an operation on an environment.
type Prompter struct {
	runner FormRunner
}

func New(runner FormRunner) *Prompter {
	return &Prompter{runner: runner}
}

// Confirm returns nil when the operator accepts and ErrDeclined when not.
func (p *Prompter) Confirm(operation, envName string) error {
	var accepted bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s %s?", operation, envName)).
				Description(fmt.Sprintf("%q is a restricted environment.", envName)).
				Affirmative("Yes").
				Negative("No").
				Value(&accepted),
		),
	)

	if err := p.runner.Run(form); err != nil {
		return errors.Wrap(err, "confirmation failed")
	}

	if !accepted {
		return errors.Wrapf(ErrDeclined, "%s %s", operation, envName)
	}
	return nil
}
