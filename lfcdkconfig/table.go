package lfcdkconfig

import (
	"bytes"
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

//go:embed environments.yml
var environmentsYAML []byte

//go:embed stacks.yml
var stacksYAML []byte

// table is an immutable name-keyed lookup.
type table[T any] struct {
	kind    string
	records map[string]T
}

func (t table[T]) lookup(name string) (T, error) {
	rec, ok := t.records[name]
	if !ok {
		var zero T
		return zero, &NotFoundError{Kind: t.kind, Name: name}
	}
	return rec, nil
}

func (t table[T]) names() []string {
	names := make([]string, 0, len(t.records))
	for name := range t.records {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Environments is the table of EnvironmentConfig records.
type Environments struct{ t table[EnvironmentConfig] }

// Lookup returns the record for the exact name, or a *NotFoundError.
func (e *Environments) Lookup(name string) (EnvironmentConfig, error) { return e.t.lookup(name) }

// Names returns the sorted environment names.
func (e *Environments) Names() []string { return e.t.names() }

// Stacks is the table of StackConfig records.
type Stacks struct{ t table[StackConfig] }

// Lookup returns the record for the exact name, or a *NotFoundError.
func (s *Stacks) Lookup(name string) (StackConfig, error) { return s.t.lookup(name) }

// Names returns the sorted environment names.
func (s *Stacks) Names() []string { return s.t.names() }

// NewEnvironments builds a table from records. Names must be unique.
func NewEnvironments(records ...EnvironmentConfig) (*Environments, error) {
	t, err := newTable("environment", records, func(r EnvironmentConfig) string { return r.Name })
	if err != nil {
		return nil, err
	}
	return &Environments{t: t}, nil
}

// NewStacks builds a table from records. Names must be unique.
func NewStacks(records ...StackConfig) (*Stacks, error) {
	t, err := newTable("stack", records, func(r StackConfig) string { return r.Name })
	if err != nil {
		return nil, err
	}
	return &Stacks{t: t}, nil
}

func newTable[T any](kind string, records []T, key func(T) string) (table[T], error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	t := table[T]{kind: kind, records: make(map[string]T, len(records))}

	var msgs []string
	for _, rec := range records {
		name := key(rec)
		if _, dup := t.records[name]; dup {
			msgs = append(msgs, fmt.Sprintf("%s %q is defined more than once", kind, name))
			continue
		}

		if err := validate.Struct(rec); err != nil {
			var validationErrs validator.ValidationErrors
			if !errors.As(err, &validationErrs) {
				return table[T]{}, errors.Wrapf(err, "%s %q validation failed", kind, name)
			}
			for _, e := range validationErrs {
				msgs = append(msgs, fmt.Sprintf("%s %q: %s", kind, name, formatValidationError(e)))
			}
			continue
		}

		t.records[name] = rec
	}

	if len(msgs) > 0 {
		return table[T]{}, errors.Newf("%s config validation errors:\n  - %s", kind, strings.Join(msgs, "\n  - "))
	}

	return t, nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Namespace())
	case "gt", "gte":
		return fmt.Sprintf("%s must be %s %s (got %v)", e.Namespace(), e.Tag(), e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %v)", e.Namespace(), e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation %q", e.Namespace(), e.Tag())
	}
}

type environmentsFile struct {
	Environments map[string]EnvironmentConfig `yaml:"environments" validate:"required"`
}

type stacksFile struct {
	Stacks map[string]StackConfig `yaml:"stacks" validate:"required"`
}

// ParseEnvironments decodes an environments document.
func ParseEnvironments(data []byte) (*Environments, error) {
	var doc environmentsFile
	if err := decodeStrict(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse environments")
	}

	records := make([]EnvironmentConfig, 0, len(doc.Environments))
	for name, rec := range doc.Environments {
		rec.Name = name
		records = append(records, rec)
	}
	return NewEnvironments(records...)
}

// ParseStacks decodes a stacks document.
func ParseStacks(data []byte) (*Stacks, error) {
	var doc stacksFile
	if err := decodeStrict(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse stacks")
	}

	records := make([]StackConfig, 0, len(doc.Stacks))
	for name, rec := range doc.Stacks {
		rec.Name = name
		records = append(records, rec)
	}
	return NewStacks(records...)
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	return dec.Decode(v)
}

var (
	defaultEnvironments = sync.OnceValues(func() (*Environments, error) {
		return ParseEnvironments(environmentsYAML)
	})
	defaultStacks = sync.OnceValues(func() (*Stacks, error) {
		return ParseStacks(stacksYAML)
	})
)

// DefaultEnvironments returns the table compiled into the binary.
func DefaultEnvironments() (*Environments, error) { return defaultEnvironments() }

// DefaultStacks returns the table compiled into the binary.
func DefaultStacks() (*Stacks, error) { return defaultStacks() }

// Resolved is the pair of records for one environment.
type Resolved struct {
	Env   EnvironmentConfig
	Stack StackConfig
}

// Resolve looks up name in both tables and checks the environment for invalid
// feature combinations. Any error means nothing should be declared.
func Resolve(envs *Environments, stacks *Stacks, name string) (Resolved, error) {
	env, err := envs.Lookup(name)
	if err != nil {
		return Resolved{}, err
	}

	stack, err := stacks.Lookup(name)
	if err != nil {
		return Resolved{}, err
	}

	if err := env.Validate(); err != nil {
		return Resolved{}, err
	}

	return Resolved{Env: env, Stack: stack}, nil
}
