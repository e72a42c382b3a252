// Package config loads the .lfcdk.yml project file of the lf command.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

const FileName = ".lfcdk.yml"

// Project is the content of the project file.
type Project struct {
	Version string `yaml:"version" validate:"required,oneof=1"`

	// CDKDir is the directory holding cdk.json, relative to the project file.
	CDKDir string `yaml:"cdkDir,omitempty"`

	// Profile is passed to the cdk CLI and the AWS SDK when set.
	Profile string `yaml:"profile,omitempty"`

	// RestrictedEnvironments ask for confirmation before deploy and destroy.
	RestrictedEnvironments []string `yaml:"restrictedEnvironments,omitempty" validate:"dive,required"`
}

// IsRestricted reports whether envName is listed in RestrictedEnvironments.
func (p Project) IsRestricted(envName string) bool {
	return slices.Contains(p.RestrictedEnvironments, envName)
}

func Default() Project {
	return Project{
		Version: "1",
		CDKDir:  ".",
	}
}

type Loader interface {
	Load(path string) (Project, error)
}

type Finder interface {
	Find(startDir string) (proj Project, projectDir string, err error)
}

type yamlLoader struct {
	validate *validator.Validate
}

func NewLoader() Loader {
	return &yamlLoader{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (l *yamlLoader) Load(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, errors.Wrap(err, "failed to read project file")
	}

	dec := yaml.NewDecoder(
		bytes.NewReader(data),
		yaml.Validator(l.validate),
		yaml.Strict(),
	)

	var proj Project
	if err := dec.Decode(&proj); err != nil {
		return Project{}, errors.Wrap(err, "failed to parse project file")
	}

	if proj.CDKDir == "" {
		proj.CDKDir = Default().CDKDir
	}

	return proj, nil
}

type finder struct {
	loader Loader
}

func NewFinder(loader Loader) Finder {
	return &finder{loader: loader}
}

func (f *finder) Find(startDir string) (Project, string, error) {
	dir := startDir
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			proj, err := f.loader.Load(path)
			if err != nil {
				return Project{}, "", err
			}
			return proj, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Project{}, "", errors.Newf(
				"project file %s not found (searched from %s to root)",
				FileName, startDir,
			)
		}
		dir = parent
	}
}
