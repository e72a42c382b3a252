package lfcdkutil

import (
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
)

// EnvContextKey is the CDK context key that selects the target environment,
// e.g. `cdk deploy --context env=dev`.
const EnvContextKey = "env"

// ErrEnvNotSpecified is returned when the env context key is not set.
var ErrEnvNotSpecified = errors.New(
	"please specify the environment name using the --context parameter, for example: cdk deploy --context env=dev")

// EnvName reads the target environment name from the construct tree.
func EnvName(scope constructs.Construct) (string, error) {
	val := scope.Node().TryGetContext(jsii.String(EnvContextKey))
	if val == nil {
		return "", ErrEnvNotSpecified
	}

	s, ok := val.(string)
	if !ok {
		return "", errors.Newf("context key %q must be a string, got %T", EnvContextKey, val)
	}
	if s == "" {
		return "", ErrEnvNotSpecified
	}

	return s, nil
}
