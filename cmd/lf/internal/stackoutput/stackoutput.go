// Package stackoutput reads outputs of deployed CloudFormation stacks.
package stackoutput

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/cockroachdb/errors"
)

// DescribeStacksAPI is the part of the CloudFormation client used here.
type DescribeStacksAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput,
		optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// NotFoundError is returned when the stack has no output with the key.
type NotFoundError struct {
	StackName string
	OutputKey string
}

func (e *NotFoundError) Error() string {
	return "stack " + e.StackName + " has no output " + e.OutputKey
}

// Reader reads stack outputs.
type Reader struct {
	api DescribeStacksAPI
}

func NewReader(api DescribeStacksAPI) *Reader {
	return &Reader{api: api}
}

// NewFromProfile creates a Reader from the shared AWS configuration. Empty
// profile and region fall back to the SDK defaults.
func NewFromProfile(ctx context.Context, profile, region string) (*Reader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return NewReader(cloudformation.NewFromConfig(cfg)), nil
}

// Output returns the value of outputKey on stackName.
func (r *Reader) Output(ctx context.Context, stackName, outputKey string) (string, error) {
	resp, err := r.api.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to describe stack %s", stackName)
	}

	for _, stack := range resp.Stacks {
		for _, out := range stack.Outputs {
			if aws.ToString(out.OutputKey) == outputKey {
				return aws.ToString(out.OutputValue), nil
			}
		}
	}

	return "", &NotFoundError{StackName: stackName, OutputKey: outputKey}
}
