package stackoutput_test

import (
	"context"
	"testing"

	"github.com/advdv/lfcdk/cmd/lf/internal/stackoutput"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCFN struct {
	stacks map[string][]types.Output
	calls  []string
}

func (f *fakeCFN) DescribeStacks(_ context.Context, in *cloudformation.DescribeStacksInput,
	_ ...func(*cloudformation.Options),
) (*cloudformation.DescribeStacksOutput, error) {
	name := aws.ToString(in.StackName)
	f.calls = append(f.calls, name)

	outputs, ok := f.stacks[name]
	if !ok {
		return nil, errors.Newf("Stack with id %s does not exist", name)
	}
	return &cloudformation.DescribeStacksOutput{
		Stacks: []types.Stack{{StackName: aws.String(name), Outputs: outputs}},
	}, nil
}

func TestOutput(t *testing.T) {
	t.Parallel()

	api := &fakeCFN{stacks: map[string][]types.Output{
		"LangfuseDev": {
			{OutputKey: aws.String("Other"), OutputValue: aws.String("x")},
			{OutputKey: aws.String("LangfuseURL"), OutputValue: aws.String("http://lb.example")},
		},
		"LangfuseEmpty": nil,
	}}
	r := stackoutput.NewReader(api)

	t.Run("found", func(t *testing.T) {
		got, err := r.Output(context.Background(), "LangfuseDev", "LangfuseURL")
		require.NoError(t, err)
		assert.Equal(t, "http://lb.example", got)
	})

	t.Run("missing output", func(t *testing.T) {
		_, err := r.Output(context.Background(), "LangfuseEmpty", "LangfuseURL")
		var nf *stackoutput.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "LangfuseEmpty", nf.StackName)
	})

	t.Run("missing stack", func(t *testing.T) {
		_, err := r.Output(context.Background(), "LangfuseProd", "LangfuseURL")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to describe stack LangfuseProd")
	})

	assert.Equal(t, []string{"LangfuseDev", "LangfuseEmpty", "LangfuseProd"}, api.calls)
}
