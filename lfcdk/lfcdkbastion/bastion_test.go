package lfcdkbastion_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/advdv/lfcdk/lfcdk/lfcdkbastion"
	"github.com/advdv/lfcdk/lfcdk/lfcdkdatabase"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBastion(t *testing.T) {
	t.Parallel()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("Test"), &awscdk.StackProps{
		Env: &awscdk.Environment{Account: jsii.String("123456789012"), Region: jsii.String("eu-west-1")},
	})
	vpc := awsec2.NewVpc(stack, jsii.String("Vpc"), nil)
	db := lfcdkdatabase.New(stack, lfcdkdatabase.Props{Vpc: vpc})

	b := lfcdkbastion.New(stack, lfcdkbastion.Props{Vpc: vpc, Database: db})
	assert.NotNil(t, b.Host())

	tmpl := assertions.Template_FromStack(stack, nil)
	tmpl.HasResourceProperties(jsii.String("AWS::EC2::Instance"), map[string]any{
		"InstanceType": "t4g.nano",
		"BlockDeviceMappings": []any{
			map[string]any{
				"DeviceName": "/dev/sdf",
				"Ebs":        assertions.Match_ObjectLike(&map[string]any{"VolumeSize": 8, "Encrypted": true}),
			},
		},
	})

	outputs := tmpl.FindOutputs(jsii.String("*"), nil)
	var ids []string
	for id := range *outputs {
		ids = append(ids, id)
	}
	for _, name := range []string{"PortForwardCommand", "DatabaseSecretsCommand"} {
		require.True(t, slices.ContainsFunc(ids, func(id string) bool { return strings.Contains(id, name) }),
			"missing output %s in %v", name, ids)
	}

	tmpl.HasOutput(jsii.String("*"), map[string]any{
		"Value": map[string]any{
			"Fn::Join": assertions.Match_ArrayWith(&[]any{
				assertions.Match_ArrayWith(&[]any{
					assertions.Match_StringLikeRegexp(jsii.String("aws ssm start-session --region eu-west-1 --target ")),
				}),
			}),
		},
	})
}
