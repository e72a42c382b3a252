package lfcdkdatabase_test

import (
	"testing"

	"github.com/advdv/lfcdk/lfcdk/lfcdkdatabase"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
)

func TestServerlessCapacity(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		scalesToZero bool
		wantMin      float64
	}{
		{false, 0.5},
		{true, 0},
	} {
		app := awscdk.NewApp(nil)
		stack := awscdk.NewStack(app, jsii.String("Test"), nil)
		vpc := awsec2.NewVpc(stack, jsii.String("Vpc"), nil)

		db := lfcdkdatabase.New(stack, lfcdkdatabase.Props{Vpc: vpc, ScalesToZero: tt.scalesToZero})
		assert.NotNil(t, db.Secret())
		assert.NotNil(t, db.Connections())

		tmpl := assertions.Template_FromStack(stack, nil)
		tmpl.HasResourceProperties(jsii.String("AWS::RDS::DBCluster"), map[string]any{
			"Engine":             "aurora-postgresql",
			"EngineVersion":      "16.6",
			"DatabaseName":       "langfuse",
			"StorageEncrypted":   true,
			"EnableHttpEndpoint": true,
			"ServerlessV2ScalingConfiguration": map[string]any{
				"MinCapacity": tt.wantMin,
				"MaxCapacity": 2,
			},
		})
		tmpl.HasResourceProperties(jsii.String("AWS::RDS::DBClusterParameterGroup"), map[string]any{
			"Parameters": map[string]any{"idle_session_timeout": "60000"},
		})
	}
}
