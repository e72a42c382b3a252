package lfcdkclickhouse_test

import (
	"testing"

	"github.com/advdv/lfcdk/lfcdk/lfcdkclickhouse"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
)

func synth(t *testing.T, spot bool) assertions.Template {
	t.Helper()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("Test"), nil)
	vpc := awsec2.NewVpc(stack, jsii.String("Vpc"), nil)
	cluster := awsecs.NewCluster(stack, jsii.String("Cluster"), &awsecs.ClusterProps{
		Vpc: vpc,
		DefaultCloudMapNamespace: &awsecs.CloudMapNamespaceOptions{
			Name:                 jsii.String("local"),
			UseForServiceConnect: jsii.Bool(true),
		},
	})

	ch := lfcdkclickhouse.New(stack, lfcdkclickhouse.Props{
		Vpc:            vpc,
		Cluster:        cluster,
		ImageTag:       "25.1",
		CPU:            1024,
		MemoryLimitMiB: 2048,
		FargateSpot:    spot,
	})
	assert.NotNil(t, ch.Password())

	return assertions.Template_FromStack(stack, nil)
}

func TestTaskDefinition(t *testing.T) {
	t.Parallel()

	tmpl := synth(t, false)
	tmpl.HasResourceProperties(jsii.String("AWS::ECS::TaskDefinition"), map[string]any{
		"Cpu":    "1024",
		"Memory": "2048",
		"ContainerDefinitions": assertions.Match_ArrayWith(&[]any{
			assertions.Match_ObjectLike(&map[string]any{
				"Image": "clickhouse/clickhouse-server:25.1",
				"PortMappings": []any{
					assertions.Match_ObjectLike(&map[string]any{"ContainerPort": 8123, "Name": "clickhouse-http"}),
					assertions.Match_ObjectLike(&map[string]any{"ContainerPort": 9000, "Name": "clickhouse-tcp"}),
				},
				"MountPoints": []any{
					assertions.Match_ObjectLike(&map[string]any{"ContainerPath": "/var/lib/clickhouse"}),
				},
			}),
		}),
	})
	tmpl.HasResourceProperties(jsii.String("AWS::EFS::FileSystem"), map[string]any{
		"Encrypted": true,
	})

	services := tmpl.FindResources(jsii.String("AWS::ECS::Service"), nil)
	for _, svc := range *services {
		props := (*svc)["Properties"].(map[string]any)
		assert.NotContains(t, props, "CapacityProviderStrategy")
	}
}

func TestFargateSpot(t *testing.T) {
	t.Parallel()

	tmpl := synth(t, true)
	tmpl.HasResourceProperties(jsii.String("AWS::ECS::Service"), map[string]any{
		"CapacityProviderStrategy": []any{
			map[string]any{"CapacityProvider": "FARGATE", "Weight": 0},
			map[string]any{"CapacityProvider": "FARGATE_SPOT", "Weight": 1},
		},
	})
}

func TestServiceConnectURLs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://clickhouse-http.local:8123", lfcdkclickhouse.HTTPURL("local"))
	assert.Equal(t, "clickhouse://clickhouse-tcp.local:9000", lfcdkclickhouse.MigrationURL("local"))
}
