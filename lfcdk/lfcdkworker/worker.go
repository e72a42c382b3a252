// Package lfcdkworker declares the Langfuse worker service. It has no load
// balancer: it only consumes the queue and writes to the stores.
package lfcdkworker

import (
	"github.com/advdv/lfcdk/lfcdk/lfcdkcache"
	"github.com/advdv/lfcdk/lfcdk/lfcdkclickhouse"
	"github.com/advdv/lfcdk/lfcdk/lfcdkdatabase"
	"github.com/advdv/lfcdk/lfcdk/lfcdkenv"
	"github.com/advdv/lfcdk/lfcdkutil"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// Port is the port the worker container listens on.
const Port = 3030

// Worker provides access to the worker service.
type Worker interface {
	Service() awsecs.FargateService
}

// Props configures the Worker construct.
type Props struct {
	Cluster awsecs.ICluster
	// ImageTag of langfuse/langfuse-worker.
	ImageTag       string
	CPU            float64
	MemoryLimitMiB float64
	FargateSpot    bool

	Common     lfcdkenv.Common
	Database   lfcdkdatabase.Database
	Cache      lfcdkcache.Cache
	ClickHouse lfcdkclickhouse.ClickHouse
	Bucket     awss3.IBucket
}

type worker struct {
	service awsecs.FargateService
}

// New creates the worker task definition and service.
func New(scope constructs.Construct, props Props) Worker {
	scope = constructs.NewConstruct(scope, jsii.String("Worker"))
	con := &worker{}

	taskDef := awsecs.NewFargateTaskDefinition(scope, jsii.String("TaskDefinition"),
		&awsecs.FargateTaskDefinitionProps{
			Cpu:            jsii.Number(props.CPU),
			MemoryLimitMiB: jsii.Number(props.MemoryLimitMiB),
			RuntimePlatform: &awsecs.RuntimePlatform{
				CpuArchitecture: awsecs.CpuArchitecture_X86_64(),
			},
		})

	env := props.Common.Environment()
	secrets := props.Common.Secrets()

	taskDef.AddContainer(jsii.String("Container"), &awsecs.ContainerDefinitionOptions{
		Image:        awsecs.ContainerImage_FromRegistry(jsii.String("langfuse/langfuse-worker:"+props.ImageTag), nil),
		PortMappings: &[]*awsecs.PortMapping{{ContainerPort: jsii.Number(Port), Name: jsii.String("worker")}},
		Logging:      awsecs.NewAwsLogDriver(&awsecs.AwsLogDriverProps{StreamPrefix: jsii.String("log")}),
		Environment:  &env,
		Secrets:      &secrets,
		HealthCheck:  lfcdkutil.HTTPHealthCheck(Port, "/", 15, 30, 3),
	})

	props.Bucket.GrantReadWrite(taskDef.TaskRole(), nil)

	con.service = awsecs.NewFargateService(scope, jsii.String("Service"), &awsecs.FargateServiceProps{
		Cluster:        props.Cluster,
		TaskDefinition: taskDef,
		ServiceConnectConfiguration: &awsecs.ServiceConnectProps{
			LogDriver: lfcdkutil.ServiceConnectLogs(),
		},
		EnableExecuteCommand:       jsii.Bool(true),
		CapacityProviderStrategies: lfcdkutil.CapacityProviderStrategies(props.FargateSpot),
	})

	lfcdkenv.AllowToBackends(con.service, props.Database, props.Cache, props.ClickHouse)

	return con
}

func (w *worker) Service() awsecs.FargateService { return w.service }
