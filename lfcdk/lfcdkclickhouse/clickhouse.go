// Package lfcdkclickhouse declares the single-node ClickHouse server that stores
// Langfuse traces and observations. It runs as a Fargate service backed by EFS and
// is reachable by the other services through Service Connect.
package lfcdkclickhouse

import (
	"github.com/advdv/lfcdk/lfcdkutil"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsefs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

const (
	// DatabaseName is the ClickHouse database Langfuse writes to.
	DatabaseName = "default"
	// User is the ClickHouse user Langfuse authenticates as.
	User = "clickhouse"
	// HTTPPort is the HTTP interface port.
	HTTPPort = 8123
	// TCPPort is the native protocol port, used for migrations.
	TCPPort = 9000

	httpPortName = "clickhouse-http"
	tcpPortName  = "clickhouse-tcp"
	volumeName   = "clickhouse"
)

// HTTPURL is the Service Connect address of the HTTP interface.
func HTTPURL(namespace string) string {
	return "http://" + httpPortName + "." + namespace + ":8123"
}

// MigrationURL is the Service Connect address of the native interface.
func MigrationURL(namespace string) string {
	return "clickhouse://" + tcpPortName + "." + namespace + ":9000"
}

// ClickHouse provides access to the server credentials and network rules.
type ClickHouse interface {
	// Password returns the generated password of User.
	Password() awssecretsmanager.ISecret
	// Connections controls network access. The default port is HTTPPort.
	Connections() awsec2.Connections
}

// Props configures the ClickHouse construct.
type Props struct {
	// Vpc is the network the file system and service are placed in. Required.
	Vpc awsec2.IVpc
	// Cluster is the ECS cluster with a Service Connect namespace. Required.
	Cluster awsecs.ICluster
	// ImageTag of clickhouse/clickhouse-server. Required.
	ImageTag string
	// CPU is the task cpu units. Required.
	CPU float64
	// MemoryLimitMiB is the task memory. Required.
	MemoryLimitMiB float64
	// FargateSpot runs the task on Fargate Spot.
	FargateSpot bool
}

type clickHouse struct {
	password    awssecretsmanager.Secret
	connections awsec2.Connections
}

// New creates the file system, task definition and service.
func New(scope constructs.Construct, props Props) ClickHouse {
	scope = constructs.NewConstruct(scope, jsii.String("ClickHouse"))
	con := &clickHouse{}

	fileSystem := awsefs.NewFileSystem(scope, jsii.String("FileSystem"), &awsefs.FileSystemProps{
		Vpc:             props.Vpc,
		Encrypted:       jsii.Bool(true),
		LifecyclePolicy: awsefs.LifecyclePolicy_AFTER_14_DAYS,
		PerformanceMode: awsefs.PerformanceMode_GENERAL_PURPOSE,
		ThroughputMode:  awsefs.ThroughputMode_BURSTING,
		RemovalPolicy:   awscdk.RemovalPolicy_DESTROY,
	})

	fileSystem.AddToResourcePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions:    jsii.Strings("elasticfilesystem:ClientMount"),
		Principals: &[]awsiam.IPrincipal{awsiam.NewAnyPrincipal()},
		Conditions: &map[string]any{
			"Bool": map[string]string{
				"elasticfilesystem:AccessedViaMountTarget": "true",
			},
		},
	}))

	taskDef := awsecs.NewFargateTaskDefinition(scope, jsii.String("TaskDefinition"),
		&awsecs.FargateTaskDefinitionProps{
			Cpu:            jsii.Number(props.CPU),
			MemoryLimitMiB: jsii.Number(props.MemoryLimitMiB),
			RuntimePlatform: &awsecs.RuntimePlatform{
				CpuArchitecture: awsecs.CpuArchitecture_X86_64(),
			},
			Volumes: &[]*awsecs.Volume{{
				Name: jsii.String(volumeName),
				EfsVolumeConfiguration: &awsecs.EfsVolumeConfiguration{
					FileSystemId: fileSystem.FileSystemId(),
				},
			}},
		})

	fileSystem.GrantRootAccess(taskDef.TaskRole())

	con.password = awssecretsmanager.NewSecret(scope, jsii.String("Password"), &awssecretsmanager.SecretProps{
		GenerateSecretString: &awssecretsmanager.SecretStringGenerator{
			PasswordLength:     jsii.Number(16),
			ExcludePunctuation: jsii.Bool(true),
		},
	})

	container := taskDef.AddContainer(jsii.String("Container"), &awsecs.ContainerDefinitionOptions{
		Image: awsecs.ContainerImage_FromRegistry(
			jsii.String("clickhouse/clickhouse-server:"+props.ImageTag), nil),
		PortMappings: &[]*awsecs.PortMapping{
			{
				Name:          jsii.String(httpPortName),
				HostPort:      jsii.Number(HTTPPort),
				ContainerPort: jsii.Number(HTTPPort),
				AppProtocol:   awsecs.AppProtocol_Http(),
			},
			{
				Name:          jsii.String(tcpPortName),
				HostPort:      jsii.Number(TCPPort),
				ContainerPort: jsii.Number(TCPPort),
			},
		},
		Logging: awsecs.NewAwsLogDriver(&awsecs.AwsLogDriverProps{StreamPrefix: jsii.String("log")}),
		Environment: &map[string]*string{
			"CLICKHOUSE_DB":   jsii.String(DatabaseName),
			"CLICKHOUSE_USER": jsii.String(User),
		},
		Secrets: &map[string]awsecs.Secret{
			"CLICKHOUSE_PASSWORD": awsecs.Secret_FromSecretsManager(con.password, nil),
		},
		HealthCheck: lfcdkutil.HTTPHealthCheck(HTTPPort, "/ping", 5, 10, 10),
	})

	container.AddMountPoints(&awsecs.MountPoint{
		SourceVolume:  jsii.String(volumeName),
		ContainerPath: jsii.String("/var/lib/clickhouse"),
		ReadOnly:      jsii.Bool(false),
	})

	securityGroup := awsec2.NewSecurityGroup(scope, jsii.String("SecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc: props.Vpc,
	})

	service := awsecs.NewFargateService(scope, jsii.String("Service"), &awsecs.FargateServiceProps{
		Cluster:        props.Cluster,
		TaskDefinition: taskDef,
		ServiceConnectConfiguration: &awsecs.ServiceConnectProps{
			Services: &[]*awsecs.ServiceConnectService{
				{PortMappingName: jsii.String(httpPortName), Port: jsii.Number(HTTPPort)},
				{PortMappingName: jsii.String(tcpPortName), Port: jsii.Number(TCPPort)},
			},
			LogDriver: lfcdkutil.ServiceConnectLogs(),
		},
		EnableExecuteCommand:       jsii.Bool(true),
		SecurityGroups:             &[]awsec2.ISecurityGroup{securityGroup},
		CapacityProviderStrategies: lfcdkutil.CapacityProviderStrategies(props.FargateSpot),
	})

	fileSystem.Connections().AllowDefaultPortFrom(service, nil)

	con.connections = awsec2.NewConnections(&awsec2.ConnectionsProps{
		SecurityGroups: &[]awsec2.ISecurityGroup{securityGroup},
		DefaultPort:    awsec2.Port_Tcp(jsii.Number(HTTPPort)),
	})

	return con
}

func (c *clickHouse) Password() awssecretsmanager.ISecret { return c.password }
func (c *clickHouse) Connections() awsec2.Connections     { return c.connections }
