// Package lfcdkweb declares the Langfuse web service and its target group on
// the edge listener.
package lfcdkweb

import (
	"maps"
	"strconv"

	"github.com/advdv/lfcdk/lfcdk/lfcdkauth"
	"github.com/advdv/lfcdk/lfcdk/lfcdkcache"
	"github.com/advdv/lfcdk/lfcdk/lfcdkclickhouse"
	"github.com/advdv/lfcdk/lfcdk/lfcdkdatabase"
	"github.com/advdv/lfcdk/lfcdk/lfcdkedge"
	"github.com/advdv/lfcdk/lfcdk/lfcdkenv"
	"github.com/advdv/lfcdk/lfcdkutil"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticloadbalancingv2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"go.uber.org/zap"
)

// Port is the port the web container listens on.
const Port = 3000

// Web provides access to the web service.
type Web interface {
	Service() awsecs.FargateService
}

// Props configures the Web construct.
type Props struct {
	Vpc     awsec2.IVpc
	Cluster awsecs.ICluster
	// ImageTag of langfuse/langfuse.
	ImageTag       string
	CPU            float64
	MemoryLimitMiB float64
	DesiredCount   float64
	FargateSpot    bool

	// DisableEmailPasswordAuth sets AUTH_DISABLE_USERNAME_PASSWORD.
	DisableEmailPasswordAuth bool
	// Auth wires the Cognito provider when set.
	Auth lfcdkauth.Auth

	Common     lfcdkenv.Common
	Edge       lfcdkedge.Edge
	Database   lfcdkdatabase.Database
	Cache      lfcdkcache.Cache
	ClickHouse lfcdkclickhouse.ClickHouse
	Bucket     awss3.IBucket
}

type web struct {
	service awsecs.FargateService
}

// Environment returns the web specific container variables on top of common.
func Environment(common map[string]*string, appURL *string, disableEmailPasswordAuth bool,
	auth map[string]*string,
) map[string]*string {
	env := map[string]*string{
		"NEXTAUTH_URL": appURL,
		"HOSTNAME":     jsii.String("0.0.0.0"),
	}
	maps.Copy(env, common)

	if disableEmailPasswordAuth {
		env["AUTH_DISABLE_USERNAME_PASSWORD"] = jsii.String(strconv.FormatBool(true))
	}
	maps.Copy(env, auth)

	return env
}

// New creates the web task definition, service and target group.
func New(scope constructs.Construct, props Props) Web {
	scope = constructs.NewConstruct(scope, jsii.String("Web"))
	con := &web{}

	taskDef := awsecs.NewFargateTaskDefinition(scope, jsii.String("TaskDefinition"),
		&awsecs.FargateTaskDefinitionProps{
			Cpu:            jsii.Number(props.CPU),
			MemoryLimitMiB: jsii.Number(props.MemoryLimitMiB),
			RuntimePlatform: &awsecs.RuntimePlatform{
				CpuArchitecture: awsecs.CpuArchitecture_X86_64(),
			},
		})

	nextAuthSecret := awssecretsmanager.NewSecret(scope, jsii.String("NextAuthSecret"), &awssecretsmanager.SecretProps{
		GenerateSecretString: &awssecretsmanager.SecretStringGenerator{
			PasswordLength:     jsii.Number(32),
			ExcludePunctuation: jsii.Bool(true),
		},
	})

	var authEnv map[string]*string
	if props.Auth != nil {
		zap.S().Debugw("wiring Cognito identity provider into web service")
		authEnv = props.Auth.Environment()
	}

	env := Environment(props.Common.Environment(), props.Edge.URL(), props.DisableEmailPasswordAuth, authEnv)

	secrets := props.Common.Secrets()
	secrets["NEXTAUTH_SECRET"] = awsecs.Secret_FromSecretsManager(nextAuthSecret, nil)

	taskDef.AddContainer(jsii.String("Container"), &awsecs.ContainerDefinitionOptions{
		Image:        awsecs.ContainerImage_FromRegistry(jsii.String("langfuse/langfuse:"+props.ImageTag), nil),
		PortMappings: &[]*awsecs.PortMapping{{ContainerPort: jsii.Number(Port), Name: jsii.String("web")}},
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
		DesiredCount:               jsii.Number(props.DesiredCount),
	})

	lfcdkenv.AllowToBackends(con.service, props.Database, props.Cache, props.ClickHouse)

	targetGroup := awselasticloadbalancingv2.NewApplicationTargetGroup(scope, jsii.String("TargetGroup"),
		&awselasticloadbalancingv2.ApplicationTargetGroupProps{
			Vpc:                 props.Vpc,
			Targets:             &[]awselasticloadbalancingv2.IApplicationLoadBalancerTarget{con.service},
			Protocol:            awselasticloadbalancingv2.ApplicationProtocol_HTTP,
			Port:                jsii.Number(Port),
			DeregistrationDelay: awscdk.Duration_Seconds(jsii.Number(10)),
			HealthCheck: &awselasticloadbalancingv2.HealthCheck{
				Interval:                awscdk.Duration_Seconds(jsii.Number(20)),
				HealthyHttpCodes:        jsii.String("200-299,307"),
				HealthyThresholdCount:   jsii.Number(2),
				UnhealthyThresholdCount: jsii.Number(6),
			},
		})

	props.Edge.Listener().AddTargetGroups(jsii.String("Web"),
		&awselasticloadbalancingv2.AddApplicationTargetGroupsProps{
			TargetGroups: &[]awselasticloadbalancingv2.IApplicationTargetGroup{targetGroup},
		})

	return con
}

func (w *web) Service() awsecs.FargateService { return w.service }
