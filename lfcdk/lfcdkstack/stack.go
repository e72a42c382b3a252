// Package lfcdkstack composes the Langfuse constructs into deployable stacks for
// one environment.
//
// Up to two stacks are created. The primary stack holds the application in the
// environment's region. A second stack pinned to us-east-1 holds the
// certificates (and the CloudFront web ACL) that CloudFront and Cognito require
// in that region. It only exists when a custom domain is configured together
// with Cognito or the CloudFront VPC origin, and it is declared first so that
// the primary stack can reference its outputs.
package lfcdkstack

import (
	"github.com/advdv/lfcdk/lfcdk/lfcdkauth"
	"github.com/advdv/lfcdk/lfcdk/lfcdkbastion"
	"github.com/advdv/lfcdk/lfcdk/lfcdkcache"
	"github.com/advdv/lfcdk/lfcdk/lfcdkclickhouse"
	"github.com/advdv/lfcdk/lfcdk/lfcdkdatabase"
	"github.com/advdv/lfcdk/lfcdk/lfcdkedge"
	"github.com/advdv/lfcdk/lfcdk/lfcdkenv"
	"github.com/advdv/lfcdk/lfcdk/lfcdknetwork"
	"github.com/advdv/lfcdk/lfcdk/lfcdkweb"
	"github.com/advdv/lfcdk/lfcdk/lfcdkworker"
	"github.com/advdv/lfcdk/lfcdkconfig"
	"github.com/advdv/lfcdk/lfcdkutil"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	// PrimaryUnit names the application stack.
	PrimaryUnit = "Langfuse"
	// CertificateUnit names the us-east-1 stack.
	CertificateUnit = "LangfuseCerts"
	// URLOutput is the id of the output that carries the application URL.
	URLOutput = "LangfuseURL"
)

// ExportName is the CloudFormation export of the application URL.
func ExportName(envName string) string {
	return URLOutput + "-" + envName
}

// Props configures Synthesize.
type Props struct {
	// EnvName selects the environment. Required.
	EnvName string
	// Environments and Stacks are the configuration tables. Nil uses the
	// tables compiled into the binary.
	Environments *lfcdkconfig.Environments
	Stacks       *lfcdkconfig.Stacks
	// DefaultAccount and DefaultRegion apply when the environment does not pin
	// them. Empty falls back to CDK_DEFAULT_ACCOUNT and CDK_DEFAULT_REGION.
	DefaultAccount string
	DefaultRegion  string
}

// Deployment provides access to the declared stacks.
type Deployment interface {
	// Primary returns the application stack.
	Primary() awscdk.Stack
	// Secondary returns the us-east-1 stack, or nil when it is not needed.
	Secondary() awscdk.Stack
	// Edge returns the entry point of the application.
	Edge() lfcdkedge.Edge
	// URL returns the application URL.
	URL() *string
}

type deployment struct {
	primary   awscdk.Stack
	secondary awscdk.Stack
	edge      lfcdkedge.Edge
}

// Synthesize declares the stacks of one environment in scope, usually the app.
// All configuration errors are returned before anything is declared.
func Synthesize(scope constructs.Construct, props Props) (Deployment, error) {
	envs, stacks := props.Environments, props.Stacks
	if envs == nil {
		var err error
		if envs, err = lfcdkconfig.DefaultEnvironments(); err != nil {
			return nil, errors.Wrap(err, "failed to load environments")
		}
	}
	if stacks == nil {
		var err error
		if stacks, err = lfcdkconfig.DefaultStacks(); err != nil {
			return nil, errors.Wrap(err, "failed to load stacks")
		}
	}

	resolved, err := lfcdkconfig.Resolve(envs, stacks, props.EnvName)
	if err != nil {
		return nil, err
	}

	env, stack := resolved.Env, resolved.Stack
	account := firstNonEmpty(env.AccountOrEmpty(), props.DefaultAccount)
	region := firstNonEmpty(env.RegionOrEmpty(), props.DefaultRegion)

	dep := &deployment{}

	var certs certificates
	if env.NeedsCertificateUnit() {
		dep.secondary = lfcdkutil.NewStack(scope, lfcdkutil.StackProps{
			Unit:                  CertificateUnit,
			EnvName:               env.Name,
			Account:               account,
			Region:                lfcdkutil.CertificateRegion,
			CrossRegionReferences: true,
		})
		certs = *newCertificates(dep.secondary, env, stack)
	} else if _, _, ok := stack.ExplicitAllowlists(); ok && env.CloudFrontVpcOriginEnabled() {
		zap.S().Warnw("web ACL requires a domain and is not created", "env", env.Name)
	}

	dep.primary = lfcdkutil.NewStack(scope, lfcdkutil.StackProps{
		Unit:                  PrimaryUnit,
		EnvName:               env.Name,
		Account:               account,
		Region:                region,
		CrossRegionReferences: dep.secondary != nil,
	})
	if dep.secondary != nil {
		dep.primary.AddDependency(dep.secondary, jsii.String("Certificates must exist in us-east-1 first"))
	}

	dep.edge = declare(dep.primary, env, stack, certs)

	awscdk.NewCfnOutput(dep.primary, jsii.String(URLOutput), &awscdk.CfnOutputProps{
		Value:       dep.edge.URL(),
		Description: jsii.String("The URL of the Langfuse application"),
		ExportName:  jsii.String(ExportName(env.Name)),
	})

	zap.S().Infow("declared Langfuse deployment",
		"env", env.Name,
		"topology", dep.edge.Topology(),
		"certificateUnit", dep.secondary != nil)

	return dep, nil
}

func declare(scope awscdk.Stack, env lfcdkconfig.EnvironmentConfig, stack lfcdkconfig.StackConfig,
	certs certificates,
) lfcdkedge.Edge {
	vpc := lfcdknetwork.New(scope, lfcdknetwork.Props{NatInstance: stack.NatInstance()}).Vpc()

	cluster := awsecs.NewCluster(scope, jsii.String("Cluster"), &awsecs.ClusterProps{
		Vpc: vpc,
		DefaultCloudMapNamespace: &awsecs.CloudMapNamespaceOptions{
			Name:                 jsii.String(lfcdkenv.ServiceConnectNamespace),
			UseForServiceConnect: jsii.Bool(true),
		},
		ContainerInsightsV2: awsecs.ContainerInsights_ENABLED,
	})

	bucket := awss3.NewBucket(scope, jsii.String("Bucket"), &awss3.BucketProps{
		AutoDeleteObjects: jsii.Bool(true),
		RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
		EnforceSSL:        jsii.Bool(true),
	})

	database := lfcdkdatabase.New(scope, lfcdkdatabase.Props{Vpc: vpc, ScalesToZero: stack.ScalesToZero()})
	cache := lfcdkcache.New(scope, lfcdkcache.Props{Vpc: vpc, MultiAZ: stack.MultiAZCache()})
	clickHouse := lfcdkclickhouse.New(scope, lfcdkclickhouse.Props{
		Vpc:            vpc,
		Cluster:        cluster,
		ImageTag:       stack.ClickHouseTag(),
		CPU:            stack.CPU(),
		MemoryLimitMiB: stack.MemoryLimitMiB(),
		FargateSpot:    stack.FargateSpot(),
	})

	common := lfcdkenv.New(scope, lfcdkenv.Props{
		LogLevel:   stack.Level(),
		Database:   database,
		Cache:      cache,
		ClickHouse: clickHouse,
		Bucket:     bucket,
	})

	var zone awsroute53.IHostedZone
	if env.HasDomain() {
		zone = awsroute53.HostedZone_FromLookup(scope, jsii.String("HostedZone"), &awsroute53.HostedZoneProviderProps{
			DomainName: jsii.String(env.Domain.ParentDomain),
		})
	}

	edge := lfcdkedge.New(scope, lfcdkedge.Props{
		Vpc:                   vpc,
		Domain:                env.Domain,
		HostedZone:            zone,
		CloudFrontVpcOrigin:   env.CloudFrontVpcOriginEnabled(),
		IPv4Cidrs:             stack.IPv4Cidrs(),
		IPv6Cidrs:             stack.IPv6Cidrs(),
		CloudFrontCertificate: certs.cloudFront,
		WebACLArn:             certs.webACLArn,
	})

	var auth lfcdkauth.Auth
	if certs.cognito != nil {
		auth = lfcdkauth.New(scope, lfcdkauth.Props{
			Domain:      *env.Domain,
			HostedZone:  zone,
			Certificate: certs.cognito,
			AppURL:      edge.URL(),
			AppRecord:   edge.AliasRecord(),
		})
	}

	lfcdkweb.New(scope, lfcdkweb.Props{
		Vpc:                      vpc,
		Cluster:                  cluster,
		ImageTag:                 stack.LangfuseTag(),
		CPU:                      stack.CPU(),
		MemoryLimitMiB:           stack.MemoryLimitMiB(),
		DesiredCount:             stack.WebDesiredCount(),
		FargateSpot:              stack.FargateSpot(),
		DisableEmailPasswordAuth: env.EmailPasswordAuthDisabled(),
		Auth:                     auth,
		Common:                   common,
		Edge:                     edge,
		Database:                 database,
		Cache:                    cache,
		ClickHouse:               clickHouse,
		Bucket:                   bucket,
	})

	lfcdkworker.New(scope, lfcdkworker.Props{
		Cluster:        cluster,
		ImageTag:       stack.LangfuseTag(),
		CPU:            stack.CPU(),
		MemoryLimitMiB: stack.MemoryLimitMiB(),
		FargateSpot:    stack.FargateSpot(),
		Common:         common,
		Database:       database,
		Cache:          cache,
		ClickHouse:     clickHouse,
		Bucket:         bucket,
	})

	if stack.Bastion() {
		lfcdkbastion.New(scope, lfcdkbastion.Props{Vpc: vpc, Database: database})
	}

	return edge
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (d *deployment) Primary() awscdk.Stack   { return d.primary }
func (d *deployment) Secondary() awscdk.Stack { return d.secondary }
func (d *deployment) Edge() lfcdkedge.Edge    { return d.edge }
func (d *deployment) URL() *string            { return d.edge.URL() }
