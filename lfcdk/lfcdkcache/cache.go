// Package lfcdkcache declares the ElastiCache for Valkey replication group used
// by Langfuse as its queue and cache.
package lfcdkcache

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticache"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// Port is the Valkey port.
const Port = 6379

// Cache provides access to the replication group endpoint and auth token.
type Cache interface {
	// Host returns the primary endpoint address.
	Host() *string
	// Port returns the Valkey port.
	Port() int
	// Secret returns the generated auth token.
	Secret() awssecretsmanager.ISecret
	// Connections controls network access to the cache port.
	Connections() awsec2.Connections
}

// Props configures the Cache construct.
type Props struct {
	// Vpc is the network the cache is placed in. Required.
	Vpc awsec2.IVpc
	// MultiAZ adds one replica with automatic failover.
	MultiAZ bool
}

type cache struct {
	host        *string
	secret      awssecretsmanager.Secret
	connections awsec2.Connections
}

// New creates the cache. The parameter group pins maxmemory-policy to noeviction
// so that queued jobs are never evicted.
func New(scope constructs.Construct, props Props) Cache {
	scope = constructs.NewConstruct(scope, jsii.String("Cache"))
	con := &cache{}

	subnetIDs := []any{}
	for _, subnet := range *props.Vpc.PrivateSubnets() {
		subnetIDs = append(subnetIDs, subnet.SubnetId())
	}

	subnetGroup := awselasticache.NewCfnSubnetGroup(scope, jsii.String("SubnetGroup"),
		&awselasticache.CfnSubnetGroupProps{
			SubnetIds:   &subnetIDs,
			Description: jsii.String("Subnet Group for Langfuse ElastiCache"),
		})

	securityGroup := awsec2.NewSecurityGroup(scope, jsii.String("SecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc: props.Vpc,
	})

	con.secret = awssecretsmanager.NewSecret(scope, jsii.String("AuthToken"), &awssecretsmanager.SecretProps{
		GenerateSecretString: &awssecretsmanager.SecretStringGenerator{
			PasswordLength:     jsii.Number(30),
			ExcludePunctuation: jsii.Bool(true),
		},
	})

	logGroup := awslogs.NewLogGroup(scope, jsii.String("LogGroup"), &awslogs.LogGroupProps{
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	parameterGroup := awselasticache.NewCfnParameterGroup(scope, jsii.String("ParameterGroup"),
		&awselasticache.CfnParameterGroupProps{
			CacheParameterGroupFamily: jsii.String("valkey8"),
			Description:               jsii.String("Custom parameter group for Langfuse ElastiCache"),
			Properties: &map[string]*string{
				"maxmemory-policy": jsii.String("noeviction"),
			},
		})

	replicas := 0
	if props.MultiAZ {
		replicas = 1
	}

	group := awselasticache.NewCfnReplicationGroup(scope, jsii.String("ReplicationGroup"),
		&awselasticache.CfnReplicationGroupProps{
			Engine:                      jsii.String("Valkey"),
			CacheNodeType:               jsii.String("cache.t4g.micro"),
			EngineVersion:               jsii.String("8.0"),
			Port:                        jsii.Number(Port),
			ReplicasPerNodeGroup:        jsii.Number(replicas),
			NumNodeGroups:               jsii.Number(1),
			ReplicationGroupDescription: jsii.String("Valkey Cache for Langfuse"),
			CacheSubnetGroupName:        subnetGroup.Ref(),
			AutomaticFailoverEnabled:    jsii.Bool(props.MultiAZ),
			MultiAzEnabled:              jsii.Bool(props.MultiAZ),
			SecurityGroupIds:            &[]*string{securityGroup.SecurityGroupId()},
			TransitEncryptionEnabled:    jsii.Bool(true),
			TransitEncryptionMode:       jsii.String("required"),
			AtRestEncryptionEnabled:     jsii.Bool(true),
			CacheParameterGroupName:     parameterGroup.Ref(),
			LogDeliveryConfigurations: &[]any{
				&awselasticache.CfnReplicationGroup_LogDeliveryConfigurationRequestProperty{
					LogFormat:       jsii.String("json"),
					LogType:         jsii.String("engine-log"),
					DestinationType: jsii.String("cloudwatch-logs"),
					DestinationDetails: &awselasticache.CfnReplicationGroup_DestinationDetailsProperty{
						CloudWatchLogsDetails: &awselasticache.CfnReplicationGroup_CloudWatchLogsDestinationDetailsProperty{
							LogGroup: logGroup.LogGroupName(),
						},
					},
				},
			},
			AuthToken: con.secret.SecretValue().UnsafeUnwrap(),
		})

	con.host = group.AttrPrimaryEndPointAddress()
	con.connections = awsec2.NewConnections(&awsec2.ConnectionsProps{
		SecurityGroups: &[]awsec2.ISecurityGroup{securityGroup},
		DefaultPort:    awsec2.Port_Tcp(jsii.Number(Port)),
	})

	return con
}

func (c *cache) Host() *string                     { return c.host }
func (c *cache) Port() int                         { return Port }
func (c *cache) Secret() awssecretsmanager.ISecret { return c.secret }
func (c *cache) Connections() awsec2.Connections   { return c.connections }
