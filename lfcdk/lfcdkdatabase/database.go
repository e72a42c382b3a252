// Package lfcdkdatabase declares the Aurora PostgreSQL Serverless v2 cluster that
// holds the Langfuse transactional data.
package lfcdkdatabase

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsrds"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// DatabaseName is the default database created in the cluster.
const DatabaseName = "langfuse"

// Database provides access to the cluster and its generated credentials.
type Database interface {
	// Cluster returns the Aurora cluster.
	Cluster() awsrds.DatabaseCluster
	// Secret returns the generated credentials. The JSON secret carries the
	// host, username and password keys.
	Secret() awssecretsmanager.ISecret
	// Connections controls network access to the cluster port.
	Connections() awsec2.Connections
}

// Props configures the Database construct.
type Props struct {
	// Vpc is the network the cluster is placed in. Required.
	Vpc awsec2.IVpc
	// ScalesToZero lets the writer pause when idle (min capacity 0 instead of 0.5 ACU).
	ScalesToZero bool
}

type database struct {
	cluster awsrds.DatabaseCluster
}

// New creates the database cluster.
func New(scope constructs.Construct, props Props) Database {
	scope = constructs.NewConstruct(scope, jsii.String("Database"))
	con := &database{}

	engine := awsrds.DatabaseClusterEngine_AuroraPostgres(&awsrds.AuroraPostgresClusterEngineProps{
		Version: awsrds.AuroraPostgresEngineVersion_VER_16_6(),
	})

	minCapacity := 0.5
	if props.ScalesToZero {
		minCapacity = 0
	}

	con.cluster = awsrds.NewDatabaseCluster(scope, jsii.String("Cluster"), &awsrds.DatabaseClusterProps{
		Engine:                  engine,
		Vpc:                     props.Vpc,
		ServerlessV2MinCapacity: jsii.Number(minCapacity),
		ServerlessV2MaxCapacity: jsii.Number(2),
		Writer: awsrds.ClusterInstance_ServerlessV2(jsii.String("Writer"), &awsrds.ServerlessV2ClusterInstanceProps{
			AutoMinorVersionUpgrade: jsii.Bool(true),
			PubliclyAccessible:      jsii.Bool(false),
		}),
		DefaultDatabaseName: jsii.String(DatabaseName),
		EnableDataApi:       jsii.Bool(true),
		StorageEncrypted:    jsii.Bool(true),
		RemovalPolicy:       awscdk.RemovalPolicy_DESTROY,
		ParameterGroup: awsrds.NewParameterGroup(scope, jsii.String("ParameterGroup"), &awsrds.ParameterGroupProps{
			Engine: engine,
			Parameters: &map[string]*string{
				// idle sessions would keep the writer from pausing
				"idle_session_timeout": jsii.String("60000"),
			},
		}),
	})

	return con
}

func (d *database) Cluster() awsrds.DatabaseCluster {
	return d.cluster
}

func (d *database) Secret() awssecretsmanager.ISecret {
	return d.cluster.Secret()
}

func (d *database) Connections() awsec2.Connections {
	return d.cluster.Connections()
}
