// Package lfcdkbastion declares an optional SSM-reachable bastion host for
// reaching the database from a workstation.
package lfcdkbastion

import (
	"fmt"

	"github.com/advdv/lfcdk/lfcdk/lfcdkdatabase"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// Bastion provides access to the bastion host.
type Bastion interface {
	Host() awsec2.BastionHostLinux
}

// Props configures the Bastion construct.
type Props struct {
	Vpc      awsec2.IVpc
	Database lfcdkdatabase.Database
}

type bastion struct {
	host awsec2.BastionHostLinux
}

// New creates the host and outputs the commands to forward the database port
// and to read the database credentials.
func New(scope constructs.Construct, props Props) Bastion {
	scope = constructs.NewConstruct(scope, jsii.String("Bastion"))
	con := &bastion{}

	con.host = awsec2.NewBastionHostLinux(scope, jsii.String("Host"), &awsec2.BastionHostLinuxProps{
		Vpc: props.Vpc,
		MachineImage: awsec2.MachineImage_LatestAmazonLinux2023(&awsec2.AmazonLinux2023ImageSsmParameterProps{
			CpuType: awsec2.AmazonLinuxCpuType_ARM_64,
		}),
		InstanceType: awsec2.InstanceType_Of(awsec2.InstanceClass_T4G, awsec2.InstanceSize_NANO),
		BlockDevices: &[]*awsec2.BlockDevice{{
			DeviceName: jsii.String("/dev/sdf"),
			Volume:     awsec2.BlockDeviceVolume_Ebs(jsii.Number(8), &awsec2.EbsDeviceOptions{Encrypted: jsii.Bool(true)}),
		}},
	})

	region := *awscdk.Stack_Of(scope).Region()
	endpoint := props.Database.Cluster().ClusterEndpoint()
	port := *awscdk.Token_AsString(endpoint.Port(), nil)

	awscdk.NewCfnOutput(scope, jsii.String("PortForwardCommand"), &awscdk.CfnOutputProps{
		Value: jsii.String(fmt.Sprintf(
			`aws ssm start-session --region %s --target %s --document-name AWS-StartPortForwardingSessionToRemoteHost `+
				`--parameters '{"portNumber":["%s"], "localPortNumber":["%s"], "host": ["%s"]}'`,
			region, *con.host.InstanceId(), port, port, *endpoint.Hostname())),
	})

	awscdk.NewCfnOutput(scope, jsii.String("DatabaseSecretsCommand"), &awscdk.CfnOutputProps{
		Value: jsii.String(fmt.Sprintf("aws secretsmanager get-secret-value --secret-id %s --region %s",
			*props.Database.Secret().SecretName(), region)),
	})

	return con
}

func (b *bastion) Host() awsec2.BastionHostLinux { return b.host }
