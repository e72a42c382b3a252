// Package lfcdknetwork declares the VPC that every other Langfuse construct is
// placed in.
package lfcdknetwork

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"go.uber.org/zap"
)

// Network provides access to the VPC.
type Network interface {
	Vpc() awsec2.IVpc
}

// Props configures the Network construct.
type Props struct {
	// NatInstance replaces the per-AZ NAT gateways with a single t4g.nano NAT
	// instance. Cheaper, but a single point of failure.
	NatInstance bool
}

type network struct {
	vpc awsec2.Vpc
}

// New creates a VPC with up to two availability zones, a public and a private
// (with egress) /24 subnet per zone.
func New(scope constructs.Construct, props Props) Network {
	scope = constructs.NewConstruct(scope, jsii.String("Network"))
	con := &network{}

	vpcProps := &awsec2.VpcProps{
		MaxAzs: jsii.Number(2),
		SubnetConfiguration: &[]*awsec2.SubnetConfiguration{
			{
				Name:       jsii.String("Public"),
				SubnetType: awsec2.SubnetType_PUBLIC,
				CidrMask:   jsii.Number(24),
			},
			{
				Name:       jsii.String("Private"),
				SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS,
				CidrMask:   jsii.Number(24),
			},
		},
	}

	if props.NatInstance {
		zap.S().Debugw("using NAT instance instead of NAT gateways")
		vpcProps.NatGatewayProvider = awsec2.NatProvider_InstanceV2(&awsec2.NatInstanceProps{
			InstanceType:             awsec2.InstanceType_Of(awsec2.InstanceClass_T4G, awsec2.InstanceSize_NANO),
			AssociatePublicIpAddress: jsii.Bool(true),
		})
		vpcProps.NatGateways = jsii.Number(1)
	}

	con.vpc = awsec2.NewVpc(scope, jsii.String("VPC"), vpcProps)

	return con
}

func (n *network) Vpc() awsec2.IVpc {
	return n.vpc
}
