// Package lfcdkedge declares the entry point of the application. Exactly one of
// two topologies is built:
//
//   - CloudFront: a distribution reaching an internal load balancer through a
//     CloudFront VPC origin. Viewers always connect over HTTPS.
//   - ALB: an internet-facing load balancer, HTTPS when a domain is configured.
//
// Either way a single listener is created. The web service attaches the only
// target group to it.
package lfcdkedge

import (
	"fmt"

	"github.com/advdv/lfcdk/lfcdk/lfcdkcert"
	"github.com/advdv/lfcdk/lfcdkconfig"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticloadbalancingv2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53targets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"go.uber.org/zap"
)

// vpcOriginsSecurityGroup is the security group CloudFront creates in the VPC
// for its VPC origins.
const vpcOriginsSecurityGroup = "CloudFront-VPCOrigins-Service-SG"

// Topology names the edge layout that was built.
type Topology string

const (
	TopologyCloudFront Topology = "cloudfront"
	TopologyALB        Topology = "alb"
)

// SelectTopology picks the topology from the CloudFront VPC origin flag.
func SelectTopology(cloudFrontVpcOrigin bool) Topology {
	if cloudFrontVpcOrigin {
		return TopologyCloudFront
	}
	return TopologyALB
}

// Edge provides access to the entry point.
type Edge interface {
	// Topology returns the layout that was built.
	Topology() Topology
	// URL returns the externally visible application URL.
	URL() *string
	// Listener returns the single load balancer listener.
	Listener() awselasticloadbalancingv2.ApplicationListener
	// AliasRecord returns the application alias record, or nil without a domain.
	AliasRecord() awsroute53.ARecord
}

// Props configures the Edge construct.
type Props struct {
	// Vpc is the network the load balancer is placed in. Required.
	Vpc awsec2.IVpc
	// Domain is the custom domain. Nil serves on the generated hostname.
	Domain *lfcdkconfig.DomainSettings
	// HostedZone is the zone of Domain.ParentDomain. Required when Domain is set.
	HostedZone awsroute53.IHostedZone
	// CloudFrontVpcOrigin selects the CloudFront topology.
	CloudFrontVpcOrigin bool
	// IPv4Cidrs and IPv6Cidrs may reach the internet-facing load balancer.
	// Ignored by the CloudFront topology, which admits only the VPC origin.
	IPv4Cidrs []string
	IPv6Cidrs []string
	// CloudFrontCertificate is the us-east-1 certificate for the distribution
	// alias. Nil serves on the distribution hostname.
	CloudFrontCertificate awscertificatemanager.ICertificate
	// WebACLArn is attached to the distribution when set.
	WebACLArn *string
}

type edge struct {
	topology    Topology
	url         *string
	listener    awselasticloadbalancingv2.ApplicationListener
	aliasRecord awsroute53.ARecord
}

// New creates the edge construct.
func New(scope constructs.Construct, props Props) Edge {
	scope = constructs.NewConstruct(scope, jsii.String("Edge"))
	con := &edge{topology: SelectTopology(props.CloudFrontVpcOrigin)}

	zap.S().Debugw("selected edge topology", "topology", con.topology, "domain", props.Domain != nil)

	switch con.topology {
	case TopologyCloudFront:
		con.buildCloudFront(scope, props)
	default:
		con.buildALB(scope, props)
	}

	return con
}

func accessLogBucket(scope constructs.Construct, id string, ownerPreferred bool) awss3.Bucket {
	props := &awss3.BucketProps{
		AutoDeleteObjects: jsii.Bool(true),
		RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
	}
	if ownerPreferred {
		// CloudFront standard logging writes through bucket ACLs.
		props.ObjectOwnership = awss3.ObjectOwnership_BUCKET_OWNER_PREFERRED
	}
	return awss3.NewBucket(scope, jsii.String(id), props)
}

func (e *edge) buildCloudFront(scope constructs.Construct, props Props) {
	alb := awselasticloadbalancingv2.NewApplicationLoadBalancer(scope, jsii.String("LoadBalancer"),
		&awselasticloadbalancingv2.ApplicationLoadBalancerProps{
			Vpc:            props.Vpc,
			VpcSubnets:     &awsec2.SubnetSelection{Subnets: props.Vpc.PrivateSubnets()},
			InternetFacing: jsii.Bool(false),
		})
	alb.LogAccessLogs(accessLogBucket(scope, "LoadBalancerAccessLogs", false), jsii.String("AlbAccessLogs"))

	e.listener = alb.AddListener(jsii.String("Listener"), &awselasticloadbalancingv2.BaseApplicationListenerProps{
		Protocol:      awselasticloadbalancingv2.ApplicationProtocol_HTTP,
		Open:          jsii.Bool(false),
		DefaultAction: awselasticloadbalancingv2.ListenerAction_FixedResponse(jsii.Number(400), nil),
	})

	distProps := &awscloudfront.DistributionProps{
		Comment: jsii.String("Distribution for Langfuse"),
		DefaultBehavior: &awscloudfront.BehaviorOptions{
			Origin: awscloudfrontorigins.VpcOrigin_WithApplicationLoadBalancer(alb,
				&awscloudfrontorigins.VpcOriginWithEndpointProps{
					ProtocolPolicy: awscloudfront.OriginProtocolPolicy_HTTP_ONLY,
					HttpPort:       jsii.Number(80),
				}),
			ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
			Compress:             jsii.Bool(true),
			CachePolicy:          awscloudfront.CachePolicy_USE_ORIGIN_CACHE_CONTROL_HEADERS_QUERY_STRINGS(),
			AllowedMethods:       awscloudfront.AllowedMethods_ALLOW_ALL(),
			OriginRequestPolicy:  awscloudfront.OriginRequestPolicy_ALL_VIEWER(),
		},
		WebAclId:  props.WebACLArn,
		LogBucket: accessLogBucket(scope, "DistributionAccessLogs", true),
	}
	if props.Domain != nil && props.CloudFrontCertificate != nil {
		distProps.DomainNames = jsii.Strings(props.Domain.FQDN())
		distProps.Certificate = props.CloudFrontCertificate
	}

	distribution := awscloudfront.NewDistribution(scope, jsii.String("Distribution"), distProps)

	// CloudFront creates the VPC origin security group on first use, so it can only
	// be looked up after the distribution exists.
	stack := awscdk.Stack_Of(scope)
	lookup := customresources.NewAwsCustomResource(scope, jsii.String("VpcOriginsSecurityGroupLookup"),
		&customresources.AwsCustomResourceProps{
			OnCreate: &customresources.AwsSdkCall{
				Service: jsii.String("ec2"),
				Action:  jsii.String("describeSecurityGroups"),
				Parameters: map[string]any{
					"Filters": []any{
						map[string]any{"Name": "vpc-id", "Values": []*string{props.Vpc.VpcId()}},
						map[string]any{"Name": "group-name", "Values": jsii.Strings(vpcOriginsSecurityGroup)},
					},
				},
				PhysicalResourceId: customresources.PhysicalResourceId_Of(jsii.String(vpcOriginsSecurityGroup)),
			},
			Policy: customresources.AwsCustomResourcePolicy_FromSdkCalls(&customresources.SdkCallsPolicyOptions{
				Resources: jsii.Strings(fmt.Sprintf("arn:aws:ec2:%s:%s:security-group/*",
					*stack.Region(), *stack.Account())),
			}),
		})
	lookup.Node().AddDependency(distribution)

	originSG := awsec2.SecurityGroup_FromSecurityGroupId(scope, jsii.String("VpcOriginsSecurityGroup"),
		lookup.GetResponseField(jsii.String("SecurityGroups.0.GroupId")), nil)
	e.listener.Connections().AllowDefaultPortFrom(originSG, nil)

	if props.Domain != nil {
		e.aliasRecord = awsroute53.NewARecord(scope, jsii.String("AliasRecord"), &awsroute53.ARecordProps{
			Zone:       props.HostedZone,
			RecordName: jsii.String(props.Domain.HostLabel),
			Target:     awsroute53.RecordTarget_FromAlias(awsroute53targets.NewCloudFrontTarget(distribution)),
		})
	}

	e.url = jsii.String(URL(Scheme(true), props.Domain, *distribution.DomainName()))
}

func (e *edge) buildALB(scope constructs.Construct, props Props) {
	tls := props.Domain != nil

	alb := awselasticloadbalancingv2.NewApplicationLoadBalancer(scope, jsii.String("LoadBalancer"),
		&awselasticloadbalancingv2.ApplicationLoadBalancerProps{
			Vpc:            props.Vpc,
			VpcSubnets:     &awsec2.SubnetSelection{Subnets: props.Vpc.PublicSubnets()},
			InternetFacing: jsii.Bool(true),
		})
	alb.LogAccessLogs(accessLogBucket(scope, "LoadBalancerAccessLogs", false), jsii.String("AlbAccessLogs"))

	listenerProps := &awselasticloadbalancingv2.BaseApplicationListenerProps{
		Protocol:      awselasticloadbalancingv2.ApplicationProtocol_HTTP,
		Open:          jsii.Bool(false),
		DefaultAction: awselasticloadbalancingv2.ListenerAction_FixedResponse(jsii.Number(400), nil),
	}
	if tls {
		certificate := lfcdkcert.New(scope, lfcdkcert.Props{
			DomainName: props.Domain.FQDN(),
			HostedZone: props.HostedZone,
		})
		listenerProps.Protocol = awselasticloadbalancingv2.ApplicationProtocol_HTTPS
		listenerProps.Certificates = &[]awselasticloadbalancingv2.IListenerCertificate{
			awselasticloadbalancingv2.ListenerCertificate_FromCertificateManager(certificate.Certificate()),
		}
	}

	e.listener = alb.AddListener(jsii.String("Listener"), listenerProps)

	for _, cidr := range props.IPv4Cidrs {
		e.listener.Connections().AllowDefaultPortFrom(awsec2.Peer_Ipv4(jsii.String(cidr)), nil)
	}
	for _, cidr := range props.IPv6Cidrs {
		e.listener.Connections().AllowDefaultPortFrom(awsec2.Peer_Ipv6(jsii.String(cidr)), nil)
	}

	if props.Domain != nil {
		e.aliasRecord = awsroute53.NewARecord(scope, jsii.String("AliasRecord"), &awsroute53.ARecordProps{
			Zone:       props.HostedZone,
			RecordName: jsii.String(props.Domain.HostLabel),
			Target:     awsroute53.RecordTarget_FromAlias(awsroute53targets.NewLoadBalancerTarget(alb, nil)),
		})
	}

	e.url = jsii.String(URL(Scheme(tls), props.Domain, *alb.LoadBalancerDnsName()))
}

func (e *edge) Topology() Topology { return e.topology }
func (e *edge) URL() *string       { return e.url }
func (e *edge) Listener() awselasticloadbalancingv2.ApplicationListener {
	return e.listener
}
func (e *edge) AliasRecord() awsroute53.ARecord { return e.aliasRecord }
