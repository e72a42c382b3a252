package lfcdkstack

import (
	"github.com/advdv/lfcdk/lfcdk/lfcdkcert"
	"github.com/advdv/lfcdk/lfcdk/lfcdkwaf"
	"github.com/advdv/lfcdk/lfcdkconfig"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"go.uber.org/zap"
)

// certificates are the handles produced by the us-east-1 unit. Every field is
// nil when the unit is not created.
type certificates struct {
	cognito    awscertificatemanager.ICertificate
	cloudFront awscertificatemanager.ICertificate
	webACLArn  *string
}

// newCertificates fills the us-east-1 unit. It is only called when a domain is
// configured together with Cognito or the CloudFront VPC origin.
func newCertificates(scope constructs.Construct, env lfcdkconfig.EnvironmentConfig,
	stack lfcdkconfig.StackConfig,
) *certificates {
	certs := &certificates{}

	zone := awsroute53.HostedZone_FromLookup(scope, jsii.String("HostedZone"), &awsroute53.HostedZoneProviderProps{
		DomainName: jsii.String(env.Domain.ParentDomain),
	})

	if env.CognitoAuthEnabled() {
		certs.cognito = lfcdkcert.New(scope, lfcdkcert.Props{
			ID:         "CognitoCert",
			DomainName: "auth." + env.Domain.FQDN(),
			HostedZone: zone,
		}).Certificate()
	}

	if env.CloudFrontVpcOriginEnabled() {
		certs.cloudFront = lfcdkcert.New(scope, lfcdkcert.Props{
			ID:         "CloudFrontCert",
			DomainName: env.Domain.FQDN(),
			HostedZone: zone,
		}).Certificate()

		if ipv4, ipv6, ok := stack.ExplicitAllowlists(); ok {
			certs.webACLArn = lfcdkwaf.New(scope, lfcdkwaf.Props{IPv4Cidrs: ipv4, IPv6Cidrs: ipv6}).Arn()
		}
	}

	zap.S().Debugw("declared certificate unit",
		"cognito", certs.cognito != nil,
		"cloudfront", certs.cloudFront != nil,
		"webacl", certs.webACLArn != nil)

	return certs
}
