// Package lfcdkcert provides a DNS-validated ACM certificate construct for a
// single host name.
//
// ACM certificates are regional. Certificates consumed by CloudFront or by a
// Cognito custom domain must be created in us-east-1, so callers that need one
// of those create this construct in a stack pinned to that region.
package lfcdkcert

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// Certificate provides access to an ACM certificate.
type Certificate interface {
	// Certificate returns the ACM certificate for DomainName.
	Certificate() awscertificatemanager.ICertificate
}

// Props configures the Cert construct.
type Props struct {
	// ID distinguishes certificates created in the same scope. Defaults to "Cert".
	ID string
	// DomainName is the fully-qualified name the certificate is issued for.
	// Required.
	DomainName string
	// HostedZone is the Route53 hosted zone used for DNS validation.
	// Required.
	HostedZone awsroute53.IHostedZone
}

type cert struct {
	certificate awscertificatemanager.ICertificate
}

// New creates a Certificate construct validated through the hosted zone.
func New(scope constructs.Construct, props Props) Certificate {
	id := props.ID
	if id == "" {
		id = "Cert"
	}

	scope = constructs.NewConstruct(scope, jsii.String(id))
	con := &cert{}

	con.certificate = awscertificatemanager.NewCertificate(scope, jsii.String("Certificate"),
		&awscertificatemanager.CertificateProps{
			DomainName: jsii.String(props.DomainName),
			Validation: awscertificatemanager.CertificateValidation_FromDns(props.HostedZone),
		})

	return con
}

func (c *cert) Certificate() awscertificatemanager.ICertificate {
	return c.certificate
}
