package lfcdkauth_test

import (
	"testing"

	"github.com/advdv/lfcdk/lfcdk/lfcdkauth"
	"github.com/advdv/lfcdk/lfcdkconfig"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
)

func TestCognito(t *testing.T) {
	t.Parallel()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("Test"), &awscdk.StackProps{
		Env: &awscdk.Environment{Account: jsii.String("123456789012"), Region: jsii.String("us-west-2")},
	})
	zone := awsroute53.NewHostedZone(stack, jsii.String("Zone"), &awsroute53.HostedZoneProps{
		ZoneName: jsii.String("example.com"),
	})
	record := awsroute53.NewARecord(stack, jsii.String("App"), &awsroute53.ARecordProps{
		Zone:       zone,
		RecordName: jsii.String("langfuse"),
		Target:     awsroute53.RecordTarget_FromIpAddresses(jsii.String("192.0.2.1")),
	})
	cert := awscertificatemanager.Certificate_FromCertificateArn(stack, jsii.String("Cert"),
		jsii.String("arn:aws:acm:us-east-1:123456789012:certificate/abc"))

	a := lfcdkauth.New(stack, lfcdkauth.Props{
		Domain:      lfcdkconfig.DomainSettings{HostLabel: "langfuse", ParentDomain: "example.com"},
		HostedZone:  zone,
		Certificate: cert,
		AppURL:      jsii.String("https://langfuse.example.com"),
		AppRecord:   record,
	})

	env := a.Environment()
	assert.Contains(t, env, "AUTH_COGNITO_CLIENT_ID")
	assert.Contains(t, env, "AUTH_COGNITO_CLIENT_SECRET")
	assert.Contains(t, env, "AUTH_COGNITO_ISSUER")
	assert.Equal(t, "true", *env["AUTH_COGNITO_ALLOW_ACCOUNT_LINKING"])

	tmpl := assertions.Template_FromStack(stack, nil)
	tmpl.ResourceCountIs(jsii.String("AWS::Cognito::UserPool"), jsii.Number(1))
	tmpl.HasResourceProperties(jsii.String("AWS::Cognito::UserPoolClient"), map[string]any{
		"GenerateSecret":    true,
		"AllowedOAuthFlows": []any{"code"},
		"CallbackURLs":      []any{"https://langfuse.example.com/api/auth/callback/cognito"},
	})
	tmpl.HasResourceProperties(jsii.String("AWS::Cognito::UserPoolDomain"), map[string]any{
		"Domain": "auth.langfuse.example.com",
		"CustomDomainConfig": map[string]any{
			"CertificateArn": "arn:aws:acm:us-east-1:123456789012:certificate/abc",
		},
	})
	tmpl.HasResource(jsii.String("AWS::Cognito::UserPoolDomain"), map[string]any{
		"DependsOn": assertions.Match_ArrayWith(&[]any{assertions.Match_StringLikeRegexp(jsii.String("App"))}),
	})
	tmpl.HasResourceProperties(jsii.String("AWS::Route53::RecordSet"), map[string]any{
		"Name": "auth.langfuse.example.com.",
	})
}
