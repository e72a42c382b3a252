// Package lfcdkauth declares the Amazon Cognito user pool Langfuse can use as
// an OAuth identity provider.
//
// The pool is served on the custom domain auth.<host>.<domain>, which needs a
// certificate in us-east-1 and an existing A record for the parent host name.
package lfcdkauth

import (
	"fmt"

	"github.com/advdv/lfcdk/lfcdkconfig"
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscognito"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53targets"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// CallbackPath is the NextAuth callback path of the Cognito provider.
const CallbackPath = "/api/auth/callback/cognito"

// Auth provides the values the web service needs to use the identity provider.
type Auth interface {
	UserPool() awscognito.IUserPool
	Client() awscognito.UserPoolClient
	// IssuerURL is https://cognito-idp.<region>.amazonaws.com/<pool id>.
	IssuerURL() *string
	// Environment returns the AUTH_COGNITO_* container variables.
	Environment() map[string]*string
}

// Props configures the Auth construct.
type Props struct {
	// Domain is the application domain. Required.
	Domain lfcdkconfig.DomainSettings
	// HostedZone is the zone of Domain.ParentDomain. Required.
	HostedZone awsroute53.IHostedZone
	// Certificate for auth.<fqdn>, issued in us-east-1. Required.
	Certificate awscertificatemanager.ICertificate
	// AppURL is the application URL the callback is registered under. Required.
	AppURL *string
	// AppRecord is the application A record. Cognito refuses a custom domain whose
	// parent does not resolve, so the domain waits for it. Required.
	AppRecord awsroute53.ARecord
}

type auth struct {
	userPool awscognito.UserPool
	client   awscognito.UserPoolClient
	issuer   *string
}

// New creates the user pool, its client, the managed login branding and the
// custom domain with its alias record.
func New(scope constructs.Construct, props Props) Auth {
	scope = constructs.NewConstruct(scope, jsii.String("CognitoAuth"))
	con := &auth{}

	con.userPool = awscognito.NewUserPool(scope, jsii.String("UserPool"), &awscognito.UserPoolProps{
		AccountRecovery: awscognito.AccountRecovery_EMAIL_ONLY,
		SignInAliases:   &awscognito.SignInAliases{Email: jsii.Bool(true)},
		StandardAttributes: &awscognito.StandardAttributes{
			Email: &awscognito.StandardAttribute{Required: jsii.Bool(true), Mutable: jsii.Bool(true)},
		},
		SelfSignUpEnabled: jsii.Bool(true),
		UserVerification: &awscognito.UserVerificationConfig{
			EmailSubject: jsii.String("Langfuse - Verify your new account"),
		},
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	con.client = con.userPool.AddClient(jsii.String("Client"), &awscognito.UserPoolClientOptions{
		AuthFlows: &awscognito.AuthFlow{
			UserPassword: jsii.Bool(true),
			UserSrp:      jsii.Bool(true),
		},
		OAuth: &awscognito.OAuthSettings{
			Flows:        &awscognito.OAuthFlows{AuthorizationCodeGrant: jsii.Bool(true)},
			Scopes:       &[]awscognito.OAuthScope{awscognito.OAuthScope_OPENID(), awscognito.OAuthScope_EMAIL()},
			CallbackUrls: jsii.Strings(*props.AppURL + CallbackPath),
		},
		GenerateSecret: jsii.Bool(true),
	})

	awscognito.NewCfnManagedLoginBranding(scope, jsii.String("ManagedLoginBranding"),
		&awscognito.CfnManagedLoginBrandingProps{
			UserPoolId:               con.userPool.UserPoolId(),
			ClientId:                 con.client.UserPoolClientId(),
			UseCognitoProvidedValues: jsii.Bool(true),
		})

	authLabel := "auth." + props.Domain.HostLabel
	domain := con.userPool.AddDomain(jsii.String("Domain"), &awscognito.UserPoolDomainOptions{
		CustomDomain: &awscognito.CustomDomainOptions{
			DomainName:  jsii.String(authLabel + "." + props.Domain.ParentDomain),
			Certificate: props.Certificate,
		},
		ManagedLoginVersion: awscognito.ManagedLoginVersion_NEWER_MANAGED_LOGIN,
	})
	domain.Node().AddDependency(props.AppRecord)

	awsroute53.NewARecord(scope, jsii.String("AliasRecord"), &awsroute53.ARecordProps{
		Zone:       props.HostedZone,
		RecordName: jsii.String(authLabel),
		Target:     awsroute53.RecordTarget_FromAlias(awsroute53targets.NewUserPoolDomainTarget(domain)),
	})

	con.issuer = jsii.String(fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s",
		*awscdk.Stack_Of(scope).Region(), *con.userPool.UserPoolId()))

	return con
}

func (a *auth) UserPool() awscognito.IUserPool    { return a.userPool }
func (a *auth) Client() awscognito.UserPoolClient { return a.client }
func (a *auth) IssuerURL() *string                { return a.issuer }

func (a *auth) Environment() map[string]*string {
	return map[string]*string{
		"AUTH_COGNITO_CLIENT_ID":             a.client.UserPoolClientId(),
		"AUTH_COGNITO_CLIENT_SECRET":         a.client.UserPoolClientSecret().UnsafeUnwrap(),
		"AUTH_COGNITO_ISSUER":                a.issuer,
		"AUTH_COGNITO_ALLOW_ACCOUNT_LINKING": jsii.String("true"),
	}
}
