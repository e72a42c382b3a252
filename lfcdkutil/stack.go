package lfcdkutil

import (
	"fmt"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/iancoleman/strcase"
)

// CertificateRegion is the region in which CloudFront and Cognito custom domains
// require their ACM certificates to live.
const CertificateRegion = "us-east-1"

// StackProps configures NewStack.
type StackProps struct {
	// Unit names the deployment unit, e.g. "Langfuse" or "Langfuse-us-east-1".
	Unit string
	// EnvName is the environment the stack belongs to.
	EnvName string
	// Account is the target account. Empty falls back to CDK_DEFAULT_ACCOUNT.
	Account string
	// Region is the target region. Empty falls back to CDK_DEFAULT_REGION.
	Region string
	// CrossRegionReferences enables references between stacks in different regions.
	CrossRegionReferences bool
}

// StackName returns the stack name for a unit in an environment,
// e.g. ("Langfuse", "for-snapshot-test") => "LangfuseForSnapshotTest".
func StackName(unit, envName string) string {
	return strcase.ToCamel(unit + "-" + envName)
}

// ResolveAccount returns account or, when empty, CDK_DEFAULT_ACCOUNT.
func ResolveAccount(account string) string {
	if account != "" {
		return account
	}
	return os.Getenv("CDK_DEFAULT_ACCOUNT")
}

// ResolveRegion returns region or, when empty, CDK_DEFAULT_REGION.
func ResolveRegion(region string) string {
	if region != "" {
		return region
	}
	return os.Getenv("CDK_DEFAULT_REGION")
}

// NewStack creates a stack for one deployment unit and tags it with its environment.
func NewStack(scope constructs.Construct, props StackProps) awscdk.Stack {
	if props.Unit == "" || props.EnvName == "" {
		panic("lfcdkutil: stack unit and environment name are required")
	}

	account, region := ResolveAccount(props.Account), ResolveRegion(props.Region)

	var env *awscdk.Environment
	if account != "" || region != "" {
		env = &awscdk.Environment{}
		if account != "" {
			env.Account = jsii.String(account)
		}
		if region != "" {
			env.Region = jsii.String(region)
		}
	}

	description := fmt.Sprintf("%s (env: %s)", props.Unit, props.EnvName)
	if region != "" {
		description = fmt.Sprintf("%s (env: %s, region: %s)", props.Unit, props.EnvName, region)
	}

	stack := awscdk.NewStack(scope, jsii.String(StackName(props.Unit, props.EnvName)), &awscdk.StackProps{
		Env:                   env,
		Description:           jsii.String(description),
		CrossRegionReferences: jsii.Bool(props.CrossRegionReferences),
	})

	awscdk.Tags_Of(stack).Add(jsii.String("Environment"), jsii.String(props.EnvName), nil)

	return stack
}
