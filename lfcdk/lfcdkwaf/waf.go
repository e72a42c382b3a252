// Package lfcdkwaf declares the CloudFront web ACL built from the configured IP
// allow-lists.
//
// Every listed range becomes its own allow rule. IPv4 ranges come first, then
// IPv6 ranges, with priorities counting up from zero in that order. Traffic that
// matches no rule is allowed as well, so the ACL records and labels allow-listed
// traffic rather than blocking everything else.
package lfcdkwaf

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2/awswafv2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"go.uber.org/zap"
)

// Scope is the WAF scope for web ACLs attached to CloudFront. Such ACLs must be
// created in us-east-1.
const Scope = "CLOUDFRONT"

// IPVersion is the address family of a rule.
type IPVersion string

const (
	IPv4 IPVersion = "IPV4"
	IPv6 IPVersion = "IPV6"
)

// Rule is one allow rule for a single address range.
type Rule struct {
	Name     string
	Priority int
	Version  IPVersion
	Cidr     string
}

// Rules composes the allow rules for the given ranges.
func Rules(ipv4, ipv6 []string) []Rule {
	rules := make([]Rule, 0, len(ipv4)+len(ipv6))
	add := func(version IPVersion, cidrs []string) {
		for i, cidr := range cidrs {
			rules = append(rules, Rule{
				Name:     fmt.Sprintf("Allow%s-%d", version, i),
				Priority: len(rules),
				Version:  version,
				Cidr:     cidr,
			})
		}
	}

	add(IPv4, ipv4)
	add(IPv6, ipv6)

	return rules
}

// WebACL provides access to the web ACL.
type WebACL interface {
	// Arn returns the web ACL ARN, as expected by the CloudFront WebAclId property.
	Arn() *string
	// Rules returns the rules the ACL was built from.
	Rules() []Rule
}

// Props configures the WebACL construct.
type Props struct {
	IPv4Cidrs []string
	IPv6Cidrs []string
}

type webACL struct {
	acl   awswafv2.CfnWebACL
	rules []Rule
}

// New creates one IP set per range and a web ACL referencing them.
func New(scope constructs.Construct, props Props) WebACL {
	scope = constructs.NewConstruct(scope, jsii.String("WebACL"))
	con := &webACL{rules: Rules(props.IPv4Cidrs, props.IPv6Cidrs)}

	cfnRules := make([]any, 0, len(con.rules))
	for _, rule := range con.rules {
		ipSet := awswafv2.NewCfnIPSet(scope, jsii.String(rule.Name+"IPSet"), &awswafv2.CfnIPSetProps{
			Addresses:        jsii.Strings(rule.Cidr),
			IpAddressVersion: jsii.String(string(rule.Version)),
			Scope:            jsii.String(Scope),
		})

		cfnRules = append(cfnRules, &awswafv2.CfnWebACL_RuleProperty{
			Name:     jsii.String(rule.Name),
			Priority: jsii.Number(rule.Priority),
			Action: &awswafv2.CfnWebACL_RuleActionProperty{
				Allow: &awswafv2.CfnWebACL_AllowActionProperty{},
			},
			Statement: &awswafv2.CfnWebACL_StatementProperty{
				IpSetReferenceStatement: &awswafv2.CfnWebACL_IPSetReferenceStatementProperty{
					Arn: ipSet.AttrArn(),
				},
			},
			VisibilityConfig: visibility(rule.Name),
		})
	}

	zap.S().Debugw("composed web ACL rules", "count", len(con.rules))

	con.acl = awswafv2.NewCfnWebACL(scope, jsii.String("Resource"), &awswafv2.CfnWebACLProps{
		Scope: jsii.String(Scope),
		DefaultAction: &awswafv2.CfnWebACL_DefaultActionProperty{
			Allow: &awswafv2.CfnWebACL_AllowActionProperty{},
		},
		Rules:            &cfnRules,
		VisibilityConfig: visibility("LangfuseWebACL"),
	})

	return con
}

func visibility(metric string) *awswafv2.CfnWebACL_VisibilityConfigProperty {
	return &awswafv2.CfnWebACL_VisibilityConfigProperty{
		CloudWatchMetricsEnabled: jsii.Bool(true),
		MetricName:               jsii.String(metric),
		SampledRequestsEnabled:   jsii.Bool(true),
	}
}

func (w *webACL) Arn() *string  { return w.acl.AttrArn() }
func (w *webACL) Rules() []Rule { return w.rules }
