// Package lfcdkconfig holds the per-environment configuration tables.
//
// Two tables are keyed by the same environment name but kept apart on purpose:
// EnvironmentConfig governs the network-facing identity (account, region, domain,
// authentication features) and StackConfig governs compute sizing and operational
// tuning. Both are decoded once from YAML embedded in the binary and are read-only
// afterwards.
package lfcdkconfig

import "fmt"

// LogLevel is the log verbosity of the Langfuse containers.
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// Defaults applied when an optional StackConfig field is absent.
const (
	DefaultTaskDefCPU            = 1024
	DefaultTaskDefMemoryLimitMiB = 2048
	DefaultWebTaskCount          = 1
	DefaultImageTag              = "latest"
	DefaultLogLevel              = LogLevelInfo
	DefaultIPv4Cidr              = "0.0.0.0/0"
	DefaultIPv6Cidr              = "::/0"
)

// DomainSettings is the custom domain of the application, e.g. langfuse.example.com.
// The parent domain must be a Route 53 hosted zone. No DNS syntax checks are made here.
type DomainSettings struct {
	HostLabel    string `yaml:"hostLabel" validate:"required"`
	ParentDomain string `yaml:"parentDomain" validate:"required"`
}

// FQDN returns hostLabel.parentDomain.
func (d DomainSettings) FQDN() string {
	return d.HostLabel + "." + d.ParentDomain
}

// EnvironmentConfig is the network-facing identity of one environment.
type EnvironmentConfig struct {
	// Name is the table key. It is filled in from the map key when decoding.
	Name string `yaml:"-" validate:"required"`

	// Account is the target AWS account. Nil means CDK_DEFAULT_ACCOUNT.
	Account *string `yaml:"account,omitempty"`

	// Region is the primary region. Nil means CDK_DEFAULT_REGION.
	Region *string `yaml:"region,omitempty"`

	// Domain is the custom domain. Nil means the application is served over plain
	// HTTP on the load balancer (or CloudFront) generated hostname.
	Domain *DomainSettings `yaml:"domain,omitempty"`

	// DisableEmailPasswordAuth turns off the built-in email/password login.
	// Nil means false.
	DisableEmailPasswordAuth *bool `yaml:"disableEmailPasswordAuth,omitempty"`

	// EnableCognitoAuth adds an Amazon Cognito identity provider. Requires Domain.
	// Nil means false.
	EnableCognitoAuth *bool `yaml:"enableCognitoAuth,omitempty"`

	// EnableCloudFrontVpcOrigin fronts a private load balancer with CloudFront
	// through a VPC origin instead of exposing the load balancer. Nil means false.
	EnableCloudFrontVpcOrigin *bool `yaml:"enableCloudFrontVpcOrigin,omitempty"`
}

// AccountOrEmpty returns the configured account or "".
func (c EnvironmentConfig) AccountOrEmpty() string { return deref(c.Account, "") }

// RegionOrEmpty returns the configured region or "".
func (c EnvironmentConfig) RegionOrEmpty() string { return deref(c.Region, "") }

// HasDomain reports whether a custom domain is configured.
func (c EnvironmentConfig) HasDomain() bool { return c.Domain != nil }

// EmailPasswordAuthDisabled defaults to false.
func (c EnvironmentConfig) EmailPasswordAuthDisabled() bool {
	return deref(c.DisableEmailPasswordAuth, false)
}

// CognitoAuthEnabled defaults to false.
func (c EnvironmentConfig) CognitoAuthEnabled() bool { return deref(c.EnableCognitoAuth, false) }

// CloudFrontVpcOriginEnabled defaults to false.
func (c EnvironmentConfig) CloudFrontVpcOriginEnabled() bool {
	return deref(c.EnableCloudFrontVpcOrigin, false)
}

// Validate checks the combinations that cannot be synthesized. Cognito needs a
// stable hostname for its callback and login domain, so it requires Domain.
func (c EnvironmentConfig) Validate() error {
	if c.CognitoAuthEnabled() && !c.HasDomain() {
		return &InvalidCombinationError{
			EnvName: c.Name,
			Reason:  "to enable Cognito auth, you must set domain",
		}
	}
	return nil
}

// NeedsCertificateUnit reports whether a unit pinned to the certificate region is
// needed: a custom domain together with Cognito or the CloudFront VPC origin.
func (c EnvironmentConfig) NeedsCertificateUnit() bool {
	return c.HasDomain() && (c.CognitoAuthEnabled() || c.CloudFrontVpcOriginEnabled())
}

// StackConfig is the operational tuning of one environment.
type StackConfig struct {
	// Name is the table key. It is filled in from the map key when decoding.
	Name string `yaml:"-" validate:"required"`

	// TaskDefCPU is the Fargate task cpu units. Nil means 1024.
	TaskDefCPU *float64 `yaml:"taskDefCpu,omitempty" validate:"omitempty,gt=0"`

	// TaskDefMemoryLimitMiB is the Fargate task memory. Nil means 2048.
	TaskDefMemoryLimitMiB *float64 `yaml:"taskDefMemoryLimitMiB,omitempty" validate:"omitempty,gt=0"`

	// WebTaskCount is the desired count of web tasks. Nil means 1.
	WebTaskCount *float64 `yaml:"webTaskCount,omitempty" validate:"omitempty,gte=0"`

	// EnableFargateSpot runs services on Fargate Spot. Nil means false.
	EnableFargateSpot *bool `yaml:"enableFargateSpot,omitempty"`

	// UseNatInstance replaces NAT gateways with one NAT instance. Nil means false.
	UseNatInstance *bool `yaml:"useNatInstance,omitempty"`

	// CreateBastion adds an SSM-reachable bastion host. Nil means false.
	CreateBastion *bool `yaml:"createBastion,omitempty"`

	// AuroraScalesToZero lets Aurora Serverless v2 pause when idle. Nil means false.
	AuroraScalesToZero *bool `yaml:"auroraScalesToZero,omitempty"`

	// CacheMultiAZ adds a replica and automatic failover. Nil means single-AZ.
	CacheMultiAZ *bool `yaml:"cacheMultiAz,omitempty"`

	// LangfuseImageTag is the langfuse/langfuse image tag. Nil means "latest".
	LangfuseImageTag *string `yaml:"langfuseImageTag,omitempty"`

	// ClickHouseImageTag is the clickhouse/clickhouse-server image tag. Nil means "latest".
	ClickHouseImageTag *string `yaml:"clickhouseImageTag,omitempty"`

	// LogLevel is the Langfuse log level. Nil means info.
	LogLevel *LogLevel `yaml:"logLevel,omitempty" validate:"omitempty,oneof=trace debug info warn error fatal"`

	// AllowedIPv4Cidrs restricts access to the application. Nil means 0.0.0.0/0.
	AllowedIPv4Cidrs *[]string `yaml:"allowedIPv4Cidrs,omitempty"`

	// AllowedIPv6Cidrs restricts access to the application. Nil means ::/0.
	AllowedIPv6Cidrs *[]string `yaml:"allowedIPv6Cidrs,omitempty"`
}

// CPU defaults to DefaultTaskDefCPU.
func (c StackConfig) CPU() float64 { return deref(c.TaskDefCPU, DefaultTaskDefCPU) }

// MemoryLimitMiB defaults to DefaultTaskDefMemoryLimitMiB.
func (c StackConfig) MemoryLimitMiB() float64 {
	return deref(c.TaskDefMemoryLimitMiB, DefaultTaskDefMemoryLimitMiB)
}

// WebDesiredCount defaults to DefaultWebTaskCount.
func (c StackConfig) WebDesiredCount() float64 { return deref(c.WebTaskCount, DefaultWebTaskCount) }

// FargateSpot defaults to false.
func (c StackConfig) FargateSpot() bool { return deref(c.EnableFargateSpot, false) }

// NatInstance defaults to false.
func (c StackConfig) NatInstance() bool { return deref(c.UseNatInstance, false) }

// Bastion defaults to false.
func (c StackConfig) Bastion() bool { return deref(c.CreateBastion, false) }

// ScalesToZero defaults to false.
func (c StackConfig) ScalesToZero() bool { return deref(c.AuroraScalesToZero, false) }

// MultiAZCache defaults to false.
func (c StackConfig) MultiAZCache() bool { return deref(c.CacheMultiAZ, false) }

// LangfuseTag defaults to DefaultImageTag.
func (c StackConfig) LangfuseTag() string { return deref(c.LangfuseImageTag, DefaultImageTag) }

// ClickHouseTag defaults to DefaultImageTag.
func (c StackConfig) ClickHouseTag() string { return deref(c.ClickHouseImageTag, DefaultImageTag) }

// Level defaults to DefaultLogLevel.
func (c StackConfig) Level() LogLevel { return deref(c.LogLevel, DefaultLogLevel) }

// IPv4Cidrs returns the IPv4 allow-list, defaulting to 0.0.0.0/0.
func (c StackConfig) IPv4Cidrs() []string {
	return deref(c.AllowedIPv4Cidrs, []string{DefaultIPv4Cidr})
}

// IPv6Cidrs returns the IPv6 allow-list, defaulting to ::/0.
func (c StackConfig) IPv6Cidrs() []string {
	return deref(c.AllowedIPv6Cidrs, []string{DefaultIPv6Cidr})
}

// ExplicitAllowlists returns only the allow-lists that were configured, without
// defaults. ok is false when neither list has an entry.
func (c StackConfig) ExplicitAllowlists() (ipv4, ipv6 []string, ok bool) {
	ipv4 = deref(c.AllowedIPv4Cidrs, nil)
	ipv6 = deref(c.AllowedIPv6Cidrs, nil)
	return ipv4, ipv6, len(ipv4) > 0 || len(ipv6) > 0
}

// NotFoundError is returned when an environment name has no entry in a table.
type NotFoundError struct {
	// Kind is the table, "environment" or "stack".
	Kind string
	// Name is the requested environment name.
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s config does not exist: envName=%q", e.Kind, e.Name)
}

// InvalidCombinationError is returned when an environment enables features that
// cannot be synthesized together.
type InvalidCombinationError struct {
	EnvName string
	Reason  string
}

func (e *InvalidCombinationError) Error() string {
	return fmt.Sprintf("%s, env: %s", e.Reason, e.EnvName)
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
