package lfcdkconfig_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/advdv/lfcdk/lfcdkconfig"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTablesShareNames(t *testing.T) {
	t.Parallel()

	envs, err := lfcdkconfig.DefaultEnvironments()
	require.NoError(t, err)
	stacks, err := lfcdkconfig.DefaultStacks()
	require.NoError(t, err)

	assert.Equal(t, envs.Names(), stacks.Names())
	assert.True(t, slices.Contains(envs.Names(), "for-snapshot-test"))
}

func TestLookupExactName(t *testing.T) {
	t.Parallel()

	envs, err := lfcdkconfig.DefaultEnvironments()
	require.NoError(t, err)

	for _, name := range []string{"unknown", "Dev", " dev", "prod "} {
		_, err := envs.Lookup(name)

		var nf *lfcdkconfig.NotFoundError
		require.True(t, errors.As(err, &nf), "name %q", name)
		assert.Equal(t, "environment", nf.Kind)
		assert.Equal(t, name, nf.Name)
		assert.Contains(t, err.Error(), name)
	}

	stacks, err := lfcdkconfig.DefaultStacks()
	require.NoError(t, err)

	_, err = stacks.Lookup("unknown")
	var nf *lfcdkconfig.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "stack", nf.Kind)
}

func TestLookupIsRepeatable(t *testing.T) {
	t.Parallel()

	envs, err := lfcdkconfig.DefaultEnvironments()
	require.NoError(t, err)

	a, err := envs.Lookup("prod")
	require.NoError(t, err)
	b, err := envs.Lookup("prod")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEnvironmentDefaults(t *testing.T) {
	t.Parallel()

	env := lfcdkconfig.EnvironmentConfig{Name: "x"}
	assert.Empty(t, env.AccountOrEmpty())
	assert.Empty(t, env.RegionOrEmpty())
	assert.False(t, env.HasDomain())
	assert.False(t, env.EmailPasswordAuthDisabled())
	assert.False(t, env.CognitoAuthEnabled())
	assert.False(t, env.CloudFrontVpcOriginEnabled())
	assert.NoError(t, env.Validate())
}

func TestStackDefaults(t *testing.T) {
	t.Parallel()

	stack := lfcdkconfig.StackConfig{Name: "x"}
	assert.InDelta(t, 1024.0, stack.CPU(), 0)
	assert.InDelta(t, 2048.0, stack.MemoryLimitMiB(), 0)
	assert.InDelta(t, 1.0, stack.WebDesiredCount(), 0)
	assert.Equal(t, "latest", stack.LangfuseTag())
	assert.Equal(t, "latest", stack.ClickHouseTag())
	assert.Equal(t, lfcdkconfig.LogLevelInfo, stack.Level())
	assert.Equal(t, []string{"0.0.0.0/0"}, stack.IPv4Cidrs())
	assert.Equal(t, []string{"::/0"}, stack.IPv6Cidrs())

	_, _, ok := stack.ExplicitAllowlists()
	assert.False(t, ok)
}

func TestSnapshotStackOverrides(t *testing.T) {
	t.Parallel()

	stacks, err := lfcdkconfig.DefaultStacks()
	require.NoError(t, err)

	stack, err := stacks.Lookup("for-snapshot-test")
	require.NoError(t, err)

	assert.InDelta(t, 2.0, stack.WebDesiredCount(), 0)
	assert.Equal(t, lfcdkconfig.LogLevelTrace, stack.Level())
	assert.Equal(t, "3", stack.LangfuseTag())
	assert.Equal(t, "25.1", stack.ClickHouseTag())
	assert.True(t, stack.NatInstance())
	assert.True(t, stack.FargateSpot())
	assert.True(t, stack.MultiAZCache())

	v4, v6, ok := stack.ExplicitAllowlists()
	assert.True(t, ok)
	assert.Equal(t, []string{"10.0.0.0/8"}, v4)
	assert.Equal(t, []string{"::1/128"}, v6)
}

func TestCognitoRequiresDomain(t *testing.T) {
	t.Parallel()

	envs, err := lfcdkconfig.NewEnvironments(lfcdkconfig.EnvironmentConfig{
		Name:              "broken",
		EnableCognitoAuth: ptr(true),
	})
	require.NoError(t, err)

	stacks, err := lfcdkconfig.NewStacks(lfcdkconfig.StackConfig{Name: "broken"})
	require.NoError(t, err)

	_, err = lfcdkconfig.Resolve(envs, stacks, "broken")

	var ic *lfcdkconfig.InvalidCombinationError
	require.True(t, errors.As(err, &ic))
	assert.Equal(t, "broken", ic.EnvName)
	assert.Contains(t, err.Error(), "broken")
}

func TestResolveMissingStack(t *testing.T) {
	t.Parallel()

	envs, err := lfcdkconfig.NewEnvironments(lfcdkconfig.EnvironmentConfig{Name: "only-env"})
	require.NoError(t, err)
	stacks, err := lfcdkconfig.NewStacks()
	require.NoError(t, err)

	_, err = lfcdkconfig.Resolve(envs, stacks, "only-env")

	var nf *lfcdkconfig.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "stack", nf.Kind)
}

func TestNeedsCertificateUnit(t *testing.T) {
	t.Parallel()

	domain := &lfcdkconfig.DomainSettings{HostLabel: "langfuse", ParentDomain: "example.com"}

	tests := []struct {
		name    string
		domain  *lfcdkconfig.DomainSettings
		cognito bool
		cdn     bool
		want    bool
	}{
		{"no domain, nothing", nil, false, false, false},
		{"no domain, cdn", nil, false, true, false},
		{"domain only", domain, false, false, false},
		{"domain and cognito", domain, true, false, true},
		{"domain and cdn", domain, false, true, true},
		{"domain, cognito and cdn", domain, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := lfcdkconfig.EnvironmentConfig{
				Name:                      "x",
				Domain:                    tt.domain,
				EnableCognitoAuth:         ptr(tt.cognito),
				EnableCloudFrontVpcOrigin: ptr(tt.cdn),
			}
			assert.Equal(t, tt.want, env.NeedsCertificateUnit())
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := lfcdkconfig.ParseEnvironments([]byte(`
environments:
  dev:
    regoin: us-east-1
`))
	require.Error(t, err)
}

func TestParseReportsValidationErrors(t *testing.T) {
	t.Parallel()

	_, err := lfcdkconfig.ParseStacks([]byte(`
stacks:
  dev:
    taskDefCpu: 0
    logLevel: verbose
`))
	require.Error(t, err)

	msg := err.Error()
	assert.True(t, strings.Contains(msg, "TaskDefCPU"), msg)
	assert.True(t, strings.Contains(msg, "LogLevel"), msg)
}

func TestParseDomainRequiresBothParts(t *testing.T) {
	t.Parallel()

	_, err := lfcdkconfig.ParseEnvironments([]byte(`
environments:
  stg:
    domain:
      hostLabel: langfuse
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ParentDomain")
}

func TestDuplicateNames(t *testing.T) {
	t.Parallel()

	_, err := lfcdkconfig.NewStacks(
		lfcdkconfig.StackConfig{Name: "dev"},
		lfcdkconfig.StackConfig{Name: "dev"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}

func ptr[T any](v T) *T { return &v }
