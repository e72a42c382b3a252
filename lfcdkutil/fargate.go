package lfcdkutil

import (
	"strconv"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/jsii-runtime-go"
)

// CapacityProviderStrategies returns a strategy that places every task on Fargate
// Spot, or nil to keep the service on the default on-demand capacity.
func CapacityProviderStrategies(spot bool) *[]*awsecs.CapacityProviderStrategy {
	if !spot {
		return nil
	}

	return &[]*awsecs.CapacityProviderStrategy{
		{CapacityProvider: jsii.String("FARGATE"), Weight: jsii.Number(0)},
		{CapacityProvider: jsii.String("FARGATE_SPOT"), Weight: jsii.Number(1)},
	}
}

// HTTPHealthCheck requests http://localhost:<port><path> from inside the container.
func HTTPHealthCheck(port int, path string, interval, startPeriod, retries float64) *awsecs.HealthCheck {
	return &awsecs.HealthCheck{
		Command: jsii.Strings("CMD-SHELL",
			"wget --no-verbose --tries=1 --spider http://localhost:"+strconv.Itoa(port)+path+" || exit 1"),
		Interval:    awscdk.Duration_Seconds(jsii.Number(interval)),
		StartPeriod: awscdk.Duration_Seconds(jsii.Number(startPeriod)),
		Timeout:     awscdk.Duration_Seconds(jsii.Number(5)),
		Retries:     jsii.Number(retries),
	}
}

// ServiceConnectLogs returns the log driver used for Service Connect proxies.
func ServiceConnectLogs() awsecs.LogDriver {
	return awsecs.LogDrivers_AwsLogs(&awsecs.AwsLogDriverProps{
		StreamPrefix: jsii.String("service-connect"),
	})
}
