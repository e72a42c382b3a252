// Package lfcdkenv declares the secrets and environment variables shared by the
// Langfuse web and worker containers.
package lfcdkenv

import (
	"maps"
	"strconv"

	"github.com/advdv/lfcdk/lfcdk/lfcdkcache"
	"github.com/advdv/lfcdk/lfcdk/lfcdkclickhouse"
	"github.com/advdv/lfcdk/lfcdk/lfcdkdatabase"
	"github.com/advdv/lfcdk/lfcdkconfig"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// ServiceConnectNamespace is the Cloud Map namespace the services resolve each
// other in.
const ServiceConnectNamespace = "local"

// Common provides the shared container configuration. Each call returns a fresh
// map so callers may add their own entries.
type Common interface {
	Environment() map[string]*string
	Secrets() map[string]awsecs.Secret
}

// Props configures the Common construct.
type Props struct {
	// LogLevel is written to LANGFUSE_LOG_LEVEL.
	LogLevel lfcdkconfig.LogLevel
	// Database, Cache, ClickHouse and Bucket are the backing stores. Required.
	Database   lfcdkdatabase.Database
	Cache      lfcdkcache.Cache
	ClickHouse lfcdkclickhouse.ClickHouse
	Bucket     awss3.IBucket
}

type common struct {
	environment map[string]*string
	secrets     map[string]awsecs.Secret
}

// New creates the encryption key and salt secrets and assembles the shared maps.
func New(scope constructs.Construct, props Props) Common {
	scope = constructs.NewConstruct(scope, jsii.String("CommonEnvironment"))
	con := &common{}

	// 64 hex characters: only 0-9 and a-f survive the exclusions.
	encryptionKey := awssecretsmanager.NewSecret(scope, jsii.String("EncryptionKey"), &awssecretsmanager.SecretProps{
		GenerateSecretString: &awssecretsmanager.SecretStringGenerator{
			PasswordLength:          jsii.Number(64),
			ExcludeCharacters:       jsii.String("ghijklmnopqrstuvwxyzGHIJKLMNOPQRSTUVWXYZ!@#$%^&*()_+=-[]{};:,.<>?/"),
			ExcludePunctuation:      jsii.Bool(true),
			ExcludeUppercase:        jsii.Bool(true),
			RequireEachIncludedType: jsii.Bool(false),
		},
	})

	salt := awssecretsmanager.NewSecret(scope, jsii.String("Salt"), &awssecretsmanager.SecretProps{
		GenerateSecretString: &awssecretsmanager.SecretStringGenerator{
			PasswordLength:     jsii.Number(32),
			ExcludePunctuation: jsii.Bool(true),
		},
	})

	bucketName := props.Bucket.BucketName()

	con.environment = map[string]*string{
		"TELEMETRY_ENABLED":                     jsii.String("true"),
		"LANGFUSE_ENABLE_EXPERIMENTAL_FEATURES": jsii.String("true"),
		"LANGFUSE_LOG_LEVEL":                    jsii.String(string(props.LogLevel)),

		"DATABASE_NAME": jsii.String(lfcdkdatabase.DatabaseName),

		"REDIS_HOST":        props.Cache.Host(),
		"REDIS_PORT":        jsii.String(strconv.Itoa(props.Cache.Port())),
		"REDIS_TLS_ENABLED": jsii.String("true"),

		"CLICKHOUSE_MIGRATION_URL":   jsii.String(lfcdkclickhouse.MigrationURL(ServiceConnectNamespace)),
		"CLICKHOUSE_URL":             jsii.String(lfcdkclickhouse.HTTPURL(ServiceConnectNamespace)),
		"CLICKHOUSE_USER":            jsii.String(lfcdkclickhouse.User),
		"CLICKHOUSE_CLUSTER_ENABLED": jsii.String("false"),

		"LANGFUSE_S3_EVENT_UPLOAD_BUCKET": bucketName,
		"LANGFUSE_S3_EVENT_UPLOAD_PREFIX": jsii.String("events/"),
		"LANGFUSE_S3_MEDIA_UPLOAD_BUCKET": bucketName,
		"LANGFUSE_S3_MEDIA_UPLOAD_PREFIX": jsii.String("media/"),
	}

	dbSecret := props.Database.Secret()
	con.secrets = map[string]awsecs.Secret{
		"SALT":           awsecs.Secret_FromSecretsManager(salt, nil),
		"ENCRYPTION_KEY": awsecs.Secret_FromSecretsManager(encryptionKey, nil),

		"DATABASE_HOST":     awsecs.Secret_FromSecretsManager(dbSecret, jsii.String("host")),
		"DATABASE_USERNAME": awsecs.Secret_FromSecretsManager(dbSecret, jsii.String("username")),
		"DATABASE_PASSWORD": awsecs.Secret_FromSecretsManager(dbSecret, jsii.String("password")),

		"REDIS_AUTH": awsecs.Secret_FromSecretsManager(props.Cache.Secret(), nil),

		"CLICKHOUSE_PASSWORD": awsecs.Secret_FromSecretsManager(props.ClickHouse.Password(), nil),
	}

	return con
}

func (c *common) Environment() map[string]*string   { return maps.Clone(c.environment) }
func (c *common) Secrets() map[string]awsecs.Secret { return maps.Clone(c.secrets) }

// AllowToBackends opens the database, cache and ClickHouse ports to service.
// ClickHouse is opened on both the HTTP and the native port.
func AllowToBackends(service awsec2.IConnectable, db lfcdkdatabase.Database, cache lfcdkcache.Cache,
	ch lfcdkclickhouse.ClickHouse,
) {
	conns := service.Connections()
	conns.AllowToDefaultPort(db.Connections(), nil)
	conns.AllowToDefaultPort(cache.Connections(), nil)
	conns.AllowToDefaultPort(ch.Connections(), nil)
	conns.AllowTo(ch.Connections(), awsec2.Port_Tcp(jsii.Number(lfcdkclickhouse.TCPPort)), nil)
}
