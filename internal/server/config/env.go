package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable the server reads,
// e.g. DAYBOOK_DATABASE_DSN.
const EnvPrefix = "DAYBOOK"

// EnvConfig mirrors Config for envconfig. Unset variables leave the
// corresponding Config field untouched.
type EnvConfig struct {
	EndpointAddrGRPC             string        `envconfig:"GRPC_ADDR"`
	MetricsAddr                  string        `envconfig:"METRICS_ADDR"`
	DatabaseDSN                  string        `envconfig:"DATABASE_DSN"`
	SecretKey                    string        `envconfig:"SECRET_KEY"`
	AccessTokenValidityDuration  time.Duration `envconfig:"ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `envconfig:"REFRESH_TOKEN_TTL"`
	MirrorBackend                string        `envconfig:"MIRROR_BACKEND"`
	S3RootUser                   string        `envconfig:"S3_ROOT_USER"`
	S3RootPassword               string        `envconfig:"S3_ROOT_PASSWORD"`
	S3Bucket                     string        `envconfig:"S3_BUCKET"`
	S3Region                     string        `envconfig:"S3_REGION"`
	S3BaseEndpoint               string        `envconfig:"S3_BASE_ENDPOINT"`
}

// parseEnv overlays DAYBOOK_* environment variables onto config.
// Malformed values panic, like the JSON and flag overlays.
func parseEnv(config *Config) {
	e := &EnvConfig{}
	if err := envconfig.Process(EnvPrefix, e); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setString(&config.MetricsAddr, e.MetricsAddr)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.SecretKey, e.SecretKey)
	setString(&config.MirrorBackend, e.MirrorBackend)
	setString(&config.S3RootUser, e.S3RootUser)
	setString(&config.S3RootPassword, e.S3RootPassword)
	setString(&config.S3Bucket, e.S3Bucket)
	setString(&config.S3Region, e.S3Region)
	setString(&config.S3BaseEndpoint, e.S3BaseEndpoint)

	if e.AccessTokenValidityDuration != 0 {
		config.AccessTokenValidityDuration = e.AccessTokenValidityDuration
	}
	if e.RefreshTokenValidityDuration != 0 {
		config.RefreshTokenValidityDuration = e.RefreshTokenValidityDuration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
