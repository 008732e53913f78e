package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/claimdesk/internal/flagx"
	"github.com/dmitrijs2005/claimdesk/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Durations
// accept both "15m" strings and integer nanoseconds.
type JsonConfig struct {
	HTTPAddr                    string         `json:"http_addr"`
	GRPCHealthAddr              string         `json:"grpc_health_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	DBMaxOpenConns              int            `json:"db_max_open_conns"`
	DBMaxIdleConns              int            `json:"db_max_idle_conns"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	PresignTTL                  timex.Duration `json:"presign_ttl"`
	MaxUploadBytes              int64          `json:"max_upload_bytes"`
	EmailDriver                 string         `json:"email_driver"`
	SendGridAPIKey              string         `json:"sendgrid_api_key"`
	EmailFrom                   string         `json:"email_from"`
	EmailFromName               string         `json:"email_from_name"`
	PortalBaseURL               string         `json:"portal_base_url"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c / -config. Fields that
// are absent from the file keep their current value. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setInt(&config.DBMaxOpenConns, c.DBMaxOpenConns)
	setInt(&config.DBMaxIdleConns, c.DBMaxIdleConns)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.PresignTTL.Duration != 0 {
		config.PresignTTL = c.PresignTTL.Duration
	}
	if c.MaxUploadBytes != 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	setString(&config.EmailDriver, c.EmailDriver)
	setString(&config.SendGridAPIKey, c.SendGridAPIKey)
	setString(&config.EmailFrom, c.EmailFrom)
	setString(&config.EmailFromName, c.EmailFromName)
	setString(&config.PortalBaseURL, c.PortalBaseURL)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
