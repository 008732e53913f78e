package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for tests; a missing .env file is not an error.
var loadDotEnv = func() { _ = godotenv.Load() }

// parseEnv overlays values from the process environment after loading a .env
// file from the working directory. Variables already present in the
// environment win over the .env file. Malformed numbers or durations panic.
func parseEnv(config *Config) {
	loadDotEnv()

	envString(&config.HTTPAddr, "HTTP_ADDR")
	envString(&config.GRPCHealthAddr, "GRPC_HEALTH_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_URL")
	envInt(&config.DBMaxOpenConns, "DB_MAX_OPEN_CONNS")
	envInt(&config.DBMaxIdleConns, "DB_MAX_IDLE_CONNS")
	envString(&config.SecretKey, "JWT_SECRET")
	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	envString(&config.S3RootUser, "S3_ACCESS_KEY")
	envString(&config.S3RootPassword, "S3_SECRET_KEY")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	envDuration(&config.PresignTTL, "PRESIGN_TTL")
	envInt64(&config.MaxUploadBytes, "MAX_UPLOAD_BYTES")
	envString(&config.EmailDriver, "EMAIL_DRIVER")
	envString(&config.SendGridAPIKey, "SENDGRID_API_KEY")
	envString(&config.EmailFrom, "FROM_EMAIL")
	envString(&config.EmailFromName, "FROM_NAME")
	envString(&config.PortalBaseURL, "PORTAL_BASE_URL")
	envString(&config.LogLevel, "LOG_LEVEL")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("invalid %s: %w", key, err))
	}
	*dst = n
}

func envInt64(dst *int64, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		panic(fmt.Errorf("invalid %s: %w", key, err))
	}
	*dst = n
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("invalid %s: %w", key, err))
	}
	*dst = d
}
