package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/flagx"
)

// flagNames lists every flag parseFlags understands; other arguments (for
// example -c) belong to other parsers and are filtered out first.
var flagNames = []string{
	"-a", "-health", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e",
	"-max-upload-mb", "-email-driver", "-k", "-f", "-l",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string            HTTP bind address (e.g. ":8080")
//	-health string       gRPC health probe bind address
//	-d string            PostgreSQL DSN
//	-s string            JWT HMAC secret key
//	-t int               analyst access token validity, minutes
//	-u / -p string       S3 access key / secret key
//	-b string            S3 bucket
//	-g string            S3 region
//	-e string            S3 base endpoint
//	-max-upload-mb int   upload size limit in MiB
//	-email-driver string "sendgrid" or "log"
//	-k string            SendGrid API key
//	-f string            sender address
//	-l string            log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP API")
	fs.StringVar(&config.GRPCHealthAddr, "health", config.GRPCHealthAddr, "address and port of the gRPC health probe")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	maxUploadMB := fs.Int64("max-upload-mb", config.MaxUploadBytes>>20, "upload size limit (in MiB)")

	fs.StringVar(&config.EmailDriver, "email-driver", config.EmailDriver, "email driver: sendgrid or log")
	fs.StringVar(&config.SendGridAPIKey, "k", config.SendGridAPIKey, "SendGrid API key")
	fs.StringVar(&config.EmailFrom, "f", config.EmailFrom, "sender email address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "max-upload-mb":
			config.MaxUploadBytes = *maxUploadMB << 20
		}
	})
}
