// Package common defines shared constants and sentinel errors used across
// the claimdesk server, its repositories and the ops tooling. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal          = errors.New("internal error")
	ErrorUnauthorized      = errors.New("unauthorized")
	ErrorValidation        = errors.New("validation error")
	ErrorInvalidTransition = errors.New("invalid status transition")
	ErrorStorage           = errors.New("storage error")
	ErrorNotification      = errors.New("notification error")

	// Upload-specific errors.
	ErrorUnsupportedMedia = errors.New("unsupported media type")
	ErrorTooLarge         = errors.New("file too large")
	ErrorEmptyFile        = errors.New("empty file")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
