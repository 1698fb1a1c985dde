// Package common defines shared constants and sentinel errors used across
// client, pipeline and dev-server layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Remote / repository lookups.
	ErrorNotFound = errors.New("not found")

	// Auth errors (missing or wrong API key).
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors for request payloads.
	ErrorIncorrectMetadata = errors.New("incorrect metadata")
)
