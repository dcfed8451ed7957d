// Package remote provides the REST client for the trip API.
package remote

import (
	"time"
)

// Config holds the configuration for trip API access.
type Config struct {
	// BaseURL is the trip API base URL, e.g. http://localhost:8098/api
	BaseURL string

	// Token is a pre-issued bearer token
	Token string

	// Secret is used to mint a bearer token when Token is empty
	Secret string

	// Timeout for API requests
	Timeout time.Duration
}

// HasCredentials reports whether requests will carry an Authorization header.
func (c Config) HasCredentials() bool {
	return c.Token != "" || c.Secret != ""
}
