package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetTokenStoreKey() string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetMaxSessionAge bounds the browser session cookie lifetime
func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 24*time.Hour)
}

// GetTokenStoreKey returns the secret used to encrypt persisted tokens. Empty disables encryption.
func (Security) GetTokenStoreKey() string {
	return GetEnv("TOKEN_STORE_KEY", "")
}
