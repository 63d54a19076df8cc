package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetCollectionsPageLimit() int
	GetGeolocationTimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the remote API root every request path is joined onto
// (e.g. "https://api.example.com/api/v1")
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv("API_BASE_URL", "http://localhost:8000/api/v1"), "/")
}

func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 15*time.Second)
}

func (API) GetCollectionsPageLimit() int {
	return GetEnvInt("COLLECTIONS_PAGE_LIMIT", 100)
}

func (API) GetGeolocationTimeout() time.Duration {
	return GetEnvDuration("GEOLOCATION_TIMEOUT", 10*time.Second)
}
