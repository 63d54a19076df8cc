package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/ecolink/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("ENV", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "EcoLink", c.GetAppName())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:8000/api/v1", c.GetAPIBaseURL())
	require.Equal(t, 100, c.GetCollectionsPageLimit())
	require.Equal(t, 15*time.Second, c.GetAPITimeout())
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE_URL", "https://api.example.com/api/v1/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("COLLECTIONS_PAGE_LIMIT", "25")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "https://api.example.com/api/v1", c.GetAPIBaseURL())
	require.Equal(t, 3*time.Second, c.GetAPITimeout())
	require.Equal(t, 25, c.GetCollectionsPageLimit())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("COLLECTIONS_PAGE_LIMIT", "-4")

	c := config.New()
	require.Equal(t, 15*time.Second, c.GetAPITimeout())
	require.Equal(t, 100, c.GetCollectionsPageLimit())
}
