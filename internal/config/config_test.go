package config_test

import (
	"testing"
	"time"

	"github.com/classattend/attendance-server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestMaxDistanceMeters(t *testing.T) {
	t.Run("gps mode default", func(t *testing.T) {
		t.Setenv("DEPLOYMENT_MODE", "gps")
		t.Setenv("MAX_DISTANCE_METERS", "")
		require.Equal(t, 10.0, config.New().GetMaxDistanceMeters())
	})

	t.Run("degraded mode default", func(t *testing.T) {
		t.Setenv("DEPLOYMENT_MODE", "degraded")
		t.Setenv("MAX_DISTANCE_METERS", "")
		require.Equal(t, 10000.0, config.New().GetMaxDistanceMeters())
	})

	t.Run("explicit override wins over mode", func(t *testing.T) {
		t.Setenv("DEPLOYMENT_MODE", "degraded")
		t.Setenv("MAX_DISTANCE_METERS", "25.5")
		require.Equal(t, 25.5, config.New().GetMaxDistanceMeters())
	})

	t.Run("invalid override falls back to mode default", func(t *testing.T) {
		t.Setenv("DEPLOYMENT_MODE", "gps")
		t.Setenv("MAX_DISTANCE_METERS", "-3")
		require.Equal(t, 10.0, config.New().GetMaxDistanceMeters())
	})

	t.Run("unknown mode treated as gps", func(t *testing.T) {
		t.Setenv("DEPLOYMENT_MODE", "balloon")
		t.Setenv("MAX_DISTANCE_METERS", "")
		require.Equal(t, config.DeploymentModeGPS, config.New().GetDeploymentMode())
	})
}

func TestSessionDuration(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("SESSION_DURATION_SECONDS", "")
		require.Equal(t, 5*time.Minute, config.New().GetSessionDuration())
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv("SESSION_DURATION_SECONDS", "900")
		require.Equal(t, 15*time.Minute, config.New().GetSessionDuration())
	})

	t.Run("non-positive override ignored", func(t *testing.T) {
		t.Setenv("SESSION_DURATION_SECONDS", "0")
		require.Equal(t, 5*time.Minute, config.New().GetSessionDuration())
	})
}

func TestAllowedOrigins(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		t.Setenv("CORS_ORIGIN", "*")
		require.True(t, config.New().GetAllowedOrigins().IsAllowedOrigin("https://anything.example"))
	})

	t.Run("explicit list", func(t *testing.T) {
		t.Setenv("CORS_ORIGIN", "https://app.example, https://staging.example")
		origins := config.New().GetAllowedOrigins()
		require.True(t, origins.IsAllowedOrigin("https://app.example"))
		require.True(t, origins.IsAllowedOrigin("https://staging.example"))
		require.False(t, origins.IsAllowedOrigin("https://evil.example"))
	})
}
