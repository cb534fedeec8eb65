package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SIGNING_SECRET", "test-secret")
	t.Setenv("UPSTREAM_ENDPOINT", "https://render.internal:3000")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "test-secret", cfg.Signing.Secret)
	assert.Equal(t, "https://render.internal:3000", cfg.Upstream.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Upstream.NavigationTimeout)
	assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "screenshots", cfg.Storage.Bucket)
	assert.False(t, cfg.Storage.UseSSL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("SIGNING_SECRET", "")
	t.Setenv("UPSTREAM_ENDPOINT", "https://render.internal:3000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SIGNING_SECRET")
}

func TestLoad_MissingUpstreamEndpoint(t *testing.T) {
	t.Setenv("SIGNING_SECRET", "test-secret")
	t.Setenv("UPSTREAM_ENDPOINT", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM_ENDPOINT")
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("S3_BUCKET", "shots")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "shots", cfg.Storage.Bucket)
	assert.True(t, cfg.Storage.UseSSL)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "fast")

	_, err := Load()
	require.Error(t, err)
}
