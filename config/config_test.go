package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	cfg, err := LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Affinity.Store)
	assert.Equal(t, 5*time.Second, cfg.Providers.Places.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Providers.Places.CacheTTL)
	assert.Equal(t, uint32(5), cfg.Providers.Places.BreakerFailures)
	assert.Equal(t, 5, cfg.Providers.Recommender.TopN)
	assert.Equal(t, "8000", cfg.Server.HTTPPort)
	assert.Equal(t, "geoguide", cfg.Repositories.Postgres.DB)
	assert.Equal(t, "localhost:6379", cfg.Repositories.Redis.Addr)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, "development", cfg.Mode)
	assert.Equal(t, "9090", cfg.Handlers.Prometheus.Port)
	assert.False(t, cfg.Handlers.Prometheus.EnableTLS)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, "postgres", cfg.Affinity.Store)
	assert.Equal(t, 5*time.Second, cfg.Providers.Places.Timeout)
	assert.Equal(t, "gemini-2.0-flash", cfg.Providers.Classifier.Model)
	assert.Equal(t, 5, cfg.Providers.Recommender.TopN)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "development", cfg.Mode)
	assert.Equal(t, "9090", cfg.Handlers.Prometheus.Port)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}
