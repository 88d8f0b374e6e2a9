package container

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koushik8686/GeoGuide-sub000/config"
)

func TestNewContainerMemoryStore(t *testing.T) {
	cfg, err := config.LoadEmbedded()
	require.NoError(t, err)
	cfg.Affinity.Store = "memory"
	cfg.Providers.Classifier.Enabled = false

	c, err := NewContainer(context.Background(), &cfg, slog.Default())
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Pool)
	assert.Nil(t, c.Redis)
	assert.NotNil(t, c.DiscoveryHandler)
	assert.NoError(t, c.DiscoveryService.Ready(context.Background()))
}

func TestNewContainerUnknownStore(t *testing.T) {
	cfg, err := config.LoadEmbedded()
	require.NoError(t, err)
	cfg.Affinity.Store = "cassandra"

	_, err = NewContainer(context.Background(), &cfg, slog.Default())
	assert.ErrorContains(t, err, "unknown affinity store")
}

func TestClassifierWithoutKeyFallsBackToKeywords(t *testing.T) {
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	cfg, err := config.LoadEmbedded()
	require.NoError(t, err)
	cfg.Affinity.Store = "memory"
	cfg.Providers.Classifier.Enabled = true
	cfg.Providers.Classifier.APIKey = ""

	c := &Container{Config: &cfg, Logger: slog.Default()}
	stages := c.extractionStages(context.Background())

	require.Len(t, stages, 1)
	assert.Equal(t, "keywords", stages[0].Name())
}
