package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/container"
)

func TestProvideQueues(t *testing.T) {
	cfg := config.Defaults("test")

	queues := container.ProvideQueues(cfg)

	assert.Equal(t, "episode-import", queues.Import)
	assert.Equal(t, "episode-processor", queues.Processor)
	assert.Equal(t, "episode-updates", queues.Updates)
}

func TestProvideEventBus_UnknownTransport(t *testing.T) {
	// Arrange
	cfg := config.Defaults("test")
	cfg.Messaging.Transport = "carrier-pigeon"

	// Act
	bus, cleanup, err := container.ProvideEventBus(cfg, zaptest.NewLogger(t))

	// Assert
	require.Error(t, err)
	assert.Nil(t, bus)
	assert.Nil(t, cleanup)
}

func TestProvideResultsCache(t *testing.T) {
	cfg := config.Defaults("test")

	results, cleanup := container.ProvideResultsCache(cfg)
	defer cleanup()

	require.NotNil(t, results)
	assert.Zero(t, results.Len())
}

func TestProvideProcessor_RejectsPatternWithoutGroup(t *testing.T) {
	// Arrange
	cfg := config.Defaults("test")
	cfg.Processor.BlobPathPattern = `^episodes/\d+\.mp4$`
	logger := zaptest.NewLogger(t)

	// Act
	p, err := container.ProvideProcessor(cfg, nil, nil, nil, nil, container.ProvideRetryExecutor(cfg, logger), logger)

	// Assert
	require.Error(t, err)
	assert.Nil(t, p)
}
