package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domainevents "github.com/narwhalmedia/episodes/internal/domain/events"
	"github.com/narwhalmedia/episodes/internal/infrastructure/events"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, msg events.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}

func TestIntegrationEventPublisher_Publish(t *testing.T) {
	// Arrange
	bus := new(MockEventBus)
	publisher := events.NewIntegrationEventPublisher(bus, zaptest.NewLogger(t))
	source := newTestEvent("episode.deleted")
	event := domainevents.NewIntegrationEvent("EpisodeDeleted", source, map[string]string{"blob_path": "/7.mp4"})

	var sent events.Message
	bus.On("Publish", mock.Anything, mock.AnythingOfType("events.Message")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(events.Message) }).
		Return(nil)

	// Act
	err := publisher.Publish(context.Background(), "episode-processor", event)

	// Assert
	require.NoError(t, err)
	bus.AssertExpectations(t)

	assert.Equal(t, "episode-processor", sent.Destination)
	assert.Equal(t, "7", sent.Key)
	assert.Equal(t, event.EventID.String(), sent.ID)
	assert.Equal(t, "EpisodeDeleted", sent.EventType)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(sent.Data, &envelope))
	assert.Equal(t, "EpisodeDeleted", envelope["event_type"])
	assert.Equal(t, float64(7), envelope["episode_id"])
	assert.Equal(t, source.ID().String(), envelope["correlation_id"])
	assert.Equal(t, "/7.mp4", envelope["payload"].(map[string]any)["blob_path"])
}

func TestIntegrationEventPublisher_PublishFailure(t *testing.T) {
	// Arrange
	bus := new(MockEventBus)
	publisher := events.NewIntegrationEventPublisher(bus, zaptest.NewLogger(t))
	event := domainevents.NewIntegrationEvent("EpisodeUpdated", newTestEvent("episode.metadata_updated"), nil)
	bus.On("Publish", mock.Anything, mock.Anything).
		Return(errors.New("no responders"))

	// Act
	err := publisher.Publish(context.Background(), "episode-updates", event)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, events.ErrPublish)
	assert.True(t, apperrors.IsFailure(err))
}
