package episode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appepisode "github.com/narwhalmedia/episodes/internal/application/episode"
	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/test/testutil"
)

func TestToIntegrationEvent(t *testing.T) {
	// Arrange
	ep := testutil.StoredEpisode(7, episode.StatusPendingUpload, episode.FormatAudio)
	ep.MarkForDeletion()
	evt := ep.PendingEvents()[0]

	// Act
	ie, ok := appepisode.ToIntegrationEvent(evt)

	// Assert
	require.True(t, ok)
	assert.Equal(t, appepisode.EpisodeDeleted, ie.EventType)
	assert.Equal(t, int64(7), ie.AggregateID)
	assert.Equal(t, evt.ID(), ie.CorrelationID)
	assert.NotEqual(t, evt.ID(), ie.EventID)

	data, err := ie.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event_type":"EpisodeDeleted"`)
	assert.Contains(t, string(data), `"episode_id":7`)
	assert.Contains(t, string(data), `"blob_path":"/7.mp3"`)
}
