package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/internal/search"
	"github.com/narwhalmedia/episodes/test/testutil"
)

func TestFromEpisode(t *testing.T) {
	// Arrange
	ep := testutil.StoredEpisode(17, episode.StatusReady, episode.FormatVideo)

	// Act
	doc := search.FromEpisode(ep)

	// Assert
	assert.Equal(t, "17", doc.ID)
	assert.Equal(t, "Science", doc.Category)
	assert.Equal(t, "mp4", doc.Format)
	assert.Equal(t, "Ready", doc.Status)
	assert.Equal(t, "DirectUpload", doc.SourceType)
	assert.Equal(t, int64(120), doc.DurationSeconds)
	assert.Equal(t, "/17.mp4", doc.BlobPath)
}

func TestService_Upsert(t *testing.T) {
	// Arrange
	index := new(testutil.MockIndex)
	svc := search.NewService(index, zaptest.NewLogger(t))
	ep := testutil.StoredEpisode(3, episode.StatusReady, episode.FormatAudio)
	index.On("Upsert", mock.Anything, []search.Document{search.FromEpisode(ep)}).Return(nil)

	// Act
	err := svc.Upsert(context.Background(), ep)

	// Assert
	require.NoError(t, err)
	index.AssertExpectations(t)
}

func TestService_UpsertPropagatesFailure(t *testing.T) {
	index := new(testutil.MockIndex)
	svc := search.NewService(index, zaptest.NewLogger(t))
	index.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("index down"))

	err := svc.Upsert(context.Background(), testutil.StoredEpisode(3, episode.StatusReady, episode.FormatAudio))

	assert.EqualError(t, err, "index down")
}

func TestService_Delete(t *testing.T) {
	index := new(testutil.MockIndex)
	svc := search.NewService(index, zaptest.NewLogger(t))
	index.On("Delete", mock.Anything, []string{"4", "5"}).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), 4, 5))
	require.NoError(t, svc.Delete(context.Background()))
	index.AssertNumberOfCalls(t, "Delete", 1)
}

func TestService_HealthCheck(t *testing.T) {
	ctx := context.Background()

	healthy := new(testutil.MockIndex)
	healthy.On("Stats", mock.Anything).Return(nil)
	assert.True(t, search.NewService(healthy, zaptest.NewLogger(t)).HealthCheck(ctx))

	failing := new(testutil.MockIndex)
	failing.On("Stats", mock.Anything).Return(errors.New("timeout"))
	assert.False(t, search.NewService(failing, zaptest.NewLogger(t)).HealthCheck(ctx))

	panicking := new(testutil.MockIndex)
	panicking.On("Stats", mock.Anything).Panic("driver bug")
	assert.False(t, search.NewService(panicking, zaptest.NewLogger(t)).HealthCheck(ctx))
}
