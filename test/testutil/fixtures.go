package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
)

// NewTestEpisode creates an unsaved episode with default values.
func NewTestEpisode(t *testing.T, title string, format episode.Format) *episode.Episode {
	t.Helper()
	ep, err := episode.NewEpisode(episode.NewEpisodeParams{
		Title:       title,
		Description: "Test episode description",
		Category:    episode.CategoryTechnology,
		Format:      format,
		Duration:    120 * time.Second,
	})
	require.NoError(t, err)
	return ep
}

// StoredEpisode returns an episode as the store would hand it back.
func StoredEpisode(id int64, status episode.Status, format episode.Format) *episode.Episode {
	published := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return episode.Reconstitute(episode.Snapshot{
		ID:          id,
		Version:     1,
		Title:       "Stored episode",
		Description: "Test episode description",
		Category:    episode.CategoryScience,
		Format:      format,
		Language:    episode.DefaultLanguage,
		SourceType:  episode.SourceDirectUpload,
		Duration:    120 * time.Second,
		PublishDate: published,
		Status:      status,
		CreatedAt:   published,
		UpdatedAt:   published,
	})
}
