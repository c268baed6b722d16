package episode_test

import (
	"testing"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := episode.ParseFormat("MP4")
	require.NoError(t, err)
	assert.Equal(t, episode.FormatVideo, f)
	assert.Equal(t, "video/mp4", f.MimeType())

	f, err = episode.ParseFormat(" mp3 ")
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", f.MimeType())
	assert.Equal(t, "mp3", f.Extension())

	_, err = episode.ParseFormat("ogg")
	assert.ErrorIs(t, err, episode.ErrInvalidFormat)
}

func TestParseCategory(t *testing.T) {
	c, err := episode.ParseCategory("technology")
	require.NoError(t, err)
	assert.Equal(t, episode.CategoryTechnology, c)
	assert.True(t, c.IsValid())
	assert.Len(t, episode.Categories(), 10)

	_, err = episode.ParseCategory("gardening")
	assert.ErrorIs(t, err, episode.ErrInvalidCategory)
	assert.False(t, episode.Category("technology").IsValid())
}

func TestParseStatusAndSourceType(t *testing.T) {
	s, err := episode.ParseStatus("ready")
	require.NoError(t, err)
	assert.Equal(t, episode.StatusReady, s)

	st, err := episode.ParseSourceType("rssimport")
	require.NoError(t, err)
	assert.True(t, st.IsImport())
	assert.False(t, episode.SourceDirectUpload.IsImport())

	_, err = episode.ParseSourceType("ftp")
	assert.ErrorIs(t, err, episode.ErrInvalidSourceType)
}
