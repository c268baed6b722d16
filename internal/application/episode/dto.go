package episode

import (
	"time"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
)

// EpisodeDTO is the write-side view of an episode
type EpisodeDTO struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Format          string    `json:"format"`
	Language        string    `json:"language"`
	SourceURL       string    `json:"source_url,omitempty"`
	SourceType      string    `json:"source_type"`
	DurationSeconds int64     `json:"duration_seconds"`
	PublishDate     time.Time `json:"publish_date"`
	Status          string    `json:"status"`
	BlobPath        string    `json:"blob_path"`
	Version         int       `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToDTO maps an episode to its write-side view
func ToDTO(e *episode.Episode) EpisodeDTO {
	return EpisodeDTO{
		ID:              e.ID(),
		Title:           e.Title(),
		Description:     e.Description(),
		Category:        e.Category().String(),
		Format:          e.Format().String(),
		Language:        e.Language(),
		SourceURL:       e.SourceURL(),
		SourceType:      e.SourceType().String(),
		DurationSeconds: int64(e.Duration() / time.Second),
		PublishDate:     e.PublishDate(),
		Status:          e.Status().String(),
		BlobPath:        e.BlobPath(),
		Version:         e.Version(),
		CreatedAt:       e.CreatedAt(),
		UpdatedAt:       e.UpdatedAt(),
	}
}

// CreateEpisodeResult is returned by Create
type CreateEpisodeResult struct {
	Episode   EpisodeDTO `json:"episode"`
	UploadURL string     `json:"upload_url"`
}

// EpisodeList is one page of the administrative list
type EpisodeList struct {
	Items    []EpisodeDTO `json:"items"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}
