package episode

import (
	"math"
	"time"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
)

// CreateEpisodeCommand represents a command to create a directly uploaded episode
type CreateEpisodeCommand struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Format          string     `json:"format"`
	Language        string     `json:"language,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
	PublishDate     *time.Time `json:"publish_date,omitempty"`
}

// UpdateEpisodeCommand represents a command to replace episode metadata
type UpdateEpisodeCommand struct {
	ID          int64     `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PublishDate time.Time `json:"publish_date"`
}

// ImportEpisodeCommand represents a command to import media from an external source
type ImportEpisodeCommand struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Language        string     `json:"language,omitempty"`
	SourceURL       string     `json:"source_url"`
	SourceType      string     `json:"source_type"`
	DurationSeconds int64      `json:"duration_seconds"`
	PublishDate     *time.Time `json:"publish_date,omitempty"`
}

// UpdateStatusCommand represents an externally requested status change
type UpdateStatusCommand struct {
	ID     int64  `json:"-"`
	Status string `json:"status"`
}

// ListEpisodesQuery filters the administrative episode list. Empty fields
// do not constrain.
type ListEpisodesQuery struct {
	Statuses      []string
	Categories    []string
	Languages     []string
	SourceTypes   []string
	PublishedFrom *time.Time
	PublishedTo   *time.Time
	MinDuration   *time.Duration
	MaxDuration   *time.Duration
	SearchTerm    string
	Page          int
	PageSize      int
}

func (q ListEpisodesQuery) criteria() (episode.SearchCriteria, error) {
	c := episode.SearchCriteria{
		Languages:     q.Languages,
		PublishedFrom: q.PublishedFrom,
		PublishedTo:   q.PublishedTo,
		MinDuration:   q.MinDuration,
		MaxDuration:   q.MaxDuration,
		SearchTerm:    q.SearchTerm,
	}
	for _, s := range q.Statuses {
		status, err := episode.ParseStatus(s)
		if err != nil {
			return c, err
		}
		c.Statuses = append(c.Statuses, status)
	}
	for _, s := range q.Categories {
		category, err := episode.ParseCategory(s)
		if err != nil {
			return c, err
		}
		c.Categories = append(c.Categories, category)
	}
	for _, s := range q.SourceTypes {
		sourceType, err := episode.ParseSourceType(s)
		if err != nil {
			return c, err
		}
		c.SourceTypes = append(c.SourceTypes, sourceType)
	}
	return c, nil
}

// durationFromSeconds converts a seconds count, rejecting values time.Duration cannot hold.
func durationFromSeconds(seconds int64) (time.Duration, error) {
	if seconds < 0 || seconds > math.MaxInt64/int64(time.Second) {
		return 0, episode.ErrInvalidDuration.WithMessage("duration of %d seconds is out of range", seconds)
	}
	return time.Duration(seconds) * time.Second, nil
}
