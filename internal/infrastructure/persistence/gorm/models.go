package gorm

import (
	"time"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
)

// EpisodeModel is the relational row of an episode
type EpisodeModel struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	Version         int       `gorm:"not null;default:1"`
	Title           string    `gorm:"size:500;not null"`
	Description     string    `gorm:"size:2000"`
	Category        string    `gorm:"size:50;not null;index"`
	Format          string    `gorm:"size:10;not null"`
	Language        string    `gorm:"size:20;not null;default:'ar'"`
	SourceURL       string    `gorm:"size:2000"`
	SourceType      string    `gorm:"size:50;not null"`
	DurationSeconds int64     `gorm:"not null;default:0"`
	PublishDate     time.Time `gorm:"not null;index"`
	Status          string    `gorm:"size:50;not null;index"`
	BlobPath        string    `gorm:"size:1000"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName pins the table name
func (EpisodeModel) TableName() string {
	return "episodes"
}

// ToDomain converts the row to an episode aggregate
func (m *EpisodeModel) ToDomain() *episode.Episode {
	return episode.Reconstitute(episode.Snapshot{
		ID:          m.ID,
		Version:     m.Version,
		Title:       m.Title,
		Description: m.Description,
		Category:    episode.Category(m.Category),
		Format:      episode.Format(m.Format),
		Language:    m.Language,
		SourceURL:   m.SourceURL,
		SourceType:  episode.SourceType(m.SourceType),
		Duration:    time.Duration(m.DurationSeconds) * time.Second,
		PublishDate: m.PublishDate,
		Status:      episode.Status(m.Status),
		BlobPath:    m.BlobPath,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	})
}

// FromDomain copies the episode state into the row
func (m *EpisodeModel) FromDomain(e *episode.Episode) {
	s := e.Snapshot()
	m.ID = s.ID
	m.Version = s.Version
	m.Title = s.Title
	m.Description = s.Description
	m.Category = string(s.Category)
	m.Format = string(s.Format)
	m.Language = s.Language
	m.SourceURL = s.SourceURL
	m.SourceType = string(s.SourceType)
	m.DurationSeconds = int64(s.Duration / time.Second)
	m.PublishDate = s.PublishDate
	m.Status = string(s.Status)
	m.BlobPath = s.BlobPath
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

// columns returns the mutable columns for a version-guarded update
func (m *EpisodeModel) columns() map[string]any {
	return map[string]any{
		"title":            m.Title,
		"description":      m.Description,
		"category":         m.Category,
		"format":           m.Format,
		"language":         m.Language,
		"source_url":       m.SourceURL,
		"source_type":      m.SourceType,
		"duration_seconds": m.DurationSeconds,
		"publish_date":     m.PublishDate,
		"status":           m.Status,
		"blob_path":        m.BlobPath,
		"updated_at":       m.UpdatedAt,
	}
}
