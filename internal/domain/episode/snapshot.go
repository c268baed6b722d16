package episode

import "time"

// Snapshot is the flat persisted form of an episode
type Snapshot struct {
	ID          int64
	Version     int
	Title       string
	Description string
	Category    Category
	Format      Format
	Language    string
	SourceURL   string
	SourceType  SourceType
	Duration    time.Duration
	PublishDate time.Time
	Status      Status
	BlobPath    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reconstitute rebuilds an episode from stored state without raising events
func Reconstitute(s Snapshot) *Episode {
	return &Episode{
		BaseAggregate: BaseAggregate{
			id:        s.ID,
			version:   s.Version,
			createdAt: s.CreatedAt.UTC(),
			updatedAt: s.UpdatedAt.UTC(),
		},
		title:       s.Title,
		description: s.Description,
		category:    s.Category,
		format:      s.Format,
		language:    s.Language,
		sourceURL:   s.SourceURL,
		sourceType:  s.SourceType,
		duration:    s.Duration,
		publishDate: s.PublishDate.UTC(),
		status:      s.Status,
		blobPath:    s.BlobPath,
	}
}

// Snapshot returns the episode's state for storage. BlobPath is the
// explicit override only.
func (e *Episode) Snapshot() Snapshot {
	return Snapshot{
		ID:          e.id,
		Version:     e.version,
		Title:       e.title,
		Description: e.description,
		Category:    e.category,
		Format:      e.format,
		Language:    e.language,
		SourceURL:   e.sourceURL,
		SourceType:  e.sourceType,
		Duration:    e.duration,
		PublishDate: e.publishDate,
		Status:      e.status,
		BlobPath:    e.blobPath,
		CreatedAt:   e.createdAt,
		UpdatedAt:   e.updatedAt,
	}
}
