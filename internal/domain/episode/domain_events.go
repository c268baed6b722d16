package episode

import (
	"time"

	"github.com/narwhalmedia/episodes/internal/domain/events"
)

// Event type tags for episode domain events
const (
	EventTypeCreated         = "episode.created"
	EventTypeMetadataUpdated = "episode.metadata_updated"
	EventTypeStatusChanged   = "episode.status_changed"
	EventTypeBlobPathUpdated = "episode.blob_path_updated"
	EventTypeImportInitiated = "episode.import_initiated"
	EventTypeDeleted         = "episode.deleted"
)

// CreatedEvent is raised when an episode is created
type CreatedEvent struct {
	events.BaseEvent
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    Category      `json:"category"`
	Format      Format        `json:"format"`
	Language    string        `json:"language"`
	SourceURL   string        `json:"source_url"`
	SourceType  SourceType    `json:"source_type"`
	Duration    time.Duration `json:"duration"`
	PublishDate time.Time     `json:"publish_date"`
	Status      Status        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// MetadataUpdatedEvent carries the full metadata after an update
type MetadataUpdatedEvent struct {
	events.BaseEvent
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    Category      `json:"category"`
	Language    string        `json:"language"`
	Duration    time.Duration `json:"duration"`
	PublishDate time.Time     `json:"publish_date"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// StatusChangedEvent is raised on every status transition
type StatusChangedEvent struct {
	events.BaseEvent
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	Reason    string    `json:"reason,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// BlobPathUpdatedEvent is raised when the blob path is overridden
type BlobPathUpdatedEvent struct {
	events.BaseEvent
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// ImportInitiatedEvent asks the importer to fetch external media
type ImportInitiatedEvent struct {
	events.BaseEvent
	SourceType SourceType `json:"source_type"`
	SourceURL  string     `json:"source_url"`
}

// DeletedEvent carries what downstream cleanup needs
type DeletedEvent struct {
	events.BaseEvent
	BlobPath  string    `json:"blob_path"`
	DeletedAt time.Time `json:"deleted_at"`
}

func (e *Episode) newBaseEvent(eventType string) events.BaseEvent {
	return events.NewBaseEvent(e.id, AggregateType, eventType, e.nextVersion())
}
