package episode

import (
	"fmt"
	"strings"
	"time"
)

// Episode is an audio or video item moving through upload, processing
// and publication. Its state changes only through the methods below.
type Episode struct {
	BaseAggregate
	title       string
	description string
	category    Category
	format      Format
	language    string
	sourceURL   string
	sourceType  SourceType
	duration    time.Duration
	publishDate time.Time
	status      Status
	// blobPath holds an explicit override; empty means "derive from id and format"
	blobPath string
}

// NewEpisodeParams holds the inputs of NewEpisode
type NewEpisodeParams struct {
	Title       string
	Description string
	Category    Category
	Format      Format
	Language    string
	SourceURL   string
	SourceType  SourceType
	Duration    time.Duration
	PublishDate *time.Time
}

// NewEpisode validates the inputs and creates an episode in PendingUpload
func NewEpisode(p NewEpisodeParams) (*Episode, error) {
	title, err := validateTitle(p.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(p.Description)
	if err != nil {
		return nil, err
	}
	if !p.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if !p.Format.IsValid() {
		return nil, ErrInvalidFormat
	}
	if p.Duration < 0 {
		return nil, ErrInvalidDuration
	}
	sourceType := p.SourceType
	if sourceType == "" {
		sourceType = SourceDirectUpload
	}
	if _, err := ParseSourceType(string(sourceType)); err != nil {
		return nil, err
	}
	language := strings.TrimSpace(p.Language)
	if language == "" {
		language = DefaultLanguage
	}

	now := time.Now().UTC()
	publishDate := now
	if p.PublishDate != nil {
		publishDate = p.PublishDate.UTC()
	}

	e := &Episode{
		BaseAggregate: newBaseAggregate(now),
		title:         title,
		description:   description,
		category:      p.Category,
		format:        p.Format,
		language:      language,
		sourceURL:     strings.TrimSpace(p.SourceURL),
		sourceType:    sourceType,
		duration:      p.Duration,
		publishDate:   publishDate,
		status:        StatusPendingUpload,
	}

	e.record(&CreatedEvent{
		BaseEvent:   e.newBaseEvent(EventTypeCreated),
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
		CreatedAt:   e.createdAt,
	})
	return e, nil
}

// Title returns the episode title
func (e *Episode) Title() string { return e.title }

// Description returns the episode description
func (e *Episode) Description() string { return e.description }

// Category returns the episode category
func (e *Episode) Category() Category { return e.category }

// Format returns the media format
func (e *Episode) Format() Format { return e.format }

// Language returns the language code
func (e *Episode) Language() string { return e.language }

// SourceURL returns the import source, empty for direct uploads
func (e *Episode) SourceURL() string { return e.sourceURL }

// SourceType returns where the media comes from
func (e *Episode) SourceType() SourceType { return e.sourceType }

// Duration returns the media duration
func (e *Episode) Duration() time.Duration { return e.duration }

// PublishDate returns the publication instant (UTC)
func (e *Episode) PublishDate() time.Time { return e.publishDate }

// Status returns the lifecycle status
func (e *Episode) Status() Status { return e.status }

// BlobPath returns the storage path of the media. An explicit override
// wins; otherwise the path is derived from id and format, or empty while
// the episode has no id yet.
func (e *Episode) BlobPath() string {
	if e.blobPath != "" {
		return e.blobPath
	}
	if e.id == 0 {
		return ""
	}
	return e.GenerateBlobPath()
}

// StoredBlobPath returns the explicit override only
func (e *Episode) StoredBlobPath() string { return e.blobPath }

// GenerateBlobPath returns "/{id}.{extension}"
func (e *Episode) GenerateBlobPath() string {
	return BlobPathFor(e.id, e.format)
}

// BlobPathFor builds the canonical blob path for an id and format
func BlobPathFor(id int64, format Format) string {
	return fmt.Sprintf("/%d.%s", id, format.Extension())
}

// HasBlobPath reports whether the episode has a storage path
func (e *Episode) HasBlobPath() bool { return e.BlobPath() != "" }

// IsProcessing reports whether external processing is in flight
func (e *Episode) IsProcessing() bool { return e.status == StatusProcessing }

// CanBePublished reports whether the episode is Ready and its publish date passed
func (e *Episode) CanBePublished() bool {
	return e.status == StatusReady && !e.publishDate.After(time.Now().UTC())
}

// RequiresVideoProcessing reports whether the media is video
func (e *Episode) RequiresVideoProcessing() bool { return e.format.IsVideo() }

// RequiresAudioProcessing reports whether the media is audio
func (e *Episode) RequiresAudioProcessing() bool { return e.format.IsAudio() }

// UpdateMetadata replaces the editable metadata. Callers are expected to
// refuse this while the episode is processing.
func (e *Episode) UpdateMetadata(title, description string, category Category, publishDate time.Time) error {
	title, err := validateTitle(title)
	if err != nil {
		return err
	}
	description, err = validateDescription(description)
	if err != nil {
		return err
	}
	if !category.IsValid() {
		return ErrInvalidCategory
	}

	now := time.Now().UTC()
	e.title = title
	e.description = description
	e.category = category
	e.publishDate = publishDate.UTC()
	e.touch(now)

	e.record(&MetadataUpdatedEvent{
		BaseEvent:   e.newBaseEvent(EventTypeMetadataUpdated),
		Title:       e.title,
		Description: e.description,
		Category:    e.category,
		Language:    e.language,
		Duration:    e.duration,
		PublishDate: e.publishDate,
		UpdatedAt:   now,
	})
	return nil
}

// UpdateStatus is the externally requested status change. It refuses
// no-op changes, any change while Processing, and Deleting.
func (e *Episode) UpdateStatus(status Status) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if status == e.status {
		return ErrSameStatus
	}
	if e.status == StatusProcessing {
		return ErrCannotUpdateProcessing
	}
	if status == StatusDeleting {
		return ErrCannotSetDeleting
	}
	e.changeStatus(status, "")
	return nil
}

// CompleteUpload moves the episode to Ready once its media landed in
// storage. It reports false without error when the episode is already
// Ready so a redelivered notification is harmless.
func (e *Episode) CompleteUpload() (bool, error) {
	switch e.status {
	case StatusReady:
		return false, nil
	case StatusPendingUpload, StatusProcessing:
		e.changeStatus(StatusReady, "upload completed")
		return true, nil
	default:
		return false, ErrInvalidTransition.WithMessage("cannot complete upload of a %s episode", e.status)
	}
}

// MarkFailed records that processing or import could not finish
func (e *Episode) MarkFailed(reason string) error {
	switch e.status {
	case StatusFailed:
		return ErrSameStatus
	case StatusDeleting:
		return ErrInvalidTransition.WithMessage("cannot fail a Deleting episode")
	}
	e.changeStatus(StatusFailed, reason)
	return nil
}

func (e *Episode) changeStatus(status Status, reason string) {
	now := time.Now().UTC()
	old := e.status
	e.status = status
	e.touch(now)

	e.record(&StatusChangedEvent{
		BaseEvent: e.newBaseEvent(EventTypeStatusChanged),
		OldStatus: old,
		NewStatus: status,
		Reason:    reason,
		ChangedAt: now,
	})
}

// UpdateBlobPath overrides the derived blob path. Only the import flow
// uses this. The override must be rooted and end in the extension of the
// episode format.
func (e *Episode) UpdateBlobPath(path string) error {
	path, err := validateBlobPath(path)
	if err != nil {
		return err
	}
	ext := "." + e.format.Extension()
	if !strings.HasPrefix(path, "/") || !strings.HasSuffix(strings.ToLower(path), ext) || len(path) <= len(ext)+1 {
		return ErrInvalidBlobPath.WithMessage("blob path %q must start with / and end in %s", path, ext)
	}
	old := e.BlobPath()
	e.blobPath = path
	e.touch(time.Now().UTC())

	e.record(&BlobPathUpdatedEvent{
		BaseEvent: e.newBaseEvent(EventTypeBlobPathUpdated),
		OldPath:   old,
		NewPath:   path,
	})
	return nil
}

// NotifyImportProcessor hands an imported episode to the importer. It
// moves straight to Processing without the UpdateStatus guard.
func (e *Episode) NotifyImportProcessor() {
	e.status = StatusProcessing
	e.touch(time.Now().UTC())

	e.record(&ImportInitiatedEvent{
		BaseEvent:  e.newBaseEvent(EventTypeImportInitiated),
		SourceType: e.sourceType,
		SourceURL:  e.sourceURL,
	})
}

// MarkForDeletion moves the episode to Deleting from any status. Storage
// and index cleanup happen downstream of the Deleted event.
func (e *Episode) MarkForDeletion() {
	now := time.Now().UTC()
	path := e.BlobPath()
	e.status = StatusDeleting
	e.touch(now)

	e.record(&DeletedEvent{
		BaseEvent: e.newBaseEvent(EventTypeDeleted),
		BlobPath:  path,
		DeletedAt: now,
	})
}
