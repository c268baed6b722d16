package search

import (
	"context"
	"strconv"
	"time"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
)

// Document is the read-optimized projection of an episode kept in the
// search index. Enums are stored by name.
type Document struct {
	ID              string    `bson:"_id" json:"id"`
	Title           string    `bson:"title" json:"title"`
	Description     string    `bson:"description" json:"description"`
	Category        string    `bson:"category" json:"category"`
	Format          string    `bson:"format" json:"format"`
	Language        string    `bson:"language" json:"language"`
	SourceURL       string    `bson:"source_url,omitempty" json:"source_url,omitempty"`
	SourceType      string    `bson:"source_type" json:"source_type"`
	DurationSeconds int64     `bson:"duration_seconds" json:"duration_seconds"`
	PublishDate     time.Time `bson:"publish_date" json:"publish_date"`
	Status          string    `bson:"status" json:"status"`
	BlobPath        string    `bson:"blob_path" json:"blob_path"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

// FromEpisode maps the public state of an episode to a document
func FromEpisode(e *episode.Episode) Document {
	return Document{
		ID:              DocumentID(e.ID()),
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
		CreatedAt:       e.CreatedAt(),
		UpdatedAt:       e.UpdatedAt(),
	}
}

// DocumentID is the index key of an episode
func DocumentID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Filter selects documents. Zero values do not constrain.
type Filter struct {
	Query    string
	Category string
	Language string
	Status   string
	Offset   int
	Limit    int
}

// Page is one page of search results
type Page struct {
	Documents []Document
	Total     int64
}

// Index is the remote search index. Upsert and Delete are idempotent by
// document id and report partial batch failures as one error naming the
// failing ids.
type Index interface {
	Upsert(ctx context.Context, docs ...Document) error
	Delete(ctx context.Context, ids ...string) error
	Search(ctx context.Context, filter Filter) (*Page, error)
	Get(ctx context.Context, id string) (*Document, error)
	Stats(ctx context.Context) error
}
