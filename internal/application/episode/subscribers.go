package episode

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/internal/domain/events"
	"github.com/narwhalmedia/episodes/internal/logger"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

// SearchIndexer keeps the search index in step with episodes
type SearchIndexer interface {
	Upsert(ctx context.Context, episodes ...*episode.Episode) error
	Delete(ctx context.Context, ids ...int64) error
}

// Subscriber registers named handlers per domain event type
type Subscriber interface {
	Subscribe(eventType, name string, handler events.Handler)
}

// Queues names the integration destinations
type Queues struct {
	Import    string
	Processor string
	Updates   string
}

// Subscribers reacts to committed episode events: it forwards integration
// events and cleans up storage and the search index
type Subscribers struct {
	repo      episode.Repository
	publisher events.IntegrationEventPublisher
	search    SearchIndexer
	storage   BlobStorage
	queues    Queues
	logger    *zap.Logger
}

// NewSubscribers creates the episode event subscribers
func NewSubscribers(
	repo episode.Repository,
	publisher events.IntegrationEventPublisher,
	search SearchIndexer,
	storage BlobStorage,
	queues Queues,
	logger *zap.Logger,
) *Subscribers {
	return &Subscribers{
		repo:      repo,
		publisher: publisher,
		search:    search,
		storage:   storage,
		queues:    queues,
		logger:    logger.Named("subscribers"),
	}
}

// Register subscribes every handler in the order it must run
func (s *Subscribers) Register(d Subscriber) {
	d.Subscribe(episode.EventTypeDeleted, "publish-deleted", s.publishTo(s.queues.Processor))
	d.Subscribe(episode.EventTypeDeleted, "remove-search-document", s.removeSearchDocument)
	d.Subscribe(episode.EventTypeDeleted, "delete-blob", s.deleteBlob)

	d.Subscribe(episode.EventTypeMetadataUpdated, "publish-updated", s.publishTo(s.queues.Updates))
	d.Subscribe(episode.EventTypeMetadataUpdated, "reindex-ready-episode", s.reindexIfReady)

	d.Subscribe(episode.EventTypeImportInitiated, "publish-import-requested", s.publishTo(s.queues.Import))
	d.Subscribe(episode.EventTypeStatusChanged, "publish-status-changed", s.publishTo(s.queues.Updates))
	d.Subscribe(episode.EventTypeStatusChanged, "sync-search-document", s.syncSearchDocument)

	d.Subscribe(episode.EventTypeCreated, "log-created", s.logEvent)
	d.Subscribe(episode.EventTypeBlobPathUpdated, "log-blob-path-updated", s.logEvent)
}

func (s *Subscribers) publishTo(destination string) events.Handler {
	return func(ctx context.Context, evt events.Event) error {
		ie, ok := ToIntegrationEvent(evt)
		if !ok {
			return fmt.Errorf("no integration event for %s", evt.EventType())
		}
		return s.publisher.Publish(ctx, destination, ie)
	}
}

func (s *Subscribers) removeSearchDocument(ctx context.Context, evt events.Event) error {
	return s.search.Delete(ctx, evt.AggregateID())
}

func (s *Subscribers) deleteBlob(ctx context.Context, evt events.Event) error {
	deleted, ok := evt.(*episode.DeletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", evt)
	}
	if deleted.BlobPath == "" {
		return nil
	}
	if err := s.storage.Delete(ctx, deleted.BlobPath); err != nil && !apperrors.IsNotFound(err) {
		return err
	}
	logger.WithEpisode(s.logger, evt.AggregateID()).Info("blob deleted", zap.String("blob_path", deleted.BlobPath))
	return nil
}

func (s *Subscribers) reindexIfReady(ctx context.Context, evt events.Event) error {
	e, err := s.repo.Load(ctx, evt.AggregateID())
	if err != nil {
		return err
	}
	if e.Status() != episode.StatusReady {
		return nil
	}
	return s.search.Upsert(ctx, e)
}

// syncSearchDocument keeps only Ready episodes in the index. The stored
// status wins over the event payload so a stale event cannot resurrect
// a document.
func (s *Subscribers) syncSearchDocument(ctx context.Context, evt events.Event) error {
	e, err := s.repo.Load(ctx, evt.AggregateID())
	if apperrors.IsNotFound(err) {
		return s.search.Delete(ctx, evt.AggregateID())
	}
	if err != nil {
		return err
	}
	if e.Status() == episode.StatusReady {
		return s.search.Upsert(ctx, e)
	}
	return s.search.Delete(ctx, e.ID())
}

func (s *Subscribers) logEvent(_ context.Context, evt events.Event) error {
	logger.WithEpisode(s.logger, evt.AggregateID()).Info("episode event",
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.ID().String()),
	)
	return nil
}
