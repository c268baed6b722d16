package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/application/discovery"
	appepisode "github.com/narwhalmedia/episodes/internal/application/episode"
	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/internal/domain/events"
	infraevents "github.com/narwhalmedia/episodes/internal/infrastructure/events"
	"github.com/narwhalmedia/episodes/internal/infrastructure/events/kafka"
	"github.com/narwhalmedia/episodes/internal/infrastructure/events/nats"
	gormstore "github.com/narwhalmedia/episodes/internal/infrastructure/persistence/gorm"
	mongoindex "github.com/narwhalmedia/episodes/internal/infrastructure/search/mongo"
	"github.com/narwhalmedia/episodes/internal/infrastructure/storage"
	"github.com/narwhalmedia/episodes/internal/processor"
	"github.com/narwhalmedia/episodes/internal/search"
	"github.com/narwhalmedia/episodes/pkg/cache"
	"github.com/narwhalmedia/episodes/pkg/retry"
)

var persistenceSet = wire.NewSet(
	gormstore.NewDB,
	gormstore.NewEpisodeRepository,
	wire.Bind(new(episode.Repository), new(*gormstore.EpisodeRepository)),
	gormstore.NewUnitOfWork,
	wire.Bind(new(appepisode.UnitOfWork), new(*gormstore.UnitOfWork)),
)

var eventSet = wire.NewSet(
	ProvideEventBus,
	infraevents.NewIntegrationEventPublisher,
	wire.Bind(new(events.IntegrationEventPublisher), new(*infraevents.IntegrationEventPublisher)),
	ProvideQueues,
	appepisode.NewSubscribers,
	ProvideDispatcher,
	wire.Bind(new(events.Dispatcher), new(*infraevents.InMemoryDomainEventDispatcher)),
)

var storageSet = wire.NewSet(
	storage.NewS3Storage,
	wire.Bind(new(appepisode.BlobStorage), new(*storage.S3Storage)),
)

var searchSet = wire.NewSet(
	ProvideMongoClient,
	mongoindex.NewIndex,
	wire.Bind(new(search.Index), new(*mongoindex.Index)),
	search.NewService,
	wire.Bind(new(appepisode.SearchIndexer), new(*search.Service)),
)

// ProvideEventBus connects the integration transport named by
// messaging.transport
func ProvideEventBus(cfg *config.Config, logger *zap.Logger) (infraevents.EventBus, func(), error) {
	switch strings.ToLower(cfg.Messaging.Transport) {
	case "kafka":
		publisher, err := kafka.NewPublisher(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close kafka publisher", zap.Error(err))
			}
		}
		return publisher, cleanup, nil
	case "nats":
		client, cleanup, err := nats.NewClient(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return nats.NewEventBus(client.JetStream(), cfg.NATS.SubjectPrefix, logger), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown messaging transport %q", cfg.Messaging.Transport)
	}
}

// ProvideQueues names the integration event destinations
func ProvideQueues(cfg *config.Config) appepisode.Queues {
	return appepisode.Queues{
		Import:    cfg.Messaging.ImportQueue,
		Processor: cfg.Messaging.ProcessorQueue,
		Updates:   cfg.Messaging.UpdatesQueue,
	}
}

// ProvideDispatcher creates the domain event dispatcher with every episode
// subscriber registered
func ProvideDispatcher(subscribers *appepisode.Subscribers, logger *zap.Logger) *infraevents.InMemoryDomainEventDispatcher {
	dispatcher := infraevents.NewInMemoryDomainEventDispatcher(logger)
	subscribers.Register(dispatcher)
	return dispatcher
}

// ProvideMongoClient connects to the search database within the search timeout
func ProvideMongoClient(cfg *config.Config, logger *zap.Logger) (*mongo.Client, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Search.Timeout)
	defer cancel()
	return mongoindex.NewClient(ctx, cfg, logger)
}

// ProvideResultsCache creates the discovery result cache
func ProvideResultsCache(cfg *config.Config) (*cache.Cache[*discovery.SearchResult], func()) {
	c := cache.New[*discovery.SearchResult](cfg.Discovery.CacheTTL)
	return c, c.Close
}

// ProvideRetryExecutor creates the processor retry policy
func ProvideRetryExecutor(cfg *config.Config, logger *zap.Logger) *retry.Executor {
	return retry.NewExecutor(cfg.Processor.RetryConfig(), logger)
}

// ProvideProcessor creates the upload processor from the processor settings
func ProvideProcessor(
	cfg *config.Config,
	repo episode.Repository,
	unitOfWork appepisode.UnitOfWork,
	dispatcher events.Dispatcher,
	search appepisode.SearchIndexer,
	executor *retry.Executor,
	logger *zap.Logger,
) (*processor.Processor, error) {
	return processor.NewProcessor(cfg.Processor, repo, unitOfWork, dispatcher, search, executor, logger)
}

// ProvideUploadConsumer binds the processor to the upload notification stream
func ProvideUploadConsumer(client *nats.Client, cfg *config.Config, handler nats.NotificationHandler, logger *zap.Logger) *nats.UploadConsumer {
	return nats.NewUploadConsumer(client.JetStream(), cfg.NATS, handler, logger)
}
