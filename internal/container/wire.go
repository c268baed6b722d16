//go:build wireinject
// +build wireinject

package container

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/application/discovery"
	appepisode "github.com/narwhalmedia/episodes/internal/application/episode"
	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/httpapi"
	"github.com/narwhalmedia/episodes/internal/infrastructure/events/nats"
	"github.com/narwhalmedia/episodes/internal/infrastructure/storage"
	"github.com/narwhalmedia/episodes/internal/processor"
	"github.com/narwhalmedia/episodes/internal/search"
)

// InitializeAPI creates the episodes HTTP service with all dependencies
func InitializeAPI(cfg *config.Config, logger *zap.Logger) (*APIContainer, func(), error) {
	wire.Build(
		persistenceSet,
		eventSet,
		storageSet,
		wire.Bind(new(discovery.ReadStorage), new(*storage.S3Storage)),
		searchSet,
		wire.Bind(new(discovery.HealthChecker), new(*search.Service)),

		// Application services
		appepisode.NewApplicationService,
		wire.Bind(new(httpapi.EpisodeService), new(*appepisode.ApplicationService)),
		ProvideResultsCache,
		discovery.NewService,
		wire.Bind(new(httpapi.DiscoveryService), new(*discovery.Service)),

		// HTTP
		httpapi.NewServer,

		wire.Struct(new(APIContainer), "*"),
	)

	return nil, nil, nil
}

// InitializeProcessor creates the upload processor with all dependencies
func InitializeProcessor(cfg *config.Config, logger *zap.Logger) (*ProcessorContainer, func(), error) {
	wire.Build(
		persistenceSet,
		eventSet,
		storageSet,
		searchSet,

		ProvideRetryExecutor,
		ProvideProcessor,
		wire.Bind(new(nats.NotificationHandler), new(*processor.Processor)),

		nats.NewClient,
		ProvideUploadConsumer,

		wire.Struct(new(ProcessorContainer), "*"),
	)

	return nil, nil, nil
}
