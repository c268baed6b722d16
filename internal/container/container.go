package container

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	appepisode "github.com/narwhalmedia/episodes/internal/application/episode"
	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/httpapi"
	"github.com/narwhalmedia/episodes/internal/infrastructure/events/nats"
	"github.com/narwhalmedia/episodes/internal/processor"
)

// APIContainer holds all dependencies for the episodes HTTP service
type APIContainer struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Episodes *appepisode.ApplicationService
	Server   *httpapi.Server
}

// ProcessorContainer holds all dependencies for the upload processor
type ProcessorContainer struct {
	Config     *config.Config
	Logger     *zap.Logger
	NATSClient *nats.Client
	Processor  *processor.Processor
	Consumer   *nats.UploadConsumer
}

