package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/container"
	"github.com/narwhalmedia/episodes/internal/logger"
)

const serviceName = "episode-processor"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}

	log, err := logger.New(cfg.Service.Name, cfg.Service.Environment, cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	defer log.Sync()

	log.Info("starting processor",
		zap.String("environment", cfg.Service.Environment),
		zap.String("upload_subject", cfg.NATS.UploadSubject),
		zap.String("blob_path_pattern", cfg.Processor.BlobPathPattern),
	)

	processorContainer, cleanup, err := container.InitializeProcessor(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize processor", zap.Error(err))
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run blocks until a signal cancels ctx; unacked messages are redelivered
	if err := processorContainer.Consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("upload consumer stopped", zap.Error(err))
		return
	}

	log.Info("processor stopped")
}
