package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/container"
	"github.com/narwhalmedia/episodes/internal/logger"
)

const serviceName = "episodes-service"

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Name, cfg.Service.Environment, cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	defer log.Sync()

	log.Info("starting service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("transport", cfg.Messaging.Transport),
	)

	// Initialize service container with all dependencies
	serviceContainer, cleanup, err := container.InitializeAPI(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize service", zap.Error(err))
	}
	defer cleanup()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Service.HTTPPort),
		Handler:           serviceContainer.Server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Service.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down service")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	}

	log.Info("service stopped")
}
