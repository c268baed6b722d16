package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/logger"
	gormstore "github.com/narwhalmedia/episodes/internal/infrastructure/persistence/gorm"
	mongoindex "github.com/narwhalmedia/episodes/internal/infrastructure/search/mongo"
)

const serviceName = "episodes-migrate"

func main() {
	var (
		status     = flag.Bool("status", false, "Show migration status")
		dryRun     = flag.Bool("dry-run", false, "Show pending migrations without applying them")
		skipSearch = flag.Bool("skip-search", false, "Do not create search indexes")
	)
	flag.Parse()

	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Service.Name, cfg.Service.Environment, cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	db, cleanup, err := gormstore.NewDB(cfg, zlog)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer cleanup()

	ctx := context.Background()
	migrator := gormstore.NewMigrator(db, zlog)

	switch {
	case *status:
		showMigrationStatus(ctx, migrator)
	case *dryRun:
		showPendingMigrations(ctx, migrator)
	default:
		runMigrations(ctx, migrator)
		if !*skipSearch {
			ensureSearchIndexes(cfg, zlog)
		}
	}
}

// runMigrations applies all pending migrations
func runMigrations(ctx context.Context, migrator *gormstore.Migrator) {
	fmt.Println("Running database migrations...")

	applied, err := migrator.Migrate(ctx)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fmt.Printf("Applied %d migration(s)\n", len(applied))
}

// ensureSearchIndexes creates the search collection indexes
func ensureSearchIndexes(cfg *config.Config, zlog *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*cfg.Search.Timeout)
	defer cancel()

	client, cleanup, err := mongoindex.NewClient(ctx, cfg, zlog)
	if err != nil {
		log.Fatalf("Failed to connect to search database: %v", err)
	}
	defer cleanup()

	if err := mongoindex.NewIndex(client, cfg, zlog).EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create search indexes: %v", err)
	}
	fmt.Println("Search indexes are up to date")
}

// showMigrationStatus displays the current migration status
func showMigrationStatus(ctx context.Context, migrator *gormstore.Migrator) {
	applied, err := migrator.Applied(ctx)
	if err != nil {
		log.Fatalf("Failed to get migrations: %v", err)
	}

	if len(applied) == 0 {
		fmt.Println("No migrations have been applied yet.")
	} else {
		fmt.Println("Applied migrations:")
		fmt.Println("==================")
		for _, m := range applied {
			fmt.Printf("%s | %s | Applied at: %s\n", m.Version, m.Name, m.AppliedAt.Format(time.DateTime))
		}
	}

	showPendingMigrations(ctx, migrator)
}

// showPendingMigrations displays migrations that would be applied
func showPendingMigrations(ctx context.Context, migrator *gormstore.Migrator) {
	pending, err := migrator.Pending(ctx)
	if err != nil {
		log.Fatalf("Failed to get pending migrations: %v", err)
	}

	if len(pending) == 0 {
		fmt.Println("\nAll migrations are up to date!")
		return
	}

	fmt.Println("\nPending migrations:")
	fmt.Println("==================")
	for _, m := range pending {
		fmt.Printf("%s | %s\n", m.Version, m.Name)
	}
}

