package gorm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migration records an applied schema migration
type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"size:50;uniqueIndex;not null"`
	Name      string    `gorm:"size:200;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName pins the table name
func (Migration) TableName() string {
	return "schema_migrations"
}

// MigrationFunc performs one migration inside a transaction
type MigrationFunc func(*gorm.DB) error

// MigrationEntry is one versioned migration
type MigrationEntry struct {
	Version string
	Name    string
	Up      MigrationFunc
}

// Migrator applies versioned migrations and records them
type Migrator struct {
	db         *gorm.DB
	migrations []MigrationEntry
	logger     *zap.Logger
}

// NewMigrator creates a migrator for the episodes schema
func NewMigrator(db *gorm.DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: episodeMigrations(),
		logger:     logger.Named("migrator"),
	}
}

// Migrate applies every pending migration in order and returns the ones applied
func (m *Migrator) Migrate(ctx context.Context) ([]MigrationEntry, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	db := m.db.WithContext(ctx)
	for i, migration := range pending {
		m.logger.Info("running migration",
			zap.String("version", migration.Version),
			zap.String("name", migration.Name),
		)

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&Migration{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return pending[:i], fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}
	}
	return pending, nil
}

// Applied returns the recorded migrations, oldest first
func (m *Migrator) Applied(ctx context.Context) ([]Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	var applied []Migration
	if err := m.db.WithContext(ctx).Order("version ASC").Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return applied, nil
}

// Pending returns the migrations not yet applied, in order
func (m *Migrator) Pending(ctx context.Context) ([]MigrationEntry, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(applied))
	for _, migration := range applied {
		done[migration.Version] = true
	}

	var pending []MigrationEntry
	for _, migration := range m.migrations {
		if !done[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&Migration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func episodeMigrations() []MigrationEntry {
	return []MigrationEntry{
		{
			Version: "20250101_001",
			Name:    "Create episodes table",
			Up:      AutoMigrate,
		},
		{
			Version: "20250101_002",
			Name:    "Add listing indexes",
			Up:      migration002ListingIndexes,
		},
	}
}

func migration002ListingIndexes(tx *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_episodes_status_publish_date ON episodes(status, publish_date)",
		"CREATE INDEX IF NOT EXISTS idx_episodes_source_type ON episodes(source_type)",
	}
	for _, index := range indexes {
		if err := tx.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
