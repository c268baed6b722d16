package config

import "time"

const (
	DefaultHTTPPort     = 8080
	DefaultPostgresPort = 5432

	// Connection pool defaults.
	DefaultMaxOpenConns = 25
	DefaultMaxIdleConns = 5
	DefaultConnLifetime = time.Hour

	DefaultShutdownTimeout = 30 * time.Second
)
