package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	pkgconfig "github.com/narwhalmedia/episodes/pkg/config"
	"github.com/narwhalmedia/episodes/pkg/retry"
)

// EnvPrefix prefixes every environment variable the services read
const EnvPrefix = "EPISODES"

// Config holds all configuration for the episode services
type Config struct {
	Service   ServiceConfig   `koanf:"service"`
	Logger    LoggerConfig    `koanf:"logger"`
	Database  DatabaseConfig  `koanf:"database"`
	NATS      NATSConfig      `koanf:"nats"`
	Kafka     KafkaConfig     `koanf:"kafka"`
	Messaging MessagingConfig `koanf:"messaging"`
	Storage   StorageConfig   `koanf:"storage"`
	Search    SearchConfig    `koanf:"search"`
	Processor ProcessorConfig `koanf:"processor"`
	Discovery DiscoveryConfig `koanf:"discovery"`
}

// ServiceConfig holds server-specific configuration
type ServiceConfig struct {
	Name            string        `koanf:"name"`
	Environment     string        `koanf:"environment"`
	HTTPPort        int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggerConfig contains logging configuration
type LoggerConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, console
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	User         string        `koanf:"user"`
	Password     string        `koanf:"password"`
	Database     string        `koanf:"database"`
	SSLMode      string        `koanf:"ssl_mode"`
	MaxOpenConns int           `koanf:"max_open_conns"`
	MaxIdleConns int           `koanf:"max_idle_conns"`
	MaxLifetime  time.Duration `koanf:"max_lifetime"`
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL           string        `koanf:"url"`
	ClientID      string        `koanf:"client_id"`
	MaxReconnect  int           `koanf:"max_reconnect"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
	// Stream holds integration events; subjects are "<SubjectPrefix>.<queue>"
	Stream        string `koanf:"stream"`
	SubjectPrefix string `koanf:"subject_prefix"`
	// UploadStream receives object-created notifications from storage
	UploadStream  string        `koanf:"upload_stream"`
	UploadSubject string        `koanf:"upload_subject"`
	Consumer      string        `koanf:"consumer"`
	MaxDeliver    int           `koanf:"max_deliver"`
	AckWait       time.Duration `koanf:"ack_wait"`
	NakDelay      time.Duration `koanf:"nak_delay"`
	DLQSubject    string        `koanf:"dlq_subject"`
}

// KafkaConfig holds the alternate transport settings
type KafkaConfig struct {
	Brokers  []string `koanf:"brokers"`
	ClientID string   `koanf:"client_id"`
}

// MessagingConfig names the transport and the integration queues
type MessagingConfig struct {
	Transport      string `koanf:"transport"` // nats, kafka
	ImportQueue    string `koanf:"import_queue"`
	ProcessorQueue string `koanf:"processor_queue"`
	UpdatesQueue   string `koanf:"updates_queue"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Bucket         string        `koanf:"bucket"`
	Region         string        `koanf:"region"`
	Endpoint       string        `koanf:"endpoint"`
	PublicBaseURL  string        `koanf:"public_base_url"`
	ForcePathStyle bool          `koanf:"force_path_style"`
	ReadURLTTL     time.Duration `koanf:"read_url_ttl"`
	UploadURLTTL   time.Duration `koanf:"upload_url_ttl"`
	// KeyPrefix is prepended to blob paths to form object keys
	KeyPrefix string `koanf:"key_prefix"`
}

// SearchConfig holds search index configuration
type SearchConfig struct {
	URI        string        `koanf:"uri"`
	Database   string        `koanf:"database"`
	Collection string        `koanf:"collection"`
	Timeout    time.Duration `koanf:"timeout"`
}

// ProcessorConfig controls the upload notification processor
type ProcessorConfig struct {
	MaxRetryAttempts      int           `koanf:"max_retry_attempts"`
	RetryDelay            time.Duration `koanf:"retry_delay"`
	BlobPathPattern       string        `koanf:"blob_path_pattern"`
	EnableDetailedLogging bool          `koanf:"enable_detailed_logging"`
}

// RetryConfig returns the retry policy of the processor
func (c ProcessorConfig) RetryConfig() retry.Config {
	return retry.Config{MaxAttempts: c.MaxRetryAttempts, BaseDelay: c.RetryDelay}
}

// DiscoveryConfig controls the read side
type DiscoveryConfig struct {
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults(serviceName string) *Config {
	return &Config{
		Service: ServiceConfig{
			Name:            serviceName,
			Environment:     "dev",
			HTTPPort:        pkgconfig.DefaultHTTPPort,
			ShutdownTimeout: pkgconfig.DefaultShutdownTimeout,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         pkgconfig.DefaultPostgresPort,
			User:         "episodes",
			Password:     "episodes_dev",
			Database:     "episodes",
			SSLMode:      "disable",
			MaxOpenConns: pkgconfig.DefaultMaxOpenConns,
			MaxIdleConns: pkgconfig.DefaultMaxIdleConns,
			MaxLifetime:  pkgconfig.DefaultConnLifetime,
		},
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			ClientID:      serviceName,
			MaxReconnect:  10,
			ReconnectWait: 2 * time.Second,
			Stream:        "EPISODE_EVENTS",
			SubjectPrefix: "episodes",
			UploadStream:  "EPISODE_UPLOADS",
			UploadSubject: "storage.episodes.created",
			Consumer:      "episode-processor",
			MaxDeliver:    5,
			AckWait:       2 * time.Minute,
			NakDelay:      30 * time.Second,
			DLQSubject:    "dlq.episodes.uploads",
		},
		Kafka: KafkaConfig{
			Brokers:  []string{"localhost:9092"},
			ClientID: serviceName,
		},
		Messaging: MessagingConfig{
			Transport:      "nats",
			ImportQueue:    "episode-import",
			ProcessorQueue: "episode-processor",
			UpdatesQueue:   "episode-updates",
		},
		Storage: StorageConfig{
			Bucket:       "episodes",
			Region:       "us-east-1",
			ReadURLTTL:   60 * time.Minute,
			UploadURLTTL: 60 * time.Minute,
			KeyPrefix:    "episodes",
		},
		Search: SearchConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "episodes",
			Collection: "episode_search",
			Timeout:    5 * time.Second,
		},
		Processor: ProcessorConfig{
			MaxRetryAttempts: retry.DefaultMaxAttempts,
			RetryDelay:       retry.DefaultBaseDelay,
			BlobPathPattern:  `^episodes/(\d+)\.(mp4|mp3)$`,
		},
		Discovery: DiscoveryConfig{
			CacheTTL:        5 * time.Minute,
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}

// Load reads configuration for serviceName from files and EPISODES_* variables
func Load(serviceName string) (*Config, error) {
	cfg := Defaults(serviceName)
	if err := pkgconfig.NewManager(EnvPrefix, serviceName).LoadConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return errors.New("service name is required")
	}
	if c.Service.HTTPPort <= 0 || c.Service.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Service.HTTPPort)
	}
	if c.Database.Host == "" {
		return errors.New("database host is required")
	}
	switch strings.ToLower(c.Messaging.Transport) {
	case "nats", "kafka":
	default:
		return fmt.Errorf("unknown messaging transport %q", c.Messaging.Transport)
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage bucket is required")
	}
	if c.Storage.ReadURLTTL <= 0 || c.Storage.UploadURLTTL <= 0 {
		return errors.New("storage url ttl must be positive")
	}
	if _, err := regexp.Compile(c.Processor.BlobPathPattern); err != nil {
		return fmt.Errorf("invalid blob path pattern: %w", err)
	}
	if c.Discovery.DefaultPageSize <= 0 || c.Discovery.MaxPageSize < c.Discovery.DefaultPageSize {
		return errors.New("invalid discovery page sizes")
	}
	return nil
}
