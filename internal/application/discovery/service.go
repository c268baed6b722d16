// Package discovery serves the public read side: search over Ready
// episodes and time-boxed read URLs for their media.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/internal/search"
	"github.com/narwhalmedia/episodes/pkg/cache"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

// ReadStorage grants time-boxed read access to stored media
type ReadStorage interface {
	GenerateReadURL(ctx context.Context, blobPath string, ttl time.Duration) (string, error)
	GetPublicURL(blobPath string) string
}

// HealthChecker reports search index health
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// SearchQuery filters published episodes. Page starts at 1.
type SearchQuery struct {
	Query    string
	Category string
	Language string
	Page     int
	PageSize int
}

// SearchResult is one page of published episodes
type SearchResult struct {
	Items    []search.Document `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// EpisodeDetails is a published episode with a read URL for its media.
// ReadURL is empty when storage could not grant one.
type EpisodeDetails struct {
	search.Document
	ReadURL   string `json:"read_url"`
	PublicURL string `json:"public_url"`
}

// Service answers discovery queries from the search index
type Service struct {
	index   search.Index
	health  HealthChecker
	storage ReadStorage
	cache   *cache.Cache[*SearchResult]
	cfg     config.DiscoveryConfig
	readTTL time.Duration
	logger  *zap.Logger
}

// NewService creates a discovery service
func NewService(
	index search.Index,
	health HealthChecker,
	storage ReadStorage,
	results *cache.Cache[*SearchResult],
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		index:   index,
		health:  health,
		storage: storage,
		cache:   results,
		cfg:     cfg.Discovery,
		readTTL: cfg.Storage.ReadURLTTL,
		logger:  logger.Named("discovery"),
	}
}

// Search returns Ready episodes matching q, newest publication first.
// Results are cached per query for the configured TTL.
func (s *Service) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}

	key := cacheKey(q)
	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug("search served from cache", zap.String("key", key))
		return cached, nil
	}

	page, err := s.index.Search(ctx, search.Filter{
		Query:    q.Query,
		Category: q.Category,
		Language: q.Language,
		Status:   episode.StatusReady.String(),
		Offset:   (q.Page - 1) * q.PageSize,
		Limit:    q.PageSize,
	})
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Items:    page.Documents,
		Total:    page.Total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	s.cache.Set(key, result, s.cfg.CacheTTL)
	return result, nil
}

// GetByID returns a Ready episode with a read URL for its media
func (s *Service) GetByID(ctx context.Context, id int64) (*EpisodeDetails, error) {
	if id <= 0 {
		return nil, episode.ErrInvalidID
	}

	doc, err := s.index.Get(ctx, search.DocumentID(id))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, episode.ErrNotFound.WithMessage("episode %d not found", id)
		}
		return nil, err
	}
	if doc.Status != episode.StatusReady.String() {
		return nil, episode.ErrNotFound.WithMessage("episode %d is not published", id)
	}

	details := &EpisodeDetails{Document: *doc, PublicURL: s.storage.GetPublicURL(doc.BlobPath)}
	url, err := s.storage.GenerateReadURL(ctx, doc.BlobPath, s.readTTL)
	if err != nil {
		s.logger.Warn("read url unavailable",
			zap.Int64("episode_id", id),
			zap.String("blob_path", doc.BlobPath),
			zap.Error(err),
		)
		return details, nil
	}
	details.ReadURL = url
	return details, nil
}

// HealthCheck reports whether the search index answers
func (s *Service) HealthCheck(ctx context.Context) bool {
	return s.health.HealthCheck(ctx)
}

func (s *Service) normalize(q SearchQuery) (SearchQuery, error) {
	q.Query = strings.TrimSpace(q.Query)
	q.Language = strings.TrimSpace(q.Language)
	if q.Category != "" {
		category, err := episode.ParseCategory(q.Category)
		if err != nil {
			return q, err
		}
		q.Category = category.String()
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = s.cfg.DefaultPageSize
	}
	if q.PageSize > s.cfg.MaxPageSize {
		q.PageSize = s.cfg.MaxPageSize
	}
	return q, nil
}

func cacheKey(q SearchQuery) string {
	return fmt.Sprintf("q=%s|c=%s|l=%s|p=%d|s=%d", strings.ToLower(q.Query), q.Category, q.Language, q.Page, q.PageSize)
}
