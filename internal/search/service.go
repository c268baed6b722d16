package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
)

// Service keeps the search index in step with episode aggregates
type Service struct {
	index  Index
	logger *zap.Logger
}

// NewService creates a search synchronization service
func NewService(index Index, logger *zap.Logger) *Service {
	return &Service{
		index:  index,
		logger: logger.Named("search"),
	}
}

// Upsert writes the document of each episode, replacing older versions
func (s *Service) Upsert(ctx context.Context, episodes ...*episode.Episode) error {
	if len(episodes) == 0 {
		return nil
	}
	docs := make([]Document, len(episodes))
	for i, e := range episodes {
		docs[i] = FromEpisode(e)
	}
	if err := s.index.Upsert(ctx, docs...); err != nil {
		return err
	}
	s.logger.Debug("documents upserted", zap.Int("count", len(docs)))
	return nil
}

// Delete removes the documents of the given episodes
func (s *Service) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = DocumentID(id)
	}
	if err := s.index.Delete(ctx, keys...); err != nil {
		return err
	}
	s.logger.Debug("documents deleted", zap.Strings("ids", keys))
	return nil
}

// HealthCheck reports whether the index answers a statistics query. It
// never fails; any error or panic means unhealthy.
func (s *Service) HealthCheck(ctx context.Context) (healthy bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("search health check panicked", zap.String("panic", fmt.Sprint(r)))
			healthy = false
		}
	}()

	if err := s.index.Stats(ctx); err != nil {
		s.logger.Warn("search index unhealthy", zap.Error(err))
		return false
	}
	return true
}
