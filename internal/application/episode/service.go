package episode

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/internal/domain/events"
	"github.com/narwhalmedia/episodes/internal/domain/specification"
	"github.com/narwhalmedia/episodes/internal/logger"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BlobStorage is the write side of object storage
type BlobStorage interface {
	GenerateUploadURL(ctx context.Context, blobPath, contentType string) (string, error)
	Delete(ctx context.Context, blobPath string) error
}

// ApplicationService handles use case orchestration for episodes. Every
// command runs in one transaction; drained domain events go to the
// dispatcher once it commits.
type ApplicationService struct {
	repo       episode.Repository
	unitOfWork UnitOfWork
	dispatcher events.Dispatcher
	storage    BlobStorage
	logger     *zap.Logger
	now        func() time.Time
}

// NewApplicationService creates a new episode application service
func NewApplicationService(
	repo episode.Repository,
	unitOfWork UnitOfWork,
	dispatcher events.Dispatcher,
	storage BlobStorage,
	logger *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		repo:       repo,
		unitOfWork: unitOfWork,
		dispatcher: dispatcher,
		storage:    storage,
		logger:     logger.Named("episodes"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and stores a new episode and returns a time-boxed
// upload URL for its media
func (s *ApplicationService) Create(ctx context.Context, cmd CreateEpisodeCommand) (*CreateEpisodeResult, error) {
	category, err := episode.ParseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	format, err := episode.ParseFormat(cmd.Format)
	if err != nil {
		return nil, err
	}
	duration, err := durationFromSeconds(cmd.DurationSeconds)
	if err != nil {
		return nil, err
	}

	e, err := episode.NewEpisode(episode.NewEpisodeParams{
		Title:       cmd.Title,
		Description: cmd.Description,
		Category:    category,
		Format:      format,
		Language:    cmd.Language,
		SourceType:  episode.SourceDirectUpload,
		Duration:    duration,
		PublishDate: cmd.PublishDate,
	})
	if err != nil {
		return nil, err
	}

	if err := s.inTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Save(ctx, e)
	}); err != nil {
		return nil, err
	}

	log := logger.WithEpisode(s.logger, e.ID())
	uploadURL, err := s.storage.GenerateUploadURL(ctx, e.BlobPath(), e.Format().MimeType())
	if err != nil {
		log.Error("failed to generate upload url", zap.Error(err))
		return nil, apperrors.Failure("Storage.BlobStorageError", "generate upload url", err)
	}

	log.Info("episode created", zap.String("blob_path", e.BlobPath()))
	return &CreateEpisodeResult{Episode: ToDTO(e), UploadURL: uploadURL}, nil
}

// Update replaces the metadata of an episode that is not processing
func (s *ApplicationService) Update(ctx context.Context, cmd UpdateEpisodeCommand) (*EpisodeDTO, error) {
	category, err := episode.ParseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	today := s.now().Truncate(24 * time.Hour)
	if cmd.PublishDate.UTC().Before(today) {
		return nil, episode.ErrPublishDateInPast
	}

	var e *episode.Episode
	err = s.inTransaction(ctx, func(ctx context.Context) error {
		e, err = s.repo.Load(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if e.IsProcessing() {
			return episode.ErrCannotUpdateProcessing
		}
		if err := e.UpdateMetadata(cmd.Title, cmd.Description, category, cmd.PublishDate); err != nil {
			return err
		}
		return s.repo.Save(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	dto := ToDTO(e)
	return &dto, nil
}

// Delete moves an episode to Deleting. Storage and index cleanup follow
// from the Deleted event.
func (s *ApplicationService) Delete(ctx context.Context, id int64) error {
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		e, err := s.repo.Load(ctx, id)
		if err != nil {
			return err
		}
		if e.IsProcessing() {
			return episode.ErrCannotDeleteProcessing
		}
		e.MarkForDeletion()
		return s.repo.Save(ctx, e)
	})
	if err != nil {
		return err
	}

	logger.WithEpisode(s.logger, id).Info("episode marked for deletion")
	return nil
}

// Import creates a video episode from an external source and hands it to
// the importer
func (s *ApplicationService) Import(ctx context.Context, cmd ImportEpisodeCommand) (*EpisodeDTO, error) {
	category, err := episode.ParseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	sourceType, err := episode.ParseSourceType(cmd.SourceType)
	if err != nil {
		return nil, err
	}
	if !sourceType.IsImport() {
		return nil, episode.ErrInvalidSourceType.WithMessage("source type %s is not an import", sourceType)
	}
	duration, err := durationFromSeconds(cmd.DurationSeconds)
	if err != nil {
		return nil, err
	}

	e, err := episode.NewEpisode(episode.NewEpisodeParams{
		Title:       cmd.Title,
		Description: cmd.Description,
		Category:    category,
		Format:      episode.FormatVideo,
		Language:    cmd.Language,
		SourceURL:   cmd.SourceURL,
		SourceType:  sourceType,
		Duration:    duration,
		PublishDate: cmd.PublishDate,
	})
	if err != nil {
		return nil, err
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		e.NotifyImportProcessor()
		if err := s.repo.Save(ctx, e); err != nil {
			return err
		}
		// the generated path needs the id assigned by the first save
		if err := e.UpdateBlobPath(e.GenerateBlobPath()); err != nil {
			return err
		}
		return s.repo.Save(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	logger.WithEpisode(s.logger, e.ID()).Info("episode import requested",
		zap.String("source_type", sourceType.String()),
		zap.String("source_url", e.SourceURL()),
	)
	dto := ToDTO(e)
	return &dto, nil
}

// UpdateStatus applies an externally requested status change
func (s *ApplicationService) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*EpisodeDTO, error) {
	status, err := episode.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	var e *episode.Episode
	err = s.inTransaction(ctx, func(ctx context.Context) error {
		e, err = s.repo.Load(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if err := e.UpdateStatus(status); err != nil {
			return err
		}
		return s.repo.Save(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	dto := ToDTO(e)
	return &dto, nil
}

// Get returns one episode
func (s *ApplicationService) Get(ctx context.Context, id int64) (*EpisodeDTO, error) {
	e, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(e)
	return &dto, nil
}

// List returns one page of episodes matching the query, newest publication first
func (s *ApplicationService) List(ctx context.Context, q ListEpisodesQuery) (*EpisodeList, error) {
	criteria, err := q.criteria()
	if err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(q.Page, q.PageSize)
	items, total, err := s.repo.FindBySpecification(ctx, episode.AdvancedSearch(criteria), specification.Page{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, err
	}

	out := &EpisodeList{
		Items:    make([]EpisodeDTO, len(items)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for i, e := range items {
		out.Items[i] = ToDTO(e)
	}
	return out, nil
}

func (s *ApplicationService) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInTransaction(ctx, s.unitOfWork, s.dispatcher, fn)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
