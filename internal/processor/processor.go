// Package processor completes episodes whose media landed in object
// storage and pushes them into the search index.
package processor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	appepisode "github.com/narwhalmedia/episodes/internal/application/episode"
	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/internal/domain/events"
	"github.com/narwhalmedia/episodes/internal/logger"
	"github.com/narwhalmedia/episodes/pkg/retry"
)

// Outcome tells what ProcessUpload did with a notification
type Outcome int

const (
	// OutcomeIgnored means the object is not episode media
	OutcomeIgnored Outcome = iota
	// OutcomeCompleted means the episode moved to Ready
	OutcomeCompleted
	// OutcomeAlreadyReady means a redelivered notification found nothing to do
	OutcomeAlreadyReady
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeCompleted:
		return "completed"
	case OutcomeAlreadyReady:
		return "already_ready"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Processor bridges object-created notifications to the episode state
// machine
type Processor struct {
	repo       episode.Repository
	unitOfWork appepisode.UnitOfWork
	dispatcher events.Dispatcher
	search     appepisode.SearchIndexer
	executor   *retry.Executor
	pattern    *regexp.Regexp
	detailed   bool
	logger     *zap.Logger
}

// NewProcessor creates a processor. The blob path pattern must capture the
// episode id in its first group; it is matched case-insensitively.
func NewProcessor(
	cfg config.ProcessorConfig,
	repo episode.Repository,
	unitOfWork appepisode.UnitOfWork,
	dispatcher events.Dispatcher,
	search appepisode.SearchIndexer,
	executor *retry.Executor,
	logger *zap.Logger,
) (*Processor, error) {
	pattern, err := regexp.Compile("(?i)" + cfg.BlobPathPattern)
	if err != nil {
		return nil, fmt.Errorf("compile blob path pattern: %w", err)
	}
	if pattern.NumSubexp() < 1 {
		return nil, errors.New("blob path pattern must capture the episode id")
	}

	return &Processor{
		repo:       repo,
		unitOfWork: unitOfWork,
		dispatcher: dispatcher,
		search:     search,
		executor:   executor,
		pattern:    pattern,
		detailed:   cfg.EnableDetailedLogging,
		logger:     logger.Named("processor"),
	}, nil
}

// HandleNotification decodes a storage notification and processes every
// created object in it. It stops at the first failure; the remaining
// objects are handled again on redelivery.
func (p *Processor) HandleNotification(ctx context.Context, data []byte) error {
	uploads, err := DecodeNotification(data)
	if err != nil {
		return err
	}
	for _, upload := range uploads {
		if _, err := p.ProcessUpload(ctx, upload.URI, upload.Size); err != nil {
			return err
		}
	}
	return nil
}

// ProcessUpload moves the episode stored at objectURI to Ready and
// upserts its search document. Paths that are not episode media are
// ignored. Loading, transitioning and saving are retried together; index
// failures are logged and do not fail the upload.
func (p *Processor) ProcessUpload(ctx context.Context, objectURI string, size int64) (Outcome, error) {
	path := objectPath(objectURI)
	match := p.pattern.FindStringSubmatch(path)
	if match == nil {
		p.step("ignoring object outside the episode layout", zap.String("path", path))
		return OutcomeIgnored, nil
	}

	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || id <= 0 {
		return OutcomeIgnored, episode.ErrInvalidID.WithMessage("invalid episode id %q in %s", match[1], path)
	}

	log := logger.WithEpisode(p.logger, id)
	p.stepWith(log, "upload notification received", zap.String("path", path), zap.Int64("size", size))

	var lastStatus episode.Status
	e, err := retry.Execute(ctx, p.executor, "complete-upload", func(ctx context.Context) (*episode.Episode, error) {
		var completed *episode.Episode
		err := appepisode.RunInTransaction(ctx, p.unitOfWork, p.dispatcher, func(ctx context.Context) error {
			e, err := p.repo.Load(ctx, id)
			if err != nil {
				return err
			}
			lastStatus = e.Status()
			p.stepWith(log, "episode loaded", zap.String("status", lastStatus.String()), zap.Int("version", e.Version()))

			changed, err := e.CompleteUpload()
			if err != nil {
				return err
			}
			completed = e
			if !changed {
				return nil
			}
			return p.repo.Save(ctx, e)
		})
		return completed, err
	})
	if err != nil {
		if ctx.Err() != nil {
			log.Warn("upload processing aborted",
				zap.String("last_status", lastStatus.String()),
				zap.Error(err),
			)
		} else {
			log.Error("upload processing failed", zap.String("path", path), zap.Error(err))
		}
		return OutcomeIgnored, err
	}

	outcome := OutcomeCompleted
	if lastStatus == episode.StatusReady {
		outcome = OutcomeAlreadyReady
	}

	if err := p.search.Upsert(ctx, e); err != nil {
		log.Error("search index update failed; episode stays Ready", zap.Error(err))
	} else {
		p.stepWith(log, "search document upserted")
	}

	log.Info("upload processed", zap.Stringer("outcome", outcome))
	return outcome, nil
}

func (p *Processor) step(msg string, fields ...zap.Field) {
	p.stepWith(p.logger, msg, fields...)
}

// stepWith logs a processing step at Info when detailed logging is on
func (p *Processor) stepWith(log *zap.Logger, msg string, fields ...zap.Field) {
	if p.detailed {
		log.Info(msg, fields...)
		return
	}
	log.Debug(msg, fields...)
}
