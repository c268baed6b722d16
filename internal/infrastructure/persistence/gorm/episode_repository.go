package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/internal/domain/specification"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

const defaultOrder = "publish_date DESC, id DESC"

// EpisodeRepository implements episode.Repository
type EpisodeRepository struct {
	db *gorm.DB
}

// NewEpisodeRepository creates a new GORM episode repository
func NewEpisodeRepository(db *gorm.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

// conn returns the transaction bound to ctx, or the pool
func (r *EpisodeRepository) conn(ctx context.Context) *gorm.DB {
	if t := transactionFrom(ctx); t != nil {
		return t.tx
	}
	return r.db.WithContext(ctx)
}

// Load retrieves an episode by its ID
func (r *EpisodeRepository) Load(ctx context.Context, id int64) (*episode.Episode, error) {
	var model EpisodeModel
	result := r.conn(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, episode.ErrNotFound.WithMessage("episode %d not found", id)
		}
		return nil, apperrors.Failure("Database.QueryFailed", "load episode", result.Error)
	}
	return model.ToDomain(), nil
}

// Save inserts a new episode or updates an existing one if nobody changed
// it since it was loaded. Inside a unit of work the episode's pending
// events move to the transaction; outside one they stay on the episode.
func (r *EpisodeRepository) Save(ctx context.Context, e *episode.Episode) error {
	db := r.conn(ctx)

	model := &EpisodeModel{}
	model.FromDomain(e)

	if e.IsNew() {
		model.Version = 1
		if err := db.Create(model).Error; err != nil {
			return apperrors.Failure("Database.InsertFailed", "insert episode", err)
		}
		e.AssignID(model.ID)
		e.MarkPersisted(model.Version)
	} else {
		next := e.Version() + 1
		cols := model.columns()
		cols["version"] = next

		result := db.Model(&EpisodeModel{}).
			Where("id = ? AND version = ?", e.ID(), e.Version()).
			Updates(cols)
		if result.Error != nil {
			return apperrors.Failure("Database.UpdateFailed", "update episode", result.Error)
		}
		if result.RowsAffected == 0 {
			return episode.ErrConcurrencyConflict.WithMessage("episode %d changed since version %d", e.ID(), e.Version())
		}
		e.MarkPersisted(next)
	}

	if t := transactionFrom(ctx); t != nil {
		t.collect(e.DrainEvents())
	}
	return nil
}

// FindBySpecification returns one page of matching episodes and the total match count
func (r *EpisodeRepository) FindBySpecification(ctx context.Context, spec specification.Specification, page specification.Page) ([]*episode.Episode, int64, error) {
	if spec == nil {
		spec = specification.All()
	}
	clause, params := spec.ToSQL()

	var total int64
	if err := r.conn(ctx).Model(&EpisodeModel{}).Where(clause, params...).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Failure("Database.QueryFailed", "count episodes", err)
	}

	order := page.OrderBy
	if order == "" {
		order = defaultOrder
	}
	query := r.conn(ctx).Where(clause, params...).Order(order)
	if page.Offset > 0 {
		query = query.Offset(page.Offset)
	}
	if page.Limit > 0 {
		query = query.Limit(page.Limit)
	}

	var models []EpisodeModel
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, apperrors.Failure("Database.QueryFailed", "find episodes", err)
	}

	result := make([]*episode.Episode, len(models))
	for i := range models {
		result[i] = models[i].ToDomain()
	}
	return result, total, nil
}
