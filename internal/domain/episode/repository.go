package episode

import (
	"context"

	"github.com/narwhalmedia/episodes/internal/domain/specification"
)

// Repository is the persistence boundary for episodes. Save assigns the
// id on first insert, enforces the optimistic version and drains the
// episode's pending events inside the same transaction.
type Repository interface {
	Load(ctx context.Context, id int64) (*Episode, error)
	Save(ctx context.Context, e *Episode) error
	FindBySpecification(ctx context.Context, spec specification.Specification, page specification.Page) ([]*Episode, int64, error)
}
