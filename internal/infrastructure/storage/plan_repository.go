package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/infrastructure/storage/models"
	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

var _ repository.PlanRepository = (*PlanRepositoryImpl)(nil)

// PlanRepositoryImpl is the bun-backed PlanRepository.
type PlanRepositoryImpl struct {
	db bun.IDB
}

// NewPlanRepository builds a PlanRepositoryImpl.
func NewPlanRepository(db bun.IDB) *PlanRepositoryImpl {
	return &PlanRepositoryImpl{db: db}
}

// PlanFor returns nil, nil when no plan row exists — the Inference Client
// treats a nil plan the same as a zero cap (spec.md §4.1).
func (r *PlanRepositoryImpl) PlanFor(ctx context.Context, owner string) (*pkgmodels.Plan, error) {
	m := new(models.PlanModel)
	err := r.db.NewSelect().Model(m).Where("owner = ?", owner).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return models.ToPlanDomain(m), nil
}
