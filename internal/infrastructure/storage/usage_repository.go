package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/infrastructure/storage/models"
	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

var _ repository.UsageRepository = (*UsageRepositoryImpl)(nil)

// UsageRepositoryImpl is the bun-backed UsageRepository.
type UsageRepositoryImpl struct {
	db bun.IDB
}

// NewUsageRepository builds a UsageRepositoryImpl.
func NewUsageRepository(db bun.IDB) *UsageRepositoryImpl {
	return &UsageRepositoryImpl{db: db}
}

func (r *UsageRepositoryImpl) Record(ctx context.Context, rec *pkgmodels.UsageRecord) error {
	m := models.FromUsageRecordDomain(rec)
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return err
	}
	rec.ID = m.ID.String()
	rec.OccurredAt = m.OccurredAt
	return nil
}

func (r *UsageRepositoryImpl) SumCostSince(ctx context.Context, owner string, since time.Time) (float64, error) {
	var sum sql.NullFloat64
	err := r.db.NewSelect().
		Model((*models.UsageRecordModel)(nil)).
		ColumnExpr("COALESCE(SUM(cost), 0)").
		Where("owner = ? AND occurred_at >= ?", owner, since).
		Scan(ctx, &sum)
	if err != nil {
		return 0, err
	}
	return sum.Float64, nil
}
