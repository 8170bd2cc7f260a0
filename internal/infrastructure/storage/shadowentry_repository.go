package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/infrastructure/storage/models"
	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

var _ repository.ShadowEntryRepository = (*ShadowEntryRepositoryImpl)(nil)

// ShadowEntryRepositoryImpl is the bun-backed ShadowEntryRepository.
type ShadowEntryRepositoryImpl struct {
	db bun.IDB
}

// NewShadowEntryRepository builds a ShadowEntryRepositoryImpl.
func NewShadowEntryRepository(db bun.IDB) *ShadowEntryRepositoryImpl {
	return &ShadowEntryRepositoryImpl{db: db}
}

// Create inserts a new ShadowEntry, treating a post_url conflict as an
// idempotent no-op rather than an error (spec.md §5).
func (r *ShadowEntryRepositoryImpl) Create(ctx context.Context, entry *pkgmodels.ShadowEntry) error {
	m := models.FromShadowEntryDomain(entry)

	res, err := r.db.NewInsert().
		Model(m).
		On("CONFLICT (post_url) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		existing := new(models.ShadowEntryModel)
		if err := r.db.NewSelect().Model(existing).Where("post_url = ?", m.PostURL).Scan(ctx); err != nil {
			return err
		}
		entry.ID = existing.ID.String()
		entry.SubmittedAt = existing.SubmittedAt
		entry.AuditDueAt = existing.AuditDueAt
		return nil
	}

	entry.ID = m.ID.String()
	entry.SubmittedAt = m.SubmittedAt
	entry.AuditDueAt = m.AuditDueAt
	return nil
}

func (r *ShadowEntryRepositoryImpl) GetByID(ctx context.Context, id string) (*pkgmodels.ShadowEntry, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return nil, &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	m := new(models.ShadowEntryModel)
	err = r.db.NewSelect().Model(m).Where("id = ?", entryID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &pkgmodels.NotFoundError{Resource: "shadow_entry", ID: id}
		}
		return nil, err
	}
	return models.ToShadowEntryDomain(m), nil
}

func (r *ShadowEntryRepositoryImpl) GetByPostURL(ctx context.Context, postURL string) (*pkgmodels.ShadowEntry, error) {
	m := new(models.ShadowEntryModel)
	err := r.db.NewSelect().Model(m).Where("post_url = ?", postURL).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &pkgmodels.NotFoundError{Resource: "shadow_entry", ID: postURL}
		}
		return nil, err
	}
	return models.ToShadowEntryDomain(m), nil
}

// ListDueForCheck returns Active entries whose own check cadence has elapsed.
func (r *ShadowEntryRepositoryImpl) ListDueForCheck(ctx context.Context, now time.Time) ([]*pkgmodels.ShadowEntry, error) {
	var rows []*models.ShadowEntryModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("status = ?", string(pkgmodels.ShadowStatusActive)).
		Where("last_check_at <= ? - (check_interval_hours * interval '1 hour')", now).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*pkgmodels.ShadowEntry, len(rows))
	for i, m := range rows {
		out[i] = models.ToShadowEntryDomain(m)
	}
	return out, nil
}

// ListDueForAudit returns Active entries past their 7-day audit boundary.
func (r *ShadowEntryRepositoryImpl) ListDueForAudit(ctx context.Context, now time.Time) ([]*pkgmodels.ShadowEntry, error) {
	var rows []*models.ShadowEntryModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("status = ?", string(pkgmodels.ShadowStatusActive)).
		Where("audit_due_at <= ?", now).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*pkgmodels.ShadowEntry, len(rows))
	for i, m := range rows {
		out[i] = models.ToShadowEntryDomain(m)
	}
	return out, nil
}

func (r *ShadowEntryRepositoryImpl) RecordCheck(ctx context.Context, id string, consecutiveHidden int, checkStatus string, upvoteRatio float64, commentCount int, now time.Time) error {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	_, err = r.db.NewUpdate().
		Model((*models.ShadowEntryModel)(nil)).
		Set("total_checks = total_checks + 1").
		Set("consecutive_hidden_from_anon = ?", consecutiveHidden).
		Set("last_check_status = ?", checkStatus).
		Set("last_check_at = ?", now).
		Set("last_upvote_ratio = ?", upvoteRatio).
		Set("last_comment_count = ?", commentCount).
		Where("id = ?", entryID).
		Exec(ctx)
	return err
}

func (r *ShadowEntryRepositoryImpl) Transition(ctx context.Context, id string, next pkgmodels.ShadowEntryStatus) error {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	current := new(models.ShadowEntryModel)
	if err := r.db.NewSelect().Model(current).Where("id = ?", entryID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &pkgmodels.NotFoundError{Resource: "shadow_entry", ID: id}
		}
		return err
	}

	if !pkgmodels.ShadowEntryStatus(current.Status).CanTransitionTo(next) {
		return &pkgmodels.ValidationError{Field: "status", Message: "illegal transition from " + current.Status + " to " + string(next)}
	}

	_, err = r.db.NewUpdate().
		Model((*models.ShadowEntryModel)(nil)).
		Set("status = ?", string(next)).
		Where("id = ?", entryID).
		Exec(ctx)
	return err
}

func (r *ShadowEntryRepositoryImpl) CompleteAudit(ctx context.Context, id string, result pkgmodels.AuditResult, now time.Time) error {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	_, err = r.db.NewUpdate().
		Model((*models.ShadowEntryModel)(nil)).
		Set("status = ?", string(pkgmodels.ShadowStatusAudited)).
		Set("audit_result = ?", string(result)).
		Set("audit_completed_at = ?", now).
		Where("id = ? AND status = ?", entryID, string(pkgmodels.ShadowStatusActive)).
		Exec(ctx)
	return err
}

func (r *ShadowEntryRepositoryImpl) CountRecentByOwner(ctx context.Context, owner string) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.ShadowEntryModel)(nil)).
		Where("owner = ?", owner).
		Count(ctx)
	return count, err
}
