package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/infrastructure/storage/models"
	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

var _ repository.DraftRepository = (*DraftRepositoryImpl)(nil)

// DraftRepositoryImpl is the bun-backed DraftRepository.
type DraftRepositoryImpl struct {
	db bun.IDB
}

// NewDraftRepository builds a DraftRepositoryImpl.
func NewDraftRepository(db bun.IDB) *DraftRepositoryImpl {
	return &DraftRepositoryImpl{db: db}
}

func (r *DraftRepositoryImpl) Create(ctx context.Context, draft *pkgmodels.GeneratedDraft) error {
	m := models.FromDraftDomain(draft)

	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return err
	}

	draft.ID = m.ID.String()
	draft.CreatedAt = m.CreatedAt
	return nil
}

func (r *DraftRepositoryImpl) GetByID(ctx context.Context, id string) (*pkgmodels.GeneratedDraft, error) {
	draftID, err := uuid.Parse(id)
	if err != nil {
		return nil, &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	m := new(models.GeneratedDraftModel)
	err = r.db.NewSelect().Model(m).Where("id = ?", draftID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &pkgmodels.NotFoundError{Resource: "generated_draft", ID: id}
		}
		return nil, err
	}
	return models.ToDraftDomain(m), nil
}

func (r *DraftRepositoryImpl) ListByCampaign(ctx context.Context, campaignID string, status pkgmodels.DraftStatus) ([]*pkgmodels.GeneratedDraft, error) {
	cid, err := uuid.Parse(campaignID)
	if err != nil {
		return nil, &pkgmodels.ValidationError{Field: "campaign_id", Message: "not a valid uuid"}
	}

	var rows []*models.GeneratedDraftModel
	q := r.db.NewSelect().Model(&rows).Where("campaign_id = ?", cid)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]*pkgmodels.GeneratedDraft, len(rows))
	for i, m := range rows {
		out[i] = models.ToDraftDomain(m)
	}
	return out, nil
}

func (r *DraftRepositoryImpl) UpdateBody(ctx context.Context, id, body, userEdits string) error {
	draftID, err := uuid.Parse(id)
	if err != nil {
		return &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	_, err = r.db.NewUpdate().
		Model((*models.GeneratedDraftModel)(nil)).
		Set("body = ?", body).
		Set("user_edits = ?", userEdits).
		Set("status = ?", string(pkgmodels.DraftStatusEdited)).
		Where("id = ? AND status IN (?)", draftID, bun.In([]string{
			string(pkgmodels.DraftStatusGenerated), string(pkgmodels.DraftStatusEdited),
		})).
		Exec(ctx)
	return err
}

func (r *DraftRepositoryImpl) UpdateStatus(ctx context.Context, id string, next pkgmodels.DraftStatus) error {
	draftID, err := uuid.Parse(id)
	if err != nil {
		return &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	current := new(models.GeneratedDraftModel)
	if err := r.db.NewSelect().Model(current).Where("id = ?", draftID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &pkgmodels.NotFoundError{Resource: "generated_draft", ID: id}
		}
		return err
	}

	if !pkgmodels.DraftStatus(current.Status).CanTransitionTo(next) {
		return &pkgmodels.ValidationError{Field: "status", Message: "illegal transition from " + current.Status + " to " + string(next)}
	}

	_, err = r.db.NewUpdate().
		Model((*models.GeneratedDraftModel)(nil)).
		Set("status = ?", string(next)).
		Where("id = ?", draftID).
		Exec(ctx)
	return err
}
