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

var _ repository.RawPostRepository = (*RawPostRepositoryImpl)(nil)

// RawPostRepositoryImpl is the bun-backed RawPostRepository.
type RawPostRepositoryImpl struct {
	db bun.IDB
}

// NewRawPostRepository builds a RawPostRepositoryImpl.
func NewRawPostRepository(db bun.IDB) *RawPostRepositoryImpl {
	return &RawPostRepositoryImpl{db: db}
}

// Upsert writes a scraped post, ignoring the write entirely on a
// (campaign_id, source_post_id) conflict (spec.md §5) — duplicates are not an
// error, they are the expected steady state of repeated collection runs.
func (r *RawPostRepositoryImpl) Upsert(ctx context.Context, post *pkgmodels.RawPost) error {
	m := models.FromRawPostDomain(post)

	res, err := r.db.NewInsert().
		Model(m).
		On("CONFLICT (campaign_id, source_post_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		existing := new(models.RawPostModel)
		err := r.db.NewSelect().
			Model(existing).
			Where("campaign_id = ? AND source_post_id = ?", m.CampaignID, m.SourcePostID).
			Scan(ctx)
		if err != nil {
			return err
		}
		post.ID = existing.ID.String()
		post.CollectedAt = existing.CollectedAt
		return nil
	}

	post.ID = m.ID.String()
	post.CollectedAt = m.CollectedAt
	return nil
}

func (r *RawPostRepositoryImpl) GetByID(ctx context.Context, id string) (*pkgmodels.RawPost, error) {
	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	m := new(models.RawPostModel)
	err = r.db.NewSelect().Model(m).Where("id = ?", postID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &pkgmodels.NotFoundError{Resource: "raw_post", ID: id}
		}
		return nil, err
	}
	return models.ToRawPostDomain(m), nil
}

func (r *RawPostRepositoryImpl) ListBySubreddit(ctx context.Context, campaignID, subreddit string, limit int) ([]*pkgmodels.RawPost, error) {
	cid, err := uuid.Parse(campaignID)
	if err != nil {
		return nil, &pkgmodels.ValidationError{Field: "campaign_id", Message: "not a valid uuid"}
	}

	var rows []*models.RawPostModel
	q := r.db.NewSelect().
		Model(&rows).
		Where("campaign_id = ? AND subreddit = ?", cid, subreddit).
		Order("success_score DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]*pkgmodels.RawPost, len(rows))
	for i, m := range rows {
		out[i] = models.ToRawPostDomain(m)
	}
	return out, nil
}

func (r *RawPostRepositoryImpl) ListUnprocessed(ctx context.Context, campaignID string, limit int) ([]*pkgmodels.RawPost, error) {
	cid, err := uuid.Parse(campaignID)
	if err != nil {
		return nil, &pkgmodels.ValidationError{Field: "campaign_id", Message: "not a valid uuid"}
	}

	var rows []*models.RawPostModel
	q := r.db.NewSelect().
		Model(&rows).
		Where("campaign_id = ? AND is_ai_processed = false", cid).
		Order("collected_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]*pkgmodels.RawPost, len(rows))
	for i, m := range rows {
		out[i] = models.ToRawPostDomain(m)
	}
	return out, nil
}

func (r *RawPostRepositoryImpl) MarkProcessed(ctx context.Context, id string, archetype pkgmodels.Archetype, successScore float64) error {
	postID, err := uuid.Parse(id)
	if err != nil {
		return &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	_, err = r.db.NewUpdate().
		Model((*models.RawPostModel)(nil)).
		Set("archetype = ?", string(archetype)).
		Set("success_score = ?", successScore).
		Set("is_ai_processed = true").
		Where("id = ?", postID).
		Exec(ctx)
	return err
}

func (r *RawPostRepositoryImpl) CountBySubreddit(ctx context.Context, campaignID, subreddit string) (int, error) {
	cid, err := uuid.Parse(campaignID)
	if err != nil {
		return 0, &pkgmodels.ValidationError{Field: "campaign_id", Message: "not a valid uuid"}
	}

	count, err := r.db.NewSelect().
		Model((*models.RawPostModel)(nil)).
		Where("campaign_id = ? AND subreddit = ?", cid, subreddit).
		Count(ctx)
	return count, err
}
