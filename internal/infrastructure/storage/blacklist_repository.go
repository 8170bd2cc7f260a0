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

var _ repository.BlacklistRepository = (*BlacklistRepositoryImpl)(nil)

// BlacklistRepositoryImpl is the bun-backed BlacklistRepository.
type BlacklistRepositoryImpl struct {
	db bun.IDB
}

// NewBlacklistRepository builds a BlacklistRepositoryImpl.
func NewBlacklistRepository(db bun.IDB) *BlacklistRepositoryImpl {
	return &BlacklistRepositoryImpl{db: db}
}

// Insert writes a forbidden pattern, scoped by subreddit or global. Uniqueness
// is (COALESCE(subreddit,'*'), forbidden_pattern); a conflicting write raises
// the existing row's confidence instead of failing — the caller (C12) treats
// this re-observation as success, not AlreadyExists.
func (r *BlacklistRepositoryImpl) Insert(ctx context.Context, entry *pkgmodels.BlacklistEntry) error {
	m := models.FromBlacklistEntryDomain(entry)

	res, err := r.db.NewInsert().
		Model(m).
		On("CONFLICT (scope_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return r.RaiseConfidence(ctx, entry.Subreddit, entry.ForbiddenPattern, 0.1)
	}

	entry.ID = m.ID.String()
	entry.AddedAt = m.AddedAt
	return nil
}

// RaiseConfidence bumps an existing entry's confidence by delta, capped at 1.0.
func (r *BlacklistRepositoryImpl) RaiseConfidence(ctx context.Context, scopeSubreddit, forbiddenPattern string, delta float64) error {
	key := scopeSubreddit
	if key == "" {
		key = "*"
	}

	_, err := r.db.NewUpdate().
		Model((*models.BlacklistEntryModel)(nil)).
		Set("confidence = LEAST(confidence + ?, 1.0)", delta).
		Where("COALESCE(NULLIF(subreddit, ''), '*') = ? AND forbidden_pattern = ?", key, forbiddenPattern).
		Exec(ctx)
	return err
}

// LoadFor returns the union of subreddit-scoped and global entries
// applicable to subreddit, optionally further scoped to a campaign.
func (r *BlacklistRepositoryImpl) LoadFor(ctx context.Context, subreddit, campaignID string) ([]*pkgmodels.BlacklistEntry, error) {
	var rows []*models.BlacklistEntryModel
	q := r.db.NewSelect().
		Model(&rows).
		Where("is_global = true OR subreddit = ?", subreddit)
	if campaignID != "" {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.WhereOr("campaign_id IS NULL").WhereOr("campaign_id = ?", campaignID)
		})
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]*pkgmodels.BlacklistEntry, len(rows))
	for i, m := range rows {
		out[i] = models.ToBlacklistEntryDomain(m)
	}
	return out, nil
}
