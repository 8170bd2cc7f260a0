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

var _ repository.CommunityProfileRepository = (*CommunityProfileRepositoryImpl)(nil)

// CommunityProfileRepositoryImpl is the bun-backed CommunityProfileRepository.
type CommunityProfileRepositoryImpl struct {
	db bun.IDB
}

// NewCommunityProfileRepository builds a CommunityProfileRepositoryImpl.
func NewCommunityProfileRepository(db bun.IDB) *CommunityProfileRepositoryImpl {
	return &CommunityProfileRepositoryImpl{db: db}
}

// Upsert replaces the (campaign_id, subreddit) row wholesale — a profile is
// recomputed from scratch on every Pattern Engine run, never merged.
func (r *CommunityProfileRepositoryImpl) Upsert(ctx context.Context, profile *pkgmodels.CommunityProfile) error {
	m := models.FromCommunityProfileDomain(profile)

	_, err := r.db.NewInsert().
		Model(m).
		On("CONFLICT (campaign_id, subreddit) DO UPDATE").
		Set("isc_score = EXCLUDED.isc_score").
		Set("avg_sentence_length = EXCLUDED.avg_sentence_length").
		Set("dominant_tone = EXCLUDED.dominant_tone").
		Set("formality_level = EXCLUDED.formality_level").
		Set("top_success_hooks = EXCLUDED.top_success_hooks").
		Set("forbidden_patterns = EXCLUDED.forbidden_patterns").
		Set("archetype_distribution = EXCLUDED.archetype_distribution").
		Set("style_metrics = EXCLUDED.style_metrics").
		Set("style_guide = EXCLUDED.style_guide").
		Set("sample_size = EXCLUDED.sample_size").
		Set("last_analyzed_at = EXCLUDED.last_analyzed_at").
		Exec(ctx)
	if err != nil {
		return err
	}

	profile.ID = m.ID.String()
	profile.LastAnalyzedAt = m.LastAnalyzedAt
	return nil
}

func (r *CommunityProfileRepositoryImpl) GetBySubreddit(ctx context.Context, campaignID, subreddit string) (*pkgmodels.CommunityProfile, error) {
	cid, err := uuid.Parse(campaignID)
	if err != nil {
		return nil, &pkgmodels.ValidationError{Field: "campaign_id", Message: "not a valid uuid"}
	}

	m := new(models.CommunityProfileModel)
	err = r.db.NewSelect().
		Model(m).
		Where("campaign_id = ? AND subreddit = ?", cid, subreddit).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &pkgmodels.NotFoundError{Resource: "community_profile", ID: subreddit}
		}
		return nil, err
	}
	return models.ToCommunityProfileDomain(m), nil
}

func (r *CommunityProfileRepositoryImpl) ListByCampaign(ctx context.Context, campaignID string) ([]*pkgmodels.CommunityProfile, error) {
	cid, err := uuid.Parse(campaignID)
	if err != nil {
		return nil, &pkgmodels.ValidationError{Field: "campaign_id", Message: "not a valid uuid"}
	}

	var rows []*models.CommunityProfileModel
	err = r.db.NewSelect().Model(&rows).Where("campaign_id = ?", cid).Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*pkgmodels.CommunityProfile, len(rows))
	for i, m := range rows {
		out[i] = models.ToCommunityProfileDomain(m)
	}
	return out, nil
}
