package repository

import (
	"context"

	"github.com/contentforge/conditioncore/pkg/models"
)

// CommunityProfileRepository defines persistence operations for
// per-(campaign,subreddit) behavioral fingerprints. Upsert is keyed on
// (campaign_id, subreddit) — a re-analysis replaces the prior row.
type CommunityProfileRepository interface {
	Upsert(ctx context.Context, profile *models.CommunityProfile) error
	GetBySubreddit(ctx context.Context, campaignID, subreddit string) (*models.CommunityProfile, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*models.CommunityProfile, error)
}
