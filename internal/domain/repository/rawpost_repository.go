package repository

import (
	"context"

	"github.com/contentforge/conditioncore/pkg/models"
)

// RawPostRepository defines persistence operations for scraped posts.
// Upsert is idempotent on (campaign_id, source_post_id): a duplicate write is
// ignored, not an error (spec.md §5).
type RawPostRepository interface {
	Upsert(ctx context.Context, post *models.RawPost) error
	GetByID(ctx context.Context, id string) (*models.RawPost, error)
	ListBySubreddit(ctx context.Context, campaignID, subreddit string, limit int) ([]*models.RawPost, error)
	ListUnprocessed(ctx context.Context, campaignID string, limit int) ([]*models.RawPost, error)
	MarkProcessed(ctx context.Context, id string, archetype models.Archetype, successScore float64) error
	CountBySubreddit(ctx context.Context, campaignID, subreddit string) (int, error)
}
