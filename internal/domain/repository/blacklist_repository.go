package repository

import (
	"context"

	"github.com/contentforge/conditioncore/pkg/models"
)

// BlacklistRepository defines persistence operations for forbidden-pattern
// entries. Insert is idempotent on (COALESCE(subreddit,'*'),
// forbidden_pattern): a duplicate raises the existing row's confidence
// instead of erroring (spec.md §4.12).
type BlacklistRepository interface {
	Insert(ctx context.Context, entry *models.BlacklistEntry) error
	RaiseConfidence(ctx context.Context, scopeSubreddit, forbiddenPattern string, delta float64) error
	LoadFor(ctx context.Context, subreddit, campaignID string) ([]*models.BlacklistEntry, error)
}
