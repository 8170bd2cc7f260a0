package repository

import (
	"context"
	"time"

	"github.com/contentforge/conditioncore/pkg/models"
)

// ShadowEntryRepository defines persistence operations for post-publication
// monitoring rows. Create is idempotent on post_url.
type ShadowEntryRepository interface {
	Create(ctx context.Context, entry *models.ShadowEntry) error
	GetByID(ctx context.Context, id string) (*models.ShadowEntry, error)
	GetByPostURL(ctx context.Context, postURL string) (*models.ShadowEntry, error)
	ListDueForCheck(ctx context.Context, now time.Time) ([]*models.ShadowEntry, error)
	ListDueForAudit(ctx context.Context, now time.Time) ([]*models.ShadowEntry, error)
	RecordCheck(ctx context.Context, id string, consecutiveHidden int, checkStatus string, upvoteRatio float64, commentCount int, now time.Time) error
	Transition(ctx context.Context, id string, next models.ShadowEntryStatus) error
	CompleteAudit(ctx context.Context, id string, result models.AuditResult, now time.Time) error
	// CountRecentByOwner returns how many ShadowEntry rows exist for owner
	// across all campaigns, used to compute the warm-up check interval.
	CountRecentByOwner(ctx context.Context, owner string) (int, error)
}
