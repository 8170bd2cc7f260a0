package repository

import (
	"context"

	"github.com/contentforge/conditioncore/pkg/models"
)

// DraftRepository defines persistence operations for generated drafts. Status
// transitions must respect DraftStatus.CanTransitionTo; UpdateStatus is
// expected to enforce that invariant at the storage boundary too.
type DraftRepository interface {
	Create(ctx context.Context, draft *models.GeneratedDraft) error
	GetByID(ctx context.Context, id string) (*models.GeneratedDraft, error)
	ListByCampaign(ctx context.Context, campaignID string, status models.DraftStatus) ([]*models.GeneratedDraft, error)
	UpdateBody(ctx context.Context, id, body, userEdits string) error
	UpdateStatus(ctx context.Context, id string, next models.DraftStatus) error
}
