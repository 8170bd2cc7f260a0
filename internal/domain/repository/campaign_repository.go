package repository

import (
	"context"

	"github.com/contentforge/conditioncore/pkg/models"
)

// CampaignRepository defines persistence operations for campaigns, the root
// scoping unit every other entity carries as campaign_id (spec.md §3).
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	UpdateStatus(ctx context.Context, id string, status models.CampaignStatus) error
	Delete(ctx context.Context, id string) error
}
