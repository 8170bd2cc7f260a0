package models

import "time"

// CampaignStatus is the lifecycle state of a Campaign.
type CampaignStatus string

const (
	CampaignStatusActive   CampaignStatus = "active"
	CampaignStatusPaused   CampaignStatus = "paused"
	CampaignStatusArchived CampaignStatus = "archived"
)

// Campaign is the root scoping unit: every downstream row carries CampaignID and Owner.
type Campaign struct {
	ID               string         `json:"id"`
	Owner            string         `json:"owner" validate:"required"`
	Name             string         `json:"name" validate:"required"`
	ProductContext   string         `json:"product_context"`
	ProductURL       string         `json:"product_url,omitempty"`
	Keywords         []string       `json:"keywords" validate:"required,min=5,max=15,dive,required"`
	TargetSubreddits []string       `json:"target_subreddits" validate:"required,min=1,dive,required"`
	Status           CampaignStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// IsActive reports whether collection/generation/monitoring may run for this campaign.
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}
