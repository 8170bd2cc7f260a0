package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

// CampaignModel represents a campaign row in the database.
type CampaignModel struct {
	bun.BaseModel `bun:"table:ccore_campaigns,alias:camp"`

	ID               uuid.UUID   `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Owner            string      `bun:"owner,notnull" json:"owner" validate:"required"`
	Name             string      `bun:"name,notnull" json:"name" validate:"required"`
	ProductContext   string      `bun:"product_context" json:"product_context,omitempty"`
	ProductURL       string      `bun:"product_url" json:"product_url,omitempty"`
	Keywords         StringArray `bun:"keywords,type:text[]" json:"keywords"`
	TargetSubreddits StringArray `bun:"target_subreddits,type:text[]" json:"target_subreddits"`
	Status           string      `bun:"status,notnull,default:'active'" json:"status" validate:"required,oneof=active paused archived"`
	CreatedAt        time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time   `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// TableName returns the table name for CampaignModel.
func (CampaignModel) TableName() string {
	return "ccore_campaigns"
}

// BeforeInsert sets timestamps and defaults.
func (c *CampaignModel) BeforeInsert(ctx interface{}) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = string(pkgmodels.CampaignStatusActive)
	}
	return nil
}

// BeforeUpdate refreshes the update timestamp.
func (c *CampaignModel) BeforeUpdate(ctx interface{}) error {
	c.UpdatedAt = time.Now()
	return nil
}

// ToCampaignDomain converts a CampaignModel to the domain Campaign.
func ToCampaignDomain(c *CampaignModel) *pkgmodels.Campaign {
	if c == nil {
		return nil
	}
	return &pkgmodels.Campaign{
		ID:               c.ID.String(),
		Owner:            c.Owner,
		Name:             c.Name,
		ProductContext:   c.ProductContext,
		ProductURL:       c.ProductURL,
		Keywords:         []string(c.Keywords),
		TargetSubreddits: []string(c.TargetSubreddits),
		Status:           pkgmodels.CampaignStatus(c.Status),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// FromCampaignDomain converts a domain Campaign to a CampaignModel.
func FromCampaignDomain(c *pkgmodels.Campaign) *CampaignModel {
	if c == nil {
		return nil
	}
	var id uuid.UUID
	if c.ID != "" {
		id = uuid.MustParse(c.ID)
	}
	return &CampaignModel{
		ID:               id,
		Owner:            c.Owner,
		Name:             c.Name,
		ProductContext:   c.ProductContext,
		ProductURL:       c.ProductURL,
		Keywords:         StringArray(c.Keywords),
		TargetSubreddits: StringArray(c.TargetSubreddits),
		Status:           string(c.Status),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
