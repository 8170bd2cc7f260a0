package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

// UsageRecordModel represents an append-only inference cost ledger row.
type UsageRecordModel struct {
	bun.BaseModel `bun:"table:ccore_usage_records,alias:ur"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Owner      string     `bun:"owner,notnull" json:"owner" validate:"required"`
	Action     string     `bun:"action,notnull" json:"action" validate:"required"`
	CampaignID *uuid.UUID `bun:"campaign_id,type:uuid" json:"campaign_id,omitempty"`
	TokenCount int        `bun:"token_count,notnull,default:0" json:"token_count"`
	Cost       float64    `bun:"cost,notnull,default:0" json:"cost"`
	OccurredAt time.Time  `bun:"occurred_at,notnull,default:current_timestamp" json:"occurred_at"`
}

// TableName returns the table name for UsageRecordModel.
func (UsageRecordModel) TableName() string {
	return "ccore_usage_records"
}

// BeforeInsert sets defaults. UsageRecord rows are append-only — there is no
// BeforeUpdate hook.
func (u *UsageRecordModel) BeforeInsert(ctx interface{}) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.OccurredAt.IsZero() {
		u.OccurredAt = time.Now()
	}
	return nil
}

// ToUsageRecordDomain converts a UsageRecordModel to the domain UsageRecord.
func ToUsageRecordDomain(u *UsageRecordModel) *pkgmodels.UsageRecord {
	if u == nil {
		return nil
	}
	var campaignID string
	if u.CampaignID != nil {
		campaignID = u.CampaignID.String()
	}
	return &pkgmodels.UsageRecord{
		ID:         u.ID.String(),
		Owner:      u.Owner,
		Action:     pkgmodels.UsageAction(u.Action),
		CampaignID: campaignID,
		TokenCount: u.TokenCount,
		Cost:       u.Cost,
		OccurredAt: u.OccurredAt,
	}
}

// FromUsageRecordDomain converts a domain UsageRecord to a model.
func FromUsageRecordDomain(u *pkgmodels.UsageRecord) *UsageRecordModel {
	if u == nil {
		return nil
	}
	var id uuid.UUID
	if u.ID != "" {
		id = uuid.MustParse(u.ID)
	}
	var campaignID *uuid.UUID
	if u.CampaignID != "" {
		c := uuid.MustParse(u.CampaignID)
		campaignID = &c
	}
	return &UsageRecordModel{
		ID:         id,
		Owner:      u.Owner,
		Action:     string(u.Action),
		CampaignID: campaignID,
		TokenCount: u.TokenCount,
		Cost:       u.Cost,
		OccurredAt: u.OccurredAt,
	}
}
