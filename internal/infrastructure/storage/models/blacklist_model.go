package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

// BlacklistEntryModel represents a forbidden-pattern row, scoped by
// subreddit or global. Uniqueness is enforced on (COALESCE(subreddit,'*'),
// forbidden_pattern) via a generated column or partial unique index at the
// migration level.
type BlacklistEntryModel struct {
	bun.BaseModel `bun:"table:ccore_blacklist_entries,alias:bl"`

	ID               uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Subreddit        string     `bun:"subreddit" json:"subreddit,omitempty"`
	CampaignID       *uuid.UUID `bun:"campaign_id,type:uuid" json:"campaign_id,omitempty"`
	ForbiddenPattern string     `bun:"forbidden_pattern,notnull" json:"forbidden_pattern" validate:"required"`
	Category         string     `bun:"category,notnull" json:"category" validate:"required"`
	FailureType      string     `bun:"failure_type" json:"failure_type,omitempty"`
	SourceShadowID    string     `bun:"source_shadow_id" json:"source_shadow_id,omitempty"`
	Confidence       float64    `bun:"confidence,notnull,default:0.5" json:"confidence"`
	IsGlobal         bool       `bun:"is_global,notnull,default:false" json:"is_global"`
	IsSystemDetected bool       `bun:"is_system_detected,notnull,default:false" json:"is_system_detected"`
	AddedAt          time.Time  `bun:"added_at,notnull,default:current_timestamp" json:"added_at"`
}

// TableName returns the table name for BlacklistEntryModel.
func (BlacklistEntryModel) TableName() string {
	return "ccore_blacklist_entries"
}

// BeforeInsert sets defaults.
func (e *BlacklistEntryModel) BeforeInsert(ctx interface{}) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.AddedAt = time.Now()
	if e.Confidence == 0 {
		e.Confidence = 0.5
	}
	return nil
}

// ToBlacklistEntryDomain converts a BlacklistEntryModel to the domain type.
func ToBlacklistEntryDomain(e *BlacklistEntryModel) *pkgmodels.BlacklistEntry {
	if e == nil {
		return nil
	}
	var campaignID string
	if e.CampaignID != nil {
		campaignID = e.CampaignID.String()
	}
	var failureType *pkgmodels.FailureType
	if e.FailureType != "" {
		f := pkgmodels.FailureType(e.FailureType)
		failureType = &f
	}
	return &pkgmodels.BlacklistEntry{
		ID:               e.ID.String(),
		Subreddit:        e.Subreddit,
		CampaignID:       campaignID,
		ForbiddenPattern: e.ForbiddenPattern,
		Category:         pkgmodels.ForbiddenCategory(e.Category),
		FailureType:      failureType,
		SourceShadowID:   e.SourceShadowID,
		Confidence:       e.Confidence,
		IsGlobal:         e.IsGlobal,
		IsSystemDetected: e.IsSystemDetected,
		AddedAt:          e.AddedAt,
	}
}

// FromBlacklistEntryDomain converts a domain BlacklistEntry to a model.
func FromBlacklistEntryDomain(e *pkgmodels.BlacklistEntry) *BlacklistEntryModel {
	if e == nil {
		return nil
	}
	var id uuid.UUID
	if e.ID != "" {
		id = uuid.MustParse(e.ID)
	}
	var campaignID *uuid.UUID
	if e.CampaignID != "" {
		c := uuid.MustParse(e.CampaignID)
		campaignID = &c
	}
	var failureType string
	if e.FailureType != nil {
		failureType = string(*e.FailureType)
	}
	return &BlacklistEntryModel{
		ID:               id,
		Subreddit:        e.Subreddit,
		CampaignID:       campaignID,
		ForbiddenPattern: e.ForbiddenPattern,
		Category:         string(e.Category),
		FailureType:      failureType,
		SourceShadowID:   e.SourceShadowID,
		Confidence:       e.Confidence,
		IsGlobal:         e.IsGlobal,
		IsSystemDetected: e.IsSystemDetected,
		AddedAt:          e.AddedAt,
	}
}
