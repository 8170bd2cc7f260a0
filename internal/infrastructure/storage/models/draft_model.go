package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

// GeneratedDraftModel represents a single LLM-conditioned generation row.
type GeneratedDraftModel struct {
	bun.BaseModel `bun:"table:ccore_generated_drafts,alias:gd"`

	ID                  uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	CampaignID          uuid.UUID `bun:"campaign_id,notnull,type:uuid" json:"campaign_id" validate:"required"`
	Owner               string    `bun:"owner,notnull" json:"owner" validate:"required"`
	Subreddit            string    `bun:"subreddit,notnull" json:"subreddit" validate:"required"`
	Archetype            string    `bun:"archetype,notnull" json:"archetype" validate:"required"`
	Title                string    `bun:"title" json:"title,omitempty"`
	Body                 string    `bun:"body,notnull" json:"body"`
	VulnerabilityScore   float64   `bun:"vulnerability_score,notnull,default:0" json:"vulnerability_score"`
	RhythmMatchScore     float64   `bun:"rhythm_match_score,notnull,default:0" json:"rhythm_match_score"`
	AIPatternViolations  int       `bun:"ai_pattern_violations,notnull,default:0" json:"ai_pattern_violations"`
	BlacklistViolations  int       `bun:"blacklist_violations,notnull,default:0" json:"blacklist_violations"`
	ModelUsed            string    `bun:"model_used" json:"model_used,omitempty"`
	TokenCount           int       `bun:"token_count,notnull,default:0" json:"token_count"`
	TokenCost            float64   `bun:"token_cost,notnull,default:0" json:"token_cost"`
	Status               string    `bun:"status,notnull,default:'generated'" json:"status" validate:"required,oneof=generated edited approved posted discarded"`
	UserEdits            string    `bun:"user_edits" json:"user_edits,omitempty"`
	CreatedAt            time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// TableName returns the table name for GeneratedDraftModel.
func (GeneratedDraftModel) TableName() string {
	return "ccore_generated_drafts"
}

// BeforeInsert sets timestamps and defaults.
func (d *GeneratedDraftModel) BeforeInsert(ctx interface{}) error {
	d.CreatedAt = time.Now()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = string(pkgmodels.DraftStatusGenerated)
	}
	return nil
}

// ToDraftDomain converts a GeneratedDraftModel to the domain GeneratedDraft.
func ToDraftDomain(d *GeneratedDraftModel) *pkgmodels.GeneratedDraft {
	if d == nil {
		return nil
	}
	return &pkgmodels.GeneratedDraft{
		ID:                  d.ID.String(),
		CampaignID:          d.CampaignID.String(),
		Owner:               d.Owner,
		Subreddit:           d.Subreddit,
		Archetype:           pkgmodels.Archetype(d.Archetype),
		Title:               d.Title,
		Body:                d.Body,
		VulnerabilityScore:  d.VulnerabilityScore,
		RhythmMatchScore:    d.RhythmMatchScore,
		AIPatternViolations: d.AIPatternViolations,
		BlacklistViolations: d.BlacklistViolations,
		ModelUsed:           d.ModelUsed,
		TokenCount:          d.TokenCount,
		TokenCost:           d.TokenCost,
		Status:              pkgmodels.DraftStatus(d.Status),
		UserEdits:           d.UserEdits,
		CreatedAt:           d.CreatedAt,
	}
}

// FromDraftDomain converts a domain GeneratedDraft to a model.
func FromDraftDomain(d *pkgmodels.GeneratedDraft) *GeneratedDraftModel {
	if d == nil {
		return nil
	}
	var id, campaignID uuid.UUID
	if d.ID != "" {
		id = uuid.MustParse(d.ID)
	}
	if d.CampaignID != "" {
		campaignID = uuid.MustParse(d.CampaignID)
	}
	return &GeneratedDraftModel{
		ID:                  id,
		CampaignID:          campaignID,
		Owner:               d.Owner,
		Subreddit:           d.Subreddit,
		Archetype:           string(d.Archetype),
		Title:               d.Title,
		Body:                d.Body,
		VulnerabilityScore:  d.VulnerabilityScore,
		RhythmMatchScore:    d.RhythmMatchScore,
		AIPatternViolations: d.AIPatternViolations,
		BlacklistViolations: d.BlacklistViolations,
		ModelUsed:           d.ModelUsed,
		TokenCount:          d.TokenCount,
		TokenCost:           d.TokenCost,
		Status:              string(d.Status),
		UserEdits:           d.UserEdits,
		CreatedAt:           d.CreatedAt,
	}
}
