package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

// ShadowEntryModel represents a post-publication monitoring row. Uniqueness
// is enforced on post_url.
type ShadowEntryModel struct {
	bun.BaseModel `bun:"table:ccore_shadow_entries,alias:se"`

	ID                 uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	DraftID            *uuid.UUID `bun:"draft_id,type:uuid" json:"draft_id,omitempty"`
	CampaignID         uuid.UUID  `bun:"campaign_id,notnull,type:uuid" json:"campaign_id" validate:"required"`
	Owner              string     `bun:"owner,notnull" json:"owner" validate:"required"`
	PostURL            string     `bun:"post_url,notnull,unique" json:"post_url" validate:"required"`
	Subreddit          string     `bun:"subreddit,notnull" json:"subreddit" validate:"required"`
	Status             string     `bun:"status,notnull,default:'Active'" json:"status"`
	ISCAtPost          float64    `bun:"isc_at_post,notnull,default:0" json:"isc_at_post"`
	AccountStatus      string     `bun:"account_status,notnull" json:"account_status"`
	CheckIntervalHours int        `bun:"check_interval_hours,notnull,default:4" json:"check_interval_hours"`
	TotalChecks        int        `bun:"total_checks,notnull,default:0" json:"total_checks"`
	ConsecutiveHidden  int        `bun:"consecutive_hidden_from_anon,notnull,default:0" json:"consecutive_hidden_from_anon"`
	LastCheckStatus    string     `bun:"last_check_status" json:"last_check_status,omitempty"`
	LastCheckAt        time.Time  `bun:"last_check_at" json:"last_check_at"`
	AuditResult        *string    `bun:"audit_result" json:"audit_result,omitempty"`
	AuditCompletedAt   *time.Time `bun:"audit_completed_at" json:"audit_completed_at,omitempty"`
	SubmittedAt        time.Time  `bun:"submitted_at,notnull,default:current_timestamp" json:"submitted_at"`
	AuditDueAt         time.Time  `bun:"audit_due_at,notnull" json:"audit_due_at"`
	LastUpvoteRatio    float64    `bun:"last_upvote_ratio,notnull,default:0" json:"last_upvote_ratio"`
	LastCommentCount   int        `bun:"last_comment_count,notnull,default:0" json:"last_comment_count"`
}

// TableName returns the table name for ShadowEntryModel.
func (ShadowEntryModel) TableName() string {
	return "ccore_shadow_entries"
}

// BeforeInsert sets defaults, including the 7-day audit boundary.
func (e *ShadowEntryModel) BeforeInsert(ctx interface{}) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now()
	}
	if e.AuditDueAt.IsZero() {
		e.AuditDueAt = e.SubmittedAt.Add(pkgmodels.AuditDueOffset)
	}
	if e.Status == "" {
		e.Status = string(pkgmodels.ShadowStatusActive)
	}
	if e.CheckIntervalHours == 0 {
		e.CheckIntervalHours = pkgmodels.DefaultCheckIntervalHours
	}
	return nil
}

// ToShadowEntryDomain converts a ShadowEntryModel to the domain ShadowEntry.
func ToShadowEntryDomain(e *ShadowEntryModel) *pkgmodels.ShadowEntry {
	if e == nil {
		return nil
	}
	var draftID string
	if e.DraftID != nil {
		draftID = e.DraftID.String()
	}
	var auditResult *pkgmodels.AuditResult
	if e.AuditResult != nil {
		r := pkgmodels.AuditResult(*e.AuditResult)
		auditResult = &r
	}
	return &pkgmodels.ShadowEntry{
		ID:                 e.ID.String(),
		DraftID:            draftID,
		CampaignID:         e.CampaignID.String(),
		Owner:              e.Owner,
		PostURL:            e.PostURL,
		Subreddit:          e.Subreddit,
		Status:             pkgmodels.ShadowEntryStatus(e.Status),
		ISCAtPost:          e.ISCAtPost,
		AccountStatus:      pkgmodels.AccountStatus(e.AccountStatus),
		CheckIntervalHours: e.CheckIntervalHours,
		TotalChecks:        e.TotalChecks,
		ConsecutiveHidden:  e.ConsecutiveHidden,
		LastCheckStatus:    e.LastCheckStatus,
		LastCheckAt:        e.LastCheckAt,
		AuditResult:        auditResult,
		AuditCompletedAt:   e.AuditCompletedAt,
		SubmittedAt:        e.SubmittedAt,
		AuditDueAt:         e.AuditDueAt,
		LastUpvoteRatio:    e.LastUpvoteRatio,
		LastCommentCount:   e.LastCommentCount,
	}
}

// FromShadowEntryDomain converts a domain ShadowEntry to a model.
func FromShadowEntryDomain(e *pkgmodels.ShadowEntry) *ShadowEntryModel {
	if e == nil {
		return nil
	}
	var id, campaignID uuid.UUID
	if e.ID != "" {
		id = uuid.MustParse(e.ID)
	}
	if e.CampaignID != "" {
		campaignID = uuid.MustParse(e.CampaignID)
	}
	var draftID *uuid.UUID
	if e.DraftID != "" {
		d := uuid.MustParse(e.DraftID)
		draftID = &d
	}
	var auditResult *string
	if e.AuditResult != nil {
		s := string(*e.AuditResult)
		auditResult = &s
	}
	return &ShadowEntryModel{
		ID:                 id,
		DraftID:            draftID,
		CampaignID:         campaignID,
		Owner:              e.Owner,
		PostURL:            e.PostURL,
		Subreddit:          e.Subreddit,
		Status:             string(e.Status),
		ISCAtPost:          e.ISCAtPost,
		AccountStatus:      string(e.AccountStatus),
		CheckIntervalHours: e.CheckIntervalHours,
		TotalChecks:        e.TotalChecks,
		ConsecutiveHidden:  e.ConsecutiveHidden,
		LastCheckStatus:    e.LastCheckStatus,
		LastCheckAt:        e.LastCheckAt,
		AuditResult:        auditResult,
		AuditCompletedAt:   e.AuditCompletedAt,
		SubmittedAt:        e.SubmittedAt,
		AuditDueAt:         e.AuditDueAt,
		LastUpvoteRatio:    e.LastUpvoteRatio,
		LastCommentCount:   e.LastCommentCount,
	}
}
