package models

import "time"

// ForbiddenCategory is the closed set of noise categories the Pattern Engine (C4) and
// Blacklist Store (C5) classify patterns into.
type ForbiddenCategory string

const (
	CategoryPromotional   ForbiddenCategory = "Promotional"
	CategorySelfReferential ForbiddenCategory = "Self-referential"
	CategoryLink          ForbiddenCategory = "Link"
	CategoryLowEffort     ForbiddenCategory = "Low-effort"
	CategorySpam          ForbiddenCategory = "Spam"
	CategoryOffTopic      ForbiddenCategory = "Off-topic"
)

// FailureType is the observed cause a BlacklistEntry was mined from.
type FailureType string

const (
	FailureTypeAdminRemoval    FailureType = "AdminRemoval"
	FailureTypeSocialRejection FailureType = "SocialRejection"
	FailureTypeShadowban       FailureType = "Shadowban"
	FailureTypeInertia         FailureType = "Inertia"
)

// BlacklistEntry is a forbidden pattern, scoped by subreddit or global.
// Uniqueness invariant: (COALESCE(subreddit,"*"), forbidden_pattern) is unique.
type BlacklistEntry struct {
	ID               string            `json:"id"`
	Subreddit        string            `json:"subreddit,omitempty"`
	CampaignID       string            `json:"campaign_id,omitempty"`
	ForbiddenPattern string            `json:"forbidden_pattern"`
	Category         ForbiddenCategory `json:"category"`
	FailureType      *FailureType      `json:"failure_type,omitempty"`
	SourceShadowID   string            `json:"source_shadow_id,omitempty"`
	Confidence       float64           `json:"confidence"`
	IsGlobal         bool              `json:"is_global"`
	IsSystemDetected bool              `json:"is_system_detected"`
	AddedAt          time.Time         `json:"added_at"`
}

// ScopeKey returns the uniqueness key used for conflict detection: subreddit (or "*"
// for global/unscoped entries) paired with the forbidden pattern text.
func (e *BlacklistEntry) ScopeKey() string {
	sub := e.Subreddit
	if sub == "" {
		sub = "*"
	}
	return sub + "\x00" + e.ForbiddenPattern
}

// RaiseConfidence bumps confidence by delta, capped at 1.0, used when a duplicate
// pattern is re-observed (spec.md §4.12).
func (e *BlacklistEntry) RaiseConfidence(delta float64) {
	e.Confidence += delta
	if e.Confidence > 1.0 {
		e.Confidence = 1.0
	}
}
