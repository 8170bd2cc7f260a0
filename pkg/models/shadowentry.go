package models

import "time"

// ShadowEntryStatus is the state machine of a ShadowEntry (spec.md §4.11):
//
//	Active --removed--> Removed
//	Active --404------> NotFound
//	Active --shadow(2x)-> Shadowbanned
//	Active --audit_due--> Audited (only when audit_result set)
//
// All states except Active are terminal.
type ShadowEntryStatus string

const (
	ShadowStatusActive       ShadowEntryStatus = "Active"
	ShadowStatusRemoved      ShadowEntryStatus = "Removed"
	ShadowStatusNotFound     ShadowEntryStatus = "NotFound"
	ShadowStatusShadowbanned ShadowEntryStatus = "Shadowbanned"
	ShadowStatusAudited      ShadowEntryStatus = "Audited"
)

// Terminal reports whether the status can no longer change.
func (s ShadowEntryStatus) Terminal() bool {
	return s != ShadowStatusActive
}

// CanTransitionTo enforces that ShadowEntry transitions are monotonic: once a terminal
// state is reached, no further transition is allowed (spec.md §5).
func (s ShadowEntryStatus) CanTransitionTo(next ShadowEntryStatus) bool {
	if s.Terminal() {
		return false
	}
	return true
}

// AuditResult classifies the eventual outcome of a post at the 7-day audit boundary.
type AuditResult string

const (
	AuditResultSocialSuccess AuditResult = "SocialSuccess"
	AuditResultRejection     AuditResult = "Rejection"
	AuditResultInertia       AuditResult = "Inertia"
)

// AuditDueOffset is the fixed audit boundary used by ShadowEntry.AuditDueAt.
const AuditDueOffset = 7 * 24 * time.Hour

// DefaultCheckIntervalHours is the normal dual-perspective check cadence (spec.md §4.11).
const DefaultCheckIntervalHours = 4

// WarmupCheckIntervalHours is the reduced cadence for the first posts of a
// New/WarmingUp account.
const WarmupCheckIntervalHours = 1

// WarmupPostThreshold is how many of an account's posts get the reduced interval.
const WarmupPostThreshold = 3

// ShadowConsecutiveForBan is how many consecutive dual-perspective checks with
// authenticated=visible, anonymous=missing are required before a post is classified
// Shadowbanned.
const ShadowConsecutiveForBan = 2

// ShadowEntry tracks the post-publication lifecycle of a deployed draft.
type ShadowEntry struct {
	ID                string            `json:"id"`
	DraftID           string            `json:"draft_id,omitempty"`
	CampaignID        string            `json:"campaign_id"`
	Owner             string            `json:"owner"`
	PostURL           string            `json:"post_url"`
	Subreddit         string            `json:"subreddit"`
	Status            ShadowEntryStatus `json:"status"`
	ISCAtPost         float64           `json:"isc_at_post"`
	AccountStatus     AccountStatus     `json:"account_status"`
	CheckIntervalHours int              `json:"check_interval_hours"`
	TotalChecks       int               `json:"total_checks"`
	ConsecutiveHidden int               `json:"consecutive_hidden_from_anon"`
	LastCheckStatus   string            `json:"last_check_status"`
	LastCheckAt       time.Time         `json:"last_check_at"`
	AuditResult       *AuditResult      `json:"audit_result,omitempty"`
	AuditCompletedAt  *time.Time        `json:"audit_completed_at,omitempty"`
	SubmittedAt       time.Time         `json:"submitted_at"`
	AuditDueAt        time.Time         `json:"audit_due_at"`

	// Snapshot fields read by the Audit Engine (C12) at the audit boundary; filled in
	// by whichever collaborator last observed the live post (the dual-perspective
	// checker updates these opportunistically).
	LastUpvoteRatio  float64 `json:"last_upvote_ratio"`
	LastCommentCount int     `json:"last_comment_count"`
}

// DueForCheck reports whether the entry's next check is due, per its own cadence.
func (e *ShadowEntry) DueForCheck(now time.Time) bool {
	if e.Status != ShadowStatusActive {
		return false
	}
	interval := time.Duration(e.CheckIntervalHours) * time.Hour
	return !e.LastCheckAt.After(now.Add(-interval))
}

// EffectiveCheckInterval returns the check cadence that should apply, applying the
// warm-up reduction for the first WarmupPostThreshold posts of a New/WarmingUp account.
func EffectiveCheckInterval(status AccountStatus, postsSoFar int) int {
	if (status == AccountStatusNew || status == AccountStatusWarmingUp) && postsSoFar < WarmupPostThreshold {
		return WarmupCheckIntervalHours
	}
	return DefaultCheckIntervalHours
}
