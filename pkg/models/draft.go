package models

import "time"

// DraftStatus is the monotonic lifecycle of a GeneratedDraft:
// generated -> edited? -> approved? -> posted | discarded. Never backward.
type DraftStatus string

const (
	DraftStatusGenerated DraftStatus = "generated"
	DraftStatusEdited    DraftStatus = "edited"
	DraftStatusApproved  DraftStatus = "approved"
	DraftStatusPosted    DraftStatus = "posted"
	DraftStatusDiscarded DraftStatus = "discarded"
)

var draftStatusRank = map[DraftStatus]int{
	DraftStatusGenerated: 0,
	DraftStatusEdited:    1,
	DraftStatusApproved:  2,
	DraftStatusPosted:    3,
	DraftStatusDiscarded: 3,
}

// CanTransitionTo reports whether moving from s to next respects the monotonic
// ordering of the draft lifecycle (spec.md §3, §5). Body is mutable only while the
// status is in {generated, edited}; posted/discarded are terminal.
func (s DraftStatus) CanTransitionTo(next DraftStatus) bool {
	if s == DraftStatusPosted || s == DraftStatusDiscarded {
		return false
	}
	curRank, ok := draftStatusRank[s]
	if !ok {
		return false
	}
	nextRank, ok := draftStatusRank[next]
	if !ok {
		return false
	}
	return nextRank >= curRank
}

// Editable reports whether the draft body may still be mutated.
func (s DraftStatus) Editable() bool {
	return s == DraftStatusGenerated || s == DraftStatusEdited
}

// GeneratedDraft is a single LLM-conditioned generation produced by the Generator (C8).
type GeneratedDraft struct {
	ID                   string      `json:"id"`
	CampaignID           string      `json:"campaign_id"`
	Owner                string      `json:"owner"`
	Subreddit            string      `json:"subreddit"`
	Archetype            Archetype   `json:"archetype"`
	Title                string      `json:"title"`
	Body                 string      `json:"body"`
	VulnerabilityScore   float64     `json:"vulnerability_score"`
	RhythmMatchScore     float64     `json:"rhythm_match_score"`
	AIPatternViolations  int         `json:"ai_pattern_violations"`
	BlacklistViolations  int         `json:"blacklist_violations"`
	ModelUsed            string      `json:"model_used"`
	TokenCount           int         `json:"token_count"`
	TokenCost            float64     `json:"token_cost"`
	Status               DraftStatus `json:"status"`
	UserEdits            string      `json:"user_edits,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
}
